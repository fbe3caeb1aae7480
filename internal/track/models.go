package track

// Position is a 2D point on the circuit canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point is one sample of the track centerline tagged with its sector.
type Point struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Sector int     `json:"sector"`
}

// Sector is a fixed segment of the circuit.
type Sector struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	StartIndex int     `json:"startIndex"`
	EndIndex   int     `json:"endIndex"`
	LengthM    float64 `json:"length"`
}

// DRSZone marks detection/activation/end points as track percentages.
type DRSZone struct {
	ID              string  `json:"id"`
	DetectionPoint  float64 `json:"detectionPoint"`
	ActivationPoint float64 `json:"activationPoint"`
	EndPoint        float64 `json:"endPoint"`
}

// Config is the complete immutable circuit description.
type Config struct {
	Name         string    `json:"name"`
	Country      string    `json:"country"`
	TotalLengthM float64   `json:"totalLength"`
	Sectors      []Sector  `json:"sectors"`
	DRSZones     []DRSZone `json:"drsZones"`
	PitEntry     Position  `json:"pitEntry"`
	PitExit      Position  `json:"pitExit"`
	StartLine    Position  `json:"startLine"`
	Points       []Point   `json:"trackPoints"`
}

// Team groups cars under a constructor.
type Team struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
