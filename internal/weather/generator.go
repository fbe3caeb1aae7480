package weather

import (
	"math/rand"

	"backend-racepulse/internal/track"
)

// Condition is the closed set of track weather states.
type Condition string

const (
	Dry       Condition = "dry"
	Damp      Condition = "damp"
	Wet       Condition = "wet"
	HeavyRain Condition = "heavy_rain"
)

// Zone holds the ambient conditions for one track sector.
type Zone struct {
	SectorID      int       `json:"sectorId"`
	Condition     Condition `json:"condition"`
	Temperature   float64   `json:"temperature"`
	TrackTemp     float64   `json:"trackTemp"`
	Humidity      float64   `json:"humidity"`
	WindSpeed     float64   `json:"windSpeed"`
	WindDirection float64   `json:"windDirection"`
	RainIntensity float64   `json:"rainIntensity"`
	GripLevel     float64   `json:"gripLevel"`
}

// RainIntensity returns the fixed precipitation level for a condition.
func RainIntensity(c Condition) float64 {
	switch c {
	case Dry:
		return 0
	case Damp:
		return 20
	case Wet:
		return 60
	case HeavyRain:
		return 90
	}
	return 0
}

// GripLevel returns the fixed grip percentage for a condition.
func GripLevel(c Condition) float64 {
	switch c {
	case Dry:
		return 95
	case Damp:
		return 75
	case Wet:
		return 50
	case HeavyRain:
		return 30
	}
	return 95
}

// Generator synthesizes per-sector weather snapshots. It carries no state
// between calls beyond its random source.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// sampled excludes heavy_rain: it never appears spontaneously, only through
// externally supplied weather.
var sampled = []Condition{Dry, Damp, Wet}

// Generate produces one zone per sector. A base condition covers the whole
// circuit; each sector independently deviates with 10% probability.
func (g *Generator) Generate(sectors []track.Sector) []Zone {
	base := sampled[g.rng.Intn(len(sampled))]

	zones := make([]Zone, 0, len(sectors))
	for _, sector := range sectors {
		condition := base
		if g.rng.Float64() < 0.1 {
			condition = sampled[g.rng.Intn(len(sampled))]
		}

		zones = append(zones, Zone{
			SectorID:      sector.ID,
			Condition:     condition,
			Temperature:   20 + g.rng.Float64()*10,
			TrackTemp:     25 + g.rng.Float64()*20,
			Humidity:      40 + g.rng.Float64()*40,
			WindSpeed:     5 + g.rng.Float64()*15,
			WindDirection: g.rng.Float64() * 360,
			RainIntensity: RainIntensity(condition),
			GripLevel:     GripLevel(condition),
		})
	}
	return zones
}
