package track

import "math"

// generatePoints lays out the circuit centerline on a 1000x700 canvas:
// start/finish straight, a sweeping right, a back straight, a hairpin,
// a technical middle section and a chicane back onto the straight.
func generatePoints() []Point {
	var points []Point

	const startY = 550.0

	// Start/finish straight, sector 1.
	for i := 0; i < 25; i++ {
		points = append(points, Point{X: 150 + float64(i)*16, Y: startY, Sector: 1})
	}

	// Turn 1, sweeping right-hander.
	for i := 0; i < 20; i++ {
		angle := float64(i) / 19 * math.Pi * 0.5
		points = append(points, Point{
			X:      550 + math.Sin(angle)*100,
			Y:      startY - (1-math.Cos(angle))*100,
			Sector: 1,
		})
	}

	// Back straight up the right side.
	for i := 0; i < 30; i++ {
		points = append(points, Point{X: 650, Y: 450 - float64(i)*10, Sector: 1})
	}

	// Turn 2, hairpin at the top. Sector 2 begins.
	for i := 0; i < 25; i++ {
		angle := float64(i) / 24 * math.Pi
		points = append(points, Point{
			X:      650 - math.Sin(angle)*120,
			Y:      150 - math.Cos(angle)*120,
			Sector: 2,
		})
	}

	// Top straight going left.
	for i := 0; i < 35; i++ {
		points = append(points, Point{X: 530 - float64(i)*8, Y: 270, Sector: 2})
	}

	// Turn 3, left-hander into the middle section.
	for i := 0; i < 18; i++ {
		angle := float64(i) / 17 * math.Pi * 0.5
		points = append(points, Point{
			X:      250 - math.Cos(angle)*70,
			Y:      270 + math.Sin(angle)*70,
			Sector: 2,
		})
	}

	// Middle straight. Sector 3 begins.
	for i := 0; i < 20; i++ {
		points = append(points, Point{X: 180, Y: 340 + float64(i)*5, Sector: 3})
	}

	// Turn 4, chicane complex.
	for i := 0; i < 25; i++ {
		angle := float64(i) / 24 * math.Pi
		offset := math.Sin(angle*3) * 35
		points = append(points, Point{
			X:      180 - offset,
			Y:      440 + float64(i)*2.5,
			Sector: 3,
		})
	}

	// Final corner sweeping onto the start/finish straight.
	for i := 0; i < 20; i++ {
		angle := float64(i) / 19 * math.Pi * 0.4
		points = append(points, Point{
			X:      145 - math.Sin(angle)*60 + 60,
			Y:      502.5 + math.Cos(angle)*50,
			Sector: 3,
		})
	}

	// Close the loop back to the start line.
	for i := 0; i < 8; i++ {
		points = append(points, Point{X: 145 + float64(i)*0.625, Y: startY, Sector: 3})
	}

	return points
}

// Default returns the built-in circuit used when no external track blob is
// supplied at startup.
func Default() *Config {
	points := generatePoints()
	n := len(points)

	return &Config{
		Name:         "Circuit de Strategie",
		Country:      "International",
		TotalLengthM: 5000,
		Sectors: []Sector{
			{ID: 1, Name: "Sector 1", StartIndex: 0, EndIndex: int(float64(n) * 0.35), LengthM: 1847},
			{ID: 2, Name: "Sector 2", StartIndex: int(float64(n) * 0.35), EndIndex: int(float64(n) * 0.70), LengthM: 1654},
			{ID: 3, Name: "Sector 3", StartIndex: int(float64(n) * 0.70), EndIndex: n - 1, LengthM: 1499},
		},
		DRSZones: []DRSZone{
			{ID: "drs_1", DetectionPoint: 0.92, ActivationPoint: 0.02, EndPoint: 0.15},
			{ID: "drs_2", DetectionPoint: 0.35, ActivationPoint: 0.40, EndPoint: 0.55},
		},
		PitEntry:  Position{X: 100, Y: 570},
		PitExit:   Position{X: 400, Y: 570},
		StartLine: Position{X: 150, Y: 550},
		Points:    points,
	}
}

// Teams returns the constructor lineup.
func Teams() []Team {
	return []Team{
		{ID: "RBR", Name: "Red Bull Racing", Color: "#0600ef"},
		{ID: "FER", Name: "Ferrari", Color: "#dc0000"},
		{ID: "MER", Name: "Mercedes", Color: "#00d2be"},
		{ID: "MCL", Name: "McLaren", Color: "#ff8700"},
		{ID: "AST", Name: "Aston Martin", Color: "#006f62"},
		{ID: "ALP", Name: "Alpine", Color: "#0090ff"},
		{ID: "WIL", Name: "Williams", Color: "#005aff"},
		{ID: "ATR", Name: "AlphaTauri", Color: "#2b4562"},
		{ID: "ALF", Name: "Alfa Romeo", Color: "#900000"},
		{ID: "HAS", Name: "Haas", Color: "#ffffff"},
	}
}

// DriverNames returns the grid in car-number order.
func DriverNames() []string {
	return []string{
		"M. Verstappen",
		"S. Perez",
		"C. Leclerc",
		"C. Sainz",
		"L. Hamilton",
		"G. Russell",
		"L. Norris",
		"O. Piastri",
		"F. Alonso",
		"L. Stroll",
		"P. Gasly",
		"E. Ocon",
		"A. Albon",
		"L. Sargeant",
		"Y. Tsunoda",
		"D. Ricciardo",
		"V. Bottas",
		"Z. Guanyu",
		"K. Magnussen",
		"N. Hulkenberg",
	}
}
