package telemetry

import "backend-racepulse/internal/track"

// TireCompound identifies the fitted tire set.
type TireCompound string

const (
	TireSoft         TireCompound = "soft"
	TireMedium       TireCompound = "medium"
	TireHard         TireCompound = "hard"
	TireIntermediate TireCompound = "intermediate"
	TireWet          TireCompound = "wet"
)

// CarTelemetry is the immutable per-vehicle snapshot produced by one
// simulation tick.
type CarTelemetry struct {
	ID           string         `json:"id"`
	DriverName   string         `json:"driverName"`
	TeamID       string         `json:"teamId"`
	Position     track.Position `json:"position"`
	Speed        float64        `json:"speed"`
	Tire         TireCompound   `json:"tire"`
	TireLaps     int            `json:"tireLaps"`
	Fuel         float64        `json:"fuel"`
	LapTime      float64        `json:"lapTime"`
	CurrentLap   int            `json:"currentLap"`
	Sector       int            `json:"sector"`
	InPit        bool           `json:"inPit"`
	DRSEnabled   bool           `json:"drsEnabled"`
	DRSAvailable bool           `json:"drsAvailable"`
	Timestamp    float64        `json:"timestamp"`
}

// SessionInfo summarizes the simulator's aggregate counters.
type SessionInfo struct {
	CurrentLap  int   `json:"current_lap"`
	SessionTime int64 `json:"session_time"`
	TotalCars   int   `json:"total_cars"`
}
