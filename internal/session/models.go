package session

import (
	"backend-racepulse/internal/track"
	"backend-racepulse/internal/weather"
)

// Status is the session lifecycle state.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusPaused     Status = "paused"
	StatusFinished   Status = "finished"
)

// Type distinguishes the session formats.
type Type string

const (
	TypePractice   Type = "practice"
	TypeQualifying Type = "qualifying"
	TypeSprint     Type = "sprint"
	TypeRace       Type = "race"
)

// FlagType is a race control flag.
type FlagType string

const (
	FlagGreen        FlagType = "green"
	FlagYellow       FlagType = "yellow"
	FlagDoubleYellow FlagType = "double_yellow"
	FlagRed          FlagType = "red"
	FlagBlue         FlagType = "blue"
	FlagWhite        FlagType = "white"
)

// RaceFlag is a displayed flag, optionally scoped to a sector.
type RaceFlag struct {
	Type      FlagType `json:"type"`
	Sector    int      `json:"sector,omitempty"`
	Timestamp float64  `json:"timestamp"`
	Active    bool     `json:"active"`
}

// Session is the aggregate race state. A single instance exists per running
// race, owned and mutated only by the Orchestrator.
type Session struct {
	SessionID     string         `json:"sessionId"`
	SessionType   Type           `json:"sessionType"`
	TrackConfig   *track.Config  `json:"trackConfig"`
	TotalLaps     int            `json:"totalLaps"`
	CurrentLap    int            `json:"currentLap"`
	SessionTime   float64        `json:"sessionTime"`
	SessionStatus Status         `json:"sessionStatus"`
	Weather       []weather.Zone `json:"weather"`
	Flags         []RaceFlag     `json:"flags"`
}

// Info is the control-surface session summary.
type Info struct {
	CurrentLap   int   `json:"currentLap"`
	ElapsedTime  int64 `json:"elapsedTime"`
	VehicleCount int   `json:"vehicleCount"`
	IsActive     bool  `json:"isActive"`
}

// ActionResponse reports the outcome of a control transition. Out-of-turn
// transitions come back as success=false, never as errors.
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
