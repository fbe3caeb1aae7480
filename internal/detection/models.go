package detection

import "backend-racepulse/internal/track"

// AlertType classifies an alert.
type AlertType string

const (
	AlertSlowdown      AlertType = "slowdown"
	AlertWeather       AlertType = "weather"
	AlertPitCongestion AlertType = "pit_congestion"
	AlertIncident      AlertType = "incident"
	AlertStrategy      AlertType = "strategy"
)

// AlertSeverity orders alerts by urgency.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// IncidentType classifies a track incident.
type IncidentType string

const (
	IncidentCollision  IncidentType = "collision"
	IncidentSpin       IncidentType = "spin"
	IncidentDebris     IncidentType = "debris"
	IncidentMechanical IncidentType = "mechanical"
	IncidentSlowdown   IncidentType = "slowdown"
)

// Alert is an operator-facing warning emitted by a detection rule.
type Alert struct {
	ID           string        `json:"id"`
	Type         AlertType     `json:"type"`
	Severity     AlertSeverity `json:"severity"`
	Message      string        `json:"message"`
	CarID        string        `json:"carId,omitempty"`
	Sector       int           `json:"sector,omitempty"`
	Timestamp    float64       `json:"timestamp"`
	Acknowledged bool          `json:"acknowledged"`
}

// Incident is a severe on-track event.
type Incident struct {
	ID          string         `json:"id"`
	Type        IncidentType   `json:"type"`
	CarID       string         `json:"carId"`
	Position    track.Position `json:"position"`
	Sector      int            `json:"sector"`
	Timestamp   float64        `json:"timestamp"`
	Severity    string         `json:"severity"`
	Description string         `json:"description"`
}
