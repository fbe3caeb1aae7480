package detection

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"backend-racepulse/internal/telemetry"
	"backend-racepulse/internal/weather"
)

// Config tunes the rule thresholds.
type Config struct {
	SlowdownThreshold      float64       // fractional speed drop
	PitCongestionThreshold int           // concurrent cars in pit
	AlertCooldown          time.Duration // base dedup window
}

func (c Config) withDefaults() Config {
	if c.SlowdownThreshold <= 0 {
		c.SlowdownThreshold = 0.3
	}
	if c.PitCongestionThreshold <= 0 {
		c.PitCongestionThreshold = 3
	}
	if c.AlertCooldown <= 0 {
		c.AlertCooldown = 5 * time.Second
	}
	return c
}

// Engine evaluates telemetry snapshots against the detection rules. It keeps
// the previous snapshot per car and the last-fired time per dedup key.
type Engine struct {
	cfg Config
	now func() time.Time

	previous  map[string]telemetry.CarTelemetry
	lastFired map[string]time.Time
}

func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:       cfg.withDefaults(),
		now:       time.Now,
		previous:  map[string]telemetry.CarTelemetry{},
		lastFired: map[string]time.Time{},
	}
}

// Evaluate runs every rule over the current tick, then records the snapshots
// as the previous state for the next pass.
func (e *Engine) Evaluate(cars []telemetry.CarTelemetry, zones []weather.Zone) ([]Alert, []Incident) {
	var alerts []Alert

	alerts = append(alerts, e.detectSlowdowns(cars)...)
	alerts = append(alerts, e.detectPitCongestion(cars)...)
	alerts = append(alerts, e.detectWeatherIssues(zones)...)

	incidents := e.detectIncidents(cars)
	alerts = append(alerts, incidentsToAlerts(incidents)...)

	for _, car := range cars {
		e.previous[car.ID] = car
	}

	return alerts, incidents
}

// okToFire reports whether the key is outside its cooldown window and, if
// so, records the firing. Keys with no history always fire.
func (e *Engine) okToFire(key string, cooldown time.Duration, now time.Time) bool {
	if last, ok := e.lastFired[key]; ok && now.Sub(last) <= cooldown {
		return false
	}
	e.lastFired[key] = now
	return true
}

func (e *Engine) detectSlowdowns(cars []telemetry.CarTelemetry) []Alert {
	var alerts []Alert
	now := e.now()

	for _, car := range cars {
		prev, ok := e.previous[car.ID]
		if !ok || prev.Speed <= 0 {
			continue
		}

		dropPct := (prev.Speed - car.Speed) / prev.Speed
		if dropPct <= e.cfg.SlowdownThreshold || car.Speed >= 150 || car.InPit {
			continue
		}

		if !e.okToFire("slowdown_"+car.ID, e.cfg.AlertCooldown, now) {
			continue
		}

		severity := SeverityWarning
		if dropPct > 0.5 {
			severity = SeverityCritical
		}

		alerts = append(alerts, Alert{
			ID:        uuid.NewString(),
			Type:      AlertSlowdown,
			Severity:  severity,
			Message:   fmt.Sprintf("%s experiencing significant slowdown in Sector %d", car.DriverName, car.Sector),
			CarID:     car.ID,
			Sector:    car.Sector,
			Timestamp: unix(now),
		})
	}

	return alerts
}

func (e *Engine) detectPitCongestion(cars []telemetry.CarTelemetry) []Alert {
	inPit := 0
	for _, car := range cars {
		if car.InPit {
			inPit++
		}
	}
	if inPit < e.cfg.PitCongestionThreshold {
		return nil
	}

	now := e.now()
	if !e.okToFire("pit_congestion", e.cfg.AlertCooldown, now) {
		return nil
	}

	severity := SeverityWarning
	if inPit >= 5 {
		severity = SeverityCritical
	}

	return []Alert{{
		ID:        uuid.NewString(),
		Type:      AlertPitCongestion,
		Severity:  severity,
		Message:   fmt.Sprintf("Pit lane congestion: %d cars currently pitting", inPit),
		Timestamp: unix(now),
	}}
}

func (e *Engine) detectWeatherIssues(zones []weather.Zone) []Alert {
	var alerts []Alert
	now := e.now()

	// Weather keys cool down at twice the base window.
	cooldown := e.cfg.AlertCooldown * 2

	for _, zone := range zones {
		if zone.Condition == weather.Wet || zone.Condition == weather.HeavyRain {
			key := fmt.Sprintf("weather_sector_%d", zone.SectorID)
			if e.okToFire(key, cooldown, now) {
				severity := SeverityWarning
				if zone.Condition == weather.HeavyRain {
					severity = SeverityCritical
				}
				label := strings.ToUpper(strings.ReplaceAll(string(zone.Condition), "_", " "))
				alerts = append(alerts, Alert{
					ID:        uuid.NewString(),
					Type:      AlertWeather,
					Severity:  severity,
					Message:   fmt.Sprintf("%s conditions in Sector %d - Grip at %.0f%%", label, zone.SectorID, zone.GripLevel),
					Sector:    zone.SectorID,
					Timestamp: unix(now),
				})
			}
		}

		if zone.GripLevel < 60 {
			key := fmt.Sprintf("grip_sector_%d", zone.SectorID)
			if e.okToFire(key, cooldown, now) {
				alerts = append(alerts, Alert{
					ID:        uuid.NewString(),
					Type:      AlertWeather,
					Severity:  SeverityInfo,
					Message:   fmt.Sprintf("Low grip warning in Sector %d: %.0f%%", zone.SectorID, zone.GripLevel),
					Sector:    zone.SectorID,
					Timestamp: unix(now),
				})
			}
		}
	}

	return alerts
}

// detectIncidents flags severe slowdowns. Incidents are not cooldown-gated:
// they fire on every tick the condition holds.
func (e *Engine) detectIncidents(cars []telemetry.CarTelemetry) []Incident {
	var incidents []Incident
	now := e.now()

	for _, car := range cars {
		prev, ok := e.previous[car.ID]
		if !ok {
			continue
		}

		if prev.Speed-car.Speed > 100 && car.Speed < 50 && !car.InPit {
			incidents = append(incidents, Incident{
				ID:          uuid.NewString(),
				Type:        IncidentSlowdown,
				CarID:       car.ID,
				Position:    car.Position,
				Sector:      car.Sector,
				Timestamp:   unix(now),
				Severity:    "high",
				Description: fmt.Sprintf("%s experienced sudden severe slowdown", car.DriverName),
			})
		}
	}

	return incidents
}

func incidentsToAlerts(incidents []Incident) []Alert {
	var alerts []Alert
	for _, incident := range incidents {
		severity := SeverityWarning
		switch incident.Severity {
		case "low":
			severity = SeverityInfo
		case "high":
			severity = SeverityCritical
		}
		alerts = append(alerts, Alert{
			ID:        uuid.NewString(),
			Type:      AlertIncident,
			Severity:  severity,
			Message:   incident.Description,
			CarID:     incident.CarID,
			Sector:    incident.Sector,
			Timestamp: incident.Timestamp,
		})
	}
	return alerts
}

// Reset clears the previous-snapshot and cooldown maps.
func (e *Engine) Reset() {
	e.previous = map[string]telemetry.CarTelemetry{}
	e.lastFired = map[string]time.Time{}
}

func unix(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
