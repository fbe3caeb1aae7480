package history

import (
	"context"
	"log"
	"time"

	"backend-racepulse/internal/db"
	"backend-racepulse/internal/detection"
)

// Store retains emitted alerts and incidents for later review. The core
// treats retention as best-effort: a nil querier disables it and write
// failures are logged, never propagated into a tick.
type Store struct {
	db db.Querier
}

func NewStore(querier db.Querier) *Store {
	return &Store{db: querier}
}

const writeTimeout = 2 * time.Second

func (s *Store) RecordAlert(ctx context.Context, alert detection.Alert) {
	if s == nil || s.db == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err := s.db.Exec(ctx, `
		INSERT INTO alerts (id, type, severity, message, car_id, sector, fired_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, alert.ID, string(alert.Type), string(alert.Severity), alert.Message, alert.CarID, alert.Sector, alert.Timestamp)
	if err != nil {
		log.Printf("history: record alert: %v", err)
	}
}

func (s *Store) RecordIncident(ctx context.Context, incident detection.Incident) {
	if s == nil || s.db == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err := s.db.Exec(ctx, `
		INSERT INTO incidents (id, type, car_id, sector, severity, description, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, incident.ID, string(incident.Type), incident.CarID, incident.Sector, incident.Severity, incident.Description, incident.Timestamp)
	if err != nil {
		log.Printf("history: record incident: %v", err)
	}
}

// RecentAlerts returns the newest alerts first.
func (s *Store) RecentAlerts(ctx context.Context, limit int) ([]detection.Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, type, severity, message, COALESCE(car_id,''), COALESCE(sector,0), fired_at
		FROM alerts ORDER BY fired_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []detection.Alert
	for rows.Next() {
		var a detection.Alert
		var typ, severity string
		if err := rows.Scan(&a.ID, &typ, &severity, &a.Message, &a.CarID, &a.Sector, &a.Timestamp); err != nil {
			return nil, err
		}
		a.Type = detection.AlertType(typ)
		a.Severity = detection.AlertSeverity(severity)
		alerts = append(alerts, a)
	}
	return alerts, nil
}

// RecentIncidents returns the newest incidents first.
func (s *Store) RecentIncidents(ctx context.Context, limit int) ([]detection.Incident, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, type, car_id, sector, severity, description, occurred_at
		FROM incidents ORDER BY occurred_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []detection.Incident
	for rows.Next() {
		var in detection.Incident
		var typ string
		if err := rows.Scan(&in.ID, &typ, &in.CarID, &in.Sector, &in.Severity, &in.Description, &in.Timestamp); err != nil {
			return nil, err
		}
		in.Type = detection.IncidentType(typ)
		incidents = append(incidents, in)
	}
	return incidents, nil
}
