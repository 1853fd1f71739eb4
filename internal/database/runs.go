package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mbetancur/basinview/internal/delineate"
	"github.com/mbetancur/basinview/internal/session"
)

// Run is one persisted delineation run.
type Run struct {
	ID           string
	SessionID    string
	WatershedID  string
	Lat          float64
	Lon          float64
	KnownAreaKm2 *float64
	ArtifactPath string
	LayerErrors  []session.LayerError
	CreatedAt    time.Time
}

// RecordRun persists a completed run. Implements delineate.RunRecorder.
func (db *DB) RecordRun(ctx context.Context, rec delineate.RunRecord) error {
	layerErrors, err := json.Marshal(rec.LayerErrors)
	if err != nil {
		return fmt.Errorf("failed to encode layer errors: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, session_id, watershed_id, lat, lon, known_area_km2, artifact_path, layer_errors, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, rec.WatershedID, rec.Lat, rec.Lon,
		rec.KnownAreaKm2, rec.ArtifactPath, string(layerErrors), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// ListRuns returns the session's runs, newest first.
func (db *DB) ListRuns(ctx context.Context, sessionID string, limit int64) ([]Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, session_id, watershed_id, lat, lon, known_area_km2, artifact_path, layer_errors, created_at
		FROM runs WHERE session_id = ? ORDER BY created_at DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var layerErrors string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.WatershedID, &r.Lat, &r.Lon,
			&r.KnownAreaKm2, &r.ArtifactPath, &layerErrors, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(layerErrors), &r.LayerErrors); err != nil {
			r.LayerErrors = nil
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
