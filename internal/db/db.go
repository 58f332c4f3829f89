// Package db archives completed scan sessions in SQLite so that bench runs
// stay queryable after the capture files are gone.
package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/scanrig/internal/scan"
)

type DB struct {
	*sql.DB
}

func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scan_sessions (
			session_id        TEXT PRIMARY KEY,
			rig               TEXT,
			state             TEXT,
			point_count       BIGINT,
			lines_skipped     BIGINT,
			started_at        TIMESTAMP,
			finished_at       TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS scan_points (
			session_id        TEXT,
			point_index       BIGINT,
			x                 DOUBLE,
			y                 DOUBLE,
			z                 DOUBLE,
			vertical_angle    DOUBLE,
			raw_fields        TEXT,
			PRIMARY KEY(session_id, point_index),
			FOREIGN KEY(session_id) REFERENCES scan_sessions(session_id)
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// SessionRecord summarizes one archived session.
type SessionRecord struct {
	SessionID    string
	Rig          string
	State        string
	PointCount   int64
	LinesSkipped int64
	StartedAt    time.Time
	FinishedAt   time.Time
}

// RecordSession archives a collection under a fresh session ID and returns
// the ID. The whole session is written in one transaction.
func (db *DB) RecordSession(rig string, state string, linesSkipped int64, startedAt, finishedAt time.Time, col *scan.Collection) (string, error) {
	sessionID := uuid.NewString()

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO scan_sessions (
			session_id, rig, state, point_count, lines_skipped, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, rig, state, int64(col.Len()), linesSkipped, startedAt, finishedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO scan_points (
			session_id, point_index, x, y, z, vertical_angle, raw_fields
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	raw := col.Raw()
	for i := 0; i < col.Len(); i++ {
		p := col.PointAt(i)
		var angle sql.NullFloat64
		if a, ok := col.VerticalAngleAt(i); ok {
			angle = sql.NullFloat64{Float64: a, Valid: true}
		}
		if _, err := stmt.Exec(sessionID, int64(i), p.X, p.Y, p.Z, angle, joinFields(raw[i])); err != nil {
			return "", fmt.Errorf("insert point %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return sessionID, nil
}

// ListSessions returns archived sessions, most recent first.
func (db *DB) ListSessions() ([]SessionRecord, error) {
	rows, err := db.Query(
		`SELECT session_id, rig, state, point_count, lines_skipped, started_at, finished_at
		 FROM scan_sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(&rec.SessionID, &rec.Rig, &rec.State, &rec.PointCount,
			&rec.LinesSkipped, &rec.StartedAt, &rec.FinishedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SessionPoints returns the flat point sequence of an archived session in
// arrival order.
func (db *DB) SessionPoints(sessionID string) ([]scan.CartesianPoint, error) {
	rows, err := db.Query(
		`SELECT x, y, z FROM scan_points WHERE session_id = ? ORDER BY point_index`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []scan.CartesianPoint
	for rows.Next() {
		var p scan.CartesianPoint
		if err := rows.Scan(&p.X, &p.Y, &p.Z); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// joinFields renders a raw tuple as comma-separated text, the same field
// order as the wire line it came from.
func joinFields(fields []float64) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%g", f)
	}
	return strings.Join(parts, ",")
}
