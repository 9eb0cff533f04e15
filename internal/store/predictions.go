package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// computedAtLayout is fixed width so snapshots sort correctly as text
const computedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SaveSnapshot stores an engine result
func (db *DB) SaveSnapshot(ctx context.Context, s *PredictionSnapshot) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO prediction_snapshots (id, as_of, computed_at, vdot, confidence, result)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		s.ID, s.AsOf.UTC().Format(time.RFC3339), s.ComputedAt.UTC().Format(computedAtLayout),
		s.VDOT, s.Confidence, string(s.Result),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot %s: %w", s.ID, err)
	}
	return nil
}

// GetSnapshot retrieves a snapshot by ID
func (db *DB) GetSnapshot(ctx context.Context, id string) (*PredictionSnapshot, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, as_of, computed_at, vdot, confidence, result
		FROM prediction_snapshots
		WHERE id = ?
	`, id)
	return scanSnapshot(row)
}

// LatestSnapshotAsOf returns the most recently computed snapshot whose as-of
// date is not after asOf
func (db *DB) LatestSnapshotAsOf(ctx context.Context, asOf time.Time) (*PredictionSnapshot, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, as_of, computed_at, vdot, confidence, result
		FROM prediction_snapshots
		WHERE as_of <= ?
		ORDER BY computed_at DESC, rowid DESC
		LIMIT 1
	`, asOf.UTC().Format(time.RFC3339))
	return scanSnapshot(row)
}

// ListSnapshots returns up to limit snapshots, newest first
func (db *DB) ListSnapshots(ctx context.Context, limit int) ([]PredictionSnapshot, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, as_of, computed_at, vdot, confidence, result
		FROM prediction_snapshots
		ORDER BY computed_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []PredictionSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *s)
	}
	return snapshots, rows.Err()
}

// scanSnapshot scans a single snapshot from a row
func scanSnapshot(row rowScanner) (*PredictionSnapshot, error) {
	var s PredictionSnapshot
	var asOf, computedAt, result string

	err := row.Scan(&s.ID, &asOf, &computedAt, &s.VDOT, &s.Confidence, &result)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.AsOf, err = time.Parse(time.RFC3339, asOf); err != nil {
		return nil, fmt.Errorf("parsing as_of %q: %w", asOf, err)
	}
	if s.ComputedAt, err = time.Parse(computedAtLayout, computedAt); err != nil {
		return nil, fmt.Errorf("parsing computed_at %q: %w", computedAt, err)
	}
	s.Result = []byte(result)

	return &s, nil
}
