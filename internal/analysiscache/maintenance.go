package analysiscache

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Stats summarises cache contents.
type Stats struct {
	Path         string
	SizeBytes    int64
	Waveforms    int
	SegmentPlans int
}

// Stats counts cached rows and reports the database file size.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM waveforms").Scan(&stats.Waveforms); err != nil {
		return stats, fmt.Errorf("count waveforms: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM segment_plans").Scan(&stats.SegmentPlans); err != nil {
		return stats, fmt.Errorf("count segment plans: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats, nil
}

// Clear deletes every cached row and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin clear tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var removed int64
	for _, table := range []string{"waveforms", "segment_plans"} {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+table)
		if err != nil {
			return 0, fmt.Errorf("clear %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit clear: %w", err)
	}
	return removed, nil
}

// Prune removes rows whose file no longer exists.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	var removed int64
	for _, table := range []string{"waveforms", "segment_plans"} {
		paths, err := s.distinctPaths(ctx, table)
		if err != nil {
			return removed, err
		}
		for _, path := range paths {
			if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
				continue
			}
			res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE path = ?", path)
			if err != nil {
				return removed, fmt.Errorf("prune %s: %w", table, err)
			}
			n, _ := res.RowsAffected()
			removed += n
		}
	}
	return removed, nil
}

func (s *Store) distinctPaths(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT path FROM "+table)
	if err != nil {
		return nil, fmt.Errorf("list %s paths: %w", table, err)
	}
	defer rows.Close()
	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}
