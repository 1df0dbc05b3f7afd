package analysiscache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"pattiprep/internal/segments"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes incompatibly.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by an incompatible build.
var ErrSchemaMismatch = errors.New("analysis cache schema version mismatch")

// Key identifies one version of a file on disk.
type Key struct {
	Path    string
	Size    int64
	ModTime int64
}

// KeyFor stats path and builds its cache key.
func KeyFor(path string) (Key, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Key{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Key{}, err
	}
	return Key{Path: abs, Size: info.Size(), ModTime: info.ModTime().UnixNano()}, nil
}

// Store wraps the SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or connects to the cache database at dbPath.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (run 'pattiprep cache clear' or delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// Waveform returns cached bars for key, reporting false on a miss or when the
// file has changed since it was cached.
func (s *Store) Waveform(ctx context.Context, key Key, bars int) ([]float64, bool, error) {
	var size, modTime int64
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT size, mod_time, values_json FROM waveforms WHERE path = ? AND bars = ?`,
		key.Path, bars,
	).Scan(&size, &modTime, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup waveform: %w", err)
	}
	if size != key.Size || modTime != key.ModTime {
		return nil, false, nil
	}
	var values []float64
	if err := json.Unmarshal([]byte(payload), &values); err != nil {
		return nil, false, nil
	}
	return values, true, nil
}

// PutWaveform stores bars for key, replacing any previous row.
func (s *Store) PutWaveform(ctx context.Context, key Key, bars int, values []float64) error {
	payload, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode waveform: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO waveforms (path, bars, size, mod_time, values_json, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(path, bars) DO UPDATE SET
            size = excluded.size,
            mod_time = excluded.mod_time,
            values_json = excluded.values_json,
            updated_at = excluded.updated_at`,
		key.Path, bars, key.Size, key.ModTime, string(payload), now(),
	)
	if err != nil {
		return fmt.Errorf("store waveform: %w", err)
	}
	return nil
}

// SegmentPlan returns the cached segment plan for key under opts.
func (s *Store) SegmentPlan(ctx context.Context, key Key, opts segments.Options) ([]segments.Segment, bool, error) {
	var size, modTime int64
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT size, mod_time, plan_json FROM segment_plans WHERE path = ? AND options = ?`,
		key.Path, opts.String(),
	).Scan(&size, &modTime, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup segment plan: %w", err)
	}
	if size != key.Size || modTime != key.ModTime {
		return nil, false, nil
	}
	var plan []segments.Segment
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return nil, false, nil
	}
	return plan, true, nil
}

// PutSegmentPlan stores plan for key under opts.
func (s *Store) PutSegmentPlan(ctx context.Context, key Key, opts segments.Options, plan []segments.Segment) error {
	if plan == nil {
		plan = []segments.Segment{}
	}
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode segment plan: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO segment_plans (path, options, size, mod_time, plan_json, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(path, options) DO UPDATE SET
            size = excluded.size,
            mod_time = excluded.mod_time,
            plan_json = excluded.plan_json,
            updated_at = excluded.updated_at`,
		key.Path, opts.String(), key.Size, key.ModTime, string(payload), now(),
	)
	if err != nil {
		return fmt.Errorf("store segment plan: %w", err)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
