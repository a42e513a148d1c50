// Package store keeps a SQLite ledger of election trials.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"amoebot/internal/election"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// Trial is one recorded election run.
type Trial struct {
	ID      string
	SweepID string
	Shape   string
	Size    int
	Fill    float64
	Seed    int64

	Particles   int
	Agents      int
	Cycles      int
	Activations int64
	Rounds      int64
	Leaders     int
	Terminated  bool
	Err         string

	Duration  time.Duration
	CreatedAt time.Time
}

// FromMetrics copies the counters of m into t.
func (t *Trial) FromMetrics(m election.Metrics) {
	t.Particles = m.Particles
	t.Agents = m.Agents
	t.Cycles = m.Cycles
	t.Activations = m.Activations
	t.Rounds = m.Rounds
	t.Leaders = m.Leaders
	t.Terminated = m.Terminated
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Shape   string
	SweepID string
	Limit   int
}

// ShapeSummary aggregates the trials of one shape.
type ShapeSummary struct {
	Shape          string
	Trials         int
	Failures       int
	MeanActivation float64
	MaxActivation  int64
}

// Store is a trial ledger backed by SQLite.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	path   string
	closed bool
}

// Open opens or creates the ledger at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection keeps concurrent Record calls ordered.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS trials (
		id TEXT PRIMARY KEY,
		sweep_id TEXT NOT NULL DEFAULT '',
		shape TEXT NOT NULL,
		size INTEGER NOT NULL,
		fill REAL NOT NULL,
		seed INTEGER NOT NULL,
		particles INTEGER NOT NULL,
		agents INTEGER NOT NULL,
		cycles INTEGER NOT NULL,
		activations INTEGER NOT NULL,
		rounds INTEGER NOT NULL,
		leaders INTEGER NOT NULL,
		terminated INTEGER NOT NULL,
		err TEXT NOT NULL DEFAULT '',
		duration_ns INTEGER NOT NULL,
		created_ns INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trials_shape ON trials(shape);
	CREATE INDEX IF NOT EXISTS idx_trials_sweep ON trials(sweep_id);
	CREATE INDEX IF NOT EXISTS idx_trials_created ON trials(created_ns);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Record inserts t, assigning an ID and timestamp when they are unset.
func (s *Store) Record(ctx context.Context, t *Trial) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trials (id, sweep_id, shape, size, fill, seed, particles, agents, cycles,
			activations, rounds, leaders, terminated, err, duration_ns, created_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SweepID, t.Shape, t.Size, t.Fill, t.Seed, t.Particles, t.Agents, t.Cycles,
		t.Activations, t.Rounds, t.Leaders, t.Terminated, t.Err,
		int64(t.Duration), t.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to record trial: %w", err)
	}
	return nil
}

// List returns matching trials, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Trial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	query := `SELECT id, sweep_id, shape, size, fill, seed, particles, agents, cycles,
		activations, rounds, leaders, terminated, err, duration_ns, created_ns FROM trials`
	var where []string
	var args []any
	if f.Shape != "" {
		where = append(where, "shape = ?")
		args = append(args, f.Shape)
	}
	if f.SweepID != "" {
		where = append(where, "sweep_id = ?")
		args = append(args, f.SweepID)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_ns DESC, rowid DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trials: %w", err)
	}
	defer rows.Close()

	var out []Trial
	for rows.Next() {
		var t Trial
		var durationNS, createdNS int64
		if err := rows.Scan(&t.ID, &t.SweepID, &t.Shape, &t.Size, &t.Fill, &t.Seed,
			&t.Particles, &t.Agents, &t.Cycles, &t.Activations, &t.Rounds, &t.Leaders,
			&t.Terminated, &t.Err, &durationNS, &createdNS); err != nil {
			return nil, fmt.Errorf("failed to scan trial: %w", err)
		}
		t.Duration = time.Duration(durationNS)
		t.CreatedAt = time.Unix(0, createdNS)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Summarize aggregates trials per shape, optionally restricted to one sweep.
func (s *Store) Summarize(ctx context.Context, sweepID string) ([]ShapeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	query := `SELECT shape, COUNT(*),
		SUM(CASE WHEN leaders = 1 AND terminated = 1 AND err = '' THEN 0 ELSE 1 END),
		AVG(activations), MAX(activations)
		FROM trials`
	var args []any
	if sweepID != "" {
		query += " WHERE sweep_id = ?"
		args = append(args, sweepID)
	}
	query += " GROUP BY shape ORDER BY shape"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize trials: %w", err)
	}
	defer rows.Close()

	var out []ShapeSummary
	for rows.Next() {
		var sum ShapeSummary
		if err := rows.Scan(&sum.Shape, &sum.Trials, &sum.Failures, &sum.MeanActivation, &sum.MaxActivation); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
