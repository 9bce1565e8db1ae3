// Package runstore persists solve outcomes to SQLite so repeated runs can be
// compared over time. The schema is owned by embedded golang-migrate
// migrations and applied on Open.
package runstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cdcooper84/essential-skills-RRC/internal/monitoring"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store records solver runs in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies any
// pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// Closing m would close the underlying DB connection; let it be
	// garbage collected instead.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Run is one recorded solve outcome. Kind distinguishes standalone Poisson
// solves from cavity simulations.
type Run struct {
	ID            string
	Kind          string
	StartedAt     time.Time
	GridNY        int
	GridNX        int
	L2Target      float64
	MaxIterations int
	CheckInterval int
	Iterations    int
	FinalResidual float64
	Converged     bool
	Duration      time.Duration
}

// RecordRun inserts a run and returns its ID. A missing ID is assigned a
// fresh UUID; a zero StartedAt is set to now.
func (s *Store) RecordRun(r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO solver_runs (
			run_id, kind, started_unix_nanos, grid_ny, grid_nx,
			l2_target, max_iterations, check_interval,
			iterations, final_residual, converged, duration_nanos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Kind, r.StartedAt.UnixNano(), r.GridNY, r.GridNX,
		r.L2Target, r.MaxIterations, r.CheckInterval,
		r.Iterations, r.FinalResidual, boolToInt(r.Converged), r.Duration.Nanoseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	monitoring.Logf("recorded %s run %s: %d iterations, residual %.3g, converged=%v",
		r.Kind, r.ID, r.Iterations, r.FinalResidual, r.Converged)
	return r.ID, nil
}

// ListRuns returns up to limit runs, most recent first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT run_id, kind, started_unix_nanos, grid_ny, grid_nx,
		       l2_target, max_iterations, check_interval,
		       iterations, final_residual, converged, duration_nanos
		FROM solver_runs
		ORDER BY started_unix_nanos DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedNanos, durationNanos int64
		var converged int
		if err := rows.Scan(
			&r.ID, &r.Kind, &startedNanos, &r.GridNY, &r.GridNX,
			&r.L2Target, &r.MaxIterations, &r.CheckInterval,
			&r.Iterations, &r.FinalResidual, &converged, &durationNanos,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.Unix(0, startedNanos)
		r.Duration = time.Duration(durationNanos)
		r.Converged = converged != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
