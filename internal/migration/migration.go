package migration

import (
	"context"

	"chronle/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createEventsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create events table")
	}

	if err := r.createPuzzlesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create puzzles table")
	}

	if err := r.createPuzzleEventsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create puzzle_events table")
	}

	if err := r.createOrderAttemptsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create order_attempts table")
	}

	if err := r.createLLMUsageTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create llm_usage table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createEventsTable(ctx context.Context, db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			year INTEGER NOT NULL,
			text TEXT NOT NULL,
			title TEXT NOT NULL,
			category TEXT NOT NULL,
			difficulty INTEGER NOT NULL CHECK (difficulty BETWEEN 1 AND 5),
			region TEXT NOT NULL,
			used BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createPuzzlesTable(ctx context.Context, db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS puzzles (
			id TEXT PRIMARY KEY,
			day DATE NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createPuzzleEventsTable(ctx context.Context, db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS puzzle_events (
			puzzle_id TEXT NOT NULL REFERENCES puzzles(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			event_id TEXT NOT NULL,
			year INTEGER NOT NULL,
			text TEXT NOT NULL,
			PRIMARY KEY (puzzle_id, position)
		)
	`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createOrderAttemptsTable(ctx context.Context, db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS order_attempts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			puzzle_id TEXT NOT NULL REFERENCES puzzles(id),
			ordering JSONB NOT NULL,
			feedback JSONB NOT NULL,
			pairs_correct INTEGER NOT NULL,
			total_pairs INTEGER NOT NULL,
			solved BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, puzzle_id)
		)
	`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createLLMUsageTable(ctx context.Context, db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS llm_usage (
			id UUID PRIMARY KEY,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			operation_type TEXT NOT NULL,
			stage_tag TEXT NOT NULL DEFAULT '',
			year INTEGER,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			reasoning_tokens INTEGER NOT NULL DEFAULT 0,
			input_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
			output_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
			cache_savings_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
			cache_hit BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_events_year ON events(year)`,
		`CREATE INDEX IF NOT EXISTS idx_events_year_used ON events(year, used)`,
		`CREATE INDEX IF NOT EXISTS idx_puzzles_day ON puzzles(day)`,
		`CREATE INDEX IF NOT EXISTS idx_order_attempts_user ON order_attempts(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_llm_usage_created ON llm_usage(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_llm_usage_model ON llm_usage(model, created_at)`,
	}

	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return err
		}
	}

	return nil
}
