package migration

import (
	"context"

	"goancova/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// step is one idempotent schema change
type step struct {
	name string
	sql  string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
	steps   []step
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.1.0",
		steps: []step{
			{"create analysis_results table", createAnalysisResultsTable},
			{"create analysis_results indexes", createAnalysisResultsIndexes},
			{"create schema_migrations table", createSchemaMigrationsTable},
		},
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order and records the version
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, s := range r.steps {
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			return errors.DatabaseError("failed to "+s.name, err)
		}
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT (version) DO NOTHING`,
		r.version); err != nil {
		return errors.DatabaseError("failed to record schema version", err)
	}
	return nil
}

// Statements returns the schema statements in execution order
func (r *MigrationRunner) Statements() []string {
	out := make([]string, len(r.steps))
	for i, s := range r.steps {
		out[i] = s.sql
	}
	return out
}

const createAnalysisResultsTable = `
	CREATE TABLE IF NOT EXISTS analysis_results (
		id          TEXT PRIMARY KEY,
		kind        TEXT NOT NULL,
		dataset     TEXT NOT NULL DEFAULT '',
		dependent   TEXT NOT NULL DEFAULT '',
		factors     TEXT[] NOT NULL DEFAULT '{}',
		covariates  TEXT[] NOT NULL DEFAULT '{}',
		alpha       DOUBLE PRECISION NOT NULL,
		result_rows JSONB NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

const createAnalysisResultsIndexes = `
	CREATE INDEX IF NOT EXISTS idx_analysis_results_dependent
		ON analysis_results (dependent, created_at DESC)`

const createSchemaMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`
