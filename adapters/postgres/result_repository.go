package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"goancova/domain/core"
	"goancova/internal/migration"
	"goancova/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ResultRepository persists analysis records in postgres
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Connect opens a postgres pool through lib/pq and verifies it
func Connect(ctx context.Context, url string, maxOpenConns int) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	return db, nil
}

// EnsureSchema runs the schema migrations the repository depends on
func (r *ResultRepository) EnsureSchema(ctx context.Context) error {
	return migration.NewRunner().Run(ctx, r.db)
}

// Save inserts a completed analysis
func (r *ResultRepository) Save(ctx context.Context, record *models.AnalysisRecord) error {
	query := `
		INSERT INTO analysis_results (
			id, kind, dataset, dependent, factors, covariates, alpha, result_rows, created_at
		) VALUES (
			:id, :kind, :dataset, :dependent, :factors, :covariates, :alpha, :result_rows, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to insert analysis %s: %w", record.ID, err)
	}
	return nil
}

// Get retrieves an analysis by ID
func (r *ResultRepository) Get(ctx context.Context, id core.ID) (*models.AnalysisRecord, error) {
	query := `
		SELECT id, kind, dataset, dependent, factors, covariates, alpha, result_rows, created_at
		FROM analysis_results
		WHERE id = $1`

	var record models.AnalysisRecord
	if err := r.db.GetContext(ctx, &record, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w %s", core.ErrResultNotFound, id)
		}
		return nil, fmt.Errorf("failed to get analysis %s: %w", id, err)
	}
	return &record, nil
}

// ListByDependent returns the newest analyses of a dependent variable
func (r *ResultRepository) ListByDependent(ctx context.Context, dependent string, limit int) ([]*models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, kind, dataset, dependent, factors, covariates, alpha, result_rows, created_at
		FROM analysis_results
		WHERE dependent = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var records []*models.AnalysisRecord
	if err := r.db.SelectContext(ctx, &records, query, dependent, limit); err != nil {
		return nil, fmt.Errorf("failed to list analyses for %s: %w", dependent, err)
	}
	return records, nil
}
