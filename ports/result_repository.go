package ports

import (
	"context"

	"goancova/domain/core"
	"goancova/models"
)

// ResultRepository defines the interface for analysis result storage
type ResultRepository interface {
	// Save stores a completed analysis
	Save(ctx context.Context, record *models.AnalysisRecord) error

	// Get retrieves an analysis by ID
	Get(ctx context.Context, id core.ID) (*models.AnalysisRecord, error)

	// ListByDependent returns the most recent analyses of a dependent variable
	ListByDependent(ctx context.Context, dependent string, limit int) ([]*models.AnalysisRecord, error)
}
