// Package memory holds in-process implementations of the repository ports,
// used when no database is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"goancova/domain/core"
	"goancova/models"
)

// ResultRepository keeps analysis records in a map
type ResultRepository struct {
	mu      sync.RWMutex
	records map[core.ID]*models.AnalysisRecord
}

// NewResultRepository creates an empty repository
func NewResultRepository() *ResultRepository {
	return &ResultRepository{records: make(map[core.ID]*models.AnalysisRecord)}
}

func (r *ResultRepository) Save(_ context.Context, record *models.AnalysisRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[record.ID]; exists {
		return fmt.Errorf("analysis %s already stored", record.ID)
	}
	stored := *record
	r.records[record.ID] = &stored
	return nil
}

func (r *ResultRepository) Get(_ context.Context, id core.ID) (*models.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w %s", core.ErrResultNotFound, id)
	}
	out := *record
	return &out, nil
}

func (r *ResultRepository) ListByDependent(_ context.Context, dependent string, limit int) ([]*models.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.AnalysisRecord
	for _, record := range r.records {
		if record.Dependent == dependent {
			rec := *record
			out = append(out, &rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
