package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"goancova/domain/core"
	"goancova/domain/dataset"
	"goancova/internal/anova"
	apperrors "goancova/internal/errors"
	"goancova/internal/fdist"
	"goancova/internal/profiling"
	"goancova/models"
	"goancova/ports"

	"golang.org/x/sync/errgroup"
)

// AnalysisService runs decompositions over a loaded store, attaches
// significance and persists the resulting records
type AnalysisService struct {
	store       *dataset.Store
	datasetName string
	repo        ports.ResultRepository
	alpha       float64
	maxParallel int
}

// NewAnalysisService creates an analysis service. The store is treated as
// read-only once handed over.
func NewAnalysisService(store *dataset.Store, datasetName string, repo ports.ResultRepository, alpha float64, maxParallel int) *AnalysisService {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &AnalysisService{
		store:       store,
		datasetName: datasetName,
		repo:        repo,
		alpha:       alpha,
		maxParallel: maxParallel,
	}
}

// Store returns the dataset the service analyses
func (s *AnalysisService) Store() *dataset.Store {
	return s.store
}

// Alpha returns the significance threshold
func (s *AnalysisService) Alpha() float64 {
	return s.alpha
}

// Anova decomposes the dependent variable over the levels of the factors
func (s *AnalysisService) Anova(ctx context.Context, factors []string, dependent string) (*models.AnalysisRecord, error) {
	result, err := anova.Decompose(s.store, factors, dependent)
	if err != nil {
		return nil, apperrors.Wrapf(err, "anova of %s", dependent)
	}

	record := s.newRecord(models.KindAnova, dependent, factors, nil, *result)
	if err := s.save(ctx, record); err != nil {
		return nil, err
	}
	log.Printf("[AnalysisService] anova %s ~ %v: F=%.4f p=%.4g", dependent, factors, result.F, record.Rows[0].PValue)
	return record, nil
}

// Ancova runs the factor decomposition followed by one covariate-adjusted
// decomposition per covariate
func (s *AnalysisService) Ancova(ctx context.Context, factor string, covariates []string, dependent string) (*models.AnalysisRecord, error) {
	results, err := anova.Ancova(s.store, factor, covariates, dependent)
	if err != nil {
		return nil, apperrors.Wrapf(err, "ancova of %s", dependent)
	}

	record := s.newRecord(models.KindAncova, dependent, []string{factor}, covariates, results...)
	if err := s.save(ctx, record); err != nil {
		return nil, err
	}
	log.Printf("[AnalysisService] ancova %s ~ %s + %v: %d records", dependent, factor, covariates, len(record.Rows))
	return record, nil
}

// AnovaWide compares numerical columns, each column being one group
func (s *AnalysisService) AnovaWide(ctx context.Context, columns []string) (*models.AnalysisRecord, error) {
	result, err := anova.AnovaWide(s.store, columns)
	if err != nil {
		return nil, apperrors.Wrapf(err, "anova of columns %v", columns)
	}

	record := s.newRecord(models.KindAnovaWide, "", columns, nil, *result)
	if err := s.save(ctx, record); err != nil {
		return nil, err
	}
	log.Printf("[AnalysisService] anova over columns %v: F=%.4f", columns, result.F)
	return record, nil
}

// Assumptions checks per-group normality and equal variances of the
// dependent variable over the factor levels
func (s *AnalysisService) Assumptions(ctx context.Context, factors []string, dependent string) (*profiling.Assumptions, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := profiling.CheckAssumptions(s.store, factors, dependent, s.alpha)
	if err != nil {
		return nil, apperrors.Wrapf(err, "assumption check of %s", dependent)
	}
	log.Printf("[AnalysisService] assumptions %s ~ %v: normal=%t equal variances=%t",
		dependent, factors, result.AllNormal, result.EqualVariances)
	return result, nil
}

// Batch runs one ANOVA per dependent variable in parallel, bounded by the
// configured parallelism. Records come back in the order of dependents; the
// first failure cancels the remaining work.
func (s *AnalysisService) Batch(ctx context.Context, factors []string, dependents []string) ([]*models.AnalysisRecord, error) {
	if len(dependents) == 0 {
		return nil, apperrors.InvalidInput("no dependent variables given")
	}

	started := time.Now()
	records := make([]*models.AnalysisRecord, len(dependents))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)

	for i, dependent := range dependents {
		i, dependent := i, dependent
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			record, err := s.Anova(gCtx, factors, dependent)
			if err != nil {
				return err
			}
			records[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Printf("[AnalysisService] batch of %d analyses finished in %s", len(dependents), time.Since(started))
	return records, nil
}

// Result fetches a stored analysis
func (s *AnalysisService) Result(ctx context.Context, id core.ID) (*models.AnalysisRecord, error) {
	if s.repo == nil {
		return nil, apperrors.NotFound("analysis " + id.String())
	}
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.Wrapf(err, "analysis %s", id)
	}
	return record, nil
}

// History lists the newest analyses of a dependent variable
func (s *AnalysisService) History(ctx context.Context, dependent string, limit int) ([]*models.AnalysisRecord, error) {
	if s.repo == nil {
		return nil, nil
	}
	records, err := s.repo.ListByDependent(ctx, dependent, limit)
	if err != nil {
		return nil, apperrors.DatabaseError(fmt.Sprintf("listing analyses of %s", dependent), err)
	}
	return records, nil
}

// Significance attaches the series and exact p-values to a decomposition
// record and flags it against alpha. A series that did not converge is
// reported as is but the flag follows the exact p-value.
func Significance(result anova.Result, alpha float64) models.ResultRow {
	d1, d2 := float64(result.DFBetween), float64(result.DFWithin)
	p, converged := fdist.PValueConverged(result.F, d1, d2)
	exact := fdist.ExactPValue(result.F, d1, d2)

	decision := p
	if !converged {
		log.Printf("[AnalysisService] p-value series for %s hit the iteration cap at F=%g (%g, %g); using exact p=%g",
			result.Name, result.F, d1, d2, exact)
		decision = exact
	}
	return models.ResultRow{
		Result:          result,
		PValue:          p,
		ExactPValue:     exact,
		SeriesConverged: converged,
		Significant:     decision < alpha,
	}
}

func (s *AnalysisService) newRecord(kind models.AnalysisKind, dependent string, factors, covariates []string, results ...anova.Result) *models.AnalysisRecord {
	rows := make(models.ResultRows, len(results))
	for i, r := range results {
		rows[i] = Significance(r, s.alpha)
	}
	return &models.AnalysisRecord{
		ID:         core.NewID(),
		Kind:       kind,
		Dataset:    s.datasetName,
		Dependent:  dependent,
		Factors:    append([]string{}, factors...),
		Covariates: append([]string{}, covariates...),
		Alpha:      s.alpha,
		Rows:       rows,
		CreatedAt:  time.Now().UTC(),
	}
}

func (s *AnalysisService) save(ctx context.Context, record *models.AnalysisRecord) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(ctx, record); err != nil {
		log.Printf("[AnalysisService] failed to save analysis %s: %v", record.ID, err)
		return apperrors.DatabaseError("failed to save analysis", err)
	}
	return nil
}
