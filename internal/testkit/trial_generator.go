// Package testkit generates deterministic synthetic datasets for tests and
// demos.
package testkit

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"

	"goancova/domain/dataset"
)

// Column names of a generated trial
const (
	ColumnSubject   = "subject"
	ColumnCondition = "condition"
	ColumnAge       = "age"
	ColumnMember    = "member"
	ColumnScore     = "score"
)

// TrialGeneratorConfig configures the trial data generator.
// score = Intercept + Slope*age + Effects[condition] + N(0, NoiseSD)
type TrialGeneratorConfig struct {
	Subjects   int                `json:"subjects"`
	Conditions []string           `json:"conditions"`
	Effects    map[string]float64 `json:"effects"`
	Intercept  float64            `json:"intercept"`
	Slope      float64            `json:"slope"`
	AgeMin     float64            `json:"age_min"`
	AgeMax     float64            `json:"age_max"`
	NoiseSD    float64            `json:"noise_sd"`
	MemberRate float64            `json:"member_rate"`
	Seed       int64              `json:"seed"`
}

// DefaultTrialConfig returns a two-arm trial with a treatment effect of 5
func DefaultTrialConfig() TrialGeneratorConfig {
	return TrialGeneratorConfig{
		Subjects:   40,
		Conditions: []string{"control", "treatment"},
		Effects:    map[string]float64{"treatment": 5},
		Intercept:  10,
		Slope:      2,
		AgeMin:     18,
		AgeMax:     65,
		NoiseSD:    1,
		MemberRate: 0.3,
		Seed:       42,
	}
}

// TrialRow is one generated subject
type TrialRow struct {
	Subject   string
	Condition string
	Age       float64
	Member    bool
	Score     float64
}

// TrialDataGenerator generates subjects assigned round-robin to conditions
type TrialDataGenerator struct {
	config TrialGeneratorConfig
	rng    *rand.Rand
}

// NewTrialDataGenerator creates a new trial data generator
func NewTrialDataGenerator(config TrialGeneratorConfig) *TrialDataGenerator {
	return &TrialDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRows draws every subject
func (g *TrialDataGenerator) GenerateRows() ([]TrialRow, error) {
	if g.config.Subjects < 1 {
		return nil, fmt.Errorf("subjects must be positive, got %d", g.config.Subjects)
	}
	if len(g.config.Conditions) == 0 {
		return nil, fmt.Errorf("at least one condition is required")
	}
	if g.config.AgeMax < g.config.AgeMin {
		return nil, fmt.Errorf("age range [%g, %g] is empty", g.config.AgeMin, g.config.AgeMax)
	}

	rows := make([]TrialRow, g.config.Subjects)
	for i := range rows {
		condition := g.config.Conditions[i%len(g.config.Conditions)]
		age := g.config.AgeMin + g.rng.Float64()*(g.config.AgeMax-g.config.AgeMin)
		noise := g.rng.NormFloat64() * g.config.NoiseSD

		rows[i] = TrialRow{
			Subject:   fmt.Sprintf("subject_%04d", i+1),
			Condition: condition,
			Age:       age,
			Member:    g.rng.Float64() < g.config.MemberRate,
			Score:     g.config.Intercept + g.config.Slope*age + g.config.Effects[condition] + noise,
		}
	}
	return rows, nil
}

// Store generates the trial as a column store
func (g *TrialDataGenerator) Store() (*dataset.Store, error) {
	rows, err := g.GenerateRows()
	if err != nil {
		return nil, err
	}

	subjects := make([]string, len(rows))
	conditions := make([]string, len(rows))
	ages := make([]float64, len(rows))
	members := make([]bool, len(rows))
	scores := make([]float64, len(rows))
	for i, r := range rows {
		subjects[i], conditions[i], ages[i], members[i], scores[i] = r.Subject, r.Condition, r.Age, r.Member, r.Score
	}

	s := dataset.NewStore()
	if err := s.AddCategorical(ColumnSubject, subjects); err != nil {
		return nil, err
	}
	if err := s.AddCategorical(ColumnCondition, conditions); err != nil {
		return nil, err
	}
	if err := s.AddNumerical(ColumnAge, ages); err != nil {
		return nil, err
	}
	if err := s.AddBinary(ColumnMember, members); err != nil {
		return nil, err
	}
	if err := s.AddNumerical(ColumnScore, scores); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteCSV writes the trial with a header row
func (g *TrialDataGenerator) WriteCSV(w io.Writer) error {
	rows, err := g.GenerateRows()
	if err != nil {
		return err
	}

	out := csv.NewWriter(w)
	if err := out.Write([]string{ColumnSubject, ColumnCondition, ColumnAge, ColumnMember, ColumnScore}); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Subject,
			r.Condition,
			strconv.FormatFloat(r.Age, 'f', 2, 64),
			strconv.FormatBool(r.Member),
			strconv.FormatFloat(r.Score, 'f', 3, 64),
		}
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}
