package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"goancova/domain/core"
	"goancova/internal/anova"

	"github.com/lib/pq"
)

// AnalysisKind identifies which decomposition produced a record
type AnalysisKind string

const (
	KindAnova     AnalysisKind = "anova"
	KindAncova    AnalysisKind = "ancova"
	KindAnovaWide AnalysisKind = "anova_wide"
)

// ResultRow is one decomposition record with its significance attached
type ResultRow struct {
	anova.Result
	PValue      float64 `json:"p_value"`
	ExactPValue float64 `json:"exact_p_value"`
	// SeriesConverged is false when PValue comes from a series cut off at
	// its iteration cap; Significant is then decided on ExactPValue.
	SeriesConverged bool `json:"series_converged"`
	Significant     bool `json:"significant"`
}

// ResultRows is stored as a JSONB column
type ResultRows []ResultRow

// Value implements driver.Valuer interface
func (r ResultRows) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// Scan implements sql.Scanner interface
func (r *ResultRows) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ResultRows", value)
	}
	if len(bytes) == 0 {
		*r = nil
		return nil
	}
	return json.Unmarshal(bytes, r)
}

// AnalysisRecord is a completed analysis as persisted and served
type AnalysisRecord struct {
	ID         core.ID        `db:"id" json:"id"`
	Kind       AnalysisKind   `db:"kind" json:"kind"`
	Dataset    string         `db:"dataset" json:"dataset"`
	Dependent  string         `db:"dependent" json:"dependent"`
	Factors    pq.StringArray `db:"factors" json:"factors"`
	Covariates pq.StringArray `db:"covariates" json:"covariates"`
	Alpha      float64        `db:"alpha" json:"alpha"`
	Rows       ResultRows     `db:"result_rows" json:"rows"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// Primary returns the first row, the factor's own decomposition
func (a *AnalysisRecord) Primary() (ResultRow, bool) {
	if len(a.Rows) == 0 {
		return ResultRow{}, false
	}
	return a.Rows[0], true
}
