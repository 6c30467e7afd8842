package anova

// Source names what a decomposition record tests.
type Source string

const (
	SourceFactor    Source = "factor"
	SourceCovariate Source = "covariate"
	SourceColumns   Source = "columns"
)

// GroupSummary describes one group of a decomposition.
type GroupSummary struct {
	Key  string  `json:"key"`
	N    int     `json:"n"`
	Mean float64 `json:"mean"`
}

// Result is one row of an ANOVA/ANCOVA table.
type Result struct {
	Name      string `json:"name"`
	Source    Source `json:"source"`
	Dependent string `json:"dependent"`

	SSBetween float64 `json:"ss_between"`
	SSWithin  float64 `json:"ss_within"`
	SSTotal   float64 `json:"ss_total"`
	DFBetween int     `json:"df_between"`
	DFWithin  int     `json:"df_within"`
	MSBetween float64 `json:"ms_between"`
	MSWithin  float64 `json:"ms_within"`
	F         float64 `json:"f"`

	GrandMean float64        `json:"grand_mean"`
	N         int            `json:"n"`
	Groups    []GroupSummary `json:"groups"`

	// Intercept and slope of the regression used to adjust the dependent
	// variable; only set for covariate records.
	Coefficients []float64 `json:"coefficients,omitempty"`
}
