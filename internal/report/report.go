// Package report renders analysis records and column descriptives as
// markdown tables, optionally converted to HTML.
package report

import (
	"fmt"
	"math"
	"strings"

	"goancova/domain/dataset"
	"goancova/internal/profiling"
	"goancova/models"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Markdown renders one analysis record as a source table followed by the
// group means of every row
func Markdown(record *models.AnalysisRecord) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("## %s\n\n", title(record)))
	if record.Dataset != "" {
		b.WriteString(fmt.Sprintf("Dataset: `%s`, alpha = %s\n\n", record.Dataset, number(record.Alpha)))
	}

	b.WriteString("| Source | SS between | SS within | df | MS between | MS within | F | p | Exact p | |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|---|\n")
	capped := false
	for _, row := range record.Rows {
		mark := ""
		if row.Significant {
			mark = "*"
		}
		p := number(row.PValue)
		if !row.SeriesConverged {
			p += " (capped)"
			capped = true
		}
		b.WriteString(fmt.Sprintf("| %s (%s) | %s | %s | %d, %d | %s | %s | %s | %s | %s | %s |\n",
			escape(row.Name), row.Source,
			number(row.SSBetween), number(row.SSWithin),
			row.DFBetween, row.DFWithin,
			number(row.MSBetween), number(row.MSWithin),
			number(row.F), p, number(row.ExactPValue), mark))
	}
	if capped {
		b.WriteString("\n(capped): the p-value series hit its iteration cap; significance follows the exact p.\n")
	}

	for _, row := range record.Rows {
		if len(row.Groups) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n### Groups of %s\n\n", escape(row.Name)))
		b.WriteString(fmt.Sprintf("Grand mean %s over %d observations", number(row.GrandMean), row.N))
		if len(row.Coefficients) == 2 {
			b.WriteString(fmt.Sprintf(", adjusted with intercept %s and slope %s",
				number(row.Coefficients[0]), number(row.Coefficients[1])))
		}
		b.WriteString(".\n\n| Group | N | Mean |\n|---|---:|---:|\n")
		for _, g := range row.Groups {
			b.WriteString(fmt.Sprintf("| %s | %d | %s |\n", escape(g.Key), g.N, number(g.Mean)))
		}
	}

	return b.String()
}

// Describe renders the kind and descriptives of every column in the store.
// Non-numerical columns list their distinct level count instead.
func Describe(store *dataset.Store) string {
	var b strings.Builder

	b.WriteString("## Columns\n\n")
	b.WriteString("| Column | Kind | N | Mean | Std dev | Median | Min | Max |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|---:|\n")
	for _, c := range store.Columns() {
		if c.Kind() != dataset.Numerical {
			b.WriteString(fmt.Sprintf("| %s | %s | %d | %d levels | | | | |\n",
				escape(c.Name()), c.Kind(), c.Len(), distinct(c)))
			continue
		}
		s, err := c.Describe()
		if err != nil {
			b.WriteString(fmt.Sprintf("| %s | %s | %d | %s | | | | |\n",
				escape(c.Name()), c.Kind(), c.Len(), escape(err.Error())))
			continue
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s | %s | %s | %s |\n",
			escape(c.Name()), c.Kind(), s.N,
			number(s.Mean), number(s.StdDev), number(s.Median), number(s.Min), number(s.Max)))
	}
	return b.String()
}

// Assumptions renders the group shapes and the Levene test of an
// assumption check
func Assumptions(a *profiling.Assumptions) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("## Assumptions for %s by %s\n\n", a.Dependent, strings.Join(a.Factors, ", ")))
	b.WriteString("| Group | N | Mean | Std dev | Skewness | Excess kurtosis | Outliers | Normality p | |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---|\n")
	for _, g := range a.Groups {
		mark := ""
		if !g.IsNormal {
			mark = "non-normal"
		}
		b.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %d | %s | %s |\n",
			escape(g.Key), g.N, number(g.Mean), number(g.StdDev),
			number(g.Skewness), number(g.ExcessKurtosis), g.Outliers, number(g.NormalityP), mark))
	}

	verdict := "equal variances"
	if !a.EqualVariances {
		verdict = "unequal variances"
	}
	p := number(a.LeveneP)
	if !a.LeveneConverged {
		p += " (capped, decided on exact p)"
	}
	b.WriteString(fmt.Sprintf("\nLevene F(%d, %d) = %s, p = %s: %s at alpha = %s.\n",
		a.LeveneDF1, a.LeveneDF2, number(a.LeveneF), p, verdict, number(a.Alpha)))
	return b.String()
}

// HTML converts markdown produced by this package to an HTML fragment
func HTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(md), p, renderer))
}

func title(record *models.AnalysisRecord) string {
	switch record.Kind {
	case models.KindAncova:
		return fmt.Sprintf("ANCOVA of %s by %s adjusting for %s",
			record.Dependent, strings.Join(record.Factors, ", "), strings.Join(record.Covariates, ", "))
	case models.KindAnovaWide:
		return fmt.Sprintf("ANOVA across %s", strings.Join(record.Factors, ", "))
	default:
		return fmt.Sprintf("ANOVA of %s by %s", record.Dependent, strings.Join(record.Factors, ", "))
	}
}

func distinct(c *dataset.Column) int {
	seen := make(map[string]struct{})
	for _, v := range c.Values() {
		seen[v.String()] = struct{}{}
	}
	return len(seen)
}

func number(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 0):
		return "∞"
	case v != 0 && math.Abs(v) < 1e-4:
		return fmt.Sprintf("%.3e", v)
	default:
		return fmt.Sprintf("%.4f", v)
	}
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
