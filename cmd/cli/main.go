package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"goancova/adapters/excel"
	"goancova/app"
	apperrors "goancova/internal/errors"
	"goancova/internal/fdist"
	"goancova/internal/report"
	"goancova/internal/testkit"
	"goancova/models"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// globalOptions are shared by every command that reads a data file
type globalOptions struct {
	sheet           string
	zeroOneAsBinary bool
	alpha           float64
	asJSON          bool
	asHTML          bool
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "goancova",
		Short:         "ANOVA and ANCOVA over CSV and Excel data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "Excel sheet to read (default: first sheet)")
	rootCmd.PersistentFlags().BoolVar(&opts.zeroOneAsBinary, "zero-one-binary", false, "Treat columns of only 0 and 1 as binary")
	rootCmd.PersistentFlags().Float64Var(&opts.alpha, "alpha", 0.05, "Significance threshold")
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&opts.asHTML, "html", false, "Print reports as HTML instead of markdown")

	rootCmd.AddCommand(
		newDescribeCmd(opts),
		newAnovaCmd(opts),
		newAncovaCmd(opts),
		newWideCmd(opts),
		newAssumptionsCmd(opts),
		newPValueCmd(),
		newGenerateCmd(),
	)
	return rootCmd
}

func newGenerateCmd() *cobra.Command {
	cfg := testkit.DefaultTrialConfig()

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic two-arm trial as CSV to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return testkit.NewTrialDataGenerator(cfg).WriteCSV(cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&cfg.Subjects, "subjects", cfg.Subjects, "Number of subjects")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	cmd.Flags().Float64Var(&cfg.Slope, "slope", cfg.Slope, "Score increase per year of age")
	cmd.Flags().Float64Var(&cfg.NoiseSD, "noise", cfg.NoiseSD, "Standard deviation of the score noise")
	return cmd
}

func newDescribeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe FILE",
		Short: "Show the inferred kind and descriptives of every column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(args[0], opts)
			if err != nil {
				return err
			}
			return printMarkdown(cmd.OutOrStdout(), report.Describe(svc.Store()), opts)
		},
	}
}

func newAnovaCmd(opts *globalOptions) *cobra.Command {
	var factors, dependents []string

	cmd := &cobra.Command{
		Use:   "anova FILE",
		Short: "One-way ANOVA of one or more dependent variables over factor levels",
		Long: `Decompose the variance of each dependent variable over the levels of the
given categorical factors. Several --dv flags run the analyses in parallel.

Example: goancova anova scores.csv --factor condition --dv score`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(args[0], opts)
			if err != nil {
				return err
			}
			records, err := svc.Batch(cmd.Context(), factors, dependents)
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), records, opts)
		},
	}

	cmd.Flags().StringSliceVar(&factors, "factor", nil, "Categorical factor column (repeatable)")
	cmd.Flags().StringSliceVar(&dependents, "dv", nil, "Numerical dependent column (repeatable)")
	_ = cmd.MarkFlagRequired("factor")
	_ = cmd.MarkFlagRequired("dv")
	return cmd
}

func newAncovaCmd(opts *globalOptions) *cobra.Command {
	var factor, dependent string
	var covariates []string

	cmd := &cobra.Command{
		Use:   "ancova FILE",
		Short: "ANOVA of the factor followed by one adjusted decomposition per covariate",
		Long: `Run the factor decomposition, then regress the dependent variable on each
covariate and decompose the adjusted scores over the same factor levels.

Example: goancova ancova scores.csv --factor condition --covariate age --dv score`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(args[0], opts)
			if err != nil {
				return err
			}
			record, err := svc.Ancova(cmd.Context(), factor, covariates, dependent)
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), []*models.AnalysisRecord{record}, opts)
		},
	}

	cmd.Flags().StringVar(&factor, "factor", "", "Categorical factor column")
	cmd.Flags().StringSliceVar(&covariates, "covariate", nil, "Numerical covariate column (repeatable)")
	cmd.Flags().StringVar(&dependent, "dv", "", "Numerical dependent column")
	_ = cmd.MarkFlagRequired("factor")
	_ = cmd.MarkFlagRequired("dv")
	return cmd
}

func newWideCmd(opts *globalOptions) *cobra.Command {
	var columns []string

	cmd := &cobra.Command{
		Use:   "wide FILE",
		Short: "ANOVA treating each numerical column as one group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(args[0], opts)
			if err != nil {
				return err
			}
			record, err := svc.AnovaWide(cmd.Context(), columns)
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), []*models.AnalysisRecord{record}, opts)
		},
	}

	cmd.Flags().StringSliceVar(&columns, "column", nil, "Numerical column forming one group (repeatable)")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func newAssumptionsCmd(opts *globalOptions) *cobra.Command {
	var factors []string
	var dependent string

	cmd := &cobra.Command{
		Use:   "assumptions FILE",
		Short: "Check group normality and equal variances before an ANOVA",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadService(args[0], opts)
			if err != nil {
				return err
			}
			result, err := svc.Assumptions(cmd.Context(), factors, dependent)
			if err != nil {
				return err
			}
			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return printMarkdown(cmd.OutOrStdout(), report.Assumptions(result), opts)
		},
	}

	cmd.Flags().StringSliceVar(&factors, "factor", nil, "Categorical factor column (repeatable)")
	cmd.Flags().StringVar(&dependent, "dv", "", "Numerical dependent column")
	_ = cmd.MarkFlagRequired("factor")
	_ = cmd.MarkFlagRequired("dv")
	return cmd
}

func newPValueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pvalue F D1 D2",
		Short: "Upper-tail probability of an F statistic",
		Example: `  goancova pvalue 3 2 3
  p = 0.384900 (exact 0.192450)`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]float64, len(args))
			for i, arg := range args {
				v, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid number %q: %w", arg, err)
				}
				values[i] = v
			}
			f, d1, d2 := values[0], values[1], values[2]
			p, converged := fdist.PValueConverged(f, d1, d2)
			note := ""
			if !converged {
				note = ", series hit the iteration cap"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "p = %.6f (exact %.6f%s)\n", p, fdist.ExactPValue(f, d1, d2), note)
			return nil
		},
	}
}

// loadService reads the data file and wraps it in a service without
// persistence
func loadService(path string, opts *globalOptions) (*app.AnalysisService, error) {
	if !(opts.alpha > 0 && opts.alpha < 1) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("--alpha must be in (0, 1), got %g", opts.alpha))
	}
	reader := excel.NewDataReader(path, excel.Options{
		Sheet:           opts.sheet,
		ZeroOneAsBinary: opts.zeroOneAsBinary,
	})
	store, err := reader.ReadStore()
	if err != nil {
		return nil, err
	}
	return app.NewAnalysisService(store, filepath.Base(path), nil, opts.alpha, 4), nil
}

func printRecords(w io.Writer, records []*models.AnalysisRecord, opts *globalOptions) error {
	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	for i, record := range records {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := printMarkdown(w, report.Markdown(record), opts); err != nil {
			return err
		}
	}
	return nil
}

func printMarkdown(w io.Writer, md string, opts *globalOptions) error {
	if opts.asHTML {
		md = report.HTML(md)
	}
	_, err := io.WriteString(w, md)
	return err
}
