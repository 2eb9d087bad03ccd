package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nick-merrill/life-expectancy/internal/domain"
	"github.com/nick-merrill/life-expectancy/internal/infra/chartpng"
	"github.com/nick-merrill/life-expectancy/internal/infra/logger"
	"github.com/nick-merrill/life-expectancy/internal/usecase"
)

func analyzeCmd() *cobra.Command {
	var workspace string
	var table string
	var minAge int
	var profile string
	var optimistic bool
	var percentiles []int
	var chartOut string
	var noChart bool
	var format string

	c := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze death-age odds from a life table at a given starting age",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				// A bare CSV path still works without a workspace.
				if table != "" && looksLikePath(table) && fileExists(table) {
					if abs, aerr := filepath.Abs(table); aerr == nil {
						table = abs
					}
					ws = standaloneWorkspace(table)
				} else {
					return err
				}
			} else {
				// Standalone runs skip the file logger rather than drop a
				// .lifex/ directory next to an arbitrary CSV.
				debug, _ := cmd.Flags().GetBool("debug")
				cleanup, _ := logger.Setup(logger.Config{Root: ws.root, Debug: debug})
				if cleanup != nil {
					defer func() { _ = cleanup() }()
				}
			}
			log := logger.L()

			req, err := buildAnalyzeRequest(cmd, ws, analyzeFlags{
				table:       table,
				minAge:      minAge,
				profile:     profile,
				optimistic:  optimistic,
				percentiles: percentiles,
				chartOut:    chartOut,
				noChart:     noChart,
			})
			if err != nil {
				return err
			}

			log.Info("analysis.start",
				"table_path", req.TablePath,
				"min_age", req.MinAge,
				"optimistic", req.Optimistic,
			)

			uc := usecase.NewAnalyze(ws.tables, ws.charts)
			a, err := uc.Execute(cmd.Context(), req)
			if err != nil {
				log.Error("analysis.failed", "table_path", req.TablePath, "min_age", req.MinAge, "err", err)
				return err
			}

			log.Info("analysis.ok",
				"table", a.Table,
				"min_age", a.Summary.MinAge,
				"buckets", len(a.Distribution.Buckets),
				"chart_path", a.ChartPath,
			)

			return printAnalysis(os.Stdout, a, format)
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&table, "table", "t", "", "Life table name or CSV path (optional; defaults to the workspace default table)")
	c.Flags().IntVarP(&minAge, "min-age", "m", 0, "Condition the analysis on surviving to this age")
	c.Flags().StringVarP(&profile, "profile", "p", "", "Profile name from profiles.yaml (optional)")
	c.Flags().BoolVar(&optimistic, "optimistic", false, "Spread the terminal bucket over later ages before analyzing")
	c.Flags().IntSliceVar(&percentiles, "percentiles", nil, "Percentiles to report (default 10,50,90)")
	c.Flags().StringVarP(&chartOut, "chart", "o", "", "Chart output path (default <charts-dir>/<table>-from-<age>.png)")
	c.Flags().BoolVar(&noChart, "no-chart", false, "Skip chart rendering")
	c.Flags().StringVar(&format, "format", "text", "Output format: text|json")

	return c
}

// analyzeFlags carries the raw flag values into the request builder, which
// decides what actually applies. Precedence: workspace defaults, then the
// profile, then flags the user set explicitly.
type analyzeFlags struct {
	table       string
	minAge      int
	profile     string
	optimistic  bool
	percentiles []int
	chartOut    string
	noChart     bool
}

func buildAnalyzeRequest(cmd *cobra.Command, ws *workspaceCtx, f analyzeFlags) (usecase.AnalyzeRequest, error) {
	table := ws.cfg.Defaults.Table
	minAge := ws.cfg.Defaults.MinAge
	optimistic := ws.cfg.Defaults.Optimistic
	percentiles := ws.cfg.Defaults.Percentiles

	if f.profile != "" {
		p, err := ws.profiles.LoadProfile(ws.root, f.profile)
		if err != nil {
			return usecase.AnalyzeRequest{}, err
		}
		if p.Table != "" {
			table = p.Table
		}
		if p.MinAge != nil {
			minAge = *p.MinAge
		}
		if p.Optimistic != nil {
			optimistic = *p.Optimistic
		}
		if len(p.Percentiles) > 0 {
			percentiles = p.Percentiles
		}
	}

	if cmd.Flags().Changed("table") {
		table = f.table
	}
	if cmd.Flags().Changed("min-age") {
		minAge = f.minAge
	}
	if cmd.Flags().Changed("optimistic") {
		optimistic = f.optimistic
	}
	if cmd.Flags().Changed("percentiles") {
		percentiles = f.percentiles
	}

	tablePath, err := resolveTablePath(ws, table)
	if err != nil {
		return usecase.AnalyzeRequest{}, err
	}

	var chartPath string
	if !f.noChart {
		chartPath = f.chartOut
		if chartPath == "" {
			name := chartpng.DefaultChartName(tableName(tablePath), minAge)
			chartPath = filepath.Join(ws.root, ws.cfg.Paths.ChartsDir, name)
		} else if !filepath.IsAbs(chartPath) {
			if abs, aerr := filepath.Abs(chartPath); aerr == nil {
				chartPath = abs
			}
		}
	}

	return usecase.AnalyzeRequest{
		TablePath:   tablePath,
		MinAge:      minAge,
		Optimistic:  optimistic,
		Percentiles: percentiles,
		ChartPath:   chartPath,
	}, nil
}

func printAnalysis(w io.Writer, a domain.Analysis, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	case "text", "":
		printTextAnalysis(w, a)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected text|json)", format)
	}
}

func printTextAnalysis(w io.Writer, a domain.Analysis) {
	s := a.Summary

	fmt.Fprintf(w, "Based on the given data and assumptions, someone at age %d has a\n", s.MinAge)
	for _, p := range s.Percentiles {
		fmt.Fprintf(w, "%d%% chance of dying before %.1f years old. That's %.0f weeks after age %d\n",
			p.P, p.Age, s.WeeksUntil(p), s.MinAge)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Table:      %s\n", a.Table)
	fmt.Fprintf(w, "People:     %s alive at age %d\n", groupThousands(a.Distribution.CohortSize()), s.MinAge)
	fmt.Fprintf(w, "Mean age:   %.1f (σ %.1f)\n", s.MeanAge, s.StdDev)
	fmt.Fprintf(w, "Years left: %.1f\n", s.YearsLeft)
	if a.ChartPath != "" {
		fmt.Fprintf(w, "Chart:      %s\n", a.ChartPath)
	}
}

// groupThousands renders a count with comma separators, e.g. 94523 -> "94,523".
func groupThousands(n float64) string {
	s := fmt.Sprintf("%.0f", n)
	var out []byte
	for i := 0; i < len(s); i++ {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}
