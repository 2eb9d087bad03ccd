package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nick-merrill/life-expectancy/internal/domain"
	"github.com/nick-merrill/life-expectancy/internal/infra/chartpng"
	"github.com/nick-merrill/life-expectancy/internal/infra/csvtable"
	"github.com/nick-merrill/life-expectancy/internal/infra/workspacefinder"
	"github.com/nick-merrill/life-expectancy/internal/infra/yamlprofile"
	"github.com/nick-merrill/life-expectancy/internal/usecase"
)

func cmdRefreshWorkspace(deps Deps) tea.Cmd {
	return func() tea.Msg {
		wd, err := os.Getwd()
		if err != nil {
			return workspaceRefreshedMsg{cwd: "", found: false, err: fmt.Errorf("getwd: %w", err)}
		}
		if deps.WorkspaceLocator == nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: errors.New("WorkspaceLocator is nil")}
		}

		root, findErr := deps.WorkspaceLocator.FindRoot(wd)
		if findErr != nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: findErr}
		}

		return workspaceRefreshedMsg{cwd: wd, found: true, root: root, err: nil}
	}
}

func cmdInitWorkspaceHere(deps Deps, root string) tea.Cmd {
	return func() tea.Msg {
		if deps.WorkspaceInitializer == nil {
			return initWorkspaceDoneMsg{root: root, err: errors.New("WorkspaceInitializer is nil")}
		}

		err := deps.WorkspaceInitializer.Init(domain.WorkspaceSpec{Root: root}, true)
		return initWorkspaceDoneMsg{root: root, err: err}
	}
}

func cmdLoadTables(root string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			return tablesLoadedMsg{root: root, err: err}
		}

		loader := csvtable.NewLoader(
			csvtable.WithTablesDir(cfg.Paths.TablesDir),
		)

		refs, err := loader.ListTables(root)
		return tablesLoadedMsg{root: root, refs: refs, err: err}
	}
}

func cmdLoadProfiles(root string) tea.Cmd {
	return func() tea.Msg {
		refs, err := yamlprofile.NewLoader().ListProfiles(root)
		return profilesLoadedMsg{root: root, refs: refs, err: err}
	}
}

func cmdBuildAnalysis(tablePath string, minAge int, optimistic bool, log *slog.Logger, debug bool) tea.Cmd {
	return func() tea.Msg {
		return buildAnalysis(tablePath, minAge, optimistic, log, debug)
	}
}

// cmdOpenDefault opens the viewer on the workspace's default table and min age.
func cmdOpenDefault(root string, log *slog.Logger, debug bool) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			return analysisBuiltMsg{err: err}
		}

		path, err := resolveTable(root, cfg, cfg.Defaults.Table)
		if err != nil {
			return analysisBuiltMsg{err: err}
		}
		return buildAnalysis(path, cfg.Defaults.MinAge, cfg.Defaults.Optimistic, log, debug)
	}
}

// cmdOpenTable opens the viewer on a specific table file, starting at the
// workspace default min age clamped into the table's age range.
func cmdOpenTable(root, path string, log *slog.Logger, debug bool) tea.Cmd {
	return func() tea.Msg {
		if log == nil {
			log = slog.Default()
		}

		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			cfg = domain.DefaultConfig()
		}

		t, err := csvtable.NewLoader().LoadTable(path)
		if err != nil {
			log.Error("analysis.load_table.failed", "table_path", path, "err", err)
			return analysisBuiltMsg{err: err}
		}

		minAge := cfg.Defaults.MinAge
		if minAge < t.MinAge() {
			minAge = t.MinAge()
		}
		if minAge > t.MaxAge() {
			minAge = t.MaxAge()
		}

		log.Info("analysis.start", "table_path", path, "min_age", minAge, "optimistic", cfg.Defaults.Optimistic)
		return buildAnalysisFromTable(t, path, minAge, cfg.Defaults.Optimistic, log, debug)
	}
}

// cmdOpenProfile opens the viewer with a profile's overrides applied over the
// workspace defaults.
func cmdOpenProfile(root, name string, log *slog.Logger, debug bool) tea.Cmd {
	return func() tea.Msg {
		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			return analysisBuiltMsg{err: err}
		}

		p, err := yamlprofile.NewLoader().LoadProfile(root, name)
		if err != nil {
			return analysisBuiltMsg{err: err}
		}

		table := cfg.Defaults.Table
		if p.Table != "" {
			table = p.Table
		}
		minAge := cfg.Defaults.MinAge
		if p.MinAge != nil {
			minAge = *p.MinAge
		}
		optimistic := cfg.Defaults.Optimistic
		if p.Optimistic != nil {
			optimistic = *p.Optimistic
		}

		path, err := resolveTable(root, cfg, table)
		if err != nil {
			return analysisBuiltMsg{err: err}
		}
		return buildAnalysis(path, minAge, optimistic, log, debug)
	}
}

// cmdSaveChart re-runs the analysis with a chart path so the PNG lands under
// the workspace charts directory, named after the table and starting age.
func cmdSaveChart(root, tablePath string, minAge int, optimistic bool, log *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		if log == nil {
			log = slog.Default()
		}

		cfg, err := workspacefinder.LoadConfig(root)
		if err != nil {
			cfg = domain.DefaultConfig()
		}

		tables := csvtable.NewLoader(
			csvtable.WithTablesDir(cfg.Paths.TablesDir),
		)
		charts := chartpng.NewRenderer(
			chartpng.WithSize(cfg.Chart.Width, cfg.Chart.Height),
			chartpng.WithTitleTemplate(cfg.Chart.Title),
		)

		base := filepath.Base(tablePath)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		chartPath := filepath.Join(root, cfg.Paths.ChartsDir, chartpng.DefaultChartName(name, minAge))

		uc := usecase.NewAnalyze(tables, charts)
		a, err := uc.Execute(context.Background(), usecase.AnalyzeRequest{
			TablePath:  tablePath,
			MinAge:     minAge,
			Optimistic: optimistic,
			ChartPath:  chartPath,
		})
		if err != nil {
			log.Error("chart.save.failed", "table_path", tablePath, "chart_path", chartPath, "err", err)
			return chartSavedMsg{err: err}
		}

		log.Info("chart.saved", "table", a.Table, "min_age", minAge, "chart_path", a.ChartPath)
		return chartSavedMsg{path: a.ChartPath}
	}
}

func buildAnalysis(tablePath string, minAge int, optimistic bool, log *slog.Logger, debug bool) analysisBuiltMsg {
	if log == nil {
		log = slog.Default()
	}

	log.Info("analysis.start", "table_path", tablePath, "min_age", minAge, "optimistic", optimistic)

	t, err := csvtable.NewLoader().LoadTable(tablePath)
	if err != nil {
		log.Error("analysis.load_table.failed", "table_path", tablePath, "err", err)
		return analysisBuiltMsg{err: err}
	}
	return buildAnalysisFromTable(t, tablePath, minAge, optimistic, log, debug)
}

func buildAnalysisFromTable(t domain.LifeTable, tablePath string, minAge int, optimistic bool, log *slog.Logger, debug bool) analysisBuiltMsg {
	if log == nil {
		log = slog.Default()
	}

	var distOpts []domain.DistOption
	if optimistic {
		distOpts = append(distOpts, domain.WithTailSpread())
	}
	dist, err := domain.NewConditional(t, minAge, distOpts...)
	if err != nil {
		log.Error("analysis.failed", "table", t.Name, "min_age", minAge, "err", err)
		return analysisBuiltMsg{ageMin: t.MinAge(), ageMax: t.MaxAge(), err: err}
	}

	var sumOpts []domain.SummaryOption
	if optimistic {
		sumOpts = append(sumOpts, domain.WithMidyear())
	}
	sum := domain.Summarize(dist, sumOpts...)

	log.Info("analysis.ok",
		"table", t.Name,
		"rows", len(t.Rows),
		"min_age", minAge,
		"mean_age", sum.MeanAge,
		"years_left", sum.YearsLeft,
	)
	if debug {
		for _, p := range sum.Percentiles {
			log.Debug("analysis.percentile", "p", p.P, "age", p.Age)
		}
	}

	a := domain.Analysis{
		Table:        t.Name,
		TablePath:    tablePath,
		Optimistic:   optimistic,
		Distribution: dist,
		Summary:      sum,
	}
	return analysisBuiltMsg{a: a, ageMin: t.MinAge(), ageMax: t.MaxAge()}
}

func resolveTable(root string, cfg domain.Config, nameOrPath string) (string, error) {
	if strings.Contains(nameOrPath, "/") || filepath.IsAbs(nameOrPath) {
		p := nameOrPath
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		return filepath.Clean(p), nil
	}

	fname := nameOrPath
	if !strings.EqualFold(filepath.Ext(fname), ".csv") {
		fname += ".csv"
	}

	p := filepath.Join(root, cfg.Paths.TablesDir, fname)
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}

	return "", &domain.OpError{
		Op:   "tui.resolve_table",
		Kind: domain.KindNotFound,
		Path: p,
		Err:  fmt.Errorf("table %q: %w", nameOrPath, domain.ErrNotFound),
	}
}
