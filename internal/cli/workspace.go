package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nick-merrill/life-expectancy/internal/domain"
	"github.com/nick-merrill/life-expectancy/internal/infra/chartpng"
	"github.com/nick-merrill/life-expectancy/internal/infra/csvtable"
	"github.com/nick-merrill/life-expectancy/internal/infra/workspacefinder"
	"github.com/nick-merrill/life-expectancy/internal/infra/yamlprofile"
	"github.com/nick-merrill/life-expectancy/internal/ports"
)

type workspaceCtx struct {
	root string
	cfg  domain.Config

	tables   ports.TableLoader
	profiles ports.ProfileLoader
	charts   ports.ChartRenderer
}

func loadWorkspace(workspaceFlag string) (*workspaceCtx, error) {
	root, err := resolveWorkspaceRoot(workspaceFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := workspacefinder.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	return newWorkspaceCtx(root, cfg), nil
}

// standaloneWorkspace supports analyzing a bare CSV path without a lifex.yaml:
// the table's directory acts as the root and all defaults apply.
func standaloneWorkspace(tablePath string) *workspaceCtx {
	root, err := filepath.Abs(filepath.Dir(tablePath))
	if err != nil {
		root = filepath.Dir(tablePath)
	}
	return newWorkspaceCtx(root, domain.DefaultConfig())
}

func newWorkspaceCtx(root string, cfg domain.Config) *workspaceCtx {
	return &workspaceCtx{
		root: root,
		cfg:  cfg,
		tables: csvtable.NewLoader(
			csvtable.WithTablesDir(cfg.Paths.TablesDir),
		),
		profiles: yamlprofile.NewLoader(),
		charts: chartpng.NewRenderer(
			chartpng.WithSize(cfg.Chart.Width, cfg.Chart.Height),
			chartpng.WithTitleTemplate(cfg.Chart.Title),
		),
	}
}

func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	locator := workspacefinder.NewFinder()
	root, err := locator.FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("workspace not found from %q (tip: run `lifex init`): %w", wd, err)
	}
	return root, nil
}

func resolveTablePath(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		in = ws.cfg.Defaults.Table
	}
	if in == "" {
		return "", fmt.Errorf("table is required (use --table or -t)")
	}

	// If arg looks like a path (contains separators), resolve relative to workspace root.
	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(ws.root, p)
		}
		return filepath.Clean(p), nil
	}

	tablesDir := filepath.Join(ws.root, ws.cfg.Paths.TablesDir)

	// If user provided "us.csv", treat it as a file under the tables dir.
	if hasCSVExt(in) {
		p := filepath.Join(tablesDir, in)
		if fileExists(p) {
			return p, nil
		}
	}

	// If user provided "us", try us.csv in the tables dir.
	p := filepath.Join(tablesDir, in+".csv")
	if fileExists(p) {
		return p, nil
	}

	// As a last resort: match listed tables by name.
	refs, err := ws.tables.ListTables(ws.root)
	if err == nil {
		for _, r := range refs {
			if strings.EqualFold(r.Name, in) {
				return r.Path, nil
			}
		}
	}

	return "", fmt.Errorf("table %q not found in %q", in, tablesDir)
}

// tableName derives the display name of a table from its resolved path.
func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func looksLikePath(s string) bool {
	return strings.Contains(s, "/") || strings.Contains(s, string(filepath.Separator))
}

func hasCSVExt(s string) bool {
	return strings.EqualFold(filepath.Ext(s), ".csv")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
