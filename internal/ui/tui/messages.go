package tui

import "github.com/nick-merrill/life-expectancy/internal/domain"

type workspaceRefreshedMsg struct {
	cwd   string
	found bool
	root  string
	err   error
}

type initWorkspaceDoneMsg struct {
	root string
	err  error
}

type tablesLoadedMsg struct {
	root string
	refs []domain.TableRef
	err  error
}

type profilesLoadedMsg struct {
	root string
	refs []domain.ProfileRef
	err  error
}

// analysisBuiltMsg carries a fresh distribution for the viewer, plus the age
// bounds of the underlying table so the viewer can clamp min-age stepping.
type analysisBuiltMsg struct {
	a      domain.Analysis
	ageMin int
	ageMax int
	err    error
}

type chartSavedMsg struct {
	path string
	err  error
}
