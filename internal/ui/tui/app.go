package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nick-merrill/life-expectancy/internal/domain"
)

type screen int

const (
	screenHome screen = iota
	screenTables
	screenProfiles
	screenViewer
)

type menuItem struct {
	title string
	desc  string
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.desc }
func (m menuItem) FilterValue() string { return m.title }

type model struct {
	theme Theme
	deps  Deps

	scr        screen
	menu       list.Model
	activeName string

	workspaceFound bool
	workspaceRoot  string

	tables   []domain.TableRef
	tableCur int

	profiles []domain.ProfileRef
	profCur  int

	// viewer state
	tablePath    string
	minAge       int
	ageMin       int
	ageMax       int
	optimistic   bool
	analysis     domain.Analysis
	haveAnalysis bool

	loading bool
	toast   string

	width  int
	height int
}

func Run(deps Deps) error {
	m := wrapSafe(newModel(deps), deps.Logger)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(deps Deps) model {
	t := DefaultTheme()

	items := []list.Item{
		menuItem{"Analyze", "Death-age odds for the default table (arrows change the age)"},
		menuItem{"Tables", "Browse life tables in the workspace"},
		menuItem{"Profiles", "Open a saved analysis preset"},
		menuItem{"Init Workspace", "Create lifex.yaml, tables/ and charts/ here"},
		menuItem{"Quit", "Exit lifex"},
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Lifex"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	m := model{
		theme: t,
		deps:  deps,
		scr:   screenHome,
		menu:  l,
	}

	wd, err := os.Getwd()
	if err == nil && deps.WorkspaceLocator != nil {
		root, findErr := deps.WorkspaceLocator.FindRoot(wd)
		if findErr == nil {
			m.workspaceFound = true
			m.workspaceRoot = root
		}
	}

	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.menu.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case workspaceRefreshedMsg:
		m.workspaceFound = msg.found
		m.workspaceRoot = msg.root
		return m, nil

	case initWorkspaceDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.toast = "Workspace ready at " + msg.root
		return m, cmdRefreshWorkspace(m.deps)

	case tablesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.tables = msg.refs
		m.tableCur = 0
		return m, nil

	case profilesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.profiles = msg.refs
		m.profCur = 0
		return m, nil

	case analysisBuiltMsg:
		m.loading = false
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.analysis = msg.a
		m.haveAnalysis = true
		m.tablePath = msg.a.TablePath
		m.minAge = msg.a.Summary.MinAge
		m.optimistic = msg.a.Optimistic
		m.ageMin = msg.ageMin
		m.ageMax = msg.ageMax
		return m, nil

	case chartSavedMsg:
		m.loading = false
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.toast = "Chart saved: " + msg.path
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.scr == screenHome {
				return m, tea.Quit
			}
			m.goHome()
			return m, nil

		case "enter":
			return m.handleEnter()

		case "esc", "b":
			if m.scr != screenHome {
				m.goHome()
				return m, nil
			}

		case "up", "k":
			switch m.scr {
			case screenTables:
				if m.tableCur > 0 {
					m.tableCur--
				}
				return m, nil
			case screenProfiles:
				if m.profCur > 0 {
					m.profCur--
				}
				return m, nil
			}

		case "down", "j":
			switch m.scr {
			case screenTables:
				if m.tableCur < len(m.tables)-1 {
					m.tableCur++
				}
				return m, nil
			case screenProfiles:
				if m.profCur < len(m.profiles)-1 {
					m.profCur++
				}
				return m, nil
			}

		case "left", "h", "-":
			if m.scr == screenViewer {
				return m.stepMinAge(-1)
			}

		case "right", "l", "+", "=":
			if m.scr == screenViewer {
				return m.stepMinAge(1)
			}

		case "shift+left":
			if m.scr == screenViewer {
				return m.stepMinAge(-10)
			}

		case "shift+right":
			if m.scr == screenViewer {
				return m.stepMinAge(10)
			}

		case "o":
			if m.scr == screenViewer && m.haveAnalysis {
				m.loading = true
				m.toast = ""
				return m, cmdBuildAnalysis(m.tablePath, m.minAge, !m.optimistic, m.deps.Logger, m.deps.Debug)
			}

		case "s":
			if m.scr == screenViewer && m.haveAnalysis {
				m.loading = true
				m.toast = ""
				return m, cmdSaveChart(m.workspaceRoot, m.tablePath, m.minAge, m.optimistic, m.deps.Logger)
			}
		}
	}

	if m.scr == screenHome {
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) goHome() {
	m.scr = screenHome
	m.activeName = ""
	m.toast = ""
	m.loading = false
}

// stepMinAge recomputes the viewer's distribution with the starting age moved
// by delta, clamped to the table's age range.
func (m model) stepMinAge(delta int) (tea.Model, tea.Cmd) {
	if !m.haveAnalysis {
		return m, nil
	}

	next := m.minAge + delta
	if next < m.ageMin {
		next = m.ageMin
	}
	if next > m.ageMax {
		next = m.ageMax
	}
	if next == m.minAge {
		return m, nil
	}

	m.loading = true
	m.toast = ""
	return m, cmdBuildAnalysis(m.tablePath, next, m.optimistic, m.deps.Logger, m.deps.Debug)
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.scr {
	case screenHome:
		it, ok := m.menu.SelectedItem().(menuItem)
		if !ok {
			return m, nil
		}

		switch {
		case strings.EqualFold(it.title, "Quit"):
			return m, tea.Quit

		case strings.EqualFold(it.title, "Init Workspace"):
			wd, err := os.Getwd()
			if err != nil {
				m.toast = "Unexpected error (see logs)"
				return m, nil
			}
			m.loading = true
			return m, cmdInitWorkspaceHere(m.deps, wd)

		case !m.workspaceFound:
			m.toast = "No workspace found. Select Init Workspace first."
			return m, nil

		case strings.EqualFold(it.title, "Analyze"):
			m.scr = screenViewer
			m.activeName = it.title
			m.loading = true
			m.toast = ""
			return m, cmdOpenDefault(m.workspaceRoot, m.deps.Logger, m.deps.Debug)

		case strings.EqualFold(it.title, "Tables"):
			m.scr = screenTables
			m.activeName = it.title
			m.loading = true
			m.toast = ""
			return m, cmdLoadTables(m.workspaceRoot)

		case strings.EqualFold(it.title, "Profiles"):
			m.scr = screenProfiles
			m.activeName = it.title
			m.loading = true
			m.toast = ""
			return m, cmdLoadProfiles(m.workspaceRoot)
		}
		return m, nil

	case screenTables:
		if len(m.tables) == 0 || m.tableCur >= len(m.tables) {
			return m, nil
		}
		ref := m.tables[m.tableCur]
		m.scr = screenViewer
		m.activeName = ref.Name
		m.loading = true
		m.toast = ""
		return m, cmdOpenTable(m.workspaceRoot, ref.Path, m.deps.Logger, m.deps.Debug)

	case screenProfiles:
		if len(m.profiles) == 0 || m.profCur >= len(m.profiles) {
			return m, nil
		}
		ref := m.profiles[m.profCur]
		m.scr = screenViewer
		m.activeName = ref.Name
		m.loading = true
		m.toast = ""
		return m, cmdOpenProfile(m.workspaceRoot, ref.Name, m.deps.Logger, m.deps.Debug)
	}

	return m, nil
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("Lifex") + "\n" +
		m.theme.Subtitle.Render("TUI-first life-table analyzer — death-age odds and remaining-life estimates") + "\n"

	var workspaceBanner string
	if m.workspaceFound {
		workspaceBanner = m.theme.Help.Render(fmt.Sprintf("Workspace: %s", m.workspaceRoot))
	} else {
		workspaceBanner = m.theme.Card.Render(
			m.theme.Warn.Render("⚠ No workspace found.") +
				"\n\nSelect Init Workspace to create one here.",
		)
	}

	toast := ""
	if m.toast != "" {
		toast = "\n" + m.theme.Help.Render(clampString(m.toast, 100))
	}

	switch m.scr {
	case screenHome:
		help := m.theme.Help.Render("↑/↓ navigate • enter open • / search • q quit")
		return wrap.Render(header + "\n" + workspaceBanner + "\n\n" + m.theme.Card.Render(m.menu.View()) + toast + "\n" + help)

	case screenTables:
		return wrap.Render(header + "\n" + workspaceBanner + "\n\n" + m.theme.Card.Render(m.viewTables()) + toast)

	case screenProfiles:
		return wrap.Render(header + "\n" + workspaceBanner + "\n\n" + m.theme.Card.Render(m.viewProfiles()) + toast)

	case screenViewer:
		return wrap.Render(header + "\n" + workspaceBanner + "\n\n" + m.theme.Card.Render(m.viewAnalysis()) + toast)

	default:
		return wrap.Render(header + "\n" + "unknown state")
	}
}

func (m model) viewTables() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Tables"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString("(loading)")
	case len(m.tables) == 0:
		b.WriteString("(no tables found)")
	default:
		for i, r := range m.tables {
			cursor := "  "
			if i == m.tableCur {
				cursor = "→ "
			}
			b.WriteString(cursor + r.Name + "\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.theme.Help.Render("↑/↓ select • enter open • esc/b back"))
	return b.String()
}

func (m model) viewProfiles() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Profiles"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString("(loading)")
	case len(m.profiles) == 0:
		b.WriteString("(no profiles found)")
	default:
		for i, r := range m.profiles {
			cursor := "  "
			if i == m.profCur {
				cursor = "→ "
			}
			line := r.Name
			if r.Table != "" {
				line += "  (table: " + r.Table + ")"
			}
			b.WriteString(cursor + line + "\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.theme.Help.Render("↑/↓ select • enter open • esc/b back"))
	return b.String()
}

func (m model) viewAnalysis() string {
	var b strings.Builder

	if !m.haveAnalysis {
		if m.loading {
			b.WriteString("(computing)")
		} else {
			b.WriteString("No analysis yet.")
		}
		b.WriteString("\n\n")
		b.WriteString(m.theme.Help.Render("esc/b back"))
		return b.String()
	}

	title := fmt.Sprintf("%s — from age %d", m.analysis.Table, m.minAge)
	if m.optimistic {
		title += "  [optimistic]"
	}
	if m.loading {
		title += "  (computing)"
	}
	b.WriteString(m.theme.Title.Render(title))
	b.WriteString("\n\n")

	rows := m.height - 20
	if rows < 8 {
		rows = 8
	}
	barWidth := m.width - 30
	if barWidth < 20 {
		barWidth = 20
	}

	medianAge := -1
	for _, p := range m.analysis.Summary.Percentiles {
		if p.P == 50 {
			medianAge = int(p.Age)
		}
	}
	for _, line := range histogramLines(m.analysis.Distribution, rows, barWidth, m.theme, medianAge) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderSummary(m.analysis.Summary))
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render("←/→ or -/+ min-age (shift ±10) • o optimistic • s save chart • esc/b back"))
	return b.String()
}
