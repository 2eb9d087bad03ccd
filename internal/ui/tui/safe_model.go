package tui

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
)

// safeModel wraps the TUI model so a panic in Update or View drops the user
// back on the home screen instead of tearing down the terminal.
type safeModel struct {
	m   model
	log *slog.Logger
}

func wrapSafe(m model, log *slog.Logger) safeModel {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return safeModel{m: m, log: log}
}

func (s safeModel) Init() tea.Cmd {
	return s.m.Init()
}

func (s safeModel) Update(msg tea.Msg) (tm tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			s.logPanic("tui.update", r)
			s.m.rescue()
			tm = s
			cmd = nil
		}
	}()

	inner, c := s.m.Update(msg)

	if mm, ok := inner.(model); ok {
		s.m = mm
	} else if sm, ok := inner.(safeModel); ok {
		s = sm
	}

	return s, c
}

func (s safeModel) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.logPanic("tui.view", r)
			out = "Unexpected error (see logs)"
		}
	}()
	return s.m.View()
}

func (s safeModel) logPanic(where string, r any) {
	s.log.Error("panic.recovered",
		"where", where,
		"screen", int(s.m.scr),
		"panic", fmt.Sprint(r),
		"stack", string(debug.Stack()),
	)
}

// rescue returns the model to a usable home screen after a panic, dropping
// whatever viewer state the panic may have left half-built.
func (m *model) rescue() {
	m.scr = screenHome
	m.activeName = ""
	m.loading = false
	m.haveAnalysis = false
	m.toast = "Unexpected error (see logs)"
}

var _ tea.Model = (*safeModel)(nil)
