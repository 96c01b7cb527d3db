package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mbeprep/internal/router"
	"github.com/abhisek/mbeprep/internal/screen"
	"github.com/abhisek/mbeprep/internal/screens/home"
	quizscreen "github.com/abhisek/mbeprep/internal/screens/quiz"
	"github.com/abhisek/mbeprep/internal/session"
	"github.com/abhisek/mbeprep/internal/ui/layout"
)

// Options holds dependencies for the application.
type Options struct {
	Home home.Options

	// Restored opens straight into the quiz when a saved run was resumed.
	Restored bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	engine  *session.Engine
	pending tea.Cmd
	width   int
	height  int
}

// newAppModel creates a new AppModel with the home screen, plus the quiz
// screen on top when a run was restored.
func newAppModel(opts Options) AppModel {
	m := AppModel{
		router: router.New(home.New(opts.Home)),
		engine: opts.Home.Engine,
	}
	if opts.Restored && m.engine.State().Phase == session.PhaseRunning {
		m.pending = m.router.Push(quizscreen.New(m.engine))
	}
	return m
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Init(), m.pending)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
	}
	if sp, ok := active.(screen.StatusProvider); ok {
		status = sp.Status()
	}

	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program. Any run still in progress when the
// program exits is checkpointed for the next launch.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if qerr := opts.Home.Engine.Quit(context.Background()); qerr != nil {
		fmt.Fprintf(os.Stderr, "warning: save session: %v\n", qerr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
