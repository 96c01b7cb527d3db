package home

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mbeprep/internal/bankfile"
	"github.com/abhisek/mbeprep/internal/filter"
	"github.com/abhisek/mbeprep/internal/library"
	"github.com/abhisek/mbeprep/internal/router"
	"github.com/abhisek/mbeprep/internal/screen"
	quizscreen "github.com/abhisek/mbeprep/internal/screens/quiz"
	statsscreen "github.com/abhisek/mbeprep/internal/screens/stats"
	"github.com/abhisek/mbeprep/internal/session"
	"github.com/abhisek/mbeprep/internal/stats"
	"github.com/abhisek/mbeprep/internal/ui/components"
	"github.com/abhisek/mbeprep/internal/ui/theme"
)

// Options configures the home screen. Library and Fetcher are optional;
// the bank management entries are hidden without them.
type Options struct {
	Engine    *session.Engine
	Library   *library.Library
	Fetcher   *bankfile.Fetcher
	SampleURL string
	ExportDir string
	Settings  session.Settings
}

type sampleLoadedMsg struct {
	result *library.ImportResult
	err    error
}

type exportedMsg struct {
	path string
	err  error
}

// HomeScreen is the main menu. Entries are rebuilt from engine state on
// every update so they track runs started and finished elsewhere.
type HomeScreen struct {
	opts     Options
	menu     components.Menu
	lastFile string
	status   string
	busy     bool
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(opts Options) *HomeScreen {
	h := &HomeScreen{opts: opts}
	if opts.Library != nil {
		h.lastFile, _ = opts.Library.LastLoadedFile(context.Background())
	}
	h.refresh()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sampleLoadedMsg:
		h.busy = false
		if msg.err != nil {
			h.status = "Could not load sample questions: " + msg.err.Error()
		} else {
			h.opts.Engine.SetBank(msg.result.Bank)
			h.lastFile = bankfile.DefaultSampleName
			h.status = fmt.Sprintf("Loaded %d questions and %d groups.", msg.result.Questions, msg.result.Groups)
		}
	case exportedMsg:
		h.busy = false
		if msg.err != nil {
			h.status = "Export failed: " + msg.err.Error()
		} else {
			h.status = "Exported to " + msg.path
		}
	}

	h.refresh()
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

// refresh rebuilds the menu, keeping the cursor on the same label.
func (h *HomeScreen) refresh() {
	selected := ""
	if h.menu.Selected < len(h.menu.Items) {
		selected = h.menu.Items[h.menu.Selected].Label
	}

	items := h.items()
	h.menu = components.NewMenu(items)
	for i, item := range items {
		if item.Label == selected && !item.Disabled {
			h.menu.Selected = i
		}
	}
}

func (h *HomeScreen) items() []components.MenuItem {
	engine := h.opts.Engine
	st := engine.State()
	bankSize := engine.Bank().Len()

	resume := components.MenuItem{Label: "Resume run", Disabled: st.Phase != session.PhaseRunning}
	if !resume.Disabled {
		resume.Detail = fmt.Sprintf("question %d of %d", st.CurrentIndex+1, len(st.MasterList))
		resume.Action = h.resume
	}

	start := components.MenuItem{
		Label:    "Start quiz",
		Detail:   describe(h.opts.Settings),
		Action:   h.start,
		Disabled: bankSize == 0,
	}

	items := []components.MenuItem{resume, start,
		{Label: "Statistics", Action: h.showStats, Disabled: bankSize == 0},
	}
	if h.opts.Library != nil && h.opts.Fetcher != nil {
		items = append(items, components.MenuItem{
			Label:    "Load sample questions",
			Detail:   "replaces the current bank",
			Action:   h.loadSample,
			Disabled: h.busy,
		})
	}
	if h.opts.Library != nil {
		items = append(items, components.MenuItem{
			Label:    "Export backup",
			Action:   h.export,
			Disabled: h.busy || bankSize == 0,
		})
	}
	return append(items, components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }})
}

func (h *HomeScreen) resume() tea.Cmd {
	if _, err := h.opts.Engine.Resume(); err != nil {
		h.status = err.Error()
		return nil
	}
	return push(quizscreen.New(h.opts.Engine))
}

func (h *HomeScreen) start() tea.Cmd {
	_, err := h.opts.Engine.StartFiltered(context.Background(), h.opts.Settings)
	if errors.Is(err, filter.ErrNoMatch) {
		h.status = "No questions match the current filters."
		return nil
	}
	if err != nil {
		h.status = err.Error()
		return nil
	}
	h.status = ""
	return push(quizscreen.New(h.opts.Engine))
}

func (h *HomeScreen) showStats() tea.Cmd {
	bank := h.opts.Engine.Bank()
	st := h.opts.Engine.State()
	return push(statsscreen.New(stats.Compute(bank.Questions()), st.Review, bank.Len()))
}

func (h *HomeScreen) loadSample() tea.Cmd {
	h.busy = true
	h.status = "Downloading sample questions..."
	lib, fetcher, url := h.opts.Library, h.opts.Fetcher, h.opts.SampleURL
	return func() tea.Msg {
		ctx := context.Background()
		f, err := fetcher.Fetch(ctx, url)
		if err != nil {
			return sampleLoadedMsg{err: err}
		}
		res, err := lib.Import(ctx, f, bankfile.DefaultSampleName)
		return sampleLoadedMsg{result: res, err: err}
	}
}

func (h *HomeScreen) export() tea.Cmd {
	h.busy = true
	lib, dir := h.opts.Library, h.opts.ExportDir
	return func() tea.Msg {
		path, err := lib.Export(context.Background(), dir)
		return exportedMsg{path: path, err: err}
	}
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: s}
	}
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder

	title := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("MBE Practice Questions")
	b.WriteString("\n  " + title + "\n")

	bank := h.opts.Engine.Bank()
	info := fmt.Sprintf("%d questions in bank", bank.Len())
	if h.lastFile != "" {
		info += " · " + h.lastFile
	}
	if bank.Len() == 0 {
		info = "No questions loaded. Import a file with `mbeprep import` or load the sample set."
	}
	b.WriteString("  " + theme.Subtitle.Render(info) + "\n\n")

	b.WriteString(h.menu.View())

	if h.status != "" {
		b.WriteString("\n  " + theme.Hint.Render(h.status) + "\n")
	}
	return b.String()
}

// describe summarizes run settings for the start entry.
func describe(s session.Settings) string {
	var parts []string
	if s.QuestionLimit > 0 {
		parts = append(parts, fmt.Sprintf("%d questions", s.QuestionLimit))
	} else {
		parts = append(parts, "all questions")
	}
	if n := len(s.Filters.Categories); n > 0 {
		parts = append(parts, fmt.Sprintf("%d categories", n))
	}
	if a := s.Filters.Attempts; a != "" && a != filter.AttemptsAll {
		parts = append(parts, string(a))
	}
	if s.Scramble {
		parts = append(parts, "shuffled")
	}
	if s.HideAnswer {
		parts = append(parts, "answers hidden")
	}
	return strings.Join(parts, ", ")
}
