package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mbeprep/internal/router"
	"github.com/abhisek/mbeprep/internal/screen"
	"github.com/abhisek/mbeprep/internal/screens/summary"
	"github.com/abhisek/mbeprep/internal/session"
	"github.com/abhisek/mbeprep/internal/store"
	"github.com/abhisek/mbeprep/internal/ui/components"
	"github.com/abhisek/mbeprep/internal/ui/layout"
)

// QuizScreen drives a running session. All run logic lives in the engine;
// the screen maps keys to engine calls and renders QuestionView.
type QuizScreen struct {
	engine      *session.Engine
	view        *session.QuestionView
	notes       components.TextInput
	confirmQuit bool
	status      string
	finished    bool
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.StatusProvider = (*QuizScreen)(nil)
var _ screen.EscapeHandler = (*QuizScreen)(nil)

// New creates a QuizScreen for the engine's current run.
func New(engine *session.Engine) *QuizScreen {
	return &QuizScreen{
		engine: engine,
		view:   engine.View(),
		notes:  components.NewTextInput("Notes for this question...", 500),
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return tickCmd()
}

func (s *QuizScreen) Title() string {
	if s.view == nil {
		return "Quiz"
	}
	return fmt.Sprintf("Question %d of %d", s.view.Index+1, s.view.Total)
}

func (s *QuizScreen) HandlesEscape() bool { return true }

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Save & leave"},
			{Key: "A", Description: "Abandon run"},
			{Key: "N", Description: "Keep going"},
		}
	case s.notes.Focused():
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save notes"},
			{Key: "Esc", Description: "Cancel"},
		}
	case s.view != nil && s.view.Answered():
		hints := []layout.KeyHint{
			{Key: "Enter/→", Description: "Next"},
			{Key: "←", Description: "Previous"},
			{Key: "Tab", Description: "Notes"},
		}
		if !s.view.ShowFeedback {
			hints = append(hints, layout.KeyHint{Key: "R", Description: "Show answer"})
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit"})
	default:
		return []layout.KeyHint{
			{Key: "A-F", Description: "Choose"},
			{Key: "Enter", Description: "Submit"},
			{Key: "←→", Description: "Move"},
			{Key: "Tab", Description: "Notes"},
			{Key: "Esc", Description: "Quit"},
		}
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return s.handleTick()
	case runCompleteMsg:
		return s.handleComplete()
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.notes.Focused() {
		var cmd tea.Cmd
		s.notes, cmd = s.notes.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleTick() (screen.Screen, tea.Cmd) {
	if s.finished || s.engine.State().Phase != session.PhaseRunning {
		return s, nil
	}
	if s.confirmQuit {
		// Clocks are frozen while the quit dialog is up.
		return s, tickCmd()
	}

	res, err := s.engine.Tick(context.Background())
	if err != nil {
		s.status = errorText(err)
	}
	if res.Completed {
		return s, complete
	}
	if res.QuestionExpired && res.View != nil {
		s.view = res.View
		s.status = "Time's up for this question."
		s.notes.Blur()
	}
	return s, tickCmd()
}

func (s *QuizScreen) handleComplete() (screen.Screen, tea.Cmd) {
	s.finished = true
	s.notes.Blur()
	rev := s.engine.State().Review
	engine := s.engine
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(rev, restart(engine))}
	}
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	ctx := context.Background()

	if s.finished {
		return s, nil
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			s.finished = true
			if err := s.engine.Quit(ctx); err != nil {
				s.status = errorText(err)
			}
			return s, pop
		case "a", "A":
			s.confirmQuit = false
			s.finished = true
			if err := s.engine.Abandon(ctx); err != nil {
				s.status = errorText(err)
			}
			return s, pop
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if s.notes.Focused() {
		return s.handleNotesKey(msg)
	}

	if s.view == nil {
		return s, nil
	}
	s.status = ""

	switch key {
	case "esc", "q":
		s.confirmQuit = true
		return s, nil
	case "tab":
		return s, s.notes.Focus(s.currentNotes())
	case "r", "R":
		if v, err := s.engine.RevealAnswer(); err == nil {
			s.view = v
		}
		return s, nil
	case "right", "n":
		return s.advance(ctx)
	case "left", "p":
		v, err := s.engine.Retreat(ctx)
		if errors.Is(err, session.ErrNoPrevious) {
			s.status = "This is the first question."
			return s, nil
		}
		if err != nil {
			s.status = errorText(err)
			return s, nil
		}
		s.view = v
		return s, nil
	case "enter", "s":
		if s.view.Answered() {
			return s.advance(ctx)
		}
		return s.submit(ctx)
	}

	if len(key) == 1 {
		choice := strings.ToUpper(key)
		if err := s.engine.Select(choice); err == nil {
			s.view = s.engine.View()
		} else if errors.Is(err, session.ErrAlreadyAnswered) {
			s.status = "Already answered. Press Enter for the next question."
		}
	}
	return s, nil
}

func (s *QuizScreen) handleNotesKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.notes.Blur()
		return s, nil
	case "enter":
		s.notes.Blur()
		text := s.notes.Value()
		if s.view != nil && s.view.Answered() {
			if err := s.engine.UpdateNotes(context.Background(), text); err != nil {
				s.status = errorText(err)
				return s, nil
			}
			s.status = "Notes saved."
		} else {
			s.engine.SetDraftNotes(text)
			s.status = "Notes will be saved with your answer."
		}
		s.view = s.engine.View()
		return s, nil
	}
	var cmd tea.Cmd
	s.notes, cmd = s.notes.Update(msg)
	return s, cmd
}

func (s *QuizScreen) submit(ctx context.Context) (screen.Screen, tea.Cmd) {
	v, err := s.engine.Submit(ctx)
	if errors.Is(err, session.ErrNoChoice) {
		s.status = "Choose an answer first (A-F)."
		return s, nil
	}
	if err != nil {
		s.status = errorText(err)
		return s, nil
	}
	s.view = v
	return s, nil
}

func (s *QuizScreen) advance(ctx context.Context) (screen.Screen, tea.Cmd) {
	v, err := s.engine.Advance(ctx)
	if err != nil {
		s.status = errorText(err)
		return s, nil
	}
	if v == nil {
		return s, complete
	}
	s.view = v
	return s, nil
}

// currentNotes is the text to pre-fill when editing notes.
func (s *QuizScreen) currentNotes() string {
	if s.view != nil && s.view.Attempt != nil {
		return s.view.Attempt.Notes
	}
	return s.engine.State().DraftNotes
}

// restart returns the summary's action for starting another run with the
// same settings. A failure is reported back to the summary.
func restart(engine *session.Engine) func() tea.Cmd {
	return func() tea.Cmd {
		if _, err := engine.Restart(context.Background()); err != nil {
			text := "Could not start a new run: " + errorText(err)
			return func() tea.Msg { return summary.StatusMsg{Text: text} }
		}
		return func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: New(engine)}
		}
	}
}

// errorText turns store failures into actionable text.
func errorText(err error) string {
	var (
		qe *store.QuotaError
		ce *store.ConstraintError
		ie *store.IOError
	)
	if errors.As(err, &qe) || errors.As(err, &ce) || errors.As(err, &ie) {
		return store.UserMessage(err)
	}
	return err.Error()
}

func complete() tea.Msg { return runCompleteMsg{} }

func pop() tea.Msg { return router.PopScreenMsg{} }

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
