package home

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mbeprep/internal/quiz"
	"github.com/abhisek/mbeprep/internal/router"
	quizscreen "github.com/abhisek/mbeprep/internal/screens/quiz"
	statsscreen "github.com/abhisek/mbeprep/internal/screens/stats"
	"github.com/abhisek/mbeprep/internal/session"
	"github.com/abhisek/mbeprep/internal/store"
)

func newEngine(t *testing.T, ids ...string) *session.Engine {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	var qs []*quiz.Question
	for _, id := range ids {
		q := &quiz.Question{
			QuestionID:   id,
			Category:     "Torts",
			QuestionText: "Question " + id,
			Choices:      map[string]string{"A": "yes", "B": "no"},
			Answer:       &quiz.Answer{CorrectChoice: "A"},
		}
		quiz.Normalize(q)
		qs = append(qs, q)
	}
	if err := st.ReplaceAll(context.Background(), qs, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return session.NewEngine(quiz.NewBank(qs, nil), st.Questions(), st.AppState())
}

func label(h *HomeScreen) string {
	return h.menu.Items[h.menu.Selected].Label
}

func enter(h *HomeScreen) tea.Msg {
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestHome_EmptyBank(t *testing.T) {
	h := New(Options{Engine: newEngine(t), Settings: session.DefaultSettings()})
	if got := label(h); got != "Quit" {
		t.Errorf("selected = %q, want Quit with an empty bank", got)
	}
	if !strings.Contains(h.View(100, 30), "No questions loaded") {
		t.Error("expected empty bank hint")
	}
}

func TestHome_StartQuiz(t *testing.T) {
	engine := newEngine(t, "q1", "q2")
	h := New(Options{Engine: engine, Settings: session.DefaultSettings()})
	if got := label(h); got != "Start quiz" {
		t.Fatalf("selected = %q, want Start quiz", got)
	}

	msg := enter(h)
	push, ok := msg.(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", msg)
	}
	if _, ok := push.Screen.(*quizscreen.QuizScreen); !ok {
		t.Errorf("pushed %T, want quiz screen", push.Screen)
	}
	if engine.State().Phase != session.PhaseRunning {
		t.Errorf("phase = %v, want running", engine.State().Phase)
	}

	// Back on the menu, resume becomes available.
	h.Update(nil)
	if h.menu.Items[0].Disabled {
		t.Error("resume should be enabled while a run is in progress")
	}
}

func TestHome_NoMatch(t *testing.T) {
	s := session.DefaultSettings()
	s.Filters.Categories = map[string][]string{"Evidence": nil}
	h := New(Options{Engine: newEngine(t, "q1"), Settings: s})

	if msg := enter(h); msg != nil {
		t.Errorf("expected no command, got %T", msg)
	}
	if !strings.Contains(h.View(100, 30), "No questions match") {
		t.Error("expected no-match status")
	}
}

func TestHome_Statistics(t *testing.T) {
	h := New(Options{Engine: newEngine(t, "q1"), Settings: session.DefaultSettings()})
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if got := label(h); got != "Statistics" {
		t.Fatalf("selected = %q, want Statistics", got)
	}
	push, ok := enter(h).(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*statsscreen.StatsScreen); !ok {
		t.Errorf("pushed %T, want stats screen", push.Screen)
	}
}

func TestDescribe(t *testing.T) {
	s := session.DefaultSettings()
	if got := describe(s); got != "all questions" {
		t.Errorf("describe = %q", got)
	}
	s.QuestionLimit = 10
	s.Scramble = true
	s.HideAnswer = true
	if got := describe(s); got != "10 questions, shuffled, answers hidden" {
		t.Errorf("describe = %q", got)
	}
}
