package app

import (
	"context"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mbeprep/internal/quiz"
	"github.com/abhisek/mbeprep/internal/router"
	"github.com/abhisek/mbeprep/internal/screens/home"
	quizscreen "github.com/abhisek/mbeprep/internal/screens/quiz"
	"github.com/abhisek/mbeprep/internal/session"
	"github.com/abhisek/mbeprep/internal/store"
)

func newEngine(t *testing.T) *session.Engine {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	q := &quiz.Question{
		QuestionID:   "q1",
		QuestionText: "Question one",
		Choices:      map[string]string{"A": "yes", "B": "no"},
		Answer:       &quiz.Answer{CorrectChoice: "A"},
	}
	quiz.Normalize(q)
	if err := st.ReplaceAll(context.Background(), []*quiz.Question{q}, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return session.NewEngine(quiz.NewBank([]*quiz.Question{q}, nil), st.Questions(), st.AppState())
}

func TestNewAppModel_Home(t *testing.T) {
	engine := newEngine(t)
	m := newAppModel(Options{Home: home.Options{Engine: engine}})
	if m.router.Depth() != 1 {
		t.Errorf("depth = %d, want 1", m.router.Depth())
	}
	if m.router.Active().Title() != "Home" {
		t.Errorf("active = %q, want Home", m.router.Active().Title())
	}
}

func TestNewAppModel_Restored(t *testing.T) {
	engine := newEngine(t)
	if _, err := engine.StartFiltered(context.Background(), session.DefaultSettings()); err != nil {
		t.Fatalf("start: %v", err)
	}

	m := newAppModel(Options{Home: home.Options{Engine: engine}, Restored: true})
	if m.router.Depth() != 2 {
		t.Fatalf("depth = %d, want 2", m.router.Depth())
	}
	if _, ok := m.router.Active().(*quizscreen.QuizScreen); !ok {
		t.Errorf("active = %T, want quiz screen", m.router.Active())
	}
	if m.pending == nil {
		t.Error("expected the quiz tick to be scheduled")
	}
}

func TestEscapeHandledByQuizScreen(t *testing.T) {
	engine := newEngine(t)
	if _, err := engine.StartFiltered(context.Background(), session.DefaultSettings()); err != nil {
		t.Fatalf("start: %v", err)
	}
	m := newAppModel(Options{Home: home.Options{Engine: engine}, Restored: true})

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		if _, ok := cmd().(router.PopScreenMsg); ok {
			t.Error("esc on the quiz screen should open the quit dialog, not pop")
		}
	}
	if m.router.Depth() != 2 {
		t.Errorf("depth = %d, want 2", m.router.Depth())
	}
}

func TestEscapeOnHomeIsNoop(t *testing.T) {
	m := newAppModel(Options{Home: home.Options{Engine: newEngine(t)}})
	if _, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape}); cmd != nil {
		t.Error("esc on home should do nothing")
	}
}
