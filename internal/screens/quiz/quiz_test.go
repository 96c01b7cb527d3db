package quiz

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mbeprep/internal/quiz"
	"github.com/abhisek/mbeprep/internal/router"
	"github.com/abhisek/mbeprep/internal/screens/summary"
	"github.com/abhisek/mbeprep/internal/session"
	"github.com/abhisek/mbeprep/internal/store"
)

func startRun(t *testing.T) (*session.Engine, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	var qs []*quiz.Question
	for _, id := range []string{"q1", "q2"} {
		q := &quiz.Question{
			QuestionID:   id,
			Category:     "Evidence",
			QuestionText: "Is the statement hearsay? (" + id + ")",
			Choices:      map[string]string{"A": "Yes", "B": "No"},
			Answer:       &quiz.Answer{CorrectChoice: "A", Explanation: "Offered for its truth."},
		}
		quiz.Normalize(q)
		qs = append(qs, q)
	}
	ctx := context.Background()
	if err := st.ReplaceAll(ctx, qs, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	engine := session.NewEngine(quiz.NewBank(qs, nil), st.Questions(), st.AppState())
	if _, err := engine.Start(ctx, qs, session.DefaultSettings()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return engine, st
}

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func press(s *QuizScreen, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, m := range msgs {
		_, cmd = s.Update(m)
	}
	return cmd
}

func TestQuizScreen_Title(t *testing.T) {
	engine, _ := startRun(t)
	s := New(engine)
	if s.Title() != "Question 1 of 2" {
		t.Errorf("Title = %q", s.Title())
	}
	if !s.HandlesEscape() {
		t.Error("quiz screen should handle Esc itself")
	}
}

func TestQuizScreen_SubmitRequiresChoice(t *testing.T) {
	engine, _ := startRun(t)
	s := New(engine)
	press(s, tea.KeyPressMsg{Code: tea.KeyEnter})
	if !strings.Contains(s.View(100, 40), "Choose an answer first") {
		t.Error("expected a prompt to choose an answer")
	}
	if s.view.Answered() {
		t.Error("question should not be answered")
	}
}

func TestQuizScreen_AnswerAndNavigate(t *testing.T) {
	engine, st := startRun(t)
	s := New(engine)

	press(s, key('a'), tea.KeyPressMsg{Code: tea.KeyEnter})
	if !s.view.Answered() {
		t.Fatal("expected the question to be answered")
	}
	view := s.View(100, 40)
	for _, want := range []string{"Correct!", "Offered for its truth."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	q, err := st.Questions().Get(context.Background(), "q1")
	if err != nil || q == nil {
		t.Fatalf("get q1: %v", err)
	}
	if len(q.UserAttempts) != 1 {
		t.Errorf("stored attempts = %d, want 1", len(q.UserAttempts))
	}

	press(s, tea.KeyPressMsg{Code: tea.KeyEnter})
	if s.Title() != "Question 2 of 2" {
		t.Errorf("after advance Title = %q", s.Title())
	}

	press(s, tea.KeyPressMsg{Code: tea.KeyLeft})
	if s.Title() != "Question 1 of 2" {
		t.Errorf("after retreat Title = %q", s.Title())
	}

	press(s, tea.KeyPressMsg{Code: tea.KeyLeft})
	if !strings.Contains(s.View(100, 40), "This is the first question.") {
		t.Error("expected first-question status")
	}
}

func TestQuizScreen_Complete(t *testing.T) {
	engine, _ := startRun(t)
	s := New(engine)

	press(s, key('a'), tea.KeyPressMsg{Code: tea.KeyEnter}, tea.KeyPressMsg{Code: tea.KeyEnter})
	cmd := press(s, key('b'), tea.KeyPressMsg{Code: tea.KeyEnter}, tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected completion command")
	}
	if _, ok := cmd().(runCompleteMsg); !ok {
		t.Fatal("expected runCompleteMsg")
	}
	if engine.State().Phase != session.PhaseComplete {
		t.Fatalf("phase = %v, want complete", engine.State().Phase)
	}

	_, cmd = s.Update(runCompleteMsg{})
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("replaced with %T, want summary screen", msg.Screen)
	}
	if engine.State().Review.Correct != 1 {
		t.Errorf("review correct = %d, want 1", engine.State().Review.Correct)
	}
}

func TestQuizScreen_QuitDialog(t *testing.T) {
	engine, st := startRun(t)
	s := New(engine)

	press(s, tea.KeyPressMsg{Code: tea.KeyEscape})
	if !s.confirmQuit {
		t.Fatal("esc should open the quit dialog")
	}
	if !strings.Contains(s.View(100, 40), "Leave this run?") {
		t.Error("expected quit dialog")
	}

	press(s, key('n'))
	if s.confirmQuit {
		t.Fatal("n should close the dialog")
	}

	press(s, tea.KeyPressMsg{Code: tea.KeyEscape})
	cmd := press(s, key('y'))
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("save and leave should pop the screen")
	}
	if engine.State().Phase != session.PhaseRunning {
		t.Error("run should remain resumable")
	}
	ok, err := session.HasSnapshot(context.Background(), st.AppState())
	if err != nil || !ok {
		t.Errorf("expected a saved run, got %v %v", ok, err)
	}
}

func TestQuizScreen_Abandon(t *testing.T) {
	engine, st := startRun(t)
	s := New(engine)

	cmd := press(s, tea.KeyPressMsg{Code: tea.KeyEscape}, key('a'))
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("abandon should pop the screen")
	}
	if engine.State().Phase != session.PhaseIdle {
		t.Errorf("phase = %v, want idle", engine.State().Phase)
	}
	ok, _ := session.HasSnapshot(context.Background(), st.AppState())
	if ok {
		t.Error("abandon should clear the saved run")
	}
}

func TestQuizScreen_DraftNotes(t *testing.T) {
	engine, _ := startRun(t)
	s := New(engine)

	press(s, tea.KeyPressMsg{Code: tea.KeyTab})
	if !s.notes.Focused() {
		t.Fatal("tab should focus notes")
	}
	for _, r := range "hearsay" {
		press(s, key(r))
	}
	press(s, tea.KeyPressMsg{Code: tea.KeyEnter})
	if s.notes.Focused() {
		t.Error("enter should close notes")
	}
	if engine.State().DraftNotes != "hearsay" {
		t.Errorf("draft notes = %q", engine.State().DraftNotes)
	}
}

func TestRestart_ReportsFailure(t *testing.T) {
	engine, _ := startRun(t)
	s := session.DefaultSettings()
	s.Filters.Categories = map[string][]string{"Torts": nil}
	qs := engine.Bank().Questions()
	if _, err := engine.Start(context.Background(), qs, s); err != nil {
		t.Fatalf("start: %v", err)
	}

	cmd := restart(engine)()
	if cmd == nil {
		t.Fatal("expected a status command")
	}
	msg, ok := cmd().(summary.StatusMsg)
	if !ok {
		t.Fatalf("expected summary.StatusMsg, got %T", cmd())
	}
	if !strings.Contains(msg.Text, "no questions matched") {
		t.Errorf("status = %q", msg.Text)
	}
}
