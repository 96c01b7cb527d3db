package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mbeprep/internal/filter"
	"github.com/abhisek/mbeprep/internal/quiz"
	"github.com/abhisek/mbeprep/internal/review"
	"github.com/abhisek/mbeprep/internal/store"
	"github.com/abhisek/mbeprep/internal/timer"
)

// memKV is an in-memory StateStore that round-trips values through JSON.
type memKV struct {
	data map[string][]byte
	fail error
}

func newMemKV() *memKV { return &memKV{data: make(map[string][]byte)} }

func (m *memKV) Put(_ context.Context, key string, value any) error {
	if m.fail != nil {
		return m.fail
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *memKV) PutMany(ctx context.Context, entries map[string]any) error {
	for k, v := range entries {
		if err := m.Put(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (m *memKV) Get(_ context.Context, key string, dst any) (bool, error) {
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (m *memKV) BulkDelete(_ context.Context, keys []string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// memWriter records every Put and can be told to fail.
type memWriter struct {
	puts []string
	fail error
}

func (w *memWriter) Put(_ context.Context, q *quiz.Question) error {
	if w.fail != nil {
		return w.fail
	}
	w.puts = append(w.puts, q.QuestionID)
	return nil
}

type fakeClock struct{ t time.Time }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func collectWarnings(warnings *[]string) Option {
	return WithWarnf(func(f string, a ...any) {
		*warnings = append(*warnings, fmt.Sprintf(f, a...))
	})
}

func ids(v *QuestionView) string { return v.Question.QuestionID }

func noTimers() Settings {
	return Settings{Timers: timer.Config{StopwatchEnabled: true}}
}

func withQuestionTimer(sec int) Settings {
	return Settings{Timers: timer.Config{QuestionEnabled: true, QuestionSeconds: sec}}
}

func withSessionTimer(min int) Settings {
	return Settings{Timers: timer.Config{SessionEnabled: true, SessionMinutes: min}}
}

func makeBank(n int) *quiz.Bank {
	var qs []*quiz.Question
	for i := 1; i <= n; i++ {
		q := &quiz.Question{
			QuestionID:   fmt.Sprintf("q%d", i),
			Category:     "Torts",
			QuestionText: fmt.Sprintf("Question %d", i),
			Choices:      map[string]string{"A": "a", "B": "b", "C": "c"},
			Answer:       &quiz.Answer{CorrectChoice: "A"},
		}
		quiz.Normalize(q)
		qs = append(qs, q)
	}
	return quiz.NewBank(qs, nil)
}

type harness struct {
	engine   *Engine
	bank     *quiz.Bank
	kv       *memKV
	writer   *memWriter
	clock    *fakeClock
	warnings []string
}

func newHarness(t *testing.T, n int) *harness {
	t.Helper()
	h := &harness{bank: makeBank(n), kv: newMemKV(), writer: &memWriter{}, clock: newClock()}
	h.engine = NewEngine(h.bank, h.writer, h.kv, WithClock(h.clock.now), collectWarnings(&h.warnings))
	return h
}

func (h *harness) start(t *testing.T, s Settings) *QuestionView {
	t.Helper()
	v, err := h.engine.StartFiltered(context.Background(), s)
	require.NoError(t, err)
	require.NotNil(t, v)
	return v
}

func TestStart_ShowsFirstQuestionAndSnapshots(t *testing.T) {
	h := newHarness(t, 3)
	v := h.start(t, noTimers())

	st := h.engine.State()
	assert.Equal(t, PhaseRunning, st.Phase)
	assert.Equal(t, 0, st.CurrentIndex)
	assert.NotEmpty(t, st.RunID)
	assert.Equal(t, "q1", ids(v))
	assert.Equal(t, 3, v.Total)
	assert.False(t, v.CanRetreat)
	assert.Empty(t, st.Attempts)

	var idx int
	ok, err := h.kv.Get(context.Background(), KeyCurrentIndex, &idx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	var saved Settings
	ok, _ = h.kv.Get(context.Background(), KeySettings, &saved)
	assert.True(t, ok)
}

func TestStart_NoMatch(t *testing.T) {
	h := newHarness(t, 3)
	s := noTimers()
	s.Filters.Categories = map[string][]string{"Contracts": {}}
	_, err := h.engine.StartFiltered(context.Background(), s)
	assert.ErrorIs(t, err, filter.ErrNoMatch)
	assert.Equal(t, PhaseIdle, h.engine.State().Phase)
}

func TestStart_SnapshotFailureKeepsIdle(t *testing.T) {
	h := newHarness(t, 2)
	h.kv.fail = errors.New("disk full")
	_, err := h.engine.Start(context.Background(), h.bank.Questions(), noTimers())
	require.Error(t, err)
	assert.Equal(t, PhaseIdle, h.engine.State().Phase)
}

func TestStart_ResolvesCanonicalQuestions(t *testing.T) {
	h := newHarness(t, 2)
	copyOf := h.bank.Question("q1").Clone()

	_, err := h.engine.Start(context.Background(), []*quiz.Question{copyOf}, noTimers())
	require.NoError(t, err)
	_, err = h.engine.RecordAttempt(context.Background(), quiz.Choice("A"), "")
	require.NoError(t, err)

	assert.Len(t, h.bank.Question("q1").UserAttempts, 1)
	assert.Empty(t, copyOf.UserAttempts)
}

func TestAdvanceRetreat(t *testing.T) {
	h := newHarness(t, 3)
	ctx := context.Background()
	h.start(t, noTimers())

	_, err := h.engine.Retreat(ctx)
	assert.ErrorIs(t, err, ErrNoPrevious)

	v, err := h.engine.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "q2", ids(v))
	assert.True(t, v.CanRetreat)

	v, err = h.engine.Retreat(ctx)
	require.NoError(t, err)
	assert.Equal(t, "q1", ids(v))

	_, _ = h.engine.Advance(ctx)
	_, _ = h.engine.Advance(ctx)
	v, err = h.engine.Advance(ctx)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, PhaseComplete, h.engine.State().Phase)

	_, err = h.engine.Advance(ctx)
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestAdvance_QuestionLimitCompletes(t *testing.T) {
	h := newHarness(t, 5)
	ctx := context.Background()
	s := noTimers()
	s.QuestionLimit = 2
	v := h.start(t, s)
	assert.Equal(t, 2, v.Total)

	_, err := h.engine.Advance(ctx)
	require.NoError(t, err)
	v, err = h.engine.Advance(ctx)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, PhaseComplete, h.engine.State().Phase)
}

func TestRecordAttempt_NumbersAndPersists(t *testing.T) {
	h := newHarness(t, 1)
	ctx := context.Background()

	for run := 1; run <= 3; run++ {
		h.start(t, noTimers())
		h.clock.advance(time.Duration(run) * time.Hour)
		require.NoError(t, h.engine.Select("B"))
		v, err := h.engine.Submit(ctx)
		require.NoError(t, err)
		assert.True(t, v.Answered())
		assert.False(t, v.Correct)
		assert.True(t, v.ShowFeedback)
		_, err = h.engine.Advance(ctx)
		require.NoError(t, err)
	}

	q := h.bank.Question("q1")
	require.Len(t, q.UserAttempts, 3)
	for i, a := range q.UserAttempts {
		assert.Equal(t, i+1, a.AttemptID)
	}
	assert.Equal(t, float64(3600), q.UserAttempts[0].TimeSpentSeconds)
	assert.Equal(t, []string{"q1", "q1", "q1"}, h.writer.puts)
}

func TestRecordAttempt_Guards(t *testing.T) {
	h := newHarness(t, 2)
	ctx := context.Background()

	_, err := h.engine.RecordAttempt(ctx, quiz.Choice("A"), "")
	assert.ErrorIs(t, err, ErrNotRunning)

	h.start(t, noTimers())
	_, err = h.engine.Submit(ctx)
	assert.ErrorIs(t, err, ErrNoChoice)

	assert.ErrorIs(t, h.engine.Select("Z"), ErrInvalidChoice)

	require.NoError(t, h.engine.Select("A"))
	_, err = h.engine.Submit(ctx)
	require.NoError(t, err)

	_, err = h.engine.RecordAttempt(ctx, quiz.Choice("B"), "")
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
	assert.ErrorIs(t, h.engine.Select("B"), ErrAlreadyAnswered)
	assert.Len(t, h.bank.Question("q1").UserAttempts, 1)
}

func TestRecordAttempt_StoreFailureRollsBack(t *testing.T) {
	h := newHarness(t, 2)
	ctx := context.Background()
	h.start(t, noTimers())

	h.writer.fail = &store.QuotaError{Op: "put question", Err: errors.New("full")}
	require.NoError(t, h.engine.Select("A"))
	_, err := h.engine.Submit(ctx)

	var qe *store.QuotaError
	require.True(t, errors.As(err, &qe))
	assert.Empty(t, h.bank.Question("q1").UserAttempts)
	assert.False(t, h.engine.State().Answered("q1"))

	// Retry succeeds once the store recovers.
	h.writer.fail = nil
	_, err = h.engine.Submit(ctx)
	require.NoError(t, err)
	assert.Len(t, h.bank.Question("q1").UserAttempts, 1)
}

func TestRetreat_ShowsPriorAnswer(t *testing.T) {
	h := newHarness(t, 2)
	ctx := context.Background()
	h.start(t, noTimers())

	require.NoError(t, h.engine.Select("C"))
	h.engine.SetDraftNotes("  hearsay exception ")
	_, err := h.engine.Submit(ctx)
	require.NoError(t, err)
	_, err = h.engine.Advance(ctx)
	require.NoError(t, err)

	v, err := h.engine.Retreat(ctx)
	require.NoError(t, err)
	require.True(t, v.Answered())
	assert.Equal(t, "C", v.Selected)
	assert.Equal(t, "hearsay exception", v.Attempt.Notes)
	assert.Equal(t, "hearsay exception", h.engine.State().DraftNotes)
}

func TestUpdateNotes(t *testing.T) {
	h := newHarness(t, 2)
	ctx := context.Background()
	h.start(t, noTimers())

	assert.ErrorIs(t, h.engine.UpdateNotes(ctx, "x"), ErrNotAnswered)

	require.NoError(t, h.engine.Select("A"))
	_, err := h.engine.Submit(ctx)
	require.NoError(t, err)
	writes := len(h.writer.puts)

	require.NoError(t, h.engine.UpdateNotes(ctx, "  rule statement "))
	assert.Equal(t, writes+1, len(h.writer.puts))
	assert.Equal(t, "rule statement", h.bank.Question("q1").LastAttempt().Notes)
	assert.Equal(t, "rule statement", h.engine.State().Attempts["q1"].Attempt.Notes)

	// Unchanged text is not rewritten.
	require.NoError(t, h.engine.UpdateNotes(ctx, "rule statement"))
	assert.Equal(t, writes+1, len(h.writer.puts))

	// Failed writes restore the previous notes.
	h.writer.fail = errors.New("io")
	require.Error(t, h.engine.UpdateNotes(ctx, "new text"))
	assert.Equal(t, "rule statement", h.bank.Question("q1").LastAttempt().Notes)
}

func TestHideAnswerMode(t *testing.T) {
	h := newHarness(t, 1)
	ctx := context.Background()
	s := noTimers()
	s.HideAnswer = true
	h.start(t, s)

	_, err := h.engine.RevealAnswer()
	assert.ErrorIs(t, err, ErrNotAnswered)

	require.NoError(t, h.engine.Select("A"))
	v, err := h.engine.Submit(ctx)
	require.NoError(t, err)
	assert.True(t, v.Answered())
	assert.False(t, v.ShowFeedback)

	v, err = h.engine.RevealAnswer()
	require.NoError(t, err)
	assert.True(t, v.ShowFeedback)
	assert.True(t, v.Correct)
}

func TestQuestionTimeout_RecordsEmptyAttempt(t *testing.T) {
	h := newHarness(t, 2)
	ctx := context.Background()
	h.start(t, withQuestionTimer(10))

	var res TickResult
	var err error
	for i := 0; i < 10; i++ {
		res, err = h.engine.Tick(ctx)
		require.NoError(t, err)
	}
	require.True(t, res.QuestionExpired)
	require.NotNil(t, res.View)
	assert.True(t, res.View.Answered())

	q := h.bank.Question("q1")
	require.Len(t, q.UserAttempts, 1)
	assert.Nil(t, q.UserAttempts[0].ChosenAnswer)
	assert.Equal(t, TimeoutNote, q.UserAttempts[0].Notes)

	// Further ticks do not record again.
	for i := 0; i < 20; i++ {
		_, err = h.engine.Tick(ctx)
		require.NoError(t, err)
	}
	assert.Len(t, q.UserAttempts, 1)

	v, err := h.engine.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "q2", ids(v))
}

func TestQuestionTimeout_SubmitsSelection(t *testing.T) {
	h := newHarness(t, 1)
	ctx := context.Background()
	h.start(t, withQuestionTimer(3))
	require.NoError(t, h.engine.Select("A"))

	for i := 0; i < 3; i++ {
		_, err := h.engine.Tick(ctx)
		require.NoError(t, err)
	}
	last := h.bank.Question("q1").LastAttempt()
	require.NotNil(t, last)
	assert.Equal(t, "A", last.Choice())
}

func TestQuestionTimer_SkipsAnsweredOnRetreat(t *testing.T) {
	h := newHarness(t, 2)
	ctx := context.Background()
	h.start(t, withQuestionTimer(2))

	require.NoError(t, h.engine.Select("A"))
	_, err := h.engine.Submit(ctx)
	require.NoError(t, err)
	_, err = h.engine.Advance(ctx)
	require.NoError(t, err)
	_, err = h.engine.Retreat(ctx)
	require.NoError(t, err)

	assert.False(t, h.engine.State().Timers.Question.Running())
	for i := 0; i < 5; i++ {
		_, err = h.engine.Tick(ctx)
		require.NoError(t, err)
	}
	assert.Len(t, h.bank.Question("q1").UserAttempts, 1)
}

func TestSessionTimeout_SubmitsAndCompletes(t *testing.T) {
	h := newHarness(t, 3)
	ctx := context.Background()
	h.start(t, withSessionTimer(1))
	require.NoError(t, h.engine.Select("A"))

	var res TickResult
	for i := 0; i < 60; i++ {
		var err error
		res, err = h.engine.Tick(ctx)
		require.NoError(t, err)
	}
	assert.True(t, res.Completed)

	st := h.engine.State()
	assert.Equal(t, PhaseComplete, st.Phase)
	require.NotNil(t, st.Review)
	assert.Equal(t, 1, st.Review.Answered)
	assert.Equal(t, review.VerdictCorrect, st.Review.Items[0].Verdict)
	assert.Equal(t, review.VerdictNotAttempted, st.Review.Items[1].Verdict)

	ok, err := HasSnapshot(ctx, h.kv)
	require.NoError(t, err)
	assert.False(t, ok, "finished runs must not be resumable")
}

func TestCompletion_ClearsSnapshotAndReviews(t *testing.T) {
	h := newHarness(t, 2)
	ctx := context.Background()
	h.start(t, noTimers())

	require.NoError(t, h.engine.Select("B"))
	_, err := h.engine.Submit(ctx)
	require.NoError(t, err)
	_, _ = h.engine.Advance(ctx)
	_, _ = h.engine.Advance(ctx)

	st := h.engine.State()
	require.Equal(t, PhaseComplete, st.Phase)
	assert.Equal(t, 0, st.Review.Correct)
	assert.Equal(t, 1, st.Review.Answered)
	for _, k := range SnapshotKeys {
		_, present := h.kv.data[k]
		assert.False(t, present, k)
	}

	// Settings survive and Restart begins a fresh run.
	v, err := h.engine.Restart(ctx)
	require.NoError(t, err)
	assert.Equal(t, "q1", ids(v))
	assert.Empty(t, h.engine.State().Attempts)
}

func TestReset(t *testing.T) {
	h := newHarness(t, 1)
	s := noTimers()
	s.HideAnswer = true
	h.start(t, s)
	_, _ = h.engine.Advance(context.Background())

	h.engine.Reset()
	assert.Equal(t, PhaseIdle, h.engine.State().Phase)
	assert.True(t, h.engine.State().Settings.HideAnswer)
}

func TestQuitThenResume(t *testing.T) {
	h := newHarness(t, 2)
	ctx := context.Background()
	s := withQuestionTimer(30)
	s.Timers.StopwatchEnabled = true
	h.start(t, s)
	h.engine.SetDraftNotes("thinking")

	require.NoError(t, h.engine.Quit(ctx))
	st := h.engine.State()
	assert.False(t, st.Timers.Question.Running())
	assert.False(t, st.Timers.Stopwatch.Running())
	ok, err := HasSnapshot(ctx, h.kv)
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := h.engine.Resume()
	require.NoError(t, err)
	assert.Equal(t, "q1", ids(v))
	assert.True(t, st.Timers.Question.Running())
	assert.True(t, st.Timers.Stopwatch.Running())

	_, err = h.engine.Submit(ctx)
	assert.ErrorIs(t, err, ErrNoChoice)
	require.NoError(t, h.engine.Select("B"))
	_, err = h.engine.Submit(ctx)
	require.NoError(t, err)

	require.NoError(t, h.engine.Quit(ctx))
	_, err = h.engine.Resume()
	require.NoError(t, err)
	assert.False(t, st.Timers.Question.Running())
}

func TestResume_ExcludesTimeAway(t *testing.T) {
	h := newHarness(t, 2)
	ctx := context.Background()
	h.start(t, noTimers())

	h.clock.advance(10 * time.Second)
	require.NoError(t, h.engine.Quit(ctx))
	h.clock.advance(time.Hour)
	// A second Quit, as on program exit, keeps the original pause time.
	require.NoError(t, h.engine.Quit(ctx))
	h.clock.advance(time.Hour)

	_, err := h.engine.Resume()
	require.NoError(t, err)
	h.clock.advance(5 * time.Second)
	require.NoError(t, h.engine.Select("A"))
	v, err := h.engine.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15.0, v.Attempt.TimeSpentSeconds)
}

// storeRun saves a 10-question run snapshot into a fresh harness.
func storeRun(t *testing.T, s Settings) *harness {
	t.Helper()
	h := newHarness(t, 10)
	h.start(t, s)
	require.NoError(t, h.engine.Quit(context.Background()))
	return h
}

func (h *harness) restoreFresh() (*Engine, *QuestionView, []string) {
	var warnings []string
	e := NewEngine(h.bank, h.writer, h.kv, WithClock(h.clock.now), collectWarnings(&warnings))
	return e, e.Restore(context.Background()), warnings
}

func TestRestore_RejectsInvalidSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(t *testing.T, h *harness)
		warning string
	}{
		{
			name: "index past end of list",
			corrupt: func(t *testing.T, h *harness) {
				require.NoError(t, h.kv.Put(context.Background(), KeyCurrentIndex, 50))
			},
			warning: "index 50 out of range for 10 questions",
		},
		{
			name: "negative index",
			corrupt: func(t *testing.T, h *harness) {
				require.NoError(t, h.kv.Put(context.Background(), KeyCurrentIndex, -1))
			},
			warning: "out of range",
		},
		{
			name: "empty list",
			corrupt: func(t *testing.T, h *harness) {
				require.NoError(t, h.kv.Put(context.Background(), KeyMasterList, []string{}))
			},
			warning: "empty question list",
		},
		{
			name: "index past question limit",
			corrupt: func(t *testing.T, h *harness) {
				ctx := context.Background()
				require.NoError(t, h.kv.Put(ctx, KeyQuestionLimit, 3))
				require.NoError(t, h.kv.Put(ctx, KeyCurrentIndex, 5))
			},
			warning: "beyond question limit 3",
		},
		{
			name: "question no longer in bank",
			corrupt: func(t *testing.T, h *harness) {
				require.NoError(t, h.kv.Put(context.Background(), KeyMasterList, []string{"q1", "gone"}))
			},
			warning: "no longer in the bank",
		},
		{
			name: "unreadable value",
			corrupt: func(t *testing.T, h *harness) {
				h.kv.data[KeyCurrentIndex] = []byte(`"five"`)
			},
			warning: "read saved session",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := storeRun(t, noTimers())
			tt.corrupt(t, h)

			e, v, warnings := h.restoreFresh()
			assert.Nil(t, v)
			assert.Equal(t, PhaseIdle, e.State().Phase)
			require.Len(t, warnings, 1)
			assert.Contains(t, warnings[0], tt.warning)

			for _, k := range SnapshotKeys {
				_, ok := h.kv.data[k]
				assert.False(t, ok, "key %s left behind", k)
			}
		})
	}
}

func TestRestore_ResumesClocks(t *testing.T) {
	s := withSessionTimer(30)
	s.Timers.StopwatchEnabled = true
	h := newHarness(t, 10)
	h.start(t, s)

	ctx := context.Background()
	for range 100 {
		_, err := h.engine.Tick(ctx)
		require.NoError(t, err)
	}
	_, err := h.engine.Advance(ctx)
	require.NoError(t, err)
	require.NoError(t, h.engine.Quit(ctx))

	e, v, warnings := h.restoreFresh()
	require.NotNil(t, v)
	assert.Empty(t, warnings)
	assert.Equal(t, "q2", ids(v))

	st := e.State()
	assert.Equal(t, PhaseRunning, st.Phase)
	assert.Equal(t, 1700, st.Timers.Session.Remaining())
	assert.True(t, st.Timers.Session.Running())
	assert.Equal(t, 100, st.Timers.Stopwatch.Elapsed())
	assert.True(t, st.Timers.Stopwatch.Running())
}

func TestResume_RequiresRun(t *testing.T) {
	h := newHarness(t, 1)
	_, err := h.engine.Resume()
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestAbandon(t *testing.T) {
	h := newHarness(t, 2)
	ctx := context.Background()
	h.start(t, noTimers())

	require.NoError(t, h.engine.Abandon(ctx))
	assert.Equal(t, PhaseIdle, h.engine.State().Phase)
	ok, err := HasSnapshot(ctx, h.kv)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettings_RoundTrip(t *testing.T) {
	h := newHarness(t, 1)
	ctx := context.Background()

	def := DefaultSettings()
	got, err := h.engine.LoadSettings(ctx, def)
	require.NoError(t, err)
	assert.Equal(t, def.Timers.Normalized(), got.Timers)

	s := Settings{
		Filters:       filter.Criteria{Attempts: filter.AttemptsIncorrect, Providers: []string{"NCBE"}},
		QuestionLimit: 25,
		HideAnswer:    true,
		Scramble:      true,
		Timers:        timer.Config{SessionEnabled: true, SessionMinutes: 30, QuestionSeconds: 60},
	}
	require.NoError(t, h.engine.SaveSettings(ctx, s))

	other := NewEngine(h.bank, h.writer, h.kv)
	got, err = other.LoadSettings(ctx, def)
	require.NoError(t, err)
	assert.Equal(t, s, got)
	assert.Equal(t, s, other.State().Settings)
}

// TestStoreBackedEngine exercises the engine against the SQLite store.
func TestStoreBackedEngine(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "quiz.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	bank := makeBank(3)
	require.NoError(t, st.ReplaceAll(ctx, bank.Questions(), nil))

	e := NewEngine(bank, st.Questions(), st.AppState())
	_, err = e.StartFiltered(ctx, noTimers())
	require.NoError(t, err)
	require.NoError(t, e.Select("A"))
	_, err = e.Submit(ctx)
	require.NoError(t, err)

	stored, err := st.Questions().Get(ctx, "q1")
	require.NoError(t, err)
	require.Len(t, stored.UserAttempts, 1)
	assert.Equal(t, "A", stored.UserAttempts[0].Choice())

	// A second engine over a reloaded bank resumes at the same point.
	all, err := st.Questions().All(ctx)
	require.NoError(t, err)
	resumed := NewEngine(quiz.NewBank(all, nil), st.Questions(), st.AppState())
	v := resumed.Restore(ctx)
	require.NotNil(t, v)
	assert.Equal(t, "q1", ids(v))
	assert.True(t, v.Answered())
}
