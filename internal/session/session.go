package session

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/mbeprep/internal/filter"
	"github.com/abhisek/mbeprep/internal/quiz"
	"github.com/abhisek/mbeprep/internal/review"
	"github.com/abhisek/mbeprep/internal/timer"
)

// checkpointEvery is how many timer ticks pass between snapshot saves, so
// a crash loses at most this many seconds of clock state.
const checkpointEvery = 30

// QuestionWriter persists a single question.
type QuestionWriter interface {
	Put(ctx context.Context, q *quiz.Question) error
}

// StateStore is the key/value table holding settings and snapshots.
type StateStore interface {
	Put(ctx context.Context, key string, value any) error
	PutMany(ctx context.Context, entries map[string]any) error
	Get(ctx context.Context, key string, dst any) (bool, error)
	BulkDelete(ctx context.Context, keys []string) error
}

// Engine owns the run state and keeps it consistent with the store.
// It is not safe for concurrent use; callers drive it from one goroutine.
type Engine struct {
	bank      *quiz.Bank
	questions QuestionWriter
	kv        StateStore
	now       func() time.Time
	warnf     func(format string, args ...any)

	state     *SessionState
	sinceSave int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithWarnf overrides where non-fatal warnings go. The default writes to
// stderr.
func WithWarnf(f func(format string, args ...any)) Option {
	return func(e *Engine) { e.warnf = f }
}

// NewEngine creates an idle engine over bank.
func NewEngine(bank *quiz.Bank, questions QuestionWriter, kv StateStore, opts ...Option) *Engine {
	e := &Engine{
		bank:      bank,
		questions: questions,
		kv:        kv,
		now:       time.Now,
		warnf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
		},
		state: newIdleState(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// State returns the live run state. Callers must not mutate it.
func (e *Engine) State() *SessionState {
	return e.state
}

// Bank returns the in-memory question mirror.
func (e *Engine) Bank() *quiz.Bank {
	return e.bank
}

// SetBank swaps the question mirror, e.g. after an import. Any run in
// progress is dropped.
func (e *Engine) SetBank(b *quiz.Bank) {
	e.bank = b
	e.state = newIdleState()
}

// StartFiltered selects questions for s, saves s as the user's settings
// and starts a run. It returns filter.ErrNoMatch when nothing matches.
func (e *Engine) StartFiltered(ctx context.Context, s Settings) (*QuestionView, error) {
	res := filter.Select(e.bank.Questions(), e.bank.Groups(), s.Filters, s.QuestionLimit, s.Scramble)
	if res.Empty() {
		return nil, filter.ErrNoMatch
	}
	if err := e.SaveSettings(ctx, s); err != nil {
		e.warnf("save settings: %v", err)
	}
	return e.Start(ctx, res.Questions, s)
}

// Restart begins a fresh run with the settings of the last one.
func (e *Engine) Restart(ctx context.Context) (*QuestionView, error) {
	return e.StartFiltered(ctx, e.state.Settings)
}

// Start begins a run over ordered. The cursor, session attempts and
// clocks are reset, an initial snapshot is persisted and the first
// question is returned.
func (e *Engine) Start(ctx context.Context, ordered []*quiz.Question, s Settings) (*QuestionView, error) {
	if len(ordered) == 0 {
		return nil, filter.ErrNoMatch
	}
	s.Timers = s.Timers.Normalized()

	master := make([]*quiz.Question, len(ordered))
	for i, q := range ordered {
		if c := e.bank.Question(q.QuestionID); c != nil {
			q = c
		}
		master[i] = q
	}

	st := newIdleState()
	st.Phase = PhaseRunning
	st.RunID = uuid.NewString()
	st.MasterList = master
	st.Settings = s
	st.Timers = timer.NewSet(s.Timers)
	st.Timers.ResetAll()

	prev := e.state
	e.state = st
	if err := e.SaveSnapshot(ctx); err != nil {
		e.state = prev
		return nil, fmt.Errorf("save session: %w", err)
	}

	st.Timers.StartAll()
	return e.Advance(ctx)
}

// Advance moves the cursor forward. When the run is exhausted or the
// question limit is reached, the run completes and a nil view is
// returned; the review is then on State().Review.
func (e *Engine) Advance(ctx context.Context) (*QuestionView, error) {
	st := e.state
	if st.Phase != PhaseRunning {
		return nil, ErrNotRunning
	}

	next := st.CurrentIndex + 1
	limit := st.Settings.QuestionLimit
	if (limit > 0 && next >= limit) || next >= len(st.MasterList) {
		e.complete(ctx)
		return nil, nil
	}

	e.land(next)
	e.checkpoint(ctx)
	return e.View(), nil
}

// Retreat moves the cursor back one question.
func (e *Engine) Retreat(ctx context.Context) (*QuestionView, error) {
	st := e.state
	if st.Phase != PhaseRunning {
		return nil, ErrNotRunning
	}
	if st.CurrentIndex <= 0 {
		return nil, ErrNoPrevious
	}
	e.land(st.CurrentIndex - 1)
	e.checkpoint(ctx)
	return e.View(), nil
}

// land positions the cursor on idx and resets per-question state. The
// question countdown only runs for questions not yet answered.
func (e *Engine) land(idx int) {
	st := e.state
	st.CurrentIndex = idx
	st.QuestionStart = e.now()
	st.Selected = ""
	st.DraftNotes = ""

	q := st.Current()
	if sa, ok := st.Attempts[q.QuestionID]; ok {
		st.Selected = sa.Attempt.Choice()
		st.DraftNotes = sa.Attempt.Notes
		st.Timers.Question.Pause()
		st.Timers.Question.Reset()
		return
	}
	st.Timers.RestartQuestion()
}

// Select records a pending choice for the current question.
func (e *Engine) Select(key string) error {
	st := e.state
	q := st.Current()
	if st.Phase != PhaseRunning || q == nil {
		return ErrNotRunning
	}
	if st.Answered(q.QuestionID) {
		return ErrAlreadyAnswered
	}
	if !q.HasChoice(key) {
		return fmt.Errorf("%w: %q", ErrInvalidChoice, key)
	}
	st.Selected = key
	return nil
}

// SetDraftNotes stores the notes being typed for the current question so
// that timeouts and quits can flush them.
func (e *Engine) SetDraftNotes(text string) {
	e.state.DraftNotes = text
}

// Submit records the pending choice with the draft notes.
func (e *Engine) Submit(ctx context.Context) (*QuestionView, error) {
	if e.state.Selected == "" {
		return nil, ErrNoChoice
	}
	return e.RecordAttempt(ctx, quiz.Choice(e.state.Selected), e.state.DraftNotes)
}

// RecordAttempt appends an attempt to the canonical question, indexes it
// as answered this run and writes the question to the store. A store
// failure undoes the in-memory change and is returned.
func (e *Engine) RecordAttempt(ctx context.Context, chosen *string, notes string) (*QuestionView, error) {
	st := e.state
	cur := st.Current()
	if st.Phase != PhaseRunning || cur == nil {
		return nil, ErrNotRunning
	}
	if st.Answered(cur.QuestionID) {
		return nil, ErrAlreadyAnswered
	}

	q := e.bank.Question(cur.QuestionID)
	if q == nil {
		q = cur
	}

	now := e.now()
	att := q.NewAttempt(chosen, now, now.Sub(st.QuestionStart), strings.TrimSpace(notes))
	q.UserAttempts = append(q.UserAttempts, att)
	st.Attempts[q.QuestionID] = SessionAttempt{QuestionID: q.QuestionID, Attempt: att}

	if err := e.questions.Put(ctx, q); err != nil {
		q.UserAttempts = q.UserAttempts[:len(q.UserAttempts)-1]
		delete(st.Attempts, q.QuestionID)
		return nil, fmt.Errorf("save attempt for %s: %w", q.QuestionID, err)
	}

	st.Timers.Question.Pause()
	st.Selected = att.Choice()
	st.DraftNotes = att.Notes
	e.checkpoint(ctx)
	return e.View(), nil
}

// UpdateNotes rewrites the notes of the current question's attempt from
// this run, provided it is still the question's latest attempt. Unchanged
// text is not written.
func (e *Engine) UpdateNotes(ctx context.Context, text string) error {
	st := e.state
	cur := st.Current()
	if st.Phase != PhaseRunning || cur == nil {
		return ErrNotRunning
	}
	sa, ok := st.Attempts[cur.QuestionID]
	if !ok {
		return ErrNotAnswered
	}
	q := e.bank.Question(cur.QuestionID)
	if q == nil {
		q = cur
	}
	last := q.LastAttempt()
	if last == nil || last.AttemptID != sa.Attempt.AttemptID {
		return ErrNotAnswered
	}

	text = strings.TrimSpace(text)
	st.DraftNotes = text
	if last.Notes == text {
		return nil
	}

	prev := last.Notes
	last.Notes = text
	if err := e.questions.Put(ctx, q); err != nil {
		last.Notes = prev
		return fmt.Errorf("save notes for %s: %w", q.QuestionID, err)
	}
	sa.Attempt.Notes = text
	st.Attempts[q.QuestionID] = sa
	e.checkpoint(ctx)
	return nil
}

// RevealAnswer shows feedback for the current answered question in
// hide-answer mode.
func (e *Engine) RevealAnswer() (*QuestionView, error) {
	st := e.state
	cur := st.Current()
	if st.Phase != PhaseRunning || cur == nil {
		return nil, ErrNotRunning
	}
	if !st.Answered(cur.QuestionID) {
		return nil, ErrNotAnswered
	}
	st.Revealed[cur.QuestionID] = true
	return e.View(), nil
}

// TickResult reports what a clock tick caused.
type TickResult struct {
	timer.Event

	// Completed is true when the session countdown ended the run.
	Completed bool

	// View is the refreshed question after a question timeout.
	View *QuestionView
}

// Tick advances the clocks by one second and applies timeouts. A session
// timeout submits a pending selection, flushes draft notes and completes
// the run. A question timeout submits the pending selection, or records
// an empty attempt when nothing is selected.
func (e *Engine) Tick(ctx context.Context) (TickResult, error) {
	st := e.state
	if st.Phase != PhaseRunning {
		return TickResult{}, nil
	}
	res := TickResult{Event: st.Timers.Tick()}

	switch {
	case res.SessionExpired:
		err := e.flushPending(ctx)
		e.complete(ctx)
		res.Completed = true
		return res, err

	case res.QuestionExpired:
		cur := st.Current()
		if cur == nil || st.Answered(cur.QuestionID) {
			return res, nil
		}
		var (
			view *QuestionView
			err  error
		)
		if st.Selected != "" {
			view, err = e.RecordAttempt(ctx, quiz.Choice(st.Selected), st.DraftNotes)
		} else {
			view, err = e.RecordAttempt(ctx, nil, joinNotes(st.DraftNotes, TimeoutNote))
		}
		res.View = view
		return res, err
	}

	e.sinceSave++
	if e.sinceSave >= checkpointEvery {
		e.checkpoint(ctx)
	}
	return res, nil
}

// flushPending submits a selected-but-unsubmitted answer, or saves draft
// notes on an answered question.
func (e *Engine) flushPending(ctx context.Context) error {
	st := e.state
	cur := st.Current()
	if cur == nil {
		return nil
	}
	if !st.Answered(cur.QuestionID) {
		if st.Selected == "" {
			return nil
		}
		_, err := e.RecordAttempt(ctx, quiz.Choice(st.Selected), st.DraftNotes)
		return err
	}
	return e.UpdateNotes(ctx, st.DraftNotes)
}

// Quit flushes pending notes and checkpoints the run so it can be
// resumed. It is best effort; failures are returned for display.
func (e *Engine) Quit(ctx context.Context) error {
	st := e.state
	if st.Phase != PhaseRunning {
		return nil
	}
	st.Timers.PauseAll()
	if st.PausedAt.IsZero() {
		st.PausedAt = e.now()
	}
	var notesErr error
	if cur := st.Current(); cur != nil && st.Answered(cur.QuestionID) {
		notesErr = e.UpdateNotes(ctx, st.DraftNotes)
	}
	if err := e.SaveSnapshot(ctx); err != nil {
		return err
	}
	return notesErr
}

// Resume restarts the clocks of a run paused by Quit. The question
// countdown only resumes while the current question is unanswered, and
// time spent away is not charged to the question.
func (e *Engine) Resume() (*QuestionView, error) {
	st := e.state
	cur := st.Current()
	if st.Phase != PhaseRunning || cur == nil {
		return nil, ErrNotRunning
	}
	if !st.PausedAt.IsZero() {
		st.QuestionStart = st.QuestionStart.Add(e.now().Sub(st.PausedAt))
		st.PausedAt = time.Time{}
	}
	st.Timers.Session.Start()
	st.Timers.Stopwatch.Start()
	if !st.Answered(cur.QuestionID) {
		st.Timers.Question.Start()
	}
	return e.View(), nil
}

// Abandon drops the run in progress and its snapshot.
func (e *Engine) Abandon(ctx context.Context) error {
	e.state.Timers.PauseAll()
	e.state = newIdleState()
	return ClearSnapshot(ctx, e.kv)
}

// Reset returns a completed run to idle, keeping the settings.
func (e *Engine) Reset() {
	s := e.state.Settings
	e.state.Timers.PauseAll()
	e.state = newIdleState()
	e.state.Settings = s
}

// complete stops the clocks, builds the review and clears the snapshot so
// a finished run is never resumed.
func (e *Engine) complete(ctx context.Context) {
	st := e.state
	st.Phase = PhaseComplete
	st.Timers.PauseAll()
	st.Selected = ""
	st.Review = review.Build(st.MasterList, st.attemptMap(), st.Settings.HideAnswer)
	if err := ClearSnapshot(ctx, e.kv); err != nil {
		e.warnf("clear finished session: %v", err)
	}
}

// checkpoint saves the snapshot, warning on failure. Attempts are already
// durable by the time this runs.
func (e *Engine) checkpoint(ctx context.Context) {
	e.sinceSave = 0
	if err := e.SaveSnapshot(ctx); err != nil {
		e.warnf("save session snapshot: %v", err)
	}
}

// View builds the render model for the current question, or nil.
func (e *Engine) View() *QuestionView {
	st := e.state
	q := st.Current()
	if st.Phase != PhaseRunning || q == nil {
		return nil
	}
	v := &QuestionView{
		Index:      st.CurrentIndex,
		Total:      len(st.MasterList),
		Question:   q,
		Selected:   st.Selected,
		CanRetreat: st.CurrentIndex > 0,
		HideAnswer: st.Settings.HideAnswer,
	}
	if limit := st.Settings.QuestionLimit; limit > 0 && limit < v.Total {
		v.Total = limit
	}
	if q.GroupID != "" {
		v.Group = e.bank.Group(q.GroupID)
	}
	if sa, ok := st.Attempts[q.QuestionID]; ok {
		a := sa.Attempt
		v.Attempt = &a
		v.Correct = a.IsCorrect(q.CorrectChoice())
		v.ShowFeedback = !st.Settings.HideAnswer || st.Revealed[q.QuestionID]
	}
	return v
}

func joinNotes(draft, note string) string {
	draft = strings.TrimSpace(draft)
	if draft == "" {
		return note
	}
	return draft + "\n" + note
}
