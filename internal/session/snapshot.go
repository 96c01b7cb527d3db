package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/mbeprep/internal/filter"
	"github.com/abhisek/mbeprep/internal/quiz"
	"github.com/abhisek/mbeprep/internal/timer"
)

// App-state keys of the active session snapshot.
const (
	KeyMasterList           = "activeMasterQuestionList"
	KeyCurrentIndex         = "activeCurrentQuestionIndex"
	KeyFilters              = "activeFilters"
	KeyHideAnswer           = "activeHideAnswerMode"
	KeyQuestionLimit        = "activeQuestionLimit"
	KeySessionTimeRemaining = "activeSessionTimeRemaining"
	KeyStopwatchTime        = "activeStopwatchTime"
	KeySessionAttempts      = "activeSessionAttempts"
	KeySessionTimerEnabled  = "activeSessionTimerEnabled"
	KeyQuestionTimerEnabled = "activeQuestionTimerEnabled"
	KeyStopwatchEnabled     = "activeStopwatchEnabled"
	KeySessionTimeLimit     = "activeSessionTimeLimit"
	KeyQuestionTimeLimit    = "activeQuestionTimeLimit"
	KeyScramble             = "activeScramble"
	KeyRunID                = "activeRunID"
)

// SnapshotKeys lists every key written by SaveSnapshot.
var SnapshotKeys = []string{
	KeyMasterList,
	KeyCurrentIndex,
	KeyFilters,
	KeyHideAnswer,
	KeyQuestionLimit,
	KeySessionTimeRemaining,
	KeyStopwatchTime,
	KeySessionAttempts,
	KeySessionTimerEnabled,
	KeyQuestionTimerEnabled,
	KeyStopwatchEnabled,
	KeySessionTimeLimit,
	KeyQuestionTimeLimit,
	KeyScramble,
	KeyRunID,
}

// Snapshot is the persisted form of a run in progress.
type Snapshot struct {
	RunID                string
	MasterList           []string
	CurrentIndex         int
	Filters              filter.Criteria
	HideAnswer           bool
	QuestionLimit        int
	Scramble             bool
	SessionTimeRemaining int
	StopwatchTime        int
	Attempts             []attemptEntry
	Timers               timer.Config
}

// attemptEntry encodes as a two-element [question_id, attempt] array.
type attemptEntry struct {
	ID    string
	Value SessionAttempt
}

func (a attemptEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{a.ID, a.Value})
}

func (a *attemptEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("attempt entry: want 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &a.ID); err != nil {
		return fmt.Errorf("attempt entry id: %w", err)
	}
	return json.Unmarshal(raw[1], &a.Value)
}

func (s *Snapshot) entries() map[string]any {
	return map[string]any{
		KeyMasterList:           s.MasterList,
		KeyCurrentIndex:         s.CurrentIndex,
		KeyFilters:              s.Filters,
		KeyHideAnswer:           s.HideAnswer,
		KeyQuestionLimit:        s.QuestionLimit,
		KeySessionTimeRemaining: s.SessionTimeRemaining,
		KeyStopwatchTime:        s.StopwatchTime,
		KeySessionAttempts:      s.Attempts,
		KeySessionTimerEnabled:  s.Timers.SessionEnabled,
		KeyQuestionTimerEnabled: s.Timers.QuestionEnabled,
		KeyStopwatchEnabled:     s.Timers.StopwatchEnabled,
		KeySessionTimeLimit:     s.Timers.SessionMinutes,
		KeyQuestionTimeLimit:    s.Timers.QuestionSeconds,
		KeyScramble:             s.Scramble,
		KeyRunID:                s.RunID,
	}
}

// snapshot captures the current run.
func (e *Engine) snapshot() *Snapshot {
	st := e.state
	snap := &Snapshot{
		RunID:                st.RunID,
		MasterList:           quiz.IDs(st.MasterList),
		CurrentIndex:         st.CurrentIndex,
		Filters:              st.Settings.Filters,
		HideAnswer:           st.Settings.HideAnswer,
		QuestionLimit:        st.Settings.QuestionLimit,
		Scramble:             st.Settings.Scramble,
		SessionTimeRemaining: st.Timers.Session.Remaining(),
		StopwatchTime:        st.Timers.Stopwatch.Elapsed(),
		Timers:               st.Settings.Timers,
		Attempts:             []attemptEntry{},
	}
	// Master-list order keeps the encoding stable.
	for _, q := range st.MasterList {
		if sa, ok := st.Attempts[q.QuestionID]; ok {
			snap.Attempts = append(snap.Attempts, attemptEntry{ID: q.QuestionID, Value: sa})
		}
	}
	return snap
}

// SaveSnapshot writes the run in progress in one transaction. It is a
// no-op unless a run is active.
func (e *Engine) SaveSnapshot(ctx context.Context) error {
	if e.state.Phase != PhaseRunning {
		return nil
	}
	return e.kv.PutMany(ctx, e.snapshot().entries())
}

// ClearSnapshot removes every active-session key.
func ClearSnapshot(ctx context.Context, kv StateStore) error {
	return kv.BulkDelete(ctx, SnapshotKeys)
}

// HasSnapshot reports whether a run in progress is stored.
func HasSnapshot(ctx context.Context, kv StateStore) (bool, error) {
	var ids []string
	return kv.Get(ctx, KeyMasterList, &ids)
}

// LoadSnapshot reads the stored snapshot. It returns nil when none exists.
func LoadSnapshot(ctx context.Context, kv StateStore) (*Snapshot, error) {
	snap := &Snapshot{CurrentIndex: -1, Timers: timer.DefaultConfig()}
	ok, err := kv.Get(ctx, KeyMasterList, &snap.MasterList)
	if err != nil || !ok {
		return nil, err
	}

	fields := []struct {
		key string
		dst any
	}{
		{KeyCurrentIndex, &snap.CurrentIndex},
		{KeyFilters, &snap.Filters},
		{KeyHideAnswer, &snap.HideAnswer},
		{KeyQuestionLimit, &snap.QuestionLimit},
		{KeySessionTimeRemaining, &snap.SessionTimeRemaining},
		{KeyStopwatchTime, &snap.StopwatchTime},
		{KeySessionAttempts, &snap.Attempts},
		{KeySessionTimerEnabled, &snap.Timers.SessionEnabled},
		{KeyQuestionTimerEnabled, &snap.Timers.QuestionEnabled},
		{KeyStopwatchEnabled, &snap.Timers.StopwatchEnabled},
		{KeySessionTimeLimit, &snap.Timers.SessionMinutes},
		{KeyQuestionTimeLimit, &snap.Timers.QuestionSeconds},
		{KeyScramble, &snap.Scramble},
		{KeyRunID, &snap.RunID},
	}
	for _, f := range fields {
		if _, err := kv.Get(ctx, f.key, f.dst); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// validate checks a snapshot against the bank and resolves its questions.
func (s *Snapshot) validate(bank *quiz.Bank) ([]*quiz.Question, error) {
	if len(s.MasterList) == 0 {
		return nil, fmt.Errorf("%w: empty question list", ErrRestoreInvalid)
	}
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.MasterList) {
		return nil, fmt.Errorf("%w: index %d out of range for %d questions", ErrRestoreInvalid, s.CurrentIndex, len(s.MasterList))
	}
	if s.QuestionLimit > 0 && s.CurrentIndex >= s.QuestionLimit {
		return nil, fmt.Errorf("%w: index %d beyond question limit %d", ErrRestoreInvalid, s.CurrentIndex, s.QuestionLimit)
	}
	qs, ok := bank.Resolve(s.MasterList)
	if !ok {
		return nil, fmt.Errorf("%w: questions no longer in the bank", ErrRestoreInvalid)
	}
	for _, a := range s.Attempts {
		if bank.Question(a.ID) == nil {
			return nil, fmt.Errorf("%w: attempt for unknown question %s", ErrRestoreInvalid, a.ID)
		}
	}
	return qs, nil
}

// Restore resumes a stored run. It returns nil when there is nothing to
// resume. An invalid or unreadable snapshot is discarded with a warning
// and the engine stays idle.
func (e *Engine) Restore(ctx context.Context) *QuestionView {
	snap, err := LoadSnapshot(ctx, e.kv)
	if err != nil {
		e.warnf("read saved session: %v", err)
		e.discardSnapshot(ctx)
		return nil
	}
	if snap == nil {
		return nil
	}

	master, err := snap.validate(e.bank)
	if err != nil {
		e.warnf("abandoning saved session: %v", err)
		e.discardSnapshot(ctx)
		return nil
	}

	st := newIdleState()
	st.Phase = PhaseRunning
	st.RunID = snap.RunID
	st.MasterList = master
	st.Settings = Settings{
		Filters:       snap.Filters,
		QuestionLimit: snap.QuestionLimit,
		HideAnswer:    snap.HideAnswer,
		Scramble:      snap.Scramble,
		Timers:        snap.Timers.Normalized(),
	}
	for _, a := range snap.Attempts {
		st.Attempts[a.ID] = a.Value
	}
	st.Timers = timer.NewSet(st.Settings.Timers)
	if snap.SessionTimeRemaining > 0 {
		st.Timers.Session.SetRemaining(snap.SessionTimeRemaining)
	}
	st.Timers.Stopwatch.SetElapsed(snap.StopwatchTime)

	e.state = st
	st.Timers.Session.Start()
	st.Timers.Stopwatch.Start()
	e.land(snap.CurrentIndex)
	return e.View()
}

func (e *Engine) discardSnapshot(ctx context.Context) {
	if err := ClearSnapshot(ctx, e.kv); err != nil {
		e.warnf("clear saved session: %v", err)
	}
}
