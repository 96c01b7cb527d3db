package session

import (
	"errors"
	"time"

	"github.com/abhisek/mbeprep/internal/filter"
	"github.com/abhisek/mbeprep/internal/quiz"
	"github.com/abhisek/mbeprep/internal/review"
	"github.com/abhisek/mbeprep/internal/timer"
)

var (
	ErrNotRunning      = errors.New("no quiz is running")
	ErrAlreadyAnswered = errors.New("question already answered in this session")
	ErrNotAnswered     = errors.New("question not answered in this session")
	ErrNoChoice        = errors.New("select an answer before submitting")
	ErrInvalidChoice   = errors.New("choice is not offered by this question")
	ErrNoPrevious      = errors.New("already at the first question")
	ErrRestoreInvalid  = errors.New("saved session is invalid")
)

// TimeoutNote is recorded on attempts auto-submitted with no selection.
const TimeoutNote = "Auto-submitted due to time limit"

// Phase is the lifecycle state of a run.
type Phase int

const (
	PhaseIdle     Phase = iota // No active run
	PhaseRunning               // Serving questions
	PhaseComplete              // Run finished, review available
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseComplete:
		return "complete"
	default:
		return "idle"
	}
}

// Settings are the user-chosen options for a run. They are persisted as
// userQuizSettings and restored at the next launch.
type Settings struct {
	Filters       filter.Criteria `json:"filters"`
	QuestionLimit int             `json:"questionLimit"`
	HideAnswer    bool            `json:"hideAnswerMode"`
	Scramble      bool            `json:"scramble"`
	Timers        timer.Config    `json:"timers"`
}

// DefaultSettings returns unfiltered, unlimited runs with default timers.
func DefaultSettings() Settings {
	return Settings{Timers: timer.DefaultConfig()}
}

// SessionAttempt is an answer given during the current run.
type SessionAttempt struct {
	QuestionID string       `json:"question_id"`
	Attempt    quiz.Attempt `json:"attempt"`
}

// SessionState is the full mutable state of a run. It holds no rendering
// state; the presentation layer reads it through QuestionView.
type SessionState struct {
	// Phase is the current lifecycle state.
	Phase Phase

	// RunID identifies the run across snapshot and restore.
	RunID string

	// MasterList is the ordered run, fixed once the run starts. Entries
	// are the canonical questions from the bank.
	MasterList []*quiz.Question

	// CurrentIndex is the cursor into MasterList, -1 before the first advance.
	CurrentIndex int

	// Attempts indexes answers given this run by question id.
	Attempts map[string]SessionAttempt

	// Settings captured at run start.
	Settings Settings

	// Timers are the run clocks.
	Timers *timer.Set

	// QuestionStart is when the current question was displayed.
	QuestionStart time.Time

	// PausedAt is when Quit parked the run, zero while it is live.
	PausedAt time.Time

	// Selected is the pending, unsubmitted choice for the current question.
	Selected string

	// DraftNotes is the notes text being edited for the current question.
	DraftNotes string

	// Revealed marks answered questions whose feedback was requested in
	// hide-answer mode.
	Revealed map[string]bool

	// Review is set when the run completes.
	Review *review.SessionReview
}

func newIdleState() *SessionState {
	return &SessionState{
		Phase:        PhaseIdle,
		CurrentIndex: -1,
		Attempts:     make(map[string]SessionAttempt),
		Revealed:     make(map[string]bool),
		Settings:     DefaultSettings(),
		Timers:       timer.NewSet(timer.DefaultConfig()),
	}
}

// Current returns the question under the cursor, or nil.
func (s *SessionState) Current() *quiz.Question {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.MasterList) {
		return nil
	}
	return s.MasterList[s.CurrentIndex]
}

// Answered reports whether q has an attempt in this run.
func (s *SessionState) Answered(id string) bool {
	_, ok := s.Attempts[id]
	return ok
}

// Score returns the session-only correct and answered counts.
func (s *SessionState) Score() (correct, answered int) {
	for _, q := range s.MasterList {
		sa, ok := s.Attempts[q.QuestionID]
		if !ok {
			continue
		}
		answered++
		if sa.Attempt.IsCorrect(q.CorrectChoice()) {
			correct++
		}
	}
	return correct, answered
}

// attemptMap flattens session attempts for the review.
func (s *SessionState) attemptMap() map[string]quiz.Attempt {
	out := make(map[string]quiz.Attempt, len(s.Attempts))
	for id, sa := range s.Attempts {
		out[id] = sa.Attempt
	}
	return out
}

// QuestionView is everything needed to render the current question.
type QuestionView struct {
	Index    int
	Total    int
	Question *quiz.Question
	Group    *quiz.Group

	// Selected is the pending choice, or the submitted one once answered.
	Selected string

	// Attempt is this run's attempt, nil until answered.
	Attempt *quiz.Attempt

	// ShowFeedback is true once answered, unless hide-answer mode defers
	// it until revealed.
	ShowFeedback bool
	Correct      bool

	CanRetreat bool
	HideAnswer bool
}

// Answered reports whether the view's question has been submitted.
func (v *QuestionView) Answered() bool {
	return v.Attempt != nil
}
