package timer

// Default limits.
const (
	DefaultSessionMinutes  = 60
	DefaultQuestionSeconds = 90
)

// Config toggles and sizes the three clocks.
type Config struct {
	SessionEnabled   bool `json:"sessionTimerEnabled" yaml:"session_timer_enabled"`
	SessionMinutes   int  `json:"sessionTimeLimit" yaml:"session_minutes"`
	QuestionEnabled  bool `json:"questionTimerEnabled" yaml:"question_timer_enabled"`
	QuestionSeconds  int  `json:"questionTimeLimit" yaml:"question_seconds"`
	StopwatchEnabled bool `json:"stopwatchEnabled" yaml:"stopwatch_enabled"`
}

// DefaultConfig returns countdowns off and the stopwatch on.
func DefaultConfig() Config {
	return Config{
		SessionMinutes:   DefaultSessionMinutes,
		QuestionSeconds:  DefaultQuestionSeconds,
		StopwatchEnabled: true,
	}
}

// Normalized replaces non-positive limits with the defaults.
func (c Config) Normalized() Config {
	if c.SessionMinutes <= 0 {
		c.SessionMinutes = DefaultSessionMinutes
	}
	if c.QuestionSeconds <= 0 {
		c.QuestionSeconds = DefaultQuestionSeconds
	}
	return c
}

// Event reports which countdowns expired on a tick.
type Event struct {
	SessionExpired  bool
	QuestionExpired bool
}

// Set groups the three clocks of a run.
type Set struct {
	Session   *Countdown
	Question  *Countdown
	Stopwatch *Stopwatch
}

// NewSet builds stopped clocks from cfg.
func NewSet(cfg Config) *Set {
	cfg = cfg.Normalized()
	return &Set{
		Session:   NewCountdown(cfg.SessionEnabled, cfg.SessionMinutes*60, SessionThresholds),
		Question:  NewCountdown(cfg.QuestionEnabled, cfg.QuestionSeconds, QuestionThresholds),
		Stopwatch: NewStopwatch(cfg.StopwatchEnabled),
	}
}

// Tick advances every running clock by one second. When the session
// countdown expires all clocks are paused and the question countdown is
// not evaluated on that tick.
func (s *Set) Tick() Event {
	s.Stopwatch.Tick()
	if s.Session.Tick() {
		s.PauseAll()
		return Event{SessionExpired: true}
	}
	return Event{QuestionExpired: s.Question.Tick()}
}

// ResetAll restores every clock to its starting value, stopped.
func (s *Set) ResetAll() {
	s.PauseAll()
	s.Session.Reset()
	s.Question.Reset()
	s.Stopwatch.Reset()
}

// StartAll starts every enabled clock.
func (s *Set) StartAll() {
	s.Session.Start()
	s.Question.Start()
	s.Stopwatch.Start()
}

// PauseAll stops every clock.
func (s *Set) PauseAll() {
	s.Session.Pause()
	s.Question.Pause()
	s.Stopwatch.Pause()
}

// RestartQuestion resets and starts the per-question countdown.
func (s *Set) RestartQuestion() {
	s.Question.Pause()
	s.Question.Reset()
	s.Question.Start()
}
