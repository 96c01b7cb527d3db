// Package timer implements the quiz clocks: a session countdown, a
// per-question countdown and a cumulative stopwatch. Clocks advance only
// when Tick is called, once per second, so tests drive them directly.
package timer

import "fmt"

// Level is the visual escalation state of a countdown.
type Level int

const (
	LevelNormal Level = iota
	LevelWarning
	LevelDanger
	LevelFlashing
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelDanger:
		return "danger"
	case LevelFlashing:
		return "flashing"
	default:
		return "normal"
	}
}

// Thresholds are remaining-second cutoffs for each escalation level.
type Thresholds struct {
	Warning  int
	Danger   int
	Flashing int
}

var (
	// SessionThresholds escalate at 5 minutes, 1 minute and 10 seconds.
	SessionThresholds = Thresholds{Warning: 300, Danger: 60, Flashing: 10}

	// QuestionThresholds escalate at 30, 10 and 5 seconds.
	QuestionThresholds = Thresholds{Warning: 30, Danger: 10, Flashing: 5}
)

// Countdown counts down from Limit seconds to zero.
type Countdown struct {
	enabled    bool
	limit      int
	remaining  int
	running    bool
	thresholds Thresholds
}

// NewCountdown creates a stopped countdown with remaining set to limit.
func NewCountdown(enabled bool, limit int, th Thresholds) *Countdown {
	if limit < 0 {
		limit = 0
	}
	return &Countdown{enabled: enabled, limit: limit, remaining: limit, thresholds: th}
}

// Enabled reports whether the countdown participates at all.
func (c *Countdown) Enabled() bool { return c.enabled }

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int { return c.remaining }

// Running reports whether Tick currently decrements.
func (c *Countdown) Running() bool { return c.running }

// Reset restores the full limit without changing the running state.
func (c *Countdown) Reset() { c.remaining = c.limit }

// SetRemaining overrides the remaining time, clamped to [0, limit].
func (c *Countdown) SetRemaining(sec int) {
	c.remaining = max(0, min(sec, c.limit))
}

// Start resumes ticking. It is a no-op when disabled or already expired.
func (c *Countdown) Start() {
	if c.enabled && c.remaining > 0 {
		c.running = true
	}
}

// Pause stops ticking.
func (c *Countdown) Pause() { c.running = false }

// Tick decrements one second. It reports true exactly once, on the tick
// that reaches zero, and stops the countdown.
func (c *Countdown) Tick() bool {
	if !c.running {
		return false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.running = false
		return true
	}
	return false
}

// Expired reports whether an enabled countdown has reached zero.
func (c *Countdown) Expired() bool {
	return c.enabled && c.remaining == 0
}

// Level returns the escalation level for the remaining time.
func (c *Countdown) Level() Level {
	if !c.enabled {
		return LevelNormal
	}
	switch {
	case c.remaining <= c.thresholds.Flashing:
		return LevelFlashing
	case c.remaining <= c.thresholds.Danger:
		return LevelDanger
	case c.remaining <= c.thresholds.Warning:
		return LevelWarning
	default:
		return LevelNormal
	}
}

// Stopwatch counts up, cumulative across a run.
type Stopwatch struct {
	enabled bool
	elapsed int
	running bool
}

// NewStopwatch creates a stopped stopwatch at zero.
func NewStopwatch(enabled bool) *Stopwatch {
	return &Stopwatch{enabled: enabled}
}

func (s *Stopwatch) Enabled() bool { return s.enabled }
func (s *Stopwatch) Elapsed() int  { return s.elapsed }
func (s *Stopwatch) Running() bool { return s.running }

// SetElapsed overrides the elapsed time, used on restore.
func (s *Stopwatch) SetElapsed(sec int) { s.elapsed = max(0, sec) }

// Reset sets elapsed back to zero.
func (s *Stopwatch) Reset() { s.elapsed = 0 }

// Start resumes counting when enabled.
func (s *Stopwatch) Start() {
	if s.enabled {
		s.running = true
	}
}

// Pause stops counting.
func (s *Stopwatch) Pause() { s.running = false }

// Tick adds one second while running.
func (s *Stopwatch) Tick() {
	if s.running {
		s.elapsed++
	}
}

// Format renders seconds as MM:SS. Negative values render as 00:00.
func Format(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}
