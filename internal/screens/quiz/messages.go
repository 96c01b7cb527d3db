package quiz

import "time"

// tickMsg is sent every second to drive the run clocks.
type tickMsg time.Time

// runCompleteMsg is sent once the engine reports the run finished.
type runCompleteMsg struct{}
