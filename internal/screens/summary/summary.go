package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mbeprep/internal/review"
	"github.com/abhisek/mbeprep/internal/router"
	"github.com/abhisek/mbeprep/internal/screen"
	"github.com/abhisek/mbeprep/internal/ui/layout"
	"github.com/abhisek/mbeprep/internal/ui/theme"
)

// StatusMsg shows a one-line message under the score, e.g. why a
// restart failed.
type StatusMsg struct {
	Text string
}

// SummaryScreen displays the review of a finished run.
type SummaryScreen struct {
	review  *review.SessionReview
	restart func() tea.Cmd
	offset  int
	status  string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. restart, when non-nil, starts another run
// with the same settings.
func New(rev *review.SessionReview, restart func() tea.Cmd) *SummaryScreen {
	return &SummaryScreen{review: rev, restart: restart}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Run Review"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Scroll"}}
	if s.restart != nil {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Same filters again"})
	}
	return append(hints, layout.KeyHint{Key: "Enter", Description: "Home"})
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if sm, ok := msg.(StatusMsg); ok {
		s.status = sm.Text
		s.offset = 0
		return s, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if s.offset > 0 {
			s.offset--
		}
	case "down", "j":
		s.offset++
	case "pgdown", "space":
		s.offset += 10
	case "pgup":
		s.offset = max(s.offset-10, 0)
	case "r", "R":
		if s.restart != nil {
			s.status = ""
			return s, s.restart()
		}
	case "enter", "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	rev := s.review
	if rev == nil {
		return ""
	}

	lines := strings.Split(s.render(width), "\n")
	if s.offset > len(lines)-height {
		s.offset = max(len(lines)-height, 0)
	}
	end := min(s.offset+height, len(lines))
	return strings.Join(lines[s.offset:end], "\n")
}

func (s *SummaryScreen) render(width int) string {
	rev := s.review
	cw := min(width-6, 100)
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render("Run complete!"))
	b.WriteString("\n\n")

	if rev.Answered == 0 {
		b.WriteString(center(width, theme.Muted.Render("No questions were answered in this run.")))
	} else {
		b.WriteString(center(width, theme.Body.Render(rev.SummaryLine())))
	}
	if s.status != "" {
		b.WriteString("\n\n" + center(width, lipgloss.NewStyle().Foreground(theme.Accent).Render(s.status)))
	}
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(cw, 0)))
	for _, item := range rev.Items {
		b.WriteString("  " + divider + "\n")
		b.WriteString(renderItem(item, cw))
	}
	return b.String()
}

func renderItem(item review.Item, width int) string {
	var b strings.Builder
	verdict := verdictStyle(item.Verdict).Render(item.Verdict.String())
	fmt.Fprintf(&b, "  %s  %s\n", theme.Muted.Render(fmt.Sprintf("%d.", item.Number)), verdict)
	b.WriteString(wrap(theme.Body, item.Preview, width))

	if item.Attempted() {
		chosen := item.Chosen
		if chosen == "" {
			chosen = "none"
		}
		line := fmt.Sprintf("Your answer: %s", chosen)
		if item.CorrectChoice != "" {
			line += fmt.Sprintf("   Correct: %s) %s", item.CorrectChoice, item.CorrectText)
		}
		line += fmt.Sprintf("   Time: %.1fs", item.TimeSpent)
		b.WriteString(wrap(theme.Muted, line, width))
		if item.Explanation != "" {
			b.WriteString(wrap(theme.Hint, item.Explanation, width))
		}
		if item.Notes != "" {
			b.WriteString(wrap(theme.Muted, "Notes: "+item.Notes, width))
		}
	}
	return b.String()
}

func verdictStyle(v review.Verdict) lipgloss.Style {
	switch v {
	case review.VerdictCorrect:
		return theme.Correct
	case review.VerdictIncorrect, review.VerdictTimedOut:
		return theme.Incorrect
	default:
		return theme.Muted
	}
}

func wrap(style lipgloss.Style, text string, width int) string {
	rendered := style.Width(max(width, 10)).Render(text)
	var b strings.Builder
	for _, l := range strings.Split(rendered, "\n") {
		b.WriteString("    " + l + "\n")
	}
	return b.String()
}

func center(width int, s string) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
