package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mbeprep/internal/session"
	"github.com/abhisek/mbeprep/internal/timer"
	"github.com/abhisek/mbeprep/internal/ui/components"
	"github.com/abhisek/mbeprep/internal/ui/theme"
)

// Status renders the enabled clocks for the header.
func (s *QuizScreen) Status() string {
	t := s.engine.State().Timers
	if t == nil {
		return ""
	}
	var parts []string
	if t.Session.Enabled() {
		parts = append(parts, levelStyle(t.Session.Level()).Render("Run "+timer.Format(t.Session.Remaining())))
	}
	if t.Question.Enabled() {
		parts = append(parts, levelStyle(t.Question.Level()).Render("Q "+timer.Format(t.Question.Remaining())))
	}
	if t.Stopwatch.Enabled() {
		parts = append(parts, theme.Muted.Render("⏱ "+timer.Format(t.Stopwatch.Elapsed())))
	}
	return strings.Join(parts, "  ")
}

func levelStyle(l timer.Level) lipgloss.Style {
	switch l {
	case timer.LevelWarning:
		return theme.TimerWarning
	case timer.LevelDanger:
		return theme.TimerDanger
	case timer.LevelFlashing:
		return theme.TimerFlash
	default:
		return theme.TimerNormal
	}
}

func (s *QuizScreen) View(width, height int) string {
	if s.confirmQuit {
		return renderQuitConfirm(width, height)
	}
	if s.view == nil {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  Finishing run...")
	}

	v := s.view
	q := v.Question
	cw := min(width-4, 100)
	var b strings.Builder

	// Progress and source line.
	bar := components.NewProgressBar("", float64(v.Index+1)/float64(max(v.Total, 1)), false, min(cw, 40))
	b.WriteString("  " + bar.View() + "  " + theme.Muted.Render(sourceLine(v)))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	if v.Group != nil {
		passage := strings.TrimSpace(strings.Join([]string{v.Group.IntroText, v.Group.Text}, "\n\n"))
		if passage != "" {
			b.WriteString(indent(theme.Passage.Width(cw).Render(passage)))
			b.WriteString("\n\n")
		}
	}

	b.WriteString(indent(lipgloss.NewStyle().Width(cw).Foreground(theme.Text).Bold(true).Render(q.QuestionText)))
	b.WriteString("\n\n")

	choices := components.ChoiceList{
		Keys:     q.SortedChoiceKeys(),
		Text:     q.Choices,
		Selected: v.Selected,
		Correct:  q.CorrectChoice(),
		Reveal:   v.ShowFeedback,
		Width:    cw,
	}
	b.WriteString(indent(choices.View()))

	if v.Answered() {
		b.WriteString("\n")
		b.WriteString(indent(renderFeedback(v, cw)))
	}

	if s.notes.Focused() {
		b.WriteString("\n" + indent(theme.Hint.Render("Notes:")) + "\n")
		b.WriteString(indent(s.notes.View()))
	} else if notes := s.currentNotes(); notes != "" {
		b.WriteString("\n" + indent(theme.Hint.Render("Notes: "+notes)))
	}

	if s.status != "" {
		b.WriteString("\n\n" + indent(lipgloss.NewStyle().Foreground(theme.Accent).Render(s.status)))
	}
	return b.String()
}

func renderFeedback(v *session.QuestionView, width int) string {
	if !v.ShowFeedback {
		return theme.Hint.Render("Answer recorded. Feedback is hidden until the review (R to show).")
	}

	q := v.Question
	var b strings.Builder
	switch {
	case !v.Attempt.Answered():
		b.WriteString(theme.Incorrect.Render("Time's up, no answer recorded."))
	case v.Correct:
		b.WriteString(theme.Correct.Render("Correct!"))
	default:
		b.WriteString(theme.Incorrect.Render("Incorrect."))
	}
	if c := q.CorrectChoice(); c != "" && !v.Correct {
		b.WriteString(theme.Muted.Render(fmt.Sprintf("  Correct answer: %s) %s", c, q.Choices[c])))
	}
	b.WriteString("\n")
	if q.Answer != nil && q.Answer.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Foreground(theme.Text).Render(q.Answer.Explanation))
		b.WriteString("\n")
	}
	return b.String()
}

func renderQuitConfirm(width, height int) string {
	box := theme.Card.Render(
		theme.Title.Render("Leave this run?") + "\n\n" +
			theme.Body.Render("Y  save and resume later") + "\n" +
			theme.Body.Render("A  abandon the run") + "\n" +
			theme.Body.Render("N  keep going"),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// sourceLine describes where the question comes from.
func sourceLine(v *session.QuestionView) string {
	q := v.Question
	parts := []string{q.Category}
	if q.SubCategory != "" {
		parts = append(parts, q.SubCategory)
	}
	if src := q.Source; src != nil {
		if src.Provider != "" {
			parts = append(parts, src.Provider)
		}
		if src.Year != "" {
			parts = append(parts, src.Year.String())
		}
	}
	return strings.Join(parts, " · ")
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}
