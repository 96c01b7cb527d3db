package stats

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mbeprep/internal/review"
	"github.com/abhisek/mbeprep/internal/screen"
	st "github.com/abhisek/mbeprep/internal/stats"
	"github.com/abhisek/mbeprep/internal/timer"
	"github.com/abhisek/mbeprep/internal/ui/components"
	"github.com/abhisek/mbeprep/internal/ui/layout"
	"github.com/abhisek/mbeprep/internal/ui/theme"
)

// StatsScreen shows performance across the whole bank.
type StatsScreen struct {
	report *st.Report
	last   *review.SessionReview
	total  int
	offset int
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)

// New creates a StatsScreen. last is the most recent finished run in this
// process, or nil. total is the number of questions in the bank.
func New(report *st.Report, last *review.SessionReview, total int) *StatsScreen {
	return &StatsScreen{report: report, last: last, total: total}
}

func (s *StatsScreen) Init() tea.Cmd {
	return nil
}

func (s *StatsScreen) Title() string {
	return "Performance"
}

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			s.offset++
		}
	}
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	lines := strings.Split(s.render(width), "\n")
	if s.offset > len(lines)-height {
		s.offset = max(len(lines)-height, 0)
	}
	end := min(s.offset+height, len(lines))
	return strings.Join(lines[s.offset:end], "\n")
}

func (s *StatsScreen) render(width int) string {
	r := s.report
	var b strings.Builder

	b.WriteString(section("Overall"))
	if r == nil || r.Attempted == 0 {
		b.WriteString("  " + theme.Muted.Render("No attempts yet. Finish a few questions to see statistics.") + "\n")
		return b.String()
	}

	row(&b, "Questions in bank", fmt.Sprintf("%d", s.total))
	row(&b, "Questions attempted", fmt.Sprintf("%d", r.Attempted))
	row(&b, "Correct (last attempt)", fmt.Sprintf("%d", r.Correct))
	row(&b, "Incorrect (last attempt)", fmt.Sprintf("%d", r.Incorrect))
	row(&b, "Accuracy", fmt.Sprintf("%.1f%%", r.Accuracy()))
	row(&b, "Total attempts", fmt.Sprintf("%d", r.TotalAttempts))
	row(&b, "Average time per attempt", timer.Format(int(r.AvgTime()+0.5)))
	row(&b, "Questions with notes", fmt.Sprintf("%d", r.WithNotes))

	if s.last != nil && s.last.Answered > 0 {
		b.WriteString(section("Last run"))
		b.WriteString("  " + theme.Body.Render(s.last.SummaryLine()) + "\n")
	}

	barWidth := min(width-50, 40)
	b.WriteString(section("By category"))
	for _, c := range r.Categories {
		bucket(&b, c.Bucket, "", barWidth)
		for _, sub := range c.SubCategories {
			bucket(&b, sub, "  ", barWidth)
		}
	}

	b.WriteString(section("By provider"))
	for _, p := range r.Providers {
		bucket(&b, p, "", barWidth)
	}

	b.WriteString(section("By year"))
	for _, y := range r.Years {
		bucket(&b, y, "", barWidth)
	}
	return b.String()
}

func section(title string) string {
	return "\n  " + lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(title) + "\n"
}

func row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "  %s %s\n",
		theme.Muted.Render(fmt.Sprintf("%-26s", label)),
		theme.Body.Render(value))
}

func bucket(b *strings.Builder, bk st.Bucket, indent string, barWidth int) {
	name := indent + bk.Name
	if len(name) > 28 {
		name = name[:25] + "..."
	}
	line := fmt.Sprintf("  %-28s %3d/%-3d", name, bk.CorrectLastAttempts, bk.TotalLastAttempts)
	if barWidth >= 10 {
		bar := components.NewProgressBar("", bk.Accuracy()/100, true, barWidth)
		line += "  " + bar.View()
	} else {
		line += fmt.Sprintf("  %5.1f%%", bk.Accuracy())
	}
	line += theme.Muted.Render(fmt.Sprintf("  avg %s", timer.Format(int(bk.AvgTime()+0.5))))
	b.WriteString(line + "\n")
}
