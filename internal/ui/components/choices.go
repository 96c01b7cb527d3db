package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mbeprep/internal/ui/theme"
)

// ChoiceList renders lettered answer choices. Once Reveal is set the
// correct choice is marked green and a wrong pick red.
type ChoiceList struct {
	Keys     []string
	Text     map[string]string
	Selected string
	Correct  string
	Reveal   bool
	Width    int
}

// View renders one line per choice, wrapped to Width.
func (c ChoiceList) View() string {
	var b strings.Builder
	for _, key := range c.Keys {
		prefix := "  "
		if key == c.Selected {
			prefix = "▸ "
		}
		label := fmt.Sprintf("%s%s)  ", prefix, key)
		style := c.style(key)

		body := c.Text[key]
		if c.Width > lipgloss.Width(label)+10 {
			body = lipgloss.NewStyle().Width(c.Width - lipgloss.Width(label)).Render(body)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, style.Render(label), style.Render(body)))
		b.WriteString("\n")
	}
	return b.String()
}

func (c ChoiceList) style(key string) lipgloss.Style {
	switch {
	case c.Reveal && key == c.Correct:
		return theme.Correct
	case c.Reveal && key == c.Selected:
		return theme.Incorrect
	case c.Reveal:
		return theme.Muted
	case key == c.Selected:
		return theme.Selected
	default:
		return theme.Unselected
	}
}
