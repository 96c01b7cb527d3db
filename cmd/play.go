package cmd

import (
	"fmt"

	"github.com/abhisek/mbeprep/internal/filter"
	"github.com/abhisek/mbeprep/internal/session"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start or resume a practice quiz",
	Long: "Start or resume a practice quiz. Filter and timer flags override the\n" +
		"saved settings and are saved again when a new run starts.",
	Example: `  mbeprep play --category Torts:Negligence --category Contracts --limit 20
  mbeprep play --attempts incorrect --scramble --question-seconds 108`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func init() {
	addQuizFlags(playCmd)
}

func addQuizFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("fresh", false, "Discard any saved run instead of resuming it")
	f.StringSlice("category", nil, "Category filter as Category or Category:Subcategory (repeatable)")
	f.StringSlice("provider", nil, "Only questions from these providers (repeatable)")
	f.String("attempts", "", "Attempt filter: all, attempted, unattempted, incorrect, incorrect_only")
	f.String("notes", "", "Notes filter: all, with-notes, without-notes")
	f.Int("limit", 0, "Maximum questions per run (0 for all)")
	f.Bool("hide-answer", false, "Hide feedback until the run ends")
	f.Bool("scramble", false, "Shuffle questions (grouped questions stay together)")
	f.Int("session-minutes", 0, "Run time limit in minutes (0 disables)")
	f.Int("question-seconds", 0, "Per-question time limit in seconds (0 disables)")
	f.Bool("stopwatch", true, "Show the elapsed time stopwatch")
}

// applyQuizFlags overlays explicitly set flags onto s.
func applyQuizFlags(cmd *cobra.Command, s *session.Settings) error {
	f := cmd.Flags()

	if f.Changed("category") {
		specs, _ := f.GetStringSlice("category")
		s.Filters.Categories = filter.ParseCategories(specs)
	}
	if f.Changed("provider") {
		s.Filters.Providers, _ = f.GetStringSlice("provider")
	}
	if f.Changed("attempts") {
		v, _ := f.GetString("attempts")
		a := filter.AttemptsFilter(v)
		switch a {
		case filter.AttemptsAll, filter.AttemptsAttempted, filter.AttemptsUnattempted,
			filter.AttemptsIncorrect, filter.AttemptsIncorrectOnly:
			s.Filters.Attempts = a
		default:
			return fmt.Errorf("invalid --attempts %q", v)
		}
	}
	if f.Changed("notes") {
		v, _ := f.GetString("notes")
		n := filter.NotesFilter(v)
		switch n {
		case filter.NotesAll, filter.NotesWith, filter.NotesWithout:
			s.Filters.Notes = n
		default:
			return fmt.Errorf("invalid --notes %q", v)
		}
	}
	if f.Changed("limit") {
		limit, _ := f.GetInt("limit")
		if limit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}
		s.QuestionLimit = limit
	}
	if f.Changed("hide-answer") {
		s.HideAnswer, _ = f.GetBool("hide-answer")
	}
	if f.Changed("scramble") {
		s.Scramble, _ = f.GetBool("scramble")
	}
	if f.Changed("session-minutes") {
		m, _ := f.GetInt("session-minutes")
		s.Timers.SessionEnabled = m > 0
		if m > 0 {
			s.Timers.SessionMinutes = m
		}
	}
	if f.Changed("question-seconds") {
		secs, _ := f.GetInt("question-seconds")
		s.Timers.QuestionEnabled = secs > 0
		if secs > 0 {
			s.Timers.QuestionSeconds = secs
		}
	}
	if f.Changed("stopwatch") {
		s.Timers.StopwatchEnabled, _ = f.GetBool("stopwatch")
	}
	return nil
}
