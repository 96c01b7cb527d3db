// Package filter turns a question bank plus user criteria into an ordered
// quiz run. Group members travel together as one unit through scrambling.
package filter

import (
	"errors"
	"math/rand/v2"
	"slices"

	"github.com/abhisek/mbeprep/internal/quiz"
)

// ErrNoMatch is returned by callers that need to treat an empty selection
// as an error. Select itself never returns it.
var ErrNoMatch = errors.New("no questions matched the selected filters")

// AttemptsFilter restricts questions by their attempt history.
type AttemptsFilter string

const (
	AttemptsAll           AttemptsFilter = "all"
	AttemptsAttempted     AttemptsFilter = "attempted"
	AttemptsUnattempted   AttemptsFilter = "unattempted"
	AttemptsIncorrect     AttemptsFilter = "incorrect"
	AttemptsIncorrectOnly AttemptsFilter = "incorrect_only"
)

// NotesFilter restricts questions by whether any attempt carries notes.
type NotesFilter string

const (
	NotesAll     NotesFilter = "all"
	NotesWith    NotesFilter = "with-notes"
	NotesWithout NotesFilter = "without-notes"
)

// Criteria is the full set of user filters. The zero value passes
// everything.
type Criteria struct {
	Attempts AttemptsFilter `json:"attempts,omitempty"`
	Notes    NotesFilter    `json:"notes,omitempty"`

	// Categories maps a selected main category to the selected
	// subcategories. An empty list selects the whole category. An empty
	// map disables category filtering.
	Categories map[string][]string `json:"categories,omitempty"`

	// Providers lists accepted source providers. Empty passes all.
	Providers []string `json:"providers,omitempty"`
}

// Result is the outcome of Select.
type Result struct {
	Questions []*quiz.Question
	Groups    []*quiz.Group
}

// Empty reports whether no questions matched.
func (r Result) Empty() bool {
	return len(r.Questions) == 0
}

// Select applies c to questions, clusters survivors by group, optionally
// shuffles the units and truncates to limit.
//
// The limit is applied after grouping and shuffling, so a group at the cut
// point can be split. This matches long-standing behavior and is kept.
//
// The returned slices hold the same pointers as the input.
func Select(questions []*quiz.Question, groups []*quiz.Group, c Criteria, limit int, scramble bool) Result {
	return selectWith(questions, groups, c, limit, scramble, rand.Shuffle)
}

// selectWith is Select with an injectable shuffle for tests.
func selectWith(questions []*quiz.Question, groups []*quiz.Group, c Criteria, limit int, scramble bool, shuffle func(n int, swap func(i, j int))) Result {
	var filtered []*quiz.Question
	byID := make(map[string]*quiz.Question)
	for _, q := range questions {
		if c.Match(q) {
			filtered = append(filtered, q)
			byID[q.QuestionID] = q
		}
	}

	units := buildUnits(filtered, byID, groups)
	if scramble {
		shuffle(len(units), func(i, j int) { units[i], units[j] = units[j], units[i] })
	}

	var ordered []*quiz.Question
	for _, u := range units {
		ordered = append(ordered, u...)
	}
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}

	return Result{
		Questions: ordered,
		Groups:    relevantGroups(ordered, groups),
	}
}

// buildUnits walks each group's question order in store order, collecting
// filtered members into one unit per group. Remaining questions become
// singleton units in filtered order.
func buildUnits(filtered []*quiz.Question, byID map[string]*quiz.Question, groups []*quiz.Group) [][]*quiz.Question {
	consumed := make(map[string]bool, len(filtered))
	var units [][]*quiz.Question

	for _, g := range groups {
		var unit []*quiz.Question
		for _, id := range g.QuestionOrder {
			q, ok := byID[id]
			if !ok || consumed[id] {
				continue
			}
			unit = append(unit, q)
			consumed[id] = true
		}
		if len(unit) > 0 {
			units = append(units, unit)
		}
	}

	for _, q := range filtered {
		if !consumed[q.QuestionID] {
			units = append(units, []*quiz.Question{q})
		}
	}
	return units
}

func relevantGroups(qs []*quiz.Question, groups []*quiz.Group) []*quiz.Group {
	used := make(map[string]bool)
	for _, q := range qs {
		if q.GroupID != "" {
			used[q.GroupID] = true
		}
	}
	var out []*quiz.Group
	for _, g := range groups {
		if used[g.GroupID] {
			out = append(out, g)
		}
	}
	return out
}

// Match reports whether q passes every predicate in c.
func (c Criteria) Match(q *quiz.Question) bool {
	return c.matchAttempts(q) && c.matchNotes(q) && c.matchCategory(q) && c.matchProvider(q)
}

func (c Criteria) matchAttempts(q *quiz.Question) bool {
	switch c.Attempts {
	case AttemptsAttempted:
		return len(q.UserAttempts) > 0
	case AttemptsUnattempted:
		return len(q.UserAttempts) == 0
	case AttemptsIncorrect:
		if len(q.UserAttempts) == 0 {
			return false
		}
		correct := q.CorrectChoice()
		for _, a := range q.UserAttempts {
			if !a.IsCorrect(correct) {
				return true
			}
		}
		return false
	case AttemptsIncorrectOnly:
		last := q.LastAttempt()
		return last != nil && last.Answered() && !last.IsCorrect(q.CorrectChoice())
	default:
		return true
	}
}

func (c Criteria) matchNotes(q *quiz.Question) bool {
	switch c.Notes {
	case NotesWith:
		return q.HasNotes()
	case NotesWithout:
		return !q.HasNotes()
	default:
		return true
	}
}

func (c Criteria) matchCategory(q *quiz.Question) bool {
	if len(c.Categories) == 0 {
		return true
	}
	subs, ok := c.Categories[q.Category]
	if !ok {
		return false
	}
	// Questions lacking a subcategory stay in when their category is
	// selected, even with specific subcategories chosen.
	if len(subs) == 0 || q.SubCategory == "" {
		return true
	}
	return slices.Contains(subs, q.SubCategory)
}

func (c Criteria) matchProvider(q *quiz.Question) bool {
	if len(c.Providers) == 0 {
		return true
	}
	return slices.Contains(c.Providers, q.Provider())
}
