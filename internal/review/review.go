// Package review builds read-only projections of quiz data: the end of
// run summary and the full backup export.
package review

import (
	"fmt"
	"strings"

	"github.com/abhisek/mbeprep/internal/bankfile"
	"github.com/abhisek/mbeprep/internal/quiz"
)

// PreviewLength is the number of characters of question text shown per
// review item.
const PreviewLength = 150

// Verdict classifies a review item.
type Verdict int

const (
	VerdictNotAttempted Verdict = iota
	VerdictCorrect
	VerdictIncorrect
	VerdictTimedOut
)

func (v Verdict) String() string {
	switch v {
	case VerdictCorrect:
		return "Correct"
	case VerdictIncorrect:
		return "Incorrect"
	case VerdictTimedOut:
		return "No answer (time up)"
	default:
		return "Not attempted this session"
	}
}

// Item is one question in the session review.
type Item struct {
	Number        int
	QuestionID    string
	Preview       string
	Verdict       Verdict
	Chosen        string
	CorrectChoice string
	CorrectText   string
	Explanation   string
	Notes         string
	TimeSpent     float64
}

// Attempted reports whether the item was answered this run.
func (i Item) Attempted() bool {
	return i.Verdict != VerdictNotAttempted
}

// SessionReview summarizes a finished run.
type SessionReview struct {
	Items    []Item
	Correct  int
	Answered int
	Total    int

	// HideAnswer records whether the run deferred feedback.
	HideAnswer bool
}

// Accuracy returns the session accuracy as a percentage of answered
// questions, or 0 when nothing was answered.
func (r *SessionReview) Accuracy() float64 {
	if r.Answered == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Answered) * 100
}

// SummaryLine is the aggregate accuracy line.
func (r *SessionReview) SummaryLine() string {
	return fmt.Sprintf("Session accuracy: %d/%d correct (%.1f%%), %d of %d questions answered",
		r.Correct, r.Answered, r.Accuracy(), r.Answered, r.Total)
}

// Build reviews master against the attempts given this run, keyed by
// question id.
func Build(master []*quiz.Question, attempts map[string]quiz.Attempt, hideAnswer bool) *SessionReview {
	r := &SessionReview{Total: len(master), HideAnswer: hideAnswer}
	for i, q := range master {
		item := Item{
			Number:        i + 1,
			QuestionID:    q.QuestionID,
			Preview:       Preview(q.QuestionText),
			CorrectChoice: q.CorrectChoice(),
		}
		if item.CorrectChoice != "" {
			item.CorrectText = q.Choices[item.CorrectChoice]
		}
		if q.Answer != nil {
			item.Explanation = q.Answer.Explanation
		}

		if a, ok := attempts[q.QuestionID]; ok {
			r.Answered++
			item.Chosen = a.Choice()
			item.Notes = a.Notes
			item.TimeSpent = a.TimeSpentSeconds
			switch {
			case !a.Answered():
				item.Verdict = VerdictTimedOut
			case a.IsCorrect(item.CorrectChoice):
				item.Verdict = VerdictCorrect
				r.Correct++
			default:
				item.Verdict = VerdictIncorrect
			}
		}
		r.Items = append(r.Items, item)
	}
	return r
}

// Preview shortens text to PreviewLength runes, adding an ellipsis when cut.
func Preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= PreviewLength {
		return text
	}
	return string(runes[:PreviewLength]) + "..."
}

// FullExport copies the whole bank, including every attempt, into an
// export file. The copy shares nothing with the bank.
func FullExport(bank *quiz.Bank) *bankfile.File {
	f := &bankfile.File{
		Questions: make([]*quiz.Question, 0, bank.Len()),
		Groups:    make([]*quiz.Group, 0, len(bank.Groups())),
	}
	for _, q := range bank.Questions() {
		f.Questions = append(f.Questions, q.Clone())
	}
	for _, g := range bank.Groups() {
		f.Groups = append(f.Groups, g.Clone())
	}
	return f
}
