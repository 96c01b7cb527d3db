package quiz

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ChoiceKeys lists every choice key a question may carry, in display order.
var ChoiceKeys = []string{"A", "B", "C", "D", "E", "F"}

// Question is one exam item.
type Question struct {
	// QuestionID is the primary key.
	QuestionID string `json:"question_id"`

	// Category and SubCategory form the two-level classification.
	// Both are optional.
	Category    string `json:"category,omitempty"`
	SubCategory string `json:"sub_category,omitempty"`

	// GroupID links the question to a passage cluster, if any.
	GroupID string `json:"group_id,omitempty"`

	QuestionText string `json:"question_text"`

	// Choices maps a choice key ("A".."F") to its text. Keys vary per question.
	Choices map[string]string `json:"choices"`

	// Answer, Source and UserAttempts are nil only before Normalize runs.
	Answer       *Answer   `json:"answer"`
	Source       *Source   `json:"source"`
	UserAttempts []Attempt `json:"user_attempts"`
}

// Answer holds the correct choice and its explanation.
type Answer struct {
	CorrectChoice string `json:"correct_choice,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

// Source describes where a question came from.
type Source struct {
	Provider       string         `json:"provider,omitempty"`
	Year           Year           `json:"year,omitempty"`
	ExamName       string         `json:"exam_name,omitempty"`
	QuestionNumber QuestionNumber `json:"question_number,omitzero"`
}

// Attempt is one submission event for a question.
type Attempt struct {
	// AttemptID is 1-based and unique within the owning question.
	AttemptID int `json:"attempt_id"`

	// ChosenAnswer is nil when the question timed out with no selection.
	ChosenAnswer *string `json:"chosen_answer"`

	TimeSubmitted    time.Time `json:"time_submitted"`
	TimeSpentSeconds float64   `json:"time_spent_seconds"`

	// Notes is the only field rewritten after creation.
	Notes string `json:"notes"`
}

// Group is a passage or fact pattern shared by several questions.
type Group struct {
	GroupID   string `json:"group_id"`
	Text      string `json:"text,omitempty"`
	IntroText string `json:"intro_text,omitempty"`

	// QuestionOrder is the presentation order of member questions.
	QuestionOrder []string `json:"question_order"`
}

// UnmarshalJSON accepts the legacy "subcategory" spelling as well as
// "sub_category".
func (q *Question) UnmarshalJSON(data []byte) error {
	type plain Question
	aux := struct {
		*plain
		LegacySubCategory string `json:"subcategory,omitempty"`
	}{plain: (*plain)(q)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if q.SubCategory == "" && aux.LegacySubCategory != "" {
		q.SubCategory = aux.LegacySubCategory
	}
	return nil
}

// CorrectChoice returns the correct choice key, or "" if unknown.
func (q *Question) CorrectChoice() string {
	if q.Answer == nil {
		return ""
	}
	return q.Answer.CorrectChoice
}

// Provider returns the source provider, or "" if unknown.
func (q *Question) Provider() string {
	if q.Source == nil {
		return ""
	}
	return q.Source.Provider
}

// LastAttempt returns the most recent attempt, or nil if there are none.
func (q *Question) LastAttempt() *Attempt {
	if len(q.UserAttempts) == 0 {
		return nil
	}
	return &q.UserAttempts[len(q.UserAttempts)-1]
}

// HasNotes reports whether any attempt carries non-blank notes.
func (q *Question) HasNotes() bool {
	for _, a := range q.UserAttempts {
		if a.HasNotes() {
			return true
		}
	}
	return false
}

// HasChoice reports whether key is one of the question's choices.
func (q *Question) HasChoice(key string) bool {
	_, ok := q.Choices[key]
	return ok
}

// SortedChoiceKeys returns the question's choice keys in display order.
// Keys outside A..F are appended alphabetically.
func (q *Question) SortedChoiceKeys() []string {
	keys := make([]string, 0, len(q.Choices))
	seen := make(map[string]bool, len(q.Choices))
	for _, k := range ChoiceKeys {
		if _, ok := q.Choices[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var extra []string
	for k := range q.Choices {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// NewAttempt builds the next attempt for q without appending it.
// The attempt id is the current history length plus one.
func (q *Question) NewAttempt(chosen *string, submitted time.Time, spent time.Duration, notes string) Attempt {
	return Attempt{
		AttemptID:        len(q.UserAttempts) + 1,
		ChosenAnswer:     chosen,
		TimeSubmitted:    submitted.UTC(),
		TimeSpentSeconds: RoundTenths(spent.Seconds()),
		Notes:            notes,
	}
}

// IsCorrect reports whether the attempt chose correct. A nil choice is
// never correct.
func (a Attempt) IsCorrect(correct string) bool {
	return a.ChosenAnswer != nil && *a.ChosenAnswer == correct
}

// Answered reports whether a choice was made.
func (a Attempt) Answered() bool {
	return a.ChosenAnswer != nil
}

// HasNotes reports whether the notes are non-blank.
func (a Attempt) HasNotes() bool {
	return strings.TrimSpace(a.Notes) != ""
}

// Choice returns the chosen key, or "" for a timed-out attempt.
func (a Attempt) Choice() string {
	if a.ChosenAnswer == nil {
		return ""
	}
	return *a.ChosenAnswer
}

// Choice returns a pointer to key, for building attempts.
func Choice(key string) *string {
	return &key
}

// RoundTenths rounds v to one decimal place. Negative values clamp to zero.
func RoundTenths(v float64) float64 {
	if v < 0 {
		return 0
	}
	return float64(int64(v*10+0.5)) / 10
}

// Year is a source year. Banks in the wild carry it as a number or a
// string; it always encodes as a number when numeric.
type Year string

func (y Year) MarshalJSON() ([]byte, error) {
	if y == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.Atoi(string(y)); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(string(y))
}

func (y *Year) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null" || s == "":
		*y = ""
		return nil
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*y = Year(strings.TrimSpace(str))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*y = Year(n.String())
		return nil
	}
}

// String returns the year as text.
func (y Year) String() string {
	return string(y)
}

// QuestionNumber is a question's number within its exam. Banks carry it
// as a number or a string, and it encodes back in the form it arrived in.
type QuestionNumber struct {
	Text    string
	Numeric bool
}

// NumberText returns a string-form question number.
func NumberText(s string) QuestionNumber {
	return QuestionNumber{Text: strings.TrimSpace(s)}
}

// IsZero reports whether no number is set.
func (n QuestionNumber) IsZero() bool {
	return n.Text == ""
}

func (n QuestionNumber) MarshalJSON() ([]byte, error) {
	if n.Text == "" {
		return []byte("null"), nil
	}
	if n.Numeric {
		if _, err := strconv.ParseFloat(n.Text, 64); err == nil {
			return []byte(n.Text), nil
		}
	}
	return json.Marshal(n.Text)
}

func (n *QuestionNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null" || s == "":
		*n = QuestionNumber{}
		return nil
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*n = NumberText(str)
		return nil
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return err
		}
		*n = QuestionNumber{Text: num.String(), Numeric: true}
		return nil
	}
}

// String returns the number as text.
func (n QuestionNumber) String() string {
	return n.Text
}
