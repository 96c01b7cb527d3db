// Package stats aggregates attempt history across the whole question bank.
// A question's latest attempt decides whether it counts as correct; time
// is summed over every attempt.
package stats

import (
	"sort"

	"github.com/abhisek/mbeprep/internal/quiz"
)

// Unknown labels questions missing a category, provider or year.
const Unknown = "Unknown"

// Bucket is one breakdown row.
type Bucket struct {
	Name string

	// CorrectLastAttempts counts questions whose latest attempt is correct.
	CorrectLastAttempts int

	// TotalLastAttempts counts attempted questions.
	TotalLastAttempts int

	// SumTimeAllAttempts is the total seconds over every attempt.
	SumTimeAllAttempts float64

	// NumAllAttempts counts every attempt.
	NumAllAttempts int
}

// Accuracy is the percentage of attempted questions answered correctly
// on their latest attempt.
func (b Bucket) Accuracy() float64 {
	if b.TotalLastAttempts == 0 {
		return 0
	}
	return float64(b.CorrectLastAttempts) / float64(b.TotalLastAttempts) * 100
}

// AvgTime is the mean seconds per attempt.
func (b Bucket) AvgTime() float64 {
	if b.NumAllAttempts == 0 {
		return 0
	}
	return b.SumTimeAllAttempts / float64(b.NumAllAttempts)
}

func (b *Bucket) add(lastCorrect bool, attempts []quiz.Attempt) {
	b.TotalLastAttempts++
	if lastCorrect {
		b.CorrectLastAttempts++
	}
	for _, a := range attempts {
		b.SumTimeAllAttempts += a.TimeSpentSeconds
	}
	b.NumAllAttempts += len(attempts)
}

// CategoryBucket is a category row with its subcategory breakdown.
type CategoryBucket struct {
	Bucket
	SubCategories []Bucket
}

// Report is the full statistics rollup.
type Report struct {
	// Attempted counts questions with at least one attempt.
	Attempted int

	// Correct and Incorrect count attempted questions by latest attempt.
	// Timed-out latest attempts are neither.
	Correct   int
	Incorrect int

	TotalAttempts int
	TotalTime     float64

	// WithNotes counts questions with non-blank notes on any attempt.
	WithNotes int

	Categories []CategoryBucket
	Providers  []Bucket
	Years      []Bucket
}

// Accuracy is the overall percentage of attempted questions correct.
func (r *Report) Accuracy() float64 {
	if r.Attempted == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Attempted) * 100
}

// AvgTime is the mean seconds per individual attempt.
func (r *Report) AvgTime() float64 {
	if r.TotalAttempts == 0 {
		return 0
	}
	return r.TotalTime / float64(r.TotalAttempts)
}

// Compute builds a report over questions. A bank with no attempts yields
// a zero report.
func Compute(questions []*quiz.Question) *Report {
	r := &Report{}
	cats := make(map[string]*CategoryBucket)
	subs := make(map[string]map[string]*Bucket)
	providers := make(map[string]*Bucket)
	years := make(map[string]*Bucket)

	for _, q := range questions {
		last := q.LastAttempt()
		if last == nil {
			continue
		}
		correct := last.IsCorrect(q.CorrectChoice())

		r.Attempted++
		switch {
		case correct:
			r.Correct++
		case last.Answered():
			r.Incorrect++
		}
		r.TotalAttempts += len(q.UserAttempts)
		for _, a := range q.UserAttempts {
			r.TotalTime += a.TimeSpentSeconds
		}
		if q.HasNotes() {
			r.WithNotes++
		}

		cat := orUnknown(q.Category)
		cb, ok := cats[cat]
		if !ok {
			cb = &CategoryBucket{Bucket: Bucket{Name: cat}}
			cats[cat] = cb
			subs[cat] = make(map[string]*Bucket)
		}
		cb.add(correct, q.UserAttempts)
		if q.SubCategory != "" {
			bucketFor(subs[cat], q.SubCategory).add(correct, q.UserAttempts)
		}

		var year string
		if q.Source != nil {
			year = q.Source.Year.String()
		}
		bucketFor(providers, orUnknown(q.Provider())).add(correct, q.UserAttempts)
		bucketFor(years, orUnknown(year)).add(correct, q.UserAttempts)
	}

	for name, cb := range cats {
		cb.SubCategories = sorted(subs[name])
		r.Categories = append(r.Categories, *cb)
	}
	sort.Slice(r.Categories, func(i, j int) bool {
		return r.Categories[i].Name < r.Categories[j].Name
	})
	r.Providers = sorted(providers)
	r.Years = sorted(years)
	return r
}

func bucketFor(m map[string]*Bucket, name string) *Bucket {
	b, ok := m[name]
	if !ok {
		b = &Bucket{Name: name}
		m[name] = b
	}
	return b
}

func sorted(m map[string]*Bucket) []Bucket {
	out := make([]Bucket, 0, len(m))
	for _, b := range m {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
