package bankfile

import (
	"strconv"
	"strings"

	"github.com/abhisek/mbeprep/internal/quiz"
)

// Retag stamps the same exam name, provider and year onto every question
// in f, keeping each question's own question_number. A year that is not
// an integer is cleared. It returns the number of questions updated.
func Retag(f *File, examName, provider, year string) int {
	y := strings.TrimSpace(year)
	if _, err := strconv.Atoi(y); err != nil {
		y = ""
	}
	for _, q := range f.Questions {
		if q.Source == nil {
			q.Source = &quiz.Source{}
		}
		q.Source.ExamName = strings.TrimSpace(examName)
		q.Source.Provider = strings.TrimSpace(provider)
		q.Source.Year = quiz.Year(y)
	}
	return len(f.Questions)
}
