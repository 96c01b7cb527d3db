package bankfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/mbeprep/internal/quiz"
)

// Spreadsheet header names. Matching ignores case and surrounding space.
const (
	colQuestionID     = "question_id"
	colCategory       = "category"
	colSubCategory    = "sub_category"
	colGroupID        = "group_id"
	colGroupText      = "group_text"
	colQuestionText   = "question_text"
	colCorrectChoice  = "correct_choice"
	colExplanation    = "explanation"
	colProvider       = "provider"
	colYear           = "year"
	colExamName       = "exam_name"
	colQuestionNumber = "question_number"
)

// headerAliases maps alternative header spellings to canonical ones.
var headerAliases = map[string]string{
	"subcategory": colSubCategory,
	"id":          colQuestionID,
	"question":    colQuestionText,
	"answer":      colCorrectChoice,
	"exam":        colExamName,
}

// ReadXLSX reads a bank from the first sheet of a workbook. Row 1 is the
// header; choice columns are headed A through F. Questions sharing a
// group_id form a group ordered by row.
func ReadXLSX(r io.Reader) (*File, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &FormatError{Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer func() { _ = wb.Close() }()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, &FormatError{Err: fmt.Errorf("workbook has no sheets")}
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, &FormatError{Err: fmt.Errorf("read sheet %q: %w", sheets[0], err)}
	}
	if len(rows) == 0 {
		return nil, &FormatError{Err: fmt.Errorf("sheet %q is empty", sheets[0])}
	}

	cols := headerIndex(rows[0])
	if _, ok := cols[colQuestionID]; !ok {
		return nil, &FormatError{Err: fmt.Errorf("missing %s column", colQuestionID)}
	}

	f := &File{Questions: []*quiz.Question{}, Groups: []*quiz.Group{}}
	groups := make(map[string]*quiz.Group)
	for i, row := range rows[1:] {
		cell := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		id := cell(colQuestionID)
		if id == "" {
			if blank(row) {
				continue
			}
			return nil, &FormatError{Err: fmt.Errorf("row %d: empty %s", i+2, colQuestionID)}
		}

		q := &quiz.Question{
			QuestionID:   id,
			Category:     cell(colCategory),
			SubCategory:  cell(colSubCategory),
			GroupID:      cell(colGroupID),
			QuestionText: cell(colQuestionText),
			Choices:      make(map[string]string),
			Answer: &quiz.Answer{
				CorrectChoice: strings.ToUpper(cell(colCorrectChoice)),
				Explanation:   cell(colExplanation),
			},
			Source: &quiz.Source{
				Provider:       cell(colProvider),
				Year:           quiz.Year(cell(colYear)),
				ExamName:       cell(colExamName),
				QuestionNumber: quiz.NumberText(cell(colQuestionNumber)),
			},
			UserAttempts: []quiz.Attempt{},
		}
		for _, key := range quiz.ChoiceKeys {
			if text := cell(strings.ToLower(key)); text != "" {
				q.Choices[key] = text
			}
		}
		f.Questions = append(f.Questions, q)

		if q.GroupID == "" {
			continue
		}
		g, ok := groups[q.GroupID]
		if !ok {
			g = &quiz.Group{GroupID: q.GroupID}
			groups[q.GroupID] = g
			f.Groups = append(f.Groups, g)
		}
		if g.Text == "" {
			g.Text = cell(colGroupText)
		}
		g.QuestionOrder = append(g.QuestionOrder, id)
	}
	return f, nil
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		if _, dup := cols[name]; !dup && name != "" {
			cols[name] = i
		}
	}
	return cols
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
