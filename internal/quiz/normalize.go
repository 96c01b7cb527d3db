package quiz

import "strings"

// Normalize fills in the optional sub-documents so that every stored
// question carries a non-nil Answer, Source and UserAttempts. Identifier
// and classification fields are trimmed. It is idempotent.
func Normalize(q *Question) {
	q.QuestionID = strings.TrimSpace(q.QuestionID)
	q.Category = strings.TrimSpace(q.Category)
	q.SubCategory = strings.TrimSpace(q.SubCategory)
	q.GroupID = strings.TrimSpace(q.GroupID)

	if q.Answer == nil {
		q.Answer = &Answer{}
	}
	if q.Source == nil {
		q.Source = &Source{}
	}
	if q.UserAttempts == nil {
		q.UserAttempts = []Attempt{}
	}
	if q.Choices == nil {
		q.Choices = map[string]string{}
	}
}

// NormalizeGroup trims the group id and defaults QuestionOrder to empty.
func NormalizeGroup(g *Group) {
	g.GroupID = strings.TrimSpace(g.GroupID)
	if g.QuestionOrder == nil {
		g.QuestionOrder = []string{}
	}
}

// Clone returns a deep copy of q.
func (q *Question) Clone() *Question {
	c := *q
	if q.Choices != nil {
		c.Choices = make(map[string]string, len(q.Choices))
		for k, v := range q.Choices {
			c.Choices[k] = v
		}
	}
	if q.Answer != nil {
		a := *q.Answer
		c.Answer = &a
	}
	if q.Source != nil {
		s := *q.Source
		c.Source = &s
	}
	if q.UserAttempts != nil {
		c.UserAttempts = make([]Attempt, len(q.UserAttempts))
		for i, a := range q.UserAttempts {
			c.UserAttempts[i] = a.Clone()
		}
	}
	return &c
}

// Clone returns a copy of a that does not share the chosen-answer pointer.
func (a Attempt) Clone() Attempt {
	if a.ChosenAnswer != nil {
		a.ChosenAnswer = Choice(*a.ChosenAnswer)
	}
	return a
}

// Clone returns a deep copy of g.
func (g *Group) Clone() *Group {
	c := *g
	if g.QuestionOrder != nil {
		c.QuestionOrder = append([]string(nil), g.QuestionOrder...)
	}
	return &c
}
