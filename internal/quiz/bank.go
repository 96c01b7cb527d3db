package quiz

// Bank is the in-memory mirror of the question and group tables. The
// pointers it hands out are the canonical copies: attempt recording
// resolves back to them by id rather than mutating filtered copies.
type Bank struct {
	questions []*Question
	groups    []*Group
	byID      map[string]*Question
	groupByID map[string]*Group
}

// NewBank indexes questions and groups, keeping their order.
func NewBank(questions []*Question, groups []*Group) *Bank {
	b := &Bank{
		questions: questions,
		groups:    groups,
		byID:      make(map[string]*Question, len(questions)),
		groupByID: make(map[string]*Group, len(groups)),
	}
	for _, q := range questions {
		b.byID[q.QuestionID] = q
	}
	for _, g := range groups {
		b.groupByID[g.GroupID] = g
	}
	return b
}

// Questions returns all questions in store order.
func (b *Bank) Questions() []*Question {
	if b == nil {
		return nil
	}
	return b.questions
}

// Groups returns all groups in store order.
func (b *Bank) Groups() []*Group {
	if b == nil {
		return nil
	}
	return b.groups
}

// Question returns the canonical question for id, or nil.
func (b *Bank) Question(id string) *Question {
	if b == nil {
		return nil
	}
	return b.byID[id]
}

// Group returns the group for id, or nil.
func (b *Bank) Group(id string) *Group {
	if b == nil {
		return nil
	}
	return b.groupByID[id]
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.questions)
}

// Resolve maps ids to canonical questions. ok is false if any id is unknown.
func (b *Bank) Resolve(ids []string) (qs []*Question, ok bool) {
	qs = make([]*Question, 0, len(ids))
	for _, id := range ids {
		q := b.Question(id)
		if q == nil {
			return nil, false
		}
		qs = append(qs, q)
	}
	return qs, true
}

// IDs returns the question ids of qs in order.
func IDs(qs []*Question) []string {
	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.QuestionID
	}
	return ids
}
