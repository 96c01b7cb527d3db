package store

import (
	"context"

	"github.com/abhisek/mbeprep/internal/quiz"
)

// QuestionRepo provides access to the question table. Writes normalize the
// question in place before storing it.
type QuestionRepo interface {
	// Put upserts a single question by id.
	Put(ctx context.Context, q *quiz.Question) error

	// BulkPut upserts many questions in one transaction.
	BulkPut(ctx context.Context, qs []*quiz.Question) error

	// Get returns the question with id, or nil if none exists.
	Get(ctx context.Context, id string) (*quiz.Question, error)

	// All returns every question in insertion order.
	All(ctx context.Context) ([]*quiz.Question, error)

	// Count returns the number of stored questions.
	Count(ctx context.Context) (int, error)

	// ByCategory, ByProvider, ByYear and ByGroup are indexed lookups.
	ByCategory(ctx context.Context, category string) ([]*quiz.Question, error)
	ByProvider(ctx context.Context, provider string) ([]*quiz.Question, error)
	ByYear(ctx context.Context, year string) ([]*quiz.Question, error)
	ByGroup(ctx context.Context, groupID string) ([]*quiz.Question, error)
}

// GroupRepo provides access to the group table.
type GroupRepo interface {
	Put(ctx context.Context, g *quiz.Group) error
	BulkPut(ctx context.Context, gs []*quiz.Group) error

	// Get returns the group with id, or nil if none exists.
	Get(ctx context.Context, id string) (*quiz.Group, error)

	// All returns every group in insertion order.
	All(ctx context.Context) ([]*quiz.Group, error)
}

// AppStateRepo is a JSON key/value table for settings and the active
// session snapshot.
type AppStateRepo interface {
	// Put stores value under key as JSON.
	Put(ctx context.Context, key string, value any) error

	// PutMany stores every entry in one transaction.
	PutMany(ctx context.Context, entries map[string]any) error

	// Get decodes the value for key into dst. It reports false if the key
	// is absent.
	Get(ctx context.Context, key string, dst any) (bool, error)

	// BulkDelete removes the given keys in one transaction. Missing keys
	// are ignored.
	BulkDelete(ctx context.Context, keys []string) error
}
