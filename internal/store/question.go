package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/mbeprep/internal/quiz"
)

// insertBatch bounds the rows per INSERT so the bound-variable count stays
// well under SQLite's limit.
const insertBatch = 200

type txFunc func(ctx context.Context, op string, fn func(dialect.ExecQuerier) error) error

// questionRepo implements QuestionRepo with the ent SQL builder.
type questionRepo struct {
	conn dialect.ExecQuerier
	tx   txFunc
}

func (r *questionRepo) Put(ctx context.Context, q *quiz.Question) error {
	return classify("put question", insertQuestions(ctx, r.conn, []*quiz.Question{q}, true))
}

func (r *questionRepo) BulkPut(ctx context.Context, qs []*quiz.Question) error {
	return r.tx(ctx, "bulk put questions", func(conn dialect.ExecQuerier) error {
		return insertQuestions(ctx, conn, qs, true)
	})
}

func (r *questionRepo) Get(ctx context.Context, id string) (*quiz.Question, error) {
	qs, err := selectQuestions(ctx, r.conn, entsql.EQ("question_id", id))
	if err != nil {
		return nil, classify("get question", err)
	}
	if len(qs) == 0 {
		return nil, nil
	}
	return qs[0], nil
}

func (r *questionRepo) All(ctx context.Context) ([]*quiz.Question, error) {
	qs, err := selectQuestions(ctx, r.conn, nil)
	return qs, classify("list questions", err)
}

func (r *questionRepo) Count(ctx context.Context) (int, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(entsql.Count("*")).
		From(entsql.Table(questionsTable)).
		Query()
	rows := &entsql.Rows{}
	if err := r.conn.Query(ctx, query, args, rows); err != nil {
		return 0, classify("count questions", err)
	}
	defer rows.Close()
	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, classify("count questions", err)
		}
	}
	return n, classify("count questions", rows.Err())
}

func (r *questionRepo) ByCategory(ctx context.Context, category string) ([]*quiz.Question, error) {
	qs, err := selectQuestions(ctx, r.conn, entsql.EQ("category", category))
	return qs, classify("questions by category", err)
}

func (r *questionRepo) ByProvider(ctx context.Context, provider string) ([]*quiz.Question, error) {
	qs, err := selectQuestions(ctx, r.conn, entsql.EQ("provider", provider))
	return qs, classify("questions by provider", err)
}

func (r *questionRepo) ByYear(ctx context.Context, year string) ([]*quiz.Question, error) {
	qs, err := selectQuestions(ctx, r.conn, entsql.EQ("year", year))
	return qs, classify("questions by year", err)
}

func (r *questionRepo) ByGroup(ctx context.Context, groupID string) ([]*quiz.Question, error) {
	qs, err := selectQuestions(ctx, r.conn, entsql.EQ("group_id", groupID))
	return qs, classify("questions by group", err)
}

// insertQuestions normalizes and writes qs. With upsert set, existing rows
// are overwritten; otherwise a duplicate id is a constraint violation.
func insertQuestions(ctx context.Context, conn dialect.ExecQuerier, qs []*quiz.Question, upsert bool) error {
	for start := 0; start < len(qs); start += insertBatch {
		end := min(start+insertBatch, len(qs))
		ins := entsql.Dialect(dialect.SQLite).
			Insert(questionsTable).
			Columns("question_id", "category", "sub_category", "provider", "year", "group_id", "data")
		for _, q := range qs[start:end] {
			quiz.Normalize(q)
			if q.QuestionID == "" {
				return &ConstraintError{Op: "put question", Err: errors.New("question_id is empty")}
			}
			data, err := json.Marshal(q)
			if err != nil {
				return fmt.Errorf("marshal question %s: %w", q.QuestionID, err)
			}
			ins.Values(q.QuestionID, q.Category, q.SubCategory, q.Source.Provider, q.Source.Year.String(), q.GroupID, string(data))
		}
		if upsert {
			ins.OnConflict(entsql.ConflictColumns("question_id"), entsql.ResolveWithNewValues())
		}
		query, args := ins.Query()
		if err := conn.Exec(ctx, query, args, nil); err != nil {
			return err
		}
	}
	return nil
}

func selectQuestions(ctx context.Context, conn dialect.ExecQuerier, pred *entsql.Predicate) ([]*quiz.Question, error) {
	var out []*quiz.Question
	err := scanData(ctx, conn, questionsTable, pred, func(data string) error {
		var q quiz.Question
		if err := json.Unmarshal([]byte(data), &q); err != nil {
			return fmt.Errorf("unmarshal question: %w", err)
		}
		out = append(out, &q)
		return nil
	})
	return out, err
}

// scanData selects the data column of table in insertion order and hands
// each row to fn.
func scanData(ctx context.Context, conn dialect.ExecQuerier, table string, pred *entsql.Predicate, fn func(string) error) error {
	sel := entsql.Dialect(dialect.SQLite).
		Select("data").
		From(entsql.Table(table))
	if pred != nil {
		sel.Where(pred)
	}
	query, args := sel.OrderBy("rowid").Query()

	rows := &entsql.Rows{}
	if err := conn.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return err
		}
		if err := fn(data); err != nil {
			return err
		}
	}
	return rows.Err()
}

func clearTable(ctx context.Context, conn dialect.ExecQuerier, table string) error {
	query, args := entsql.Dialect(dialect.SQLite).Delete(table).Query()
	return conn.Exec(ctx, query, args, nil)
}
