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

// groupRepo implements GroupRepo with the ent SQL builder.
type groupRepo struct {
	conn dialect.ExecQuerier
	tx   txFunc
}

func (r *groupRepo) Put(ctx context.Context, g *quiz.Group) error {
	return classify("put group", insertGroups(ctx, r.conn, []*quiz.Group{g}, true))
}

func (r *groupRepo) BulkPut(ctx context.Context, gs []*quiz.Group) error {
	return r.tx(ctx, "bulk put groups", func(conn dialect.ExecQuerier) error {
		return insertGroups(ctx, conn, gs, true)
	})
}

func (r *groupRepo) Get(ctx context.Context, id string) (*quiz.Group, error) {
	gs, err := selectGroups(ctx, r.conn, entsql.EQ("group_id", id))
	if err != nil {
		return nil, classify("get group", err)
	}
	if len(gs) == 0 {
		return nil, nil
	}
	return gs[0], nil
}

func (r *groupRepo) All(ctx context.Context) ([]*quiz.Group, error) {
	gs, err := selectGroups(ctx, r.conn, nil)
	return gs, classify("list groups", err)
}

func insertGroups(ctx context.Context, conn dialect.ExecQuerier, gs []*quiz.Group, upsert bool) error {
	for start := 0; start < len(gs); start += insertBatch {
		end := min(start+insertBatch, len(gs))
		ins := entsql.Dialect(dialect.SQLite).
			Insert(groupsTable).
			Columns("group_id", "data")
		for _, g := range gs[start:end] {
			quiz.NormalizeGroup(g)
			if g.GroupID == "" {
				return &ConstraintError{Op: "put group", Err: errors.New("group_id is empty")}
			}
			data, err := json.Marshal(g)
			if err != nil {
				return fmt.Errorf("marshal group %s: %w", g.GroupID, err)
			}
			ins.Values(g.GroupID, string(data))
		}
		if upsert {
			ins.OnConflict(entsql.ConflictColumns("group_id"), entsql.ResolveWithNewValues())
		}
		query, args := ins.Query()
		if err := conn.Exec(ctx, query, args, nil); err != nil {
			return err
		}
	}
	return nil
}

func selectGroups(ctx context.Context, conn dialect.ExecQuerier, pred *entsql.Predicate) ([]*quiz.Group, error) {
	var out []*quiz.Group
	err := scanData(ctx, conn, groupsTable, pred, func(data string) error {
		var g quiz.Group
		if err := json.Unmarshal([]byte(data), &g); err != nil {
			return fmt.Errorf("unmarshal group: %w", err)
		}
		out = append(out, &g)
		return nil
	})
	return out, err
}
