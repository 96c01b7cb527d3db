package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// appStateRepo implements AppStateRepo with the ent SQL builder.
type appStateRepo struct {
	conn dialect.ExecQuerier
	tx   txFunc
}

func (r *appStateRepo) Put(ctx context.Context, key string, value any) error {
	return classify("put app state", putState(ctx, r.conn, key, value))
}

func (r *appStateRepo) PutMany(ctx context.Context, entries map[string]any) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return r.tx(ctx, "put app state", func(conn dialect.ExecQuerier) error {
		for _, k := range keys {
			if err := putState(ctx, conn, k, entries[k]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *appStateRepo) Get(ctx context.Context, key string, dst any) (bool, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("value").
		From(entsql.Table(appStateTable)).
		Where(entsql.EQ("key", key)).
		Query()
	rows := &entsql.Rows{}
	if err := r.conn.Query(ctx, query, args, rows); err != nil {
		return false, classify("get app state", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return false, classify("get app state", rows.Err())
	}
	var raw string
	if err := rows.Scan(&raw); err != nil {
		return false, classify("get app state", err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode app state %q: %w", key, err)
	}
	return true, nil
}

func (r *appStateRepo) BulkDelete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return r.tx(ctx, "delete app state", func(conn dialect.ExecQuerier) error {
		query, qargs := entsql.Dialect(dialect.SQLite).
			Delete(appStateTable).
			Where(entsql.In("key", args...)).
			Query()
		return conn.Exec(ctx, query, qargs, nil)
	})
}

func putState(ctx context.Context, conn dialect.ExecQuerier, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode app state %q: %w", key, err)
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(appStateTable).
		Columns("key", "value").
		Values(key, string(b)).
		OnConflict(entsql.ConflictColumns("key"), entsql.ResolveWithNewValues()).
		Query()
	return conn.Exec(ctx, query, args, nil)
}
