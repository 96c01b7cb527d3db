package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	"github.com/abhisek/mbeprep/internal/quiz"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store holds the ent SQL driver and provides access to repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs auto-migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps pragmas and in-memory databases consistent and
	// serializes writes the way a single-user store expects.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{db: db, drv: drv}, nil
}

func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Questions returns a QuestionRepo backed by this store.
func (s *Store) Questions() QuestionRepo {
	return &questionRepo{conn: s.drv, tx: s.withTx}
}

// Groups returns a GroupRepo backed by this store.
func (s *Store) Groups() GroupRepo {
	return &groupRepo{conn: s.drv, tx: s.withTx}
}

// AppState returns an AppStateRepo backed by this store.
func (s *Store) AppState() AppStateRepo {
	return &appStateRepo{conn: s.drv, tx: s.withTx}
}

// ReplaceAll clears the question and group tables and inserts the given
// set in one transaction. On failure nothing changes. Questions are
// normalized in place before they are written.
func (s *Store) ReplaceAll(ctx context.Context, questions []*quiz.Question, groups []*quiz.Group) error {
	return s.withTx(ctx, "replace all", func(conn dialect.ExecQuerier) error {
		if err := clearTable(ctx, conn, questionsTable); err != nil {
			return err
		}
		if err := clearTable(ctx, conn, groupsTable); err != nil {
			return err
		}
		if err := insertQuestions(ctx, conn, questions, false); err != nil {
			return err
		}
		return insertGroups(ctx, conn, groups, false)
	})
}

// ClearAll removes every question, group and app-state entry.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.withTx(ctx, "clear all", func(conn dialect.ExecQuerier) error {
		for _, t := range []string{questionsTable, groupsTable, appStateTable} {
			if err := clearTable(ctx, conn, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error. Errors are classified into store error kinds.
func (s *Store) withTx(ctx context.Context, op string, fn func(dialect.ExecQuerier) error) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return classify(op, fmt.Errorf("begin tx: %w", err))
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return classify(op, err)
	}
	if err := tx.Commit(); err != nil {
		return classify(op, fmt.Errorf("commit: %w", err))
	}
	return nil
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. MBEPREP_DB environment variable
// 2. $XDG_DATA_HOME/mbeprep/mbeprep.db
// 3. ~/.local/share/mbeprep/mbeprep.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("MBEPREP_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "mbeprep", "mbeprep.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
