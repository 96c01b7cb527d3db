// Package library moves whole banks between files and the store, keeping
// the in-memory mirror in step.
package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/mbeprep/internal/bankfile"
	"github.com/abhisek/mbeprep/internal/quiz"
	"github.com/abhisek/mbeprep/internal/review"
	"github.com/abhisek/mbeprep/internal/session"
	"github.com/abhisek/mbeprep/internal/store"
)

// ErrEmptyBank is returned when exporting a store with no questions.
var ErrEmptyBank = errors.New("no quiz data to export")

// Library wraps the store with bank-level operations.
type Library struct {
	st  *store.Store
	now func() time.Time
}

// New returns a Library over st.
func New(st *store.Store) *Library {
	return &Library{st: st, now: time.Now}
}

// Load reads every question and group into a fresh Bank.
func (l *Library) Load(ctx context.Context) (*quiz.Bank, error) {
	qs, err := l.st.Questions().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	gs, err := l.st.Groups().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	return quiz.NewBank(qs, gs), nil
}

// ImportResult describes a completed import.
type ImportResult struct {
	Bank      *quiz.Bank
	Questions int
	Groups    int
}

// Import replaces the stored bank with f and records name as the last
// loaded file. Any active run snapshot is dropped since its question ids
// may no longer exist. On failure the previous bank is left in place.
func (l *Library) Import(ctx context.Context, f *bankfile.File, name string) (*ImportResult, error) {
	if err := l.st.ReplaceAll(ctx, f.Questions, f.Groups); err != nil {
		return nil, fmt.Errorf("import %s: %w", name, err)
	}

	kv := l.st.AppState()
	if name != "" {
		if err := kv.Put(ctx, session.KeyLastLoadedFile, filepath.Base(name)); err != nil {
			return nil, fmt.Errorf("record file name: %w", err)
		}
	}
	if err := session.ClearSnapshot(ctx, kv); err != nil {
		return nil, fmt.Errorf("clear active run: %w", err)
	}

	bank, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &ImportResult{Bank: bank, Questions: bank.Len(), Groups: len(bank.Groups())}, nil
}

// ImportFile reads a JSON or spreadsheet bank from path and imports it.
func (l *Library) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := bankfile.Read(path)
	if err != nil {
		return nil, err
	}
	return l.Import(ctx, f, path)
}

// LastLoadedFile returns the name recorded by the last import, or "".
func (l *Library) LastLoadedFile(ctx context.Context) (string, error) {
	var name string
	if _, err := l.st.AppState().Get(ctx, session.KeyLastLoadedFile, &name); err != nil {
		return "", err
	}
	return name, nil
}

// Export writes the full bank, attempts included, to dir and returns the
// path written.
func (l *Library) Export(ctx context.Context, dir string) (string, error) {
	bank, err := l.Load(ctx)
	if err != nil {
		return "", err
	}
	if bank.Len() == 0 {
		return "", ErrEmptyBank
	}

	last, err := l.LastLoadedFile(ctx)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, bankfile.ExportFileName(last, l.now()))
	if err := bankfile.Write(path, review.FullExport(bank)); err != nil {
		return "", err
	}
	return path, nil
}

// Reset clears every question, group and app state entry.
func (l *Library) Reset(ctx context.Context) error {
	return l.st.ClearAll(ctx)
}
