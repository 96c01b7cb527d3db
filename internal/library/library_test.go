package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mbeprep/internal/bankfile"
	"github.com/abhisek/mbeprep/internal/quiz"
	"github.com/abhisek/mbeprep/internal/session"
	"github.com/abhisek/mbeprep/internal/store"
)

func openLibrary(t *testing.T) (*Library, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	lib := New(st)
	lib.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return lib, st
}

func bank(ids ...string) *bankfile.File {
	f := &bankfile.File{}
	for _, id := range ids {
		f.Questions = append(f.Questions, &quiz.Question{
			QuestionID: id,
			Category:   "Torts",
			Choices:    map[string]string{"A": "yes", "B": "no"},
			Answer:     &quiz.Answer{CorrectChoice: "A"},
		})
	}
	return f
}

func TestImport_ReplacesBankAndClearsRun(t *testing.T) {
	ctx := context.Background()
	lib, st := openLibrary(t)

	_, err := lib.Import(ctx, bank("old1", "old2"), "old.json")
	require.NoError(t, err)
	require.NoError(t, st.AppState().Put(ctx, session.KeyMasterList, []string{"old1"}))

	f := bank("q1", "q2", "q3")
	f.Groups = []*quiz.Group{{GroupID: "g1", QuestionOrder: []string{"q2", "q3"}}}
	res, err := lib.Import(ctx, f, "/home/me/ncbe.json")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Questions)
	assert.Equal(t, 1, res.Groups)
	assert.Nil(t, res.Bank.Question("old1"))
	assert.NotNil(t, res.Bank.Question("q1").UserAttempts)

	has, err := session.HasSnapshot(ctx, st.AppState())
	require.NoError(t, err)
	assert.False(t, has)

	name, err := lib.LastLoadedFile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ncbe.json", name)
}

func TestImport_FailureKeepsPreviousBank(t *testing.T) {
	ctx := context.Background()
	lib, _ := openLibrary(t)

	_, err := lib.Import(ctx, bank("q1"), "first.json")
	require.NoError(t, err)

	_, err = lib.Import(ctx, bank("dup", "dup"), "second.json")
	var ce *store.ConstraintError
	require.ErrorAs(t, err, &ce)

	b, err := lib.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"q1"}, quiz.IDs(b.Questions()))

	name, err := lib.LastLoadedFile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first.json", name)
}

func TestImportFile(t *testing.T) {
	ctx := context.Background()
	lib, _ := openLibrary(t)

	path := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, bankfile.Write(path, bank("a", "b")))

	res, err := lib.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Questions)

	_, err = lib.ImportFile(ctx, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	lib, st := openLibrary(t)
	dir := t.TempDir()

	_, err := lib.Export(ctx, dir)
	assert.ErrorIs(t, err, ErrEmptyBank)

	_, err = lib.Import(ctx, bank("q1"), "kaplan.json")
	require.NoError(t, err)

	q, err := st.Questions().Get(ctx, "q1")
	require.NoError(t, err)
	q.UserAttempts = append(q.UserAttempts, q.NewAttempt(quiz.Choice("B"), time.Now(), 5*time.Second, "tricky"))
	require.NoError(t, st.Questions().Put(ctx, q))

	path, err := lib.Export(ctx, filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Equal(t, "kaplan_2024-06-01.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"notes": "tricky"`))

	back, err := bankfile.Read(path)
	require.NoError(t, err)
	require.Len(t, back.Questions, 1)
	assert.Len(t, back.Questions[0].UserAttempts, 1)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	lib, _ := openLibrary(t)

	_, err := lib.Import(ctx, bank("q1"), "x.json")
	require.NoError(t, err)
	require.NoError(t, lib.Reset(ctx))

	b, err := lib.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, b.Len())

	name, err := lib.LastLoadedFile(ctx)
	require.NoError(t, err)
	assert.Empty(t, name)
}
