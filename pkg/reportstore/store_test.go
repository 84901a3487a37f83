package reportstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	Verdict string `json:"verdict"`
	Body    string `json:"body"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SaveLoad(t *testing.T) {
	s := openTestStore(t)
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save("run-1", at, report{Verdict: "False", Body: "# Report"}))

	var got report
	require.NoError(t, s.Load("run-1", &got))
	assert.Equal(t, report{Verdict: "False", Body: "# Report"}, got)
}

func TestStore_NotFound(t *testing.T) {
	s := openTestStore(t)
	var got report
	assert.ErrorIs(t, s.Load("missing", &got), ErrNotFound)
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save("b", base.Add(time.Hour), report{}))
	require.NoError(t, s.Save("a", base, report{}))
	require.NoError(t, s.Save("c", base.Add(2*time.Hour), report{}))

	all, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.True(t, all[0].CreatedAt.Equal(base.Add(2*time.Hour)))

	two, err := s.List(2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestStore_OverwriteKeepsOneEntry(t *testing.T) {
	s := openTestStore(t)
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save("run", at, report{Verdict: "True"}))
	require.NoError(t, s.Save("run", at, report{Verdict: "False"}))

	var got report
	require.NoError(t, s.Load("run", &got))
	assert.Equal(t, "False", got.Verdict)

	entries, err := s.List(0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Save("persisted", time.Now(), report{Body: "kept"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	var got report
	require.NoError(t, s.Load("persisted", &got))
	assert.Equal(t, "kept", got.Body)
}
