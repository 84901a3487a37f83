package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"verynews/config"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadNews(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("from stdin"))

	got, err := readNews(cmd, []string{"breaking", "news"})
	require.NoError(t, err)
	assert.Equal(t, "breaking news", got)

	path := filepath.Join(t.TempDir(), "news.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o600))
	newsIn = path
	t.Cleanup(func() { newsIn = "" })
	got, err = readNews(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "from file", got)

	newsIn = ""
	got, err = readNews(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)
}

func TestOpenArchive(t *testing.T) {
	store, err := openArchive(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = openArchive(&config.Config{ReportDBPath: filepath.Join(t.TempDir(), "r.db")})
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.NoError(t, store.Close())
}

func TestNewJudge_RequiresLLMKey(t *testing.T) {
	cfg := config.Default()
	_, err := newJudge(t.Context(), cfg, nil)
	assert.ErrorIs(t, err, config.ErrMissingLLMKey)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["judge"])
	assert.True(t, names["search"])
	assert.True(t, names["serve"])
}
