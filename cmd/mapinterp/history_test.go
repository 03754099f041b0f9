package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
)

func TestPurgeHistoryRemovesDatabaseFile(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "history.db")
	is.NoErr(os.WriteFile(path, nil, 0644))
	t.Setenv("MAPINTERP_DB", path)

	out := bytes.Buffer{}
	is.NoErr(purgeHistory(&out))
	is.True(strings.Contains(out.String(), path))

	_, err := os.Stat(path)
	is.True(os.IsNotExist(err))
}

func TestPurgeHistoryWithoutDatabaseIsNotAnError(t *testing.T) {
	is := is.New(t)
	t.Setenv("MAPINTERP_DB", filepath.Join(t.TempDir(), "missing.db"))

	out := bytes.Buffer{}
	is.NoErr(purgeHistory(&out))
	is.Equal(out.String(), "No run history to purge\n")
}
