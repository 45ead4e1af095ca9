package jsonutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestWriteFileAtomic_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	require.NoError(t, WriteFileAtomic(path, doc{Name: "a", Count: 1}))
	require.NoError(t, WriteFileAtomic(path, doc{Name: "b", Count: 2}))

	var got doc
	require.NoError(t, ReadFile(path, &got))
	assert.Equal(t, doc{Name: "b", Count: 2}, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestReadFile_Missing(t *testing.T) {
	var got doc
	err := ReadFile(filepath.Join(t.TempDir(), "nope.json"), &got)
	assert.True(t, errors.Is(err, ErrNoDocument))
}

func TestReadFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o644))

	var got doc
	err := ReadFile(path, &got)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoDocument))
}

func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "state.json")
	assert.Error(t, WriteFileAtomic(path, doc{}))
}
