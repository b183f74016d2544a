// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jsonfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rec struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	in := []rec{{ID: "a", Text: "<b>&"}, {ID: "b"}}

	require.NoError(t, Write(path, in))

	var out []rec
	ok, err := Read(path, &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, in, out)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not linger")
}

func TestRead_Missing(t *testing.T) {
	var out []rec
	ok, err := Read(filepath.Join(t.TempDir(), "nope.json"), &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRead_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	var out []rec
	_, err := Read(path, &out)
	require.Error(t, err)
}

func TestAppendReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.jsonl")

	require.NoError(t, Append(path, rec{ID: "1", Text: "one"}))
	require.NoError(t, Append(path, rec{ID: "2"}, rec{ID: "3"}))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("\n{broken\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got, skipped, err := ReadLines[rec](path)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, got, 3)
	assert.Equal(t, "one", got[0].Text)
	assert.Equal(t, "3", got[2].ID)
}

func TestReadLines_Missing(t *testing.T) {
	got, skipped, err := ReadLines[rec](filepath.Join(t.TempDir(), "none.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, skipped)
}
