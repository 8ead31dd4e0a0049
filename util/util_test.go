package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0777))
	require.NoError(t, os.WriteFile(path, nil, 0666))
}

func TestGatherAllMidiPaths(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.mid"))
	touch(t, filepath.Join(dir, "b.txt"))
	touch(t, filepath.Join(dir, "sub", "c.MIDI"))

	paths, err := GatherAllMidiPaths(dir, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.mid"),
		filepath.Join(dir, "sub", "c.MIDI"),
	}, paths)

	paths, err = GatherAllMidiPaths(dir, 1)
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestGatherMissingDir(t *testing.T) {
	_, err := GatherAllMidiPaths(filepath.Join(t.TempDir(), "missing"), 0)
	assert.Error(t, err)
}
