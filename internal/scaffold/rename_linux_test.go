package scaffold

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromote_RefusesEmptyTargetDir(t *testing.T) {
	dir := t.TempDir()
	stage := filepath.Join(dir, ".app.stage")
	target := filepath.Join(dir, "app")
	require.NoError(t, os.Mkdir(stage, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stage, "package.json"), []byte("{}"), 0o644))
	require.NoError(t, os.Mkdir(target, 0o755))

	err := promote(stage, target)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrExist)

	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	assert.Empty(t, entries, "target must not be replaced")
	assert.FileExists(t, filepath.Join(stage, "package.json"))
}

func TestPromote_MovesStage(t *testing.T) {
	dir := t.TempDir()
	stage := filepath.Join(dir, ".app.stage")
	target := filepath.Join(dir, "app")
	require.NoError(t, os.Mkdir(stage, 0o755))

	require.NoError(t, promote(stage, target))
	assert.DirExists(t, target)
	assert.NoDirExists(t, stage)
}
