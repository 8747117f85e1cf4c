package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fentz26/thiz/internal/config"
	"github.com/fentz26/thiz/internal/models"
	"github.com/fentz26/thiz/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(t *testing.T) *config.Config {
	t.Helper()
	logger.SetOutput(io.Discard)

	settings := config.DefaultConfig()
	settings.Install.Skip = true
	settings.History.DBPath = filepath.Join(t.TempDir(), "history.db")
	return settings
}

func TestGenerate_EmbeddedTemplate(t *testing.T) {
	settings := testSettings(t)
	workDir := t.TempDir()
	var buf bytes.Buffer

	err := generate(context.Background(), newConsole(&buf), settings, "my-app", workDir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(workDir, "my-app", "package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "my-app"`)
	assert.FileExists(t, filepath.Join(workDir, "my-app", ".env"))
	assert.FileExists(t, filepath.Join(workDir, "my-app", "src", "server.js"))

	out := buf.String()
	assert.Contains(t, out, "Project structure created.")
	assert.Contains(t, out, "Dependency installation skipped.")
	assert.Contains(t, out, "cd my-app")
	assert.Regexp(t, `Done in \d+\.\d{2}s`, out)

	s, err := store.New(settings.History.DBPath)
	require.NoError(t, err)
	defer s.Close()
	gens, err := s.ListGenerations(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, gens, 1)
	assert.Equal(t, models.OutcomeSuccess, gens[0].Outcome)
	assert.Equal(t, embeddedTemplate, gens[0].Template)
}

func TestGenerate_TargetExists(t *testing.T) {
	settings := testSettings(t)
	workDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(workDir, "taken"), 0o755))
	var buf bytes.Buffer

	err := generate(context.Background(), newConsole(&buf), settings, "taken", workDir)
	require.Error(t, err)
	assert.Equal(t, exitFailure, exitCode(err))
	assert.Contains(t, buf.String(), `The folder "taken" already exists. Choose another name.`)

	entries, err := os.ReadDir(filepath.Join(workDir, "taken"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerate_InvalidName(t *testing.T) {
	settings := testSettings(t)

	for _, name := range []string{"", "..", "a/b"} {
		err := generate(context.Background(), newConsole(io.Discard), settings, name, t.TempDir())
		assert.Equal(t, exitFailure, exitCode(err), "name %q", name)
	}
}

func TestGenerate_MissingTemplateDir(t *testing.T) {
	settings := testSettings(t)
	settings.TemplateDir = filepath.Join(t.TempDir(), "missing")

	err := generate(context.Background(), newConsole(io.Discard), settings, "app", t.TempDir())
	assert.Equal(t, exitConfig, exitCode(err))
}

func TestGenerate_InvalidPackageManager(t *testing.T) {
	settings := testSettings(t)
	settings.Install.PackageManager = "make"

	err := generate(context.Background(), newConsole(io.Discard), settings, "app", t.TempDir())
	assert.Equal(t, exitConfig, exitCode(err))
}

func TestGenerate_MalformedMetadata(t *testing.T) {
	settings := testSettings(t)
	tmpl := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpl, "package.json"), []byte(`{"name": `), 0o644))
	settings.TemplateDir = tmpl
	workDir := t.TempDir()

	err := generate(context.Background(), newConsole(io.Discard), settings, "app", workDir)
	assert.Equal(t, exitMetadata, exitCode(err))
	assert.NoDirExists(t, filepath.Join(workDir, "app"))
}

func TestGenerate_HistoryDisabled(t *testing.T) {
	settings := testSettings(t)
	settings.History.Enabled = false

	require.NoError(t, generate(context.Background(), newConsole(io.Discard), settings, "app", t.TempDir()))
	assert.NoFileExists(t, settings.History.DBPath)
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, validateName("my-app"))
	assert.Error(t, validateName("   "))
	assert.Error(t, validateName("."))
	assert.Error(t, validateName(`a\b`))
}
