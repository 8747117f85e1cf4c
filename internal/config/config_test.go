package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "package.json", cfg.MetadataFile)
	assert.Equal(t, ".env.example", cfg.EnvExample)
	assert.Equal(t, 5000, cfg.Serve.DefaultPort)
	assert.Equal(t, 100, cfg.Serve.MaxAttempts)
	assert.Equal(t, "npm", cfg.Install.PackageManager)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
clear_author: true
install:
  package_manager: pnpm
  args: ["install", "--frozen-lockfile"]
serve:
  default_port: 8080
  max_attempts: 3
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.ClearAuthor)
	assert.Equal(t, "pnpm", cfg.Install.PackageManager)
	assert.Equal(t, []string{"install", "--frozen-lockfile"}, cfg.InstallArgs())
	assert.Equal(t, 8080, cfg.Serve.DefaultPort)
	assert.Equal(t, 3, cfg.Serve.MaxAttempts)
	// untouched keys keep their defaults
	assert.Equal(t, "package.json", cfg.MetadataFile)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serve: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown package manager", func(c *Config) { c.Install.PackageManager = "cargo" }, true},
		{"zero attempts", func(c *Config) { c.Serve.MaxAttempts = 0 }, true},
		{"port out of range", func(c *Config) { c.Serve.DefaultPort = 70000 }, true},
		{"empty metadata file", func(c *Config) { c.MetadataFile = " " }, true},
		{"env file with path", func(c *Config) { c.EnvFile = "config/.env" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"history without path", func(c *Config) { c.History.DBPath = "" }, true},
		{"history disabled without path", func(c *Config) {
			c.History.Enabled = false
			c.History.DBPath = ""
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Serve.MaxAttempts = 7

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Serve.MaxAttempts)
}

func TestSave_Nil(t *testing.T) {
	assert.Error(t, Save(filepath.Join(t.TempDir(), "c.yaml"), nil))
}

func TestInstallArgs_Default(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Install.Args = nil
	assert.Equal(t, []string{"install"}, cfg.InstallArgs())
}
