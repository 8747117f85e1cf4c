// Package config loads and validates thiz configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds generator and dev server settings.
type Config struct {
	// TemplateDir replaces the embedded template when set.
	TemplateDir string `yaml:"template_dir"`
	// MetadataFile is the package metadata document patched after copy.
	MetadataFile string `yaml:"metadata_file"`
	// EnvExample is copied to EnvFile when present in the template.
	EnvExample string `yaml:"env_example"`
	EnvFile    string `yaml:"env_file"`
	// ClearAuthor resets the metadata "author" field to an empty string.
	ClearAuthor bool          `yaml:"clear_author"`
	Install     InstallConfig `yaml:"install"`
	Serve       ServeConfig   `yaml:"serve"`
	History     HistoryConfig `yaml:"history"`
	LogLevel    string        `yaml:"log_level"`
}

// InstallConfig controls the dependency installation step.
type InstallConfig struct {
	Skip           bool     `yaml:"skip"`
	PackageManager string   `yaml:"package_manager"`
	Args           []string `yaml:"args"`
}

// ServeConfig controls the dev server listener.
type ServeConfig struct {
	Host        string `yaml:"host"`
	DefaultPort int    `yaml:"default_port"`
	// MaxAttempts bounds how many consecutive ports are tried.
	MaxAttempts int `yaml:"max_attempts"`
}

// HistoryConfig controls the generation history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		MetadataFile: "package.json",
		EnvExample:   ".env.example",
		EnvFile:      ".env",
		Install: InstallConfig{
			PackageManager: "npm",
			Args:           []string{"install"},
		},
		Serve: ServeConfig{
			Host:        "",
			DefaultPort: 5000,
			MaxAttempts: 100,
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  filepath.Join(Dir(), "history.db"),
		},
		LogLevel: "info",
	}
}

// Dir returns ~/.thiz, or .thiz when the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".thiz"
	}
	return filepath.Join(home, ".thiz")
}

// Load reads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFromHome loads ~/.thiz/config.yaml.
func LoadFromHome() (*Config, error) {
	return Load(DefaultPath())
}

// DefaultPath is the config file consulted when --config is not given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Save writes configuration to a YAML file, creating parent directories if needed.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

var validPackageManagers = map[string]bool{
	"npm":  true,
	"pnpm": true,
	"yarn": true,
	"bun":  true,
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.MetadataFile) == "" {
		return fmt.Errorf("metadata_file must not be empty")
	}
	if strings.ContainsAny(c.EnvExample, `/\`) || strings.ContainsAny(c.EnvFile, `/\`) {
		return fmt.Errorf("env_example and env_file must be plain file names")
	}
	if !validPackageManagers[c.Install.PackageManager] {
		return fmt.Errorf("invalid package_manager %q, must be: npm, pnpm, yarn, or bun", c.Install.PackageManager)
	}
	if c.Serve.DefaultPort < 0 || c.Serve.DefaultPort > 65535 {
		return fmt.Errorf("serve.default_port %d out of range", c.Serve.DefaultPort)
	}
	if c.Serve.MaxAttempts < 1 {
		return fmt.Errorf("serve.max_attempts must be at least 1")
	}
	if c.LogLevel != "" && !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.History.Enabled && strings.TrimSpace(c.History.DBPath) == "" {
		return fmt.Errorf("history.db_path is required when history is enabled")
	}
	return nil
}

// InstallArgs returns the install arguments, defaulting to "install".
func (c *Config) InstallArgs() []string {
	if len(c.Install.Args) == 0 {
		return []string{"install"}
	}
	return c.Install.Args
}
