package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fentz26/thiz/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "thiz",
	Short: "thiz - backend project generator",
	Long: `thiz generates ready-to-run Express backend projects and serves
their development API on the first free port.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	configPath string
	logLevel   string
	noBanner   bool

	cfg    = config.DefaultConfig()
	logger = logrus.New()
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noBanner, "no-banner", false, "Do not print the banner")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})
}

// setup loads the config file and configures the logger. The level comes
// from --log-level, then LOG_LEVEL, then the config file.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return configError{err}
	}
	cfg = loaded

	level := cfg.LogLevel
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	if logLevel != "" {
		level = logLevel
	}
	return configureLogger(logger, level)
}

func configureLogger(l *logrus.Logger, level string) error {
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return configError{fmt.Errorf("invalid log level %q", level)}
	}
	l.SetLevel(lvl)
	return nil
}

func main() {
	cmd, err := rootCmd.ExecuteContextC(context.Background())
	if err != nil {
		var shown reported
		if !errors.As(err, &shown) {
			newConsole(os.Stderr).Error(err)
		}
		var usage usageError
		if errors.As(err, &usage) && cmd != nil {
			fmt.Fprint(os.Stderr, cmd.UsageString())
		}
		os.Exit(exitCode(err))
	}
}
