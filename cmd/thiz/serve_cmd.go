package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fentz26/thiz/internal/devserver"
	"github.com/fentz26/thiz/internal/portbind"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the development server of a generated project",
	Long: `Load .env from the current directory and serve the project API on PORT,
moving to the next port while the address is already in use.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveOpts struct {
	host        string
	port        int
	maxAttempts int
}

func init() {
	serveCmd.Flags().StringVar(&serveOpts.host, "host", "", "Interface to bind (default from config: all interfaces)")
	serveCmd.Flags().IntVar(&serveOpts.port, "port", 0, "Port to try first (overrides PORT)")
	serveCmd.Flags().IntVar(&serveOpts.maxAttempts, "max-attempts", 0, "Number of consecutive ports to try")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	env, err := devserver.LoadEnv(wd, cfg.Serve.DefaultPort)
	if err != nil {
		return configError{err}
	}
	if cmd.Flags().Changed("port") {
		env.Port = serveOpts.port
	}
	// LOG_LEVEL from .env applies unless the flag was given
	if env.LogLevel != "" && logLevel == "" {
		if err := configureLogger(logger, env.LogLevel); err != nil {
			return err
		}
	}

	host := cfg.Serve.Host
	if cmd.Flags().Changed("host") {
		host = serveOpts.host
	}
	attempts := cfg.Serve.MaxAttempts
	if cmd.Flags().Changed("max-attempts") {
		if serveOpts.maxAttempts < 1 {
			return usageError{fmt.Errorf("--max-attempts must be at least 1")}
		}
		attempts = serveOpts.maxAttempts
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return devserver.New(env, portbind.New(host, attempts, logger), logger).Run(ctx)
}
