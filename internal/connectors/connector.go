// Package connectors defines the interface for running external commands.
package connectors

import "context"

// ExecResult holds the result of a command execution. Output streams are
// inherited by the child process and are not captured.
type ExecResult struct {
	Command  string   `json:"command"`
	Args     []string `json:"args"`
	Dir      string   `json:"dir"`
	ExitCode int      `json:"exit_code"`
}

// Connector defines the interface for executing commands.
type Connector interface {
	// Name returns the connector identifier.
	Name() string

	// Execute runs a command in dir and waits for it to exit.
	Execute(ctx context.Context, dir, cmd string, args []string) (*ExecResult, error)

	// IsAllowed checks if a command is allowed to execute.
	IsAllowed(cmd string, args []string) bool
}
