// Package localexec runs allowlisted package-manager commands with the
// caller's standard streams.
package localexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/fentz26/thiz/internal/connectors"
)

// ErrNotAllowed is returned for commands outside the allowlist.
var ErrNotAllowed = errors.New("command not allowed")

// allowedCommands defines the strict allowlist of executable commands.
var allowedCommands = map[string][]string{
	"npm":  {"install", "ci"},
	"pnpm": {"install"},
	"yarn": {"install"},
	"bun":  {"install"},
}

// Stdio holds the streams handed to child processes.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// OSStdio returns the invoking process's own streams.
func OSStdio() Stdio {
	return Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// LocalExec implements the Connector interface for local command execution.
type LocalExec struct {
	stdio Stdio
}

// New creates a new LocalExec connector.
func New(stdio Stdio) *LocalExec {
	return &LocalExec{stdio: stdio}
}

// Name returns the connector identifier.
func (l *LocalExec) Name() string {
	return "localexec"
}

// IsAllowed checks if a command is in the allowlist.
func (l *LocalExec) IsAllowed(cmd string, args []string) bool {
	allowedSubcmds, ok := allowedCommands[cmd]
	if !ok {
		return false
	}

	if len(args) == 0 {
		return false
	}

	subcmd := args[0]
	for _, allowed := range allowedSubcmds {
		if subcmd == allowed {
			return true
		}
	}
	return false
}

// Execute runs an allowlisted command in dir and waits for it. A non-zero
// exit is reported through ExitCode, not as an error.
func (l *LocalExec) Execute(ctx context.Context, dir, cmd string, args []string) (*connectors.ExecResult, error) {
	if !l.IsAllowed(cmd, args) {
		return nil, fmt.Errorf("%w: %s %s", ErrNotAllowed, cmd, strings.Join(args, " "))
	}
	return run(ctx, dir, cmd, args, l.stdio)
}

func run(ctx context.Context, dir, cmd string, args []string, stdio Stdio) (*connectors.ExecResult, error) {
	execCmd := exec.CommandContext(ctx, cmd, args...)
	execCmd.Dir = dir
	execCmd.Stdin = stdio.In
	execCmd.Stdout = stdio.Out
	execCmd.Stderr = stdio.Err

	err := execCmd.Run()

	exitCode := 0
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			exitCode = exitError.ExitCode()
		} else {
			return nil, fmt.Errorf("exec error: %w", err)
		}
	}

	return &connectors.ExecResult{
		Command:  cmd,
		Args:     args,
		Dir:      dir,
		ExitCode: exitCode,
	}, nil
}
