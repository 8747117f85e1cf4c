package scaffold

import (
	"context"
	"fmt"
	"strings"

	"github.com/fentz26/thiz/internal/connectors"
)

// Installer installs the dependencies of a generated project.
type Installer interface {
	Install(ctx context.Context, dir string) error
}

// CommandInstaller runs a package manager through a connector.
type CommandInstaller struct {
	Connector connectors.Connector
	Command   string
	Args      []string
}

// Install runs the configured command in dir. Any failure, including a
// non-zero exit status, is reported as ErrInstallFailed.
func (c *CommandInstaller) Install(ctx context.Context, dir string) error {
	line := strings.TrimSpace(c.Command + " " + strings.Join(c.Args, " "))

	res, err := c.Connector.Execute(ctx, dir, c.Command, c.Args)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInstallFailed, line, err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: %s exited with status %d", ErrInstallFailed, line, res.ExitCode)
	}
	return nil
}
