package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fentz26/thiz/internal/audit"
	"github.com/fentz26/thiz/internal/config"
	"github.com/fentz26/thiz/internal/connectors/localexec"
	"github.com/fentz26/thiz/internal/scaffold"
	"github.com/fentz26/thiz/internal/store"
	"github.com/fentz26/thiz/internal/template"
	"github.com/spf13/cobra"
)

const embeddedTemplate = "embedded"

var newCmd = &cobra.Command{
	Use:   "new <project-name>",
	Short: "Generate a new backend project",
	Long: `Create <project-name> in the current directory from the project template,
write .env from .env.example, set the package name and install dependencies.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return usageError{errors.New("no project name provided")}
		}
		if err := cobra.ExactArgs(1)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	},
	RunE: runNew,
}

var newOpts struct {
	template       string
	skipInstall    bool
	packageManager string
	clearAuthor    bool
}

func init() {
	newCmd.Flags().StringVar(&newOpts.template, "template", "", "Template directory (default: embedded template)")
	newCmd.Flags().BoolVar(&newOpts.skipInstall, "skip-install", false, "Do not install dependencies")
	newCmd.Flags().StringVar(&newOpts.packageManager, "package-manager", "", "Package manager: npm, pnpm, yarn or bun")
	newCmd.Flags().BoolVar(&newOpts.clearAuthor, "clear-author", false, "Reset the package author to an empty string")

	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	out := newConsole(cmd.OutOrStdout())
	if !noBanner {
		out.Banner()
	}

	settings := *cfg
	if newOpts.template != "" {
		settings.TemplateDir = newOpts.template
	}
	if newOpts.packageManager != "" {
		settings.Install.PackageManager = newOpts.packageManager
	}
	settings.Install.Skip = settings.Install.Skip || newOpts.skipInstall
	settings.ClearAuthor = settings.ClearAuthor || newOpts.clearAuthor

	return generate(cmd.Context(), out, &settings, args[0], wd)
}

// generate runs one pipeline for name under workDir and records it in the
// history store. Failures are printed to out before they are returned.
func generate(ctx context.Context, out *console, settings *config.Config, name, workDir string) error {
	if err := validateName(name); err != nil {
		out.Error(err)
		return reported{usageError{err}}
	}
	if err := settings.Validate(); err != nil {
		out.Error(err)
		return reported{configError{err}}
	}

	src, root, err := templateSource(settings.TemplateDir)
	if err != nil {
		out.Error(err)
		return reported{configError{err}}
	}

	var installer scaffold.Installer
	if !settings.Install.Skip {
		args := settings.InstallArgs()
		installer = &scaffold.CommandInstaller{
			Connector: localexec.New(localexec.OSStdio()),
			Command:   settings.Install.PackageManager,
			Args:      args,
		}
		out.installHint = settings.Install.PackageManager + " " + strings.Join(args, " ")
	}

	opts := scaffold.Options{
		MetadataFile: settings.MetadataFile,
		EnvExample:   settings.EnvExample,
		EnvFile:      settings.EnvFile,
		ClearAuthor:  settings.ClearAuthor,
	}
	req := scaffold.Request{Template: src, TemplateRoot: root, Name: name, WorkDir: workDir}

	res, runErr := scaffold.New(opts, installer, out, logger).Run(ctx, req)
	recordHistory(ctx, settings, req, res, runErr)

	if runErr != nil {
		if errors.Is(runErr, scaffold.ErrTargetExists) {
			out.TargetExists(name)
		} else {
			out.Error(runErr)
		}
		return reported{runErr}
	}

	out.Ready(name, res.Elapsed)
	return nil
}

// validateName accepts a single path element.
func validateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("no project name provided")
	case name == "." || name == "..":
		return fmt.Errorf("invalid project name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("project name %q must not contain path separators", name)
	}
	return nil
}

// templateSource returns the template tree and the name it is recorded
// under. An empty dir selects the embedded template.
func templateSource(dir string) (fs.FS, string, error) {
	if dir == "" {
		return template.Default(), embeddedTemplate, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("template %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, "", fmt.Errorf("template %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("template %s is not a directory", dir)
	}
	return os.DirFS(abs), abs, nil
}

// recordHistory stores the run when history is enabled. Failures are
// logged and never change the command's result.
func recordHistory(ctx context.Context, settings *config.Config, req scaffold.Request, res *scaffold.Result, runErr error) {
	if !settings.History.Enabled {
		return
	}
	s, err := store.New(settings.History.DBPath)
	if err != nil {
		logger.WithError(err).Warn("history unavailable")
		return
	}
	defer s.Close()

	if _, err := audit.NewRecorder(s).Record(ctx, req, res, runErr); err != nil {
		logger.WithError(err).Warn("failed to record generation")
	}
}
