package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/thiz/internal/scaffold"
)

var (
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	cyanColor    = lipgloss.Color("#06B6D4")

	bannerStyle = lipgloss.NewStyle().
			Foreground(cyanColor).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cyanColor).
			Padding(0, 6).
			Align(lipgloss.Center)

	stepStyle    = lipgloss.NewStyle().Foreground(cyanColor)
	successStyle = lipgloss.NewStyle().Foreground(successColor)
	readyStyle   = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(warningColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
)

// console renders generation progress for humans. It implements
// scaffold.Reporter.
type console struct {
	out io.Writer
	// installHint is the command suggested when installation fails.
	installHint string
}

func newConsole(out io.Writer) *console {
	return &console{out: out, installHint: "npm install"}
}

func (c *console) line(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(c.out, style.Render(fmt.Sprintf(format, args...)))
}

// Banner prints the product banner.
func (c *console) Banner() {
	fmt.Fprintln(c.out, bannerStyle.Render("create-thiz-app\nBackend development. Clean. Fast. THIZ."))
}

// Report implements scaffold.Reporter.
func (c *console) Report(e scaffold.Event) {
	switch {
	case e.Step == scaffold.StepMaterialize && e.Status == scaffold.StatusStarted:
		c.line(stepStyle, "▶ Creating project...")
	case e.Step == scaffold.StepMaterialize && e.Status == scaffold.StatusDone:
		c.line(successStyle, "✔ Project structure created.")
	case e.Step == scaffold.StepEnv && e.Status == scaffold.StatusDone:
		c.line(successStyle, "✔ Environment file (%s) created.", e.Detail)
	case e.Step == scaffold.StepEnv && e.Status == scaffold.StatusSkipped:
		c.line(mutedStyle, "• No environment example, %s", e.Detail)
	case e.Step == scaffold.StepMetadata && e.Status == scaffold.StatusDone:
		c.line(successStyle, "✔ %s updated.", e.Detail)
	case e.Step == scaffold.StepInstall && e.Status == scaffold.StatusStarted:
		fmt.Fprintln(c.out)
		c.line(stepStyle, "▶ Installing dependencies...")
		fmt.Fprintln(c.out)
	case e.Step == scaffold.StepInstall && e.Status == scaffold.StatusDone:
		c.line(successStyle, "✔ Dependencies installed successfully.")
	case e.Step == scaffold.StepInstall && e.Status == scaffold.StatusSkipped:
		c.line(mutedStyle, "• Dependency installation skipped.")
	case e.Step == scaffold.StepInstall && e.Status == scaffold.StatusFailed:
		c.line(warningStyle, "✖ Failed to install dependencies. Run %s manually.", c.installHint)
		c.line(mutedStyle, "  %s", e.Detail)
	}
}

// Ready prints the success message, next steps and the elapsed time.
func (c *console) Ready(name string, elapsed time.Duration) {
	fmt.Fprintln(c.out)
	c.line(readyStyle, "✔ THIZ is ready !")
	fmt.Fprintln(c.out)
	c.line(stepStyle, "Next steps:")
	c.line(stepStyle, "  cd %s", name)
	c.line(stepStyle, "  npm run dev")
	fmt.Fprintln(c.out)
	c.line(stepStyle, "Your logic. Your flow. THIZ handles the rest.")
	fmt.Fprintln(c.out)
	c.line(mutedStyle, "Done in %.2fs", elapsed.Seconds())
}

// TargetExists prints the collision message for name.
func (c *console) TargetExists(name string) {
	c.line(errorStyle, "✖ The folder %q already exists. Choose another name.", name)
}

// Error prints err as a failure line.
func (c *console) Error(err error) {
	c.line(errorStyle, "✖ %v", err)
}
