// Package scaffold materializes a project template into a new directory.
//
// A run is strictly ordered: guard, materialize, env, metadata, promote,
// install. Everything up to promote happens in a hidden staging directory
// next to the target, so a failure before promote leaves the target path
// untouched. Installation runs in the promoted directory and never fails
// the run; its error is returned as an advisory on the Result.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fentz26/thiz/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Step identifies a pipeline stage.
type Step string

const (
	StepGuard       Step = "guard"
	StepMaterialize Step = "materialize"
	StepEnv         Step = "env"
	StepMetadata    Step = "metadata"
	StepPromote     Step = "promote"
	StepInstall     Step = "install"
)

// Status is the state of a step reported to a Reporter.
type Status string

const (
	StatusStarted Status = "started"
	StatusDone    Status = "done"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Event is emitted for every step transition.
type Event struct {
	Step   Step
	Status Status
	Detail string
}

// Reporter receives step events in order.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

// Request describes one generation.
type Request struct {
	// Template is the read-only source tree.
	Template fs.FS
	// TemplateRoot names the template for history and logs.
	TemplateRoot string
	// Name is both the directory name and the package name.
	Name    string
	WorkDir string
}

// Target returns the path the project is generated at.
func (r Request) Target() string {
	return filepath.Join(r.WorkDir, r.Name)
}

// Options configures file names and metadata fields.
type Options struct {
	MetadataFile string
	EnvExample   string
	EnvFile      string
	ClearAuthor  bool
}

// DefaultOptions matches the layout of the embedded template.
func DefaultOptions() Options {
	return Options{
		MetadataFile: "package.json",
		EnvExample:   ".env.example",
		EnvFile:      ".env",
	}
}

// Result is returned by every run, successful or not.
type Result struct {
	ID         string
	Name       string
	Target     string
	Outcome    models.Outcome
	EnvCreated bool
	Installed  bool
	// Advisory is set when installation failed after a successful generation.
	Advisory  string
	StartedAt time.Time
	Elapsed   time.Duration
}

// Pipeline runs generation requests.
type Pipeline struct {
	opts      Options
	installer Installer
	reporter  Reporter
	log       logrus.FieldLogger

	now   func() time.Time
	newID func() string
}

// New creates a pipeline. A nil installer skips installation; a nil reporter
// discards events.
func New(opts Options, installer Installer, reporter Reporter, log logrus.FieldLogger) *Pipeline {
	if reporter == nil {
		reporter = ReporterFunc(func(Event) {})
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		opts:      opts,
		installer: installer,
		reporter:  reporter,
		log:       log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Run executes the pipeline. The returned Result is never nil and always
// carries the outcome and elapsed time.
func (p *Pipeline) Run(ctx context.Context, req Request) (res *Result, err error) {
	start := p.now()
	res = &Result{
		ID:        p.newID(),
		Name:      req.Name,
		Target:    req.Target(),
		StartedAt: start,
	}
	defer func() {
		res.Elapsed = p.now().Sub(start)
	}()

	log := p.log.WithFields(logrus.Fields{"run_id": res.ID, "target": res.Target})

	if req.Name == "" || req.Template == nil {
		res.Outcome = models.OutcomeInvalidRequest
		return res, &StepError{Step: StepGuard, Kind: ErrInvalidRequest, Path: res.Target,
			Err: errors.New("project name and template are required")}
	}

	p.reporter.Report(Event{Step: StepGuard, Status: StatusStarted})
	if err := p.guard(res.Target); err != nil {
		p.fail(res, StepGuard, err)
		return res, err
	}
	p.reporter.Report(Event{Step: StepGuard, Status: StatusDone})

	stage, err := p.stage(res)
	if err != nil {
		p.fail(res, StepMaterialize, err)
		return res, err
	}
	log.WithField("stage", stage).Debug("staging directory created")

	if err := p.build(req, res, stage); err != nil {
		if rmErr := os.RemoveAll(stage); rmErr != nil {
			log.WithError(rmErr).Warn("failed to remove staging directory")
		}
		return res, err
	}

	res.Outcome = models.OutcomeSuccess
	p.install(ctx, res, log)
	return res, nil
}

// guard fails if anything already exists at target.
func (p *Pipeline) guard(target string) error {
	_, err := os.Lstat(target)
	if err == nil {
		return &StepError{Step: StepGuard, Kind: ErrTargetExists, Path: target}
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return &StepError{Step: StepGuard, Kind: ErrCopyFailed, Path: target, Err: err}
	}
	return nil
}

// stage creates the hidden sibling directory the project is assembled in.
func (p *Pipeline) stage(res *Result) (string, error) {
	dir := filepath.Join(filepath.Dir(res.Target), fmt.Sprintf(".%s.thiz-%s", filepath.Base(res.Target), res.ID))
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", &StepError{Step: StepMaterialize, Kind: ErrCopyFailed, Path: dir, Err: err}
	}
	return dir, nil
}

// build fills the staging directory and promotes it to the target.
func (p *Pipeline) build(req Request, res *Result, stage string) error {
	p.reporter.Report(Event{Step: StepMaterialize, Status: StatusStarted})
	if err := CopyTree(req.Template, stage); err != nil {
		err = &StepError{Step: StepMaterialize, Kind: ErrCopyFailed, Path: req.TemplateRoot, Err: err}
		p.fail(res, StepMaterialize, err)
		return err
	}
	p.reporter.Report(Event{Step: StepMaterialize, Status: StatusDone})

	created, err := MaterializeEnv(stage, p.opts.EnvExample, p.opts.EnvFile)
	if err != nil {
		err = &StepError{Step: StepEnv, Kind: ErrCopyFailed, Path: p.opts.EnvExample, Err: err}
		p.fail(res, StepEnv, err)
		return err
	}
	res.EnvCreated = created
	if created {
		p.reporter.Report(Event{Step: StepEnv, Status: StatusDone, Detail: p.opts.EnvFile})
	} else {
		p.reporter.Report(Event{Step: StepEnv, Status: StatusSkipped, Detail: p.opts.EnvExample + " not found"})
	}

	p.reporter.Report(Event{Step: StepMetadata, Status: StatusStarted})
	patch := Patch{Name: req.Name, ClearAuthor: p.opts.ClearAuthor}
	if err := PatchMetadata(filepath.Join(stage, p.opts.MetadataFile), patch); err != nil {
		err = &StepError{Step: StepMetadata, Kind: ErrMetadataPatchFailed, Path: p.opts.MetadataFile, Err: err}
		p.fail(res, StepMetadata, err)
		return err
	}
	p.reporter.Report(Event{Step: StepMetadata, Status: StatusDone, Detail: p.opts.MetadataFile})

	p.reporter.Report(Event{Step: StepPromote, Status: StatusStarted})
	// the target may have appeared while staging
	if err := p.guard(res.Target); err != nil {
		p.fail(res, StepPromote, err)
		return err
	}
	if err := promote(stage, res.Target); err != nil {
		kind := ErrCopyFailed
		if errors.Is(err, fs.ErrExist) {
			kind = ErrTargetExists
		}
		err = &StepError{Step: StepPromote, Kind: kind, Path: res.Target, Err: err}
		p.fail(res, StepPromote, err)
		return err
	}
	p.reporter.Report(Event{Step: StepPromote, Status: StatusDone, Detail: res.Target})
	return nil
}

// install runs the installer in the promoted directory. Failure only sets
// res.Advisory.
func (p *Pipeline) install(ctx context.Context, res *Result, log logrus.FieldLogger) {
	if p.installer == nil {
		p.reporter.Report(Event{Step: StepInstall, Status: StatusSkipped})
		return
	}

	p.reporter.Report(Event{Step: StepInstall, Status: StatusStarted})
	if err := p.installer.Install(ctx, res.Target); err != nil {
		log.WithError(err).Warn("dependency installation failed")
		res.Advisory = err.Error()
		p.reporter.Report(Event{Step: StepInstall, Status: StatusFailed, Detail: err.Error()})
		return
	}
	res.Installed = true
	p.reporter.Report(Event{Step: StepInstall, Status: StatusDone})
}

func (p *Pipeline) fail(res *Result, step Step, err error) {
	res.Outcome = outcomeOf(err)
	p.reporter.Report(Event{Step: step, Status: StatusFailed, Detail: err.Error()})
}

func outcomeOf(err error) models.Outcome {
	switch {
	case errors.Is(err, ErrTargetExists):
		return models.OutcomeTargetExists
	case errors.Is(err, ErrMetadataPatchFailed):
		return models.OutcomeMetadataPatchFailed
	case errors.Is(err, ErrInvalidRequest):
		return models.OutcomeInvalidRequest
	default:
		return models.OutcomeCopyFailed
	}
}
