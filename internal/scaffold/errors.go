package scaffold

import (
	"errors"
	"fmt"
)

// Sentinel errors for generation failures.
var (
	ErrInvalidRequest      = errors.New("invalid generation request")
	ErrTargetExists        = errors.New("target already exists")
	ErrCopyFailed          = errors.New("template copy failed")
	ErrMetadataPatchFailed = errors.New("metadata patch failed")
	ErrInstallFailed       = errors.New("dependency installation failed")
)

// StepError reports the step that failed, the path involved and the cause.
// It matches both its Kind sentinel and the cause with errors.Is.
type StepError struct {
	Step Step
	Kind error
	Path string
	Err  error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *StepError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
