package main

import (
	"errors"

	"github.com/fentz26/thiz/internal/portbind"
	"github.com/fentz26/thiz/internal/scaffold"
)

// Process exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitConfig   = 2
	exitCopy     = 3
	exitMetadata = 4
	exitBind     = 5
)

// usageError is a malformed invocation: bad flags or arguments.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// configError is an unusable configuration file, flag value or template.
type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

// reported wraps an error the command already printed to the console.
type reported struct{ err error }

func (e reported) Error() string { return e.err.Error() }
func (e reported) Unwrap() error { return e.err }

// exitCode maps every error to a process exit code.
func exitCode(err error) int {
	var (
		usage usageError
		conf  configError
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &usage):
		return exitFailure
	case errors.As(err, &conf):
		return exitConfig
	case errors.Is(err, scaffold.ErrTargetExists), errors.Is(err, scaffold.ErrInvalidRequest):
		return exitFailure
	case errors.Is(err, scaffold.ErrMetadataPatchFailed):
		return exitMetadata
	case errors.Is(err, scaffold.ErrCopyFailed):
		return exitCopy
	case errors.Is(err, portbind.ErrBindFailed), errors.Is(err, portbind.ErrNoFreePort):
		return exitBind
	default:
		return exitFailure
	}
}
