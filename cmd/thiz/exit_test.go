package main

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/fentz26/thiz/internal/portbind"
	"github.com/fentz26/thiz/internal/scaffold"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"usage", usageError{errors.New("accepts 1 arg(s)")}, exitFailure},
		{"reported usage", reported{usageError{errors.New("no project name provided")}}, exitFailure},
		{"config", configError{errors.New("invalid log_level")}, exitConfig},
		{"target exists", &scaffold.StepError{Step: scaffold.StepGuard, Kind: scaffold.ErrTargetExists, Path: "/x"}, exitFailure},
		{"invalid request", &scaffold.StepError{Step: scaffold.StepGuard, Kind: scaffold.ErrInvalidRequest}, exitFailure},
		{"copy", &scaffold.StepError{Step: scaffold.StepMaterialize, Kind: scaffold.ErrCopyFailed, Err: fs.ErrPermission}, exitCopy},
		{"metadata", reported{&scaffold.StepError{Step: scaffold.StepMetadata, Kind: scaffold.ErrMetadataPatchFailed}}, exitMetadata},
		{"bind fatal", fmt.Errorf("%w: port 80: permission denied", portbind.ErrBindFailed), exitBind},
		{"no free port", fmt.Errorf("%w: 100 ports tried", portbind.ErrNoFreePort), exitBind},
		{"other", errors.New("boom"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
