// Package models defines the core domain types for thiz.
package models

import "time"

// Outcome is the top-level result of a generation run.
type Outcome string

const (
	OutcomeSuccess             Outcome = "success"
	OutcomeInvalidRequest      Outcome = "invalid_request"
	OutcomeTargetExists        Outcome = "target_exists"
	OutcomeCopyFailed          Outcome = "copy_failed"
	OutcomeMetadataPatchFailed Outcome = "metadata_patch_failed"
)

// Generation is a recorded generation run.
type Generation struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Target     string        `json:"target"`
	Template   string        `json:"template"`
	InputsHash string        `json:"inputs_hash"`
	Outcome    Outcome       `json:"outcome"`
	EnvCreated bool          `json:"env_created"`
	Installed  bool          `json:"installed"`
	Advisory   string        `json:"advisory,omitempty"`
	Error      string        `json:"error,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
	CreatedAt  time.Time     `json:"created_at"`
}
