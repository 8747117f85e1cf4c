// Package audit records generation runs in the history store.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/fentz26/thiz/internal/models"
	"github.com/fentz26/thiz/internal/scaffold"
	"github.com/fentz26/thiz/internal/store"
)

// Recorder writes one history entry per generation run.
type Recorder struct {
	store *store.Store
}

// NewRecorder creates a new Recorder.
func NewRecorder(s *store.Store) *Recorder {
	return &Recorder{store: s}
}

// Record stores the outcome of a pipeline run. runErr is the error returned
// by Pipeline.Run, if any.
func (r *Recorder) Record(ctx context.Context, req scaffold.Request, res *scaffold.Result, runErr error) (*models.Generation, error) {
	g := &models.Generation{
		ID:         res.ID,
		Name:       req.Name,
		Target:     res.Target,
		Template:   req.TemplateRoot,
		InputsHash: hashInputs(inputs{Name: req.Name, Template: req.TemplateRoot}),
		Outcome:    res.Outcome,
		EnvCreated: res.EnvCreated,
		Installed:  res.Installed,
		Advisory:   res.Advisory,
		Elapsed:    res.Elapsed,
		CreatedAt:  res.StartedAt,
	}
	if runErr != nil {
		g.Error = runErr.Error()
	}
	if err := r.store.RecordGeneration(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

type inputs struct {
	Name     string `json:"name"`
	Template string `json:"template"`
}

// hashInputs creates a SHA256 hash of the inputs for reproducibility.
func hashInputs(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
