package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fentz26/thiz/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")

	s, err := New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file was not created")
	assert.NoError(t, s.Ping(context.Background()))
}

func TestNew_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.RecordGeneration(ctx, &models.Generation{ID: "g1", Name: "app", Outcome: models.OutcomeSuccess}))
	require.NoError(t, s.Close())

	s, err = New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	g, err := s.GetGeneration(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "app", g.Name)
}

func TestRecordAndGetGeneration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	in := &models.Generation{
		Name:       "my-app",
		Target:     "/work/my-app",
		Template:   "embedded",
		InputsHash: "abc123",
		Outcome:    models.OutcomeSuccess,
		EnvCreated: true,
		Installed:  false,
		Advisory:   "npm install exited with status 1",
		Elapsed:    1500 * time.Millisecond,
		CreatedAt:  created,
	}
	require.NoError(t, s.RecordGeneration(ctx, in))
	require.NotEmpty(t, in.ID)

	got, err := s.GetGeneration(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.Target, got.Target)
	assert.Equal(t, in.Template, got.Template)
	assert.Equal(t, in.InputsHash, got.InputsHash)
	assert.Equal(t, models.OutcomeSuccess, got.Outcome)
	assert.True(t, got.EnvCreated)
	assert.False(t, got.Installed)
	assert.Equal(t, in.Advisory, got.Advisory)
	assert.Empty(t, got.Error)
	assert.Equal(t, 1500*time.Millisecond, got.Elapsed)
	assert.True(t, created.Equal(got.CreatedAt), "created_at %v != %v", got.CreatedAt, created)
}

func TestGetGeneration_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetGeneration(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordGeneration_DuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordGeneration(ctx, &models.Generation{ID: "dup", Name: "a", Outcome: models.OutcomeSuccess}))
	err := s.RecordGeneration(ctx, &models.Generation{ID: "dup", Name: "b", Outcome: models.OutcomeSuccess})
	assert.Error(t, err)
}

func TestListGenerations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	outcomes := []models.Outcome{
		models.OutcomeSuccess,
		models.OutcomeTargetExists,
		models.OutcomeCopyFailed,
	}
	for i, o := range outcomes {
		g := &models.Generation{
			Name:      "app",
			Outcome:   o,
			Error:     string(o),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.RecordGeneration(ctx, g))
	}

	all, err := s.ListGenerations(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.OutcomeCopyFailed, all[0].Outcome, "newest first")
	assert.Equal(t, models.OutcomeSuccess, all[2].Outcome)

	limited, err := s.ListGenerations(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, models.OutcomeTargetExists, limited[1].Outcome)
}

func TestListGenerations_Empty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.ListGenerations(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
