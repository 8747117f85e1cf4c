// Package store provides SQLite-backed generation history for thiz.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fentz26/thiz/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultListLimit is used by ListGenerations when limit is not positive.
const DefaultListLimit = 20

// ErrNotFound is returned when a generation does not exist.
var ErrNotFound = errors.New("generation not found")

// Store provides access to the history database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS generations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		target TEXT NOT NULL,
		template TEXT NOT NULL,
		inputs_hash TEXT NOT NULL,
		outcome TEXT NOT NULL,
		env_created INTEGER NOT NULL DEFAULT 0,
		installed INTEGER NOT NULL DEFAULT 0,
		advisory TEXT,
		error TEXT,
		elapsed_ms INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at);
	CREATE INDEX IF NOT EXISTS idx_generations_outcome ON generations(outcome);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordGeneration inserts g. Empty ID and zero CreatedAt are filled in.
func (s *Store) RecordGeneration(ctx context.Context, g *models.Generation) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	g.CreatedAt = g.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generations (id, name, target, template, inputs_hash, outcome, env_created, installed, advisory, error, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.Target, g.Template, g.InputsHash, string(g.Outcome),
		g.EnvCreated, g.Installed, g.Advisory, g.Error, g.Elapsed.Milliseconds(), g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}

const generationColumns = `id, name, target, template, inputs_hash, outcome, env_created, installed, advisory, error, elapsed_ms, created_at`

// GetGeneration retrieves a generation by ID.
func (s *Store) GetGeneration(ctx context.Context, id string) (*models.Generation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+generationColumns+` FROM generations WHERE id = ?`, id)
	g, err := scanGeneration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query generation: %w", err)
	}
	return g, nil
}

// ListGenerations returns the most recent generations, newest first.
func (s *Store) ListGenerations(ctx context.Context, limit int) ([]models.Generation, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+generationColumns+` FROM generations ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var out []models.Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGeneration(sc scanner) (*models.Generation, error) {
	var (
		g         models.Generation
		outcome   string
		advisory  sql.NullString
		errText   sql.NullString
		elapsedMS int64
	)
	err := sc.Scan(&g.ID, &g.Name, &g.Target, &g.Template, &g.InputsHash, &outcome,
		&g.EnvCreated, &g.Installed, &advisory, &errText, &elapsedMS, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	g.Outcome = models.Outcome(outcome)
	g.Advisory = advisory.String
	g.Error = errText.String
	g.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	return &g, nil
}
