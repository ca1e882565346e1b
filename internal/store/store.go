// Package store persists document snapshots in PostgreSQL.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/typeid"
)

var ErrNotFound = errors.New("snapshot not found")

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL,
	version    INTEGER NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (project_id, version)
)`

// Snapshot is one saved version of a project's document.
type Snapshot struct {
	ID        string          `json:"id"`
	ProjectID string          `json:"projectId"`
	Version   int32           `json:"version"`
	Document  json.RawMessage `json:"document"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewPool connects to databaseURL and verifies the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the snapshots table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Latest returns the highest version saved for projectID.
func (s *Store) Latest(ctx context.Context, projectID string) (*Snapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, project_id, version, document, created_at
		FROM snapshots
		WHERE project_id = $1
		ORDER BY version DESC
		LIMIT 1`, projectID)

	var snap Snapshot
	err := row.Scan(&snap.ID, &snap.ProjectID, &snap.Version, &snap.Document, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	return &snap, nil
}

// Save stores doc as the next version of projectID.
func (s *Store) Save(ctx context.Context, projectID string, doc []byte) (*Snapshot, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO snapshots (id, project_id, version, document)
		SELECT $1, $2, COALESCE(MAX(version), 0) + 1, $3
		FROM snapshots
		WHERE project_id = $2
		RETURNING id, project_id, version, document, created_at`,
		typeid.NewSnapshotID(), projectID, doc)

	var snap Snapshot
	if err := row.Scan(&snap.ID, &snap.ProjectID, &snap.Version, &snap.Document, &snap.CreatedAt); err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}
	return &snap, nil
}

// LoadDocument decodes the latest snapshot of projectID. It runs in the hub
// goroutine, so it uses a background context.
func (s *Store) LoadDocument(projectID string) (*document.InDocument, error) {
	snap, err := s.Latest(context.Background(), projectID)
	if err != nil {
		return nil, err
	}
	doc, err := document.Parse(snap.Document)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", snap.ID, err)
	}
	return doc, nil
}

// SaveDocument writes doc as a new snapshot.
func (s *Store) SaveDocument(projectID string, doc *document.InDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	_, err = s.Save(context.Background(), projectID, data)
	return err
}
