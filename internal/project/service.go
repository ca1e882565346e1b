package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/inamate/transformer/internal/collab"
	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/raster"
	"github.com/inamate/transformer/internal/store"
	"github.com/inamate/transformer/internal/typeid"
)

// PlaygroundID is the shared project open to anonymous users.
const PlaygroundID = "proj_playground"

var (
	ErrNotFound  = errors.New("project not found")
	ErrInvalidID = errors.New("invalid project id")
	ErrNoStore   = errors.New("snapshots are not persisted")
)

// Snapshots is the persistence the service reads history from.
type Snapshots interface {
	Latest(ctx context.Context, projectID string) (*store.Snapshot, error)
	Save(ctx context.Context, projectID string, doc []byte) (*store.Snapshot, error)
}

type Service struct {
	hub          *collab.Hub
	snapshots    Snapshots
	previewScale float64
}

// NewService creates a project service. snapshots may be nil when documents
// live in memory only.
func NewService(hub *collab.Hub, snapshots Snapshots, previewScale float64) *Service {
	return &Service{hub: hub, snapshots: snapshots, previewScale: previewScale}
}

type Project struct {
	ID      string `json:"id"`
	Version int32  `json:"version,omitempty"`
}

// ValidateID accepts the playground and typeid project IDs.
func ValidateID(projectID string) error {
	if projectID == PlaygroundID {
		return nil
	}
	if err := typeid.Validate(projectID, typeid.PrefixProject); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	return nil
}

// Create starts a project from the sample document.
func (s *Service) Create(ctx context.Context) (*Project, error) {
	projectID := typeid.NewProjectID()
	if s.snapshots == nil {
		return &Project{ID: projectID}, nil
	}

	docJSON, err := json.Marshal(document.NewSampleDocument(projectID))
	if err != nil {
		return nil, fmt.Errorf("marshal sample document: %w", err)
	}
	snap, err := s.snapshots.Save(ctx, projectID, docJSON)
	if err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}
	return &Project{ID: projectID, Version: snap.Version}, nil
}

// Document returns the live document of a project.
func (s *Service) Document(projectID string) (*collab.DocSyncPayload, error) {
	state, err := s.state(projectID)
	if err != nil {
		return nil, err
	}
	snap, err := state.Sync()
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return &snap, nil
}

// Gizmo returns the project's shared gizmo state.
func (s *Service) Gizmo(projectID string) (*collab.GizmoStatePayload, error) {
	state, err := s.state(projectID)
	if err != nil {
		return nil, err
	}
	g := state.GizmoState()
	return &g, nil
}

// Preview writes a PNG of the scene with the gizmo overlay.
func (s *Service) Preview(w io.Writer, projectID string) error {
	state, err := s.state(projectID)
	if err != nil {
		return err
	}
	scene := state.Scene()
	r := raster.New(raster.Options{
		Width:      scene.Width,
		Height:     scene.Height,
		Scale:      s.previewScale,
		Background: scene.Background,
	})
	if err := r.EncodePNG(w, state.Render()); err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	return nil
}

// LatestSnapshot returns the last saved version of a project.
func (s *Service) LatestSnapshot(ctx context.Context, projectID string) (*store.Snapshot, error) {
	if err := ValidateID(projectID); err != nil {
		return nil, err
	}
	if s.snapshots == nil {
		return nil, ErrNoStore
	}
	snap, err := s.snapshots.Latest(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	return snap, nil
}

func (s *Service) state(projectID string) (*collab.DocumentState, error) {
	if err := ValidateID(projectID); err != nil {
		return nil, err
	}
	return s.hub.DocumentState(projectID)
}
