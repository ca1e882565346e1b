package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/transformer/internal/document"
	"github.com/inamate/transformer/internal/typeid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool)
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestLatestMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Latest(context.Background(), typeid.NewProjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveIncrementsVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	projectID := typeid.NewProjectID()

	first, err := s.Save(ctx, projectID, []byte(`{"v":1}`))
	require.NoError(t, err)
	second, err := s.Save(ctx, projectID, []byte(`{"v":2}`))
	require.NoError(t, err)

	assert.Equal(t, int32(1), first.Version)
	assert.Equal(t, int32(2), second.Version)

	latest, err := s.Latest(ctx, projectID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.JSONEq(t, `{"v":2}`, string(latest.Document))
}

func TestDocumentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	projectID := typeid.NewProjectID()
	doc := document.NewSampleDocument(projectID)

	require.NoError(t, s.SaveDocument(projectID, doc))
	loaded, err := s.LoadDocument(projectID)
	require.NoError(t, err)
	assert.Equal(t, doc.Project.ID, loaded.Project.ID)
	assert.Len(t, loaded.Objects, len(doc.Objects))
}
