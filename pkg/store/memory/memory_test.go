package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/store"
)

func testDocument(hash, topic string) *store.Document {
	return &store.Document{
		Hash:     hash,
		Topic:    topic,
		Version:  "hypermedia/0.1.0",
		Name:     "demo",
		Size:     42,
		StoredAt: time.Unix(1724500000, 0).UTC(),
		Text:     "{...}",
	}
}

// ============================================================================
// Round trip
// ============================================================================

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewMemoryDocumentStore(ctx)
	require.NoError(t, err)
	defer s.Close()

	doc := testDocument("ABC123", "demo_ABC123")
	require.NoError(t, s.Put(ctx, doc))

	t.Run("get by hash", func(t *testing.T) {
		got, err := s.Get(ctx, "ABC123")
		require.NoError(t, err)
		assert.Equal(t, doc, got)
	})

	t.Run("get by topic", func(t *testing.T) {
		got, err := s.GetByTopic(ctx, "demo_ABC123")
		require.NoError(t, err)
		assert.Equal(t, doc, got)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := s.Exists(ctx, "ABC123")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.Exists(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("list", func(t *testing.T) {
		hashes, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"ABC123"}, hashes)
	})

	t.Run("returned document is a copy", func(t *testing.T) {
		got, err := s.Get(ctx, "ABC123")
		require.NoError(t, err)
		got.Name = "mutated"

		again, err := s.Get(ctx, "ABC123")
		require.NoError(t, err)
		assert.Equal(t, "demo", again.Name)
	})
}

// ============================================================================
// Missing documents
// ============================================================================

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	s, err := NewMemoryDocumentStore(ctx)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetByTopic(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// ============================================================================
// Delete and overwrite
// ============================================================================

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewMemoryDocumentStore(ctx)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(ctx, testDocument("ABC123", "demo_ABC123")))

	t.Run("removes document and topic index", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "ABC123"))

		_, err := s.Get(ctx, "ABC123")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.GetByTopic(ctx, "demo_ABC123")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("deleting absent document is a no-op", func(t *testing.T) {
		assert.NoError(t, s.Delete(ctx, "ABC123"))
	})
}

func TestMemoryStoreOverwriteUpdatesTopicIndex(t *testing.T) {
	ctx := context.Background()
	s, err := NewMemoryDocumentStore(ctx)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(ctx, testDocument("ABC123", "old_ABC123")))
	require.NoError(t, s.Put(ctx, testDocument("ABC123", "new_ABC123")))

	_, err = s.GetByTopic(ctx, "old_ABC123")
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.GetByTopic(ctx, "new_ABC123")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", got.Hash)
}

// ============================================================================
// Context handling
// ============================================================================

func TestMemoryStoreRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, err := NewMemoryDocumentStore(ctx)
	require.NoError(t, err)
	defer s.Close()

	cancel()

	assert.ErrorIs(t, s.Put(ctx, testDocument("ABC123", "")), context.Canceled)
	_, err = s.Get(ctx, "ABC123")
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
