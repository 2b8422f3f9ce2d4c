// Package memory implements an in-memory document store.
//
// The store keeps every document in a map guarded by a read-write mutex.
// It is designed for tests, development and ephemeral deployments; all data
// is lost when the process exits.
package memory

import (
	"context"
	"sync"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/store"
)

// MemoryDocumentStore implements store.DocumentStore using in-memory maps.
//
// Thread Safety:
// All operations are protected by a sync.RWMutex. Documents are copied on
// read and write so callers can never mutate stored state through a shared
// pointer.
type MemoryDocumentStore struct {
	// docs holds documents keyed by root digest
	docs map[string]store.Document

	// byTopic maps topics to digests for topic lookups
	byTopic map[string]string

	// mu protects both maps
	mu sync.RWMutex
}

// NewMemoryDocumentStore creates an empty in-memory document store.
func NewMemoryDocumentStore(ctx context.Context) (*MemoryDocumentStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &MemoryDocumentStore{
		docs:    make(map[string]store.Document),
		byTopic: make(map[string]string),
	}, nil
}

// Put stores a document, overwriting any previous one with the same hash.
func (s *MemoryDocumentStore) Put(ctx context.Context, doc *store.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, exists := s.docs[doc.Hash]; exists && old.Topic != "" {
		delete(s.byTopic, old.Topic)
	}

	s.docs[doc.Hash] = *doc
	if doc.Topic != "" {
		s.byTopic[doc.Topic] = doc.Hash
	}
	return nil
}

// Get retrieves a document by its root digest.
func (s *MemoryDocumentStore) Get(ctx context.Context, hash string) (*store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[hash]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := doc
	return &out, nil
}

// GetByTopic retrieves a document by its pubsub topic.
func (s *MemoryDocumentStore) GetByTopic(ctx context.Context, topic string) (*store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hash, ok := s.byTopic[topic]
	if !ok {
		return nil, store.ErrNotFound
	}
	doc := s.docs[hash]
	out := doc
	return &out, nil
}

// Exists reports whether a document with the given digest is stored.
func (s *MemoryDocumentStore) Exists(ctx context.Context, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.docs[hash]
	return ok, nil
}

// List returns the digests of all stored documents.
func (s *MemoryDocumentStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hashes := make([]string, 0, len(s.docs))
	for hash := range s.docs {
		hashes = append(hashes, hash)
	}
	return hashes, nil
}

// Delete removes a document. Deleting an absent document is a no-op.
func (s *MemoryDocumentStore) Delete(ctx context.Context, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if doc, ok := s.docs[hash]; ok {
		if doc.Topic != "" {
			delete(s.byTopic, doc.Topic)
		}
		delete(s.docs, hash)
	}
	return nil
}

// Close releases the store. For the memory store this drops all data.
func (s *MemoryDocumentStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = make(map[string]store.Document)
	s.byTopic = make(map[string]string)
	return nil
}
