// Package store defines the document store abstraction for serialized
// hypermedia documents.
//
// A document store keeps encoded container documents keyed by their root
// digest. Three implementations are provided:
//   - memory: volatile map-backed store for tests and ephemeral use
//   - badger: persistent embedded store backed by BadgerDB
//   - s3: remote store backed by Amazon S3 or S3-compatible storage
//
// All implementations are safe for concurrent use and respect context
// cancellation on every operation.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/format"
)

// ErrNotFound is returned when no document exists for the requested digest
// or topic.
var ErrNotFound = errors.New("document not found")

// Document is a stored hypermedia document: the serialized text plus the
// indexed attributes used for lookups and listings.
type Document struct {
	// Hash is the root container digest, the primary key
	Hash string

	// Topic is the root container's pubsub topic, "" when never set
	Topic string

	// Version is the document's format version tag
	Version string

	// Name is the root container name
	Name string

	// Size is the total content size the document describes
	Size uint64

	// StoredAt is when the document was written to the store
	StoredAt time.Time

	// Text is the serialized document
	Text string
}

// DocumentStore is the persistence interface for serialized documents.
type DocumentStore interface {
	// Put stores a document, overwriting any previous document with the
	// same hash
	Put(ctx context.Context, doc *Document) error

	// Get retrieves a document by its root digest
	Get(ctx context.Context, hash string) (*Document, error)

	// GetByTopic retrieves a document by its pubsub topic
	GetByTopic(ctx context.Context, topic string) (*Document, error)

	// Exists reports whether a document with the given digest is stored
	Exists(ctx context.Context, hash string) (bool, error)

	// List returns the digests of all stored documents
	List(ctx context.Context) ([]string, error)

	// Delete removes a document; deleting an absent document is not an
	// error
	Delete(ctx context.Context, hash string) error

	// Close releases the store's resources
	Close() error
}

// NewDocument encodes a finalized container into a storable document.
//
// The container must carry its root digest: an unhashed document has no
// storage key.
func NewDocument(c *hypermedia.Container) (*Document, error) {
	if c.Hash() == "" {
		return nil, fmt.Errorf("document requires a finalized root hash")
	}

	f, err := format.Lookup(c.Version())
	if err != nil {
		return nil, err
	}
	text, err := f.EncodeContainer(c)
	if err != nil {
		return nil, fmt.Errorf("encode document %q: %w", c.Name(), err)
	}

	return &Document{
		Hash:     c.Hash(),
		Topic:    c.Topic(),
		Version:  c.Version(),
		Name:     c.Name(),
		Size:     c.Size(),
		StoredAt: time.Now().UTC(),
		Text:     text,
	}, nil
}

// Decode reconstructs the entity tree from the stored text, dispatching on
// the embedded version tag.
func (d *Document) Decode() (*hypermedia.Container, error) {
	return format.DecodeAny(d.Text, nil)
}
