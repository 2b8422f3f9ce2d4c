// Package badger implements a persistent document store backed by BadgerDB.
//
// Documents are stored under namespaced keys:
//
//	Data Type        Prefix   Key Format        Value
//	=====================================================================
//	Documents        "d:"     d:<hash>          documentRecord (XDR)
//	Topic Index      "t:"     t:<topic>         hash (raw bytes)
//
// Point lookups by digest and by topic are both O(1); listings are a range
// scan over the "d:" namespace.
package badger

import (
	"context"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/store"
)

// Key namespace prefixes.
const (
	docPrefix   = "d:"
	topicPrefix = "t:"
)

// BadgerDocumentStore implements store.DocumentStore using BadgerDB for
// persistence. It is suitable for deployments where documents must survive
// restarts. BadgerDB's internal MVCC makes the store safe for concurrent
// use without additional locking.
type BadgerDocumentStore struct {
	db *badger.DB
}

// Config contains configuration for the BadgerDB document store.
type Config struct {
	// Path is the directory where BadgerDB stores its files; it is created
	// if missing
	Path string `mapstructure:"path"`

	// BlockCacheSizeMB is BadgerDB's block cache size in MB (default: 64)
	BlockCacheSizeMB int64 `mapstructure:"block_cache_size_mb"`

	// IndexCacheSizeMB is BadgerDB's index cache size in MB (default: 32)
	IndexCacheSizeMB int64 `mapstructure:"index_cache_size_mb"`
}

// NewBadgerDocumentStore opens (or creates) a BadgerDB document store at
// the configured path.
func NewBadgerDocumentStore(ctx context.Context, cfg Config) (*BadgerDocumentStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("badger store requires a database path")
	}

	opts := badger.DefaultOptions(cfg.Path)
	// Documents are already compact text; compression overhead is not worth
	// it for this workload.
	opts = opts.WithLoggingLevel(badger.WARNING)
	opts = opts.WithCompression(options.None)

	blockCacheMB := cfg.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 64
	}
	indexCacheMB := cfg.IndexCacheSizeMB
	if indexCacheMB == 0 {
		indexCacheMB = 32
	}
	opts = opts.WithBlockCacheSize(blockCacheMB << 20)
	opts = opts.WithIndexCacheSize(indexCacheMB << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store at %s: %w", cfg.Path, err)
	}
	return &BadgerDocumentStore{db: db}, nil
}

func docKey(hash string) []byte   { return []byte(docPrefix + hash) }
func topicKey(topic string) []byte { return []byte(topicPrefix + topic) }

// Put stores a document in a single transaction, updating the topic index
// when the previous document under the same hash carried a different topic.
func (s *BadgerDocumentStore) Put(ctx context.Context, doc *store.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoded, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if old, err := readDocument(txn, doc.Hash); err == nil && old.Topic != "" && old.Topic != doc.Topic {
			if err := txn.Delete(topicKey(old.Topic)); err != nil {
				return err
			}
		}

		if err := txn.Set(docKey(doc.Hash), encoded); err != nil {
			return err
		}
		if doc.Topic != "" {
			return txn.Set(topicKey(doc.Topic), []byte(doc.Hash))
		}
		return nil
	})
}

// Get retrieves a document by its root digest.
func (s *BadgerDocumentStore) Get(ctx context.Context, hash string) (*store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc *store.Document
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		doc, err = readDocument(txn, hash)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetByTopic retrieves a document through the topic index.
func (s *BadgerDocumentStore) GetByTopic(ctx context.Context, topic string) (*store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc *store.Document
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(topicKey(topic))
		if err == badger.ErrKeyNotFound {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}

		hash, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		doc, err = readDocument(txn, string(hash))
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Exists reports whether a document with the given digest is stored.
func (s *BadgerDocumentStore) Exists(ctx context.Context, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	exists := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(docKey(hash))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}

// List returns the digests of all stored documents via a key-only range
// scan over the document namespace.
func (s *BadgerDocumentStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var hashes []string
	err := s.db.View(func(txn *badger.Txn) error {
		itOpts := badger.DefaultIteratorOptions
		itOpts.PrefetchValues = false
		itOpts.Prefix = []byte(docPrefix)

		it := txn.NewIterator(itOpts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			hashes = append(hashes, strings.TrimPrefix(key, docPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hashes, nil
}

// Delete removes a document and its topic index entry. Deleting an absent
// document is a no-op.
func (s *BadgerDocumentStore) Delete(ctx context.Context, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		doc, err := readDocument(txn, hash)
		if err == store.ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		if doc.Topic != "" {
			if err := txn.Delete(topicKey(doc.Topic)); err != nil {
				return err
			}
		}
		return txn.Delete(docKey(hash))
	})
}

// Close closes the underlying BadgerDB database.
func (s *BadgerDocumentStore) Close() error {
	return s.db.Close()
}

// readDocument fetches and decodes a document inside a transaction.
func readDocument(txn *badger.Txn, hash string) (*store.Document, error) {
	item, err := txn.Get(docKey(hash))
	if err == badger.ErrKeyNotFound {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return decodeDocument(raw)
}
