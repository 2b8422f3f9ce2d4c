// Package builder assembles finalized hypermedia documents from raw
// content.
//
// The entity constructors in pkg/hypermedia take already-shaped trees and
// enforce the bottom-up hashing order; the builder sits on top and handles
// the mechanics: splitting file content into blocks, remembering the bytes
// each leaf needs at hash time, and running the hash and topic transitions
// in the right order once the tree is complete.
package builder

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/charset"
	v1 "github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/format/v1"
)

// DefaultBlockSize is the content split size used when none is configured.
const DefaultBlockSize = 256 * 1024

// Builder accumulates entities and the content bytes their digests are
// computed from, then finalizes the whole tree in Container.
//
// A Builder is single-use per document and not safe for concurrent use.
type Builder struct {
	// Version is the format version tag for the produced container
	Version string

	// BlockSize is the split threshold: content larger than this becomes a
	// multi-block file with BlockSize-sized blocks
	BlockSize uint64

	// CreatedBy identifies the document creator
	CreatedBy string

	// CreatorPeer is the optional creator network address
	CreatorPeer string

	// Charset is the document text encoding
	Charset charset.Charset

	// now is the clock, replaceable in tests
	now func() time.Time

	// contents remembers the bytes each leaf digests when the tree is
	// finalized
	contents map[hypermedia.Entity][]byte
}

// New creates a builder with defaults: the current format version, the
// default block size, a random UUID creator identity and UTF-8 text.
func New() *Builder {
	return &Builder{
		Version:   v1.Version,
		BlockSize: DefaultBlockSize,
		CreatedBy: uuid.NewString(),
		Charset:   charset.UTF8,
		now:       time.Now,
		contents:  make(map[hypermedia.Entity][]byte),
	}
}

// FileFromBytes creates an unhashed file from raw content.
//
// Content up to BlockSize becomes a single-block file; anything larger is
// split into BlockSize-sized blocks (the last block carries the remainder).
// The content bytes are retained until Container finalizes the tree.
func (b *Builder) FileFromBytes(name, extension string, content []byte) (*hypermedia.File, error) {
	if b.contents == nil {
		b.contents = make(map[hypermedia.Entity][]byte)
	}

	blockSize := b.BlockSize
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}

	if uint64(len(content)) <= blockSize {
		f, err := hypermedia.NewFile(name, extension, nil, nil, true, nil, uint64(len(content)))
		if err != nil {
			return nil, err
		}
		if content == nil {
			// zero-byte files still digest their (empty) content
			content = []byte{}
		}
		b.contents[f] = content
		return f, nil
	}

	var blocks []*hypermedia.Block
	for off := uint64(0); off < uint64(len(content)); off += blockSize {
		end := off + blockSize
		if end > uint64(len(content)) {
			end = uint64(len(content))
		}
		block := hypermedia.NewBlock(end - off)
		b.contents[block] = content[off:end]
		blocks = append(blocks, block)
	}

	return hypermedia.NewFile(name, extension, nil, nil, false, blocks, 0)
}

// Directory creates an unhashed directory owning the given children.
func (b *Builder) Directory(name string, children []hypermedia.Entity) (*hypermedia.Directory, error) {
	return hypermedia.NewDirectory(name, nil, nil, children)
}

// Container assembles the root container and finalizes the document:
// every entity is hashed bottom-up and the root receives its topic.
//
// Children that already carry a digest (nested containers built elsewhere)
// are left untouched.
func (b *Builder) Container(name string, children []hypermedia.Entity) (*hypermedia.Container, error) {
	now := b.now
	if now == nil {
		now = time.Now
	}

	c, err := hypermedia.NewContainer(hypermedia.ContainerOptions{
		Name:        name,
		Charset:     b.Charset,
		Created:     now(),
		CreatedBy:   b.CreatedBy,
		CreatorPeer: b.CreatorPeer,
		Version:     b.Version,
	}, children)
	if err != nil {
		return nil, err
	}

	if err := b.finalize(c); err != nil {
		return nil, err
	}
	if err := c.SetTopic(); err != nil {
		return nil, err
	}
	return c, nil
}

// finalize hashes the subtree rooted at e in post-order. Already-hashed
// subtrees are skipped; leaves take their retained content bytes.
func (b *Builder) finalize(e hypermedia.Entity) error {
	if e.Hash() != "" {
		return nil
	}

	switch node := e.(type) {
	case *hypermedia.Container:
		for _, child := range node.Entities() {
			if err := b.finalize(child); err != nil {
				return err
			}
		}
		return node.SetHash(nil)

	case *hypermedia.Directory:
		for _, child := range node.Entities() {
			if err := b.finalize(child); err != nil {
				return err
			}
		}
		return node.SetHash(nil)

	case *hypermedia.File:
		if node.IsSingleBlock() {
			content, ok := b.contents[node]
			if !ok {
				return fmt.Errorf("no content retained for file %s", node.Path())
			}
			return node.SetHash(content)
		}
		for _, block := range node.Blocks() {
			if err := b.finalize(block); err != nil {
				return err
			}
		}
		return node.SetHash(nil)

	case *hypermedia.Block:
		content, ok := b.contents[node]
		if !ok {
			return fmt.Errorf("no content retained for block %s", node.Path())
		}
		return node.SetHash(content)

	default:
		return fmt.Errorf("unexpected entity kind %s", e.Kind())
	}
}
