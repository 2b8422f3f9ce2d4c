// Package hypermedia implements the entity data model of the hypermedia
// metadata format: a tagged-variant tree of content-addressed file-system
// entities (Container, Directory, File, Block) with a bottom-up Keccak-512
// hash chain over entity metadata and child digests.
//
// Entities are immutable after construction except for two write-once
// transitions: SetHash (every kind) and SetTopic (Container only). Both
// refuse a second attempt with an AlreadySet error, making every finalized
// digest an immutable fingerprint of its entire subtree.
package hypermedia

import (
	"fmt"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/charset"
)

// Kind identifies an entity variant.
type Kind int

const (
	// KindContainer is a root or nested hypermedia document node
	KindContainer Kind = iota

	// KindDirectory is an OS-style folder
	KindDirectory

	// KindFile is a regular file, single-block or split into Blocks
	KindFile

	// KindBlock is a leaf fragment of a multi-block File
	KindBlock
)

// String returns the kind name used in logs and error messages.
func (k Kind) String() string {
	switch k {
	case KindContainer:
		return "container"
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	case KindBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Entity is the capability shared by every node of a hypermedia tree.
//
// Parent links are back-references used for path derivation and encoding
// inheritance; they are never ownership edges. The owning direction is the
// child collections held by Container, Directory and File.
type Entity interface {
	// Kind returns the entity variant
	Kind() Kind

	// Path returns the entity's path, or "" for the document root (the
	// only entity without a path)
	Path() string

	// Name returns the human-readable name, or "" for Blocks (the only
	// entities without a name)
	Name() string

	// Size returns the entity size: the sum of descendant sizes
	Size() uint64

	// Hash returns the finalized digest as uppercase hex, or "" while the
	// write-once hash transition has not happened yet
	Hash() string

	// Parent returns the parent back-reference, or nil for the root
	Parent() Entity

	// SetHash performs the write-once hash transition. Blocks and
	// single-block Files require the content bytes; every other kind
	// requires nil content and digests its name plus its children's
	// already-finalized digests. A second call fails with AlreadySet.
	SetHash(content []byte) error
}

// MaxNameLength bounds entity names (code points).
const MaxNameLength = 255

// ValidateName checks the shared 1-255 code point bound on entity names.
func ValidateName(name string) error {
	n := len([]rune(name))
	if n == 0 {
		return &FormatError{Code: ErrAttributeDomain, Message: "entity name must not be empty"}
	}
	if n > MaxNameLength {
		return &FormatError{Code: ErrAttributeDomain, Message: fmt.Sprintf("entity name exceeds %d code points", MaxNameLength)}
	}
	return nil
}

// childPath derives an entity's path from its parent's path and its name.
// The document root has no path, so its direct children live at "/<name>".
func childPath(parent Entity, name string) string {
	if parent == nil {
		return "/" + name
	}
	return parent.Path() + "/" + name
}

// ownerCharset resolves the text encoding governing an entity's name bytes
// by walking the parent chain to the owning Container. Detached subtrees
// fall back to UTF-8, the format default.
func ownerCharset(e Entity) charset.Charset {
	for cur := e; cur != nil; cur = cur.Parent() {
		if c, ok := cur.(*Container); ok {
			return c.Charset()
		}
	}
	return charset.UTF8
}

// treeDigest computes the Merkle-style digest of an inner node: the node's
// name in the document encoding concatenated with the UTF-8 bytes of each
// child's rendered digest, in declared child order.
//
// Every child must already be hashed; the bottom-up evaluation order is a
// hard precondition, not a convenience.
func treeDigest(name string, cs charset.Charset, children []Entity) (string, error) {
	nameBytes, err := cs.Bytes(name)
	if err != nil {
		return "", fmt.Errorf("encode name for hashing: %w", err)
	}

	payload := make([]byte, 0, len(nameBytes)+len(children)*DigestHexLen)
	payload = append(payload, nameBytes...)
	for i, child := range children {
		h := child.Hash()
		if h == "" {
			return "", fmt.Errorf("child %d (%s) has no hash yet; children must be hashed bottom-up", i, child.Kind())
		}
		payload = append(payload, h...)
	}

	return DigestHex(Keccak512(payload)), nil
}
