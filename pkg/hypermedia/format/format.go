// Package format provides version dispatch for the hypermedia wire format.
//
// A registry maps the version tag embedded in every Container record to the
// Format implementation (grammar, validator, digest function) responsible
// for that revision. New revisions register additional implementations
// without modifying existing ones.
package format

import (
	"strings"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia"
)

// NoParent is the wire token standing in for an absent parent path: written
// when the serialized entity has no parent, or when its parent is the
// document root (the only entity without a path).
const NoParent = "null"

// Format is one revision of the hypermedia grammar.
//
// Encode and Decode are symmetric and mutually round-trippable per entity
// kind. The Valid predicates are pure, non-raising structural twins of the
// decoders: the identical grammar walk reporting a boolean instead of
// constructing entities or surfacing typed errors.
//
// Decode and Valid take the expected parent as a nullable path: nil for an
// entity with no parent (a document root), otherwise the parent's path
// (which is "" when the parent itself is the root). This lets the
// predicates run during scans where no parent entity has been constructed
// yet. ParentPathOf derives the value from an Entity.
type Format interface {
	// Version returns the version tag this implementation serves; it is
	// the registry key
	Version() string

	// Hasher returns the digest function used by this revision
	Hasher() hypermedia.HashFunc

	EncodeContainer(c *hypermedia.Container) (string, error)
	EncodeDirectory(d *hypermedia.Directory) (string, error)
	EncodeFile(f *hypermedia.File) (string, error)
	EncodeBlock(b *hypermedia.Block) (string, error)

	DecodeContainer(text string, parentPath *string) (*hypermedia.Container, error)
	DecodeDirectory(text string, parentPath *string) (*hypermedia.Directory, error)
	DecodeFile(text string, parentPath *string) (*hypermedia.File, error)
	DecodeBlock(text string, parentPath *string) (*hypermedia.Block, error)

	ValidContainer(text string, parentPath *string) bool
	ValidDirectory(text string, parentPath *string) bool
	ValidFile(text string, parentPath *string) bool
	ValidBlock(text string, parentPath *string) bool
}

// ParentPathOf derives the nullable parent path the Decode/Valid methods
// expect from a parent entity: nil when there is no parent.
func ParentPathOf(parent hypermedia.Entity) *string {
	if parent == nil {
		return nil
	}
	p := parent.Path()
	return &p
}

// versionMarker locates the version field of a Container record without a
// full parse.
const versionMarker = "(string:version)="

// ScanVersion reads the embedded version tag of a serialized Container by
// scanning for the version field marker, without parsing the document.
//
// Returns an UnsupportedVersion error when the marker is missing and a
// ScalarParse error when the tag itself is malformed.
func ScanVersion(text string) (string, error) {
	start := strings.Index(text, versionMarker)
	if start < 0 {
		return "", &hypermedia.FormatError{Code: hypermedia.ErrUnsupportedVersion, Message: "document carries no version field"}
	}
	start += len(versionMarker)

	end := strings.IndexAny(text[start:], ",;")
	if end < 0 {
		return "", &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: "unterminated version field"}
	}

	tag := text[start : start+end]
	if _, err := hypermedia.ParseVersionTag(tag); err != nil {
		return "", err
	}
	return tag, nil
}
