package hypermedia

import (
	"fmt"
	"time"
)

// Directory is an OS-style folder holding system entities (Directories and
// Files). Unlike a Container, a Directory may legitimately be empty.
type Directory struct {
	name         string
	attributes   *Attributes
	lastModified *time.Time
	entities     []Entity
	size         uint64
	parent       Entity
	hash         string
}

// NewDirectory creates a directory entity and takes ownership of its
// children.
//
// Children must be Directories or Files; Containers and Blocks are not
// system entities. Attributes, when present, must be one of the Directory
// combinations. Size is the sum of child sizes.
func NewDirectory(name string, attributes *Attributes, lastModified *time.Time, entities []Entity) (*Directory, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if attributes != nil && !attributes.ValidForDirectory() {
		return nil, &FormatError{Code: ErrAttributeDomain, Message: fmt.Sprintf("attributes %q not permitted on a directory", attributes)}
	}

	d := &Directory{
		name:         name,
		attributes:   attributes,
		lastModified: lastModified,
		entities:     entities,
	}
	for _, e := range entities {
		switch child := e.(type) {
		case *Directory:
			child.setParent(d)
		case *File:
			child.setParent(d)
		default:
			return nil, &FormatError{Code: ErrAttributeDomain, Message: fmt.Sprintf("%s cannot be a directory child", e.Kind())}
		}
		d.size += e.Size()
	}
	return d, nil
}

// Kind returns KindDirectory.
func (d *Directory) Kind() Kind { return KindDirectory }

// Path returns the directory's derived path.
func (d *Directory) Path() string { return childPath(d.parent, d.name) }

// Name returns the directory name.
func (d *Directory) Name() string { return d.name }

// Attributes returns the platform attribute flags, or nil when unrecorded.
func (d *Directory) Attributes() *Attributes { return d.attributes }

// LastModified returns the last-modified timestamp, or nil when unrecorded.
func (d *Directory) LastModified() *time.Time { return d.lastModified }

// Entities returns the ordered children (Directories and Files; may be
// empty).
func (d *Directory) Entities() []Entity { return d.entities }

// Size returns the sum of descendant sizes.
func (d *Directory) Size() uint64 { return d.size }

// Hash returns the finalized digest as uppercase hex, or "" when unset.
func (d *Directory) Hash() string { return d.hash }

// Parent returns the owning Container or Directory.
func (d *Directory) Parent() Entity { return d.parent }

// SetHash digests the directory name in the document encoding plus its
// children's already-finalized digests. Content bytes are never accepted.
func (d *Directory) SetHash(content []byte) error {
	if d.hash != "" {
		return &FormatError{Code: ErrAlreadySet, Message: "hash can only be set once", Path: d.Path()}
	}
	if content != nil {
		return &FormatError{Code: ErrAttributeDomain, Message: "directory hashing takes no content", Path: d.Path()}
	}

	digest, err := treeDigest(d.name, ownerCharset(d), d.entities)
	if err != nil {
		return fmt.Errorf("hash directory %s: %w", d.Path(), err)
	}
	d.hash = digest
	return nil
}

// RestoreHash reinstates a digest recovered from the wire during decoding.
func (d *Directory) RestoreHash(hash string) error {
	if d.hash != "" {
		return &FormatError{Code: ErrAlreadySet, Message: "hash can only be set once", Path: d.Path()}
	}
	if !IsDigestHex(hash) {
		return &FormatError{Code: ErrScalarParse, Message: "malformed digest", Path: d.Path()}
	}
	d.hash = hash
	return nil
}

// setParent wires the back-reference. Called by the owning collection only.
func (d *Directory) setParent(parent Entity) { d.parent = parent }
