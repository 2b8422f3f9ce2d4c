package hypermedia

import (
	"fmt"
	"time"
)

// File is a regular file entity. A File is either single-block (empty block
// list; content bytes supplied externally at hash time) or multi-block
// (non-empty block list whose blocks are hashed before the file itself).
type File struct {
	name         string
	extension    string
	attributes   *Attributes
	lastModified *time.Time
	blocks       []*Block
	singleBlock  bool
	size         uint64
	parent       Entity
	hash         string
}

// NewFile creates a file entity and attaches its blocks.
//
// The extension is required but may be the empty string. Attributes, when
// present, must be one of the File combinations (normal, hidden, read_only,
// hidden|read_only). For a single-block file the block list must be empty
// and size states the content length; for a multi-block file the block list
// must be non-empty and size is derived from the block sizes.
func NewFile(name, extension string, attributes *Attributes, lastModified *time.Time, singleBlock bool, blocks []*Block, size uint64) (*File, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if attributes != nil && !attributes.ValidForFile() {
		return nil, &FormatError{Code: ErrAttributeDomain, Message: fmt.Sprintf("attributes %q not permitted on a file", attributes)}
	}

	if singleBlock {
		if len(blocks) != 0 {
			return nil, &FormatError{Code: ErrAttributeDomain, Message: "single-block file must not carry blocks"}
		}
	} else {
		if len(blocks) == 0 {
			return nil, &FormatError{Code: ErrAttributeDomain, Message: "multi-block file requires at least one block"}
		}
		size = 0
		for _, b := range blocks {
			size += b.Size()
		}
	}

	f := &File{
		name:         name,
		extension:    extension,
		attributes:   attributes,
		lastModified: lastModified,
		blocks:       blocks,
		singleBlock:  singleBlock,
		size:         size,
	}
	for i, b := range blocks {
		b.attach(f, i)
	}
	return f, nil
}

// Kind returns KindFile.
func (f *File) Kind() Kind { return KindFile }

// Path returns the file's derived path.
func (f *File) Path() string { return childPath(f.parent, f.name) }

// Name returns the file name.
func (f *File) Name() string { return f.name }

// Extension returns the file extension; never absent, may be empty.
func (f *File) Extension() string { return f.extension }

// Attributes returns the platform attribute flags, or nil when unrecorded.
func (f *File) Attributes() *Attributes { return f.attributes }

// LastModified returns the last-modified timestamp, or nil when unrecorded.
func (f *File) LastModified() *time.Time { return f.lastModified }

// Blocks returns the ordered block list; empty for single-block files.
func (f *File) Blocks() []*Block { return f.blocks }

// IsSingleBlock reports whether the file content is addressed directly
// rather than through blocks.
func (f *File) IsSingleBlock() bool { return f.singleBlock }

// Size returns the file size in bytes.
func (f *File) Size() uint64 { return f.size }

// Hash returns the finalized digest as uppercase hex, or "" when unset.
func (f *File) Hash() string { return f.hash }

// Parent returns the owning Container or Directory.
func (f *File) Parent() Entity { return f.parent }

// SetHash performs the write-once hash transition.
//
// A single-block file digests the supplied content bytes directly, like a
// Block. A multi-block file requires nil content and digests its name in
// the document encoding plus its blocks' already-finalized digests.
func (f *File) SetHash(content []byte) error {
	if f.hash != "" {
		return &FormatError{Code: ErrAlreadySet, Message: "hash can only be set once", Path: f.Path()}
	}

	if f.singleBlock {
		if content == nil {
			return &FormatError{Code: ErrAttributeDomain, Message: "single-block file hashing requires content bytes", Path: f.Path()}
		}
		f.hash = DigestHex(Keccak512(content))
		return nil
	}

	if content != nil {
		return &FormatError{Code: ErrAttributeDomain, Message: "multi-block file hashing takes no content", Path: f.Path()}
	}

	children := make([]Entity, len(f.blocks))
	for i, b := range f.blocks {
		children[i] = b
	}
	digest, err := treeDigest(f.name, ownerCharset(f), children)
	if err != nil {
		return fmt.Errorf("hash file %s: %w", f.Path(), err)
	}
	f.hash = digest
	return nil
}

// RestoreHash reinstates a digest recovered from the wire during decoding.
func (f *File) RestoreHash(hash string) error {
	if f.hash != "" {
		return &FormatError{Code: ErrAlreadySet, Message: "hash can only be set once", Path: f.Path()}
	}
	if !IsDigestHex(hash) {
		return &FormatError{Code: ErrScalarParse, Message: "malformed digest", Path: f.Path()}
	}
	f.hash = hash
	return nil
}

// setParent wires the back-reference. Called by the owning collection only.
func (f *File) setParent(parent Entity) { f.parent = parent }
