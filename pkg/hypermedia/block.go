package hypermedia

import "strconv"

// Block is a leaf fragment of a multi-block File. Blocks carry no name;
// their path is derived from the owning File's path and their ordinal.
type Block struct {
	size    uint64
	ordinal int
	parent  *File
	hash    string
}

// NewBlock creates a detached block of the given size. Blocks are attached
// to their owning File by NewFile, which assigns parent and ordinal.
func NewBlock(size uint64) *Block {
	return &Block{size: size, ordinal: -1}
}

// Kind returns KindBlock.
func (b *Block) Kind() Kind { return KindBlock }

// Path returns "<file path>/<ordinal>", or "" for a detached block.
func (b *Block) Path() string {
	if b.parent == nil {
		return ""
	}
	return b.parent.Path() + "/" + strconv.Itoa(b.ordinal)
}

// Name returns "": blocks have no name.
func (b *Block) Name() string { return "" }

// Size returns the block size in bytes.
func (b *Block) Size() uint64 { return b.size }

// Hash returns the finalized digest as uppercase hex, or "" when unset.
func (b *Block) Hash() string { return b.hash }

// Parent returns the owning File, or nil for a detached block.
func (b *Block) Parent() Entity {
	if b.parent == nil {
		return nil
	}
	return b.parent
}

// SetHash digests the block's content bytes. Content is required: blocks
// are true leaves and are addressed by their raw bytes, not by metadata.
func (b *Block) SetHash(content []byte) error {
	if b.hash != "" {
		return &FormatError{Code: ErrAlreadySet, Message: "hash can only be set once", Path: b.Path()}
	}
	if content == nil {
		return &FormatError{Code: ErrAttributeDomain, Message: "block hashing requires content bytes", Path: b.Path()}
	}
	b.hash = DigestHex(Keccak512(content))
	return nil
}

// RestoreHash reinstates a digest recovered from the wire during decoding.
// Subject to the same write-once rule as SetHash.
func (b *Block) RestoreHash(hash string) error {
	if b.hash != "" {
		return &FormatError{Code: ErrAlreadySet, Message: "hash can only be set once", Path: b.Path()}
	}
	if !IsDigestHex(hash) {
		return &FormatError{Code: ErrScalarParse, Message: "malformed digest", Path: b.Path()}
	}
	b.hash = hash
	return nil
}

// attach wires the block to its owning file. Called by NewFile only.
func (b *Block) attach(parent *File, ordinal int) {
	b.parent = parent
	b.ordinal = ordinal
}
