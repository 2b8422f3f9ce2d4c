// Package v1 implements revision hypermedia/0.1.0 of the wire format: the
// bracketed CRLF-terminated field grammar with count-but-not-length list
// framing and grow-and-test boundary detection.
package v1

import (
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/charset"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/format"
)

// Version is the version tag this revision serves.
const Version = "hypermedia/0.1.0"

// Format implements format.Format for revision hypermedia/0.1.0.
type Format struct{}

// New returns the hypermedia/0.1.0 format implementation.
func New() *Format { return &Format{} }

func init() {
	format.MustRegister(New())
}

// Version returns the registry key of this revision.
func (*Format) Version() string { return Version }

// Hasher returns the digest function of this revision: legacy Keccak-512.
func (*Format) Hasher() hypermedia.HashFunc { return hypermedia.Keccak512 }

// ValidContainer reports whether text is a well-formed Container record of
// this revision with the expected parent. Pure and non-raising: every
// grammar or domain violation collapses into false.
func (*Format) ValidContainer(text string, parentPath *string) bool {
	return scanContainer(text, parentPath, nil) == nil
}

// ValidDirectory reports whether text is a well-formed Directory record
// with the expected parent. Detached validation assumes UTF-8 name bytes.
func (*Format) ValidDirectory(text string, parentPath *string) bool {
	return scanDirectory(text, parentPath, charset.UTF8, nil) == nil
}

// ValidFile reports whether text is a well-formed File record with the
// expected parent. Detached validation assumes UTF-8 name bytes.
func (*Format) ValidFile(text string, parentPath *string) bool {
	return scanFile(text, parentPath, charset.UTF8, nil) == nil
}

// ValidBlock reports whether text is a well-formed Block record with the
// expected parent.
func (*Format) ValidBlock(text string, parentPath *string) bool {
	return scanBlock(text, parentPath, nil) == nil
}
