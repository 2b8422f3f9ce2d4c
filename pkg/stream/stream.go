// Package stream moves serialized hypermedia documents over io boundaries.
//
// Documents travel as plain text with no outer framing: the reader consumes
// the stream to EOF and dispatches on the embedded version tag. When
// documents share a connection with other traffic the caller is responsible
// for the outer framing; these helpers cover files, pipes and
// one-document-per-connection transports.
package stream

import (
	"fmt"
	"io"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/format"
)

// WriteDocument encodes the container and writes the serialized text to w.
func WriteDocument(w io.Writer, c *hypermedia.Container) error {
	f, err := format.Lookup(c.Version())
	if err != nil {
		return err
	}
	text, err := f.EncodeContainer(c)
	if err != nil {
		return fmt.Errorf("encode document %q: %w", c.Name(), err)
	}
	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("write document %q: %w", c.Name(), err)
	}
	return nil
}

// ReadDocument reads a serialized document from r until EOF and decodes it,
// dispatching on the embedded version tag.
func ReadDocument(r io.Reader) (*hypermedia.Container, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return format.DecodeAny(string(text), nil)
}

// ReadDocumentLimit is ReadDocument with a size cap: a stream longer than
// maxBytes is rejected before any decoding happens. A maxBytes of 0 means
// unlimited.
func ReadDocumentLimit(r io.Reader, maxBytes uint64) (*hypermedia.Container, error) {
	if maxBytes == 0 {
		return ReadDocument(r)
	}

	// read one byte past the cap to distinguish "exactly at" from "over"
	text, err := io.ReadAll(io.LimitReader(r, int64(maxBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if uint64(len(text)) > maxBytes {
		return nil, fmt.Errorf("document exceeds size limit of %d bytes", maxBytes)
	}
	return format.DecodeAny(string(text), nil)
}
