// Package charset provides the reversible mapping between human-readable
// strings and the encoding-specific byte sequences embedded in the
// hypermedia wire format.
//
// Name and comment fields do not travel as raw text: they are rendered as a
// space-separated sequence of decimal byte values produced by the document's
// declared text encoding. This keeps the outer grammar intact for any
// encoding, including ones whose byte sequences would otherwise contain
// format-breaking characters.
package charset

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Charset is a named text encoding resolved from the IANA registry.
//
// The zero value behaves as UTF-8, the format's default.
type Charset struct {
	name string
	enc  encoding.Encoding
}

// UTF8 is the default document encoding.
var UTF8 = Charset{name: "utf-8"}

// Lookup resolves a charset by its IANA name (e.g. "utf-8", "utf-16",
// "us-ascii", "iso-8859-1").
//
// Returns an error if the name is unknown or the encoding has no codec
// available.
func Lookup(name string) (Charset, error) {
	if name == "" || strings.EqualFold(name, "utf-8") {
		return UTF8, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return Charset{}, fmt.Errorf("lookup charset %q: %w", name, err)
	}
	if enc == nil {
		// ianaindex knows the name but carries no codec for it
		return Charset{}, fmt.Errorf("charset %q has no codec", name)
	}

	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}

	return Charset{name: strings.ToLower(canonical), enc: enc}, nil
}

// Name returns the lowercase IANA name, the form written to the wire.
func (c Charset) Name() string {
	if c.name == "" {
		return "utf-8"
	}
	return c.name
}

// IsZero reports whether the charset is the unset zero value.
func (c Charset) IsZero() bool {
	return c.name == "" && c.enc == nil
}

// Bytes encodes a string into the charset's byte representation.
func (c Charset) Bytes(s string) ([]byte, error) {
	if c.enc == nil {
		// UTF-8: Go strings are already UTF-8
		return []byte(s), nil
	}

	out, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode %q as %s: %w", s, c.Name(), err)
	}
	return out, nil
}

// String decodes the charset's byte representation back into a string.
func (c Charset) String(b []byte) (string, error) {
	if c.enc == nil {
		return string(b), nil
	}

	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode bytes as %s: %w", c.Name(), err)
	}
	return string(out), nil
}

// ByteList renders a byte sequence as the wire form: space-separated
// decimal byte values. An empty sequence renders as an empty string.
func ByteList(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(int(v)))
	}
	return sb.String()
}

// ParseByteList reverses ByteList: splits on spaces and parses each token
// as a decimal byte value. An empty string yields an empty sequence.
func ParseByteList(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}

	tokens := strings.Split(s, " ")
	out := make([]byte, 0, len(tokens))
	for _, token := range tokens {
		v, err := strconv.ParseUint(token, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("parse byte value %q: %w", token, err)
		}
		out = append(out, byte(v))
	}
	return out, nil
}
