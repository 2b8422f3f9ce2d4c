package badger

import (
	"bytes"
	"fmt"
	"time"

	xdr "github.com/rasky/go-xdr/xdr2"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/store"
)

// Serialization Strategy
// ======================
//
// BadgerDB stores raw bytes, so documents are wrapped in an XDR envelope
// before storage. XDR gives a compact, schema-stable binary encoding for
// the flat record shape stored here; the document text itself is already
// its own canonical serialization and travels opaquely inside the
// envelope.

// documentRecord is the XDR wire shape of a stored document. time.Time has
// no XDR mapping, so StoredAt travels as Unix seconds.
type documentRecord struct {
	Hash     string
	Topic    string
	Version  string
	Name     string
	Size     uint64
	StoredAt int64
	Text     string
}

// encodeDocument serializes a document into its XDR envelope.
func encodeDocument(doc *store.Document) ([]byte, error) {
	record := documentRecord{
		Hash:     doc.Hash,
		Topic:    doc.Topic,
		Version:  doc.Version,
		Name:     doc.Name,
		Size:     doc.Size,
		StoredAt: doc.StoredAt.Unix(),
		Text:     doc.Text,
	}

	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, &record); err != nil {
		return nil, fmt.Errorf("encode document record: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeDocument reverses encodeDocument.
func decodeDocument(raw []byte) (*store.Document, error) {
	var record documentRecord
	if _, err := xdr.Unmarshal(bytes.NewReader(raw), &record); err != nil {
		return nil, fmt.Errorf("decode document record: %w", err)
	}

	return &store.Document{
		Hash:     record.Hash,
		Topic:    record.Topic,
		Version:  record.Version,
		Name:     record.Name,
		Size:     record.Size,
		StoredAt: time.Unix(record.StoredAt, 0).UTC(),
		Text:     record.Text,
	}, nil
}
