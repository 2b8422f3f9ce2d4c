package v1

import (
	"time"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/charset"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/format"
)

// The scan functions below are the single grammar walk shared by the
// validator and the decoder. They check every grammar and domain rule and
// surface typed errors, but allocate no entities: when a record pointer is
// supplied they collect raw field values and child extents, when it is nil
// they leave no trace at all. The Valid* predicates collapse the typed
// error into a boolean; Decode* runs the same walk first as a gate, then
// builds entities from the collected record.

// containerRecord holds the scanned field values of a Container record.
type containerRecord struct {
	version             string
	cs                  charset.Charset
	name                string
	comment             string
	created             time.Time
	createdBy           string
	creatorPeer         string
	directoryWrapped    bool
	raw                 bool
	subscriptionMessage string
	seedingMessage      string
	topic               string
	childTags           []string
	childTexts          []string
	ownPath             string
	size                uint64
	hash                string
}

// directoryRecord holds the scanned field values of a Directory record.
type directoryRecord struct {
	name         string
	attributes   *hypermedia.Attributes
	lastModified *time.Time
	childTags    []string
	childTexts   []string
	ownPath      string
	size         uint64
	hash         string
}

// fileRecord holds the scanned field values of a File record.
type fileRecord struct {
	name         string
	extension    string
	attributes   *hypermedia.Attributes
	lastModified *time.Time
	singleBlock  bool
	blockTexts   []string
	ownPath      string
	size         uint64
	hash         string
}

// blockRecord holds the scanned field values of a Block record.
type blockRecord struct {
	size uint64
	hash string
}

// scanContainer walks a Container record.
//
// parentPath is the caller-supplied expected parent (nil when the record
// is a document root). The embedded version must be this revision's own
// tag; nested `hypermedia` items are instead checked against every
// registered revision, since nested containers may use a different format
// than their parent.
func scanContainer(text string, parentPath *string, rec *containerRecord) error {
	sc := newScanner(text)
	if err := sc.expect("[" + crlf); err != nil {
		return err
	}

	version, err := sc.scalar(tagString, "version", false, containerFields)
	if err != nil {
		return err
	}
	if _, err := hypermedia.ParseVersionTag(version); err != nil {
		return err
	}
	if version != Version {
		return &hypermedia.FormatError{Code: hypermedia.ErrUnsupportedVersion, Message: "record version " + version + " is not " + Version}
	}

	encName, err := sc.scalar(tagEncoding, "encoding", false, containerFields)
	if err != nil {
		return err
	}
	cs, err := charset.Lookup(encName)
	if err != nil {
		return &hypermedia.FormatError{Code: hypermedia.ErrScalarParse, Message: "unknown document encoding " + encName}
	}

	nameValue, err := sc.scalar(tagString, "name", false, containerFields)
	if err != nil {
		return err
	}
	name, err := parseEncodedText("name", nameValue, cs)
	if err != nil {
		return err
	}
	if err := hypermedia.ValidateName(name); err != nil {
		return err
	}

	commentValue, err := sc.scalar(tagString, "comment", false, containerFields)
	if err != nil {
		return err
	}
	comment, err := parseEncodedText("comment", commentValue, cs)
	if err != nil {
		return err
	}

	createdValue, err := sc.scalar(tagDateTime, "created", false, containerFields)
	if err != nil {
		return err
	}
	created, err := parseDateTimeValue("created", createdValue)
	if err != nil {
		return err
	}

	createdBy, err := sc.scalar(tagString, "created_by", false, containerFields)
	if err != nil {
		return err
	}
	creatorPeer, err := sc.scalar(tagString, "creator_peer", false, containerFields)
	if err != nil {
		return err
	}

	wrappedValue, err := sc.scalar(tagBoolean, "is_directory_wrapped", false, containerFields)
	if err != nil {
		return err
	}
	wrapped, err := parseBoolValue("is_directory_wrapped", wrappedValue)
	if err != nil {
		return err
	}

	rawValue, err := sc.scalar(tagBoolean, "is_raw", false, containerFields)
	if err != nil {
		return err
	}
	raw, err := parseBoolValue("is_raw", rawValue)
	if err != nil {
		return err
	}

	subscription, err := sc.scalar(tagString, "subscription_message", false, containerFields)
	if err != nil {
		return err
	}
	seeding, err := sc.scalar(tagString, "seeding_message", false, containerFields)
	if err != nil {
		return err
	}
	topic, err := sc.scalar(tagString, "topic", false, containerFields)
	if err != nil {
		return err
	}

	count, err := sc.listHeader(listEntity, "entities", containerFields)
	if err != nil {
		return err
	}
	if count == 0 {
		return &hypermedia.FormatError{Code: hypermedia.ErrEmptyChildren, Message: "container declares zero children"}
	}

	ownPath := containerOwnPath(parentPath, name)
	if err := scanItems(sc, count, containerItemTags, &ownPath, cs, func(tag, text string) {
		if rec != nil {
			rec.childTags = append(rec.childTags, tag)
			rec.childTexts = append(rec.childTexts, text)
		}
	}); err != nil {
		return err
	}

	sizeValue, err := sc.scalar(tagUint64, "size", false, containerFields)
	if err != nil {
		return err
	}
	size, err := parseUint64Value("size", sizeValue)
	if err != nil {
		return err
	}

	declaredParent, err := sc.scalar(tagString, "parent_path", false, containerFields)
	if err != nil {
		return err
	}
	if err := checkParentPath(declaredParent, parentPathToken(parentPath)); err != nil {
		return err
	}

	hashValue, err := sc.scalar(tagString, "hash", true, containerFields)
	if err != nil {
		return err
	}
	hash, err := parseHashValue(hashValue)
	if err != nil {
		return err
	}

	if err := sc.expect("]"); err != nil {
		return err
	}
	if !sc.done() {
		return &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: "trailing data after record"}
	}

	if rec != nil {
		rec.version = version
		rec.cs = cs
		rec.name = name
		rec.comment = comment
		rec.created = created
		rec.createdBy = createdBy
		rec.creatorPeer = creatorPeer
		rec.directoryWrapped = wrapped
		rec.raw = raw
		rec.subscriptionMessage = subscription
		rec.seedingMessage = seeding
		rec.topic = topic
		rec.ownPath = ownPath
		rec.size = size
		rec.hash = hash
	}
	return nil
}

// scanDirectory walks a Directory record. The charset is inherited from
// the owning container (UTF-8 when validating or decoding detached).
func scanDirectory(text string, parentPath *string, cs charset.Charset, rec *directoryRecord) error {
	sc := newScanner(text)
	if err := sc.expect("[" + crlf); err != nil {
		return err
	}

	nameValue, err := sc.scalar(tagString, "name", false, directoryFields)
	if err != nil {
		return err
	}
	name, err := parseEncodedText("name", nameValue, cs)
	if err != nil {
		return err
	}
	if err := hypermedia.ValidateName(name); err != nil {
		return err
	}

	attrsValue, err := sc.scalar(tagAttrsNull, "attributes", false, directoryFields)
	if err != nil {
		return err
	}
	attrs, err := parseNullableAttributes(attrsValue, true)
	if err != nil {
		return err
	}

	modifiedValue, err := sc.scalar(tagDateNull, "last_modified", false, directoryFields)
	if err != nil {
		return err
	}
	modified, err := parseNullableDateTime("last_modified", modifiedValue)
	if err != nil {
		return err
	}

	count, err := sc.listHeader(listSystemEntity, "entities", directoryFields)
	if err != nil {
		return err
	}

	ownPath := systemOwnPath(parentPath, name)
	if count == 0 {
		if err := sc.expect(emptyBody + "}"); err != nil {
			return err
		}
		if err := sc.expect("," + crlf); err != nil {
			return err
		}
	} else if err := scanItems(sc, count, systemItemTags, &ownPath, cs, func(tag, text string) {
		if rec != nil {
			rec.childTags = append(rec.childTags, tag)
			rec.childTexts = append(rec.childTexts, text)
		}
	}); err != nil {
		return err
	}

	sizeValue, err := sc.scalar(tagUint64, "size", false, directoryFields)
	if err != nil {
		return err
	}
	size, err := parseUint64Value("size", sizeValue)
	if err != nil {
		return err
	}

	declaredParent, err := sc.scalar(tagString, "parent_path", false, directoryFields)
	if err != nil {
		return err
	}
	if err := checkParentPath(declaredParent, parentPathToken(parentPath)); err != nil {
		return err
	}

	hashValue, err := sc.scalar(tagString, "hash", true, directoryFields)
	if err != nil {
		return err
	}
	hash, err := parseHashValue(hashValue)
	if err != nil {
		return err
	}

	if err := sc.expect("]"); err != nil {
		return err
	}
	if !sc.done() {
		return &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: "trailing data after record"}
	}

	if rec != nil {
		rec.name = name
		rec.attributes = attrs
		rec.lastModified = modified
		rec.ownPath = ownPath
		rec.size = size
		rec.hash = hash
	}
	return nil
}

// scanFile walks a File record.
func scanFile(text string, parentPath *string, cs charset.Charset, rec *fileRecord) error {
	sc := newScanner(text)
	if err := sc.expect("[" + crlf); err != nil {
		return err
	}

	nameValue, err := sc.scalar(tagString, "name", false, fileFields)
	if err != nil {
		return err
	}
	name, err := parseEncodedText("name", nameValue, cs)
	if err != nil {
		return err
	}
	if err := hypermedia.ValidateName(name); err != nil {
		return err
	}

	extension, err := sc.scalar(tagString, "extension", false, fileFields)
	if err != nil {
		return err
	}

	attrsValue, err := sc.scalar(tagAttrsNull, "attributes", false, fileFields)
	if err != nil {
		return err
	}
	attrs, err := parseNullableAttributes(attrsValue, false)
	if err != nil {
		return err
	}

	modifiedValue, err := sc.scalar(tagDateNull, "last_modified", false, fileFields)
	if err != nil {
		return err
	}
	modified, err := parseNullableDateTime("last_modified", modifiedValue)
	if err != nil {
		return err
	}

	singleValue, err := sc.scalar(tagBoolean, "is_single_block", false, fileFields)
	if err != nil {
		return err
	}
	singleBlock, err := parseBoolValue("is_single_block", singleValue)
	if err != nil {
		return err
	}

	count, err := sc.listHeader(listBlock, "blocks", fileFields)
	if err != nil {
		return err
	}
	if singleBlock && count != 0 {
		return &hypermedia.FormatError{Code: hypermedia.ErrAttributeDomain, Message: "single-block file declares blocks"}
	}
	if !singleBlock && count == 0 {
		return &hypermedia.FormatError{Code: hypermedia.ErrAttributeDomain, Message: "multi-block file declares zero blocks"}
	}

	ownPath := systemOwnPath(parentPath, name)
	if count == 0 {
		if err := sc.expect(emptyBody + "}"); err != nil {
			return err
		}
		if err := sc.expect("," + crlf); err != nil {
			return err
		}
	} else if err := scanItems(sc, count, blockItemTags, &ownPath, cs, func(tag, text string) {
		if rec != nil {
			rec.blockTexts = append(rec.blockTexts, text)
		}
	}); err != nil {
		return err
	}

	sizeValue, err := sc.scalar(tagUint64, "size", false, fileFields)
	if err != nil {
		return err
	}
	size, err := parseUint64Value("size", sizeValue)
	if err != nil {
		return err
	}

	declaredParent, err := sc.scalar(tagString, "parent_path", false, fileFields)
	if err != nil {
		return err
	}
	if err := checkParentPath(declaredParent, parentPathToken(parentPath)); err != nil {
		return err
	}

	hashValue, err := sc.scalar(tagString, "hash", true, fileFields)
	if err != nil {
		return err
	}
	hash, err := parseHashValue(hashValue)
	if err != nil {
		return err
	}

	if err := sc.expect("]"); err != nil {
		return err
	}
	if !sc.done() {
		return &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: "trailing data after record"}
	}

	if rec != nil {
		rec.name = name
		rec.extension = extension
		rec.attributes = attrs
		rec.lastModified = modified
		rec.singleBlock = singleBlock
		rec.ownPath = ownPath
		rec.size = size
		rec.hash = hash
	}
	return nil
}

// scanBlock walks a Block record, the only kind with no nested lists.
func scanBlock(text string, parentPath *string, rec *blockRecord) error {
	sc := newScanner(text)
	if err := sc.expect("[" + crlf); err != nil {
		return err
	}

	sizeValue, err := sc.scalar(tagUint64, "size", false, blockFields)
	if err != nil {
		return err
	}
	size, err := parseUint64Value("size", sizeValue)
	if err != nil {
		return err
	}

	declaredParent, err := sc.scalar(tagString, "parent_path", false, blockFields)
	if err != nil {
		return err
	}
	if err := checkParentPath(declaredParent, parentPathToken(parentPath)); err != nil {
		return err
	}

	hashValue, err := sc.scalar(tagString, "hash", true, blockFields)
	if err != nil {
		return err
	}
	hash, err := parseHashValue(hashValue)
	if err != nil {
		return err
	}

	if err := sc.expect("]"); err != nil {
		return err
	}
	if !sc.done() {
		return &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: "trailing data after record"}
	}

	if rec != nil {
		rec.size = size
		rec.hash = hash
	}
	return nil
}

// Item tag sets per list union.
var (
	containerItemTags = map[string]bool{itemHypermedia: true, itemDirectory: true, itemFile: true}
	systemItemTags    = map[string]bool{itemDirectory: true, itemFile: true}
	blockItemTags     = map[string]bool{itemBlock: true}
)

// scanItems consumes the body of a non-empty list field: count items, each
// a "(tag:index)=" prefix followed by a bracketed record whose extent is
// recovered by grow-and-test against the tag's validity predicate. Items
// are separated by the fixed "," CR LF delimiter; the last is terminated
// ";" CR LF before the closing brace.
//
// ownPath is the path of the record that owns the list, i.e. the expected
// parent of every item.
func scanItems(sc *scanner, count int, allowed map[string]bool, ownPath *string, cs charset.Charset, keep func(tag, text string)) error {
	if err := sc.expect(crlf); err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		tag, err := sc.itemHeader(allowed, i)
		if err != nil {
			return err
		}

		rest := sc.s[sc.pos:]
		var extent int
		switch tag {
		case itemHypermedia:
			// Nested containers may be any registered revision.
			extent, err = findExtent(rest, func(cand string) bool {
				return format.ValidAnyContainer(cand, ownPath)
			})
		case itemDirectory:
			extent, err = findExtent(rest, func(cand string) bool {
				return scanDirectory(cand, ownPath, cs, nil) == nil
			})
		case itemFile:
			extent, err = findExtent(rest, func(cand string) bool {
				return scanFile(cand, ownPath, cs, nil) == nil
			})
		case itemBlock:
			extent, err = findExtent(rest, func(cand string) bool {
				return scanBlock(cand, ownPath, nil) == nil
			})
		}
		if err != nil {
			return err
		}

		keep(tag, rest[:extent])
		sc.pos += extent

		if i < count-1 {
			if err := sc.expect("," + crlf); err != nil {
				return err
			}
		} else {
			if err := sc.expect(";" + crlf); err != nil {
				return err
			}
		}
	}

	if err := sc.expect("}"); err != nil {
		// Fewer closing tokens than declared items means the declared
		// count and the body disagree.
		return &hypermedia.FormatError{Code: hypermedia.ErrSequence, Message: "list body inconsistent with declared item count"}
	}
	return sc.expect("," + crlf)
}
