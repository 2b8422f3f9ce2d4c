package v1

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/charset"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/format"
)

// Wire framing tokens. Lines terminate with CRLF; the inter-item list
// delimiter is the fixed 3-character sequence "," CR LF.
const (
	crlf      = "\r\n"
	nullToken = "null"
	emptyBody = "empty"
)

// Scalar type tags.
const (
	tagString    = "string"
	tagUint64    = "uint64"
	tagBoolean   = "boolean"
	tagEncoding  = "encoding"
	tagDateTime  = "date_time"
	tagDateNull  = "date_time_null"
	tagAttrsNull = "file_attributes_null"
)

// List item tags and the generic union tags of list fields.
const (
	itemHypermedia = "hypermedia"
	itemDirectory  = "directory"
	itemFile       = "file"
	itemBlock      = "block"

	listEntity       = "entity"
	listSystemEntity = "system_entity"
	listBlock        = "block"
)

// Known field names per record kind, used to tell an unknown field from a
// known field in the wrong position.
var (
	containerFields = fieldSet("version", "encoding", "name", "comment", "created",
		"created_by", "creator_peer", "is_directory_wrapped", "is_raw",
		"subscription_message", "seeding_message", "topic", "entities",
		"size", "parent_path", "hash")
	directoryFields = fieldSet("name", "attributes", "last_modified",
		"entities", "size", "parent_path", "hash")
	fileFields = fieldSet("name", "extension", "attributes", "last_modified",
		"is_single_block", "blocks", "size", "parent_path", "hash")
	blockFields = fieldSet("size", "parent_path", "hash")
)

func fieldSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// scanner walks a record's text left to right. It never backtracks; the
// only lookahead in the grammar is the monotonically growing window of the
// boundary detector, which re-runs a scanner per candidate.
type scanner struct {
	s   string
	pos int
}

func newScanner(s string) *scanner { return &scanner{s: s} }

// done reports whether the input is fully consumed. Records must consume
// their text exactly: trailing garbage breaks boundary detection.
func (sc *scanner) done() bool { return sc.pos == len(sc.s) }

// expect consumes the literal or fails with MalformedFraming.
func (sc *scanner) expect(lit string) error {
	if !strings.HasPrefix(sc.s[sc.pos:], lit) {
		return &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: fmt.Sprintf("expected %q at offset %d", lit, sc.pos)}
	}
	sc.pos += len(lit)
	return nil
}

// until consumes up to (not including) the first occurrence of the given
// byte and returns the consumed text. Fails with MalformedFraming when the
// byte does not occur before a line break or the end of input.
func (sc *scanner) until(b byte) (string, error) {
	rest := sc.s[sc.pos:]
	idx := strings.IndexByte(rest, b)
	if idx < 0 {
		return "", &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: fmt.Sprintf("expected %q at offset %d", string(b), sc.pos)}
	}
	if nl := strings.IndexByte(rest[:idx], '\r'); nl >= 0 {
		return "", &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: fmt.Sprintf("line break before %q at offset %d", string(b), sc.pos)}
	}
	sc.pos += idx + 1
	return rest[:idx], nil
}

// scalar consumes one "(type:name)=value," line (";" when final) and
// returns the raw value.
//
// The header is checked against the expected type tag and field name; a
// field name outside the record's known set is an UnknownField error, a
// known name in the wrong position or a wrong type tag is MalformedFraming
// (field ordering).
func (sc *scanner) scalar(typeTag, name string, final bool, known map[string]bool) (string, error) {
	if err := sc.expect("("); err != nil {
		return "", err
	}

	header, err := sc.until(')')
	if err != nil {
		return "", err
	}
	colon := strings.IndexByte(header, ':')
	if colon < 0 {
		return "", &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: fmt.Sprintf("field header %q has no type separator", header)}
	}
	gotType, gotName := header[:colon], header[colon+1:]
	if gotName != name {
		if !known[gotName] {
			return "", &hypermedia.FormatError{Code: hypermedia.ErrUnknownField, Message: fmt.Sprintf("unknown field %q (expected %q)", gotName, name)}
		}
		return "", &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: fmt.Sprintf("field %q out of order (expected %q)", gotName, name)}
	}
	if gotType != typeTag {
		return "", &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: fmt.Sprintf("field %q declared as %q, expected %q", name, gotType, typeTag)}
	}

	if err := sc.expect("="); err != nil {
		return "", err
	}

	rest := sc.s[sc.pos:]
	eol := strings.Index(rest, crlf)
	if eol < 1 {
		return "", &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: fmt.Sprintf("unterminated field %q", name)}
	}
	line := rest[:eol]

	terminator := byte(',')
	if final {
		terminator = ';'
	}
	if line[len(line)-1] != terminator {
		return "", &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: fmt.Sprintf("field %q terminated with %q, expected %q", name, string(line[len(line)-1]), string(terminator))}
	}

	value := line[:len(line)-1]
	if strings.ContainsAny(value, "[]{}") {
		return "", &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: fmt.Sprintf("scalar field %q contains framing characters", name)}
	}

	sc.pos += eol + len(crlf)
	return value, nil
}

// listHeader consumes a "(list<tag>[N]:name)={" header and returns the
// declared item count. The body (items or the literal "empty") is consumed
// by the caller, since item extents require boundary detection.
func (sc *scanner) listHeader(unionTag, name string, known map[string]bool) (int, error) {
	if err := sc.expect("(list<"); err != nil {
		return 0, err
	}

	gotTag, err := sc.until('>')
	if err != nil {
		return 0, err
	}
	if gotTag != unionTag {
		return 0, &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: fmt.Sprintf("list field %q declared as list<%s>, expected list<%s>", name, gotTag, unionTag)}
	}

	if err := sc.expect("["); err != nil {
		return 0, err
	}
	countStr, err := sc.until(']')
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(countStr)
	if err != nil || count < 0 {
		return 0, &hypermedia.FormatError{Code: hypermedia.ErrScalarParse, Message: fmt.Sprintf("list field %q declares item count %q", name, countStr)}
	}

	if err := sc.expect(":"); err != nil {
		return 0, err
	}
	gotName, err := sc.until(')')
	if err != nil {
		return 0, err
	}
	if gotName != name {
		if !known[gotName] {
			return 0, &hypermedia.FormatError{Code: hypermedia.ErrUnknownField, Message: fmt.Sprintf("unknown field %q (expected %q)", gotName, name)}
		}
		return 0, &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: fmt.Sprintf("field %q out of order (expected %q)", gotName, name)}
	}

	if err := sc.expect("={"); err != nil {
		return 0, err
	}
	return count, nil
}

// itemHeader consumes a "(tag:index)=" item prefix and returns the item
// type tag. The embedded ordinal must equal the positional index; a
// mismatch is a Sequence error, the guard against reordering/corruption.
func (sc *scanner) itemHeader(allowed map[string]bool, index int) (string, error) {
	if err := sc.expect("("); err != nil {
		return "", err
	}

	tag, err := sc.until(':')
	if err != nil {
		return "", err
	}
	if !allowed[tag] {
		return "", &hypermedia.FormatError{Code: hypermedia.ErrUnknownTag, Message: fmt.Sprintf("unknown item tag %q", tag)}
	}

	idxStr, err := sc.until(')')
	if err != nil {
		return "", err
	}
	idx, err := strconv.Atoi(idxStr)
	if err != nil {
		return "", &hypermedia.FormatError{Code: hypermedia.ErrScalarParse, Message: fmt.Sprintf("item index %q is not numeric", idxStr)}
	}
	if idx != index {
		return "", &hypermedia.FormatError{Code: hypermedia.ErrSequence, Message: fmt.Sprintf("item declares index %d at position %d", idx, index)}
	}

	if err := sc.expect("="); err != nil {
		return "", err
	}
	return tag, nil
}

// Scalar value parsers. All failures are ScalarParse or AttributeDomain
// errors; the validator collapses them into false.

func parseUint64Value(name, value string) (uint64, error) {
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, &hypermedia.FormatError{Code: hypermedia.ErrScalarParse, Message: fmt.Sprintf("field %q value %q is not a uint64", name, value)}
	}
	return n, nil
}

func parseBoolValue(name, value string) (bool, error) {
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, &hypermedia.FormatError{Code: hypermedia.ErrScalarParse, Message: fmt.Sprintf("field %q value %q is not a boolean", name, value)}
	}
}

func parseDateTimeValue(name, value string) (time.Time, error) {
	sec, err := strconv.ParseInt(value, 10, 64)
	if err != nil || sec < 0 {
		return time.Time{}, &hypermedia.FormatError{Code: hypermedia.ErrScalarParse, Message: fmt.Sprintf("field %q value %q is not a Unix timestamp", name, value)}
	}
	return time.Unix(sec, 0).UTC(), nil
}

func parseNullableDateTime(name, value string) (*time.Time, error) {
	if value == nullToken {
		return nil, nil
	}
	t, err := parseDateTimeValue(name, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseNullableAttributes parses a file_attributes_null value and checks
// it against the permitted set of the entity kind.
func parseNullableAttributes(value string, forDirectory bool) (*hypermedia.Attributes, error) {
	if value == nullToken {
		return nil, nil
	}

	attrs, err := hypermedia.ParseAttributes(value)
	if err != nil {
		return nil, err
	}
	if forDirectory && !attrs.ValidForDirectory() {
		return nil, &hypermedia.FormatError{Code: hypermedia.ErrAttributeDomain, Message: fmt.Sprintf("attributes %q not permitted on a directory", attrs)}
	}
	if !forDirectory && !attrs.ValidForFile() {
		return nil, &hypermedia.FormatError{Code: hypermedia.ErrAttributeDomain, Message: fmt.Sprintf("attributes %q not permitted on a file", attrs)}
	}
	return &attrs, nil
}

// parseEncodedText reverses the byte-list rendering of name/comment values
// in the document's declared encoding.
func parseEncodedText(name, value string, cs charset.Charset) (string, error) {
	raw, err := charset.ParseByteList(value)
	if err != nil {
		return "", &hypermedia.FormatError{Code: hypermedia.ErrScalarParse, Message: fmt.Sprintf("field %q: %v", name, err)}
	}
	text, err := cs.String(raw)
	if err != nil {
		return "", &hypermedia.FormatError{Code: hypermedia.ErrScalarParse, Message: fmt.Sprintf("field %q: %v", name, err)}
	}
	return text, nil
}

// parseHashValue accepts either an empty value (hash not yet set when the
// record was written) or a rendered digest.
func parseHashValue(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if !hypermedia.IsDigestHex(value) {
		return "", &hypermedia.FormatError{Code: hypermedia.ErrScalarParse, Message: "hash field is not a 128-character uppercase hex digest"}
	}
	return value, nil
}

// checkParentPath compares the declared parent_path token with the
// caller-supplied parent.
func checkParentPath(declared, expected string) error {
	if declared != expected {
		return &hypermedia.FormatError{Code: hypermedia.ErrParentMismatch, Message: fmt.Sprintf("record declares parent_path %q, caller supplied %q", declared, expected)}
	}
	return nil
}

// parentPathToken renders the caller-supplied nullable parent path as the
// wire token the record must declare: NoParent when there is no parent or
// the parent is the pathless document root.
func parentPathToken(parentPath *string) string {
	if parentPath == nil || *parentPath == "" {
		return format.NoParent
	}
	return *parentPath
}

// containerOwnPath derives a scanned Container record's own path. A
// container with no parent is the document root and has no path.
func containerOwnPath(parentPath *string, name string) string {
	if parentPath == nil {
		return ""
	}
	return *parentPath + "/" + name
}

// systemOwnPath derives a scanned Directory/File record's own path. System
// entities always have a path, even when decoded detached.
func systemOwnPath(parentPath *string, name string) string {
	if parentPath == nil {
		return "/" + name
	}
	return *parentPath + "/" + name
}
