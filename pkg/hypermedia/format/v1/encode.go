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

// The grammar allocates no escape mechanism for its delimiter characters
// inside unencoded scalar fields (path, created_by, topic, extension,
// version, the protocol messages). The source format assumes such values
// never contain them; rather than inventing escaping, encoding rejects
// offending values explicitly.
const forbiddenScalarChars = ",;[]{}\r\n"

// checkScalarValue enforces the delimiter assumption on unencoded scalars.
func checkScalarValue(name, value string) error {
	if strings.ContainsAny(value, forbiddenScalarChars) {
		return &hypermedia.FormatError{Code: hypermedia.ErrAttributeDomain, Message: fmt.Sprintf("field %q value contains format delimiter characters", name)}
	}
	return nil
}

// writer accumulates a record's text. Encoding is infallible once the
// scalar values pass the delimiter check, so writer methods collect the
// first error and turn the rest into no-ops.
type writer struct {
	sb  strings.Builder
	err error
}

func (w *writer) scalar(typeTag, name, value string, final bool) {
	if w.err != nil {
		return
	}
	terminator := ","
	if final {
		terminator = ";"
	}
	w.sb.WriteString("(" + typeTag + ":" + name + ")=" + value + terminator + crlf)
}

func (w *writer) checkedScalar(typeTag, name, value string, final bool) {
	if w.err != nil {
		return
	}
	if err := checkScalarValue(name, value); err != nil {
		w.err = err
		return
	}
	w.scalar(typeTag, name, value, final)
}

// encodedText renders a name/comment value as its byte-list wire form in
// the document encoding.
func (w *writer) encodedText(name, value string, cs charset.Charset) {
	if w.err != nil {
		return
	}
	raw, err := cs.Bytes(value)
	if err != nil {
		w.err = fmt.Errorf("encode field %q: %w", name, err)
		return
	}
	w.scalar(tagString, name, charset.ByteList(raw), false)
}

// list writes a list field: header with the declared item count, then
// either the literal "empty" body or the CRLF-separated items.
func (w *writer) list(unionTag, name string, items []string, tags []string) {
	if w.err != nil {
		return
	}

	w.sb.WriteString("(list<" + unionTag + ">[" + strconv.Itoa(len(items)) + "]:" + name + ")={")
	if len(items) == 0 {
		w.sb.WriteString(emptyBody + "}," + crlf)
		return
	}

	w.sb.WriteString(crlf)
	for i, item := range items {
		w.sb.WriteString("(" + tags[i] + ":" + strconv.Itoa(i) + ")=" + item)
		if i < len(items)-1 {
			w.sb.WriteString("," + crlf)
		} else {
			w.sb.WriteString(";" + crlf)
		}
	}
	w.sb.WriteString("}," + crlf)
}

// EncodeContainer serializes a Container record, recursing into children.
// Nested Containers are encoded by their own registered revision, which
// may differ from this one.
func (f *Format) EncodeContainer(c *hypermedia.Container) (string, error) {
	if c == nil {
		return "", fmt.Errorf("encode container: nil entity")
	}

	w := &writer{}
	w.sb.WriteString("[" + crlf)
	w.checkedScalar(tagString, "version", c.Version(), false)
	w.checkedScalar(tagEncoding, "encoding", c.Charset().Name(), false)
	w.encodedText("name", c.Name(), c.Charset())
	w.encodedText("comment", c.Comment(), c.Charset())
	w.scalar(tagDateTime, "created", strconv.FormatInt(c.Created().Unix(), 10), false)
	w.checkedScalar(tagString, "created_by", c.CreatedBy(), false)
	w.checkedScalar(tagString, "creator_peer", c.CreatorPeer(), false)
	w.scalar(tagBoolean, "is_directory_wrapped", strconv.FormatBool(c.IsDirectoryWrapped()), false)
	w.scalar(tagBoolean, "is_raw", strconv.FormatBool(c.IsRaw()), false)
	w.checkedScalar(tagString, "subscription_message", c.SubscriptionMessage(), false)
	w.checkedScalar(tagString, "seeding_message", c.SeedingMessage(), false)
	w.checkedScalar(tagString, "topic", c.Topic(), false)

	items := make([]string, 0, len(c.Entities()))
	tags := make([]string, 0, len(c.Entities()))
	for _, child := range c.Entities() {
		if w.err != nil {
			break
		}
		var (
			item string
			err  error
		)
		switch e := child.(type) {
		case *hypermedia.Container:
			var nested format.Format
			nested, err = format.Lookup(e.Version())
			if err == nil {
				item, err = nested.EncodeContainer(e)
			}
			tags = append(tags, itemHypermedia)
		case *hypermedia.Directory:
			item, err = f.EncodeDirectory(e)
			tags = append(tags, itemDirectory)
		case *hypermedia.File:
			item, err = f.EncodeFile(e)
			tags = append(tags, itemFile)
		default:
			err = &hypermedia.FormatError{Code: hypermedia.ErrUnknownTag, Message: fmt.Sprintf("%s cannot be a container child", child.Kind())}
		}
		if err != nil {
			w.err = err
			break
		}
		items = append(items, item)
	}
	w.list(listEntity, "entities", items, tags)

	w.scalar(tagUint64, "size", strconv.FormatUint(c.Size(), 10), false)
	w.checkedScalar(tagString, "parent_path", parentPathToken(format.ParentPathOf(c.Parent())), false)
	w.checkedScalar(tagString, "hash", c.Hash(), true)
	w.sb.WriteString("]")

	if w.err != nil {
		return "", fmt.Errorf("encode container %q: %w", c.Name(), w.err)
	}
	return w.sb.String(), nil
}

// EncodeDirectory serializes a Directory record, recursing into children.
func (f *Format) EncodeDirectory(d *hypermedia.Directory) (string, error) {
	if d == nil {
		return "", fmt.Errorf("encode directory: nil entity")
	}

	cs := documentCharset(d)
	w := &writer{}
	w.sb.WriteString("[" + crlf)
	w.encodedText("name", d.Name(), cs)
	w.scalar(tagAttrsNull, "attributes", attributesValue(d.Attributes()), false)
	w.scalar(tagDateNull, "last_modified", dateNullValue(d.LastModified()), false)

	items := make([]string, 0, len(d.Entities()))
	tags := make([]string, 0, len(d.Entities()))
	for _, child := range d.Entities() {
		if w.err != nil {
			break
		}
		var (
			item string
			err  error
		)
		switch e := child.(type) {
		case *hypermedia.Directory:
			item, err = f.EncodeDirectory(e)
			tags = append(tags, itemDirectory)
		case *hypermedia.File:
			item, err = f.EncodeFile(e)
			tags = append(tags, itemFile)
		default:
			err = &hypermedia.FormatError{Code: hypermedia.ErrUnknownTag, Message: fmt.Sprintf("%s cannot be a directory child", child.Kind())}
		}
		if err != nil {
			w.err = err
			break
		}
		items = append(items, item)
	}
	w.list(listSystemEntity, "entities", items, tags)

	w.scalar(tagUint64, "size", strconv.FormatUint(d.Size(), 10), false)
	w.checkedScalar(tagString, "parent_path", parentPathToken(format.ParentPathOf(d.Parent())), false)
	w.checkedScalar(tagString, "hash", d.Hash(), true)
	w.sb.WriteString("]")

	if w.err != nil {
		return "", fmt.Errorf("encode directory %q: %w", d.Name(), w.err)
	}
	return w.sb.String(), nil
}

// EncodeFile serializes a File record, recursing into blocks.
func (f *Format) EncodeFile(file *hypermedia.File) (string, error) {
	if file == nil {
		return "", fmt.Errorf("encode file: nil entity")
	}

	cs := documentCharset(file)
	w := &writer{}
	w.sb.WriteString("[" + crlf)
	w.encodedText("name", file.Name(), cs)
	w.checkedScalar(tagString, "extension", file.Extension(), false)
	w.scalar(tagAttrsNull, "attributes", attributesValue(file.Attributes()), false)
	w.scalar(tagDateNull, "last_modified", dateNullValue(file.LastModified()), false)
	w.scalar(tagBoolean, "is_single_block", strconv.FormatBool(file.IsSingleBlock()), false)

	items := make([]string, 0, len(file.Blocks()))
	tags := make([]string, 0, len(file.Blocks()))
	for _, b := range file.Blocks() {
		if w.err != nil {
			break
		}
		item, err := f.EncodeBlock(b)
		if err != nil {
			w.err = err
			break
		}
		items = append(items, item)
		tags = append(tags, itemBlock)
	}
	w.list(listBlock, "blocks", items, tags)

	w.scalar(tagUint64, "size", strconv.FormatUint(file.Size(), 10), false)
	w.checkedScalar(tagString, "parent_path", parentPathToken(format.ParentPathOf(file.Parent())), false)
	w.checkedScalar(tagString, "hash", file.Hash(), true)
	w.sb.WriteString("]")

	if w.err != nil {
		return "", fmt.Errorf("encode file %q: %w", file.Name(), w.err)
	}
	return w.sb.String(), nil
}

// EncodeBlock serializes a Block record.
func (f *Format) EncodeBlock(b *hypermedia.Block) (string, error) {
	if b == nil {
		return "", fmt.Errorf("encode block: nil entity")
	}

	w := &writer{}
	w.sb.WriteString("[" + crlf)
	w.scalar(tagUint64, "size", strconv.FormatUint(b.Size(), 10), false)
	w.checkedScalar(tagString, "parent_path", parentPathToken(format.ParentPathOf(b.Parent())), false)
	w.checkedScalar(tagString, "hash", b.Hash(), true)
	w.sb.WriteString("]")

	if w.err != nil {
		return "", fmt.Errorf("encode block %s: %w", b.Path(), w.err)
	}
	return w.sb.String(), nil
}

// documentCharset resolves the owning container's declared encoding for
// name byte rendering; detached subtrees fall back to UTF-8.
func documentCharset(e hypermedia.Entity) charset.Charset {
	for cur := e; cur != nil; cur = cur.Parent() {
		if c, ok := cur.(*hypermedia.Container); ok {
			return c.Charset()
		}
	}
	return charset.UTF8
}

func attributesValue(attrs *hypermedia.Attributes) string {
	if attrs == nil {
		return nullToken
	}
	return attrs.String()
}

func dateNullValue(t *time.Time) string {
	if t == nil {
		return nullToken
	}
	return strconv.FormatInt(t.Unix(), 10)
}
