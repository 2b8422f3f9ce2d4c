package hypermedia

import (
	"fmt"
	"time"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/charset"
)

// Container is a root or nested hypermedia document node aggregating
// children. A Container is never empty: constructing or decoding one with
// zero children is a hard EmptyChildren error.
type Container struct {
	name                string
	comment             string
	cs                  charset.Charset
	created             time.Time
	createdBy           string
	creatorPeer         string
	directoryWrapped    bool
	raw                 bool
	subscriptionMessage string
	seedingMessage      string
	version             string
	topic               string
	entities            []Entity
	size                uint64
	parent              *Container
	hash                string
}

// ContainerOptions carries the scalar attributes of a Container. Children
// are passed to NewContainer separately because they are the owned
// collection, not an attribute.
type ContainerOptions struct {
	// Name is the human-readable container name (1-255 code points)
	Name string

	// Comment is an optional free-form note; empty means absent
	Comment string

	// Charset is the document text encoding governing name/comment bytes
	// for hashing and the wire form; zero value means UTF-8
	Charset charset.Charset

	// Created is the creation timestamp; stored at second precision, UTC
	Created time.Time

	// CreatedBy identifies the creator
	CreatedBy string

	// CreatorPeer is the optional creator network address
	CreatorPeer string

	// DirectoryWrapped indicates children are wrapped in a synthetic
	// directory
	DirectoryWrapped bool

	// Raw indicates children were reconstructed from an untrusted or raw
	// source and metadata may be unreliable
	Raw bool

	// SubscriptionMessage and SeedingMessage are the default pubsub
	// protocol messages distributed with the document
	SubscriptionMessage string
	SeedingMessage      string

	// Version is the format version tag, "<name>/<major>.<minor>.<patch>"
	Version string
}

// NewContainer creates a container and takes ownership of its children.
//
// Children must be Containers, Directories or Files, and there must be at
// least one. The version tag must parse. Size is the sum of child sizes.
func NewContainer(opts ContainerOptions, entities []Entity) (*Container, error) {
	if err := ValidateName(opts.Name); err != nil {
		return nil, err
	}
	if _, err := ParseVersionTag(opts.Version); err != nil {
		return nil, fmt.Errorf("container version: %w", err)
	}
	if len(entities) == 0 {
		return nil, &FormatError{Code: ErrEmptyChildren, Message: "container requires at least one child entity"}
	}

	cs := opts.Charset
	if cs.IsZero() {
		cs = charset.UTF8
	}

	c := &Container{
		name:                opts.Name,
		comment:             opts.Comment,
		cs:                  cs,
		created:             opts.Created.UTC().Truncate(time.Second),
		createdBy:           opts.CreatedBy,
		creatorPeer:         opts.CreatorPeer,
		directoryWrapped:    opts.DirectoryWrapped,
		raw:                 opts.Raw,
		subscriptionMessage: opts.SubscriptionMessage,
		seedingMessage:      opts.SeedingMessage,
		version:             opts.Version,
		entities:            entities,
	}
	for _, e := range entities {
		switch child := e.(type) {
		case *Container:
			child.parent = c
		case *Directory:
			child.setParent(c)
		case *File:
			child.setParent(c)
		default:
			return nil, &FormatError{Code: ErrAttributeDomain, Message: fmt.Sprintf("%s cannot be a container child", e.Kind())}
		}
		c.size += e.Size()
	}
	return c, nil
}

// Kind returns KindContainer.
func (c *Container) Kind() Kind { return KindContainer }

// Path returns the derived path, or "" for the document root: the root is
// the only entity without a path.
func (c *Container) Path() string {
	if c.parent == nil {
		return ""
	}
	return childPath(c.parent, c.name)
}

// Name returns the container name.
func (c *Container) Name() string { return c.name }

// Comment returns the optional comment; empty means absent.
func (c *Container) Comment() string { return c.comment }

// Charset returns the document text encoding.
func (c *Container) Charset() charset.Charset { return c.cs }

// Created returns the creation timestamp (UTC, second precision).
func (c *Container) Created() time.Time { return c.created }

// CreatedBy returns the creator identity string.
func (c *Container) CreatedBy() string { return c.createdBy }

// CreatorPeer returns the optional creator network address.
func (c *Container) CreatorPeer() string { return c.creatorPeer }

// IsDirectoryWrapped reports whether children are wrapped in a synthetic
// directory.
func (c *Container) IsDirectoryWrapped() bool { return c.directoryWrapped }

// IsRaw reports whether children were reconstructed from an untrusted or
// raw source.
func (c *Container) IsRaw() bool { return c.raw }

// SubscriptionMessage returns the default subscription protocol message.
func (c *Container) SubscriptionMessage() string { return c.subscriptionMessage }

// SeedingMessage returns the default seeding protocol message.
func (c *Container) SeedingMessage() string { return c.seedingMessage }

// Version returns the format version tag string.
func (c *Container) Version() string { return c.version }

// Topic returns the derived pubsub topic, or "" while unset.
func (c *Container) Topic() string { return c.topic }

// Entities returns the ordered children (never empty).
func (c *Container) Entities() []Entity { return c.entities }

// Size returns the sum of descendant sizes.
func (c *Container) Size() uint64 { return c.size }

// Hash returns the finalized digest as uppercase hex, or "" when unset.
func (c *Container) Hash() string { return c.hash }

// Parent returns the parent Container, or nil for the document root. A
// Container's parent is never a Directory or File.
func (c *Container) Parent() Entity {
	if c.parent == nil {
		return nil
	}
	return c.parent
}

// SetHash digests the container name in the document encoding plus its
// children's already-finalized digests. Content bytes are never accepted.
func (c *Container) SetHash(content []byte) error {
	if c.hash != "" {
		return &FormatError{Code: ErrAlreadySet, Message: "hash can only be set once", Path: c.Path()}
	}
	if content != nil {
		return &FormatError{Code: ErrAttributeDomain, Message: "container hashing takes no content", Path: c.Path()}
	}

	digest, err := treeDigest(c.name, c.cs, c.entities)
	if err != nil {
		return fmt.Errorf("hash container %s: %w", c.Path(), err)
	}
	c.hash = digest
	return nil
}

// SetTopic performs the write-once topic transition: topic becomes
// "<path>_<hash>". The hash must already be finalized.
func (c *Container) SetTopic() error {
	if c.topic != "" {
		return &FormatError{Code: ErrAlreadySet, Message: "topic can only be set once", Path: c.Path()}
	}
	if c.hash == "" {
		return &FormatError{Code: ErrAttributeDomain, Message: "topic requires the hash to be set first", Path: c.Path()}
	}
	c.topic = c.Path() + "_" + c.hash
	return nil
}

// RestoreHash reinstates a digest recovered from the wire during decoding.
func (c *Container) RestoreHash(hash string) error {
	if c.hash != "" {
		return &FormatError{Code: ErrAlreadySet, Message: "hash can only be set once", Path: c.Path()}
	}
	if !IsDigestHex(hash) {
		return &FormatError{Code: ErrScalarParse, Message: "malformed digest", Path: c.Path()}
	}
	c.hash = hash
	return nil
}

// RestoreTopic reinstates a topic recovered from the wire during decoding.
// Subject to the same write-once rule as SetTopic.
func (c *Container) RestoreTopic(topic string) error {
	if c.topic != "" {
		return &FormatError{Code: ErrAlreadySet, Message: "topic can only be set once", Path: c.Path()}
	}
	c.topic = topic
	return nil
}
