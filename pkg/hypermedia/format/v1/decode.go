package v1

import (
	"fmt"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/charset"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/format"
)

// Decoding runs the validating scan first, as the gate against malformed
// input: the scan walks the entire grammar with typed errors but allocates
// no entities. Only after the record is known to be well-formed are
// entities constructed from the collected field values, so a decode error
// never leaves a partial tree behind.

// DecodeContainer deserializes a Container record. parentPath is the
// expected parent path (nil for a document root); a disagreeing embedded
// parent_path fails with ParentMismatch.
func (f *Format) DecodeContainer(text string, parentPath *string) (*hypermedia.Container, error) {
	rec := &containerRecord{}
	if err := scanContainer(text, parentPath, rec); err != nil {
		return nil, err
	}
	return f.buildContainer(rec)
}

// DecodeDirectory deserializes a Directory record. Detached decoding
// (outside a container) assumes UTF-8 name bytes.
func (f *Format) DecodeDirectory(text string, parentPath *string) (*hypermedia.Directory, error) {
	return f.decodeDirectoryIn(text, parentPath, charset.UTF8)
}

// DecodeFile deserializes a File record. Detached decoding assumes UTF-8
// name bytes.
func (f *Format) DecodeFile(text string, parentPath *string) (*hypermedia.File, error) {
	return f.decodeFileIn(text, parentPath, charset.UTF8)
}

// DecodeBlock deserializes a Block record. The returned block is detached:
// ownership and ordinal are assigned when the owning File is constructed.
func (f *Format) DecodeBlock(text string, parentPath *string) (*hypermedia.Block, error) {
	rec := &blockRecord{}
	if err := scanBlock(text, parentPath, rec); err != nil {
		return nil, err
	}
	return buildBlock(rec)
}

// decodeDirectoryIn decodes a Directory with an inherited document charset.
func (f *Format) decodeDirectoryIn(text string, parentPath *string, cs charset.Charset) (*hypermedia.Directory, error) {
	rec := &directoryRecord{}
	if err := scanDirectory(text, parentPath, cs, rec); err != nil {
		return nil, err
	}
	return f.buildDirectory(rec, cs)
}

// decodeFileIn decodes a File with an inherited document charset.
func (f *Format) decodeFileIn(text string, parentPath *string, cs charset.Charset) (*hypermedia.File, error) {
	rec := &fileRecord{}
	if err := scanFile(text, parentPath, cs, rec); err != nil {
		return nil, err
	}
	return f.buildFile(rec, cs)
}

// buildContainer assembles a Container from its scanned record, decoding
// children bottom-up in text order. Nested `hypermedia` children dispatch
// through the registry, since they may use a different revision.
func (f *Format) buildContainer(rec *containerRecord) (*hypermedia.Container, error) {
	children := make([]hypermedia.Entity, 0, len(rec.childTexts))
	for i, childText := range rec.childTexts {
		var (
			child hypermedia.Entity
			err   error
		)
		switch rec.childTags[i] {
		case itemHypermedia:
			child, err = format.DecodeAny(childText, &rec.ownPath)
		case itemDirectory:
			child, err = f.decodeDirectoryIn(childText, &rec.ownPath, rec.cs)
		case itemFile:
			child, err = f.decodeFileIn(childText, &rec.ownPath, rec.cs)
		}
		if err != nil {
			return nil, fmt.Errorf("decode container child %d: %w", i, err)
		}
		children = append(children, child)
	}

	c, err := hypermedia.NewContainer(hypermedia.ContainerOptions{
		Name:                rec.name,
		Comment:             rec.comment,
		Charset:             rec.cs,
		Created:             rec.created,
		CreatedBy:           rec.createdBy,
		CreatorPeer:         rec.creatorPeer,
		DirectoryWrapped:    rec.directoryWrapped,
		Raw:                 rec.raw,
		SubscriptionMessage: rec.subscriptionMessage,
		SeedingMessage:      rec.seedingMessage,
		Version:             rec.version,
	}, children)
	if err != nil {
		return nil, err
	}

	if rec.hash != "" {
		if err := c.RestoreHash(rec.hash); err != nil {
			return nil, err
		}
	}
	if rec.topic != "" {
		if err := c.RestoreTopic(rec.topic); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// buildDirectory assembles a Directory from its scanned record.
func (f *Format) buildDirectory(rec *directoryRecord, cs charset.Charset) (*hypermedia.Directory, error) {
	children := make([]hypermedia.Entity, 0, len(rec.childTexts))
	for i, childText := range rec.childTexts {
		var (
			child hypermedia.Entity
			err   error
		)
		switch rec.childTags[i] {
		case itemDirectory:
			child, err = f.decodeDirectoryIn(childText, &rec.ownPath, cs)
		case itemFile:
			child, err = f.decodeFileIn(childText, &rec.ownPath, cs)
		}
		if err != nil {
			return nil, fmt.Errorf("decode directory child %d: %w", i, err)
		}
		children = append(children, child)
	}

	d, err := hypermedia.NewDirectory(rec.name, rec.attributes, rec.lastModified, children)
	if err != nil {
		return nil, err
	}
	if rec.hash != "" {
		if err := d.RestoreHash(rec.hash); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// buildFile assembles a File and its blocks from the scanned record.
func (f *Format) buildFile(rec *fileRecord, cs charset.Charset) (*hypermedia.File, error) {
	blocks := make([]*hypermedia.Block, 0, len(rec.blockTexts))
	for i, blockText := range rec.blockTexts {
		brec := &blockRecord{}
		if err := scanBlock(blockText, &rec.ownPath, brec); err != nil {
			return nil, fmt.Errorf("decode block %d: %w", i, err)
		}
		b, err := buildBlock(brec)
		if err != nil {
			return nil, fmt.Errorf("decode block %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}

	file, err := hypermedia.NewFile(rec.name, rec.extension, rec.attributes, rec.lastModified, rec.singleBlock, blocks, rec.size)
	if err != nil {
		return nil, err
	}
	if rec.hash != "" {
		if err := file.RestoreHash(rec.hash); err != nil {
			return nil, err
		}
	}
	return file, nil
}

// buildBlock assembles a Block from its scanned record.
func buildBlock(rec *blockRecord) (*hypermedia.Block, error) {
	b := hypermedia.NewBlock(rec.size)
	if rec.hash != "" {
		if err := b.RestoreHash(rec.hash); err != nil {
			return nil, err
		}
	}
	return b, nil
}
