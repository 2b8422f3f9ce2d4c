package builder

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/format"
	v1 "github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/format/v1"
)

// testBuilder returns a builder with a fixed clock and creator identity so
// produced documents are deterministic.
func testBuilder() *Builder {
	b := New()
	b.CreatedBy = "builder-test"
	b.now = func() time.Time { return time.Unix(1724500000, 0) }
	return b
}

// ============================================================================
// File splitting
// ============================================================================

func TestFileFromBytes(t *testing.T) {
	t.Run("small content becomes single-block", func(t *testing.T) {
		b := testBuilder()
		f, err := b.FileFromBytes("notes", "txt", []byte("hello"))
		require.NoError(t, err)

		assert.True(t, f.IsSingleBlock())
		assert.Empty(t, f.Blocks())
		assert.Equal(t, uint64(5), f.Size())
		assert.Equal(t, "", f.Hash())
	})

	t.Run("content at the threshold stays single-block", func(t *testing.T) {
		b := testBuilder()
		b.BlockSize = 8
		f, err := b.FileFromBytes("notes", "txt", []byte("12345678"))
		require.NoError(t, err)
		assert.True(t, f.IsSingleBlock())
	})

	t.Run("large content is split into blocks", func(t *testing.T) {
		b := testBuilder()
		b.BlockSize = 4
		f, err := b.FileFromBytes("movie", "mkv", []byte("0123456789"))
		require.NoError(t, err)

		assert.False(t, f.IsSingleBlock())
		require.Len(t, f.Blocks(), 3)
		assert.Equal(t, uint64(4), f.Blocks()[0].Size())
		assert.Equal(t, uint64(4), f.Blocks()[1].Size())
		assert.Equal(t, uint64(2), f.Blocks()[2].Size())
		assert.Equal(t, uint64(10), f.Size())
	})

	t.Run("empty content is a zero-byte single-block file", func(t *testing.T) {
		b := testBuilder()
		f, err := b.FileFromBytes("empty", "", nil)
		require.NoError(t, err)
		assert.True(t, f.IsSingleBlock())
		assert.Equal(t, uint64(0), f.Size())
	})
}

// ============================================================================
// Document assembly
// ============================================================================

func TestContainerFinalizesTree(t *testing.T) {
	b := testBuilder()
	b.BlockSize = 4

	small, err := b.FileFromBytes("notes", "txt", []byte("hello"))
	require.NoError(t, err)
	large, err := b.FileFromBytes("movie", "mkv", []byte("0123456789"))
	require.NoError(t, err)

	dir, err := b.Directory("docs", []hypermedia.Entity{small})
	require.NoError(t, err)

	c, err := b.Container("demo", []hypermedia.Entity{dir, large})
	require.NoError(t, err)

	t.Run("every entity is hashed", func(t *testing.T) {
		assert.NotEmpty(t, c.Hash())
		assert.NotEmpty(t, dir.Hash())
		assert.NotEmpty(t, small.Hash())
		assert.NotEmpty(t, large.Hash())
		for _, block := range large.Blocks() {
			assert.NotEmpty(t, block.Hash())
		}
	})

	t.Run("leaf digests match direct hashing", func(t *testing.T) {
		assert.Equal(t,
			hypermedia.DigestHex(hypermedia.Keccak512([]byte("hello"))),
			small.Hash())
		assert.Equal(t,
			hypermedia.DigestHex(hypermedia.Keccak512([]byte("0123"))),
			large.Blocks()[0].Hash())
	})

	t.Run("root topic is derived from the hash", func(t *testing.T) {
		assert.Equal(t, "_"+c.Hash(), c.Topic())
	})

	t.Run("container carries builder identity", func(t *testing.T) {
		assert.Equal(t, v1.Version, c.Version())
		assert.Equal(t, "builder-test", c.CreatedBy())
		assert.Equal(t, time.Unix(1724500000, 0).UTC(), c.Created())
	})

	t.Run("document encodes and decodes", func(t *testing.T) {
		f, err := format.Lookup(c.Version())
		require.NoError(t, err)
		text, err := f.EncodeContainer(c)
		require.NoError(t, err)

		decoded, err := format.DecodeAny(text, nil)
		require.NoError(t, err)
		assert.Equal(t, c.Hash(), decoded.Hash())
		assert.Equal(t, c.Topic(), decoded.Topic())
		assert.Equal(t, c.Size(), decoded.Size())
	})
}

func TestContainerDeterminism(t *testing.T) {
	build := func() *hypermedia.Container {
		b := testBuilder()
		f, err := b.FileFromBytes("notes", "txt", bytes.Repeat([]byte("x"), 100))
		require.NoError(t, err)
		c, err := b.Container("demo", []hypermedia.Entity{f})
		require.NoError(t, err)
		return c
	}

	assert.Equal(t, build().Hash(), build().Hash())
}

func TestContainerSkipsFinalizedChildren(t *testing.T) {
	inner := testBuilder()
	f, err := inner.FileFromBytes("notes", "txt", []byte("hello"))
	require.NoError(t, err)
	nested, err := inner.Container("inner", []hypermedia.Entity{f})
	require.NoError(t, err)
	nestedHash := nested.Hash()

	outer := testBuilder()
	g, err := outer.FileFromBytes("readme", "md", []byte("# hi"))
	require.NoError(t, err)
	root, err := outer.Container("outer", []hypermedia.Entity{nested, g})
	require.NoError(t, err)

	assert.Equal(t, nestedHash, nested.Hash())
	assert.NotEmpty(t, root.Hash())
}

func TestContainerErrors(t *testing.T) {
	t.Run("no children", func(t *testing.T) {
		b := testBuilder()
		_, err := b.Container("demo", nil)
		require.Error(t, err)
		assert.True(t, hypermedia.IsCode(err, hypermedia.ErrEmptyChildren))
	})

	t.Run("file with unretained content", func(t *testing.T) {
		b := testBuilder()
		// bypasses the builder, so no content bytes are retained
		f, err := hypermedia.NewFile("orphan", "bin", nil, nil, true, nil, 3)
		require.NoError(t, err)

		_, err = b.Container("demo", []hypermedia.Entity{f})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no content retained")
	})

	t.Run("bad version tag", func(t *testing.T) {
		b := testBuilder()
		b.Version = "not-a-version"
		f, err := b.FileFromBytes("notes", "txt", []byte("hello"))
		require.NoError(t, err)

		_, err = b.Container("demo", []hypermedia.Entity{f})
		assert.Error(t, err)
	})
}
