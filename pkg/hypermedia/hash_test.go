package hypermedia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Digest Primitive Tests
// ============================================================================

func TestDigestHex(t *testing.T) {
	digest := Keccak512([]byte("foo"))
	require.Len(t, digest, DigestSize)

	rendered := DigestHex(digest)
	assert.Len(t, rendered, DigestHexLen)
	assert.True(t, IsDigestHex(rendered))

	// Legacy Keccak, not NIST SHA3: the two differ in padding and must not
	// collide on the same input.
	assert.NotEqual(t, rendered, DigestHex(Keccak512([]byte("bar"))))
}

func TestIsDigestHex(t *testing.T) {
	valid := DigestHex(Keccak512([]byte("x")))

	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "rendered digest", value: valid, want: true},
		{name: "lowercase hex", value: "ab" + valid[2:], want: false},
		{name: "too short", value: valid[:DigestHexLen-1], want: false},
		{name: "too long", value: valid + "A", want: false},
		{name: "non-hex character", value: "G" + valid[1:], want: false},
		{name: "empty", value: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDigestHex(tt.value))
		})
	}
}

// ============================================================================
// Write-Once Transition Tests
// ============================================================================

func TestSetHashIsWriteOnce(t *testing.T) {
	t.Run("block", func(t *testing.T) {
		b := NewBlock(3)
		require.NoError(t, b.SetHash([]byte("foo")))
		err := b.SetHash([]byte("foo"))
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAlreadySet))
	})

	t.Run("single-block file", func(t *testing.T) {
		f := singleBlockFile(t, "a", 3)
		require.NoError(t, f.SetHash([]byte("foo")))
		err := f.SetHash([]byte("bar"))
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAlreadySet))
	})

	t.Run("restore after set", func(t *testing.T) {
		f := singleBlockFile(t, "a", 3)
		require.NoError(t, f.SetHash([]byte("foo")))
		err := f.RestoreHash(DigestHex(Keccak512([]byte("other"))))
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAlreadySet))
	})
}

func TestSetHashContentRules(t *testing.T) {
	t.Run("block requires content", func(t *testing.T) {
		err := NewBlock(3).SetHash(nil)
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAttributeDomain))
	})

	t.Run("single-block file requires content", func(t *testing.T) {
		err := singleBlockFile(t, "a", 3).SetHash(nil)
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAttributeDomain))
	})

	t.Run("multi-block file refuses content", func(t *testing.T) {
		f, err := NewFile("a", "txt", nil, nil, false, []*Block{NewBlock(3)}, 0)
		require.NoError(t, err)
		err = f.SetHash([]byte("foo"))
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAttributeDomain))
	})

	t.Run("directory refuses content", func(t *testing.T) {
		d, err := NewDirectory("docs", nil, nil, nil)
		require.NoError(t, err)
		err = d.SetHash([]byte("foo"))
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAttributeDomain))
	})

	t.Run("container refuses content", func(t *testing.T) {
		c, err := NewContainer(testOptions("demo"), []Entity{singleBlockFile(t, "a", 3)})
		require.NoError(t, err)
		err = c.SetHash([]byte("foo"))
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAttributeDomain))
	})
}

// ============================================================================
// Hash Chain Tests
// ============================================================================

// TestHashChainComposition verifies the bottom-up chain on a minimal tree: a
// root container holding one single-block file. The container digest must be
// the digest of its name bytes concatenated with the file's rendered digest.
func TestHashChainComposition(t *testing.T) {
	file := singleBlockFile(t, "a", 3)
	root, err := NewContainer(testOptions("demo"), []Entity{file})
	require.NoError(t, err)

	content := []byte("foo")
	require.NoError(t, file.SetHash(content))
	require.NoError(t, root.SetHash(nil))

	wantFile := DigestHex(Keccak512(content))
	assert.Equal(t, wantFile, file.Hash())

	payload := append([]byte("demo"), wantFile...)
	assert.Equal(t, DigestHex(Keccak512(payload)), root.Hash())
}

func TestHashChainRequiresBottomUpOrder(t *testing.T) {
	file := singleBlockFile(t, "a", 3)
	root, err := NewContainer(testOptions("demo"), []Entity{file})
	require.NoError(t, err)

	err = root.SetHash(nil)
	require.Error(t, err, "hashing a container before its children must fail")
	assert.Equal(t, "", root.Hash())
}

func TestMultiBlockFileHash(t *testing.T) {
	b0 := NewBlock(3)
	b1 := NewBlock(3)
	file, err := NewFile("movie", "mkv", nil, nil, false, []*Block{b0, b1}, 0)
	require.NoError(t, err)

	require.NoError(t, b0.SetHash([]byte("aaa")))
	require.NoError(t, b1.SetHash([]byte("bbb")))
	require.NoError(t, file.SetHash(nil))

	payload := append([]byte("movie"), b0.Hash()...)
	payload = append(payload, b1.Hash()...)
	assert.Equal(t, DigestHex(Keccak512(payload)), file.Hash())
}

// TestHashChainDeterminism verifies that two structurally identical trees
// hashed bottom-up produce identical root digests.
func TestHashChainDeterminism(t *testing.T) {
	build := func() *Container {
		f1 := singleBlockFile(t, "a", 3)
		f2 := singleBlockFile(t, "b", 3)
		dir, err := NewDirectory("docs", nil, nil, []Entity{f1, f2})
		require.NoError(t, err)
		root, err := NewContainer(testOptions("demo"), []Entity{dir})
		require.NoError(t, err)

		require.NoError(t, f1.SetHash([]byte("one")))
		require.NoError(t, f2.SetHash([]byte("two")))
		require.NoError(t, dir.SetHash(nil))
		require.NoError(t, root.SetHash(nil))
		return root
	}

	assert.Equal(t, build().Hash(), build().Hash())
}

func TestChildContentChangesRootHash(t *testing.T) {
	build := func(content []byte) string {
		f := singleBlockFile(t, "a", uint64(len(content)))
		root, err := NewContainer(testOptions("demo"), []Entity{f})
		require.NoError(t, err)
		require.NoError(t, f.SetHash(content))
		require.NoError(t, root.SetHash(nil))
		return root.Hash()
	}

	assert.NotEqual(t, build([]byte("foo")), build([]byte("fop")))
}

// ============================================================================
// Topic Transition Tests
// ============================================================================

func TestSetTopic(t *testing.T) {
	file := singleBlockFile(t, "a", 3)
	root, err := NewContainer(testOptions("demo"), []Entity{file})
	require.NoError(t, err)

	t.Run("requires hash first", func(t *testing.T) {
		err := root.SetTopic()
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAttributeDomain))
	})

	require.NoError(t, file.SetHash([]byte("foo")))
	require.NoError(t, root.SetHash(nil))

	t.Run("derives path and hash", func(t *testing.T) {
		require.NoError(t, root.SetTopic())
		// The document root has no path, so the topic starts at the joiner.
		assert.Equal(t, "_"+root.Hash(), root.Topic())
	})

	t.Run("write-once", func(t *testing.T) {
		err := root.SetTopic()
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAlreadySet))
	})
}

func TestRestoreHashValidatesDigest(t *testing.T) {
	b := NewBlock(1)
	err := b.RestoreHash("not-a-digest")
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrScalarParse))

	require.NoError(t, b.RestoreHash(DigestHex(Keccak512([]byte("x")))))
}
