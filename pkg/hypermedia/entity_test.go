package hypermedia

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/charset"
)

// ============================================================================
// Test Helper Functions
// ============================================================================

func testOptions(name string) ContainerOptions {
	return ContainerOptions{
		Name:      name,
		Created:   time.Unix(1724500000, 0),
		CreatedBy: "tester",
		Version:   "hypermedia/0.1.0",
	}
}

func singleBlockFile(t *testing.T, name string, size uint64) *File {
	t.Helper()
	f, err := NewFile(name, "txt", nil, nil, true, nil, size)
	require.NoError(t, err)
	return f
}

// ============================================================================
// Name Validation Tests
// ============================================================================

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "single character", value: "a"},
		{name: "ordinary name", value: "reports"},
		{name: "unicode name", value: "файл"},
		{name: "255 code points", value: strings.Repeat("é", 255)},
		{name: "empty", value: "", wantErr: true},
		{name: "256 code points", value: strings.Repeat("é", 256), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsCode(err, ErrAttributeDomain))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// ============================================================================
// Path Derivation Tests
// ============================================================================

func TestPathDerivation(t *testing.T) {
	file := singleBlockFile(t, "a", 3)
	dir, err := NewDirectory("docs", nil, nil, []Entity{file})
	require.NoError(t, err)

	root, err := NewContainer(testOptions("demo"), []Entity{dir})
	require.NoError(t, err)

	assert.Equal(t, "", root.Path(), "document root has no path")
	assert.Equal(t, "/docs", dir.Path())
	assert.Equal(t, "/docs/a", file.Path())
	assert.Equal(t, root, dir.Parent())
	assert.Equal(t, dir, file.Parent())
}

func TestBlockPath(t *testing.T) {
	b0 := NewBlock(4)
	b1 := NewBlock(4)
	assert.Equal(t, "", b0.Path(), "detached block has no path")

	file, err := NewFile("movie", "mkv", nil, nil, false, []*Block{b0, b1}, 0)
	require.NoError(t, err)

	_, err = NewContainer(testOptions("media"), []Entity{file})
	require.NoError(t, err)

	assert.Equal(t, "/movie/0", b0.Path())
	assert.Equal(t, "/movie/1", b1.Path())
	assert.Equal(t, file, b0.Parent())
}

// ============================================================================
// Constructor Invariant Tests
// ============================================================================

func TestNewContainerRejectsEmptyChildren(t *testing.T) {
	_, err := NewContainer(testOptions("empty"), nil)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrEmptyChildren))
}

func TestNewContainerRejectsBadVersion(t *testing.T) {
	opts := testOptions("demo")
	opts.Version = "not-a-version"
	_, err := NewContainer(opts, []Entity{singleBlockFile(t, "a", 1)})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrScalarParse))
}

func TestNewContainerRejectsBlockChild(t *testing.T) {
	_, err := NewContainer(testOptions("demo"), []Entity{NewBlock(1)})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrAttributeDomain))
}

func TestNewContainerDefaultsCharset(t *testing.T) {
	c, err := NewContainer(testOptions("demo"), []Entity{singleBlockFile(t, "a", 1)})
	require.NoError(t, err)
	assert.Equal(t, "utf-8", c.Charset().Name())
	assert.Equal(t, time.Unix(1724500000, 0).UTC(), c.Created())
}

func TestNewDirectoryRejectsContainerChild(t *testing.T) {
	nested, err := NewContainer(testOptions("inner"), []Entity{singleBlockFile(t, "a", 1)})
	require.NoError(t, err)

	_, err = NewDirectory("docs", nil, nil, []Entity{nested})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrAttributeDomain))
}

func TestNewDirectoryAllowsEmpty(t *testing.T) {
	d, err := NewDirectory("empty", nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, d.Entities())
	assert.Equal(t, uint64(0), d.Size())
}

func TestNewFileBlockInvariants(t *testing.T) {
	t.Run("single-block file must not carry blocks", func(t *testing.T) {
		_, err := NewFile("a", "txt", nil, nil, true, []*Block{NewBlock(1)}, 1)
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAttributeDomain))
	})

	t.Run("multi-block file requires blocks", func(t *testing.T) {
		_, err := NewFile("a", "txt", nil, nil, false, nil, 1)
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAttributeDomain))
	})

	t.Run("multi-block size derives from blocks", func(t *testing.T) {
		f, err := NewFile("a", "txt", nil, nil, false, []*Block{NewBlock(4), NewBlock(6)}, 999)
		require.NoError(t, err)
		assert.Equal(t, uint64(10), f.Size(), "declared size is ignored for multi-block files")
	})
}

// ============================================================================
// Size Aggregation Tests
// ============================================================================

func TestSizeAggregation(t *testing.T) {
	f1 := singleBlockFile(t, "a", 10)
	f2 := singleBlockFile(t, "b", 32)
	dir, err := NewDirectory("docs", nil, nil, []Entity{f1, f2})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), dir.Size())

	f3 := singleBlockFile(t, "c", 8)
	root, err := NewContainer(testOptions("demo"), []Entity{dir, f3})
	require.NoError(t, err)
	assert.Equal(t, uint64(50), root.Size())
}

// ============================================================================
// Owner Charset Tests
// ============================================================================

func TestOwnerCharset(t *testing.T) {
	ascii, err := charset.Lookup("us-ascii")
	require.NoError(t, err)

	file := singleBlockFile(t, "a", 1)
	opts := testOptions("demo")
	opts.Charset = ascii
	_, err = NewContainer(opts, []Entity{file})
	require.NoError(t, err)

	assert.Equal(t, ascii.Name(), ownerCharset(file).Name())

	detached := singleBlockFile(t, "b", 1)
	assert.Equal(t, "utf-8", ownerCharset(detached).Name(), "detached entities fall back to UTF-8")
}
