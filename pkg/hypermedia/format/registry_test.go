package format_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia"
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/format"
	v1 "github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia/format/v1"
)

// ============================================================================
// Test Helper Functions
// ============================================================================

func testContainer(t *testing.T) *hypermedia.Container {
	t.Helper()

	file, err := hypermedia.NewFile("a", "txt", nil, nil, true, nil, 3)
	require.NoError(t, err)

	c, err := hypermedia.NewContainer(hypermedia.ContainerOptions{
		Name:      "demo",
		Created:   time.Unix(1724500000, 0),
		CreatedBy: "tester",
		Version:   v1.Version,
	}, []hypermedia.Entity{file})
	require.NoError(t, err)
	return c
}

// ============================================================================
// Registry Tests
// ============================================================================

func TestRegistryHasV1(t *testing.T) {
	f, err := format.Lookup(v1.Version)
	require.NoError(t, err)
	assert.Equal(t, v1.Version, f.Version())
	assert.Contains(t, format.Versions(), v1.Version)
}

func TestLookupUnknownVersion(t *testing.T) {
	_, err := format.Lookup("hypermedia/9.9.9")
	require.Error(t, err)
	assert.True(t, hypermedia.IsCode(err, hypermedia.ErrUnsupportedVersion))
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	err := format.Register(v1.New())
	require.Error(t, err)
}

// ============================================================================
// Version Scan and Dispatch Tests
// ============================================================================

func TestScanVersion(t *testing.T) {
	f, err := format.Lookup(v1.Version)
	require.NoError(t, err)

	text, err := f.EncodeContainer(testContainer(t))
	require.NoError(t, err)

	t.Run("reads the embedded tag", func(t *testing.T) {
		tag, err := format.ScanVersion(text)
		require.NoError(t, err)
		assert.Equal(t, v1.Version, tag)
	})

	t.Run("missing version field", func(t *testing.T) {
		_, err := format.ScanVersion("[\r\n(uint64:size)=3,\r\n]")
		require.Error(t, err)
		assert.True(t, hypermedia.IsCode(err, hypermedia.ErrUnsupportedVersion))
	})

	t.Run("malformed tag", func(t *testing.T) {
		_, err := format.ScanVersion("(string:version)=bogus,\r\n")
		require.Error(t, err)
		assert.True(t, hypermedia.IsCode(err, hypermedia.ErrScalarParse))
	})
}

func TestDecodeAny(t *testing.T) {
	f, err := format.Lookup(v1.Version)
	require.NoError(t, err)

	text, err := f.EncodeContainer(testContainer(t))
	require.NoError(t, err)

	t.Run("dispatches to the registered revision", func(t *testing.T) {
		c, err := format.DecodeAny(text, nil)
		require.NoError(t, err)
		assert.Equal(t, "demo", c.Name())
		assert.Equal(t, v1.Version, c.Version())
	})

	t.Run("unknown revision fails", func(t *testing.T) {
		_, err := format.DecodeAny("(string:version)=hypermedia/9.9.9,\r\n", nil)
		require.Error(t, err)
		assert.True(t, hypermedia.IsCode(err, hypermedia.ErrUnsupportedVersion))
	})
}

func TestValidAnyContainer(t *testing.T) {
	f, err := format.Lookup(v1.Version)
	require.NoError(t, err)

	text, err := f.EncodeContainer(testContainer(t))
	require.NoError(t, err)

	assert.True(t, format.ValidAnyContainer(text, nil))
	assert.False(t, format.ValidAnyContainer(text[:len(text)-1], nil), "truncated document")
	assert.False(t, format.ValidAnyContainer("", nil))
}

func TestParentPathOf(t *testing.T) {
	c := testContainer(t)

	assert.Nil(t, format.ParentPathOf(nil))

	p := format.ParentPathOf(c)
	require.NotNil(t, p)
	assert.Equal(t, "", *p, "document root is pathless")
}
