package hypermedia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributesString(t *testing.T) {
	tests := []struct {
		name  string
		attrs Attributes
		want  string
	}{
		{name: "normal", attrs: AttrNormal, want: "normal"},
		{name: "directory", attrs: AttrDirectory, want: "directory"},
		{name: "hidden read-only", attrs: AttrHidden | AttrReadOnly, want: "hidden|read_only"},
		{name: "directory hidden read-only", attrs: AttrDirectory | AttrHidden | AttrReadOnly, want: "directory|hidden|read_only"},
		{name: "empty set", attrs: 0, want: "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.attrs.String())
		})
	}
}

func TestParseAttributes(t *testing.T) {
	t.Run("round-trips canonical forms", func(t *testing.T) {
		for _, attrs := range append(fileAttributeSets, directoryAttributeSets...) {
			parsed, err := ParseAttributes(attrs.String())
			require.NoError(t, err, "set %q", attrs)
			assert.Equal(t, attrs, parsed)
		}
	})

	t.Run("rejects unknown token", func(t *testing.T) {
		_, err := ParseAttributes("normal|archive")
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAttributeDomain))
	})

	t.Run("rejects duplicate token", func(t *testing.T) {
		_, err := ParseAttributes("hidden|hidden")
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAttributeDomain))
	})

	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseAttributes("")
		require.Error(t, err)
	})
}

func TestAttributeDomains(t *testing.T) {
	tests := []struct {
		name    string
		attrs   Attributes
		forFile bool
		forDir  bool
	}{
		{name: "normal", attrs: AttrNormal, forFile: true},
		{name: "hidden", attrs: AttrHidden, forFile: true},
		{name: "read_only", attrs: AttrReadOnly, forFile: true},
		{name: "hidden|read_only", attrs: AttrHidden | AttrReadOnly, forFile: true},
		{name: "directory", attrs: AttrDirectory, forDir: true},
		{name: "directory|hidden", attrs: AttrDirectory | AttrHidden, forDir: true},
		{name: "directory|read_only", attrs: AttrDirectory | AttrReadOnly, forDir: true},
		{name: "directory|hidden|read_only", attrs: AttrDirectory | AttrHidden | AttrReadOnly, forDir: true},
		{name: "normal|hidden is never legal", attrs: AttrNormal | AttrHidden},
		{name: "directory|normal is never legal", attrs: AttrDirectory | AttrNormal},
		{name: "empty set is never legal", attrs: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.forFile, tt.attrs.ValidForFile())
			assert.Equal(t, tt.forDir, tt.attrs.ValidForDirectory())
		})
	}
}

func TestAttributeConstructorEnforcement(t *testing.T) {
	dirAttrs := AttrDirectory
	fileAttrs := AttrNormal

	t.Run("file rejects directory attributes", func(t *testing.T) {
		_, err := NewFile("a", "txt", &dirAttrs, nil, true, nil, 0)
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAttributeDomain))
	})

	t.Run("directory rejects file attributes", func(t *testing.T) {
		_, err := NewDirectory("docs", &fileAttrs, nil, nil)
		require.Error(t, err)
		assert.True(t, IsCode(err, ErrAttributeDomain))
	})

	t.Run("nil attributes are always legal", func(t *testing.T) {
		_, err := NewFile("a", "txt", nil, nil, true, nil, 0)
		assert.NoError(t, err)
		_, err = NewDirectory("docs", nil, nil, nil)
		assert.NoError(t, err)
	})
}
