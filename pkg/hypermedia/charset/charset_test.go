package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Run("utf-8 aliases", func(t *testing.T) {
		for _, name := range []string{"utf-8", "UTF-8", ""} {
			cs, err := Lookup(name)
			require.NoError(t, err)
			assert.Equal(t, "utf-8", cs.Name())
		}
	})

	t.Run("iana names resolve", func(t *testing.T) {
		for _, name := range []string{"us-ascii", "iso-8859-1", "windows-1251"} {
			cs, err := Lookup(name)
			require.NoError(t, err, name)
			assert.NotEmpty(t, cs.Name())
		}
	})

	t.Run("unknown name fails", func(t *testing.T) {
		_, err := Lookup("definitely-not-a-charset")
		assert.Error(t, err)
	})
}

func TestBytesStringRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		charset string
		text    string
	}{
		{name: "ascii text in utf-8", charset: "utf-8", text: "hello"},
		{name: "cyrillic text in utf-8", charset: "utf-8", text: "файл"},
		{name: "latin-1 text", charset: "iso-8859-1", text: "café"},
		{name: "empty string", charset: "utf-8", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs, err := Lookup(tt.charset)
			require.NoError(t, err)

			raw, err := cs.Bytes(tt.text)
			require.NoError(t, err)

			back, err := cs.String(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.text, back)
		})
	}
}

func TestLatin1SingleBytePerRune(t *testing.T) {
	cs, err := Lookup("iso-8859-1")
	require.NoError(t, err)

	raw, err := cs.Bytes("café")
	require.NoError(t, err)
	assert.Len(t, raw, 4, "latin-1 encodes one byte per character")
}

func TestByteList(t *testing.T) {
	t.Run("renders decimal values", func(t *testing.T) {
		assert.Equal(t, "100 101 109 111", ByteList([]byte("demo")))
	})

	t.Run("empty sequence", func(t *testing.T) {
		assert.Equal(t, "", ByteList(nil))
	})

	t.Run("round-trip", func(t *testing.T) {
		in := []byte{0, 1, 127, 128, 255}
		out, err := ParseByteList(ByteList(in))
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})
}

func TestParseByteList(t *testing.T) {
	t.Run("empty string yields empty sequence", func(t *testing.T) {
		out, err := ParseByteList("")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	tests := []struct {
		name  string
		value string
	}{
		{name: "value above 255", value: "256"},
		{name: "negative value", value: "-1"},
		{name: "non-numeric token", value: "100 abc"},
		{name: "double space", value: "100  101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseByteList(tt.value)
			assert.Error(t, err)
		})
	}
}

func TestZeroValueIsUTF8(t *testing.T) {
	var cs Charset
	assert.True(t, cs.IsZero())
	assert.Equal(t, "utf-8", cs.Name())

	raw, err := cs.Bytes("ok")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), raw)
}
