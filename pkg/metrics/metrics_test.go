package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The registry is write-once process state, so enablement ordering is
// exercised inside a single test.
func TestRegistryLifecycle(t *testing.T) {
	assert.False(t, IsEnabled())
	assert.Nil(t, GetRegistry())

	// nil collectors are valid no-ops before the registry exists
	var codec *CodecMetrics
	codec.ObserveOperation("decode", 128, time.Millisecond, nil)
	codec.ObserveError("decode", "malformed_framing")

	var st *StoreMetrics
	st.ObserveOperation("memory", "put", time.Millisecond, nil)
	st.SetDocumentCount("memory", 3)

	assert.Nil(t, NewCodecMetrics())
	assert.Nil(t, NewStoreMetrics())

	InitRegistry()
	assert.True(t, IsEnabled())
	require.NotNil(t, GetRegistry())

	// idempotent
	InitRegistry()
	assert.True(t, IsEnabled())
}

func TestCollectorsRecord(t *testing.T) {
	InitRegistry()

	codec := NewCodecMetrics()
	require.NotNil(t, codec)
	codec.ObserveOperation("encode", 512, 2*time.Millisecond, nil)
	codec.ObserveOperation("decode", 512, 2*time.Millisecond, fmt.Errorf("boom"))
	codec.ObserveError("decode", "scalar_parse")

	st := NewStoreMetrics()
	require.NotNil(t, st)
	st.ObserveOperation("badger", "get", time.Millisecond, nil)
	st.SetDocumentCount("badger", 7)

	families, err := GetRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["hypermedia_codec_operations_total"])
	assert.True(t, names["hypermedia_codec_errors_total"])
	assert.True(t, names["hypermedia_store_operations_total"])
	assert.True(t, names["hypermedia_store_documents"])
}
