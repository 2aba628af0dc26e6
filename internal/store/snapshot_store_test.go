package store

import (
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestZstdRoundTrip exercises the same encoder/decoder pairing Store.Save
// and Store.Latest rely on, without requiring a live Postgres connection.
func TestZstdRoundTrip(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer dec.Close()

	raw := []byte("ask/bid L2 payload bytes, repeated repeated repeated for compressibility")
	compressed := enc.EncodeAll(raw, nil)
	assert.NotEmpty(t, compressed)

	decompressed, err := dec.DecodeAll(compressed, nil)
	require.NoError(t, err)
	assert.Equal(t, raw, decompressed)
}

func TestSnapshotRecordTableName(t *testing.T) {
	assert.Equal(t, "book_snapshots", snapshotRecord{}.TableName())
}
