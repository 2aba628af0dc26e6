package matchcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceLevelPutAccumulatesCounters(t *testing.T) {
	l := NewPriceLevel(1000)
	l.Put(&Order{OrderID: 1, UID: 10, Size: 5})
	l.Put(&Order{OrderID: 2, UID: 10, Size: 3})

	assert.Equal(t, uint64(8), l.TotalVolume)
	assert.Equal(t, uint64(2), l.NumOrders)
	assert.Equal(t, uint64(1), l.Front().OrderID)
	require.NoError(t, l.Validate())
}

func TestPriceLevelRemoveRejectsUIDMismatch(t *testing.T) {
	l := NewPriceLevel(1000)
	l.Put(&Order{OrderID: 1, UID: 10, Size: 5})

	assert.Nil(t, l.Remove(1, 99))
	assert.Equal(t, uint64(1), l.NumOrders)

	removed := l.Remove(1, 10)
	require.NotNil(t, removed)
	assert.True(t, l.Empty())
}

func TestPriceLevelMatchConsumesFIFOHeadFirst(t *testing.T) {
	l := NewPriceLevel(1000)
	l.Put(&Order{OrderID: 1, UID: 10, Size: 5})
	l.Put(&Order{OrderID: 2, UID: 11, Size: 5})

	buf := make([]byte, 256)
	emit := NewEventEmitter(NewWriter(buf, 0))
	var removed []uint64
	matched := l.Match(emit, 7, 0, func(id uint64) { removed = append(removed, id) })

	assert.Equal(t, uint64(7), matched)
	assert.Equal(t, []uint64{1}, removed)
	assert.Equal(t, 2, emit.TradeCount())
	assert.Equal(t, uint64(3), l.TotalVolume)
	require.NotNil(t, l.Front())
	assert.Equal(t, uint64(2), l.Front().OrderID)
	assert.Equal(t, uint64(3), l.Front().Remaining())
}

func TestPriceLevelMatchStopsWhenBucketExhausted(t *testing.T) {
	l := NewPriceLevel(1000)
	l.Put(&Order{OrderID: 1, UID: 10, Size: 3})

	buf := make([]byte, 256)
	emit := NewEventEmitter(NewWriter(buf, 0))
	matched := l.Match(emit, 10, 0, func(uint64) {})

	assert.Equal(t, uint64(3), matched)
	assert.True(t, l.Empty())
}
