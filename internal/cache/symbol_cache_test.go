package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aowss/orderbook/internal/config"
)

func TestSymbolCacheGetMiss(t *testing.T) {
	c := New(time.Minute, 0)
	_, ok := c.Get("BTC-USD")
	assert.False(t, ok)
}

func TestSymbolCachePutGet(t *testing.T) {
	c := New(time.Minute, 0)
	c.Put(config.SymbolSpec{Name: "BTC-USD", TickSize: 1})

	spec, ok := c.Get("BTC-USD")
	assert.True(t, ok)
	assert.Equal(t, int64(1), spec.TickSize)
}

func TestSymbolCacheWarmLoadsAll(t *testing.T) {
	c := New(time.Minute, 0)
	c.Warm([]config.SymbolSpec{
		{Name: "BTC-USD", TickSize: 1},
		{Name: "ETH-USD", TickSize: 2},
	})

	btc, ok := c.Get("BTC-USD")
	assert.True(t, ok)
	assert.Equal(t, int64(1), btc.TickSize)

	eth, ok := c.Get("ETH-USD")
	assert.True(t, ok)
	assert.Equal(t, int64(2), eth.TickSize)
}
