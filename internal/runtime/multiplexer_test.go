package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aowss/orderbook/pkg/matchcore"
)

func testSymbol(name string) matchcore.Symbol {
	return matchcore.NewSymbol(name, true, 1, 7)
}

func TestMultiplexerRegisterRejectsDuplicateSymbol(t *testing.T) {
	mux, err := NewMultiplexer(4, nil)
	require.NoError(t, err)
	defer mux.Close()

	require.NoError(t, mux.Register(testSymbol("BTC-USD")))
	assert.Error(t, mux.Register(testSymbol("BTC-USD")))
}

func TestMultiplexerDispatchRoutesToRegisteredSymbol(t *testing.T) {
	mux, err := NewMultiplexer(4, nil)
	require.NoError(t, err)
	defer mux.Close()
	require.NoError(t, mux.Register(testSymbol("BTC-USD")))

	buf := make([]byte, 47)
	buf[0] = uint8(matchcore.OpPlace)
	w := matchcore.NewWriter(buf, 1)
	w.AppendU64(1)
	w.AppendU64(100)
	w.AppendI64(1000)
	w.AppendI64(0)
	w.AppendI64(10)
	w.AppendU32(0)
	w.AppendU8(uint8(matchcore.ActionAsk))
	w.AppendU8(uint8(matchcore.OrderTypeGTC))

	out := matchcore.NewWriter(make([]byte, 256), 0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = mux.Dispatch(ctx, "BTC-USD", buf, 0, time.Now().UnixNano(), out)
	require.NoError(t, err)

	resp := matchcore.DecodePlaceResponse(out.Bytes(0))
	assert.Equal(t, matchcore.ResultSuccess, resp.Code)
	assert.False(t, resp.Completed)
}

func TestMultiplexerDispatchUnknownSymbol(t *testing.T) {
	mux, err := NewMultiplexer(4, nil)
	require.NoError(t, err)
	defer mux.Close()

	out := matchcore.NewWriter(make([]byte, 64), 0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = mux.Dispatch(ctx, "NOPE", []byte{0}, 0, time.Now().UnixNano(), out)
	assert.Error(t, err)
}

func TestMultiplexerRunOnEngineObservesState(t *testing.T) {
	mux, err := NewMultiplexer(4, nil)
	require.NoError(t, err)
	defer mux.Close()
	require.NoError(t, mux.Register(testSymbol("BTC-USD")))

	buf := make([]byte, 47)
	buf[0] = uint8(matchcore.OpPlace)
	w := matchcore.NewWriter(buf, 1)
	w.AppendU64(1)
	w.AppendU64(100)
	w.AppendI64(1000)
	w.AppendI64(0)
	w.AppendI64(10)
	w.AppendU32(0)
	w.AppendU8(uint8(matchcore.ActionAsk))
	w.AppendU8(uint8(matchcore.OrderTypeGTC))

	out := matchcore.NewWriter(make([]byte, 256), 0)
	ctx := context.Background()
	require.NoError(t, mux.Dispatch(ctx, "BTC-USD", buf, 0, time.Now().UnixNano(), out))

	var asks []matchcore.L2Entry
	err = mux.RunOnEngine(ctx, "BTC-USD", func(e *matchcore.Engine) {
		asks = e.FillAsks(0)
	})
	require.NoError(t, err)
	require.Len(t, asks, 1)
	assert.Equal(t, int64(1000), asks[0].Price)
	assert.Equal(t, uint64(10), asks[0].Volume)
}

func TestMultiplexerRetiresWorkerAfterFatalError(t *testing.T) {
	mux, err := NewMultiplexer(4, nil)
	require.NoError(t, err)
	defer mux.Close()
	require.NoError(t, mux.Register(testSymbol("BTC-USD")))

	buf := make([]byte, 47)
	buf[0] = uint8(matchcore.OpPlace)
	w := matchcore.NewWriter(buf, 1)
	w.AppendU64(1)
	w.AppendU64(100)
	w.AppendI64(1000)
	w.AppendI64(0)
	w.AppendI64(10)
	w.AppendU32(0)
	w.AppendU8(uint8(matchcore.ActionAsk))
	w.AppendU8(99) // unsupported order type: triggers a tier-3 FatalError

	ctx := context.Background()
	out := matchcore.NewWriter(make([]byte, 256), 0)
	err = mux.Dispatch(ctx, "BTC-USD", buf, 0, time.Now().UnixNano(), out)
	require.Error(t, err)
	assert.True(t, matchcore.IsFatal(err))

	out2 := matchcore.NewWriter(make([]byte, 256), 0)
	err = mux.Dispatch(ctx, "BTC-USD", buf, 0, time.Now().UnixNano(), out2)
	assert.ErrorContains(t, err, "retired")
}

func TestMultiplexerSymbolsListsRegistered(t *testing.T) {
	mux, err := NewMultiplexer(4, nil)
	require.NoError(t, err)
	defer mux.Close()
	require.NoError(t, mux.Register(testSymbol("BTC-USD")))
	require.NoError(t, mux.Register(testSymbol("ETH-USD")))

	assert.ElementsMatch(t, []string{"BTC-USD", "ETH-USD"}, mux.Symbols())
}
