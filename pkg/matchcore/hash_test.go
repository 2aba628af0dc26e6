package matchcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateHashDeterministicForIdenticalSequences(t *testing.T) {
	symbol := NewSymbol("BTC-USD", true, 1, 7)

	run := func() int32 {
		e := NewEngine(symbol, nil)
		placeOrder(t, e, 1, 100, 1000, 10, ActionAsk, OrderTypeGTC)
		placeOrder(t, e, 2, 101, 999, 5, ActionBid, OrderTypeGTC)
		return e.StateHash()
	}

	assert.Equal(t, run(), run())
}

func TestStateHashChangesWithBookState(t *testing.T) {
	symbol := NewSymbol("BTC-USD", true, 1, 7)
	e := NewEngine(symbol, nil)
	empty := e.StateHash()

	placeOrder(t, e, 1, 100, 1000, 10, ActionAsk, OrderTypeGTC)
	assert.NotEqual(t, empty, e.StateHash())
}

func TestCombine3IsOrderSensitive(t *testing.T) {
	assert.NotEqual(t, combine3(1, 2, 3), combine3(3, 2, 1))
}
