package matchcore

// Order is a resting order owned by the book. It is held exactly once, in
// the doubly-linked FIFO of the PriceLevel bucket it belongs to, and is
// reachable from the engine's order index by OrderID (spec.md §3).
//
// Invariant: Size-Filled > 0 for as long as the order is present in the
// book; the moment it reaches zero the order is unlinked from both indexes
// in the same step.
type Order struct {
	OrderID         uint64
	UID             uint64
	Action          Action
	Price           int64
	ReserveBidPrice int64
	Size            uint64
	Filled          uint64
	Timestamp       int64

	// level is the bucket currently holding this order; nil when the order
	// is not resting in any bucket (never observable to callers).
	level *PriceLevel
	prev  *Order
	next  *Order
}

// Remaining is the quantity left to match.
func (o *Order) Remaining() uint64 { return o.Size - o.Filled }

// Symbol is the read-only, externally owned specification of the instrument
// this engine trades (spec.md §3, "Symbol specification").
type Symbol struct {
	Name           string
	ExchangeType   bool
	TickSize       int64
	symbolStateHash int32
}

// NewSymbol builds a Symbol. stateHash is an opaque per-symbol seed folded
// into Engine.StateHash so replicas trading different symbols never compare
// equal by accident.
func NewSymbol(name string, exchangeType bool, tickSize int64, stateHash int32) Symbol {
	return Symbol{Name: name, ExchangeType: exchangeType, TickSize: tickSize, symbolStateHash: stateHash}
}

// IsExchangeType reports whether BID moves on this symbol must respect the
// order's ReserveBidPrice (spec.md §4.5.2 MOVE).
func (s Symbol) IsExchangeType() bool { return s.ExchangeType }

// StateHash is folded into Engine.StateHash alongside the book-side hashes.
func (s Symbol) StateHash() int32 { return s.symbolStateHash }

// onTick reports whether price is a valid multiple of the symbol's tick
// size. TickSize <= 0 means the symbol imposes no tick constraint.
func (s Symbol) onTick(price int64) bool {
	if s.TickSize <= 0 {
		return true
	}
	return price%s.TickSize == 0
}
