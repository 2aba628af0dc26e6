package matchcore

// Event layout sizes, spec.md §4.4. Offsets within each event are cumulative
// and big-endian throughout (pkg Reader/Writer enforce that).
const (
	tradeEventSize  = 49 // maker_order_id:8 | maker_uid:8 | price:8 | reserv_bid_price:8 | trade_volume:8 | maker_order_completed:1
	reduceEventSize = 24 // price:8 | reserv_bid_price:8 | reduced_volume:8
	l2RecordSize    = 20 // price:8 | volume:8 | num_orders:4
	resultWordSize  = 2
)

// EventEmitter appends trade/reduce/L2 records directly into a caller-owned
// output buffer (spec.md §4.4). It never allocates and never reads back
// what it has written — it is pure append.
type EventEmitter struct {
	w *Writer

	tradeCount  int
	reduceEmitted bool
}

// NewEventEmitter wraps w for one command's worth of event output.
func NewEventEmitter(w *Writer) *EventEmitter {
	return &EventEmitter{w: w}
}

// Trade appends one trade event for a single maker fill.
func (e *EventEmitter) Trade(makerOrderID, makerUID uint64, price, reserveBidPrice int64, volume uint64, makerCompleted bool) {
	e.w.AppendU64(makerOrderID)
	e.w.AppendU64(makerUID)
	e.w.AppendI64(price)
	e.w.AppendI64(reserveBidPrice)
	e.w.AppendU64(volume)
	if makerCompleted {
		e.w.AppendU8(1)
	} else {
		e.w.AppendU8(0)
	}
	e.tradeCount++
}

// Reduce appends the (at most one per command) reduce event.
func (e *EventEmitter) Reduce(price, reserveBidPrice int64, volume uint64) {
	e.w.AppendI64(price)
	e.w.AppendI64(reserveBidPrice)
	e.w.AppendU64(volume)
	e.reduceEmitted = true
}

// L2Record appends one aggregated depth record.
func (e *EventEmitter) L2Record(price int64, volume uint64, numOrders uint32) {
	e.w.AppendI64(price)
	e.w.AppendU64(volume)
	e.w.AppendU32(numOrders)
}

// TradeCount returns how many trade events have been emitted so far.
func (e *EventEmitter) TradeCount() int { return e.tradeCount }

// ReducePresent reports whether Reduce has been called.
func (e *EventEmitter) ReducePresent() bool { return e.reduceEmitted }

// Result appends the trailing packed result word.
func (e *EventEmitter) Result(code ResultCode, takerCompleted, takerIsBid bool) {
	e.w.AppendU16(packResult(code, takerCompleted, takerIsBid, e.reduceEmitted))
}
