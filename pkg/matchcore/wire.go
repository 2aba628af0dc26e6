package matchcore

// TradeEvent is the decoded form of one maker fill (spec.md §4.4).
type TradeEvent struct {
	MakerOrderID    uint64
	MakerUID        uint64
	Price           int64
	ReserveBidPrice int64
	Volume          uint64
	MakerCompleted  bool
}

// CommandResponse is the decoded form of a PLACE/CANCEL/REDUCE/MOVE
// response: a small fixed header, zero or more trade events, an optional
// reduce event, an optional remaining-size field (only when the taker or
// resting order did not fully complete), and the trailing packed result
// word (spec.md §4.4, §6).
type CommandResponse struct {
	Opcode    Opcode
	UID       uint64
	OrderID   uint64
	Cookie    uint32 // PLACE only; zero otherwise
	Trades    []TradeEvent
	Reduced   bool
	ReduceAt  struct {
		Price           int64
		ReserveBidPrice int64
		Volume          uint64
	}
	Remaining *uint64
	Code      ResultCode
	Completed bool
	IsBid     bool
}

// decodeCommandResponse parses buf, a response previously written by
// Dispatch, given headerLen: the number of bytes between the opcode and
// the start of the trade-event run (16 for CANCEL/REDUCE/MOVE: uid+order_id;
// 20 for PLACE: uid+order_id+cookie).
func decodeCommandResponse(buf []byte, headerLen int) CommandResponse {
	trailer := NewReader(buf, len(buf)-2).ReadU16()
	code, completed, isBid, reduced := unpackResult(trailer)

	body := len(buf) - 2
	if reduced {
		body -= reduceEventSize
	}
	if !completed {
		body -= 8
	}
	tradeBytes := body - (1 + headerLen)
	tradeCount := 0
	if tradeBytes > 0 {
		tradeCount = tradeBytes / tradeEventSize
	}

	r := NewReader(buf, 0)
	resp := CommandResponse{Code: code, Completed: completed, IsBid: isBid, Reduced: reduced}
	resp.Opcode = Opcode(r.ReadU8())
	resp.UID = r.ReadU64()
	resp.OrderID = r.ReadU64()
	if headerLen > 16 {
		resp.Cookie = r.ReadU32()
	}

	for i := 0; i < tradeCount; i++ {
		var ev TradeEvent
		ev.MakerOrderID = r.ReadU64()
		ev.MakerUID = r.ReadU64()
		ev.Price = r.ReadI64()
		ev.ReserveBidPrice = r.ReadI64()
		ev.Volume = r.ReadU64()
		ev.MakerCompleted = r.ReadU8() != 0
		resp.Trades = append(resp.Trades, ev)
	}

	if reduced {
		resp.ReduceAt.Price = r.ReadI64()
		resp.ReduceAt.ReserveBidPrice = r.ReadI64()
		resp.ReduceAt.Volume = r.ReadU64()
	}

	if !completed {
		remaining := r.ReadU64()
		resp.Remaining = &remaining
	}

	return resp
}

// DecodePlaceResponse decodes a response buffer produced by a PLACE
// command (opcode:1 | uid:8 | order_id:8 | cookie:4 | ...).
func DecodePlaceResponse(buf []byte) CommandResponse { return decodeCommandResponse(buf, 20) }

// DecodeOrderResponse decodes a response buffer produced by CANCEL,
// REDUCE, or MOVE (opcode:1 | uid:8 | order_id:8 | ...).
func DecodeOrderResponse(buf []byte) CommandResponse { return decodeCommandResponse(buf, 16) }

// QueryOrderBookResponse is the decoded form of a QUERY_ORDER_BOOK
// response (spec.md §4.4, §4.5.3).
type QueryOrderBookResponse struct {
	Asks []L2Entry
	Bids []L2Entry
	Code ResultCode
}

// DecodeQueryOrderBookResponse decodes a response buffer produced by
// QUERY_ORDER_BOOK: opcode:1 | L2 records | ask_count:4 | bid_count:4 |
// result:2.
func DecodeQueryOrderBookResponse(buf []byte) QueryOrderBookResponse {
	trailer := NewReader(buf, len(buf)-2).ReadU16()
	code, _, _, _ := unpackResult(trailer)
	askCount := NewReader(buf, len(buf)-10).ReadU32()
	bidCount := NewReader(buf, len(buf)-6).ReadU32()

	r := NewReader(buf, 1) // skip opcode
	resp := QueryOrderBookResponse{Code: code}
	for i := uint32(0); i < askCount; i++ {
		resp.Asks = append(resp.Asks, readL2Entry(r))
	}
	for i := uint32(0); i < bidCount; i++ {
		resp.Bids = append(resp.Bids, readL2Entry(r))
	}
	return resp
}

func readL2Entry(r *Reader) L2Entry {
	return L2Entry{Price: r.ReadI64(), Volume: r.ReadU64(), NumOrders: uint64(r.ReadU32())}
}
