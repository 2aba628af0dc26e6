package matchcore

import "go.uber.org/zap"

// Dispatch parses the opcode byte at offset, routes to the matching
// command handler, and appends the handler's response directly into out.
// timestamp is the arrival time recorded on any order this command creates
// (spec.md §3, §6); a moved order keeps its original timestamp.
//
// A non-nil error is always a tier-3 fatal condition (spec.md §7) and the
// caller should stop routing further commands to this engine. For an
// unsupported order type the response has already been written with
// ResultUnsupportedOrderType; for a FOK/FOK_BUDGET fill that falls short
// of a passed feasibility check, the response is left without its
// trailing result word.
func (e *Engine) Dispatch(buf []byte, offset int, timestamp int64, out *Writer) error {
	e.sequence++

	op := Opcode(buf[offset])
	r := NewReader(buf, offset+1)

	switch op {
	case OpPlace:
		return e.place(r, timestamp, out)
	case OpCancel:
		return e.cancel(r, out)
	case OpReduce:
		return e.reduce(r, out)
	case OpMove:
		return e.move(r, out)
	case OpQueryOrderBook:
		return e.queryOrderBook(r, out)
	default:
		out.AppendU8(uint8(op))
		out.AppendU16(packResult(ResultUnsupportedCommand, true, false, false))
		return nil
	}
}

func (e *Engine) place(r *Reader, timestamp int64, out *Writer) error {
	uid := r.ReadU64()
	orderID := r.ReadU64()
	price := r.ReadI64()
	reserveBidPrice := r.ReadI64()
	sizeRaw := r.ReadI64()
	userCookie := r.ReadU32()
	action := Action(r.ReadU8())
	orderType := OrderType(r.ReadU8())

	out.AppendU8(uint8(OpPlace))
	out.AppendU64(uid)
	out.AppendU64(orderID)
	out.AppendU32(userCookie)

	emit := NewEventEmitter(out)

	if sizeRaw <= 0 {
		emit.Result(ResultIncorrectOrderSize, true, action == ActionBid)
		return nil
	}

	taker := &Order{
		OrderID:         orderID,
		UID:             uid,
		Action:          action,
		Price:           price,
		ReserveBidPrice: reserveBidPrice,
		Size:            uint64(sizeRaw),
		Timestamp:       timestamp,
	}

	// Tick-size validation (SPEC_FULL.md §4): a per-unit price that isn't a
	// multiple of the symbol's tick size would let two price levels
	// represent the same economic price. Budget orders carry a total-cash
	// cap rather than a per-unit price, so the check doesn't apply to them.
	switch orderType {
	case OrderTypeGTC, OrderTypeIOC, OrderTypeFOK:
		if !e.symbol.onTick(price) {
			emit.Result(ResultIncorrectOrderSize, true, action == ActionBid)
			return nil
		}
	}

	switch orderType {
	case OrderTypeGTC:
		e.placeGTC(emit, taker)
	case OrderTypeIOC:
		e.placeIOC(emit, taker, priceAdmit(action, price))
	case OrderTypeFOK:
		if err := e.placeFOK(emit, taker, priceAdmit(action, price)); err != nil {
			return err
		}
	case OrderTypeIOCBudget:
		e.placeIOCBudget(emit, taker)
	case OrderTypeFOKBudget:
		if err := e.placeFOKBudget(emit, taker); err != nil {
			return err
		}
	default:
		emit.Result(ResultUnsupportedOrderType, true, action == ActionBid)
		return errUnsupportedOrderType(orderType)
	}
	return nil
}

// placeGTC implements spec.md §4.5.2 PLACE/GTC: match against the opposite
// side up to and including the taker's limit price, then either finish
// (fully filled), discard the remainder as a duplicate-id reduce (spec.md
// §7 tier 2), or rest the remainder as a new resting order.
func (e *Engine) placeGTC(emit *EventEmitter, taker *Order) {
	admit := priceAdmit(taker.Action, taker.Price)
	opposite := e.oppositeSide(taker.Action)
	filled := e.tryMatchInstantly(emit, opposite, taker.Size, taker.ReserveBidPrice, admit)
	taker.Filled = filled

	if filled == taker.Size {
		emit.Result(ResultSuccess, true, taker.Action == ActionBid)
		return
	}

	if e.idx.Contains(taker.OrderID) {
		e.logger.Warn("duplicate order id on partially matched GTC place",
			zap.Uint64("order_id", taker.OrderID), zap.Uint64("uid", taker.UID))
		emit.Reduce(taker.Price, taker.ReserveBidPrice, taker.Size-filled)
		emit.Result(ResultSuccess, true, taker.Action == ActionBid)
		return
	}

	level := e.ownSide(taker.Action).GetOrCreate(taker.Price)
	level.Put(taker)
	e.idx.Insert(taker)
	emit.w.AppendU64(taker.Remaining())
	emit.Result(ResultSuccess, false, taker.Action == ActionBid)
}

// placeIOC implements price-capped IOC: match within admit's subtree, never
// rest a remainder.
func (e *Engine) placeIOC(emit *EventEmitter, taker *Order, admit func(int64) bool) {
	opposite := e.oppositeSide(taker.Action)
	filled := e.tryMatchInstantly(emit, opposite, taker.Size, taker.ReserveBidPrice, admit)
	taker.Filled = filled
	if remainder := taker.Size - filled; remainder > 0 {
		emit.Reduce(taker.Price, taker.ReserveBidPrice, remainder)
	}
	emit.Result(ResultSuccess, true, taker.Action == ActionBid)
}

// placeFOK implements price-capped fill-or-kill: a read-only feasibility
// peek over admit's subtree decides whether to attempt the match at all;
// a successful peek that fails to fully fill on the real pass is a tier-3
// invariant violation, since nothing can have changed the book in between
// (single-threaded, spec.md §5).
func (e *Engine) placeFOK(emit *EventEmitter, taker *Order, admit func(int64) bool) error {
	opposite := e.oppositeSide(taker.Action)
	if availableVolume(opposite, admit, taker.Size) < taker.Size {
		emit.Reduce(taker.Price, taker.ReserveBidPrice, taker.Size)
		emit.Result(ResultSuccess, true, taker.Action == ActionBid)
		return nil
	}
	filled := e.tryMatchInstantly(emit, opposite, taker.Size, taker.ReserveBidPrice, admit)
	if filled != taker.Size {
		return errBudgetFillMismatch(taker.Size, filled)
	}
	emit.Result(ResultSuccess, true, taker.Action == ActionBid)
	return nil
}

// placeFOKBudget implements spec.md §4.5.2 FOK_BUDGET: walk the full
// opposite side computing the notional cost of filling the whole size, then
// compare against the submitted price read as a total-cash cap (≥ for ASK,
// ≤ for BID, per the worked example in spec.md §8 scenario 6).
func (e *Engine) placeFOKBudget(emit *EventEmitter, taker *Order) error {
	opposite := e.oppositeSide(taker.Action)
	budget, achieved := availableBudget(opposite, taker.Size)

	feasible := achieved == taker.Size
	if feasible {
		if taker.Action == ActionAsk {
			feasible = budget >= taker.Price
		} else {
			feasible = budget <= taker.Price
		}
	}

	if !feasible {
		emit.Reduce(taker.Price, taker.ReserveBidPrice, taker.Size)
		emit.Result(ResultSuccess, true, taker.Action == ActionBid)
		return nil
	}

	filled := e.tryMatchInstantly(emit, opposite, taker.Size, taker.ReserveBidPrice, nil)
	if filled != taker.Size {
		return errBudgetFillMismatch(taker.Size, filled)
	}
	emit.Result(ResultSuccess, true, taker.Action == ActionBid)
	return nil
}

// placeIOCBudget resolves the open question left by spec.md §9 for
// ORDER_TYPE_IOC_BUDGET (see DESIGN.md for the full reasoning): the
// submitted price is a ceiling only for a BID (total cash to spend) — for
// an ASK it is a floor, and floors never justify refusing additional
// proceeds, so an ASK IOC_BUDGET matches exactly like an unrestricted IOC.
func (e *Engine) placeIOCBudget(emit *EventEmitter, taker *Order) {
	opposite := e.oppositeSide(taker.Action)

	var filled uint64
	if taker.Action == ActionBid {
		filled, _ = e.matchBudgetCeiling(emit, opposite, taker.Size, taker.ReserveBidPrice, taker.Price)
	} else {
		filled = e.tryMatchInstantly(emit, opposite, taker.Size, taker.ReserveBidPrice, nil)
	}
	taker.Filled = filled

	if remainder := taker.Size - filled; remainder > 0 {
		emit.Reduce(taker.Price, taker.ReserveBidPrice, remainder)
	}
	emit.Result(ResultSuccess, true, taker.Action == ActionBid)
}

func (e *Engine) cancel(r *Reader, out *Writer) error {
	uid := r.ReadU64()
	orderID := r.ReadU64()

	out.AppendU8(uint8(OpCancel))
	out.AppendU64(uid)
	out.AppendU64(orderID)

	emit := NewEventEmitter(out)

	order := e.idx.Get(orderID)
	if order == nil || order.UID != uid {
		emit.Result(ResultUnknownOrderID, true, false)
		return nil
	}

	remaining := order.Remaining()
	level := order.level
	side := e.ownSide(order.Action)
	level.Remove(order.OrderID, order.UID)
	e.idx.Remove(order.OrderID)
	if level.Empty() {
		side.Remove(level.Price)
	}

	emit.Reduce(order.Price, order.ReserveBidPrice, remaining)
	emit.Result(ResultSuccess, true, order.Action == ActionBid)
	return nil
}

func (e *Engine) reduce(r *Reader, out *Writer) error {
	uid := r.ReadU64()
	orderID := r.ReadU64()
	requestedRaw := r.ReadI64()

	out.AppendU8(uint8(OpReduce))
	out.AppendU64(uid)
	out.AppendU64(orderID)

	emit := NewEventEmitter(out)

	order := e.idx.Get(orderID)
	if order == nil || order.UID != uid {
		emit.Result(ResultUnknownOrderID, true, false)
		return nil
	}
	if requestedRaw <= 0 {
		emit.Result(ResultIncorrectReduceSize, true, order.Action == ActionBid)
		return nil
	}

	requested := uint64(requestedRaw)
	remaining := order.Remaining()
	actual := requested
	if actual > remaining {
		actual = remaining
	}

	emit.Reduce(order.Price, order.ReserveBidPrice, actual)

	if actual == remaining {
		level := order.level
		side := e.ownSide(order.Action)
		level.Remove(order.OrderID, order.UID)
		e.idx.Remove(order.OrderID)
		if level.Empty() {
			side.Remove(level.Price)
		}
		emit.Result(ResultSuccess, true, order.Action == ActionBid)
		return nil
	}

	order.Size -= actual
	order.level.ReduceSize(actual)
	out.AppendU64(order.Remaining())
	emit.Result(ResultSuccess, false, order.Action == ActionBid)
	return nil
}

func (e *Engine) move(r *Reader, out *Writer) error {
	uid := r.ReadU64()
	orderID := r.ReadU64()
	newPrice := r.ReadI64()

	out.AppendU8(uint8(OpMove))
	out.AppendU64(uid)
	out.AppendU64(orderID)

	emit := NewEventEmitter(out)

	order := e.idx.Get(orderID)
	if order == nil || order.UID != uid {
		emit.Result(ResultUnknownOrderID, true, false)
		return nil
	}

	if order.Action == ActionBid && e.symbol.IsExchangeType() && newPrice > order.ReserveBidPrice {
		out.AppendU64(order.Remaining())
		emit.Result(ResultMoveFailedPriceOverRiskLimit, false, true)
		return nil
	}

	if !e.symbol.onTick(newPrice) {
		out.AppendU64(order.Remaining())
		emit.Result(ResultIncorrectOrderSize, false, order.Action == ActionBid)
		return nil
	}

	oldSide := e.ownSide(order.Action)
	oldLevel := order.level
	oldLevel.Remove(order.OrderID, order.UID)
	if oldLevel.Empty() {
		oldSide.Remove(oldLevel.Price)
	}
	e.idx.Remove(order.OrderID)

	order.Price = newPrice

	opposite := e.oppositeSide(order.Action)
	admit := priceAdmit(order.Action, newPrice)
	filled := e.tryMatchInstantly(emit, opposite, order.Remaining(), order.ReserveBidPrice, admit)
	order.Filled += filled

	if order.Remaining() == 0 {
		emit.Result(ResultSuccess, true, order.Action == ActionBid)
		return nil
	}

	// Loss of time priority: always re-homed at the destination bucket's
	// tail, even when new_price equals the old price (spec.md §4.5.2).
	newSide := e.ownSide(order.Action)
	newLevel := newSide.GetOrCreate(newPrice)
	newLevel.Put(order)
	e.idx.Insert(order)
	out.AppendU64(order.Remaining())
	emit.Result(ResultSuccess, false, order.Action == ActionBid)
	return nil
}
