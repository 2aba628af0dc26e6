package matchcore

// L2Entry is one aggregated depth record: a price, its resting volume, and
// the number of orders contributing to it (spec.md §4.5.3).
type L2Entry struct {
	Price     int64
	Volume    uint64
	NumOrders uint64
}

func fillSide(side *BookSide, limit int) []L2Entry {
	if limit <= 0 || limit > side.Len() {
		limit = side.Len()
	}
	entries := make([]L2Entry, 0, limit)
	side.ForEach(func(l *PriceLevel) bool {
		if len(entries) >= limit {
			return false
		}
		entries = append(entries, L2Entry{Price: l.Price, Volume: l.TotalVolume, NumOrders: l.NumOrders})
		return len(entries) < limit
	})
	return entries
}

// FillAsks walks the ask side in natural (best-first) order, up to limit
// buckets (0 or negative means every bucket).
func (e *Engine) FillAsks(limit int) []L2Entry { return fillSide(e.asks, limit) }

// FillBids walks the bid side in natural (best-first) order, up to limit
// buckets (0 or negative means every bucket).
func (e *Engine) FillBids(limit int) []L2Entry { return fillSide(e.bids, limit) }

// queryOrderBook implements spec.md §4.5.3 sendL2Snapshot: a 2-byte signed
// limit (non-positive means unlimited), L2 records for every admitted
// bucket (asks then bids, each in best-first order), then the trailing
// ask_count:4 | bid_count:4 | result:2 (spec.md §4.4).
func (e *Engine) queryOrderBook(r *Reader, out *Writer) error {
	limit := int(r.ReadI16())

	asks := e.FillAsks(limit)
	bids := e.FillBids(limit)

	out.AppendU8(uint8(OpQueryOrderBook))
	emit := NewEventEmitter(out)
	for _, a := range asks {
		emit.L2Record(a.Price, a.Volume, uint32(a.NumOrders))
	}
	for _, b := range bids {
		emit.L2Record(b.Price, b.Volume, uint32(b.NumOrders))
	}
	out.AppendU32(uint32(len(asks)))
	out.AppendU32(uint32(len(bids)))
	out.AppendU16(packResult(ResultSuccess, true, false, false))
	return nil
}

// GetOrderByID returns the resting order with the given id, or nil.
func (e *Engine) GetOrderByID(orderID uint64) *Order {
	return e.idx.Get(orderID)
}

// FindUserOrders returns every resting order owned by uid, on either side,
// by a full O(N) scan of the order index; no per-uid index is maintained.
// The order of the result is unspecified.
func (e *Engine) FindUserOrders(uid uint64) []*Order {
	var out []*Order
	e.idx.Each(func(o *Order) {
		if o.UID == uid {
			out = append(out, o)
		}
	})
	return out
}

// VerifyInternalState asserts every invariant from spec.md §8: per-bucket
// volume/count consistency, no empty buckets, no crossed book, and that the
// order index exactly mirrors the union of both sides' buckets.
func (e *Engine) VerifyInternalState() error {
	if err := verifySide(e.asks); err != nil {
		return err
	}
	if err := verifySide(e.bids); err != nil {
		return err
	}
	if err := e.verifyNotCrossed(); err != nil {
		return err
	}
	return e.verifyIndexConsistency()
}

func verifySide(side *BookSide) error {
	var err error
	side.ForEach(func(l *PriceLevel) bool {
		if l.Empty() {
			err = errInvariant("empty price level %d present in book side", l.Price)
			return false
		}
		if verr := l.Validate(); verr != nil {
			err = verr
			return false
		}
		return true
	})
	return err
}

func (e *Engine) verifyNotCrossed() error {
	bestAsk := e.asks.Best()
	bestBid := e.bids.Best()
	if bestAsk == nil || bestBid == nil {
		return nil
	}
	if bestAsk.Price <= bestBid.Price {
		return errInvariant("book crossed: best_ask=%d best_bid=%d", bestAsk.Price, bestBid.Price)
	}
	return nil
}

func (e *Engine) verifyIndexConsistency() error {
	var bucketed int
	check := func(side *BookSide) error {
		var err error
		side.ForEach(func(l *PriceLevel) bool {
			for o := l.Front(); o != nil; o = o.next {
				bucketed++
				if e.idx.Get(o.OrderID) != o {
					err = errInvariant("order %d present in a bucket but not the order index", o.OrderID)
					return false
				}
			}
			return true
		})
		return err
	}
	if err := check(e.asks); err != nil {
		return err
	}
	if err := check(e.bids); err != nil {
		return err
	}
	if bucketed != e.idx.Len() {
		return errInvariant("order index has %d entries but buckets hold %d orders", e.idx.Len(), bucketed)
	}
	return nil
}
