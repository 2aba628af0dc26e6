package matchcore

// PriceLevel is a FIFO bucket of resting orders at one price on one side of
// the book (spec.md §3, §4.2). Orders are linked head-to-tail in arrival
// order; matching always consumes from the head, and a new order always
// joins at the tail, so FIFO order and arrival order coincide.
type PriceLevel struct {
	Price       int64
	TotalVolume uint64
	NumOrders   uint64

	head *Order
	tail *Order

	// AVL-tree linkage used by BookSide to keep buckets ordered by price
	// (spec.md §4.3, "naive implementation uses a balanced tree"). A
	// PriceLevel only ever lives in one BookSide's tree at a time.
	parent  *PriceLevel
	left    *PriceLevel
	right   *PriceLevel
	balance int
}

// NewPriceLevel creates an empty bucket at price.
func NewPriceLevel(price int64) *PriceLevel {
	return &PriceLevel{Price: price}
}

// Empty reports whether the bucket holds no orders. Empty buckets must never
// be left in a book side (spec.md §3).
func (l *PriceLevel) Empty() bool { return l.NumOrders == 0 }

// Front returns the head of the FIFO, or nil if the bucket is empty.
func (l *PriceLevel) Front() *Order { return l.head }

// Put appends order to the FIFO tail and folds its remaining size into the
// bucket counters. order.Price must already equal l.Price.
func (l *PriceLevel) Put(order *Order) {
	order.level = l
	order.prev = l.tail
	order.next = nil
	if l.tail != nil {
		l.tail.next = order
	} else {
		l.head = order
	}
	l.tail = order

	l.TotalVolume += order.Remaining()
	l.NumOrders++
}

// Remove unlinks the order identified by orderID, provided it was submitted
// by uid. Returns nil without mutating anything if the id is unknown or the
// uid doesn't match the owner on record (spec.md §4.2).
func (l *PriceLevel) Remove(orderID, uid uint64) *Order {
	for o := l.head; o != nil; o = o.next {
		if o.OrderID != orderID {
			continue
		}
		if o.UID != uid {
			return nil
		}
		l.unlink(o)
		return o
	}
	return nil
}

// unlink detaches o from the FIFO and decrements the bucket counters by its
// remaining size. Caller must not reuse o's level/prev/next pointers after.
func (l *PriceLevel) unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.prev, o.next, o.level = nil, nil, nil

	l.TotalVolume -= o.Remaining()
	l.NumOrders--
}

// ReduceSize shrinks the bucket's aggregate volume by delta, used when an
// order's remaining size is trimmed in place without removing it.
func (l *PriceLevel) ReduceSize(delta uint64) {
	l.TotalVolume -= delta
}

// Match consumes makers from the FIFO head until either the bucket empties
// or takerRemaining lots have been matched. onRemove is invoked with the
// order id of every maker fully consumed, so the caller can keep a
// secondary order index in sync. Returns the total volume matched.
//
// takerReserveBidPrice is carried through to each trade event purely as
// data (spec.md §4.4 trade event layout); it plays no role in the matching
// decision itself — that's already been decided by the caller's choice of
// matching subtree.
func (l *PriceLevel) Match(emit *EventEmitter, takerRemaining uint64, takerReserveBidPrice int64, onRemove func(orderID uint64)) uint64 {
	var matched uint64
	for l.head != nil && matched < takerRemaining {
		maker := l.head
		qty := maker.Remaining()
		need := takerRemaining - matched
		if qty > need {
			qty = need
		}

		maker.Filled += qty
		l.TotalVolume -= qty
		matched += qty

		completed := maker.Remaining() == 0
		emit.Trade(maker.OrderID, maker.UID, l.Price, takerReserveBidPrice, qty, completed)

		if completed {
			l.unlink(maker)
			// unlink already decremented TotalVolume/NumOrders by maker's
			// (now zero) remaining, i.e. a no-op on TotalVolume; NumOrders
			// still needs the decrement, which unlink provides.
			onRemove(maker.OrderID)
		}
	}
	return matched
}

// Validate asserts the bucket's two structural invariants: aggregate volume
// equals the sum of remaining quantities, and the order count matches the
// FIFO length (spec.md §4.2, §8).
func (l *PriceLevel) Validate() error {
	var sum, count uint64
	for o := l.head; o != nil; o = o.next {
		sum += o.Remaining()
		count++
	}
	if sum != l.TotalVolume {
		return errInvariant("price level %d: total_volume=%d but sum of remaining=%d", l.Price, l.TotalVolume, sum)
	}
	if count != l.NumOrders {
		return errInvariant("price level %d: num_orders=%d but FIFO length=%d", l.Price, l.NumOrders, count)
	}
	return nil
}
