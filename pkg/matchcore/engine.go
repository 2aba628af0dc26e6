package matchcore

import "go.uber.org/zap"

// Engine drives the book for exactly one symbol. It is single-threaded
// cooperative: every exported method runs to completion before the next is
// invoked, there is no internal locking, and the caller (an external
// runtime) is responsible for serializing calls (spec.md §5).
type Engine struct {
	symbol Symbol
	asks   *BookSide // ascending: best ask = smallest price
	bids   *BookSide // descending: best bid = largest price
	idx    *OrderIndex
	logger *zap.Logger

	// sequence is a SPEC_FULL addition: a monotonic per-command counter,
	// useful to an external runtime enforcing ordering guarantees. It is
	// not part of the wire protocol and plays no role in matching.
	sequence uint64
}

// NewEngine creates an engine for symbol. logger may be nil; the core never
// requires it, it only uses it to record the one warning spec.md §7 tier 2
// calls for (duplicate order id on a partially-matched GTC place).
func NewEngine(symbol Symbol, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		symbol: symbol,
		asks:   NewBookSide(false),
		bids:   NewBookSide(true),
		idx:    NewOrderIndex(),
		logger: logger,
	}
}

// Symbol returns the engine's (read-only) symbol specification.
func (e *Engine) Symbol() Symbol { return e.symbol }

// SequenceNumber returns how many commands this engine has processed.
func (e *Engine) SequenceNumber() uint64 { return e.sequence }

func (e *Engine) oppositeSide(a Action) *BookSide {
	if a == ActionAsk {
		return e.bids
	}
	return e.asks
}

func (e *Engine) ownSide(a Action) *BookSide {
	if a == ActionAsk {
		return e.asks
	}
	return e.bids
}

func (e *Engine) removeFromIndex(orderID uint64) {
	e.idx.Remove(orderID)
}

// priceAdmit returns the "inclusive of the taker's limit" predicate for the
// opposite side, per spec.md §4.5.1: for an ASK taker, bids at or above the
// taker's price are admissible; for a BID taker, asks at or below are.
func priceAdmit(taker Action, limit int64) func(int64) bool {
	if taker == ActionAsk {
		return func(p int64) bool { return p >= limit }
	}
	return func(p int64) bool { return p <= limit }
}

// tryMatchInstantly walks side in natural (best-price-first) order,
// consuming makers until either takerRemaining lots have matched, the side
// is exhausted, or admit rejects the next bucket's price. admit == nil
// means "no price restriction" (used by the budget variants, which cap by
// notional instead — see matchBudgetCeiling). Buckets emptied by the walk
// are removed from side only after the walk completes, since the side's
// tree must not be mutated mid-traversal (spec.md §4.5.1).
func (e *Engine) tryMatchInstantly(emit *EventEmitter, side *BookSide, takerRemaining uint64, takerReservePrice int64, admit func(int64) bool) uint64 {
	var filled uint64
	var emptied []int64
	side.ForEach(func(l *PriceLevel) bool {
		if filled >= takerRemaining {
			return false
		}
		if admit != nil && !admit(l.Price) {
			return false
		}
		got := l.Match(emit, takerRemaining-filled, takerReservePrice, e.removeFromIndex)
		filled += got
		if l.Empty() {
			emptied = append(emptied, l.Price)
		}
		return filled < takerRemaining
	})
	for _, p := range emptied {
		side.Remove(p)
	}
	return filled
}

// matchBudgetCeiling is the budget-order counterpart of tryMatchInstantly
// for the side of a budget order where the submitted price is a *ceiling*
// on total notional (a BID's "don't pay more than this in total"). Unlike
// tryMatchInstantly, it can stop in the middle of a bucket: once the
// remaining budget can't afford a whole bucket, it takes only as many lots
// as it can afford and then stops (spec.md §4.5.2 FOK_BUDGET, generalized
// to the IOC_BUDGET partial-fill case per SPEC_FULL.md §1).
func (e *Engine) matchBudgetCeiling(emit *EventEmitter, side *BookSide, takerRemaining uint64, takerReservePrice, limit int64) (filled uint64, spent int64) {
	var emptied []int64
	side.ForEach(func(l *PriceLevel) bool {
		if filled >= takerRemaining {
			return false
		}
		remainingBudget := limit - spent
		if remainingBudget <= 0 {
			return false
		}
		cap := takerRemaining - filled
		if l.Price > 0 {
			afford := uint64(remainingBudget / l.Price)
			if afford == 0 {
				return false
			}
			if afford < cap {
				cap = afford
			}
		}
		got := l.Match(emit, cap, takerReservePrice, e.removeFromIndex)
		filled += got
		spent += int64(got) * l.Price
		if l.Empty() {
			emptied = append(emptied, l.Price)
		}
		return filled < takerRemaining
	})
	for _, p := range emptied {
		side.Remove(p)
	}
	return filled, spent
}

// availableVolume peeks (without mutating anything) at how much volume is
// reachable on side within admit's price restriction, stopping as soon as
// it has accounted for at least size lots. Used by FOK's feasibility check.
func availableVolume(side *BookSide, admit func(int64) bool, size uint64) uint64 {
	var total uint64
	side.ForEach(func(l *PriceLevel) bool {
		if admit != nil && !admit(l.Price) {
			return false
		}
		total += l.TotalVolume
		return total < size
	})
	return total
}

// availableBudget peeks at the total notional cost of filling size lots by
// walking side in natural order, without mutating anything. Used by
// FOK_BUDGET's feasibility check (spec.md §4.5.2).
func availableBudget(side *BookSide, size uint64) (budget int64, achieved uint64) {
	side.ForEach(func(l *PriceLevel) bool {
		need := size - achieved
		take := l.TotalVolume
		if take > need {
			take = need
		}
		budget += int64(take) * l.Price
		achieved += take
		return achieved < size
	})
	return
}
