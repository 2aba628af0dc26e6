package matchcore

// State hashing follows the "Objects.hash"-style combine described in
// spec.md §4.5.3 / §9: a running hash that folds elements one at a time as
// h = h*31 + elem, and a fixed-arity combine of N values that is exactly
// the same recurrence seeded at 1 (this is the JDK's
// `Arrays.hashCode`/`Objects.hash` algorithm). All arithmetic is int32 and
// relies on Go's defined (wrapping) signed-overflow behavior to reproduce
// it bit-for-bit.
//
// levelHash combines a bucket's three observable scalars (price,
// total volume, order count) the same way; spec.md doesn't pin down this
// inner combine explicitly, so this is the documented choice — see
// DESIGN.md.
func levelHash(l *PriceLevel) int32 {
	return combine3(int32(l.Price), int32(l.TotalVolume), int32(l.NumOrders))
}

// streamHash folds a side's buckets in natural (best-first) iteration
// order into a single hash, seeded at 1 like java.util.List.hashCode.
func streamHash(side *BookSide) int32 {
	h := int32(1)
	side.ForEach(func(l *PriceLevel) bool {
		h = h*31 + levelHash(l)
		return true
	})
	return h
}

// combine3 is Objects.hash(a, b, c): result = 1, then result = 31*result+v
// for each of a, b, c in order.
func combine3(a, b, c int32) int32 {
	h := int32(1)
	h = h*31 + a
	h = h*31 + b
	h = h*31 + c
	return h
}

// StateHash combines both sides' stream hashes with the symbol's own hash,
// so replicas that processed the same command sequence from the same
// initial state hash identically (spec.md §8).
func (e *Engine) StateHash() int32 {
	return combine3(streamHash(e.asks), streamHash(e.bids), e.symbol.StateHash())
}
