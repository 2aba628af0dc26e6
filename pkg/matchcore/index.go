package matchcore

// OrderIndex is the flat order_id -> *Order lookup that must stay in sync
// with every bucket mutation on either book side (spec.md §3, §4.3).
type OrderIndex struct {
	byID map[uint64]*Order
}

// NewOrderIndex creates an empty index.
func NewOrderIndex() *OrderIndex {
	return &OrderIndex{byID: make(map[uint64]*Order)}
}

func (idx *OrderIndex) Get(orderID uint64) *Order {
	return idx.byID[orderID]
}

func (idx *OrderIndex) Contains(orderID uint64) bool {
	_, ok := idx.byID[orderID]
	return ok
}

func (idx *OrderIndex) Insert(o *Order) {
	idx.byID[o.OrderID] = o
}

func (idx *OrderIndex) Remove(orderID uint64) {
	delete(idx.byID, orderID)
}

func (idx *OrderIndex) Len() int { return len(idx.byID) }

// Each calls fn for every resting order, in unspecified order. Used by
// FindUserOrders.
func (idx *OrderIndex) Each(fn func(*Order)) {
	for _, o := range idx.byID {
		fn(o)
	}
}
