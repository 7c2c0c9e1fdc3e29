// Package orderbook implements the sorted ActiveLimitOrders collection
// described in spec §3/§4.F: per-side price-sorted order collections with
// a hash index for id lookup, capacity-bounded, with deterministic
// ordered iteration (bids descending by price, asks ascending by price,
// FIFO tie-break by OrderId).
package orderbook

import (
	"errors"

	"github.com/tidwall/btree"

	"perpsim/order"
)

var (
	// ErrMaxActiveOrders is returned by TryInsert at capacity.
	ErrMaxActiveOrders = errors.New("orderbook: max active orders reached")
	// ErrDuplicateID is returned by TryInsert when the order's id is
	// already present.
	ErrDuplicateID = errors.New("orderbook: duplicate order id")
	// ErrNotFound is returned by RemoveByID/GetByID on a miss.
	ErrNotFound = errors.New("orderbook: order id not found")
)

// Book holds the bid and ask sides of the active limit order set. The
// zero value is not usable; construct with New.
type Book struct {
	capacity int
	bids     *btree.BTreeG[*order.LimitOrder]
	asks     *btree.BTreeG[*order.LimitOrder]
	byID     map[order.ID]*order.LimitOrder
}

// New constructs an empty Book bounded to capacity resting orders.
func New(capacity int) *Book {
	bids := btree.NewBTreeG(func(a, b *order.LimitOrder) bool {
		return lessBid(a, b)
	})
	asks := btree.NewBTreeG(func(a, b *order.LimitOrder) bool {
		return lessAsk(a, b)
	})
	return &Book{
		capacity: capacity,
		bids:     bids,
		asks:     asks,
		byID:     make(map[order.ID]*order.LimitOrder),
	}
}

// lessBid sorts bids by descending price, ties by ascending id (FIFO).
func lessBid(a, b *order.LimitOrder) bool {
	ap, bp := a.LimitPrice().Decimal(), b.LimitPrice().Decimal()
	if !ap.Equal(bp) {
		return ap.GreaterThan(bp)
	}
	return idOf(a) < idOf(b)
}

// lessAsk sorts asks by ascending price, ties by ascending id (FIFO).
func lessAsk(a, b *order.LimitOrder) bool {
	ap, bp := a.LimitPrice().Decimal(), b.LimitPrice().Decimal()
	if !ap.Equal(bp) {
		return ap.LessThan(bp)
	}
	return idOf(a) < idOf(b)
}

func idOf(o *order.LimitOrder) order.ID {
	meta, ok := o.Meta()
	if !ok {
		return 0
	}
	return meta.ID
}

// TryInsert adds an already-Accepted order (it must carry a Meta) to the
// correct side. O(log n).
func (b *Book) TryInsert(o *order.LimitOrder) error {
	meta, ok := o.Meta()
	if !ok {
		return errors.New("orderbook: order must be accepted before insertion")
	}
	if _, exists := b.byID[meta.ID]; exists {
		return ErrDuplicateID
	}
	if b.Len() >= b.capacity {
		return ErrMaxActiveOrders
	}
	switch o.Side() {
	case order.Buy:
		b.bids.Set(o)
	case order.Sell:
		b.asks.Set(o)
	}
	b.byID[meta.ID] = o
	return nil
}

// RemoveByID removes and returns the order with the given id. O(log n).
func (b *Book) RemoveByID(id order.ID) (*order.LimitOrder, error) {
	o, ok := b.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	tree := b.treeFor(o.Side())
	removed, found := tree.Delete(o)
	if !found {
		// invariant violation: byID and the tree disagree.
		panic("orderbook: id index out of sync with tree")
	}
	delete(b.byID, id)
	return removed, nil
}

// GetByID returns the order with the given id without removing it.
func (b *Book) GetByID(id order.ID) (*order.LimitOrder, error) {
	o, ok := b.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (b *Book) treeFor(side order.Side) *btree.BTreeG[*order.LimitOrder] {
	if side == order.Buy {
		return b.bids
	}
	return b.asks
}

// Len returns the total number of resting orders on both sides.
func (b *Book) Len() int { return len(b.byID) }

// IsEmpty reports whether the book holds no resting orders.
func (b *Book) IsEmpty() bool { return b.Len() == 0 }

// Bids calls fn for each resting bid in descending-price, FIFO-at-price
// order, stopping early if fn returns false.
func (b *Book) Bids(fn func(*order.LimitOrder) bool) {
	b.bids.Scan(fn)
}

// Asks calls fn for each resting ask in ascending-price, FIFO-at-price
// order, stopping early if fn returns false.
func (b *Book) Asks(fn func(*order.LimitOrder) bool) {
	b.asks.Scan(fn)
}

// BestBid returns the highest resting bid, if any.
func (b *Book) BestBid() (*order.LimitOrder, bool) {
	return b.bids.Min()
}

// BestAsk returns the lowest resting ask, if any.
func (b *Book) BestAsk() (*order.LimitOrder, bool) {
	return b.asks.Min()
}
