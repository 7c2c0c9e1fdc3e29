package exchange

import "perpsim/order"

// UpdateKind distinguishes the two exported fill-event variants from
// spec §6: LimitOrderUpdate::{PartiallyFilled, FullyFilled}.
type UpdateKind int

const (
	PartiallyFilled UpdateKind = iota
	FullyFilled
)

func (k UpdateKind) String() string {
	if k == FullyFilled {
		return "fully_filled"
	}
	return "partially_filled"
}

// LimitOrderUpdate is one fill event, in the execution order the core
// produced it.
type LimitOrderUpdate struct {
	Kind  UpdateKind
	Order *order.LimitOrder
}
