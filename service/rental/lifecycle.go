package rental

import "github.com/vaqsi1990/cloth-sub001/model"

// Legal successor sets. RESERVED may be returned directly (renter never
// picked the item up but the seller closes it out), canceled, or activated;
// once ACTIVE the renter holds the item and only return or late-marking is
// legal. RETURNED and CANCELED are terminal.
var successors = map[model.BookingStatus]map[model.BookingStatus]bool{
	model.BookingReserved: {
		model.BookingActive:   true,
		model.BookingCanceled: true,
		model.BookingReturned: true,
	},
	model.BookingActive: {
		model.BookingLate:     true,
		model.BookingReturned: true,
	},
	model.BookingLate: {
		model.BookingReturned: true,
	},
}

// CanTransition reports whether a booking in state from may move to state
// to. Self-transitions are illegal, so a second return on an already
// returned booking fails rather than silently succeeding.
func CanTransition(from, to model.BookingStatus) bool {
	return successors[from][to]
}
