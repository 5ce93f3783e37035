// model/booking.go
package model

import "time"

type BookingStatus string

const (
	BookingReserved BookingStatus = "RESERVED"
	BookingActive   BookingStatus = "ACTIVE"
	BookingReturned BookingStatus = "RETURNED"
	BookingLate     BookingStatus = "LATE"
	BookingCanceled BookingStatus = "CANCELED"
)

// Terminal reports whether s admits no further transition.
func (s BookingStatus) Terminal() bool {
	return s == BookingReturned || s == BookingCanceled
}

// Booking is one rental reservation on the ledger. Records are never
// deleted; cancellation and return are terminal statuses.
type Booking struct {
	ID          int64         `json:"id"`
	ItemID      int64         `json:"item_id"`
	VariantID   *int64        `json:"variant_id,omitempty"`
	RenterID    int64         `json:"renter_id"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	Status      BookingStatus `json:"status"`
	PricePerDay float64       `json:"price_per_day"`
	TotalPrice  float64       `json:"total_price"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
