// model/transaction.go
package model

import "time"

// Transaction is the revenue record emitted once per created booking.
// It is written fire-and-forget; the booking does not roll back on failure.
type Transaction struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"` // RENT
	BookingID int64     `json:"booking_id"`
	SellerID  int64     `json:"seller_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
