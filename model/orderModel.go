// model/order.go
package model

import "time"

type OrderStatus string

const (
	OrderPending  OrderStatus = "PENDING"
	OrderPaid     OrderStatus = "PAID"
	OrderShipped  OrderStatus = "SHIPPED"
	OrderCanceled OrderStatus = "CANCELED"
	OrderRefunded OrderStatus = "REFUNDED"
)

// RentalLine is a rental interval attached to a commerce order rather than
// the booking ledger. It counts as busy only while its parent order is in a
// non-terminal status. The size is a loose label, not a variant reference.
type RentalLine struct {
	ID          int64       `json:"id"`
	OrderID     int64       `json:"order_id"`
	ItemID      int64       `json:"item_id"`
	Size        string      `json:"size,omitempty"`
	StartDate   time.Time   `json:"start_date"`
	EndDate     time.Time   `json:"end_date"`
	OrderStatus OrderStatus `json:"order_status"`
	CreatedAt   time.Time   `json:"created_at"`
}
