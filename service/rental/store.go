package rental

import (
	"context"
	"errors"
	"time"

	"github.com/vaqsi1990/cloth-sub001/model"
)

// ErrNoRecord is returned by Store implementations when a row is absent.
var ErrNoRecord = errors.New("record not found")

// BusySource supplies the two kinds of busy intervals the conflict
// detector merges. Both the plain store (read path) and an open
// transaction (create path) satisfy it, so a check can run inside the same
// snapshot as the insert it guards.
type BusySource interface {
	// BusyBookings lists ledger bookings occupying the item: status in
	// RESERVED/ACTIVE/LATE, matching the variant when one is given (a
	// booking without a variant blocks every variant), skipping excludeID.
	BusyBookings(ctx context.Context, itemID int64, variantID *int64, excludeID int64) ([]model.Booking, error)

	// BusyRentalLines lists order lines for the item whose parent order is
	// in a non-terminal status and whose end date is on or after cutoff.
	BusyRentalLines(ctx context.Context, itemID int64, cutoff time.Time) ([]model.RentalLine, error)
}

// Tx is one storage transaction. ItemForUpdate must take a row lock so that
// concurrent bookings of the same item serialize behind it.
type Tx interface {
	BusySource

	ItemForUpdate(ctx context.Context, itemID int64) (*model.Item, error)
	Variant(ctx context.Context, variantID int64) (*model.ItemVariant, error)
	RenterBlocked(ctx context.Context, renterID int64) (bool, error)

	InsertBooking(ctx context.Context, b *model.Booking) error
	BookingForUpdate(ctx context.Context, id int64) (*model.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status model.BookingStatus) error
	UpdateBookingDates(ctx context.Context, id int64, start, end time.Time, totalPrice float64) error

	SetItemStatus(ctx context.Context, itemID int64, status model.ItemStatus) error
	PurgeStaleRentalLines(ctx context.Context, itemID int64, before time.Time) (int64, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type ListFilter struct {
	RenterID int64
	ItemID   int64
	Status   model.BookingStatus
	Page     int
	Limit    int
}

type Store interface {
	BusySource

	Begin(ctx context.Context) (Tx, error)

	Item(ctx context.Context, id int64) (*model.Item, error)
	Variant(ctx context.Context, id int64) (*model.ItemVariant, error)
	Booking(ctx context.Context, id int64) (*model.Booking, error)
	ListBookings(ctx context.Context, f ListFilter) ([]model.Booking, error)

	InsertTransaction(ctx context.Context, t *model.Transaction) error
}
