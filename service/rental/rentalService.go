// Package rental is the booking conflict and lifecycle engine: it decides
// whether a requested date range can be granted without double-booking a
// physical item, tracks reservations from creation through return or
// cancellation, and keeps the item's coarse availability status in step.
package rental

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vaqsi1990/cloth-sub001/model"
	"github.com/vaqsi1990/cloth-sub001/util/interval"
)

const dateLayout = "2006-01-02"

// Cache guards against duplicate client submissions. Optional: the engine
// is race-safe without it, the row lock in Create carries the invariant.
type Cache interface {
	SetIdempotency(ctx context.Context, key string) (bool, error)
	ReleaseIdempotency(ctx context.Context, key string) error
}

type CreateInput struct {
	RenterID    int64
	ItemID      int64
	VariantID   *int64
	Start       time.Time
	End         time.Time
	PricePerDay float64
	TotalPrice  float64
}

type UpdateInput struct {
	Status *model.BookingStatus
	Start  *time.Time
	End    *time.Time
}

type Service interface {
	// Create checks availability and inserts the booking as one atomic
	// unit, serialized per item by a row lock inside the transaction.
	Create(ctx context.Context, in CreateInput) (*model.Booking, error)

	// Update re-dates a RESERVED booking and/or applies a lifecycle
	// transition. A RETURNED result may carry PartialFailure when the
	// inventory step failed after the ledger committed.
	Update(ctx context.Context, renterID, id int64, in UpdateInput) (*model.Booking, error)

	// Cancel is the RESERVED-only unilateral cancellation.
	Cancel(ctx context.Context, renterID, id int64) (*model.Booking, error)

	// Resync repeats the inventory synchronizer step of a returned
	// booking. Idempotent; the PartialFailure recovery path.
	Resync(ctx context.Context, renterID, id int64) error

	// List pages the renter's bookings, newest first.
	List(ctx context.Context, f ListFilter) ([]model.Booking, error)

	// CheckAvailability is the read-only conflict probe. It never
	// reserves the slot.
	CheckAvailability(ctx context.Context, itemID int64, variantID *int64, start, end time.Time) (*Availability, error)
}

type service struct {
	store  Store
	cache  Cache
	buffer int
	log    *slog.Logger
	now    func() time.Time
}

func New(store Store, cache Cache, bufferDays int, log *slog.Logger) Service {
	if bufferDays < 0 {
		bufferDays = 0
	}
	return &service{store: store, cache: cache, buffer: bufferDays, log: log, now: time.Now}
}

// idempotencyKey identifies one submission: renter, item, variant (0 when
// unsized) and the date range. Anything less collapses distinct requests,
// such as two variants of the same item over the same dates.
func idempotencyKey(in CreateInput, start, end time.Time) string {
	var vid int64
	if in.VariantID != nil {
		vid = *in.VariantID
	}
	return fmt.Sprintf("rental:%d:%d:%d:%s:%s",
		in.RenterID, in.ItemID, vid, start.Format(dateLayout), end.Format(dateLayout))
}

func (s *service) Create(ctx context.Context, in CreateInput) (*model.Booking, error) {
	start, end := interval.Day(in.Start), interval.Day(in.End)
	if err := s.validRange(start, end, true); err != nil {
		return nil, err
	}
	if in.PricePerDay < 0 || in.TotalPrice < 0 {
		return nil, makeErr(ErrInvalidRange)
	}

	var key string
	if s.cache != nil {
		key = idempotencyKey(in, start, end)
		ok, err := s.cache.SetIdempotency(ctx, key)
		if err != nil {
			// cache outage must not block bookings
			s.log.Warn("idempotency guard unavailable", "err", err)
			key = ""
		} else if !ok {
			return nil, makeErr(ErrDuplicate)
		}
	}

	b, err := s.createBooking(ctx, in, start, end)
	if err != nil && key != "" {
		// A rejected attempt must not hold the key for the TTL; the
		// client may fix the request and resubmit right away.
		if rerr := s.cache.ReleaseIdempotency(ctx, key); rerr != nil {
			s.log.Warn("idempotency release failed", "key", key, "err", rerr)
		}
	}
	return b, err
}

func (s *service) createBooking(ctx context.Context, in CreateInput, start, end time.Time) (*model.Booking, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Row lock on the item: concurrent creates for the same item line up
	// here, so the conflict scan and the insert see one serial history.
	item, err := tx.ItemForUpdate(ctx, in.ItemID)
	if errors.Is(err, ErrNoRecord) {
		return nil, makeErr(ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !item.Rentable {
		return nil, makeErr(ErrNotRentable)
	}

	blocked, err := tx.RenterBlocked(ctx, in.RenterID)
	if err != nil && !errors.Is(err, ErrNoRecord) {
		return nil, err
	}
	if blocked || errors.Is(err, ErrNoRecord) {
		return nil, makeErr(ErrForbidden)
	}

	size, err := resolveSize(ctx, tx.Variant, in.ItemID, in.VariantID)
	if errors.Is(err, ErrNoRecord) {
		return nil, makeErr(ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := s.detectConflict(ctx, tx, checkRequest{
		itemID:    in.ItemID,
		variantID: in.VariantID,
		size:      size,
		start:     start,
		end:       end,
	}); err != nil {
		return nil, err
	}

	b := &model.Booking{
		ItemID:      in.ItemID,
		VariantID:   in.VariantID,
		RenterID:    in.RenterID,
		StartDate:   start,
		EndDate:     end,
		Status:      model.BookingReserved,
		PricePerDay: in.PricePerDay,
		TotalPrice:  in.TotalPrice,
	}
	if err := tx.InsertBooking(ctx, b); err != nil {
		return nil, err
	}
	if err := s.occupyItem(ctx, tx, item); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	// Revenue record is fire-and-forget: its failure never unwinds the
	// booking.
	go s.emitTransaction(*b, item.SellerID)

	return b, nil
}

func (s *service) Update(ctx context.Context, renterID, id int64, in UpdateInput) (*model.Booking, error) {
	if in.Status == nil && in.Start == nil && in.End == nil {
		return nil, makeErr(ErrInvalidRange)
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	b, err := tx.BookingForUpdate(ctx, id)
	if errors.Is(err, ErrNoRecord) {
		return nil, makeErr(ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if b.RenterID != renterID {
		return nil, makeErr(ErrForbidden)
	}

	if in.Start != nil || in.End != nil {
		if b.Status != model.BookingReserved {
			return nil, makeErr(ErrInvalidTransition)
		}
		start, end := b.StartDate, b.EndDate
		if in.Start != nil {
			start = interval.Day(*in.Start)
		}
		if in.End != nil {
			end = interval.Day(*in.End)
		}
		if err := s.validRange(start, end, true); err != nil {
			return nil, err
		}
		size, err := resolveSize(ctx, tx.Variant, b.ItemID, b.VariantID)
		if errors.Is(err, ErrNoRecord) {
			return nil, makeErr(ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		if err := s.detectConflict(ctx, tx, checkRequest{
			itemID:    b.ItemID,
			variantID: b.VariantID,
			size:      size,
			start:     start,
			end:       end,
			excludeID: b.ID,
		}); err != nil {
			return nil, err
		}
		total := b.PricePerDay * float64(end.Sub(start)/(24*time.Hour))
		if err := tx.UpdateBookingDates(ctx, b.ID, start, end, total); err != nil {
			return nil, err
		}
		b.StartDate, b.EndDate, b.TotalPrice = start, end, total
	}

	returned := false
	if in.Status != nil {
		target := *in.Status
		if !CanTransition(b.Status, target) {
			return nil, makeErr(ErrInvalidTransition)
		}
		if err := tx.UpdateBookingStatus(ctx, b.ID, target); err != nil {
			return nil, err
		}
		switch target {
		case model.BookingCanceled:
			// No occupancy ever started; the revert rides the same tx.
			if err := s.releaseItem(ctx, tx, b.ItemID, false); err != nil {
				return nil, err
			}
		case model.BookingReturned:
			returned = true
		}
		b.Status = target
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if returned {
		if err := s.syncReturn(ctx, b.ItemID); err != nil {
			s.log.Error("inventory sync failed after return",
				"booking_id", b.ID, "item_id", b.ItemID, "err", err)
			return b, &PartialFailureError{BookingID: b.ID, Err: err}
		}
	}
	return b, nil
}

func (s *service) Cancel(ctx context.Context, renterID, id int64) (*model.Booking, error) {
	st := model.BookingCanceled
	return s.Update(ctx, renterID, id, UpdateInput{Status: &st})
}

func (s *service) Resync(ctx context.Context, renterID, id int64) error {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	b, err := tx.BookingForUpdate(ctx, id)
	if errors.Is(err, ErrNoRecord) {
		return makeErr(ErrNotFound)
	}
	if err != nil {
		return err
	}
	if b.RenterID != renterID {
		return makeErr(ErrForbidden)
	}
	if b.Status != model.BookingReturned {
		return makeErr(ErrInvalidTransition)
	}
	if err := s.releaseItem(ctx, tx, b.ItemID, true); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *service) List(ctx context.Context, f ListFilter) ([]model.Booking, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	return s.store.ListBookings(ctx, f)
}

func (s *service) CheckAvailability(ctx context.Context, itemID int64, variantID *int64, start, end time.Time) (*Availability, error) {
	start, end = interval.Day(start), interval.Day(end)
	if err := s.validRange(start, end, false); err != nil {
		return nil, err
	}
	if _, err := s.store.Item(ctx, itemID); err != nil {
		if errors.Is(err, ErrNoRecord) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	size, err := resolveSize(ctx, s.store.Variant, itemID, variantID)
	if errors.Is(err, ErrNoRecord) {
		return nil, makeErr(ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	err = s.detectConflict(ctx, s.store, checkRequest{
		itemID:    itemID,
		variantID: variantID,
		size:      size,
		start:     start,
		end:       end,
	})
	var ce *ConflictError
	if errors.As(err, &ce) {
		return &Availability{Available: false, Conflict: ce}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Availability{Available: true}, nil
}

func (s *service) emitTransaction(b model.Booking, sellerID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t := &model.Transaction{
		Type:      "RENT",
		BookingID: b.ID,
		SellerID:  sellerID,
		Amount:    b.TotalPrice,
	}
	if err := s.store.InsertTransaction(ctx, t); err != nil {
		s.log.Error("revenue record failed", "booking_id", b.ID, "err", err)
	}
}
