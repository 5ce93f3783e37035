package rental

import (
	"context"
	"time"

	"github.com/vaqsi1990/cloth-sub001/model"
	"github.com/vaqsi1990/cloth-sub001/util/interval"
)

// checkRequest is one candidate range against one item.
type checkRequest struct {
	itemID    int64
	variantID *int64
	size      string // resolved variant label; empty when unsized
	start     time.Time
	end       time.Time
	excludeID int64 // booking to skip when re-dating itself
}

// Availability is the read-path result. It never reserves the slot.
type Availability struct {
	Available bool           `json:"available"`
	Conflict  *ConflictError `json:"conflict,omitempty"`
}

// detectConflict scans both busy sources and returns the first blocking
// record as a *ConflictError, or nil when the range is free. Ledger
// bookings are pre-filtered by the store; order lines carry only a loose
// size label, so the label comparison happens here.
func (s *service) detectConflict(ctx context.Context, src BusySource, req checkRequest) error {
	bookings, err := src.BusyBookings(ctx, req.itemID, req.variantID, req.excludeID)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		if interval.Overlaps(req.start, req.end, b.StartDate, b.EndDate, s.buffer) {
			return &ConflictError{Source: "booking", RecordID: b.ID, Start: b.StartDate, End: b.EndDate}
		}
	}

	// A line whose end date plus buffer is already behind us cannot block
	// anything; the cutoff keeps those out of the scan instead of a sweeper
	// cleaning them up.
	cutoff := interval.Day(s.now()).AddDate(0, 0, -s.buffer)
	lines, err := src.BusyRentalLines(ctx, req.itemID, cutoff)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if !sizeMatches(req.size, l.Size) {
			continue
		}
		if interval.Overlaps(req.start, req.end, l.StartDate, l.EndDate, s.buffer) {
			return &ConflictError{Source: "order", RecordID: l.ID, Start: l.StartDate, End: l.EndDate}
		}
	}
	return nil
}

// sizeMatches compares the candidate's variant label with an order line's
// size. Either side being unlabeled blocks: a line that does not say which
// size it occupies must be assumed to occupy the requested one.
func sizeMatches(candidate, line string) bool {
	if candidate == "" || line == "" {
		return true
	}
	return candidate == line
}

// validRange enforces start < end; when pastForbidden, start must not
// predate today (existing records being re-read are exempt, new bookings
// are not).
func (s *service) validRange(start, end time.Time, pastForbidden bool) error {
	if !start.Before(end) {
		return makeErr(ErrInvalidRange)
	}
	if pastForbidden && start.Before(interval.Day(s.now())) {
		return makeErr(ErrInvalidRange)
	}
	return nil
}

// resolveSize maps an optional variant id to its loose size label,
// verifying the variant belongs to the item.
func resolveSize(ctx context.Context, get func(context.Context, int64) (*model.ItemVariant, error), itemID int64, variantID *int64) (string, error) {
	if variantID == nil {
		return "", nil
	}
	v, err := get(ctx, *variantID)
	if err != nil {
		return "", err
	}
	if v.ItemID != itemID {
		return "", makeErr(ErrNotFound)
	}
	return v.Label, nil
}
