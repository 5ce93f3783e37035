package rental

import (
	"errors"
	"fmt"
	"time"
)

// errors used by controllers

type ErrCode string

const (
	ErrInvalidRange      ErrCode = "INVALID_RANGE"
	ErrNotRentable       ErrCode = "NOT_RENTABLE"
	ErrConflict          ErrCode = "CONFLICT"
	ErrDuplicate         ErrCode = "DUPLICATE"
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrInvalidTransition ErrCode = "INVALID_TRANSITION"
	ErrPartialFailure    ErrCode = "PARTIAL_FAILURE"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// ConflictError reports the record blocking a requested range, with its
// interval, so callers can suggest alternative dates.
type ConflictError struct {
	Source   string    `json:"source"` // "booking" or "order"
	RecordID int64     `json:"record_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict with %s %d (%s..%s)",
		e.Source, e.RecordID, e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

func (e *ConflictError) Code() ErrCode { return ErrConflict }

// PartialFailureError means the ledger transition committed but the
// inventory synchronizer step did not; the caller retries only that step.
type PartialFailureError struct {
	BookingID int64
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("booking %d committed but inventory sync failed: %v", e.BookingID, e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }
func (e *PartialFailureError) Code() ErrCode { return ErrPartialFailure }
