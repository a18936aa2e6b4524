package services

import (
	"errors"
	"fmt"
)

// Kind classifies a booking rejection so the API layer can map it to a
// distinguishable response and callers know whether a retry makes sense.
type Kind string

const (
	// Client input errors, recoverable by resubmitting corrected input.
	KindPastDate         Kind = "PAST_DATE"
	KindInvalidRange     Kind = "INVALID_RANGE"
	KindCapacityExceeded Kind = "CAPACITY_EXCEEDED"

	// Resource-state errors; caller should re-query listings.
	KindRoomNotFound    Kind = "ROOM_NOT_FOUND"
	KindRoomUnavailable Kind = "ROOM_UNAVAILABLE"
	KindBookingNotFound Kind = "BOOKING_NOT_FOUND"

	// Business-rule and concurrency rejections. Deterministic; must not be
	// retried verbatim.
	KindDateConflict              Kind = "DATE_CONFLICT"
	KindDuplicateConfirmation     Kind = "DUPLICATE_CONFIRMATION"
	KindForbidden                 Kind = "FORBIDDEN"
	KindCancellationWindowExpired Kind = "CANCELLATION_WINDOW_EXPIRED"
	KindPaymentNotCompleted       Kind = "PAYMENT_NOT_COMPLETED"

	// Non-fatal: cancellation succeeded but the refund needs follow-up.
	KindRefundFailed Kind = "REFUND_FAILED"

	// Generic kinds for CRUD-layer rejections outside the admission engine.
	KindValidation Kind = "VALIDATION"
	KindConflict   Kind = "CONFLICT"
)

// BookingError is a structured rejection: a kind plus human-readable detail.
type BookingError struct {
	Kind    Kind
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewBookingError(kind Kind, format string, args ...interface{}) *BookingError {
	return &BookingError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a BookingError of the given kind.
func IsKind(err error, kind Kind) bool {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}

// KindOf returns the kind of a BookingError, or "" for other errors
// (persistence or gateway outages, eligible for caller-level retry).
func KindOf(err error) Kind {
	var be *BookingError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}
