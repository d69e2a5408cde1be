package service

import (
	"errors"
	"fmt"
)

// ErrSlotTaken is returned when the availability re-check finds an
// overlapping event before the insert.
var ErrSlotTaken = errors.New("slot no longer available")

// ValidationError marks a booking request with a missing or malformed field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s is required", e.Field)
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// NotificationError signals that the calendar event was created but one of
// the confirmation emails failed. The event is not rolled back.
type NotificationError struct {
	EventID string
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification failed for event %s: %v", e.EventID, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
