package booking

import "errors"

var (
	ErrInvalidGuests   = errors.New("guests must be at least 1")
	ErrTooManyGuests   = errors.New("guest count exceeds the property's maximum")
	ErrInvalidDates    = errors.New("check-out must be after check-in")
	ErrDraftIncomplete = errors.New("booking draft is incomplete")
	ErrInvalidDraftID  = errors.New("invalid draft id")

	// ErrDuplicateEmail is returned by an AccountCreator when the email is taken
	ErrDuplicateEmail = errors.New("email already registered")
)

// RejectedError is a failure whose message is safe to show the guest.
// Collaborators return it for domain rejections; anything else is reported
// with a generic message.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

func publicMessage(err error, fallback string) string {
	var rejected *RejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		return rejected.Message
	}
	return fallback
}
