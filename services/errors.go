// services/errors.go - Typed errors surfaced to the route layer.
//
// Validation errors map to 4xx responses; anything else bubbling out of the
// core is a data-access failure and maps to a generic 5xx.
package services

import "errors"

var (
	// ErrInvalidDelta rejects a non-positive point award before any write.
	ErrInvalidDelta = errors.New("point delta must be positive")

	// ErrUserNotFound is returned when the acting user row does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrMissingRecipient rejects a notification without a recipient.
	ErrMissingRecipient = errors.New("notification recipient is required")

	// ErrEmptyMessage rejects a notification without a message body.
	ErrEmptyMessage = errors.New("notification message is required")

	// ErrInvalidNotificationType rejects an unknown notification type.
	ErrInvalidNotificationType = errors.New("invalid notification type")

	// ErrNotificationNotFound is returned when a recipient acts on a
	// notification they do not own (or that no longer exists).
	ErrNotificationNotFound = errors.New("notification not found")
)

// IsValidation reports whether err should be presented as a client error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidDelta) ||
		errors.Is(err, ErrMissingRecipient) ||
		errors.Is(err, ErrEmptyMessage) ||
		errors.Is(err, ErrInvalidNotificationType)
}
