package alert

import "errors"

// Domain errors for the alert package.
var (
	// ErrAlertNotFound is returned when an alert ID does not exist.
	ErrAlertNotFound = errors.New("alert: not found")

	// ErrInvalidAlert is returned when an alert is missing required fields.
	ErrInvalidAlert = errors.New("alert: invalid")
)
