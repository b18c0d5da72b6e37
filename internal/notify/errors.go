package notify

import "errors"

// Domain errors for the notify package.
var (
	// ErrNoRecipient is returned when SendAlert is called with an empty
	// address.
	ErrNoRecipient = errors.New("notify: no recipient address")

	// ErrSendFailed is returned when the SMTP transport rejects the message.
	ErrSendFailed = errors.New("notify: send failed")
)
