package actuator

import "errors"

// Domain errors for the actuator package.
var (
	// ErrNotConnected is returned when the broker connection is down.
	ErrNotConnected = errors.New("actuator: broker not connected")

	// ErrInvalidCommand is returned for commands outside the known set.
	ErrInvalidCommand = errors.New("actuator: invalid command")

	// ErrPublishFailed is returned when the command publish is not acknowledged.
	ErrPublishFailed = errors.New("actuator: publish failed")
)
