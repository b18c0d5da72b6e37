package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a plant ID does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when creating a device with a plant ID that already exists.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrInvalidDevice is returned when device validation fails.
	ErrInvalidDevice = errors.New("device: invalid")

	// ErrInvalidPlantID is returned when a plant ID is empty or contains topic separators.
	ErrInvalidPlantID = errors.New("device: invalid plant id")

	// ErrInvalidThresholds is returned when a min bound exceeds its max bound.
	ErrInvalidThresholds = errors.New("device: invalid thresholds")
)
