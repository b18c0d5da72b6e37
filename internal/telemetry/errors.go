package telemetry

import "errors"

// Domain errors for the telemetry package.
var (
	// ErrMalformedPayload is returned when an inbound payload cannot be
	// parsed as a JSON object.
	ErrMalformedPayload = errors.New("telemetry: malformed payload")

	// ErrMissingPlantID is returned when neither the payload nor the topic
	// identifies the plant the reading belongs to.
	ErrMissingPlantID = errors.New("telemetry: missing plant id")
)
