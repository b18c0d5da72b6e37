package alert

import "time"

// PlantAlert is a persisted record of an advisory that raised an alarm.
type PlantAlert struct {
	ID        string    `json:"id"`
	PlantID   string    `json:"plantId"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Metric    string    `json:"metric,omitempty"`
	Value     *float64  `json:"value,omitempty"`
	Threshold *float64  `json:"threshold,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListFilter narrows List queries. Zero values mean "no filter".
type ListFilter struct {
	// PlantID restricts results to a single plant.
	PlantID string

	// UnreadOnly restricts results to alerts not yet marked as read.
	UnreadOnly bool

	// Limit caps the number of returned rows (newest first). 0 means no cap.
	Limit int
}
