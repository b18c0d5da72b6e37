package device

import (
	"fmt"
	"strings"
	"time"
)

// PlantDevice is the profile for a single plant node.
//
// PlantID matches the second segment of the node's MQTT topics
// (planta/{plantId}/lecturas). OwnerEmail receives alert notifications;
// when empty, the configured fallback address is used instead.
type PlantDevice struct {
	PlantID    string     `json:"plantId"`
	Name       string     `json:"name"`
	Species    string     `json:"species"`
	OwnerEmail string     `json:"ownerEmail"`
	Active     bool       `json:"active"`
	Thresholds Thresholds `json:"thresholds"`

	// LastDataReceived is the ingestion time of the most recent reading or
	// event from this plant. Nil until the first message arrives.
	LastDataReceived *time.Time `json:"lastDataReceived,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Thresholds holds the per-plant advisory bounds.
//
// Each bound is a pointer: nil means "no bound configured for this plant",
// in which case the advisor falls back to the configured defaults.
type Thresholds struct {
	MinSoilHumidity    *float64 `json:"minSoilHumidity,omitempty"`
	MaxSoilHumidity    *float64 `json:"maxSoilHumidity,omitempty"`
	MinAmbientHumidity *float64 `json:"minAmbientHumidity,omitempty"`
	MaxAmbientHumidity *float64 `json:"maxAmbientHumidity,omitempty"`
	MinTempC           *float64 `json:"minTempC,omitempty"`
	MaxTempC           *float64 `json:"maxTempC,omitempty"`
	MinLightLux        *float64 `json:"minLightLux,omitempty"`
	MaxLightLux        *float64 `json:"maxLightLux,omitempty"`
}

// DeepCopy returns a copy of the device with no shared pointers.
// Used by the Registry so cached entries can never be mutated by callers.
func (d *PlantDevice) DeepCopy() *PlantDevice {
	if d == nil {
		return nil
	}
	clone := *d
	clone.Thresholds = d.Thresholds.DeepCopy()
	if d.LastDataReceived != nil {
		t := *d.LastDataReceived
		clone.LastDataReceived = &t
	}
	return &clone
}

// DeepCopy returns a copy of the thresholds with fresh pointers.
func (t Thresholds) DeepCopy() Thresholds {
	return Thresholds{
		MinSoilHumidity:    copyBound(t.MinSoilHumidity),
		MaxSoilHumidity:    copyBound(t.MaxSoilHumidity),
		MinAmbientHumidity: copyBound(t.MinAmbientHumidity),
		MaxAmbientHumidity: copyBound(t.MaxAmbientHumidity),
		MinTempC:           copyBound(t.MinTempC),
		MaxTempC:           copyBound(t.MaxTempC),
		MinLightLux:        copyBound(t.MinLightLux),
		MaxLightLux:        copyBound(t.MaxLightLux),
	}
}

func copyBound(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Bound returns a pointer to v. Convenience for building threshold literals.
func Bound(v float64) *float64 {
	return &v
}

// Validate checks the device profile for errors.
//
// Returns ErrInvalidPlantID or ErrInvalidThresholds (wrapped with detail)
// on failure, nil otherwise.
func Validate(d *PlantDevice) error {
	if d.PlantID == "" {
		return fmt.Errorf("%w: plant id is required", ErrInvalidPlantID)
	}
	if strings.ContainsAny(d.PlantID, "/+#") {
		return fmt.Errorf("%w: %q contains MQTT topic characters", ErrInvalidPlantID, d.PlantID)
	}

	pairs := []struct {
		name     string
		min, max *float64
	}{
		{"soil humidity", d.Thresholds.MinSoilHumidity, d.Thresholds.MaxSoilHumidity},
		{"ambient humidity", d.Thresholds.MinAmbientHumidity, d.Thresholds.MaxAmbientHumidity},
		{"temperature", d.Thresholds.MinTempC, d.Thresholds.MaxTempC},
		{"light", d.Thresholds.MinLightLux, d.Thresholds.MaxLightLux},
	}
	for _, p := range pairs {
		if p.min != nil && p.max != nil && *p.min > *p.max {
			return fmt.Errorf("%w: %s min %v exceeds max %v", ErrInvalidThresholds, p.name, *p.min, *p.max)
		}
	}

	return nil
}
