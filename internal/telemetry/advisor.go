package telemetry

import (
	"fmt"

	"github.com/verdano/plantcore/internal/device"
	"github.com/verdano/plantcore/internal/infrastructure/config"
)

// Alert metric identifiers as persisted and broadcast.
const (
	MetricSoilHumidity = "SOIL_HUMIDITY"
	MetricTemperature  = "TEMPERATURE"
)

// Verdict is the advisory engine's assessment of a single VALID reading.
// For severities above INFO it carries the alert detail the pipeline will
// persist and broadcast.
type Verdict struct {
	Result    AdvisorResult
	Metric    string
	Value     float64
	Threshold float64
	Message   string
}

// Advisor evaluates VALID readings against plant threshold profiles.
//
// A plant's own thresholds take precedence; any bound the profile omits
// falls back to the configured defaults, so an unregistered plant is still
// evaluated rather than ignored.
//
// Thread Safety: Evaluate is a pure function over its arguments.
type Advisor struct {
	defaults config.ThresholdsConfig
}

// NewAdvisor creates an advisor with the given default bounds.
func NewAdvisor(defaults config.ThresholdsConfig) *Advisor {
	return &Advisor{defaults: defaults}
}

// defaultThresholds mirrors the configuration defaults. Used when a pipeline
// is constructed without an advisor.
func defaultThresholds() config.ThresholdsConfig {
	return config.ThresholdsConfig{
		MinSoilHumidity:    35,
		MaxSoilHumidity:    100,
		MinAmbientHumidity: 30,
		MaxAmbientHumidity: 100,
		MinTempC:           -10,
		MaxTempC:           38,
		MinLightLux:        200,
		MaxLightLux:        50000,
	}
}

// Evaluate classifies a reading into a severity. First match wins; the
// tiers are mutually exclusive per reading.
//
// Ladder:
//  1. soilHumidity below the minimum bound → CRITICA (plant is drying out)
//  2. tempC above the maximum bound → ALERTA
//  3. otherwise → INFO
//
// profile may be nil (unknown plant); defaults are used for every bound.
func (a *Advisor) Evaluate(r *Reading, profile *device.PlantDevice) Verdict {
	minSoil := a.bound(profile, func(t device.Thresholds) *float64 { return t.MinSoilHumidity }, a.defaults.MinSoilHumidity)
	maxTemp := a.bound(profile, func(t device.Thresholds) *float64 { return t.MaxTempC }, a.defaults.MaxTempC)

	if r.SoilHumidity != nil && *r.SoilHumidity < minSoil {
		return Verdict{
			Result:    ResultCritica,
			Metric:    MetricSoilHumidity,
			Value:     *r.SoilHumidity,
			Threshold: minSoil,
			Message:   fmt.Sprintf("Humedad del suelo critica: %.1f%% (minimo %.1f%%)", *r.SoilHumidity, minSoil),
		}
	}

	if r.TempC != nil && *r.TempC > maxTemp {
		return Verdict{
			Result:    ResultAlerta,
			Metric:    MetricTemperature,
			Value:     *r.TempC,
			Threshold: maxTemp,
			Message:   fmt.Sprintf("Temperatura alta: %.1f C (maximo %.1f C)", *r.TempC, maxTemp),
		}
	}

	return Verdict{Result: ResultInfo}
}

// bound resolves a single threshold: profile value when set, default otherwise.
func (a *Advisor) bound(profile *device.PlantDevice, pick func(device.Thresholds) *float64, fallback float64) float64 {
	if profile != nil {
		if v := pick(profile.Thresholds); v != nil {
			return *v
		}
	}
	return fallback
}

// ResolveRecipient determines the email address an alert notification goes to.
//
// Resolution order: the plant owner's address, then the operator-configured
// fallback, then the sender's own address. Never returns empty as long as the
// SMTP sender is configured.
func ResolveRecipient(profile *device.PlantDevice, fallback, sender string) string {
	if profile != nil && profile.OwnerEmail != "" {
		return profile.OwnerEmail
	}
	if fallback != "" {
		return fallback
	}
	return sender
}
