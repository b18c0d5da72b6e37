package telemetry

import "time"

// MsgType distinguishes periodic telemetry from out-of-band actuator events.
type MsgType string

const (
	// MsgReading is a periodic sensor sample.
	MsgReading MsgType = "READING"

	// MsgEvent is an out-of-band actuator state change (pump on/off).
	// Events bypass QC and advisory evaluation.
	MsgEvent MsgType = "EVENT"
)

// QcStatus is the quality-control classification of a reading.
// Assigned by the QC stage, never by the producer.
type QcStatus string

const (
	QcValid      QcStatus = "VALID"
	QcOutOfRange QcStatus = "OUT_OF_RANGE"
	QcRateError  QcStatus = "RATE_ERROR"
	QcError      QcStatus = "QC_ERROR"
	QcEvent      QcStatus = "EVENT"
)

// AdvisorResult is the severity assigned by the advisory engine.
// Only VALID readings are evaluated.
type AdvisorResult string

const (
	ResultCritica       AdvisorResult = "CRITICA"
	ResultAlerta        AdvisorResult = "ALERTA"
	ResultRecomendacion AdvisorResult = "RECOMENDACION"
	ResultInfo          AdvisorResult = "INFO"
)

// Reading is one normalized telemetry sample from a plant node.
//
// Optional metrics are pointers: nil means "not reported this cycle", which
// is distinct from zero. A reading is constructed once by the normalizer,
// tagged in place by the QC and advisory stages, then persisted and discarded.
// Only the LatestCache retains a copy.
type Reading struct {
	PlantID   string    `json:"plantId"`
	Timestamp time.Time `json:"timestamp"`

	TempC           *float64 `json:"tempC,omitempty"`
	AmbientHumidity *float64 `json:"ambientHumidity,omitempty"`
	SoilHumidity    *float64 `json:"soilHumidity,omitempty"`
	LightLux        *float64 `json:"lightLux,omitempty"`
	PumpOn          bool     `json:"pumpOn"`

	MsgType       MsgType       `json:"msgType"`
	QcStatus      QcStatus      `json:"qcStatus,omitempty"`
	AdvisorResult AdvisorResult `json:"advisorResult,omitempty"`

	// TimestampSubstituted records that the payload carried an implausible
	// numeric timestamp which was replaced with the ingestion time. Surfaced
	// so clock-skew bugs on the node side stay visible in logs.
	TimestampSubstituted bool `json:"-"`
}

// DeepCopy returns a copy of the reading with no shared pointers.
func (r *Reading) DeepCopy() *Reading {
	if r == nil {
		return nil
	}
	clone := *r
	clone.TempC = copyMetric(r.TempC)
	clone.AmbientHumidity = copyMetric(r.AmbientHumidity)
	clone.SoilHumidity = copyMetric(r.SoilHumidity)
	clone.LightLux = copyMetric(r.LightLux)
	return &clone
}

// Fields returns the reading's present metrics as a time-series field map.
// Absent metrics are omitted rather than written as zero.
func (r *Reading) Fields() map[string]interface{} {
	fields := make(map[string]interface{}, 5)
	if r.TempC != nil {
		fields["tempC"] = *r.TempC
	}
	if r.AmbientHumidity != nil {
		fields["ambientHumidity"] = *r.AmbientHumidity
	}
	if r.SoilHumidity != nil {
		fields["soilHumidity"] = *r.SoilHumidity
	}
	if r.LightLux != nil {
		fields["lightLux"] = *r.LightLux
	}
	fields["pumpOn"] = r.PumpOn
	return fields
}

func copyMetric(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Metric returns a pointer to v. Convenience for building readings in tests
// and handlers.
func Metric(v float64) *float64 {
	return &v
}
