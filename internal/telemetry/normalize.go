package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/verdano/plantcore/internal/infrastructure/mqtt"
)

// timestampFloorMillis is the year-2000 epoch in milliseconds. Numeric
// timestamps below this are treated as node clock failures (unset RTC,
// uptime counters) and replaced with the ingestion time.
const timestampFloorMillis = 946684800000

// fieldAliases maps each canonical field to its accepted payload keys in
// resolution order. First present alias wins. Older firmware revisions use
// the short names on the right.
var fieldAliases = map[string][]string{
	"plantId":         {"plantId", "deviceId"},
	"tempC":           {"tempC", "temperature"},
	"ambientHumidity": {"ambientHumidity", "humidity"},
	"soilHumidity":    {"soilHumidity", "soilHum"},
	"lightLux":        {"lightLux", "light"},
	"pumpOn":          {"pumpOn", "pumpState"},
	"msgType":         {"msgType", "type"},
	"timestamp":       {"timestamp"},
}

// Normalize parses a raw inbound payload into a canonical Reading.
//
// The payload must be a JSON object; field names are resolved through the
// alias table. The plant ID is taken from the payload when present, falling
// back to the topic's second segment. A numeric timestamp below the year-2000
// floor is replaced with the ingestion time and the reading is flagged; an
// absent timestamp gets the ingestion time silently.
//
// Parameters:
//   - topic: The topic the payload arrived on (planta/{plantId}/...)
//   - payload: Raw message bytes
//   - now: Ingestion time, injected so tests control the clock
//
// Returns:
//   - *Reading: The normalized reading, never nil on success
//   - error: ErrMalformedPayload or ErrMissingPlantID (wrapped with detail)
func Normalize(topic string, payload []byte, now time.Time) (*Reading, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	r := &Reading{
		TempC:           lookupNumber(raw, "tempC"),
		AmbientHumidity: lookupNumber(raw, "ambientHumidity"),
		SoilHumidity:    lookupNumber(raw, "soilHumidity"),
		LightLux:        lookupNumber(raw, "lightLux"),
		PumpOn:          lookupBool(raw, "pumpOn"),
		MsgType:         MsgReading,
	}

	if s := lookupString(raw, "msgType"); s == string(MsgEvent) {
		r.MsgType = MsgEvent
	}

	r.PlantID = lookupString(raw, "plantId")
	if r.PlantID == "" {
		id, err := mqtt.ParsePlantID(topic)
		if err != nil {
			return nil, fmt.Errorf("%w: no payload field and topic %q", ErrMissingPlantID, topic)
		}
		r.PlantID = id
	}

	r.Timestamp, r.TimestampSubstituted = resolveTimestamp(raw, now)

	return r, nil
}

// resolveTimestamp applies the sanity floor to a payload timestamp.
// An absent timestamp is a normal condition (many nodes have no RTC), so it
// substitutes silently; an implausible one is flagged.
func resolveTimestamp(raw map[string]any, now time.Time) (time.Time, bool) {
	v := lookup(raw, "timestamp")
	if v == nil {
		return now, false
	}
	millis, ok := v.(float64)
	if !ok || millis <= timestampFloorMillis {
		return now, true
	}
	return time.UnixMilli(int64(millis)), false
}

// lookup resolves a canonical field through the alias table.
func lookup(raw map[string]any, canonical string) any {
	for _, name := range fieldAliases[canonical] {
		if v, ok := raw[name]; ok && v != nil {
			return v
		}
	}
	return nil
}

func lookupNumber(raw map[string]any, canonical string) *float64 {
	if v, ok := lookup(raw, canonical).(float64); ok {
		return &v
	}
	return nil
}

func lookupBool(raw map[string]any, canonical string) bool {
	switch v := lookup(raw, canonical).(type) {
	case bool:
		return v
	case float64:
		// Some firmware publishes pump state as 0/1.
		return v != 0
	default:
		return false
	}
}

func lookupString(raw map[string]any, canonical string) string {
	if v, ok := lookup(raw, canonical).(string); ok {
		return v
	}
	return ""
}
