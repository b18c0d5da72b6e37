package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementReadings is the measurement name for plant telemetry.
const MeasurementReadings = "sensores_planta"

// WriteReading writes a normalized plant reading to InfluxDB.
//
// This is the primary method for recording telemetry. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Readings are tagged with plant_id and status_qc so out-of-range or
// errored samples can be filtered in queries without losing them.
//
// Parameters:
//   - plantID: Plant node identifier (e.g., "planta1")
//   - qcStatus: Quality control outcome for this reading
//   - fields: Metric values (temp_c, soil_humidity, ambient_humidity, light_lux, pump_on)
//   - timestamp: Time the reading was taken
//
// Example:
//
//	client.WriteReading("planta1", "VALID",
//	    map[string]interface{}{"temp_c": 21.5, "soil_humidity": 42.0},
//	    reading.Timestamp)
func (c *Client) WriteReading(plantID string, qcStatus string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() || len(fields) == 0 {
		return
	}

	point := write.NewPoint(
		MeasurementReadings,
		map[string]string{
			"plant_id":  plantID,
			"status_qc": qcStatus,
		},
		fields,
		timestamp,
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//   - timestamp: The exact time for this data point
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
