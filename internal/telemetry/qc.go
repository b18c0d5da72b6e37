package telemetry

// Physical plausibility bounds for quality control. These are not advisory
// thresholds: a value outside these ranges is a sensor fault, not a plant
// condition.
const (
	qcMinTempC    = -50.0
	qcMaxTempC    = 80.0
	qcMinHumidity = 0.0
	qcMaxHumidity = 100.0
	qcMinLightLux = 0.0
	qcMaxLightLux = 100000.0
)

// Check classifies a reading by range validation.
//
// Pure function: it inspects the reading's metrics and returns the status
// without mutating anything. Absent metrics pass trivially. EVENT messages
// skip QC entirely and are tagged EVENT.
func Check(r *Reading) QcStatus {
	if r.MsgType == MsgEvent {
		return QcEvent
	}

	if outOfRange(r.TempC, qcMinTempC, qcMaxTempC) {
		return QcOutOfRange
	}
	if outOfRange(r.AmbientHumidity, qcMinHumidity, qcMaxHumidity) {
		return QcOutOfRange
	}
	if outOfRange(r.SoilHumidity, qcMinHumidity, qcMaxHumidity) {
		return QcOutOfRange
	}
	if outOfRange(r.LightLux, qcMinLightLux, qcMaxLightLux) {
		return QcOutOfRange
	}

	return QcValid
}

func outOfRange(v *float64, min, max float64) bool {
	return v != nil && (*v < min || *v > max)
}
