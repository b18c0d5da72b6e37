package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/verdano/plantcore/internal/actuator"
	"github.com/verdano/plantcore/internal/alert"
	"github.com/verdano/plantcore/internal/device"
	"github.com/verdano/plantcore/internal/observability/metrics"
)

// Broadcast event types. The real-time envelope is
// {type, plantId, data, timestamp} with the data projection per type.
const (
	EventTelemetry = "TELEMETRY"
	EventPumpEvent = "PUMP_EVENT"
	EventAlert     = "ALERT"
)

// Logger defines the logging interface used by the pipeline.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// DeviceProfiles is the interface the pipeline needs from the device
// registry. Satisfied by *device.Registry.
type DeviceProfiles interface {
	GetDevice(ctx context.Context, plantID string) (*device.PlantDevice, error)
	TouchLastData(ctx context.Context, plantID string, at time.Time) error
}

// TimeSeriesWriter is the interface the pipeline needs from the time-series
// store. Writes are non-blocking; delivery errors surface through the
// client's own error channel. Satisfied by *influxdb.Client.
type TimeSeriesWriter interface {
	WriteReading(plantID string, qcStatus string, fields map[string]interface{}, timestamp time.Time)
}

// AlertWriter is the interface the pipeline needs from the alert store.
// Satisfied by *alert.SQLiteRepository.
type AlertWriter interface {
	Create(ctx context.Context, a *alert.PlantAlert) error
}

// Broadcaster is the interface the pipeline needs from the real-time
// fan-out channel. Satisfied by the API WebSocket hub.
type Broadcaster interface {
	Broadcast(payload []byte)
}

// CommandSender is the interface the pipeline needs from the actuation
// dispatcher. Satisfied by *actuator.Dispatcher.
type CommandSender interface {
	SendCommand(plantID string, cmd actuator.Command) error
}

// Mailer is the interface the pipeline needs from the email transport.
// Satisfied by *notify.Mailer.
type Mailer interface {
	SendAlert(to string, a *alert.PlantAlert) error
}

// Deps bundles the pipeline's collaborators. Any of TimeSeries, Alerts, Hub,
// Commands and Mailer may be nil; the corresponding side effect is skipped.
type Deps struct {
	Devices    DeviceProfiles
	TimeSeries TimeSeriesWriter
	Alerts     AlertWriter
	Hub        Broadcaster
	Commands   CommandSender
	Mailer     Mailer

	Advisor  *Advisor
	Cooldown *Cooldown
	Latest   *LatestCache

	// FallbackEmail and SenderEmail complete the notification target
	// resolution chain for plants with no owner address.
	FallbackEmail string
	SenderEmail   string
}

// Pipeline orchestrates the telemetry stages for one reading at a time.
//
// Side effects (time-series write, alert write, broadcast, actuation, email)
// are dispatched through a small task runner: each runs in its own goroutine
// with panic recovery, failures are logged, and no effect blocks or aborts
// another. Wait() drains in-flight tasks, used by shutdown and tests.
//
// Thread Safety: Process is safe for concurrent use; the broker client
// delivers messages on multiple goroutines.
type Pipeline struct {
	devices    DeviceProfiles
	timeSeries TimeSeriesWriter
	alerts     AlertWriter
	hub        Broadcaster
	commands   CommandSender
	mailer     Mailer

	advisor  *Advisor
	cooldown *Cooldown
	latest   *LatestCache

	fallbackEmail string
	senderEmail   string

	logger Logger
	wg     sync.WaitGroup
}

// NewPipeline creates a pipeline over the given collaborators.
// Nil Advisor, Cooldown or Latest entries get fresh zero-default instances.
func NewPipeline(deps Deps) *Pipeline {
	p := &Pipeline{
		devices:       deps.Devices,
		timeSeries:    deps.TimeSeries,
		alerts:        deps.Alerts,
		hub:           deps.Hub,
		commands:      deps.Commands,
		mailer:        deps.Mailer,
		advisor:       deps.Advisor,
		cooldown:      deps.Cooldown,
		latest:        deps.Latest,
		fallbackEmail: deps.FallbackEmail,
		senderEmail:   deps.SenderEmail,
		logger:        noopLogger{},
	}
	if p.advisor == nil {
		p.advisor = NewAdvisor(defaultThresholds())
	}
	if p.cooldown == nil {
		p.cooldown = NewCooldown(DefaultCooldownWindow)
	}
	if p.latest == nil {
		p.latest = NewLatestCache()
	}
	return p
}

// SetLogger sets the logger for the pipeline.
func (p *Pipeline) SetLogger(logger Logger) {
	p.logger = logger
}

// Latest exposes the latest-reading cache for the query path.
func (p *Pipeline) Latest() *LatestCache {
	return p.latest
}

// Wait blocks until all dispatched side-effect tasks have finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Process runs one normalized reading through QC, advisory evaluation and
// the side-effect fan-out. It never returns an error: every failure mode is
// logged and the next message is unaffected.
//
// EVENT messages bypass QC and advisory but are persisted, broadcast as
// PUMP_EVENT and cached. OUT_OF_RANGE readings are persisted and broadcast
// tagged with their QC status, but never cached or advised on.
func (p *Pipeline) Process(ctx context.Context, r *Reading) {
	ingest := time.Now()

	if r.TimestampSubstituted {
		p.logger.Warn("implausible timestamp replaced with ingestion time",
			"plant_id", r.PlantID)
	}

	if r.MsgType == MsgEvent {
		r.QcStatus = QcEvent
		metrics.IncReading(string(QcEvent))
		p.persist(r)
		p.broadcast(EventPumpEvent, r, pumpProjection{PumpOn: r.PumpOn})
		p.latest.Put(r)
		p.touch(r.PlantID, ingest)
		return
	}

	r.QcStatus = Check(r)
	metrics.IncReading(string(r.QcStatus))

	if r.QcStatus == QcOutOfRange {
		p.logger.Warn("reading out of range, skipping advisory",
			"plant_id", r.PlantID)
		// Viewers still see the reading, tagged with its QC status; it
		// never becomes the plant's latest snapshot.
		p.broadcast(EventTelemetry, r, telemetryView(r))
		p.persist(r)
		p.touch(r.PlantID, ingest)
		return
	}

	profile := p.profile(ctx, r.PlantID)
	if profile == nil || profile.Active {
		p.advise(r, profile, ingest)
	} else {
		// Deactivated plants are recorded but not alerted on.
		r.AdvisorResult = ResultInfo
	}

	p.broadcast(EventTelemetry, r, telemetryView(r))
	p.persist(r)
	p.latest.Put(r)
	p.touch(r.PlantID, ingest)
}

// advise evaluates the reading and fires the severity-specific side effects.
func (p *Pipeline) advise(r *Reading, profile *device.PlantDevice, ingest time.Time) {
	verdict := p.advisor.Evaluate(r, profile)
	r.AdvisorResult = verdict.Result

	switch verdict.Result {
	case ResultCritica:
		p.raiseAlert(r, profile, verdict, ingest)
		p.actuate(r.PlantID, actuator.CommandRiego)
	case ResultAlerta:
		p.raiseAlert(r, profile, verdict, ingest)
	case ResultRecomendacion:
		// Reserved tier: no ladder rule emits it yet.
	case ResultInfo:
	}
}

// raiseAlert persists the alert, broadcasts it and attempts a rate-limited
// email. Each effect runs independently.
//
// Alerts are stamped with ingestion time, not the reading's own timestamp:
// a device with a skewed clock must not reorder the alert history.
func (p *Pipeline) raiseAlert(r *Reading, profile *device.PlantDevice, v Verdict, ingest time.Time) {
	value := v.Value
	threshold := v.Threshold
	rec := &alert.PlantAlert{
		PlantID:   r.PlantID,
		Severity:  string(v.Result),
		Message:   v.Message,
		Metric:    v.Metric,
		Value:     &value,
		Threshold: &threshold,
		CreatedAt: ingest,
	}

	metrics.IncAlert(rec.Severity)

	if p.alerts != nil {
		p.dispatch("alert write", func() {
			if err := p.alerts.Create(context.Background(), rec); err != nil {
				p.logger.Error("alert write failed",
					"plant_id", rec.PlantID, "severity", rec.Severity, "error", err)
			}
		})
	}

	p.broadcast(EventAlert, r, alertProjection{
		Severity: rec.Severity,
		Message:  rec.Message,
		Metric:   rec.Metric,
		Value:    v.Value,
	})

	p.email(profile, rec, v.Result)
}

// actuate dispatches an actuation command, logging failure and continuing.
func (p *Pipeline) actuate(plantID string, cmd actuator.Command) {
	if p.commands == nil {
		return
	}
	p.dispatch("actuation", func() {
		if err := p.commands.SendCommand(plantID, cmd); err != nil {
			metrics.IncCommand(string(cmd), metrics.CommandFailed)
			p.logger.Error("actuation command failed",
				"plant_id", plantID, "command", cmd, "error", err)
			return
		}
		metrics.IncCommand(string(cmd), metrics.CommandOK)
		p.logger.Info("actuation command sent", "plant_id", plantID, "command", cmd)
	})
}

// email attempts a cooled-down notification. The cooldown is recorded when
// the attempt is issued, not when the transport succeeds.
func (p *Pipeline) email(profile *device.PlantDevice, rec *alert.PlantAlert, severity AdvisorResult) {
	if p.mailer == nil {
		return
	}
	if !p.cooldown.CanSend(rec.PlantID, severity) {
		metrics.IncEmail(metrics.EmailSuppressed)
		p.logger.Debug("alert email suppressed by cooldown",
			"plant_id", rec.PlantID, "severity", severity)
		return
	}
	p.cooldown.RecordSend(rec.PlantID, severity)

	to := ResolveRecipient(profile, p.fallbackEmail, p.senderEmail)
	if to == "" {
		p.logger.Warn("no notification address configured, skipping email",
			"plant_id", rec.PlantID)
		return
	}

	p.dispatch("alert email", func() {
		if err := p.mailer.SendAlert(to, rec); err != nil {
			metrics.IncEmail(metrics.EmailFailed)
			p.logger.Error("alert email failed",
				"plant_id", rec.PlantID, "to", to, "error", err)
			return
		}
		metrics.IncEmail(metrics.EmailSent)
	})
}

// persist writes the reading to the time-series store. The client batches
// internally, so this never blocks the message path.
func (p *Pipeline) persist(r *Reading) {
	if p.timeSeries == nil {
		return
	}
	p.timeSeries.WriteReading(r.PlantID, string(r.QcStatus), r.Fields(), r.Timestamp)
}

// broadcast sends a typed envelope to all connected viewers.
func (p *Pipeline) broadcast(eventType string, r *Reading, data any) {
	if p.hub == nil {
		return
	}
	payload, err := json.Marshal(broadcastEnvelope{
		Type:      eventType,
		PlantID:   r.PlantID,
		Data:      data,
		Timestamp: r.Timestamp,
	})
	if err != nil {
		p.logger.Error("broadcast encoding failed", "type", eventType, "error", err)
		return
	}
	metrics.IncBroadcast(eventType)
	p.dispatch("broadcast", func() {
		p.hub.Broadcast(payload)
	})
}

// touch updates the plant's last-data timestamp. Unknown plants no-op.
func (p *Pipeline) touch(plantID string, at time.Time) {
	if p.devices == nil {
		return
	}
	p.dispatch("device touch", func() {
		if err := p.devices.TouchLastData(context.Background(), plantID, at); err != nil {
			p.logger.Warn("device last-data update failed",
				"plant_id", plantID, "error", err)
		}
	})
}

// profile resolves the plant's threshold profile. Unknown plants return nil
// and are evaluated against the configured defaults.
func (p *Pipeline) profile(ctx context.Context, plantID string) *device.PlantDevice {
	if p.devices == nil {
		return nil
	}
	profile, err := p.devices.GetDevice(ctx, plantID)
	if err != nil {
		if !errors.Is(err, device.ErrDeviceNotFound) {
			p.logger.Warn("profile lookup failed", "plant_id", plantID, "error", err)
		}
		return nil
	}
	return profile
}

// dispatch runs a side effect on the task runner. Panics are recovered and
// logged so a misbehaving sink can never take down the ingestion loop.
func (p *Pipeline) dispatch(name string, fn func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				p.logger.Error("side-effect task panicked", "task", name, "panic", rec)
			}
		}()
		fn()
	}()
}

// broadcastEnvelope is the wire format pushed to WebSocket viewers.
type broadcastEnvelope struct {
	Type      string    `json:"type"`
	PlantID   string    `json:"plantId"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// telemetryProjection carries the four metrics, pump state and the QC tag.
type telemetryProjection struct {
	TempC           *float64 `json:"tempC,omitempty"`
	AmbientHumidity *float64 `json:"ambientHumidity,omitempty"`
	SoilHumidity    *float64 `json:"soilHumidity,omitempty"`
	LightLux        *float64 `json:"lightLux,omitempty"`
	PumpOn          bool     `json:"pumpOn"`
	QcStatus        string   `json:"qcStatus"`
}

// telemetryView projects the broadcastable subset of a reading.
func telemetryView(r *Reading) telemetryProjection {
	return telemetryProjection{
		TempC:           r.TempC,
		AmbientHumidity: r.AmbientHumidity,
		SoilHumidity:    r.SoilHumidity,
		LightLux:        r.LightLux,
		PumpOn:          r.PumpOn,
		QcStatus:        string(r.QcStatus),
	}
}

// pumpProjection carries pump state only.
type pumpProjection struct {
	PumpOn bool `json:"pumpOn"`
}

// alertProjection carries the alert summary.
type alertProjection struct {
	Severity string  `json:"severity"`
	Message  string  `json:"message"`
	Metric   string  `json:"metric"`
	Value    float64 `json:"value"`
}
