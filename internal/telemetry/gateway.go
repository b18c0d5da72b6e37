package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/verdano/plantcore/internal/infrastructure/mqtt"
	"github.com/verdano/plantcore/internal/observability/metrics"
)

// Subscriber is the broker surface the gateway needs.
// Satisfied by *mqtt.Client.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Gateway is the ingestion front door. It subscribes to the plant topic
// patterns, demuxes by channel and drives the pipeline for data messages.
// Status messages are logged only.
//
// A malformed payload is logged and dropped; the subscription stays up.
type Gateway struct {
	broker   Subscriber
	pipeline *Pipeline
	qos      byte
	logger   Logger
	now      func() time.Time
}

// NewGateway creates a gateway over the given broker connection and pipeline.
func NewGateway(broker Subscriber, pipeline *Pipeline, qos byte) *Gateway {
	return &Gateway{
		broker:   broker,
		pipeline: pipeline,
		qos:      qos,
		logger:   noopLogger{},
		now:      time.Now,
	}
}

// SetLogger sets the logger for the gateway.
func (g *Gateway) SetLogger(logger Logger) {
	g.logger = logger
}

// Start subscribes to the plant telemetry and status patterns.
// Call again after a fresh connection if the broker client does not restore
// subscriptions itself.
func (g *Gateway) Start() error {
	topics := mqtt.Topics{}

	for _, pattern := range []string{topics.AllReadings(), topics.AllData()} {
		if err := g.broker.Subscribe(pattern, g.qos, g.handleMessage); err != nil {
			return fmt.Errorf("subscribing %s: %w", pattern, err)
		}
	}
	if err := g.broker.Subscribe(topics.AllStatus(), g.qos, g.handleMessage); err != nil {
		return fmt.Errorf("subscribing %s: %w", topics.AllStatus(), err)
	}

	g.logger.Info("ingestion gateway subscribed",
		"patterns", []string{topics.AllReadings(), topics.AllData(), topics.AllStatus()})
	return nil
}

// handleMessage demuxes one inbound message by its topic channel.
// It never returns an error upward that would tear the subscription down;
// the returned error is for the broker client's handler logging only.
func (g *Gateway) handleMessage(topic string, payload []byte) error {
	switch {
	case strings.Contains(topic, "/status"):
		g.handleStatus(topic, payload)
		return nil
	case strings.Contains(topic, "/data"), strings.Contains(topic, "/lecturas"):
		return g.handleData(topic, payload)
	default:
		g.logger.Debug("unrecognized topic, dropping", "topic", topic)
		return nil
	}
}

// handleData normalizes the payload and runs it through the pipeline.
func (g *Gateway) handleData(topic string, payload []byte) error {
	reading, err := Normalize(topic, payload, g.now())
	if err != nil {
		metrics.IncParseError()
		g.logger.Warn("dropping unparseable payload",
			"topic", topic, "bytes", len(payload), "error", err)
		return err
	}

	g.pipeline.Process(context.Background(), reading)
	return nil
}

// handleStatus logs node availability transitions. Nothing else consumes
// status messages today.
func (g *Gateway) handleStatus(topic string, payload []byte) {
	plantID, err := mqtt.ParsePlantID(topic)
	if err != nil {
		g.logger.Debug("status on malformed topic", "topic", topic)
		return
	}
	g.logger.Info("plant node status", "plant_id", plantID, "status", string(payload))
}
