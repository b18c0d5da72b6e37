package actuator

import (
	"encoding/json"
	"fmt"

	"github.com/verdano/plantcore/internal/infrastructure/mqtt"
)

// Command is a control instruction for a plant node.
type Command string

// Known commands.
const (
	// CommandRiego starts irrigation.
	CommandRiego Command = "RIEGO"

	// CommandLuz toggles the grow light.
	CommandLuz Command = "LUZ"

	// CommandStop halts any running actuation.
	CommandStop Command = "STOP"
)

// Valid reports whether the command is one of the known set.
func (c Command) Valid() bool {
	switch c {
	case CommandRiego, CommandLuz, CommandStop:
		return true
	default:
		return false
	}
}

// commandQoS is the delivery guarantee for actuation publishes.
// QoS 1 gives acknowledged at-least-once delivery; a duplicate RIEGO is
// harmless, a lost one is not.
const commandQoS = 1

// envelope is the wire format for command payloads.
type envelope struct {
	Cmd Command `json:"cmd"`
}

// Publisher is the broker surface the dispatcher needs.
// Satisfied by *mqtt.Client.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// Dispatcher publishes actuation commands to plant command topics.
type Dispatcher struct {
	broker Publisher
}

// NewDispatcher creates a command dispatcher over the given broker connection.
func NewDispatcher(broker Publisher) *Dispatcher {
	return &Dispatcher{broker: broker}
}

// SendCommand publishes a command to the plant's command topic.
//
// Preconditions: the broker connection must be established; otherwise
// ErrNotConnected is returned. The caller decides whether that is fatal —
// the telemetry pipeline logs it and continues.
//
// Returns:
//   - error: ErrInvalidCommand, ErrNotConnected, or a wrapped publish failure
func (d *Dispatcher) SendCommand(plantID string, cmd Command) error {
	if !cmd.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCommand, cmd)
	}
	if !d.broker.IsConnected() {
		return ErrNotConnected
	}

	payload, err := json.Marshal(envelope{Cmd: cmd})
	if err != nil {
		return fmt.Errorf("encoding command: %w", err)
	}

	topic := mqtt.Topics{}.PlantCommand(plantID)
	if err := d.broker.Publish(topic, payload, commandQoS, false); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}
