package actuator

import (
	"errors"
	"testing"
)

// mockBroker captures publishes for assertion.
type mockBroker struct {
	connected bool
	published []publishCall
	failWith  error
}

type publishCall struct {
	topic   string
	payload string
	qos     byte
}

func (m *mockBroker) Publish(topic string, payload []byte, qos byte, _ bool) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.published = append(m.published, publishCall{topic: topic, payload: string(payload), qos: qos})
	return nil
}

func (m *mockBroker) IsConnected() bool {
	return m.connected
}

func TestSendCommand(t *testing.T) {
	broker := &mockBroker{connected: true}
	d := NewDispatcher(broker)

	if err := d.SendCommand("planta1", CommandRiego); err != nil {
		t.Fatalf("SendCommand() error = %v", err)
	}

	if len(broker.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(broker.published))
	}
	got := broker.published[0]
	if got.topic != "planta/planta1/command" {
		t.Errorf("topic = %q, want planta/planta1/command", got.topic)
	}
	if got.payload != `{"cmd":"RIEGO"}` {
		t.Errorf("payload = %s, want {\"cmd\":\"RIEGO\"}", got.payload)
	}
	if got.qos != 1 {
		t.Errorf("qos = %d, want 1", got.qos)
	}
}

func TestSendCommand_Disconnected(t *testing.T) {
	d := NewDispatcher(&mockBroker{connected: false})

	err := d.SendCommand("planta1", CommandRiego)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("SendCommand() error = %v, want ErrNotConnected", err)
	}
}

func TestSendCommand_InvalidCommand(t *testing.T) {
	d := NewDispatcher(&mockBroker{connected: true})

	err := d.SendCommand("planta1", Command("REBOOT"))
	if !errors.Is(err, ErrInvalidCommand) {
		t.Errorf("SendCommand() error = %v, want ErrInvalidCommand", err)
	}
}

func TestSendCommand_PublishFailure(t *testing.T) {
	broker := &mockBroker{connected: true, failWith: errors.New("broker timeout")}
	d := NewDispatcher(broker)

	err := d.SendCommand("planta1", CommandStop)
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("SendCommand() error = %v, want ErrPublishFailed", err)
	}
}

func TestCommandValid(t *testing.T) {
	tests := []struct {
		cmd  Command
		want bool
	}{
		{CommandRiego, true},
		{CommandLuz, true},
		{CommandStop, true},
		{Command(""), false},
		{Command("riego"), false},
	}

	for _, tt := range tests {
		if got := tt.cmd.Valid(); got != tt.want {
			t.Errorf("Command(%q).Valid() = %v, want %v", tt.cmd, got, tt.want)
		}
	}
}
