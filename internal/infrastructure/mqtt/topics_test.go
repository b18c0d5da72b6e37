package mqtt

import (
	"errors"
	"testing"
)

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"readings", topics.PlantReadings("planta1"), "planta/planta1/lecturas"},
		{"data", topics.PlantData("planta1"), "planta/planta1/data"},
		{"status", topics.PlantStatus("planta1"), "planta/planta1/status"},
		{"command", topics.PlantCommand("planta1"), "planta/planta1/command"},
		{"all readings", topics.AllReadings(), "planta/+/lecturas"},
		{"all data", topics.AllData(), "planta/+/data"},
		{"all status", topics.AllStatus(), "planta/+/status"},
		{"system status", topics.SystemStatus(), "plantcore/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestParsePlantID(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		want    string
		wantErr bool
	}{
		{
			name:  "readings topic",
			topic: "planta/planta1/lecturas",
			want:  "planta1",
		},
		{
			name:  "command topic",
			topic: "planta/greenhouse-07/command",
			want:  "greenhouse-07",
		},
		{
			name:    "wrong prefix",
			topic:   "other/planta1/lecturas",
			wantErr: true,
		},
		{
			name:    "missing channel",
			topic:   "planta/planta1",
			wantErr: true,
		},
		{
			name:    "empty plant id",
			topic:   "planta//lecturas",
			wantErr: true,
		},
		{
			name:    "empty topic",
			topic:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePlantID(tt.topic)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePlantID(%q) expected error", tt.topic)
				}
				if !errors.Is(err, ErrInvalidTopic) {
					t.Errorf("error = %v, want ErrInvalidTopic", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePlantID(%q) error = %v", tt.topic, err)
			}
			if got != tt.want {
				t.Errorf("ParsePlantID(%q) = %q, want %q", tt.topic, got, tt.want)
			}
		})
	}
}

func TestPublishValidation(t *testing.T) {
	// A zero-value client is never connected; validation runs before any I/O.
	client := &Client{subscriptions: make(map[string]subscription)}

	if err := client.Publish("", []byte("x"), 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Publish("planta/p1/command", []byte("x"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("bad qos error = %v, want ErrInvalidQoS", err)
	}
	if err := client.Publish("planta/p1/command", []byte("x"), 1, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected error = %v, want ErrNotConnected", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	handler := func(topic string, payload []byte) error { return nil }

	if err := client.Subscribe("", 1, handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Subscribe("planta/+/lecturas", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler error = %v, want ErrSubscribeFailed", err)
	}
	if err := client.Subscribe("planta/+/lecturas", 1, handler); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected error = %v, want ErrNotConnected", err)
	}
	if client.SubscriptionCount() != 0 {
		t.Errorf("failed subscribes must not be tracked, count = %d", client.SubscriptionCount())
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}
