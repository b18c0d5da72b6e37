package telemetry

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCooldown() (*Cooldown, *fakeClock) {
	clock := newFakeClock()
	cd := NewCooldown(5 * time.Minute)
	cd.SetClock(clock.Now)
	return cd, clock
}

func TestCooldownFirstSendAllowed(t *testing.T) {
	cd, _ := newTestCooldown()

	if !cd.CanSend("planta1", ResultCritica) {
		t.Error("CanSend() = false for a key with no recorded send")
	}
}

func TestCooldownSuppressesWithinWindow(t *testing.T) {
	cd, clock := newTestCooldown()

	cd.RecordSend("planta1", ResultCritica)
	if cd.CanSend("planta1", ResultCritica) {
		t.Error("CanSend() = true immediately after RecordSend")
	}

	clock.Advance(4 * time.Minute)
	if cd.CanSend("planta1", ResultCritica) {
		t.Error("CanSend() = true inside the 5 minute window")
	}
}

func TestCooldownRecoversAfterWindow(t *testing.T) {
	cd, clock := newTestCooldown()

	cd.RecordSend("planta1", ResultCritica)
	clock.Advance(5 * time.Minute)

	if !cd.CanSend("planta1", ResultCritica) {
		t.Error("CanSend() = false after the full window elapsed")
	}
}

func TestCooldownKeysAreIndependent(t *testing.T) {
	cd, _ := newTestCooldown()

	cd.RecordSend("planta1", ResultCritica)

	if !cd.CanSend("planta2", ResultCritica) {
		t.Error("a send for planta1 should not suppress planta2")
	}
	if !cd.CanSend("planta1", ResultAlerta) {
		t.Error("a CRITICA send should not suppress ALERTA for the same plant")
	}
}

func TestCooldownRecordOverwrites(t *testing.T) {
	cd, clock := newTestCooldown()

	cd.RecordSend("planta1", ResultCritica)
	clock.Advance(5 * time.Minute)
	cd.RecordSend("planta1", ResultCritica)
	clock.Advance(4 * time.Minute)

	if cd.CanSend("planta1", ResultCritica) {
		t.Error("CanSend() = true; the second RecordSend should restart the window")
	}
}

func TestCooldownDefaultWindow(t *testing.T) {
	cd := NewCooldown(0)
	if cd.window != DefaultCooldownWindow {
		t.Errorf("window = %v, want %v", cd.window, DefaultCooldownWindow)
	}
}
