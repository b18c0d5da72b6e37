package telemetry

import (
	"sync"
	"time"
)

// DefaultCooldownWindow is the minimum interval between repeated emails for
// the same (plant, severity) pair.
const DefaultCooldownWindow = 5 * time.Minute

type cooldownKey struct {
	plantID  string
	severity AdvisorResult
}

// Cooldown tracks the last email send per (plant, severity) to prevent
// notification storms. Entries are never deleted; the map is bounded by
// plant count times severity count.
//
// Thread Safety: all methods are safe for concurrent use.
type Cooldown struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	sends  map[cooldownKey]time.Time
}

// NewCooldown creates a tracker with the given window.
// A non-positive window falls back to DefaultCooldownWindow.
func NewCooldown(window time.Duration) *Cooldown {
	if window <= 0 {
		window = DefaultCooldownWindow
	}
	return &Cooldown{
		window: window,
		now:    time.Now,
		sends:  make(map[cooldownKey]time.Time),
	}
}

// SetClock overrides the tracker's time source. Test hook.
func (c *Cooldown) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// CanSend reports whether an email for the key may be attempted: true when
// no prior send is recorded, or the window has fully elapsed since it.
func (c *Cooldown) CanSend(plantID string, severity AdvisorResult) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	last, ok := c.sends[cooldownKey{plantID, severity}]
	if !ok {
		return true
	}
	return c.now().Sub(last) >= c.window
}

// RecordSend stores "now" for the key, overwriting any prior value.
//
// Called when a send attempt is issued, not when it succeeds. Recording on
// attempt keeps a failing transport from being hammered with the same alert.
func (c *Cooldown) RecordSend(plantID string, severity AdvisorResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends[cooldownKey{plantID, severity}] = c.now()
}
