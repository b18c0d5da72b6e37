package device

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
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

// Registry provides plant profile management with caching and thread safety.
// It wraps a Repository and adds an in-memory cache for fast lookups.
//
// The telemetry pipeline resolves a profile for every incoming reading, so
// lookups must not hit SQLite on the hot path. The cache is populated on
// startup via RefreshCache() and kept in sync by the CRUD operations.
//
// All public methods are thread-safe.
type Registry struct {
	repo    Repository
	cache   map[string]*PlantDevice
	cacheMu sync.RWMutex
	logger  Logger
}

// NewRegistry creates a new plant profile registry.
// The repository is used for persistence; the registry adds caching.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*PlantDevice),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache reloads all profiles from the repository into the cache.
// This should be called on application startup.
func (r *Registry) RefreshCache(ctx context.Context) error {
	devices, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading devices: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]*PlantDevice, len(devices))
	for i := range devices {
		d := devices[i]
		r.cache[d.PlantID] = d.DeepCopy()
	}

	r.logger.Info("plant device cache refreshed", "count", len(devices))
	return nil
}

// GetDevice retrieves a profile by plant ID.
// Returns ErrDeviceNotFound if the profile does not exist.
// The returned device is a deep copy; callers can safely modify it.
func (r *Registry) GetDevice(ctx context.Context, plantID string) (*PlantDevice, error) {
	r.cacheMu.RLock()
	cached, ok := r.cache[plantID]
	r.cacheMu.RUnlock()

	if ok {
		return cached.DeepCopy(), nil
	}

	// Fall back to repository (might be a new profile not yet cached)
	d, err := r.repo.GetByID(ctx, plantID)
	if err != nil {
		return nil, err
	}

	r.cacheMu.Lock()
	r.cache[plantID] = d.DeepCopy()
	r.cacheMu.Unlock()

	return d, nil
}

// ListDevices retrieves all profiles.
// The returned devices are deep copies; callers can safely modify them.
func (r *Registry) ListDevices(ctx context.Context) ([]PlantDevice, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	if len(r.cache) > 0 {
		devices := make([]PlantDevice, 0, len(r.cache))
		for _, d := range r.cache {
			devices = append(devices, *d.DeepCopy())
		}
		return devices, nil
	}

	return r.repo.List(ctx)
}

// CreateDevice validates and persists a new profile, then caches it.
func (r *Registry) CreateDevice(ctx context.Context, d *PlantDevice) error {
	if err := Validate(d); err != nil {
		return err
	}

	if err := r.repo.Create(ctx, d); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[d.PlantID] = d.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("plant device created", "plant_id", d.PlantID, "name", d.Name)
	return nil
}

// UpdateDevice validates and persists changes to an existing profile.
func (r *Registry) UpdateDevice(ctx context.Context, d *PlantDevice) error {
	if err := Validate(d); err != nil {
		return err
	}

	if err := r.repo.Update(ctx, d); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[d.PlantID] = d.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("plant device updated", "plant_id", d.PlantID)
	return nil
}

// TouchLastData records the ingestion time of the latest reading for a plant.
// Called on the per-message hot path; unknown plants are a no-op.
func (r *Registry) TouchLastData(ctx context.Context, plantID string, at time.Time) error {
	if err := r.repo.TouchLastData(ctx, plantID, at); err != nil {
		return err
	}

	r.cacheMu.Lock()
	if cached, ok := r.cache[plantID]; ok {
		t := at
		cached.LastDataReceived = &t
	}
	r.cacheMu.Unlock()

	return nil
}

// DeviceCount returns the number of cached profiles.
func (r *Registry) DeviceCount() int {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return len(r.cache)
}

// DeleteDevice removes a profile from the repository and cache.
func (r *Registry) DeleteDevice(ctx context.Context, plantID string) error {
	if err := r.repo.Delete(ctx, plantID); err != nil {
		return err
	}

	r.cacheMu.Lock()
	delete(r.cache, plantID)
	r.cacheMu.Unlock()

	r.logger.Info("plant device deleted", "plant_id", plantID)
	return nil
}
