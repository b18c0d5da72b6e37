package device

import (
	"context"
	"errors"
	"testing"
	"time"
)

// ─── Mocks ───────────────────────────────────────────────────────────────────

// mockRepository implements Repository in memory and counts calls,
// so tests can assert the cache is actually used.
type mockRepository struct {
	devices    map[string]*PlantDevice
	getCalls   int
	listCalls  int
	failCreate error
}

func newMockRepository() *mockRepository {
	return &mockRepository{devices: make(map[string]*PlantDevice)}
}

func (m *mockRepository) GetByID(_ context.Context, plantID string) (*PlantDevice, error) {
	m.getCalls++
	d, ok := m.devices[plantID]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return d.DeepCopy(), nil
}

func (m *mockRepository) List(_ context.Context) ([]PlantDevice, error) {
	m.listCalls++
	var out []PlantDevice
	for _, d := range m.devices {
		out = append(out, *d.DeepCopy())
	}
	return out, nil
}

func (m *mockRepository) Create(_ context.Context, d *PlantDevice) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	if _, ok := m.devices[d.PlantID]; ok {
		return ErrDeviceExists
	}
	m.devices[d.PlantID] = d.DeepCopy()
	return nil
}

func (m *mockRepository) Update(_ context.Context, d *PlantDevice) error {
	if _, ok := m.devices[d.PlantID]; !ok {
		return ErrDeviceNotFound
	}
	m.devices[d.PlantID] = d.DeepCopy()
	return nil
}

func (m *mockRepository) Delete(_ context.Context, plantID string) error {
	if _, ok := m.devices[plantID]; !ok {
		return ErrDeviceNotFound
	}
	delete(m.devices, plantID)
	return nil
}

func (m *mockRepository) TouchLastData(_ context.Context, plantID string, at time.Time) error {
	if d, ok := m.devices[plantID]; ok {
		t := at
		d.LastDataReceived = &t
	}
	return nil
}

func testDevice(plantID string) *PlantDevice {
	return &PlantDevice{
		PlantID:    plantID,
		Name:       "Basil",
		Species:    "Ocimum basilicum",
		OwnerEmail: "owner@example.com",
		Active:     true,
		Thresholds: Thresholds{
			MinSoilHumidity: Bound(35),
			MaxTempC:        Bound(38),
		},
	}
}

// ─── Registry Tests ──────────────────────────────────────────────────────────

func TestRegistry_GetDevice_UsesCache(t *testing.T) {
	repo := newMockRepository()
	repo.devices["planta1"] = testDevice("planta1")

	reg := NewRegistry(repo)
	ctx := context.Background()

	if err := reg.RefreshCache(ctx); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}

	d, err := reg.GetDevice(ctx, "planta1")
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if d.PlantID != "planta1" {
		t.Errorf("PlantID = %q, want planta1", d.PlantID)
	}
	if repo.getCalls != 0 {
		t.Errorf("expected cached lookup, repo.GetByID called %d times", repo.getCalls)
	}
}

func TestRegistry_GetDevice_FallsBackToRepository(t *testing.T) {
	repo := newMockRepository()
	repo.devices["planta2"] = testDevice("planta2")

	reg := NewRegistry(repo)
	ctx := context.Background()

	// Cache never refreshed; lookup must hit the repository once, then cache.
	if _, err := reg.GetDevice(ctx, "planta2"); err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if _, err := reg.GetDevice(ctx, "planta2"); err != nil {
		t.Fatalf("second GetDevice() error = %v", err)
	}
	if repo.getCalls != 1 {
		t.Errorf("repo.GetByID called %d times, want 1", repo.getCalls)
	}
}

func TestRegistry_GetDevice_NotFound(t *testing.T) {
	reg := NewRegistry(newMockRepository())

	_, err := reg.GetDevice(context.Background(), "ghost")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("GetDevice() error = %v, want ErrDeviceNotFound", err)
	}
}

func TestRegistry_GetDevice_ReturnsCopy(t *testing.T) {
	repo := newMockRepository()
	repo.devices["planta1"] = testDevice("planta1")

	reg := NewRegistry(repo)
	ctx := context.Background()
	if err := reg.RefreshCache(ctx); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}

	first, _ := reg.GetDevice(ctx, "planta1")
	*first.Thresholds.MinSoilHumidity = 99
	first.Name = "mutated"

	second, _ := reg.GetDevice(ctx, "planta1")
	if second.Name == "mutated" {
		t.Error("cache entry was mutated through a returned copy")
	}
	if *second.Thresholds.MinSoilHumidity == 99 {
		t.Error("cached threshold pointer is shared with callers")
	}
}

func TestRegistry_CreateDevice(t *testing.T) {
	repo := newMockRepository()
	reg := NewRegistry(repo)
	ctx := context.Background()

	d := testDevice("planta3")
	if err := reg.CreateDevice(ctx, d); err != nil {
		t.Fatalf("CreateDevice() error = %v", err)
	}

	// Must be resolvable from cache without a repo lookup
	got, err := reg.GetDevice(ctx, "planta3")
	if err != nil {
		t.Fatalf("GetDevice() after create error = %v", err)
	}
	if got.Name != "Basil" {
		t.Errorf("Name = %q, want Basil", got.Name)
	}
	if repo.getCalls != 0 {
		t.Errorf("expected cached lookup after create, repo.GetByID called %d times", repo.getCalls)
	}
}

func TestRegistry_CreateDevice_Invalid(t *testing.T) {
	reg := NewRegistry(newMockRepository())

	tests := []struct {
		name    string
		device  *PlantDevice
		wantErr error
	}{
		{
			name:    "empty plant id",
			device:  &PlantDevice{},
			wantErr: ErrInvalidPlantID,
		},
		{
			name:    "plant id with topic separator",
			device:  &PlantDevice{PlantID: "a/b"},
			wantErr: ErrInvalidPlantID,
		},
		{
			name: "inverted bounds",
			device: &PlantDevice{
				PlantID: "planta1",
				Thresholds: Thresholds{
					MinTempC: Bound(40),
					MaxTempC: Bound(10),
				},
			},
			wantErr: ErrInvalidThresholds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.CreateDevice(context.Background(), tt.device)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateDevice() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_UpdateDevice(t *testing.T) {
	repo := newMockRepository()
	repo.devices["planta1"] = testDevice("planta1")

	reg := NewRegistry(repo)
	ctx := context.Background()
	if err := reg.RefreshCache(ctx); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}

	updated := testDevice("planta1")
	updated.Name = "Sweet Basil"
	if err := reg.UpdateDevice(ctx, updated); err != nil {
		t.Fatalf("UpdateDevice() error = %v", err)
	}

	got, _ := reg.GetDevice(ctx, "planta1")
	if got.Name != "Sweet Basil" {
		t.Errorf("Name after update = %q, want Sweet Basil", got.Name)
	}
}

func TestRegistry_DeleteDevice(t *testing.T) {
	repo := newMockRepository()
	repo.devices["planta1"] = testDevice("planta1")

	reg := NewRegistry(repo)
	ctx := context.Background()
	if err := reg.RefreshCache(ctx); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}

	if err := reg.DeleteDevice(ctx, "planta1"); err != nil {
		t.Fatalf("DeleteDevice() error = %v", err)
	}

	if _, err := reg.GetDevice(ctx, "planta1"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("GetDevice() after delete error = %v, want ErrDeviceNotFound", err)
	}
}

func TestRegistry_TouchLastData_UpdatesCache(t *testing.T) {
	repo := newMockRepository()
	repo.devices["planta1"] = testDevice("planta1")

	reg := NewRegistry(repo)
	ctx := context.Background()
	if err := reg.RefreshCache(ctx); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := reg.TouchLastData(ctx, "planta1", at); err != nil {
		t.Fatalf("TouchLastData() error = %v", err)
	}

	got, _ := reg.GetDevice(ctx, "planta1")
	if got.LastDataReceived == nil || !got.LastDataReceived.Equal(at) {
		t.Errorf("LastDataReceived = %v, want %v", got.LastDataReceived, at)
	}
}

func TestRegistry_ListDevices(t *testing.T) {
	repo := newMockRepository()
	repo.devices["planta1"] = testDevice("planta1")
	repo.devices["planta2"] = testDevice("planta2")

	reg := NewRegistry(repo)
	ctx := context.Background()
	if err := reg.RefreshCache(ctx); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}

	devices, err := reg.ListDevices(ctx)
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
	if len(devices) != 2 {
		t.Errorf("len(devices) = %d, want 2", len(devices))
	}
}
