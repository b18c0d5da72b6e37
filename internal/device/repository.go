package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for plant profile persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a profile by plant ID.
	// Returns ErrDeviceNotFound if the profile does not exist.
	GetByID(ctx context.Context, plantID string) (*PlantDevice, error)

	// List retrieves all profiles ordered by plant ID.
	List(ctx context.Context) ([]PlantDevice, error)

	// Create inserts a new profile.
	// Returns ErrDeviceExists if the plant ID is already taken.
	Create(ctx context.Context, d *PlantDevice) error

	// Update modifies an existing profile.
	// Returns ErrDeviceNotFound if the profile does not exist.
	Update(ctx context.Context, d *PlantDevice) error

	// Delete removes a profile.
	// Returns ErrDeviceNotFound if the profile does not exist.
	Delete(ctx context.Context, plantID string) error

	// TouchLastData records the ingestion time of the latest reading.
	// Optimised for the per-message hot path; missing profiles are not an error.
	TouchLastData(ctx context.Context, plantID string, at time.Time) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection with the
// plant_devices migration applied.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const deviceColumns = `plant_id, name, species, owner_email, active,
	min_soil_humidity, max_soil_humidity,
	min_ambient_humidity, max_ambient_humidity,
	min_temp_c, max_temp_c,
	min_light_lux, max_light_lux,
	last_data_received, created_at, updated_at`

// GetByID retrieves a profile by plant ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, plantID string) (*PlantDevice, error) {
	query := `SELECT ` + deviceColumns + ` FROM plant_devices WHERE plant_id = ?`

	d, err := scanDevice(r.db.QueryRowContext(ctx, query, plantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by plant id: %w", err)
	}
	return d, nil
}

// List retrieves all profiles ordered by plant ID.
func (r *SQLiteRepository) List(ctx context.Context) ([]PlantDevice, error) {
	query := `SELECT ` + deviceColumns + ` FROM plant_devices ORDER BY plant_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	var devices []PlantDevice
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device row: %w", err)
		}
		devices = append(devices, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// Create inserts a new profile.
func (r *SQLiteRepository) Create(ctx context.Context, d *PlantDevice) error {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	query := `INSERT INTO plant_devices (` + deviceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		d.PlantID, d.Name, d.Species, d.OwnerEmail, boolToInt(d.Active),
		d.Thresholds.MinSoilHumidity, d.Thresholds.MaxSoilHumidity,
		d.Thresholds.MinAmbientHumidity, d.Thresholds.MaxAmbientHumidity,
		d.Thresholds.MinTempC, d.Thresholds.MaxTempC,
		d.Thresholds.MinLightLux, d.Thresholds.MaxLightLux,
		formatNullableTime(d.LastDataReceived),
		d.CreatedAt.Format(time.RFC3339), d.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDeviceExists
		}
		return fmt.Errorf("inserting device: %w", err)
	}
	return nil
}

// Update modifies an existing profile.
func (r *SQLiteRepository) Update(ctx context.Context, d *PlantDevice) error {
	d.UpdatedAt = time.Now().UTC()

	query := `UPDATE plant_devices SET
		name = ?, species = ?, owner_email = ?, active = ?,
		min_soil_humidity = ?, max_soil_humidity = ?,
		min_ambient_humidity = ?, max_ambient_humidity = ?,
		min_temp_c = ?, max_temp_c = ?,
		min_light_lux = ?, max_light_lux = ?,
		updated_at = ?
		WHERE plant_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		d.Name, d.Species, d.OwnerEmail, boolToInt(d.Active),
		d.Thresholds.MinSoilHumidity, d.Thresholds.MaxSoilHumidity,
		d.Thresholds.MinAmbientHumidity, d.Thresholds.MaxAmbientHumidity,
		d.Thresholds.MinTempC, d.Thresholds.MaxTempC,
		d.Thresholds.MinLightLux, d.Thresholds.MaxLightLux,
		d.UpdatedAt.Format(time.RFC3339),
		d.PlantID,
	)
	if err != nil {
		return fmt.Errorf("updating device: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// Delete removes a profile.
func (r *SQLiteRepository) Delete(ctx context.Context, plantID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM plant_devices WHERE plant_id = ?", plantID)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// TouchLastData records the ingestion time of the latest reading.
// A missing profile is silently ignored: readings from unknown plants are
// processed with defaults and there is no row to update.
func (r *SQLiteRepository) TouchLastData(ctx context.Context, plantID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE plant_devices SET last_data_received = ? WHERE plant_id = ?",
		at.UTC().Format(time.RFC3339), plantID,
	)
	if err != nil {
		return fmt.Errorf("touching last data received: %w", err)
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanDevice.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanDevice scans a plant_devices row into a PlantDevice.
func scanDevice(s scanner) (*PlantDevice, error) {
	var d PlantDevice
	var active int
	var lastData sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(
		&d.PlantID, &d.Name, &d.Species, &d.OwnerEmail, &active,
		&d.Thresholds.MinSoilHumidity, &d.Thresholds.MaxSoilHumidity,
		&d.Thresholds.MinAmbientHumidity, &d.Thresholds.MaxAmbientHumidity,
		&d.Thresholds.MinTempC, &d.Thresholds.MaxTempC,
		&d.Thresholds.MinLightLux, &d.Thresholds.MaxLightLux,
		&lastData, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Active = active != 0
	if lastData.Valid && lastData.String != "" {
		if t, err := time.Parse(time.RFC3339, lastData.String); err == nil {
			d.LastDataReceived = &t
		}
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is controlled

	return &d, nil
}

func formatNullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
