package alert

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for alert persistence.
type Repository interface {
	// Create appends a new alert. An empty ID is filled with a generated UUID.
	Create(ctx context.Context, a *PlantAlert) error

	// List retrieves alerts matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]PlantAlert, error)

	// MarkRead flags an alert as read.
	// Returns ErrAlertNotFound if the alert does not exist.
	MarkRead(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed alert repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create appends a new alert row.
func (r *SQLiteRepository) Create(ctx context.Context, a *PlantAlert) error {
	if a.PlantID == "" || a.Severity == "" {
		return fmt.Errorf("%w: plant id and severity are required", ErrInvalidAlert)
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO plant_alerts (id, plant_id, severity, message, metric, value, threshold, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.PlantID, a.Severity, a.Message, a.Metric, a.Value, a.Threshold,
		boolToInt(a.Read), a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting alert: %w", err)
	}
	return nil
}

// List retrieves alerts matching the filter, newest first.
func (r *SQLiteRepository) List(ctx context.Context, filter ListFilter) ([]PlantAlert, error) {
	query := `SELECT id, plant_id, severity, message, metric, value, threshold, read, created_at
		FROM plant_alerts`
	var args []interface{}
	var where []string

	if filter.PlantID != "" {
		where = append(where, "plant_id = ?")
		args = append(args, filter.PlantID)
	}
	if filter.UnreadOnly {
		where = append(where, "read = 0")
	}

	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	defer rows.Close()

	var alerts []PlantAlert
	for rows.Next() {
		var a PlantAlert
		var read int
		var createdAt string
		if err := rows.Scan(&a.ID, &a.PlantID, &a.Severity, &a.Message, &a.Metric,
			&a.Value, &a.Threshold, &read, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning alert row: %w", err)
		}
		a.Read = read != 0
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // Format is controlled
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alerts: %w", err)
	}
	return alerts, nil
}

// MarkRead flags an alert as read.
func (r *SQLiteRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE plant_alerts SET read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking alert read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
