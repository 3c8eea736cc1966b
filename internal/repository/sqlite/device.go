package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stage-cue/internal/domain"
)

// DeviceRepository implements repository.DeviceStore for SQLite
type DeviceRepository struct {
	db *DB
}

// NewDeviceRepository creates a new DeviceRepository
func NewDeviceRepository(db *DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Upsert inserts a device or replaces every field of an existing one
func (r *DeviceRepository) Upsert(ctx context.Context, device *domain.ConnectedDevice) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (id, name, type, last_seen, user_id) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			last_seen = excluded.last_seen,
			user_id = excluded.user_id`,
		device.ID,
		device.Name,
		string(device.Type),
		device.LastSeen,
		device.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert device: %w", err)
	}
	return nil
}

// GetByID retrieves a device
func (r *DeviceRepository) GetByID(ctx context.Context, id string) (*domain.ConnectedDevice, error) {
	var (
		device     domain.ConnectedDevice
		deviceType string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, type, last_seen, user_id FROM devices WHERE id = ?",
		id,
	).Scan(&device.ID, &device.Name, &deviceType, &device.LastSeen, &device.UserID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: device %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query device: %w", err)
	}
	device.Type = domain.DeviceType(deviceType)
	return &device, nil
}

// Touch refreshes a device's last-seen time
func (r *DeviceRepository) Touch(ctx context.Context, id string, seen time.Time) error {
	result, err := r.db.ExecContext(ctx, "UPDATE devices SET last_seen = ? WHERE id = ?", seen, id)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: device %s", domain.ErrNotFound, id)
	}
	return nil
}

// Delete removes a device
func (r *DeviceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: device %s", domain.ErrNotFound, id)
	}
	return nil
}

// List returns devices most recently seen first
func (r *DeviceRepository) List(ctx context.Context) ([]domain.ConnectedDevice, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, type, last_seen, user_id FROM devices ORDER BY last_seen DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	devices := []domain.ConnectedDevice{}
	for rows.Next() {
		var (
			device     domain.ConnectedDevice
			deviceType string
		)
		if err := rows.Scan(&device.ID, &device.Name, &deviceType, &device.LastSeen, &device.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		device.Type = domain.DeviceType(deviceType)
		devices = append(devices, device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating devices: %w", err)
	}
	return devices, nil
}
