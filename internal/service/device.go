package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stage-cue/internal/domain"
	"stage-cue/internal/repository"

	"github.com/google/uuid"
)

// deviceService implements domain.DeviceService
type deviceService struct {
	repo repository.DeviceStore
	now  func() time.Time
}

// NewDeviceService creates a new DeviceService
func NewDeviceService(repo repository.DeviceStore) domain.DeviceService {
	return &deviceService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Connect registers a device for the signed-in user
func (s *deviceService) Connect(ctx context.Context, userID, name string, deviceType domain.DeviceType) (*domain.ConnectedDevice, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user ID cannot be empty", domain.ErrInvalidInput)
	}
	if !deviceType.Valid() {
		return nil, fmt.Errorf("%w: unknown device type %q", domain.ErrInvalidInput, deviceType)
	}

	id := uuid.New().String()
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Device-" + id[:8]
	}

	device := &domain.ConnectedDevice{
		ID:       id,
		Name:     name,
		Type:     deviceType,
		LastSeen: s.now(),
		UserID:   userID,
	}
	if err := s.repo.Upsert(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to connect device: %w", err)
	}
	return device, nil
}

// Heartbeat refreshes a device owned by userID. An id the store has never
// seen is registered to userID as a smartphone named after it.
func (s *deviceService) Heartbeat(ctx context.Context, userID, deviceID string) (*domain.ConnectedDevice, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("%w: device ID cannot be empty", domain.ErrInvalidInput)
	}

	now := s.now()
	device, err := s.repo.GetByID(ctx, deviceID)
	if errors.Is(err, domain.ErrNotFound) {
		fresh := &domain.ConnectedDevice{
			ID:       deviceID,
			Name:     "Device-" + deviceID,
			Type:     domain.DeviceSmartphone,
			LastSeen: now,
			UserID:   userID,
		}
		if err := s.repo.Upsert(ctx, fresh); err != nil {
			return nil, fmt.Errorf("failed to register device: %w", err)
		}
		return fresh, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	if err := checkOwner(device, userID); err != nil {
		return nil, err
	}

	if err := s.repo.Touch(ctx, deviceID, now); err != nil {
		return nil, fmt.Errorf("failed to refresh device: %w", err)
	}
	device.LastSeen = now
	return device, nil
}

// Disconnect removes a device owned by userID
func (s *deviceService) Disconnect(ctx context.Context, userID, deviceID string) error {
	device, err := s.repo.GetByID(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("failed to disconnect device: %w", err)
	}
	if err := checkOwner(device, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, deviceID); err != nil {
		return fmt.Errorf("failed to disconnect device: %w", err)
	}
	return nil
}

// List returns devices most recently seen first
func (s *deviceService) List(ctx context.Context) ([]domain.ConnectedDevice, error) {
	devices, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

func checkOwner(device *domain.ConnectedDevice, userID string) error {
	if device.UserID != userID {
		return fmt.Errorf("%w: device %s belongs to another user", domain.ErrPermissionDenied, device.ID)
	}
	return nil
}
