package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vidvault/streaming-api/internal/core/domain"
	"github.com/vidvault/streaming-api/internal/core/ports"
)

// DeviceService implements device listing and removal with admin-or-owner
// access checks.
type DeviceService struct {
	devices ports.DeviceRepository
	cache   KnownDeviceCache
	logger  zerolog.Logger
}

func NewDeviceService(devices ports.DeviceRepository, cache KnownDeviceCache, logger zerolog.Logger) *DeviceService {
	return &DeviceService{devices: devices, cache: cache, logger: logger}
}

func (s *DeviceService) ListOwn(ctx context.Context, userID string) ([]ports.DeviceView, error) {
	devices, err := s.devices.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toViews(devices), nil
}

func (s *DeviceService) ListForUser(ctx context.Context, actor ports.Actor, targetUserID string) ([]ports.DeviceView, error) {
	if actor.Role != domain.RoleAdmin && actor.UserID != targetUserID {
		return nil, domain.ErrForbidden
	}

	devices, err := s.devices.ListByUser(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	return toViews(devices), nil
}

// Delete removes a device record, freeing one ceiling slot, and drops the
// pair from the known-device cache so a subsequent check sees the removal.
func (s *DeviceService) Delete(ctx context.Context, actor ports.Actor, deviceID string) error {
	device, err := s.devices.FindByID(ctx, deviceID)
	if err != nil {
		return err
	}

	if actor.Role != domain.RoleAdmin && device.UserID != actor.UserID {
		return domain.ErrForbidden
	}

	if err := s.devices.Delete(ctx, deviceID); err != nil {
		return err
	}
	if err := s.cache.Forget(ctx, device.UserID, device.Fingerprint); err != nil {
		s.logger.Warn().Err(err).Str("device_id", deviceID).Msg("failed to evict device cache entry")
	}

	s.logger.Info().Str("device_id", deviceID).Str("user_id", device.UserID).Msg("device deleted")
	return nil
}

func toViews(devices []*domain.Device) []ports.DeviceView {
	views := make([]ports.DeviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, ports.DeviceView{
			ID:          d.ID,
			Fingerprint: d.Fingerprint,
			DeviceInfo:  domain.ParseStoredDescriptor(d.RawDescriptor),
			LastActive:  d.LastActive,
			CreatedAt:   d.CreatedAt,
		})
	}
	return views
}
