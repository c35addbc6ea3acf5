package ports

import (
	"context"
	"time"

	"github.com/vidvault/streaming-api/internal/core/domain"
)

// DeviceRepository defines persistence for device records.
//
// The store must enforce uniqueness of (user_id, fingerprint) as a hard
// constraint: Create returns domain.ErrDeviceExists when a concurrent or
// earlier insert already claimed the pair. The admission service relies on
// that guarantee instead of holding any lock across calls.
type DeviceRepository interface {
	Create(ctx context.Context, device *domain.Device) (*domain.Device, error)
	FindByID(ctx context.Context, id string) (*domain.Device, error)
	FindByUserAndFingerprint(ctx context.Context, userID, fingerprint string) (*domain.Device, error)
	// ListByUser returns the account's devices ordered by last_active descending.
	ListByUser(ctx context.Context, userID string) ([]*domain.Device, error)
	// CountActiveSince counts the account's devices whose last_active is at or
	// after the given instant. Devices idle longer do not occupy a ceiling slot.
	CountActiveSince(ctx context.Context, userID string, since time.Time) (int64, error)
	UpdateLastActive(ctx context.Context, id string, ts time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}
