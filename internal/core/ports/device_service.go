package ports

import (
	"context"
	"time"

	"github.com/vidvault/streaming-api/internal/core/domain"
)

// DeviceView is a device with its stored descriptor parsed back into
// structured form for display.
type DeviceView struct {
	ID          string            `json:"id"`
	Fingerprint string            `json:"fingerprint"`
	DeviceInfo  domain.Descriptor `json:"deviceInfo"`
	LastActive  time.Time         `json:"lastActive"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// Actor identifies the authenticated caller for ownership checks.
type Actor struct {
	UserID string
	Role   string
}

// DeviceService covers device listing and removal.
type DeviceService interface {
	// ListOwn returns the caller's devices, most recently active first.
	ListOwn(ctx context.Context, userID string) ([]DeviceView, error)
	// ListForUser is restricted to administrators and the account itself.
	ListForUser(ctx context.Context, actor Actor, targetUserID string) ([]DeviceView, error)
	// Delete is restricted to administrators and the device owner. Removing a
	// device frees one ceiling slot.
	Delete(ctx context.Context, actor Actor, deviceID string) error
}
