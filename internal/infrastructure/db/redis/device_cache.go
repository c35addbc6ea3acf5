package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vidvault/streaming-api/internal/core/domain"
)

const defaultCacheTTL = 15 * time.Minute

// DeviceCache keeps recently admitted device records so repeat admission
// checks skip the Mongo lookup. The last-active write is never cached away;
// callers refresh the store on every reconciliation and Put the updated
// record back. Key format: device:known:<user_id>:<fingerprint>
type DeviceCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeviceCache creates a DeviceCache wrapping the given Redis client.
// Zero or negative TTL falls back to the default.
func NewDeviceCache(client *redis.Client, ttl time.Duration) *DeviceCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &DeviceCache{client: client, ttl: ttl}
}

// cachedDevice is the stored form. The raw descriptor gets its own field
// because domain.Device excludes it from JSON.
type cachedDevice struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Fingerprint   string    `json:"fingerprint"`
	RawDescriptor string    `json:"device_info"`
	LastActive    time.Time `json:"last_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Get returns the cached record for the pair, or nil when absent. A garbled
// entry is dropped and reads as a miss.
func (c *DeviceCache) Get(ctx context.Context, userID, fingerprint string) (*domain.Device, error) {
	raw, err := c.client.Get(ctx, c.key(userID, fingerprint)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("device cache get: %w", err)
	}

	var cd cachedDevice
	if err := json.Unmarshal([]byte(raw), &cd); err != nil || cd.ID == "" {
		_ = c.client.Del(ctx, c.key(userID, fingerprint)).Err()
		return nil, nil
	}
	return &domain.Device{
		ID:            cd.ID,
		UserID:        cd.UserID,
		Fingerprint:   cd.Fingerprint,
		RawDescriptor: cd.RawDescriptor,
		LastActive:    cd.LastActive,
		CreatedAt:     cd.CreatedAt,
	}, nil
}

// Put stores the record for the pair with the configured TTL.
func (c *DeviceCache) Put(ctx context.Context, userID, fingerprint string, device *domain.Device) error {
	b, err := json.Marshal(cachedDevice{
		ID:            device.ID,
		UserID:        device.UserID,
		Fingerprint:   device.Fingerprint,
		RawDescriptor: device.RawDescriptor,
		LastActive:    device.LastActive,
		CreatedAt:     device.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("device cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(userID, fingerprint), b, c.ttl).Err()
}

// Forget drops the pair immediately. Called when a device is deleted, so a
// stale entry cannot resurrect the device on its next admission check.
func (c *DeviceCache) Forget(ctx context.Context, userID, fingerprint string) error {
	return c.client.Del(ctx, c.key(userID, fingerprint)).Err()
}

func (c *DeviceCache) key(userID, fingerprint string) string {
	return fmt.Sprintf("device:known:%s:%s", userID, fingerprint)
}
