package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrDeviceNotFound = errors.New("device not found")
var ErrDeviceExists = errors.New("device already registered")
var ErrInvalidDevice = errors.New("invalid device info")

// Device is one registered browser/client instance for an account.
// At most one record exists per (UserID, Fingerprint) pair; the repository
// enforces this with a unique index.
type Device struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Fingerprint   string    `json:"fingerprint"`
	RawDescriptor string    `json:"-"`
	LastActive    time.Time `json:"last_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// Descriptor is the set of client-reported device attributes. It is stored
// for display only; admission policy never reads anything but the
// fingerprint.
type Descriptor struct {
	UserAgent        string `json:"userAgent"`
	Platform         string `json:"platform"`
	ScreenResolution string `json:"screenResolution"`
	Timezone         string `json:"timezone"`
	Language         string `json:"language,omitempty"`
}

// Validate checks the required descriptor fields. Language is optional.
func (d Descriptor) Validate() error {
	if d.UserAgent == "" || d.Platform == "" || d.ScreenResolution == "" || d.Timezone == "" {
		return ErrInvalidDevice
	}
	return nil
}

// Encode serialises the descriptor for storage inside the device record.
func (d Descriptor) Encode() string {
	b, err := json.Marshal(d)
	if err != nil {
		return d.UserAgent
	}
	return string(b)
}

// ParseStoredDescriptor decodes a persisted descriptor blob. Legacy or
// garbled values fall back to a descriptor carrying the raw value as the
// user agent, so old records stay renderable.
func ParseStoredDescriptor(raw string) Descriptor {
	var d Descriptor
	if err := json.Unmarshal([]byte(raw), &d); err != nil || d.UserAgent == "" {
		return Descriptor{UserAgent: raw}
	}
	return d
}
