package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Device ceiling bounds enforced by management operations. Administrative
// accounts conventionally store UnlimitedSentinel, but enforcement keys off
// the role, never off the stored number.
const (
	MinDeviceCeiling     = 1
	MaxDeviceCeiling     = 10
	DefaultDeviceCeiling = 3
	UnlimitedSentinel    = 999
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("username already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrForbidden = errors.New("access denied")
var ErrSelfModification = errors.New("cannot modify own account")
var ErrInvalidCeiling = errors.New("max devices must be between 1 and 10")
var ErrInvalidRole = errors.New("invalid role")

// User models an authenticated account.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	MaxDevices   int        `json:"max_devices"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the account holds the administrative role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Expired reports whether the account's optional expiration has passed.
func (u *User) Expired(now time.Time) bool {
	return u.ExpiresAt != nil && u.ExpiresAt.Before(now)
}

// ValidRole reports whether role is one of the two recognised roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// ValidCeiling reports whether a configured device ceiling is acceptable.
func ValidCeiling(n int) bool {
	return n >= MinDeviceCeiling && n <= MaxDeviceCeiling
}

// Ceiling is the device limit applied to an account during admission.
// It is either bounded (standard accounts) or unlimited (administrative
// accounts), which removes any ambiguity between "configured large ceiling"
// and "role-exempt".
type Ceiling struct {
	limit     int
	unlimited bool
}

// BoundedCeiling returns a ceiling of n devices. Non-positive values fall
// back to the default.
func BoundedCeiling(n int) Ceiling {
	if n <= 0 {
		n = DefaultDeviceCeiling
	}
	return Ceiling{limit: n}
}

// UnlimitedCeiling returns the role-exempt ceiling used for administrators.
func UnlimitedCeiling() Ceiling {
	return Ceiling{unlimited: true}
}

// IsUnlimited reports whether admission must skip the device count entirely.
func (c Ceiling) IsUnlimited() bool {
	return c.unlimited
}

// Limit returns the bounded device count. Meaningless when IsUnlimited.
func (c Ceiling) Limit() int {
	return c.limit
}

// ReportedMax is the value shown to clients: the configured limit, or the
// unlimited sentinel for administrators.
func (c Ceiling) ReportedMax() int {
	if c.unlimited {
		return UnlimitedSentinel
	}
	return c.limit
}
