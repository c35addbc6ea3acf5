package ports

import (
	"context"

	"github.com/vidvault/streaming-api/internal/core/domain"
)

// AdmissionOutcome is the decision path a single check took.
type AdmissionOutcome string

const (
	// OutcomeAdmittedExisting: fingerprint already registered, last_active refreshed.
	OutcomeAdmittedExisting AdmissionOutcome = "admitted_existing"
	// OutcomeAdmittedNew: fingerprint admitted and a device record created.
	OutcomeAdmittedNew AdmissionOutcome = "admitted_new"
	// OutcomeDeniedLimit: the account's active-device ceiling is full. A policy
	// result, not an error — no record is created.
	OutcomeDeniedLimit AdmissionOutcome = "denied_limit"
)

// CheckDeviceInput carries one admission check.
type CheckDeviceInput struct {
	UserID string
	// Fingerprint is the value resolved by the transport layer's precedence
	// rule (header, then body, then derived hash).
	Fingerprint string
	// Descriptor is stored on newly created device records for display.
	Descriptor domain.Descriptor
}

// Decision is the outcome of an admission check.
type Decision struct {
	Outcome AdmissionOutcome
	// Device is populated for both admitted outcomes; nil when denied.
	Device  *domain.Device
	Ceiling domain.Ceiling
	IsAdmin bool
}

// Allowed reports whether the device may proceed.
func (d *Decision) Allowed() bool {
	return d.Outcome != OutcomeDeniedLimit
}

// AdmissionService decides whether a device may be associated with an
// account for this request.
type AdmissionService interface {
	Check(ctx context.Context, input CheckDeviceInput) (*Decision, error)
}
