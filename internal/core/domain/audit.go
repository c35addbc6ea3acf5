package domain

import "time"

// AdmissionEvent is the audit-trail record of one admission decision.
// Events are persisted asynchronously and are never on the request path.
type AdmissionEvent struct {
	UserID      string    `json:"user_id"`
	Fingerprint string    `json:"fingerprint"`
	Outcome     string    `json:"outcome"`
	MaxDevices  int       `json:"max_devices"`
	At          time.Time `json:"at"`
}
