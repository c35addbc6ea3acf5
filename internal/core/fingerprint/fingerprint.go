// Package fingerprint derives stable device identities. A fingerprint is an
// opaque hex string; the admission policy compares fingerprints for equality
// and never inspects their structure.
package fingerprint

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vidvault/streaming-api/internal/core/domain"
)

// Derive computes the server-side fingerprint for a descriptor: the SHA-256
// hex digest of the user-agent string alone. Platform, resolution, timezone
// and language are deliberately excluded so the same browser keeps the same
// identity when screen size or timezone drifts.
func Derive(d domain.Descriptor) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(d.UserAgent))
	return hex.EncodeToString(sum[:]), nil
}

// GenerateRandom returns a fresh random fingerprint for first-time
// client-side generation. It is not derived from any descriptor.
func GenerateRandom() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate fingerprint: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
