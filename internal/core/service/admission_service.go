package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidvault/streaming-api/internal/api/metrics"
	"github.com/vidvault/streaming-api/internal/core/domain"
	"github.com/vidvault/streaming-api/internal/core/ports"
)

// DefaultActiveWindow is the trailing window inside which a device counts
// against the ceiling. Devices idle longer age out of the count and stop
// occupying a slot without explicit deletion.
const DefaultActiveWindow = 7 * 24 * time.Hour

// KnownDeviceCache keeps recently admitted device records so repeat checks
// can skip the store lookup. Strictly a read-path optimisation: the
// last-active write still happens on every reconciliation, and a cold or
// failing cache only costs the extra read.
type KnownDeviceCache interface {
	// Get returns the cached record for the pair, or nil when absent.
	Get(ctx context.Context, userID, fingerprint string) (*domain.Device, error)
	Put(ctx context.Context, userID, fingerprint string, device *domain.Device) error
	Forget(ctx context.Context, userID, fingerprint string) error
}

// AuditSink receives admission decisions for asynchronous persistence.
type AuditSink interface {
	Record(event domain.AdmissionEvent)
}

// AdmissionService decides, per request, whether a device is admitted for
// an account. Each store step is a single independent call; the device
// store's uniqueness constraint on (user_id, fingerprint) stands in for any
// engine-level locking.
type AdmissionService struct {
	users        ports.UserRepository
	devices      ports.DeviceRepository
	cache        KnownDeviceCache
	audit        AuditSink
	activeWindow time.Duration
	log          zerolog.Logger
}

func NewAdmissionService(
	users ports.UserRepository,
	devices ports.DeviceRepository,
	cache KnownDeviceCache,
	audit AuditSink,
	activeWindow time.Duration,
	log zerolog.Logger,
) *AdmissionService {
	if activeWindow <= 0 {
		activeWindow = DefaultActiveWindow
	}
	return &AdmissionService{
		users:        users,
		devices:      devices,
		cache:        cache,
		audit:        audit,
		activeWindow: activeWindow,
		log:          log,
	}
}

// Check runs one admission decision.
func (s *AdmissionService) Check(ctx context.Context, in ports.CheckDeviceInput) (*ports.Decision, error) {
	// 1. An empty fingerprint means resolution failed upstream; nothing is
	// looked up for it.
	if in.Fingerprint == "" {
		return nil, domain.ErrInvalidDevice
	}

	// 2. Resolve the account's capability: role and configured ceiling.
	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	ceiling := ceilingFor(user)

	// 3. A returning fingerprint is always re-admitted, regardless of how
	// many other devices exist.
	dec, err := s.refreshExisting(ctx, user, in.Fingerprint, ceiling)
	if err != nil && !errors.Is(err, domain.ErrDeviceNotFound) {
		return nil, err
	}
	if dec != nil {
		return s.decided(user.ID, in.Fingerprint, dec), nil
	}

	// 4. New fingerprint: standard accounts must have a free slot inside the
	// activity window. Administrators skip the count entirely.
	if !ceiling.IsUnlimited() {
		since := time.Now().UTC().Add(-s.activeWindow)
		count, err := s.devices.CountActiveSince(ctx, user.ID, since)
		if err != nil {
			return nil, fmt.Errorf("count active devices: %w", err)
		}
		if count >= int64(ceiling.Limit()) {
			s.log.Info().
				Str("user_id", user.ID).
				Int("max_devices", ceiling.Limit()).
				Int64("active", count).
				Msg("device limit reached")
			return s.decided(user.ID, in.Fingerprint, &ports.Decision{
				Outcome: ports.OutcomeDeniedLimit,
				Ceiling: ceiling,
			}), nil
		}
	}

	// 5. Create the record. A duplicate-key rejection here means a
	// concurrent check won the insert race for the same pair; that is
	// equivalent to having found the device, so retry the refresh path
	// instead of surfacing an error.
	now := time.Now().UTC()
	created, err := s.devices.Create(ctx, &domain.Device{
		UserID:        user.ID,
		Fingerprint:   in.Fingerprint,
		RawDescriptor: in.Descriptor.Encode(),
		LastActive:    now,
		CreatedAt:     now,
	})
	if errors.Is(err, domain.ErrDeviceExists) {
		metrics.AdmissionConflictRetriesTotal.Inc()
		dec, err := s.refreshExisting(ctx, user, in.Fingerprint, ceiling)
		if err != nil {
			return nil, fmt.Errorf("recover duplicate device: %w", err)
		}
		return s.decided(user.ID, in.Fingerprint, dec), nil
	}
	if err != nil {
		return nil, fmt.Errorf("create device: %w", err)
	}

	if err := s.cache.Put(ctx, user.ID, in.Fingerprint, created); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("device cache write failed")
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("device_id", created.ID).
		Bool("admin", user.IsAdmin()).
		Msg("new device admitted")

	return s.decided(user.ID, in.Fingerprint, &ports.Decision{
		Outcome: ports.OutcomeAdmittedNew,
		Device:  created,
		Ceiling: ceiling,
		IsAdmin: user.IsAdmin(),
	}), nil
}

// refreshExisting resolves the pair's record, from the cache when possible,
// and refreshes its last-active timestamp. Every reconciliation writes the
// timestamp; only the lookup is ever skipped. ErrDeviceNotFound when the
// fingerprint is new for this account.
func (s *AdmissionService) refreshExisting(ctx context.Context, user *domain.User, fp string, ceiling domain.Ceiling) (*ports.Decision, error) {
	device, cacheErr := s.cache.Get(ctx, user.ID, fp)
	if cacheErr != nil {
		s.log.Warn().Err(cacheErr).Str("user_id", user.ID).Msg("device cache read failed, falling back to store")
		device = nil
	}
	if device != nil {
		metrics.DeviceCacheTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.DeviceCacheTotal.WithLabelValues("miss").Inc()
		var err error
		device, err = s.devices.FindByUserAndFingerprint(ctx, user.ID, fp)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	if err := s.devices.UpdateLastActive(ctx, device.ID, now); err != nil {
		if errors.Is(err, domain.ErrDeviceNotFound) {
			// The cache outlived the record, typically a deleted device.
			// Drop the stale entry and report the pair as new.
			if ferr := s.cache.Forget(ctx, user.ID, fp); ferr != nil {
				s.log.Warn().Err(ferr).Str("user_id", user.ID).Msg("failed to drop stale device cache entry")
			}
			return nil, domain.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("refresh last active: %w", err)
	}
	device.LastActive = now
	if err := s.cache.Put(ctx, user.ID, fp, device); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("device cache write failed")
	}

	return &ports.Decision{
		Outcome: ports.OutcomeAdmittedExisting,
		Device:  device,
		Ceiling: ceiling,
		IsAdmin: user.IsAdmin(),
	}, nil
}

// decided records the decision in metrics and the async audit trail.
func (s *AdmissionService) decided(userID, fp string, dec *ports.Decision) *ports.Decision {
	metrics.AdmissionDecisionsTotal.WithLabelValues(string(dec.Outcome)).Inc()

	s.audit.Record(domain.AdmissionEvent{
		UserID:      userID,
		Fingerprint: fp,
		Outcome:     string(dec.Outcome),
		MaxDevices:  dec.Ceiling.ReportedMax(),
		At:          time.Now().UTC(),
	})

	return dec
}

// ceilingFor selects the account's ceiling by role. The stored MaxDevices
// number is irrelevant for administrators.
func ceilingFor(user *domain.User) domain.Ceiling {
	if user.IsAdmin() {
		return domain.UnlimitedCeiling()
	}
	return domain.BoundedCeiling(user.MaxDevices)
}
