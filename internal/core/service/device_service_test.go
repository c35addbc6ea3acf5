package service

import (
	"context"
	"testing"
	"time"

	"github.com/vidvault/streaming-api/internal/core/domain"
	"github.com/vidvault/streaming-api/internal/core/ports"
)

func newDeviceFixture() (*stubDeviceRepo, *stubCache, *DeviceService) {
	devices := newStubDeviceRepo()
	cache := newStubCache()
	return devices, cache, NewDeviceService(devices, cache, discardLogger)
}

func seedDevice(devices *stubDeviceRepo, userID, fp string, lastActive time.Time) *domain.Device {
	d, _ := devices.Create(context.Background(), &domain.Device{
		UserID:        userID,
		Fingerprint:   fp,
		RawDescriptor: domain.Descriptor{UserAgent: "ua-" + fp, Platform: "Linux", ScreenResolution: "1x1", Timezone: "UTC"}.Encode(),
		LastActive:    lastActive,
		CreatedAt:     lastActive,
	})
	return d
}

func TestDeviceService_ListOwn_OrderedAndParsed(t *testing.T) {
	devices, _, svc := newDeviceFixture()
	now := time.Now().UTC()
	seedDevice(devices, "user_1", "old", now.Add(-time.Hour))
	seedDevice(devices, "user_1", "new", now)
	seedDevice(devices, "user_2", "other", now)

	views, err := svc.ListOwn(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(views))
	}
	if views[0].Fingerprint != "new" || views[1].Fingerprint != "old" {
		t.Errorf("devices not ordered by last_active desc: %s, %s", views[0].Fingerprint, views[1].Fingerprint)
	}
	if views[0].DeviceInfo.UserAgent != "ua-new" {
		t.Errorf("descriptor not parsed: %+v", views[0].DeviceInfo)
	}
}

func TestDeviceService_ListOwn_LegacyDescriptorFallback(t *testing.T) {
	devices, _, svc := newDeviceFixture()
	now := time.Now().UTC()
	_, _ = devices.Create(context.Background(), &domain.Device{
		UserID:        "user_1",
		Fingerprint:   "legacy",
		RawDescriptor: "Mozilla/4.0 (compatible; MSIE 6.0)",
		LastActive:    now,
		CreatedAt:     now,
	})

	views, err := svc.ListOwn(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if views[0].DeviceInfo.UserAgent != "Mozilla/4.0 (compatible; MSIE 6.0)" {
		t.Errorf("raw blob must fall back to user agent, got %+v", views[0].DeviceInfo)
	}
}

func TestDeviceService_ListForUser_AdminOrSelfOnly(t *testing.T) {
	devices, _, svc := newDeviceFixture()
	seedDevice(devices, "user_1", "fp", time.Now().UTC())

	if _, err := svc.ListForUser(context.Background(), ports.Actor{UserID: "user_2", Role: domain.RoleUser}, "user_1"); err != domain.ErrForbidden {
		t.Errorf("expected ErrForbidden for stranger, got %v", err)
	}
	if _, err := svc.ListForUser(context.Background(), ports.Actor{UserID: "user_1", Role: domain.RoleUser}, "user_1"); err != nil {
		t.Errorf("self must be allowed: %v", err)
	}
	if _, err := svc.ListForUser(context.Background(), ports.Actor{UserID: "user_2", Role: domain.RoleAdmin}, "user_1"); err != nil {
		t.Errorf("admin must be allowed: %v", err)
	}
}

func TestDeviceService_Delete_OwnerAndAdminAllowed(t *testing.T) {
	devices, cache, svc := newDeviceFixture()
	owned := seedDevice(devices, "user_1", "fp-own", time.Now().UTC())
	_ = cache.Put(context.Background(), "user_1", "fp-own", owned)

	if err := svc.Delete(context.Background(), ports.Actor{UserID: "user_1", Role: domain.RoleUser}, owned.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if cache.has("user_1", "fp-own") {
		t.Error("cache entry must be evicted on delete")
	}

	other := seedDevice(devices, "user_2", "fp-other", time.Now().UTC())
	if err := svc.Delete(context.Background(), ports.Actor{UserID: "user_9", Role: domain.RoleAdmin}, other.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
}

func TestDeviceService_Delete_StrangerForbidden(t *testing.T) {
	devices, _, svc := newDeviceFixture()
	d := seedDevice(devices, "user_1", "fp", time.Now().UTC())

	if err := svc.Delete(context.Background(), ports.Actor{UserID: "user_2", Role: domain.RoleUser}, d.ID); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := devices.FindByID(context.Background(), d.ID); err != nil {
		t.Error("device must survive a forbidden delete")
	}
}

func TestDeviceService_Delete_Unknown(t *testing.T) {
	_, _, svc := newDeviceFixture()

	if err := svc.Delete(context.Background(), ports.Actor{UserID: "user_1", Role: domain.RoleAdmin}, "device_404"); err != domain.ErrDeviceNotFound {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
}
