package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidvault/streaming-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories shared by the service tests. They mirror the
// semantics of the Mongo implementations, including the unique index on
// (user_id, fingerprint).
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

type stubUserRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
	nextID int

	findErr error // if set, FindByID returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) add(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	clone := *u
	clone.ID = fmt.Sprintf("user_%d", r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	for _, existing := range r.byID {
		if existing.Username == u.Username {
			r.mu.Unlock()
			return nil, domain.ErrUserExists
		}
	}
	r.mu.Unlock()
	return r.add(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id, role string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) UpdateMaxDevices(_ context.Context, id string, maxDevices int) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.MaxDevices = maxDevices
	u.UpdatedAt = time.Now().UTC()
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

type stubDeviceRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Device
	nextID int

	// missNextLookup makes the next FindByUserAndFingerprint report not-found
	// even when the record exists, simulating a concurrent insert landing
	// between the lookup and the create.
	missNextLookup bool
	countErr       error
	lookups        int
}

func newStubDeviceRepo() *stubDeviceRepo {
	return &stubDeviceRepo{byID: make(map[string]*domain.Device)}
}

func (r *stubDeviceRepo) Create(_ context.Context, d *domain.Device) (*domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.UserID == d.UserID && existing.Fingerprint == d.Fingerprint {
			return nil, domain.ErrDeviceExists
		}
	}
	r.nextID++
	clone := *d
	clone.ID = fmt.Sprintf("device_%d", r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubDeviceRepo) FindByID(_ context.Context, id string) (*domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrDeviceNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDeviceRepo) FindByUserAndFingerprint(_ context.Context, userID, fingerprint string) (*domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	if r.missNextLookup {
		r.missNextLookup = false
		return nil, domain.ErrDeviceNotFound
	}
	for _, d := range r.byID {
		if d.UserID == userID && d.Fingerprint == fingerprint {
			clone := *d
			return &clone, nil
		}
	}
	return nil, domain.ErrDeviceNotFound
}

func (r *stubDeviceRepo) ListByUser(_ context.Context, userID string) ([]*domain.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Device
	for _, d := range r.byID {
		if d.UserID == userID {
			clone := *d
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActive.After(out[j].LastActive) })
	return out, nil
}

func (r *stubDeviceRepo) CountActiveSince(_ context.Context, userID string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	var n int64
	for _, d := range r.byID {
		if d.UserID == userID && !d.LastActive.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *stubDeviceRepo) UpdateLastActive(_ context.Context, id string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byID[id]
	if !ok {
		return domain.ErrDeviceNotFound
	}
	if ts.After(d.LastActive) {
		d.LastActive = ts
	}
	return nil
}

func (r *stubDeviceRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrDeviceNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubDeviceRepo) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, d := range r.byID {
		if d.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

// records returns all devices for an account, for assertions.
func (r *stubDeviceRepo) records(userID string) []*domain.Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Device
	for _, d := range r.byID {
		if d.UserID == userID {
			clone := *d
			out = append(out, &clone)
		}
	}
	return out
}

func (r *stubDeviceRepo) lookupCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookups
}

type stubVideoRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Video
	nextID int
}

func newStubVideoRepo() *stubVideoRepo {
	return &stubVideoRepo{byID: make(map[string]*domain.Video)}
}

func (r *stubVideoRepo) Create(_ context.Context, v *domain.Video) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	clone := *v
	clone.ID = fmt.Sprintf("video_%d", r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubVideoRepo) FindByID(_ context.Context, id string) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrVideoNotFound
	}
	clone := *v
	return &clone, nil
}

func (r *stubVideoRepo) FindByIDAndOwner(_ context.Context, id, userID string) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.byID[id]
	if !ok || v.UserID != userID {
		return nil, domain.ErrVideoNotFound
	}
	clone := *v
	return &clone, nil
}

func (r *stubVideoRepo) List(_ context.Context) ([]*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Video, 0, len(r.byID))
	for _, v := range r.byID {
		clone := *v
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubVideoRepo) Update(_ context.Context, v *domain.Video) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[v.ID]; !ok {
		return nil, domain.ErrVideoNotFound
	}
	clone := *v
	r.byID[v.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubVideoRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrVideoNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubVideoRepo) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.byID {
		if v.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

// stubCache is a map-backed KnownDeviceCache holding device records.
type stubCache struct {
	mu      sync.Mutex
	entries map[string]*domain.Device

	readErr error
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]*domain.Device)}
}

func (c *stubCache) key(userID, fp string) string { return userID + "|" + fp }

func (c *stubCache) Get(_ context.Context, userID, fp string) (*domain.Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return nil, c.readErr
	}
	d, ok := c.entries[c.key(userID, fp)]
	if !ok {
		return nil, nil
	}
	clone := *d
	return &clone, nil
}

func (c *stubCache) Put(_ context.Context, userID, fp string, d *domain.Device) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := *d
	c.entries[c.key(userID, fp)] = &clone
	return nil
}

func (c *stubCache) Forget(_ context.Context, userID, fp string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, c.key(userID, fp))
	return nil
}

func (c *stubCache) has(userID, fp string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[c.key(userID, fp)]
	return ok
}

// stubSink collects audit events synchronously.
type stubSink struct {
	mu     sync.Mutex
	events []domain.AdmissionEvent
}

func (s *stubSink) Record(e domain.AdmissionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *stubSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
