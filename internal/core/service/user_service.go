package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidvault/streaming-api/internal/core/domain"
	"github.com/vidvault/streaming-api/internal/core/ports"
)

// UserService implements administrative account management. Role gating is
// enforced by the RBAC middleware; the service only carries the self-
// modification rules that depend on the actor's identity.
type UserService struct {
	users   ports.UserRepository
	devices ports.DeviceRepository
	videos  ports.VideoRepository
	logger  zerolog.Logger
}

func NewUserService(users ports.UserRepository, devices ports.DeviceRepository, videos ports.VideoRepository, logger zerolog.Logger) *UserService {
	return &UserService{users: users, devices: devices, videos: videos, logger: logger}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Create(ctx context.Context, username, password, role string) (*domain.User, error) {
	if username == "" || len(password) < minPasswordLength {
		return nil, domain.ErrInvalidCredentials
	}
	if role == "" {
		role = domain.RoleUser
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		MaxDevices:   domain.DefaultDeviceCeiling,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("role", role).Msg("user created")
	return created, nil
}

// ChangeRole updates an account's role. Administrators may change other
// administrators, but never themselves, whatever the target value.
func (s *UserService) ChangeRole(ctx context.Context, actorID, targetID, role string) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	if actorID == targetID {
		return nil, domain.ErrSelfModification
	}
	return s.users.UpdateRole(ctx, targetID, role)
}

// ChangeMaxDevices updates an account's device ceiling within [1, 10].
func (s *UserService) ChangeMaxDevices(ctx context.Context, targetID string, maxDevices int) (*domain.User, error) {
	if !domain.ValidCeiling(maxDevices) {
		return nil, domain.ErrInvalidCeiling
	}
	return s.users.UpdateMaxDevices(ctx, targetID, maxDevices)
}

// Delete removes an account and cascades to its devices and videos.
// Self-deletion is rejected.
func (s *UserService) Delete(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return domain.ErrSelfModification
	}

	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return err
	}

	if err := s.devices.DeleteByUser(ctx, targetID); err != nil {
		return err
	}
	if err := s.videos.DeleteByUser(ctx, targetID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", targetID).Msg("user deleted")
	return nil
}
