package ports

import (
	"context"

	"github.com/vidvault/streaming-api/internal/core/domain"
)

// AuthService implements registration and credentials-based login.
type AuthService interface {
	// Register creates an account and returns it with a freshly issued token.
	Register(ctx context.Context, username, password, role string, maxDevices int) (*domain.User, string, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

// UserService covers administrative account management.
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, username, password, role string) (*domain.User, error)
	// ChangeRole rejects actors changing their own role, whatever the target value.
	ChangeRole(ctx context.Context, actorID, targetID, role string) (*domain.User, error)
	// ChangeMaxDevices enforces the [1, 10] ceiling bounds.
	ChangeMaxDevices(ctx context.Context, targetID string, maxDevices int) (*domain.User, error)
	// Delete rejects self-deletion and cascades to the account's devices and videos.
	Delete(ctx context.Context, actorID, targetID string) error
}
