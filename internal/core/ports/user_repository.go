package ports

import (
	"context"

	"github.com/vidvault/streaming-api/internal/core/domain"
)

// UserRepository defines persistence for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// List returns all accounts ordered by creation time descending.
	List(ctx context.Context) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id, role string) (*domain.User, error)
	UpdateMaxDevices(ctx context.Context, id string, maxDevices int) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
