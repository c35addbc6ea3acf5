package ports

import (
	"context"

	"github.com/vidvault/streaming-api/internal/core/domain"
)

// VideoRepository defines persistence for video bookmarks.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) (*domain.Video, error)
	FindByID(ctx context.Context, id string) (*domain.Video, error)
	// FindByIDAndOwner scopes the lookup to the owning account.
	FindByIDAndOwner(ctx context.Context, id, userID string) (*domain.Video, error)
	// List returns all videos ordered by creation time descending.
	List(ctx context.Context) ([]*domain.Video, error)
	Update(ctx context.Context, video *domain.Video) (*domain.Video, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// AuditRepository persists admission-decision audit events.
type AuditRepository interface {
	InsertAdmissionEvent(ctx context.Context, event *domain.AdmissionEvent) error
}
