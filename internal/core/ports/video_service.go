package ports

import (
	"context"

	"github.com/vidvault/streaming-api/internal/core/domain"
)

// VideoService covers bookmark management for hosted videos.
type VideoService interface {
	Add(ctx context.Context, userID, videoURL, title string) (*domain.Video, error)
	List(ctx context.Context) ([]*domain.Video, error)
	Get(ctx context.Context, id string) (*domain.Video, error)
	// Update is restricted to administrators and the video owner.
	Update(ctx context.Context, actor Actor, id, videoURL, title string) (*domain.Video, error)
	// Delete only sees the caller's own videos; anything else reads as absent.
	Delete(ctx context.Context, userID, id string) error
}
