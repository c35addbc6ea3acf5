package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidvault/streaming-api/internal/core/domain"
	"github.com/vidvault/streaming-api/internal/core/ports"
)

// VideoService implements bookmark management for hosted videos.
type VideoService struct {
	repo   ports.VideoRepository
	logger zerolog.Logger
}

func NewVideoService(repo ports.VideoRepository, logger zerolog.Logger) *VideoService {
	return &VideoService{repo: repo, logger: logger}
}

func (s *VideoService) Add(ctx context.Context, userID, videoURL, title string) (*domain.Video, error) {
	if videoURL == "" {
		return nil, domain.ErrVideoURLRequired
	}

	now := time.Now().UTC()
	if title == "" {
		title = fmt.Sprintf("Video %d", now.UnixMilli())
	}

	video := &domain.Video{
		UserID:          userID,
		ProviderVideoID: domain.ExtractProviderVideoID(videoURL),
		EmbedURL:        videoURL,
		Title:           title,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.repo.Create(ctx, video)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("video_id", created.ID).Str("user_id", userID).Msg("video added")
	return created, nil
}

func (s *VideoService) List(ctx context.Context) ([]*domain.Video, error) {
	return s.repo.List(ctx)
}

func (s *VideoService) Get(ctx context.Context, id string) (*domain.Video, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *VideoService) Update(ctx context.Context, actor ports.Actor, id, videoURL, title string) (*domain.Video, error) {
	if videoURL == "" {
		return nil, domain.ErrVideoURLRequired
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role != domain.RoleAdmin && existing.UserID != actor.UserID {
		return nil, domain.ErrForbidden
	}

	existing.ProviderVideoID = domain.ExtractProviderVideoID(videoURL)
	existing.EmbedURL = videoURL
	if title != "" {
		existing.Title = title
	}
	existing.UpdatedAt = time.Now().UTC()

	return s.repo.Update(ctx, existing)
}

// Delete only sees the caller's own videos; someone else's video reads as
// absent rather than forbidden.
func (s *VideoService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.repo.FindByIDAndOwner(ctx, id, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("video_id", id).Str("user_id", userID).Msg("video deleted")
	return nil
}
