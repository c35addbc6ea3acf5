package domain

import (
	"errors"
	"regexp"
	"time"
)

var ErrVideoNotFound = errors.New("video not found")
var ErrVideoURLRequired = errors.New("video url is required")

// providerURLPattern matches hosted player links in the two published
// formats: https://abyss.to/e/{id} and https://abyss.to/v/{id}.
var providerURLPattern = regexp.MustCompile(`abyss\.to/(?:e|v)/([a-zA-Z0-9]+)`)

// Video is a bookmarked hosted video.
type Video struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	OwnerUsername   string    `json:"owner_username,omitempty"`
	ProviderVideoID string    `json:"provider_video_id"`
	EmbedURL        string    `json:"embed_url"`
	Title           string    `json:"title"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ExtractProviderVideoID pulls the provider's video id out of a player URL.
// When the URL does not match a known format the full URL itself is used as
// the identifier, so arbitrary embed links still round-trip.
func ExtractProviderVideoID(url string) string {
	if m := providerURLPattern.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return url
}
