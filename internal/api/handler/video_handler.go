package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vidvault/streaming-api/internal/core/domain"
	"github.com/vidvault/streaming-api/internal/core/ports"
)

// VideoHandler exposes bookmark management for hosted videos.
type VideoHandler struct {
	videos ports.VideoService
}

func NewVideoHandler(videos ports.VideoService) *VideoHandler {
	return &VideoHandler{videos: videos}
}

type videoRequest struct {
	VideoURL string `json:"videoUrl"`
	Title    string `json:"title,omitempty"`
}

type videoListResponse struct {
	Videos []*domain.Video `json:"videos"`
}

// Add handles POST /videos.
//
// @Summary      Bookmark a video
// @Tags         videos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      videoRequest  true  "Video URL and optional title"
// @Success      201   {object}  domain.Video
// @Failure      400   {object}  map[string]string
// @Router       /videos [post]
func (h *VideoHandler) Add(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req videoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	video, err := h.videos.Add(c.Request().Context(), actor.UserID, req.VideoURL, req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, video)
}

// List handles GET /videos. The catalogue is shared across all accounts.
//
// @Summary      List bookmarked videos
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  videoListResponse
// @Router       /videos [get]
func (h *VideoHandler) List(c echo.Context) error {
	if _, err := ctxActor(c); err != nil {
		return err
	}

	videos, err := h.videos.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, videoListResponse{Videos: videos})
}

// Get handles GET /videos/:id.
//
// @Summary      Fetch one video
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Video id"
// @Success      200  {object}  domain.Video
// @Failure      404  {object}  map[string]string
// @Router       /videos/{id} [get]
func (h *VideoHandler) Get(c echo.Context) error {
	if _, err := ctxActor(c); err != nil {
		return err
	}

	video, err := h.videos.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, video)
}

// Update handles PUT /videos/:id.
//
// @Summary      Update a video bookmark
// @Tags         videos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Video id"
// @Param        body  body      videoRequest  true  "New URL and optional title"
// @Success      200   {object}  domain.Video
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /videos/{id} [put]
func (h *VideoHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req videoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	video, err := h.videos.Update(c.Request().Context(), actor, c.Param("id"), req.VideoURL, req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, video)
}

// Delete handles DELETE /videos/:id. Only the owner's videos are visible to
// the delete path, so foreign ids come back as not found.
//
// @Summary      Delete a video bookmark
// @Tags         videos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Video id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /videos/{id} [delete]
func (h *VideoHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.videos.Delete(c.Request().Context(), actor.UserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Video deleted successfully"})
}
