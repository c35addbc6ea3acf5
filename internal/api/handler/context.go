package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vidvault/streaming-api/internal/core/ports"
)

// ctxActor extracts the identity injected by the Auth middleware and
// fast-fails before any service call: both values being present proves the
// middleware ran on this route.
func ctxActor(c echo.Context) (ports.Actor, error) {
	userID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if userID == "" || role == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return ports.Actor{UserID: userID, Role: role}, nil
}
