package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/vidvault/streaming-api/internal/core/ports"
)

// Auth validates the JWT, re-validates the account against the store, and
// injects the caller's identity into context. The store check means deleted
// or expired accounts are locked out immediately, even while their tokens
// are still structurally valid.
func Auth(jwtSecret string, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			userID, _ := claims["user_id"].(string)
			username, _ := claims["username"].(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			if err != nil || user.Username != username {
				return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
			}
			if user.Expired(time.Now().UTC()) {
				return echo.NewHTTPError(http.StatusUnauthorized, "account has expired")
			}

			// Role comes from the store, not the token, so role changes take
			// effect without waiting for token expiry.
			c.Set("user_id", user.ID)
			c.Set("username", user.Username)
			c.Set("role", user.Role)

			return next(c)
		}
	}
}
