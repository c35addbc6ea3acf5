package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vidvault/streaming-api/internal/core/domain"
	"github.com/vidvault/streaming-api/internal/core/ports"
)

// UserHandler covers the administrative account-management endpoints.
// Routes are additionally guarded by the admin RBAC middleware.
type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type changeMaxDevicesRequest struct {
	MaxDevices int `json:"maxDevices" validate:"required"`
}

// List returns all accounts, newest first.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string][]*domain.User
// @Failure      403  {object}  map[string]string
// @Router       /auth/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string][]*domain.User{"users": users})
}

// Create adds an account on behalf of an administrator.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Account details"
// @Success      201   {object}  map[string]*domain.User
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, err := h.userService.Create(c.Request().Context(), req.Username, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]*domain.User{"user": user})
}

// ChangeRole updates another account's role.
//
// @Summary      Change a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string             true  "Target user id"
// @Param        body    body      changeRoleRequest  true  "New role"
// @Success      200     {object}  map[string]*domain.User
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /auth/users/{userId}/role [put]
func (h *UserHandler) ChangeRole(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req changeRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	user, err := h.userService.ChangeRole(c.Request().Context(), actor.UserID, c.Param("userId"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]*domain.User{"user": user})
}

// ChangeMaxDevices updates an account's device ceiling.
//
// @Summary      Change a user's device ceiling
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string                   true  "Target user id"
// @Param        body    body      changeMaxDevicesRequest  true  "New ceiling"
// @Success      200     {object}  map[string]*domain.User
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /auth/users/{userId}/maxDevices [put]
func (h *UserHandler) ChangeMaxDevices(c echo.Context) error {
	var req changeMaxDevicesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	user, err := h.userService.ChangeMaxDevices(c.Request().Context(), c.Param("userId"), req.MaxDevices)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]*domain.User{"user": user})
}

// Delete removes an account and everything it owns.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "Target user id"
// @Success      200     {object}  map[string]string
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /auth/users/{userId} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.userService.Delete(c.Request().Context(), actor.UserID, c.Param("userId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
