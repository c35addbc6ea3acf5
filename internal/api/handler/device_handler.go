package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vidvault/streaming-api/internal/core/domain"
	"github.com/vidvault/streaming-api/internal/core/fingerprint"
	"github.com/vidvault/streaming-api/internal/core/ports"
)

// FingerprintHeader carries the freshest, request-scoped client-computed
// fingerprint. It takes precedence over everything else for standard
// accounts; administrators ignore it.
const FingerprintHeader = "X-Device-Fingerprint"

// DeviceHandler is the request-time boundary of the admission subsystem: it
// gathers the fingerprint sources, applies the precedence rule, and renders
// the decision.
type DeviceHandler struct {
	admission ports.AdmissionService
	devices   ports.DeviceService
}

func NewDeviceHandler(admission ports.AdmissionService, devices ports.DeviceService) *DeviceHandler {
	return &DeviceHandler{admission: admission, devices: devices}
}

// --- Request / Response types ---

type descriptorRequest struct {
	UserAgent        string `json:"userAgent"`
	Platform         string `json:"platform"`
	ScreenResolution string `json:"screenResolution"`
	Timezone         string `json:"timezone"`
	Language         string `json:"language,omitempty"`
}

type checkDeviceRequest struct {
	DeviceInfo  descriptorRequest `json:"deviceInfo"`
	Fingerprint string            `json:"fingerprint,omitempty"`
}

type admittedDevice struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	LastActive  time.Time `json:"lastActive"`
	MaxDevices  int       `json:"maxDevices"`
	IsAdmin     bool      `json:"isAdmin"`
}

type checkDeviceResponse struct {
	Allowed bool           `json:"allowed"`
	Device  admittedDevice `json:"device"`
}

type deviceListResponse struct {
	Devices []ports.DeviceView `json:"devices"`
}

// Check handles POST /devices/check — the admission check.
//
// @Summary      Check whether this device may be used
// @Tags         devices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        X-Device-Fingerprint  header    string              false  "Client-computed fingerprint"
// @Param        body                  body      checkDeviceRequest  true   "Device descriptor and optional fingerprint"
// @Success      200  {object}  checkDeviceResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /devices/check [post]
func (h *DeviceHandler) Check(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req checkDeviceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid device info"})
	}

	descriptor := domain.Descriptor{
		UserAgent:        req.DeviceInfo.UserAgent,
		Platform:         req.DeviceInfo.Platform,
		ScreenResolution: req.DeviceInfo.ScreenResolution,
		Timezone:         req.DeviceInfo.Timezone,
		Language:         req.DeviceInfo.Language,
	}
	if err := descriptor.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid device info"})
	}

	fp, err := h.resolveFingerprint(c, actor, req, descriptor)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid device info"})
	}

	decision, err := h.admission.Check(c.Request().Context(), ports.CheckDeviceInput{
		UserID:      actor.UserID,
		Fingerprint: fp,
		Descriptor:  descriptor,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
		case errors.Is(err, domain.ErrInvalidDevice):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid device info"})
		}
		return err
	}

	if !decision.Allowed() {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": fmt.Sprintf("Device limit reached (%d). Cannot login on new device.", decision.Ceiling.Limit()),
		})
	}

	return c.JSON(http.StatusOK, checkDeviceResponse{
		Allowed: true,
		Device: admittedDevice{
			ID:          decision.Device.ID,
			Fingerprint: decision.Device.Fingerprint,
			LastActive:  decision.Device.LastActive,
			MaxDevices:  decision.Ceiling.ReportedMax(),
			IsAdmin:     decision.IsAdmin,
		},
	})
}

// resolveFingerprint applies the strict source precedence: header (standard
// accounts only), then body, then a hash derived from the descriptor.
func (h *DeviceHandler) resolveFingerprint(c echo.Context, actor ports.Actor, req checkDeviceRequest, descriptor domain.Descriptor) (string, error) {
	if actor.Role != domain.RoleAdmin {
		if fp := c.Request().Header.Get(FingerprintHeader); fp != "" {
			return fp, nil
		}
	}
	if req.Fingerprint != "" {
		return req.Fingerprint, nil
	}
	return fingerprint.Derive(descriptor)
}

// List handles GET /devices — the caller's devices, most recent first.
//
// @Summary      List own devices
// @Tags         devices
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  deviceListResponse
// @Failure      401  {object}  map[string]string
// @Router       /devices [get]
func (h *DeviceHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	views, err := h.devices.ListOwn(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deviceListResponse{Devices: views})
}

// ListForUser handles GET /devices/user/:userId — admin-or-self only.
//
// @Summary      List a user's devices
// @Tags         devices
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "Target user id"
// @Success      200     {object}  deviceListResponse
// @Failure      403     {object}  map[string]string
// @Router       /devices/user/{userId} [get]
func (h *DeviceHandler) ListForUser(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	views, err := h.devices.ListForUser(c.Request().Context(), actor, c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deviceListResponse{Devices: views})
}

// Delete handles DELETE /devices/:id — admin-or-owner only.
//
// @Summary      Delete a device
// @Tags         devices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /devices/{id} [delete]
func (h *DeviceHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	if err := h.devices.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Device deleted successfully"})
}
