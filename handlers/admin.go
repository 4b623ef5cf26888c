package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	jwtmw "github.com/SteveElouga/waterbill-api/middleware/jwt"
	"github.com/SteveElouga/waterbill-api/services/logging"
	"github.com/SteveElouga/waterbill-api/services/users"
)

// AdminHandler manages the registration allowlist. All routes sit behind
// the staff gate.
type AdminHandler struct {
	allowlist *users.AllowlistService
	logger    *logging.Service
}

func NewAdminHandler(allowlist *users.AllowlistService, logger *logging.Service) *AdminHandler {
	return &AdminHandler{
		allowlist: allowlist,
		logger:    logger,
	}
}

func (h *AdminHandler) ListAllowlist(c echo.Context) error {
	entries, err := h.allowlist.List()
	if err != nil {
		return httpError(c, h.logger, err)
	}

	return success(c, "allowlist retrieved", entries)
}

type allowlistRequest struct {
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

func (h *AdminHandler) AuthorizePhone(c echo.Context) error {
	var req allowlistRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Phone == "" {
		return fail(c, http.StatusBadRequest, "phone is required")
	}

	adminID := jwtmw.GetUserID(c)
	entry, err := h.allowlist.Authorize(req.Phone, &adminID, req.Notes)
	if err != nil {
		return httpError(c, h.logger, err)
	}

	return created(c, "phone authorized for registration", entry)
}

func (h *AdminHandler) DeactivatePhone(c echo.Context) error {
	var req allowlistRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Phone == "" {
		return fail(c, http.StatusBadRequest, "phone is required")
	}

	if err := h.allowlist.Deactivate(req.Phone); err != nil {
		return httpError(c, h.logger, err)
	}

	return success(c, "phone authorization deactivated", nil)
}

func (h *AdminHandler) RemovePhone(c echo.Context) error {
	var req allowlistRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Phone == "" {
		return fail(c, http.StatusBadRequest, "phone is required")
	}

	if err := h.allowlist.Remove(req.Phone); err != nil {
		return httpError(c, h.logger, err)
	}

	return success(c, "phone removed from allowlist", nil)
}
