package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/SteveElouga/waterbill-api/config"
	"github.com/SteveElouga/waterbill-api/services/auth"
	"github.com/SteveElouga/waterbill-api/services/logging"
	"github.com/SteveElouga/waterbill-api/services/users"
)

// AuthHandler exposes the unauthenticated account lifecycle endpoints:
// registration, activation, login and token refresh.
type AuthHandler struct {
	auth   *auth.Service
	config *config.Config
	logger *logging.Service
}

func NewAuthHandler(authService *auth.Service, cfg *config.Config, logger *logging.Service) *AuthHandler {
	return &AuthHandler{
		auth:   authService,
		config: cfg,
		logger: logger,
	}
}

type registerRequest struct {
	Phone         string `json:"phone"`
	Password      string `json:"password"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	ApartmentName string `json:"apartment_name"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	user, err := h.auth.Register(auth.RegisterInput{
		Phone:         req.Phone,
		Password:      req.Password,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Address:       req.Address,
		ApartmentName: req.ApartmentName,
	})
	if err != nil {
		return httpError(c, h.logger, err)
	}

	return created(c, "account created, an activation code has been sent by SMS", userPayload(user))
}

type activateRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (h *AuthHandler) Activate(c echo.Context) error {
	var req activateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Phone == "" || req.Code == "" {
		return fail(c, http.StatusBadRequest, "phone and code are required")
	}

	user, err := h.auth.ActivateAccount(req.Phone, req.Code)
	if err != nil {
		return httpError(c, h.logger, err)
	}

	return success(c, "account activated", userPayload(user))
}

type resendActivationRequest struct {
	Phone string `json:"phone"`
}

func (h *AuthHandler) ResendActivation(c echo.Context) error {
	var req resendActivationRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Phone == "" {
		return fail(c, http.StatusBadRequest, "phone is required")
	}

	if err := h.auth.ResendActivationCode(req.Phone); err != nil {
		return httpError(c, h.logger, err)
	}

	return success(c, "a new activation code has been sent", nil)
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Phone == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "phone and password are required")
	}

	user, pair, err := h.auth.Login(req.Phone, req.Password, c.Request().UserAgent())
	if err != nil {
		return httpError(c, h.logger, err)
	}

	return success(c, "login successful", map[string]any{
		"user":   userPayload(user),
		"tokens": pair,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.RefreshToken == "" {
		return fail(c, http.StatusBadRequest, "refresh_token is required")
	}

	pair, err := h.auth.Refresh(req.RefreshToken)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid or expired refresh token")
	}

	return success(c, "tokens refreshed", pair)
}

func userPayload(user *users.User) map[string]any {
	return map[string]any{
		"id":             user.ID,
		"phone":          user.Phone,
		"first_name":     user.FirstName,
		"last_name":      user.LastName,
		"email":          user.Email,
		"address":        user.Address,
		"apartment_name": user.ApartmentName,
		"is_active":      user.Active,
		"date_joined":    user.DateJoined,
		"last_login":     user.LastLogin,
	}
}
