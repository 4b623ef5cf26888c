package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	jwtmw "github.com/SteveElouga/waterbill-api/middleware/jwt"
	"github.com/SteveElouga/waterbill-api/services/auth"
	"github.com/SteveElouga/waterbill-api/services/logging"
	"github.com/SteveElouga/waterbill-api/services/verification"
)

// VerificationHandler exposes the SMS-verified credential flows: password
// reset, password change, phone change and code resends for their tokens.
type VerificationHandler struct {
	auth   *auth.Service
	logger *logging.Service
}

func NewVerificationHandler(authService *auth.Service, logger *logging.Service) *VerificationHandler {
	return &VerificationHandler{
		auth:   authService,
		logger: logger,
	}
}

type passwordResetRequest struct {
	Phone string `json:"phone"`
}

// RequestPasswordReset always reports success for a well-formed request so
// the endpoint cannot confirm which numbers have accounts.
func (h *VerificationHandler) RequestPasswordReset(c echo.Context) error {
	var req passwordResetRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Phone == "" {
		return fail(c, http.StatusBadRequest, "phone is required")
	}

	tokenID, err := h.auth.RequestPasswordReset(req.Phone)
	if err != nil {
		return httpError(c, h.logger, err)
	}

	var data any
	if tokenID != "" {
		data = map[string]any{"token": tokenID}
	}
	return success(c, "if an account exists for this number, a reset code has been sent", data)
}

type passwordResetConfirmRequest struct {
	Token       string `json:"token"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (h *VerificationHandler) ConfirmPasswordReset(c echo.Context) error {
	var req passwordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" || req.Code == "" || req.NewPassword == "" {
		return fail(c, http.StatusBadRequest, "token, code and new_password are required")
	}

	if err := h.auth.ConfirmPasswordReset(req.Token, req.Code, req.NewPassword); err != nil {
		return httpError(c, h.logger, err)
	}

	return success(c, "password has been reset", nil)
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
}

func (h *VerificationHandler) RequestPasswordChange(c echo.Context) error {
	var req passwordChangeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.CurrentPassword == "" {
		return fail(c, http.StatusBadRequest, "current_password is required")
	}

	tokenID, err := h.auth.RequestPasswordChange(jwtmw.GetUserID(c), req.CurrentPassword)
	if err != nil {
		return httpError(c, h.logger, err)
	}

	return success(c, "a confirmation code has been sent by SMS", map[string]any{"token": tokenID})
}

type passwordChangeConfirmRequest struct {
	Token       string `json:"token"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (h *VerificationHandler) ConfirmPasswordChange(c echo.Context) error {
	var req passwordChangeConfirmRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" || req.Code == "" || req.NewPassword == "" {
		return fail(c, http.StatusBadRequest, "token, code and new_password are required")
	}

	if err := h.auth.ConfirmPasswordChange(req.Token, req.Code, req.NewPassword); err != nil {
		return httpError(c, h.logger, err)
	}

	return success(c, "password has been changed", nil)
}

type phoneChangeRequest struct {
	NewPhone string `json:"new_phone"`
}

func (h *VerificationHandler) RequestPhoneChange(c echo.Context) error {
	var req phoneChangeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.NewPhone == "" {
		return fail(c, http.StatusBadRequest, "new_phone is required")
	}

	tokenID, err := h.auth.RequestPhoneChange(jwtmw.GetUserID(c), req.NewPhone)
	if err != nil {
		return httpError(c, h.logger, err)
	}

	return success(c, "a confirmation code has been sent to the new number", map[string]any{"token": tokenID})
}

type phoneChangeConfirmRequest struct {
	Token string `json:"token"`
	Code  string `json:"code"`
}

func (h *VerificationHandler) ConfirmPhoneChange(c echo.Context) error {
	var req phoneChangeConfirmRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" || req.Code == "" {
		return fail(c, http.StatusBadRequest, "token and code are required")
	}

	if err := h.auth.ConfirmPhoneChange(req.Token, req.Code); err != nil {
		return httpError(c, h.logger, err)
	}

	return success(c, "phone number has been changed", nil)
}

type resendCodeRequest struct {
	Token   string `json:"token"`
	Purpose string `json:"purpose"`
}

// ResendCode re-dispatches the code for a pending deep-link token.
func (h *VerificationHandler) ResendCode(c echo.Context) error {
	var req resendCodeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" || req.Purpose == "" {
		return fail(c, http.StatusBadRequest, "token and purpose are required")
	}

	purpose, err := verification.ParsePurpose(req.Purpose)
	if err != nil || purpose == verification.PurposeActivation {
		return fail(c, http.StatusBadRequest, "invalid purpose")
	}

	if err := h.auth.ResendCode(req.Token, purpose); err != nil {
		return httpError(c, h.logger, err)
	}

	return success(c, "a new code has been sent", nil)
}
