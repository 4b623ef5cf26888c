package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/SteveElouga/waterbill-api/services/auth"
	"github.com/SteveElouga/waterbill-api/services/logging"
	"github.com/SteveElouga/waterbill-api/services/phone"
	"github.com/SteveElouga/waterbill-api/services/users"
	"go.uber.org/zap"
)

// httpError maps the service error taxonomy onto HTTP statuses. Anything
// unmapped is a 500 with a generic message; the detail stays in the logs.
func httpError(c echo.Context, logger *logging.Service, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrAccountNotActive):
		return fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, auth.ErrPhoneNotAllowed):
		return fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, auth.ErrAccountNotFound):
		return fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrNoPendingCode):
		return fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrAccountAlreadyActive):
		return fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrPhoneTaken), errors.Is(err, auth.ErrPhoneNowTaken):
		return fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, users.ErrPhoneTaken):
		return fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrCodeExpired),
		errors.Is(err, auth.ErrCodeIncorrect),
		errors.Is(err, auth.ErrCodeInvalidOrExpired):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrCodeLocked):
		return fail(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, auth.ErrVerificationLocked):
		return fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, auth.ErrResendCooldown):
		return fail(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, auth.ErrSmsUnavailable), errors.Is(err, auth.ErrSmsSendFailed):
		return fail(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, phone.ErrInvalidPhone),
		errors.Is(err, users.ErrInvalidPhone),
		errors.Is(err, users.ErrNameRequired),
		errors.Is(err, users.ErrApartmentName):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, users.ErrUserNotFound):
		return fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, users.ErrAllowlistEntryNotFound):
		return fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrPasswordPolicy):
		return fail(c, http.StatusBadRequest, err.Error())
	default:
		if logger != nil {
			logger.Error("unhandled service error", zap.Error(err))
		}
		return fail(c, http.StatusInternalServerError, "internal server error")
	}
}
