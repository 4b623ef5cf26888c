package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	jwtmw "github.com/SteveElouga/waterbill-api/middleware/jwt"
	"github.com/SteveElouga/waterbill-api/services/logging"
	"github.com/SteveElouga/waterbill-api/services/users"
)

// AccountHandler serves the authenticated user's own profile.
type AccountHandler struct {
	users  *users.Service
	logger *logging.Service
}

func NewAccountHandler(usersService *users.Service, logger *logging.Service) *AccountHandler {
	return &AccountHandler{
		users:  usersService,
		logger: logger,
	}
}

func (h *AccountHandler) Me(c echo.Context) error {
	user, err := h.users.FindByID(jwtmw.GetUserID(c))
	if err != nil {
		return httpError(c, h.logger, err)
	}

	return success(c, "profile retrieved", userPayload(user))
}

type updateProfileRequest struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	ApartmentName *string `json:"apartment_name"`
}

func (h *AccountHandler) UpdateMe(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.FindByID(jwtmw.GetUserID(c))
	if err != nil {
		return httpError(c, h.logger, err)
	}

	err = h.users.UpdateProfile(user, users.UpdateProfileInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Address:       req.Address,
		ApartmentName: req.ApartmentName,
	})
	if err != nil {
		return httpError(c, h.logger, err)
	}

	return success(c, "profile updated", userPayload(user))
}
