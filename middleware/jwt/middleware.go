package jwt

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/SteveElouga/waterbill-api/services/jwt"
	"github.com/SteveElouga/waterbill-api/services/users"
)

const (
	UserIDKey = "_jwt_user_id"
	ClaimsKey = "_jwt_claims"
)

// RequireJWT admits only requests carrying a valid Bearer access token.
// Refresh tokens are rejected; they are only good at the refresh endpoint.
func RequireJWT(jwtService *jwt.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header required")
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "JWT token required")
			}

			claims, err := jwtService.ValidateAccessToken(tokenString)
			if err != nil {
				switch err {
				case jwt.ErrExpiredToken:
					return echo.NewHTTPError(http.StatusUnauthorized, "JWT token has expired")
				case jwt.ErrMalformedToken:
					return echo.NewHTTPError(http.StatusUnauthorized, "Malformed JWT token")
				case jwt.ErrInvalidSignature:
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid JWT token signature")
				case jwt.ErrWrongTokenType:
					return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
				default:
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid JWT token")
				}
			}

			c.Set(UserIDKey, claims.UserID)
			c.Set(ClaimsKey, claims)

			return next(c)
		}
	}
}

// RequireStaff gates admin endpoints. It must run after RequireJWT.
func RequireStaff(usersService *users.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := GetUserID(c)
			if userID == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			user, err := usersService.FindByID(userID)
			if err != nil || !user.Staff {
				return echo.NewHTTPError(http.StatusForbidden, "Staff access required")
			}

			return next(c)
		}
	}
}

func GetUserID(c echo.Context) uint {
	if userID, ok := c.Get(UserIDKey).(uint); ok {
		return userID
	}
	return 0
}

func GetClaims(c echo.Context) *jwt.Claims {
	if claims, ok := c.Get(ClaimsKey).(*jwt.Claims); ok {
		return claims
	}
	return nil
}
