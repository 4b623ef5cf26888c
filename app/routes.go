package app

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/SteveElouga/waterbill-api/config"
	"github.com/SteveElouga/waterbill-api/handlers"
	jwtmw "github.com/SteveElouga/waterbill-api/middleware/jwt"
	"github.com/SteveElouga/waterbill-api/middleware/ratelimit"
	"github.com/SteveElouga/waterbill-api/server"
	jwtsvc "github.com/SteveElouga/waterbill-api/services/jwt"
	"github.com/SteveElouga/waterbill-api/services/users"
)

// registerRoutes wires the HTTP surface. Unauthenticated endpoints carry
// per-phone or per-IP budgets; authenticated groups are keyed by user id so
// clients behind one NAT do not starve each other.
func registerRoutes(
	srv *server.Server,
	cfg *config.Config,
	store ratelimit.Store,
	authHandler *handlers.AuthHandler,
	verificationHandler *handlers.VerificationHandler,
	accountHandler *handlers.AccountHandler,
	adminHandler *handlers.AdminHandler,
	jwtService *jwtsvc.Service,
	usersService *users.Service,
) {
	limit := func(rate int, keyGen func(echo.Context) string) echo.MiddlewareFunc {
		if !cfg.RateLimit.Enabled {
			return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
		}
		return ratelimit.WithConfig(&ratelimit.Config{
			Store:        store,
			Rate:         rate,
			Period:       cfg.RateLimit.Period,
			KeyGenerator: keyGen,
		})
	}

	userKey := func(c echo.Context) string {
		if userID := jwtmw.GetUserID(c); userID != 0 {
			return "rate_limit:user:" + strconv.FormatUint(uint64(userID), 10)
		}
		return ratelimit.IPKeyGenerator(c)
	}

	api := srv.Group("/api/v1")

	api.POST("/auth/register", authHandler.Register, limit(cfg.RateLimit.Register, ratelimit.IPKeyGenerator))
	api.POST("/auth/login", authHandler.Login, limit(cfg.RateLimit.Login, ratelimit.IPKeyGenerator))
	api.POST("/auth/refresh", authHandler.Refresh, limit(cfg.RateLimit.Auth, ratelimit.IPKeyGenerator))
	api.POST("/auth/activate", authHandler.Activate, limit(cfg.RateLimit.Activate, ratelimit.PhoneKeyGenerator))
	api.POST("/auth/activate/resend", authHandler.ResendActivation, limit(cfg.RateLimit.Resend, ratelimit.PhoneKeyGenerator))

	api.POST("/auth/password-reset", verificationHandler.RequestPasswordReset, limit(cfg.RateLimit.Resend, ratelimit.PhoneKeyGenerator))
	api.POST("/auth/password-reset/confirm", verificationHandler.ConfirmPasswordReset, limit(cfg.RateLimit.Activate, ratelimit.IPKeyGenerator))
	api.POST("/auth/resend-code", verificationHandler.ResendCode, limit(cfg.RateLimit.Resend, ratelimit.IPKeyGenerator))

	authed := api.Group("", jwtmw.RequireJWT(jwtService), limit(cfg.RateLimit.Auth, userKey))
	authed.GET("/me", accountHandler.Me)
	authed.PATCH("/me", accountHandler.UpdateMe)
	authed.POST("/auth/password-change", verificationHandler.RequestPasswordChange)
	authed.POST("/auth/password-change/confirm", verificationHandler.ConfirmPasswordChange)
	authed.POST("/auth/phone-change", verificationHandler.RequestPhoneChange)
	authed.POST("/auth/phone-change/confirm", verificationHandler.ConfirmPhoneChange)

	admin := api.Group("/admin", jwtmw.RequireJWT(jwtService), jwtmw.RequireStaff(usersService), limit(cfg.RateLimit.Admin, userKey))
	admin.GET("/allowlist", adminHandler.ListAllowlist)
	admin.POST("/allowlist", adminHandler.AuthorizePhone)
	admin.POST("/allowlist/deactivate", adminHandler.DeactivatePhone)
	admin.DELETE("/allowlist", adminHandler.RemovePhone)
}
