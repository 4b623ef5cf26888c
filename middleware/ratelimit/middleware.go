package ratelimit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/SteveElouga/waterbill-api/services/phone"
)

type Config struct {
	Store          Store
	Rate           int
	Period         time.Duration
	KeyGenerator   func(c echo.Context) string
	Skipper        func(c echo.Context) bool
	OnLimitReached func(c echo.Context) error
}

// Middleware enforces a fixed-window limit keyed by the configured
// generator. Every request counts, including failed ones, so code-guessing
// traffic is throttled the same as anything else.
func Middleware(cfg *Config) echo.MiddlewareFunc {
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}

	if cfg.Rate <= 0 {
		cfg.Rate = 10
	}

	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}

	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = IPKeyGenerator
	}

	if cfg.OnLimitReached == nil {
		cfg.OnLimitReached = DefaultOnLimitReached
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			key := cfg.KeyGenerator(c)
			now := time.Now()
			resetTime := now.Add(cfg.Period)

			count, existingResetTime, exists := cfg.Store.Get(key)
			if exists {
				resetTime = existingResetTime
			}

			if count >= cfg.Rate {
				c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Rate))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

				return cfg.OnLimitReached(c)
			}

			newCount := cfg.Store.Increment(key, resetTime)
			remaining := max(cfg.Rate-newCount, 0)

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Rate))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			return next(c)
		}
	}
}

func IPKeyGenerator(c echo.Context) string {
	realIP := c.RealIP()

	if realIP == "" || realIP == "unknown" {
		realIP = "fallback"
	}

	return "rate_limit:ip:" + realIP
}

// PhoneKeyGenerator keys the limit on the phone number in the JSON request
// body, so an attacker rotating source addresses still burns one budget per
// target number. The body is restored for the handler. Requests without a
// parseable phone fall back to the client IP.
func PhoneKeyGenerator(c echo.Context) string {
	req := c.Request()

	body, err := io.ReadAll(io.LimitReader(req.Body, 1<<20))
	if err != nil {
		return IPKeyGenerator(c)
	}
	req.Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		Phone string `json:"phone"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Phone == "" {
		return IPKeyGenerator(c)
	}

	normalized, err := phone.Normalize(payload.Phone)
	if err != nil {
		return IPKeyGenerator(c)
	}

	return "rate_limit:phone:" + normalized
}

func DefaultOnLimitReached(c echo.Context) error {
	return echo.NewHTTPError(http.StatusTooManyRequests, "Too Many Requests")
}

func WithConfig(cfg *Config) echo.MiddlewareFunc {
	return Middleware(cfg)
}
