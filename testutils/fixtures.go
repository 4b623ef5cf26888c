package testutils

import (
	"time"

	"github.com/SteveElouga/waterbill-api/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "Test App",
			URL:  "http://localhost:8080",
		},
		Auth: config.AuthConfig{
			MinLength:      8,
			RequireUpper:   true,
			RequireLower:   true,
			RequireNumber:  true,
			RequireSpecial: false,
			BcryptCost:     bcrypt.MinCost,
		},
		JWT: config.JWTConfig{
			SecretKey:     "test-secret-key-32-chars-long!!",
			Issuer:        "test-issuer",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 24 * time.Hour,
		},
		SMS: config.SMSConfig{
			Mode:        "log",
			Sender:      "TestApp",
			Timeout:     time.Second,
			RedirectURL: "http://localhost:3000",
		},
		Verification: config.VerificationConfig{
			CodeTTL:        10 * time.Minute,
			MaxAttempts:    5,
			ResendCooldown: time.Minute,
			DailySendQuota: 5,
		},
		RateLimit: config.RateLimitConfig{
			Enabled:  true,
			Period:   time.Minute,
			Register: 5,
			Login:    10,
			Activate: 10,
			Resend:   3,
			Auth:     30,
			Admin:    60,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
	}
}

var TestPasswords = struct {
	Valid    string
	TooShort string
	NoUpper  string
	NoLower  string
	NoNumber string
}{
	Valid:    "Password123",
	TooShort: "Pass1",
	NoUpper:  "password123",
	NoLower:  "PASSWORD123",
	NoNumber: "PasswordABC",
}

var TestPhones = struct {
	Valid     string
	Formatted string
	Second    string
	Unknown   string
	TooShort  string
}{
	Valid:     "+237699000001",
	Formatted: "+237 699 00 00 01",
	Second:    "+237699000002",
	Unknown:   "+237699999999",
	TooShort:  "+1234",
}
