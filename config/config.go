package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig          `envPrefix:"WB_APP_"`
	Server       ServerConfig       `envPrefix:"WB_SERVER_"`
	Log          LogConfig          `envPrefix:"WB_LOG_"`
	Database     DatabaseConfig     `envPrefix:"WB_DB_"`
	JWT          JWTConfig          `envPrefix:"WB_JWT_"`
	Auth         AuthConfig         `envPrefix:"WB_AUTH_"`
	SMS          SMSConfig          `envPrefix:"WB_SMS_"`
	Verification VerificationConfig `envPrefix:"WB_VERIFICATION_"`
	RateLimit    RateLimitConfig    `envPrefix:"WB_RATELIMIT_"`
	Allowlist    AllowlistConfig    `envPrefix:"WB_ALLOWLIST_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"WaterBill API"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"waterbill.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type JWTConfig struct {
	SecretKey     string        `env:"SECRET_KEY"`
	Issuer        string        `env:"ISSUER" envDefault:"waterbill-api"`
	AccessExpiry  time.Duration `env:"ACCESS_EXPIRY" envDefault:"30m"`
	RefreshExpiry time.Duration `env:"REFRESH_EXPIRY" envDefault:"168h"`
}

type AuthConfig struct {
	BcryptCost     int  `env:"BCRYPT_COST" envDefault:"10"`
	MinLength      int  `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	RequireUpper   bool `env:"PASSWORD_REQUIRE_UPPER" envDefault:"false"`
	RequireLower   bool `env:"PASSWORD_REQUIRE_LOWER" envDefault:"true"`
	RequireNumber  bool `env:"PASSWORD_REQUIRE_NUMBER" envDefault:"true"`
	RequireSpecial bool `env:"PASSWORD_REQUIRE_SPECIAL" envDefault:"false"`
}

// SMSConfig selects the outbound SMS gateway. Mode "log" writes codes to the
// application log instead of dispatching them; "carrier" posts to the HTTP
// API configured below.
type SMSConfig struct {
	Mode        string        `env:"MODE" envDefault:"log"`
	APIURL      string        `env:"API_URL"`
	APIKey      string        `env:"API_KEY"`
	Sender      string        `env:"SENDER" envDefault:"WaterBill"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"10s"`
	RedirectURL string        `env:"REDIRECT_URL" envDefault:"http://localhost:3000"`
}

type VerificationConfig struct {
	CodeTTL        time.Duration `env:"CODE_TTL" envDefault:"10m"`
	MaxAttempts    uint          `env:"MAX_ATTEMPTS" envDefault:"5"`
	ResendCooldown time.Duration `env:"RESEND_COOLDOWN" envDefault:"60s"`
	DailySendQuota uint          `env:"DAILY_SEND_QUOTA" envDefault:"5"`
}

// RateLimitConfig holds the request budgets per endpoint class. Each budget
// is requests per period.
type RateLimitConfig struct {
	Enabled      bool          `env:"ENABLED" envDefault:"true"`
	Period       time.Duration `env:"PERIOD" envDefault:"1m"`
	Register     int           `env:"REGISTER" envDefault:"5"`
	Login        int           `env:"LOGIN" envDefault:"10"`
	Activate     int           `env:"ACTIVATE" envDefault:"10"`
	Resend       int           `env:"RESEND" envDefault:"3"`
	Auth         int           `env:"AUTH" envDefault:"30"`
	Admin        int           `env:"ADMIN" envDefault:"60"`
}

type AllowlistConfig struct {
	SeedFile string `env:"SEED_FILE"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
