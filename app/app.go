package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/SteveElouga/waterbill-api/config"
	"github.com/SteveElouga/waterbill-api/database"
	"github.com/SteveElouga/waterbill-api/handlers"
	"github.com/SteveElouga/waterbill-api/middleware/ratelimit"
	"github.com/SteveElouga/waterbill-api/server"
	"github.com/SteveElouga/waterbill-api/services/auth"
	jwtsvc "github.com/SteveElouga/waterbill-api/services/jwt"
	"github.com/SteveElouga/waterbill-api/services/logging"
	"github.com/SteveElouga/waterbill-api/services/sms"
	"github.com/SteveElouga/waterbill-api/services/users"
	"github.com/SteveElouga/waterbill-api/services/verification"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// App assembles the service graph and owns the process lifecycle.
type App struct {
	fx     *fx.App
	config *config.Config
	logger *logging.Service
	db     *gorm.DB
	server *server.Server
}

func New(cfg *config.Config) *App {
	a := &App{config: cfg}

	a.fx = fx.New(
		fx.NopLogger,
		config.NewProvider(cfg),
		logging.Module,
		database.Module,
		fx.Supply(database.WithModels(
			&users.User{},
			&users.PhoneAllowlistEntry{},
			&verification.Token{},
			&verification.ActivationToken{},
		)),
		verification.Module,
		users.Module,
		sms.Module,
		jwtsvc.Module,
		auth.Module,
		handlers.Module,
		fx.Provide(ratelimit.ProvideRateLimitStore),
		server.NewProvider(),
		fx.Invoke(seedAllowlist),
		fx.Invoke(registerRoutes),
		fx.Populate(&a.logger, &a.db, &a.server),
	)

	return a
}

func (a *App) Start() error {
	return a.fx.Start(context.Background())
}

func (a *App) Run() {
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	if a.logger != nil {
		a.logger.Info("received shutdown signal, stopping gracefully")
	}

	a.Stop()
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.fx.Stop(ctx); err != nil {
		if a.logger != nil {
			a.logger.Error("failed to stop application gracefully")
		} else {
			log.Printf("Failed to stop application gracefully: %v", err)
		}
	}

	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *App) Server() *echo.Echo {
	if a.server == nil {
		return nil
	}
	return a.server.Echo()
}

func (a *App) DB() *gorm.DB {
	return a.db
}

func (a *App) Logger() *logging.Service {
	return a.logger
}

func (a *App) Config() *config.Config {
	return a.config
}

func seedAllowlist(cfg *config.Config, allowlist *users.AllowlistService) error {
	return allowlist.SeedFromFile(cfg.Allowlist.SeedFile)
}
