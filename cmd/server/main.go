package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	userauth "github.com/quillback/go-userauth"
)

func main() {
	zlog := zerolog.New(os.Stderr).With().Timestamp().Str("app", "userauth").Logger()
	logger := zlogAdapter{l: zlog}

	cfg, err := userauth.LoadConfig()
	if err != nil {
		zlog.Fatal().Err(err).Msg("invalid configuration")
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.GetDatabaseDSN())
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to open credential store")
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := db.NewCreateTable().Model((*userauth.User)(nil)).IfNotExists().Exec(ctx); err != nil {
		cancel()
		zlog.Fatal().Err(err).Msg("failed to ensure users table")
	}
	cancel()

	users := userauth.NewUsersRepository(db)
	provider := userauth.NewUserProvider(users).WithLogger(logger)
	auther := userauth.NewAuthenticator(provider, cfg).WithLogger(logger)
	registrar := userauth.NewRegisterUserHandler(users).WithLogger(logger)
	controller := userauth.NewAuthController(auther, registrar, cfg).WithLogger(logger)

	app := fiber.New(fiber.Config{
		AppName:               "userauth",
		DisableStartupMessage: true,
	})
	controller.RegisterRoutes(app)

	go func() {
		zlog.Info().Str("address", cfg.GetAddress()).Msg("listening")
		if err := app.Listen(cfg.GetAddress()); err != nil {
			zlog.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		zlog.Error().Err(err).Msg("shutdown error")
	}
	if err := db.Close(); err != nil {
		zlog.Error().Err(err).Msg("store close error")
	}
}

// zlogAdapter bridges the userauth.Logger interface onto zerolog.
type zlogAdapter struct {
	l zerolog.Logger
}

func (z zlogAdapter) Debug(format string, args ...any) { z.l.Debug().Msgf(format, args...) }

func (z zlogAdapter) Info(format string, args ...any) { z.l.Info().Msgf(format, args...) }

func (z zlogAdapter) Warn(format string, args ...any) { z.l.Warn().Msgf(format, args...) }

func (z zlogAdapter) Error(format string, args ...any) { z.l.Error().Msgf(format, args...) }
