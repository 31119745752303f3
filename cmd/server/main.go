// Package main provides the entry point for the Kindred API server
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/kindredhq/kindred/domain/auth"
	"github.com/kindredhq/kindred/domain/email"
	"github.com/kindredhq/kindred/domain/family"
	"github.com/kindredhq/kindred/domain/health"
	"github.com/kindredhq/kindred/domain/scheduler"
	"github.com/kindredhq/kindred/domain/tracing"
	"github.com/kindredhq/kindred/domain/users"
	"github.com/kindredhq/kindred/internal/config"
	"github.com/kindredhq/kindred/internal/database"
	"github.com/kindredhq/kindred/internal/migrate"
	"github.com/kindredhq/kindred/internal/server"
	"github.com/kindredhq/kindred/internal/storage"
	pkgauth "github.com/kindredhq/kindred/pkg/auth"
	"github.com/kindredhq/kindred/pkg/logger"
)

func main() {
	// Load .env files if present (for local development)
	// Order matters: .env.local overrides .env
	// Note: Load() won't overwrite existing vars, Overload() will
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		// Logging
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure modules
		logger.Module,
		config.Module,
		database.Module,
		migrate.Module,
		server.Module,
		storage.Module,
		tracing.Module,

		// Auth primitives (token issuing, route guards)
		pkgauth.Module,

		// Domain modules
		health.Module,
		users.Module,
		email.Module,
		auth.Module,
		family.Module,
		scheduler.Module,
	).Run()
}
