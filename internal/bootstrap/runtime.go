// Package bootstrap wires the process-level dependencies shared by the
// server and the command-line tools.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"archives/internal/cache"
	"archives/internal/config"
	"archives/internal/database"
	"archives/internal/middleware"
	"archives/internal/models"
	"archives/internal/repository"
	"archives/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// EnsureAdmin creates the ADMIN_EMAIL account on first boot.
	EnsureAdmin bool
}

// InitRuntime connects to DB and Redis. In demo mode no database is opened
// and the returned *gorm.DB is nil.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if cfg.IsDemo() {
		middleware.Logger.Info("demo mode: serving fixtures, database skipped")
		return nil, r, nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.EnsureAdmin {
		if err := EnsureAdmin(context.Background(), cfg, repository.NewAdminRepository(db)); err != nil {
			return nil, nil, fmt.Errorf("failed to bootstrap admin: %w", err)
		}
	}

	return db, r, nil
}

// EnsureAdmin creates the configured admin account when it does not exist
// yet. An existing account is left untouched, password included.
func EnsureAdmin(ctx context.Context, cfg *config.Config, admins repository.AdminRepository) error {
	email := strings.TrimSpace(strings.ToLower(cfg.AdminEmail))
	if email == "" {
		return nil
	}
	if cfg.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD must be set when ADMIN_EMAIL is")
	}

	_, err := admins.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil
	case models.ErrorCode(err) != models.CodeNotFound:
		return err
	}

	hash, err := service.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &models.Admin{Email: email, Password: hash}
	if err := admins.Create(ctx, admin); err != nil {
		return err
	}

	middleware.Logger.Info("admin account created", slog.String("email", email), slog.Uint64("admin_id", uint64(admin.ID)))
	return nil
}
