// Package bootstrap connects the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"capes/internal/cache"
	"capes/internal/config"
	"capes/internal/database"
	"capes/internal/middleware"
	"capes/internal/repository"
	"capes/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedCatalog loads the demo catalog into an empty events table when the
	// catalog is served from the database.
	SeedCatalog bool
}

// InitRuntime connects to DB and Redis and optionally seeds the catalog.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedCatalog {
		if err := ensureCatalog(context.Background(), cfg, db, r); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo catalog: %w", err)
		}
	}

	return db, r, nil
}

func ensureCatalog(ctx context.Context, cfg *config.Config, db *gorm.DB, r *redis.Client) error {
	if cfg.CatalogSource != config.CatalogSourceDatabase {
		return nil
	}

	repo := repository.NewEventRepository(db)
	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	seeded, err := service.NewCatalogService(cfg.CatalogSource, repo, r, cfg.CatalogCacheTTL()).SeedDemo(ctx)
	if err != nil {
		return err
	}
	middleware.Logger.Info("Seeded demo catalog", slog.Int("events", seeded))
	return nil
}
