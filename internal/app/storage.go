package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/multiverse/internal/comments"
	"github.com/MrSnakeDoc/multiverse/internal/config"
	"github.com/MrSnakeDoc/multiverse/internal/favorites"
	"github.com/MrSnakeDoc/multiverse/internal/kvstore"
	"github.com/MrSnakeDoc/multiverse/internal/logger"
	"github.com/MrSnakeDoc/multiverse/internal/redis"
)

// OpenStorage connects the configured key-value backend.
func OpenStorage(ctx context.Context, cfg *config.Config, log logger.Logger) (kvstore.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		log.Warn("memory storage selected, state is lost on exit")
		return kvstore.NewMemory(), nil

	case config.BackendSQLite:
		s, err := kvstore.OpenSQLite(cfg.SQLitePath, log.Named("sqlite"))
		if err != nil {
			return nil, err
		}
		log.Info("sqlite storage opened", logger.String("path", s.Path()))
		return s, nil

	case config.BackendRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(ctx, redis.OptionsFromConfig(cfg), log.Named("redis"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("Redis initialized successfully")
		return kvstore.NewRedis(client, cfg.StorageNamespace), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// OpenStores hydrates the favorites and comments stores from kv.
func OpenStores(ctx context.Context, cfg *config.Config, kv kvstore.Store, log logger.Logger) (*favorites.Store, *comments.Store, error) {
	mode, err := favorites.ParseMode(cfg.FavoritesMode)
	if err != nil {
		return nil, nil, err
	}
	favs := favorites.New(ctx, kv, mode, log.Named("favorites"))
	cs := comments.New(kv, log.Named("comments"))
	return favs, cs, nil
}
