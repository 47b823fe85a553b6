package app

import (
	"context"
	"fmt"

	"github.com/kapu/group-notice-bot/internal/config"
	"github.com/kapu/group-notice-bot/internal/service/announcement"
	"github.com/kapu/group-notice-bot/internal/service/cache"
	"github.com/kapu/group-notice-bot/internal/service/database"
	"github.com/kapu/group-notice-bot/internal/service/group"
	"github.com/kapu/group-notice-bot/internal/service/member"
	"github.com/kapu/group-notice-bot/internal/service/memory"
	"go.uber.org/zap"
)

// Storage is one backend's implementation of the three storage ports.
type Storage struct {
	Backend       string
	Members       member.Store
	Groups        group.Store
	Announcements announcement.Store

	// Health pings the backend; nil for the in-memory backend.
	Health func(ctx context.Context) error
	// Cache is set only for the redis backend.
	Cache *cache.CacheService

	close func() error
}

func (s *Storage) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStorage connects the backend named by cfg.Storage.Backend. SQL backends
// are migrated before use.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		return &Storage{
			Backend:       config.BackendMemory,
			Members:       memory.NewMemberStore(),
			Groups:        memory.NewGroupStore(),
			Announcements: memory.NewAnnouncementStore(),
		}, nil

	case config.BackendPostgres:
		db, err := database.NewPostgresService(database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", err)
		}
		return sqlStorage(ctx, config.BackendPostgres, db)

	case config.BackendSQLite:
		db, err := database.NewSQLiteService(cfg.SQLite.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite service: %w", err)
		}
		return sqlStorage(ctx, config.BackendSQLite, db)

	case config.BackendRedis:
		cacheSvc, err := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", err)
		}
		return &Storage{
			Backend:       config.BackendRedis,
			Members:       cache.NewMemberStore(cacheSvc),
			Groups:        cache.NewGroupStore(cacheSvc),
			Announcements: cache.NewAnnouncementStore(cacheSvc),
			Health: func(ctx context.Context) error {
				return cacheSvc.GetRedisClient().Ping(ctx).Err()
			},
			Cache: cacheSvc,
			close: cacheSvc.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func sqlStorage(ctx context.Context, backend string, db *database.Service) (*Storage, error) {
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate %s schema: %w", backend, err)
	}
	return &Storage{
		Backend:       backend,
		Members:       database.NewMemberStore(db),
		Groups:        database.NewGroupStore(db),
		Announcements: database.NewAnnouncementStore(db),
		Health:        db.Ping,
		close:         db.Close,
	}, nil
}
