package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/matchbot/internal/cache"
	"github.com/oggyb/matchbot/internal/config"
	"github.com/oggyb/matchbot/internal/repository"
)

// AppContext holds shared dependencies (DB, store, Redis, logger, config).
type AppContext struct {
	DB         *gorm.DB
	Store      *repository.Store
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Config     *config.Config
}

// New creates a new AppContext. The store is built over db with the
// configured call timeout.
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, cfg *config.Config) *AppContext {
	return &AppContext{
		DB:         db,
		Store:      repository.NewStore(db, cfg.DB.Timeout),
		RedisCache: rdb,
		Logger:     logger,
		Config:     cfg,
	}
}
