// Package apptest wires an AppContext over in-memory SQLite and miniredis.
package apptest

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/matchbot/internal/app"
	"github.com/oggyb/matchbot/internal/cache"
	"github.com/oggyb/matchbot/internal/config"
	"github.com/oggyb/matchbot/internal/db/dbtest"
	"github.com/oggyb/matchbot/internal/logger"
)

// New returns an isolated AppContext. Each test gets its own DB and Redis.
func New(t *testing.T, adminIDs ...int64) (*app.AppContext, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.DB.Timeout = time.Second
	cfg.Redis.Addr = mr.Addr()
	cfg.Policy.AdminIDs = adminIDs
	cfg.Policy.MinAge, cfg.Policy.MaxAge = 16, 25
	cfg.Telegram.Workers = 4

	rdb := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rdb.Close() })

	return app.New(dbtest.New(t), rdb, logger.Discard(), cfg), mr
}
