// Package dbtest opens isolated in-memory stores for package tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/matchbot/internal/db"
)

// New spins up an in-memory SQLite DB named after the test and applies
// migrations. Each test gets its own isolated database.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// CompleteProfile returns a profile that passes the completeness check.
func CompleteProfile(id int64, name string) db.Profile {
	return db.Profile{
		UserID:      id,
		Username:    strings.ToLower(name),
		Gender:      "M",
		DisplayName: name,
		Age:         20,
		Course:      "3",
		Bio:         "hi",
		PhotoRef:    fmt.Sprintf("photo-%d", id),
	}
}

// Insert creates the given profiles directly, bypassing repositories.
func Insert(t *testing.T, gdb *gorm.DB, profiles ...db.Profile) {
	t.Helper()
	for i := range profiles {
		require.NoError(t, gdb.Create(&profiles[i]).Error)
	}
}
