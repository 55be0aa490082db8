package backup_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/matchbot/internal/backup"
	"github.com/oggyb/matchbot/internal/db"
	"github.com/oggyb/matchbot/internal/db/dbtest"
	"github.com/oggyb/matchbot/internal/logger"
	"github.com/oggyb/matchbot/internal/repository"
)

func seedSource(t *testing.T) *repository.Store {
	t.Helper()
	ctx := context.Background()
	gdb := dbtest.New(t)
	dbtest.Insert(t, gdb,
		dbtest.CompleteProfile(1, "Alex"),
		dbtest.CompleteProfile(2, "Bella"),
		dbtest.CompleteProfile(3, "Chris"),
	)
	store := repository.NewStore(gdb, time.Second)

	_, err := store.Edges.AddLike(ctx, 1, 2)
	require.NoError(t, err)
	_, err = store.Edges.AddLike(ctx, 2, 1)
	require.NoError(t, err)
	_, err = store.Edges.AddMatch(ctx, 1, 2)
	require.NoError(t, err)
	_, err = store.Edges.AddDislike(ctx, 3, 1)
	require.NoError(t, err)
	require.NoError(t, store.Moderation.BanUser(ctx, db.Ban{UserID: 3, Reason: "spam"}))
	require.NoError(t, store.Moderation.SetMaintenanceStatus(ctx, db.ServiceSettings{
		MaintenanceMode:    true,
		MaintenanceMessage: "upgrading",
	}))
	return store
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := seedSource(t)

	snap, err := backup.Take(ctx, source.Edges.DB())
	require.NoError(t, err)
	assert.Len(t, snap.Profiles, 3)
	assert.Len(t, snap.Likes, 2)
	assert.Len(t, snap.Dislikes, 1)
	assert.Len(t, snap.Matches, 1)
	assert.Len(t, snap.Bans, 1)

	dir := t.TempDir()
	path, err := backup.WriteFile(dir, snap)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "matchbot-"))

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	loaded, err := backup.ReadFile(path)
	require.NoError(t, err)

	t.Run("restore into empty store", func(t *testing.T) {
		target := repository.NewStore(dbtest.New(t), time.Second)
		require.NoError(t, backup.Restore(ctx, target.Edges.DB(), loaded))
		// idempotent
		require.NoError(t, backup.Restore(ctx, target.Edges.DB(), loaded))

		p, err := target.Profiles.GetProfile(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "Bella", p.DisplayName)

		matches, err := target.Edges.MatchesOf(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, matches)

		likes, err := target.Edges.CountLikes(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), likes)

		ban, err := target.Moderation.IsBanned(ctx, 3)
		require.NoError(t, err)
		require.NotNil(t, ban)
		assert.Equal(t, "spam", ban.Reason)

		s, err := target.Moderation.GetMaintenanceStatus(ctx)
		require.NoError(t, err)
		assert.True(t, s.MaintenanceMode)
		assert.Equal(t, "upgrading", s.MaintenanceMessage)
	})
}

func TestReadFile_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99}`), 0o644))

	_, err := backup.ReadFile(path)
	assert.Error(t, err)
}

type fakeUploader struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (u *fakeUploader) Upload(_ context.Context, path string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.paths = append(u.paths, path)
	return u.err
}

func TestService_SnapshotNowUploads(t *testing.T) {
	source := seedSource(t)
	up := &fakeUploader{err: errors.New("bucket offline")}
	svc := backup.NewService(source.Edges.DB(), t.TempDir(), up, logger.Discard())

	// a failed upload keeps the local file and is not an error
	path, err := svc.SnapshotNow(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, []string{path}, up.paths)
}

func TestService_RunPeriodically(t *testing.T) {
	source := seedSource(t)
	dir := t.TempDir()
	svc := backup.NewService(source.Edges.DB(), dir, nil, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx, 20*time.Millisecond) }()

	require.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) > 0
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestService_RunDisabled(t *testing.T) {
	svc := backup.NewService(nil, t.TempDir(), nil, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, svc.Run(ctx, 0))
}
