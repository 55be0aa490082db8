package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/matchbot/internal/db"
	"github.com/oggyb/matchbot/internal/db/dbtest"
	svcErr "github.com/oggyb/matchbot/internal/errors"
	"github.com/oggyb/matchbot/internal/repository"
)

func setupStore(t *testing.T) *repository.Store {
	t.Helper()
	gdb := dbtest.New(t)
	dbtest.Insert(t, gdb,
		dbtest.CompleteProfile(1, "Alex"),
		dbtest.CompleteProfile(2, "Bella"),
		dbtest.CompleteProfile(3, "Chris"),
		dbtest.CompleteProfile(4, "Dana"),
		db.Profile{UserID: 5, Username: "half", DisplayName: "Half"}, // incomplete
	)
	return repository.NewStore(gdb, time.Second)
}

func TestGetProfile_NotFound(t *testing.T) {
	store := setupStore(t)

	_, err := store.Profiles.GetProfile(context.Background(), 404)
	assert.True(t, svcErr.IsNotFound(err))
}

func TestUpsertProfile_PreservesCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	before, err := store.Profiles.GetProfile(ctx, 1)
	require.NoError(t, err)

	p := *before
	p.Bio = "updated"
	require.NoError(t, store.Profiles.UpsertProfile(ctx, &p))
	// retry with the same arguments is harmless
	require.NoError(t, store.Profiles.UpsertProfile(ctx, &p))

	after, err := store.Profiles.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "updated", after.Bio)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
}

func TestTouchProfile(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	// first contact creates a bare row
	p, err := store.Profiles.TouchProfile(ctx, 77, "newbie")
	require.NoError(t, err)
	assert.Equal(t, "newbie", p.Username)
	assert.Empty(t, p.DisplayName)

	// empty username keeps the stored one
	p, err = store.Profiles.TouchProfile(ctx, 77, "")
	require.NoError(t, err)
	assert.Equal(t, "newbie", p.Username)

	// existing profile data survives
	p, err = store.Profiles.TouchProfile(ctx, 1, "alex_renamed")
	require.NoError(t, err)
	assert.Equal(t, "alex_renamed", p.Username)
	assert.Equal(t, "Alex", p.DisplayName)
}

func TestEligibleCandidateIDs(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	ids, err := store.Profiles.EligibleCandidateIDs(ctx, 1, nil)
	require.NoError(t, err)
	// never self, never the incomplete profile 5
	assert.Equal(t, []int64{2, 3, 4}, ids)

	_, err = store.Edges.AddLike(ctx, 1, 2)
	require.NoError(t, err)
	_, err = store.Edges.AddDislike(ctx, 1, 3)
	require.NoError(t, err)

	ids, err = store.Profiles.EligibleCandidateIDs(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids)

	require.NoError(t, store.Moderation.BanUser(ctx, db.Ban{UserID: 4, Reason: "spam"}))
	ids, err = store.Profiles.EligibleCandidateIDs(ctx, 1, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	// unban brings the candidate back
	_, err = store.Moderation.UnbanUser(ctx, 4)
	require.NoError(t, err)
	ids, err = store.Profiles.EligibleCandidateIDs(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, ids)

	// soft exclusion
	ids, err = store.Profiles.EligibleCandidateIDs(ctx, 1, []int64{4})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEligibleCandidateIDs_ExcludesMatchesEitherSide(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	_, err := store.Edges.AddMatch(ctx, 3, 1)
	require.NoError(t, err)

	ids, err := store.Profiles.EligibleCandidateIDs(ctx, 1, nil)
	require.NoError(t, err)
	assert.NotContains(t, ids, int64(3))

	ids, err = store.Profiles.EligibleCandidateIDs(ctx, 3, nil)
	require.NoError(t, err)
	assert.NotContains(t, ids, int64(1))
}

func TestAddLike_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	created, err := store.Edges.AddLike(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.Edges.AddLike(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, created)

	count, err := store.Edges.CountLikes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	liked, err := store.Edges.HasLiked(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = store.Edges.HasLiked(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, liked)

	received, err := store.Edges.CountLikesReceived(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), received)
}

func TestAddMatch_CanonicalAndSymmetric(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	created, err := store.Edges.AddMatch(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, created)

	// reversed order is the same pair
	created, err = store.Edges.AddMatch(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, created)

	var rows []db.Match
	require.NoError(t, store.Edges.DB().Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].UserLowID)
	assert.Equal(t, int64(2), rows[0].UserHighID)

	of1, err := store.Edges.MatchesOf(ctx, 1)
	require.NoError(t, err)
	of2, err := store.Edges.MatchesOf(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, of1)
	assert.Equal(t, []int64{1}, of2)
}

func TestBanLifecycle(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	ban, err := store.Moderation.IsBanned(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, ban)

	require.NoError(t, store.Moderation.BanUser(ctx, db.Ban{UserID: 2, Reason: "spam", BannedBy: 100}))
	ban, err = store.Moderation.IsBanned(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, ban)
	assert.Equal(t, "spam", ban.Reason)

	closed, err := store.Moderation.UnbanUser(ctx, 2)
	require.NoError(t, err)
	assert.True(t, closed)

	// idempotent
	closed, err = store.Moderation.UnbanUser(ctx, 2)
	require.NoError(t, err)
	assert.False(t, closed)

	// re-ban reopens the record with the new reason
	require.NoError(t, store.Moderation.BanUser(ctx, db.Ban{UserID: 2, Reason: "again"}))
	ban, err = store.Moderation.IsBanned(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, ban)
	assert.Equal(t, "again", ban.Reason)
	assert.Nil(t, ban.UnbannedAt)
}

func TestListBannedPagination(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, id := range []int64{1, 2, 3} {
		require.NoError(t, store.Moderation.BanUser(ctx, db.Ban{
			UserID:   id,
			BannedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, next, err := store.Moderation.ListBanned(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].UserID)
	assert.Equal(t, int64(2), page[1].UserID)
	require.NotEmpty(t, next)

	page, next, err = store.Moderation.ListBanned(ctx, next, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(1), page[0].UserID)
	assert.Empty(t, next)

	count, err := store.Moderation.CountBanned(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	_, _, err = store.Moderation.ListBanned(ctx, "%%%", 2)
	assert.True(t, svcErr.IsValidation(err))
}

func TestMaintenanceStatus(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	s, err := store.Moderation.GetMaintenanceStatus(ctx)
	require.NoError(t, err)
	assert.False(t, s.MaintenanceMode)

	end := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, store.Moderation.SetMaintenanceStatus(ctx, db.ServiceSettings{
		MaintenanceMode:    true,
		MaintenanceMessage: "upgrading",
		MaintenanceEnd:     &end,
		UpdatedBy:          100,
	}))

	s, err = store.Moderation.GetMaintenanceStatus(ctx)
	require.NoError(t, err)
	assert.True(t, s.MaintenanceMode)
	assert.Equal(t, "upgrading", s.MaintenanceMessage)
	require.NotNil(t, s.MaintenanceEnd)
	assert.True(t, end.Equal(*s.MaintenanceEnd))
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	total, err := store.Profiles.CountProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	complete, err := store.Profiles.CountCompleteProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), complete)
}

func TestStoreTimeoutMapsToPersistence(t *testing.T) {
	store := setupStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Edges.AddLike(ctx, 1, 2)
	assert.True(t, svcErr.IsPersistence(err))
}
