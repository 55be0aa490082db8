package explore_test

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
	"github.com/oggyb/matchbot/internal/service/explore"
	"github.com/oggyb/matchbot/internal/service/profile"
)

func setupSelector(t *testing.T, profiles ...db.Profile) (*explore.Selector, *repository.Store) {
	t.Helper()
	gdb := dbtest.New(t)
	dbtest.Insert(t, gdb, profiles...)
	store := repository.NewStore(gdb, time.Second)
	return explore.NewSelector(store.Profiles), store
}

func TestNext_NeverReturnsExcluded(t *testing.T) {
	ctx := context.Background()
	sel, store := setupSelector(t,
		dbtest.CompleteProfile(1, "Viewer"),
		dbtest.CompleteProfile(2, "Liked"),
		dbtest.CompleteProfile(3, "Disliked"),
		dbtest.CompleteProfile(4, "Matched"),
		dbtest.CompleteProfile(5, "Banned"),
		db.Profile{UserID: 6, Username: "incomplete"},
		dbtest.CompleteProfile(7, "Fresh"),
	)
	_, err := store.Edges.AddLike(ctx, 1, 2)
	require.NoError(t, err)
	_, err = store.Edges.AddDislike(ctx, 1, 3)
	require.NoError(t, err)
	_, err = store.Edges.AddMatch(ctx, 4, 1)
	require.NoError(t, err)
	require.NoError(t, store.Moderation.BanUser(ctx, db.Ban{UserID: 5}))

	for i := 0; i < 20; i++ {
		pick, err := sel.Next(ctx, 1, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(7), pick.Profile.UserID)
		assert.False(t, pick.Reset)
	}
}

func TestNext_UniformPickUsesRand(t *testing.T) {
	ctx := context.Background()
	sel, _ := setupSelector(t,
		dbtest.CompleteProfile(1, "Viewer"),
		dbtest.CompleteProfile(2, "B"),
		dbtest.CompleteProfile(3, "C"),
	)

	var seen []int
	sel.WithRand(func(n int) int { seen = append(seen, n); return n - 1 })

	pick, err := sel.Next(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pick.Profile.UserID)
	assert.Equal(t, []int{2}, seen)
}

func TestNext_SingleCandidateRepeats(t *testing.T) {
	ctx := context.Background()
	sel, _ := setupSelector(t,
		dbtest.CompleteProfile(1, "Viewer"),
		dbtest.CompleteProfile(2, "Only"),
	)

	var recent []int64
	for i := 0; i < 5; i++ {
		pick, err := sel.Next(ctx, 1, recent)
		require.NoError(t, err)
		assert.Equal(t, int64(2), pick.Profile.UserID)
		if pick.Reset {
			recent = nil
		}
		recent = append(recent, pick.Profile.UserID)
	}
}

func TestNext_RecentIsSoftExclusion(t *testing.T) {
	ctx := context.Background()
	sel, _ := setupSelector(t,
		dbtest.CompleteProfile(1, "Viewer"),
		dbtest.CompleteProfile(2, "B"),
		dbtest.CompleteProfile(3, "C"),
	)

	pick, err := sel.Next(ctx, 1, []int64{2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), pick.Profile.UserID)
	assert.False(t, pick.Reset)

	pick, err = sel.Next(ctx, 1, []int64{2, 3})
	require.NoError(t, err)
	assert.True(t, pick.Reset)
}

func TestNext_NoCandidates(t *testing.T) {
	ctx := context.Background()
	sel, store := setupSelector(t,
		dbtest.CompleteProfile(1, "Viewer"),
		dbtest.CompleteProfile(2, "B"),
	)
	_, err := store.Edges.AddDislike(ctx, 1, 2)
	require.NoError(t, err)

	_, err = sel.Next(ctx, 1, []int64{2})
	assert.ErrorIs(t, err, explore.ErrNoCandidates)
}

// vanishingRepo reports a candidate that disappears before it is loaded.
type vanishingRepo struct {
	ids  []int64
	gone map[int64]bool
	// bare profiles load without a photo
	bare map[int64]bool
}

func (r vanishingRepo) EligibleCandidateIDs(context.Context, int64, []int64) ([]int64, error) {
	return r.ids, nil
}

func (r vanishingRepo) GetProfile(_ context.Context, id int64) (*db.Profile, error) {
	if r.gone[id] {
		return nil, svcErr.NotFound("profile vanished")
	}
	p := dbtest.CompleteProfile(id, "Still")
	if r.bare[id] {
		p.PhotoRef = ""
	}
	return &p, nil
}

func TestNext_SkipsVanishedProfile(t *testing.T) {
	sel := explore.NewSelector(vanishingRepo{ids: []int64{2, 3}, gone: map[int64]bool{2: true}}).
		WithRand(func(int) int { return 0 })

	pick, err := sel.Next(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pick.Profile.UserID)

	sel = explore.NewSelector(vanishingRepo{ids: []int64{2}, gone: map[int64]bool{2: true}})
	_, err = sel.Next(context.Background(), 1, nil)
	assert.ErrorIs(t, err, explore.ErrNoCandidates)
}

func TestNext_SkipsProfilesFailingCheck(t *testing.T) {
	policy := profile.NewPolicy(16, 25)
	repo := vanishingRepo{ids: []int64{2, 3}, bare: map[int64]bool{2: true}}

	sel := explore.NewSelector(repo).WithRand(func(int) int { return 0 }).WithCheck(policy.IsComplete)
	pick, err := sel.Next(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), pick.Profile.UserID)

	repo.ids = []int64{2}
	sel = explore.NewSelector(repo).WithCheck(policy.IsComplete)
	_, err = sel.Next(context.Background(), 1, nil)
	assert.ErrorIs(t, err, explore.ErrNoCandidates)

	// without the check the store's answer is taken as is
	pick, err = explore.NewSelector(repo).Next(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pick.Profile.UserID)
}
