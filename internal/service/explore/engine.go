package explore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oggyb/matchbot/internal/app"
	"github.com/oggyb/matchbot/internal/cache"
	"github.com/oggyb/matchbot/internal/chat"
	"github.com/oggyb/matchbot/internal/db"
	svcErr "github.com/oggyb/matchbot/internal/errors"
	"github.com/oggyb/matchbot/internal/ui"
)

const lockStripes = 64

// EdgeRepo is the slice of the store the engine writes.
type EdgeRepo interface {
	AddLike(ctx context.Context, likerID, likedID int64) (bool, error)
	AddDislike(ctx context.Context, dislikerID, dislikedID int64) (bool, error)
	AddMatch(ctx context.Context, a, b int64) (bool, error)
	HasLiked(ctx context.Context, likerID, likedID int64) (bool, error)
	CountLikesReceived(ctx context.Context, userID int64) (int64, error)
}

// ProfileRepo loads profiles for notifications.
type ProfileRepo interface {
	GetProfile(ctx context.Context, userID int64) (*db.Profile, error)
}

// BanRepo tells the engine who is banned.
type BanRepo interface {
	IsBanned(ctx context.Context, userID int64) (*db.Ban, error)
}

// Outcome describes what a like changed.
type Outcome struct {
	// Recorded is false when the like already existed.
	Recorded bool
	// Mutual is true when the target had liked the liker before.
	Mutual bool
	// NewMatch is true only for the like that created the match.
	NewMatch bool
	Target   *db.Profile
}

// Engine applies likes and dislikes and sends the resulting notices.
//
// Edge writes for a user pair are serialized on a striped lock, so two
// concurrent likes between the same users see each other's edge and only
// one of them creates the match. Notifications go out after the lock is
// released and only after the durable write succeeded.
type Engine struct {
	profiles  ProfileRepo
	edges     EdgeRepo
	bans      BanRepo
	cache     *cache.RedisCache
	messenger chat.Messenger
	log       *slog.Logger

	stripes [lockStripes]sync.Mutex
}

// NewEngine wires an engine from the application context.
func NewEngine(appCtx *app.AppContext, messenger chat.Messenger) *Engine {
	return &Engine{
		profiles:  appCtx.Store.Profiles,
		edges:     appCtx.Store.Edges,
		bans:      appCtx.Store.Moderation,
		cache:     appCtx.RedisCache,
		messenger: messenger,
		log:       appCtx.Logger,
	}
}

// Like records likerID -> targetID and resolves a match.
//
// Behavior:
//   - targetID 0 → NoActiveCandidate; liking yourself → Validation.
//   - Missing liker or target profile → NotFound.
//   - A banned target → NotFound, with nothing recorded or sent. The liker
//     already passed the access gate.
//   - A new match notifies both users with the other's name and handle.
//   - A new one-way like sends the target the liker's card with
//     like-back / decline buttons.
//   - A repeated like sends nothing.
func (e *Engine) Like(ctx context.Context, likerID, targetID int64) (Outcome, error) {
	if targetID == 0 {
		return Outcome{}, svcErr.NoActiveCandidate()
	}
	if likerID == targetID {
		return Outcome{}, svcErr.Validation("cannot like yourself")
	}

	liker, err := e.profiles.GetProfile(ctx, likerID)
	if err != nil {
		return Outcome{}, err
	}
	target, err := e.profiles.GetProfile(ctx, targetID)
	if err != nil {
		return Outcome{}, err
	}
	ban, err := e.bans.IsBanned(ctx, targetID)
	if err != nil {
		return Outcome{}, err
	}
	if ban != nil {
		return Outcome{}, svcErr.NotFound("profile unavailable")
	}

	out, err := e.recordLike(ctx, likerID, targetID)
	if err != nil {
		return Outcome{}, err
	}
	out.Target = target

	if out.Recorded {
		if err := e.cache.InvalidateLikesReceived(ctx, targetID); err != nil {
			e.log.Warn("likes cache invalidation failed", "user_id", targetID, "err", err)
		}
	}

	switch {
	case out.NewMatch:
		e.log.Info("match created", "user_a", likerID, "user_b", targetID)
		e.notify(ctx, likerID, ui.MsgItsAMatch+"\n"+ui.MatchText(target))
		e.notify(ctx, targetID, ui.MsgItsAMatch+"\n"+ui.MatchText(liker))
	case out.Recorded && !out.Mutual:
		if err := ui.SendProfile(ctx, e.messenger, targetID, ui.MsgYouWereLiked, liker, ui.LikeNoticeKeyboard(likerID)); err != nil {
			e.log.Warn("like notice not delivered", "user_id", targetID, "err", err)
		}
	}

	return out, nil
}

func (e *Engine) recordLike(ctx context.Context, likerID, targetID int64) (Outcome, error) {
	unlock := e.lockPair(likerID, targetID)
	defer unlock()

	var out Outcome
	created, err := e.edges.AddLike(ctx, likerID, targetID)
	if err != nil {
		return out, err
	}
	out.Recorded = created

	mutual, err := e.edges.HasLiked(ctx, targetID, likerID)
	if err != nil {
		return out, err
	}
	out.Mutual = mutual
	if !mutual {
		return out, nil
	}

	out.NewMatch, err = e.edges.AddMatch(ctx, likerID, targetID)
	return out, err
}

// Dislike records dislikerID -> targetID. It never notifies anyone.
func (e *Engine) Dislike(ctx context.Context, dislikerID, targetID int64) error {
	if targetID == 0 {
		return svcErr.NoActiveCandidate()
	}
	if dislikerID == targetID {
		return svcErr.Validation("cannot dislike yourself")
	}

	unlock := e.lockPair(dislikerID, targetID)
	defer unlock()

	_, err := e.edges.AddDislike(ctx, dislikerID, targetID)
	return err
}

// CountLikesReceived returns how many users liked userID.
// Cache-first strategy:
//  1. Attempts to read from Redis.
//  2. On a miss, falls back to the store.
//  3. On a store read, refreshes Redis with a 1h TTL.
func (e *Engine) CountLikesReceived(ctx context.Context, userID int64) (int64, error) {
	if n, ok, err := e.cache.GetLikesReceived(ctx, userID); err == nil && ok {
		return n, nil
	} else if err != nil {
		e.log.Warn("likes cache read failed", "user_id", userID, "err", err)
	}

	n, err := e.edges.CountLikesReceived(ctx, userID)
	if err != nil {
		return 0, err
	}
	_ = e.cache.SetLikesReceived(ctx, userID, n)
	return n, nil
}

func (e *Engine) notify(ctx context.Context, userID int64, text string) {
	// private chats share the user's id
	if err := e.messenger.SendText(ctx, userID, text, nil); err != nil {
		e.log.Warn("notification not delivered", "user_id", userID, "err", err)
	}
}

// lockPair locks the stripes of both users in index order.
func (e *Engine) lockPair(a, b int64) func() {
	i, j := stripe(a), stripe(b)
	if i > j {
		i, j = j, i
	}
	e.stripes[i].Lock()
	if i != j {
		e.stripes[j].Lock()
	}
	return func() {
		if i != j {
			e.stripes[j].Unlock()
		}
		e.stripes[i].Unlock()
	}
}

func stripe(id int64) int {
	return int((id%lockStripes + lockStripes) % lockStripes)
}
