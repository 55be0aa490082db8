package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/oggyb/matchbot/internal/db"
	svcErr "github.com/oggyb/matchbot/internal/errors"
)

// EdgeRepository provides data access methods for likes, dislikes and
// matches between users. All writes are INSERT .. ON CONFLICT DO NOTHING,
// so retries never produce a second row.
type EdgeRepository struct {
	conn
}

// AddLike records liker -> liked.
//
// Behavior:
//   - If the pair exists → nothing changes and created is false.
//   - If it doesn't exist → a new row is inserted and created is true.
//
// Example:
//
//	repo.AddLike(ctx, 1, 2) // user 1 liked user 2
func (r *EdgeRepository) AddLike(ctx context.Context, likerID, likedID int64) (created bool, err error) {
	q, cancel := r.with(ctx)
	defer cancel()

	res := q.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.Like{LikerID: likerID, LikedID: likedID})
	if res.Error != nil {
		return false, svcErr.Map(fmt.Errorf("add like %d->%d: %w", likerID, likedID, res.Error))
	}
	return res.RowsAffected > 0, nil
}

// AddDislike records disliker -> disliked. Same idempotence as AddLike.
func (r *EdgeRepository) AddDislike(ctx context.Context, dislikerID, dislikedID int64) (created bool, err error) {
	q, cancel := r.with(ctx)
	defer cancel()

	res := q.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.Dislike{DislikerID: dislikerID, DislikedID: dislikedID})
	if res.Error != nil {
		return false, svcErr.Map(fmt.Errorf("add dislike %d->%d: %w", dislikerID, dislikedID, res.Error))
	}
	return res.RowsAffected > 0, nil
}

// AddMatch records the unordered pair {a, b} in canonical order.
// created is true only for the call that inserted the row.
func (r *EdgeRepository) AddMatch(ctx context.Context, a, b int64) (created bool, err error) {
	q, cancel := r.with(ctx)
	defer cancel()

	lo, hi := canonical(a, b)
	res := q.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.Match{UserLowID: lo, UserHighID: hi})
	if res.Error != nil {
		return false, svcErr.Map(fmt.Errorf("add match %d<->%d: %w", lo, hi, res.Error))
	}
	return res.RowsAffected > 0, nil
}

// HasLiked checks whether liker has liked liked.
//
// Example:
//
//	repo.HasLiked(ctx, 1, 2) // -> true if user 1 liked user 2
func (r *EdgeRepository) HasLiked(ctx context.Context, likerID, likedID int64) (bool, error) {
	q, cancel := r.with(ctx)
	defer cancel()

	var count int64
	err := q.Model(&db.Like{}).
		Where("liker_id = ? AND liked_id = ?", likerID, likedID).
		Count(&count).Error
	if err != nil {
		return false, svcErr.Map(fmt.Errorf("has liked %d->%d: %w", likerID, likedID, err))
	}
	return count > 0, nil
}

// MatchesOf returns every user matched with userID, whichever side of the
// canonical pair they were stored on.
func (r *EdgeRepository) MatchesOf(ctx context.Context, userID int64) ([]int64, error) {
	q, cancel := r.with(ctx)
	defer cancel()

	var low, high []int64
	if err := q.Model(&db.Match{}).Where("user_high_id = ?", userID).
		Order("user_low_id").Pluck("user_low_id", &low).Error; err != nil {
		return nil, svcErr.Map(err)
	}
	if err := q.Model(&db.Match{}).Where("user_low_id = ?", userID).
		Order("user_high_id").Pluck("user_high_id", &high).Error; err != nil {
		return nil, svcErr.Map(err)
	}
	return append(low, high...), nil
}

// CountLikesReceived returns how many users liked userID.
// Used in conjunction with Redis cache (DB is fallback).
func (r *EdgeRepository) CountLikesReceived(ctx context.Context, userID int64) (int64, error) {
	q, cancel := r.with(ctx)
	defer cancel()

	var count int64
	if err := q.Model(&db.Like{}).Where("liked_id = ?", userID).Count(&count).Error; err != nil {
		return 0, svcErr.Map(err)
	}
	return count, nil
}

// CountLikes returns the total number of like edges.
func (r *EdgeRepository) CountLikes(ctx context.Context) (int64, error) {
	return r.count(ctx, &db.Like{})
}

// CountDislikes returns the total number of dislike edges.
func (r *EdgeRepository) CountDislikes(ctx context.Context) (int64, error) {
	return r.count(ctx, &db.Dislike{})
}

// CountMatches returns the total number of matched pairs.
func (r *EdgeRepository) CountMatches(ctx context.Context) (int64, error) {
	return r.count(ctx, &db.Match{})
}

func (r *EdgeRepository) count(ctx context.Context, model any) (int64, error) {
	q, cancel := r.with(ctx)
	defer cancel()

	var count int64
	if err := q.Model(model).Count(&count).Error; err != nil {
		return 0, svcErr.Map(err)
	}
	return count, nil
}

func canonical(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
