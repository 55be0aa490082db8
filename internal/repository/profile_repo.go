package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/oggyb/matchbot/internal/db"
	svcErr "github.com/oggyb/matchbot/internal/errors"
)

// completeClause mirrors the completeness rule of the profile policy in SQL
// so the candidate pool can be filtered by the store.
const completeClause = `p.username <> '' AND p.gender <> '' AND p.display_name <> ''
	AND p.age BETWEEN 16 AND 100 AND p.course <> '' AND p.bio <> '' AND p.photo_ref <> ''`

// profileColumns are rewritten on upsert; created_at is kept from the first insert.
var profileColumns = []string{
	"username", "gender", "display_name", "age", "course", "bio", "photo_ref", "last_active_at",
}

// ProfileRepository provides data access methods for the Profile model.
type ProfileRepository struct {
	conn
}

// GetProfile loads a profile by user id. A missing row maps to NotFound.
func (r *ProfileRepository) GetProfile(ctx context.Context, userID int64) (*db.Profile, error) {
	q, cancel := r.with(ctx)
	defer cancel()

	var p db.Profile
	if err := q.Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, svcErr.Map(fmt.Errorf("get profile %d: %w", userID, err))
	}
	return &p, nil
}

// UpsertProfile inserts or overwrites a profile.
//
// Behavior:
//   - If the user_id row exists → every editable column is replaced.
//   - created_at is preserved.
//   - last_active_at is refreshed.
//
// Safe to call twice with the same arguments.
func (r *ProfileRepository) UpsertProfile(ctx context.Context, p *db.Profile) error {
	q, cancel := r.with(ctx)
	defer cancel()

	p.LastActiveAt = now()
	err := q.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(profileColumns),
	}).Create(p).Error
	if err != nil {
		return svcErr.Map(fmt.Errorf("upsert profile %d: %w", p.UserID, err))
	}
	return nil
}

// TouchProfile creates the profile row on first contact and refreshes the
// username and activity time on every later one. An empty username never
// overwrites a stored one.
func (r *ProfileRepository) TouchProfile(ctx context.Context, userID int64, username string) (*db.Profile, error) {
	q, cancel := r.with(ctx)
	defer cancel()

	columns := []string{"last_active_at"}
	if username != "" {
		columns = append(columns, "username")
	}

	p := db.Profile{UserID: userID, Username: username, LastActiveAt: now()}
	err := q.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&p).Error
	if err != nil {
		return nil, svcErr.Map(fmt.Errorf("touch profile %d: %w", userID, err))
	}

	var stored db.Profile
	if err := q.Where("user_id = ?", userID).First(&stored).Error; err != nil {
		return nil, svcErr.Map(fmt.Errorf("reload profile %d: %w", userID, err))
	}
	return &stored, nil
}

// EligibleCandidateIDs returns every profile id the viewer may be shown.
//
// Behavior:
//   - Only complete profiles are returned; the viewer never sees themselves.
//   - Excludes profiles with an open ban.
//   - Excludes profiles the viewer already liked, disliked or matched.
//   - Excludes the ids in exclude (soft, session-scoped filter).
//   - Ordered by user_id so callers get a deterministic pool.
func (r *ProfileRepository) EligibleCandidateIDs(ctx context.Context, viewerID int64, exclude []int64) ([]int64, error) {
	q, cancel := r.with(ctx)
	defer cancel()

	query := q.Table("profiles p").
		Where("p.user_id <> ?", viewerID).
		Where(completeClause).
		Where(`NOT EXISTS (
			SELECT 1 FROM bans b
			WHERE b.user_id = p.user_id AND b.unbanned_at IS NULL)`).
		Where(`NOT EXISTS (
			SELECT 1 FROM likes l
			WHERE l.liker_id = ? AND l.liked_id = p.user_id)`, viewerID).
		Where(`NOT EXISTS (
			SELECT 1 FROM dislikes d
			WHERE d.disliker_id = ? AND d.disliked_id = p.user_id)`, viewerID).
		Where(`NOT EXISTS (
			SELECT 1 FROM matches m
			WHERE (m.user_low_id = ? AND m.user_high_id = p.user_id)
			   OR (m.user_high_id = ? AND m.user_low_id = p.user_id))`, viewerID, viewerID)

	if len(exclude) > 0 {
		query = query.Where("p.user_id NOT IN ?", exclude)
	}

	var ids []int64
	if err := query.Order("p.user_id").Pluck("p.user_id", &ids).Error; err != nil {
		return nil, svcErr.Map(fmt.Errorf("eligible candidates for %d: %w", viewerID, err))
	}
	return ids, nil
}

// CountProfiles returns how many profiles exist, complete or not.
func (r *ProfileRepository) CountProfiles(ctx context.Context) (int64, error) {
	q, cancel := r.with(ctx)
	defer cancel()

	var count int64
	if err := q.Model(&db.Profile{}).Count(&count).Error; err != nil {
		return 0, svcErr.Map(err)
	}
	return count, nil
}

// CountCompleteProfiles returns how many profiles can be shown to others.
func (r *ProfileRepository) CountCompleteProfiles(ctx context.Context) (int64, error) {
	q, cancel := r.with(ctx)
	defer cancel()

	var count int64
	if err := q.Table("profiles p").Where(completeClause).Count(&count).Error; err != nil {
		return 0, svcErr.Map(err)
	}
	return count, nil
}
