package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/matchbot/internal/db"
	svcErr "github.com/oggyb/matchbot/internal/errors"
	"github.com/oggyb/matchbot/internal/utils/pagination"
)

// ModerationRepository stores bans and the service settings singleton.
type ModerationRepository struct {
	conn
}

// IsBanned returns the open ban record for userID, or nil when the user is
// not currently banned.
func (r *ModerationRepository) IsBanned(ctx context.Context, userID int64) (*db.Ban, error) {
	q, cancel := r.with(ctx)
	defer cancel()

	var bans []db.Ban
	err := q.Where("user_id = ? AND unbanned_at IS NULL", userID).Limit(1).Find(&bans).Error
	if err != nil {
		return nil, svcErr.Map(fmt.Errorf("is banned %d: %w", userID, err))
	}
	if len(bans) == 0 {
		return nil, nil
	}
	return &bans[0], nil
}

// BanUser opens (or reopens) the ban record for ban.UserID.
//
// Behavior:
//   - If a record exists → it is replaced and unbanned_at is cleared.
//   - BannedAt defaults to now.
func (r *ModerationRepository) BanUser(ctx context.Context, ban db.Ban) error {
	q, cancel := r.with(ctx)
	defer cancel()

	if ban.BannedAt.IsZero() {
		ban.BannedAt = now()
	}
	ban.UnbannedAt = nil

	err := q.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "reason", "banned_by", "banned_at", "unbanned_at"}),
	}).Create(&ban).Error
	if err != nil {
		return svcErr.Map(fmt.Errorf("ban user %d: %w", ban.UserID, err))
	}
	return nil
}

// UnbanUser closes the open ban record. closed is false when the user was
// not banned, which is not an error.
func (r *ModerationRepository) UnbanUser(ctx context.Context, userID int64) (closed bool, err error) {
	q, cancel := r.with(ctx)
	defer cancel()

	res := q.Model(&db.Ban{}).
		Where("user_id = ? AND unbanned_at IS NULL", userID).
		Update("unbanned_at", now())
	if res.Error != nil {
		return false, svcErr.Map(fmt.Errorf("unban user %d: %w", userID, res.Error))
	}
	return res.RowsAffected > 0, nil
}

// ListBanned returns currently banned users, newest first.
//
// Behavior:
//   - Ordered by banned_at DESC, user_id DESC.
//   - Supports cursor-based pagination via token; next is "" on the last page.
func (r *ModerationRepository) ListBanned(ctx context.Context, token string, limit int) (bans []db.Ban, next string, err error) {
	cursor, err := pagination.Decode(token)
	if err != nil {
		return nil, "", svcErr.Validation(err.Error())
	}
	if limit <= 0 {
		limit = 10
	}

	q, cancel := r.with(ctx)
	defer cancel()

	query := q.Where("unbanned_at IS NULL").
		Order("banned_at DESC, user_id DESC").
		Limit(limit + 1)

	// apply cursor
	if !cursor.IsZero() {
		ts := time.UnixMilli(cursor.Unix).UTC()
		query = query.Where(
			"(banned_at < ? OR (banned_at = ? AND user_id < ?))",
			ts, ts, cursor.ID,
		)
	}

	if err := query.Find(&bans).Error; err != nil {
		return nil, "", svcErr.Map(fmt.Errorf("list banned: %w", err))
	}

	if len(bans) > limit {
		last := bans[limit-1]
		next, _ = pagination.Encode(pagination.Cursor{
			ID:   last.UserID,
			Unix: last.BannedAt.UnixMilli(),
		})
		bans = bans[:limit]
	}
	return bans, next, nil
}

// CountBanned returns how many users are currently banned.
func (r *ModerationRepository) CountBanned(ctx context.Context) (int64, error) {
	q, cancel := r.with(ctx)
	defer cancel()

	var count int64
	if err := q.Model(&db.Ban{}).Where("unbanned_at IS NULL").Count(&count).Error; err != nil {
		return 0, svcErr.Map(err)
	}
	return count, nil
}

// GetMaintenanceStatus returns the settings singleton. A missing row reads
// as maintenance off.
func (r *ModerationRepository) GetMaintenanceStatus(ctx context.Context) (db.ServiceSettings, error) {
	q, cancel := r.with(ctx)
	defer cancel()

	var s db.ServiceSettings
	err := q.Where("id = ?", db.SettingsID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.ServiceSettings{ID: db.SettingsID}, nil
	}
	if err != nil {
		return db.ServiceSettings{}, svcErr.Map(fmt.Errorf("get maintenance status: %w", err))
	}
	return s, nil
}

// SetMaintenanceStatus overwrites the settings singleton.
func (r *ModerationRepository) SetMaintenanceStatus(ctx context.Context, s db.ServiceSettings) error {
	q, cancel := r.with(ctx)
	defer cancel()

	s.ID = db.SettingsID
	s.UpdatedAt = now()
	err := q.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"maintenance_mode", "maintenance_message", "maintenance_end", "updated_by", "updated_at",
		}),
	}).Create(&s).Error
	if err != nil {
		return svcErr.Map(fmt.Errorf("set maintenance status: %w", err))
	}
	return nil
}
