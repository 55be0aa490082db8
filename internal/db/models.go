package db

import (
	"time"
)

// Profile is a user's dating card. UserID is the Telegram user id, so it is
// never auto-generated.
//
// A profile is complete when every validated field below is set; the
// validate tags are checked by the profile policy, not by gorm.
type Profile struct {
	UserID       int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Username     string    `gorm:"size:64" json:"username" validate:"required"`
	Gender       string    `gorm:"size:32" json:"gender" validate:"required"`
	DisplayName  string    `gorm:"size:64" json:"display_name" validate:"required"`
	Age          int       `json:"age" validate:"required,min=16,max=100"`
	Course       string    `gorm:"size:64" json:"course" validate:"required"`
	Bio          string    `gorm:"size:2048" json:"bio" validate:"required"`
	PhotoRef     string    `gorm:"size:255" json:"photo_ref" validate:"required"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	LastActiveAt time.Time `gorm:"index" json:"last_active_at"`
}

func (Profile) TableName() string { return "profiles" }

// Like is a directed, append-only interest signal.
//
// Composite PK: (LikerID, LikedID)
//   - At most one row per ordered pair.
//
// Indexes:
//   - idx_likes_liked(liked_id) serves "who liked me" counts.
type Like struct {
	LikerID   int64     `gorm:"primaryKey;autoIncrement:false" json:"liker_id"`
	LikedID   int64     `gorm:"primaryKey;autoIncrement:false;index:idx_likes_liked" json:"liked_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Like) TableName() string { return "likes" }

// Dislike is a directed, append-only rejection. It may coexist with an
// earlier Like for the same ordered pair.
type Dislike struct {
	DislikerID int64     `gorm:"primaryKey;autoIncrement:false" json:"disliker_id"`
	DislikedID int64     `gorm:"primaryKey;autoIncrement:false" json:"disliked_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Dislike) TableName() string { return "dislikes" }

// Match is an undirected pair stored with UserLowID < UserHighID so each
// unordered pair has at most one row.
type Match struct {
	UserLowID  int64     `gorm:"primaryKey;autoIncrement:false" json:"user_low_id"`
	UserHighID int64     `gorm:"primaryKey;autoIncrement:false;index:idx_matches_high" json:"user_high_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Match) TableName() string { return "matches" }

// Ban is a moderation record. The user is banned while UnbannedAt is nil.
type Ban struct {
	UserID     int64      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Username   string     `gorm:"size:64" json:"username"`
	Reason     string     `gorm:"size:512" json:"reason"`
	BannedBy   int64      `json:"banned_by"`
	BannedAt   time.Time  `gorm:"index" json:"banned_at"`
	UnbannedAt *time.Time `json:"unbanned_at,omitempty"`
}

func (Ban) TableName() string { return "bans" }

// SettingsID is the primary key of the ServiceSettings singleton row.
const SettingsID = 1

// ServiceSettings holds service-wide switches. Exactly one row (ID=1).
type ServiceSettings struct {
	ID                 uint       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	MaintenanceMode    bool       `gorm:"not null;default:false" json:"maintenance_mode"`
	MaintenanceMessage string     `gorm:"size:1024" json:"maintenance_message"`
	MaintenanceEnd     *time.Time `json:"maintenance_end,omitempty"`
	UpdatedBy          int64      `json:"updated_by"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ServiceSettings) TableName() string { return "service_settings" }

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{&Profile{}, &Like{}, &Dislike{}, &Match{}, &Ban{}, &ServiceSettings{}}
}
