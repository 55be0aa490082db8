package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// DefaultTimeout bounds every store call when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Store bundles the repositories sharing one connection.
type Store struct {
	Profiles   *ProfileRepository
	Edges      *EdgeRepository
	Moderation *ModerationRepository
}

// NewStore wires all repositories over database. A non-positive timeout
// falls back to DefaultTimeout.
func NewStore(database *gorm.DB, timeout time.Duration) *Store {
	c := conn{db: database, timeout: timeout}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	return &Store{
		Profiles:   &ProfileRepository{conn: c},
		Edges:      &EdgeRepository{conn: c},
		Moderation: &ModerationRepository{conn: c},
	}
}

// conn scopes each query to a bounded context so a stuck store surfaces as
// a timeout instead of hanging a conversation.
type conn struct {
	db      *gorm.DB
	timeout time.Duration
}

func (c conn) with(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return c.db.WithContext(ctx), cancel
}

// DB exposes the underlying handle for snapshots and tests.
func (c conn) DB() *gorm.DB { return c.db }

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
