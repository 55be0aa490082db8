package access

import (
	"context"

	"github.com/oggyb/matchbot/internal/db"
	svcErr "github.com/oggyb/matchbot/internal/errors"
)

type Reason string

const (
	ReasonNone        Reason = ""
	ReasonBanned      Reason = "banned"
	ReasonMaintenance Reason = "maintenance"
)

// ModerationRepo is the slice of the store the gate reads.
type ModerationRepo interface {
	IsBanned(ctx context.Context, userID int64) (*db.Ban, error)
	GetMaintenanceStatus(ctx context.Context) (db.ServiceSettings, error)
}

// Verdict is the outcome of Admit. Ban and Settings carry what the caller
// needs to render the denial notice.
type Verdict struct {
	Allowed  bool
	Reason   Reason
	Ban      *db.Ban
	Settings db.ServiceSettings
}

// Err returns an AccessDenied error for a rejected verdict, nil otherwise.
func (v Verdict) Err() error {
	if v.Allowed {
		return nil
	}
	return svcErr.AccessDenied(string(v.Reason))
}

// Gate applies ban and maintenance policy before any state transition.
type Gate struct {
	repo    ModerationRepo
	isAdmin func(int64) bool
}

// NewGate creates a gate. isAdmin may be nil when there are no admins.
func NewGate(repo ModerationRepo, isAdmin func(int64) bool) *Gate {
	if isAdmin == nil {
		isAdmin = func(int64) bool { return false }
	}
	return &Gate{repo: repo, isAdmin: isAdmin}
}

// IsAdmin reports whether userID is on the admin allow-list.
func (g *Gate) IsAdmin(userID int64) bool { return g.isAdmin(userID) }

// Admit decides whether userID may proceed. Admins always pass without a
// store lookup. The ban check runs before the maintenance check, so a
// banned user sees the ban notice even during maintenance.
func (g *Gate) Admit(ctx context.Context, userID int64) (Verdict, error) {
	if g.isAdmin(userID) {
		return Verdict{Allowed: true}, nil
	}

	ban, err := g.repo.IsBanned(ctx, userID)
	if err != nil {
		return Verdict{}, err
	}
	if ban != nil {
		return Verdict{Reason: ReasonBanned, Ban: ban}, nil
	}

	settings, err := g.repo.GetMaintenanceStatus(ctx)
	if err != nil {
		return Verdict{}, err
	}
	if settings.MaintenanceMode {
		return Verdict{Reason: ReasonMaintenance, Settings: settings}, nil
	}

	return Verdict{Allowed: true, Settings: settings}, nil
}
