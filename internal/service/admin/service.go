package admin

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oggyb/matchbot/internal/app"
	"github.com/oggyb/matchbot/internal/cache"
	"github.com/oggyb/matchbot/internal/db"
	svcErr "github.com/oggyb/matchbot/internal/errors"
	"github.com/oggyb/matchbot/internal/repository"
	"github.com/oggyb/matchbot/internal/ui"
)

// BanPageSize is the number of bans per list page.
const BanPageSize = 10

var (
	ErrCannotBanAdmin    = errors.New("admins cannot be banned")
	ErrBadUserID         = errors.New("user id must be a number")
	ErrBadMaintenanceEnd = errors.New("maintenance end must look like 2006-01-02 15:04")
)

// Service implements the operator surface: statistics, maintenance mode
// and ban management.
type Service struct {
	store   *repository.Store
	cache   *cache.RedisCache
	log     *slog.Logger
	isAdmin func(int64) bool

	mu            sync.Mutex
	onMaintenance []func(on bool)
}

// NewService creates the admin service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		store:   appCtx.Store,
		cache:   appCtx.RedisCache,
		log:     appCtx.Logger,
		isAdmin: appCtx.Config.IsAdmin,
	}
}

// OnMaintenance registers an observer called after every maintenance change.
func (s *Service) OnMaintenance(f func(on bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMaintenance = append(s.onMaintenance, f)
}

// Stats returns service counters, served from Redis for up to 30s.
func (s *Service) Stats(ctx context.Context) (ui.StatsView, error) {
	var view ui.StatsView
	if ok, err := s.cache.GetJSON(ctx, cache.KeyStats, &view); err == nil && ok {
		return view, nil
	}

	var err error
	if view.Profiles, err = s.store.Profiles.CountProfiles(ctx); err != nil {
		return view, err
	}
	if view.CompleteProfiles, err = s.store.Profiles.CountCompleteProfiles(ctx); err != nil {
		return view, err
	}
	if view.Likes, err = s.store.Edges.CountLikes(ctx); err != nil {
		return view, err
	}
	if view.Dislikes, err = s.store.Edges.CountDislikes(ctx); err != nil {
		return view, err
	}
	if view.Matches, err = s.store.Edges.CountMatches(ctx); err != nil {
		return view, err
	}
	if view.ActiveBans, err = s.store.Moderation.CountBanned(ctx); err != nil {
		return view, err
	}
	settings, err := s.store.Moderation.GetMaintenanceStatus(ctx)
	if err != nil {
		return view, err
	}
	view.Maintenance = settings.MaintenanceMode
	view.GeneratedAt = time.Now().UTC()

	if err := s.cache.SetJSON(ctx, cache.KeyStats, view, cache.StatsTTL); err != nil {
		s.log.Warn("stats cache write failed", "err", err)
	}
	return view, nil
}

// ToggleMaintenance flips maintenance mode and returns the new value.
func (s *Service) ToggleMaintenance(ctx context.Context, by int64) (bool, error) {
	settings, err := s.store.Moderation.GetMaintenanceStatus(ctx)
	if err != nil {
		return false, err
	}
	settings.MaintenanceMode = !settings.MaintenanceMode
	settings.UpdatedBy = by
	if err := s.store.Moderation.SetMaintenanceStatus(ctx, settings); err != nil {
		return false, err
	}

	s.log.Info("maintenance toggled", "on", settings.MaintenanceMode, "by", by)
	s.invalidateStats(ctx)
	s.notifyMaintenance(settings.MaintenanceMode)
	return settings.MaintenanceMode, nil
}

// SetMaintenanceMessage stores the notice shown during maintenance and its
// optional planned end. The mode itself is unchanged.
func (s *Service) SetMaintenanceMessage(ctx context.Context, by int64, text string, end *time.Time) error {
	settings, err := s.store.Moderation.GetMaintenanceStatus(ctx)
	if err != nil {
		return err
	}
	settings.MaintenanceMessage = text
	settings.MaintenanceEnd = end
	settings.UpdatedBy = by
	return s.store.Moderation.SetMaintenanceStatus(ctx, settings)
}

// Ban opens a ban for target. Admin ids are refused.
func (s *Service) Ban(ctx context.Context, by, target int64, reason string) (*db.Ban, error) {
	if s.isAdmin(target) {
		return nil, &svcErr.Error{Kind: svcErr.KindValidation, Msg: "ban target is an admin", Cause: ErrCannotBanAdmin}
	}

	ban := db.Ban{UserID: target, Reason: reason, BannedBy: by}
	p, err := s.store.Profiles.GetProfile(ctx, target)
	switch {
	case err == nil:
		ban.Username = p.Username
	case !svcErr.IsNotFound(err):
		return nil, err
	}

	if err := s.store.Moderation.BanUser(ctx, ban); err != nil {
		return nil, err
	}
	s.log.Info("user banned", "target", target, "by", by, "reason", reason)
	s.invalidateStats(ctx)
	return &ban, nil
}

// Unban closes target's ban. closed is false when target was not banned.
func (s *Service) Unban(ctx context.Context, by, target int64) (closed bool, err error) {
	closed, err = s.store.Moderation.UnbanUser(ctx, target)
	if err != nil {
		return false, err
	}
	if closed {
		s.log.Info("user unbanned", "target", target, "by", by)
		s.invalidateStats(ctx)
	}
	return closed, nil
}

// ListBanned returns one page of current bans and the next-page cursor.
func (s *Service) ListBanned(ctx context.Context, cursor string) ([]db.Ban, string, error) {
	return s.store.Moderation.ListBanned(ctx, cursor, BanPageSize)
}

// ParseBanInput parses "<id> [reason]".
func ParseBanInput(raw string) (target int64, reason string, err error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, "", badUserID()
	}
	target, err = strconv.ParseInt(fields[0], 10, 64)
	if err != nil || target <= 0 {
		return 0, "", badUserID()
	}
	return target, strings.Join(fields[1:], " "), nil
}

// ParseUserID parses a bare numeric user id.
func ParseUserID(raw string) (int64, error) {
	id, _, err := ParseBanInput(raw)
	if err != nil || len(strings.Fields(raw)) != 1 {
		return 0, badUserID()
	}
	return id, nil
}

// ParseMaintenanceInput parses "text" or "text | 2006-01-02 15:04" (UTC).
func ParseMaintenanceInput(raw string) (text string, end *time.Time, err error) {
	text, when, found := strings.Cut(raw, "|")
	text = strings.TrimSpace(text)
	if !found {
		return text, nil, nil
	}
	ts, err := ui.ParseTime(when)
	if err != nil {
		return "", nil, &svcErr.Error{Kind: svcErr.KindValidation, Msg: strings.TrimSpace(when), Cause: ErrBadMaintenanceEnd}
	}
	return text, &ts, nil
}

func badUserID() error {
	return &svcErr.Error{Kind: svcErr.KindValidation, Msg: "bad user id", Cause: ErrBadUserID}
}

func (s *Service) invalidateStats(ctx context.Context) {
	if err := s.cache.Del(ctx, cache.KeyStats); err != nil {
		s.log.Warn("stats cache invalidation failed", "err", err)
	}
}

func (s *Service) notifyMaintenance(on bool) {
	s.mu.Lock()
	observers := append([]func(bool){}, s.onMaintenance...)
	s.mu.Unlock()
	for _, f := range observers {
		f(on)
	}
}
