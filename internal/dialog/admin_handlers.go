package dialog

import (
	"context"

	"github.com/oggyb/matchbot/internal/service/admin"
	"github.com/oggyb/matchbot/internal/ui"
)

func (m *Machine) onAdminPanel(ctx context.Context, t *turn) error {
	switch t.ev.Text() {
	case ui.BtnStats:
		view, err := m.Admin.Stats(ctx)
		if err != nil {
			return err
		}
		m.reply(ctx, t, ui.RenderStats(view), ui.AdminKeyboard())
		return nil

	case ui.BtnMaintenance:
		on, err := m.Admin.ToggleMaintenance(ctx, t.ev.UserID)
		if err != nil {
			return err
		}
		m.reply(ctx, t, ui.MaintenanceToggledMessage(on), ui.AdminKeyboard())
		return nil

	case ui.BtnMaintenanceMessage:
		return m.enter(ctx, t, AdminMaintenanceMessage)
	case ui.BtnBans:
		return m.enter(ctx, t, BanManagement)
	case ui.BtnMenu:
		t.sess.State = MainMenu
		m.reply(ctx, t, ui.MsgBackToMenu, ui.MainMenuKeyboard(t.isAdmin))
		return nil
	}
	return m.reprompt(ctx, t)
}

func (m *Machine) onMaintenanceMessage(ctx context.Context, t *turn) error {
	if t.ev.Text() == ui.BtnBack {
		return m.enter(ctx, t, AdminPanel)
	}

	text, end, err := admin.ParseMaintenanceInput(t.ev.Text())
	if err != nil {
		return err
	}
	if text == "" {
		return m.reprompt(ctx, t)
	}
	if err := m.Admin.SetMaintenanceMessage(ctx, t.ev.UserID, text, end); err != nil {
		return err
	}
	t.sess.State = AdminPanel
	m.reply(ctx, t, ui.MsgMaintenanceSaved, ui.AdminKeyboard())
	return nil
}

func (m *Machine) onBanManagement(ctx context.Context, t *turn) error {
	switch t.ev.Text() {
	case ui.BtnBan:
		return m.enter(ctx, t, BanAwaitingTarget)
	case ui.BtnUnban:
		return m.enter(ctx, t, UnbanAwaitingTarget)
	case ui.BtnBanList:
		return m.listBans(ctx, t, "")
	case ui.BtnBack:
		return m.enter(ctx, t, AdminPanel)
	}
	return m.reprompt(ctx, t)
}

func (m *Machine) onBanTarget(ctx context.Context, t *turn) error {
	if t.ev.Text() == ui.BtnBack {
		return m.enter(ctx, t, BanManagement)
	}

	target, reason, err := admin.ParseBanInput(t.ev.Text())
	if err != nil {
		return err
	}
	ban, err := m.Admin.Ban(ctx, t.ev.UserID, target, reason)
	if err != nil {
		return err
	}

	t.sess.State = BanManagement
	m.reply(ctx, t, ui.BannedMessage(ban.UserID, ban.Reason), ui.BanManagementKeyboard())
	m.say(ctx, ban.UserID, ui.BanNotice(ban.Reason), ui.RemoveKeyboard(), t.log)
	return nil
}

func (m *Machine) onUnbanTarget(ctx context.Context, t *turn) error {
	if t.ev.Text() == ui.BtnBack {
		return m.enter(ctx, t, BanManagement)
	}

	target, err := admin.ParseUserID(t.ev.Text())
	if err != nil {
		return err
	}
	if err := m.unban(ctx, t, target); err != nil {
		return err
	}
	t.sess.State = BanManagement
	return nil
}

// unban closes target's ban and tells both sides. Used by the typed flow
// and by the inline button under the ban list.
func (m *Machine) unban(ctx context.Context, t *turn, target int64) error {
	closed, err := m.Admin.Unban(ctx, t.ev.UserID, target)
	if err != nil {
		return err
	}
	if !closed {
		m.reply(ctx, t, ui.MsgNotBanned, ui.BanManagementKeyboard())
		return nil
	}
	m.reply(ctx, t, ui.UnbannedMessage(target), ui.BanManagementKeyboard())
	m.say(ctx, target, ui.MsgUnbannedNotice, nil, t.log)
	return nil
}

func (m *Machine) listBans(ctx context.Context, t *turn, cursor string) error {
	bans, next, err := m.Admin.ListBanned(ctx, cursor)
	if err != nil {
		return err
	}
	if len(bans) == 0 {
		m.reply(ctx, t, ui.MsgNoBans, nil)
		return nil
	}
	text, kb := ui.RenderBanList(bans, next)
	m.reply(ctx, t, text, kb)
	return nil
}
