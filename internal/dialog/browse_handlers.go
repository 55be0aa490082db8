package dialog

import (
	"context"
	"errors"
	"strconv"
	"strings"

	svcErr "github.com/oggyb/matchbot/internal/errors"
	"github.com/oggyb/matchbot/internal/service/explore"
	"github.com/oggyb/matchbot/internal/ui"
)

func (m *Machine) onMainMenu(ctx context.Context, t *turn) error {
	switch t.ev.Text() {
	case ui.BtnSearch:
		return m.showNext(ctx, t)
	case ui.BtnSettings:
		return m.enter(ctx, t, SettingsMenu)
	case ui.BtnAdmin:
		if t.isAdmin {
			return m.enter(ctx, t, AdminPanel)
		}
	}
	return m.reprompt(ctx, t)
}

// showNext puts the next candidate on screen, or returns to the main menu
// when the pool is empty.
func (m *Machine) showNext(ctx context.Context, t *turn) error {
	pick, err := m.Selector.Next(ctx, t.ev.UserID, t.sess.Viewed)
	if errors.Is(err, explore.ErrNoCandidates) {
		t.sess.State = MainMenu
		t.sess.Viewing = 0
		m.reply(ctx, t, ui.MsgNoProfiles, ui.MainMenuKeyboard(t.isAdmin))
		return nil
	}
	if err != nil {
		return err
	}

	if pick.Reset {
		t.log.Debug("viewed ring reset")
		t.sess.Viewed = nil
	}
	t.sess.remember(pick.Profile.UserID)
	t.sess.Viewing = pick.Profile.UserID
	t.sess.State = Browsing

	if err := ui.SendProfile(ctx, m.messenger, t.ev.ChatID, "", pick.Profile, ui.BrowseKeyboard()); err != nil {
		t.log.Warn("candidate not delivered", "candidate", pick.Profile.UserID, "err", err)
	}
	return nil
}

func (m *Machine) onBrowsing(ctx context.Context, t *turn) error {
	switch t.ev.Text() {
	case ui.BtnLike:
		out, err := m.Engine.Like(ctx, t.ev.UserID, t.sess.Viewing)
		if svcErr.IsNotFound(err) {
			m.reply(ctx, t, ui.MsgProfileGone, nil)
			return m.showNext(ctx, t)
		}
		if err != nil {
			return err
		}
		if !out.NewMatch {
			m.reply(ctx, t, ui.MsgLikeSent, nil)
		}
		return m.showNext(ctx, t)

	case ui.BtnDislike:
		if err := m.Engine.Dislike(ctx, t.ev.UserID, t.sess.Viewing); err != nil {
			return err
		}
		m.reply(ctx, t, ui.MsgSkipped, nil)
		return m.showNext(ctx, t)

	case ui.BtnMenu:
		t.sess.State = MainMenu
		t.sess.Viewing = 0
		m.reply(ctx, t, ui.MsgBackToMenu, ui.MainMenuKeyboard(t.isAdmin))
		return nil
	}
	return m.reprompt(ctx, t)
}

// onCallback handles inline buttons. They act on the id in their payload,
// never on the session, so the current state is left as it is.
func (m *Machine) onCallback(ctx context.Context, t *turn) error {
	data := t.ev.Payload
	switch {
	case strings.HasPrefix(data, ui.CallbackLike):
		target, ok := callbackID(data, ui.CallbackLike)
		if !ok {
			return nil
		}
		out, err := m.Engine.Like(ctx, t.ev.UserID, target)
		if err == nil || svcErr.IsNotFound(err) {
			m.clearButtons(ctx, t)
		}
		if err != nil {
			return err
		}
		if !out.NewMatch {
			m.reply(ctx, t, ui.MsgLikeBackSent, nil)
		}
		return nil

	case strings.HasPrefix(data, ui.CallbackDislike):
		target, ok := callbackID(data, ui.CallbackDislike)
		if !ok {
			return nil
		}
		if err := m.Engine.Dislike(ctx, t.ev.UserID, target); err != nil {
			return err
		}
		m.clearButtons(ctx, t)
		m.reply(ctx, t, ui.MsgRejected, nil)
		return nil

	case strings.HasPrefix(data, ui.CallbackUnban) && t.isAdmin:
		target, ok := callbackID(data, ui.CallbackUnban)
		if !ok {
			return nil
		}
		return m.unban(ctx, t, target)

	case strings.HasPrefix(data, ui.CallbackBans) && t.isAdmin:
		return m.listBans(ctx, t, strings.TrimPrefix(data, ui.CallbackBans))
	}

	t.log.Debug("callback ignored", "data", data)
	return nil
}

// clearButtons retires the like notice a callback came from, so it cannot
// be answered twice.
func (m *Machine) clearButtons(ctx context.Context, t *turn) {
	if t.ev.MessageID == 0 {
		return
	}
	if err := m.messenger.ClearButtons(ctx, t.ev.ChatID, t.ev.MessageID); err != nil {
		t.log.Warn("notice buttons not cleared", "message_id", t.ev.MessageID, "err", err)
	}
}

func callbackID(data, prefix string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	return id, err == nil && id > 0
}
