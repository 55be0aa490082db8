package dialog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oggyb/matchbot/internal/app"
	"github.com/oggyb/matchbot/internal/chat"
	svcErr "github.com/oggyb/matchbot/internal/errors"
	"github.com/oggyb/matchbot/internal/logger"
	"github.com/oggyb/matchbot/internal/repository"
	"github.com/oggyb/matchbot/internal/service/access"
	"github.com/oggyb/matchbot/internal/service/admin"
	"github.com/oggyb/matchbot/internal/service/explore"
	"github.com/oggyb/matchbot/internal/service/profile"
	"github.com/oggyb/matchbot/internal/ui"
)

// Services are the collaborators the machine drives.
type Services struct {
	Gate     *access.Gate
	Selector *explore.Selector
	Engine   *explore.Engine
	Admin    *admin.Service
	Policy   *profile.Policy
}

// NewServices builds the default service set from the application context.
func NewServices(appCtx *app.AppContext, messenger chat.Messenger) Services {
	policy := profile.NewPolicyFromConfig(appCtx.Config)
	return Services{
		Gate:     access.NewGate(appCtx.Store.Moderation, appCtx.Config.IsAdmin),
		Selector: explore.NewSelector(appCtx.Store.Profiles).WithCheck(policy.IsComplete),
		Engine:   explore.NewEngine(appCtx, messenger),
		Admin:    admin.NewService(appCtx),
		Policy:   policy,
	}
}

type handlerFunc func(ctx context.Context, t *turn) error

// turn is the per-event scratch space handed to handlers. Handlers mutate
// sess; the machine commits it unless the turn ends in a store failure.
type turn struct {
	ev      chat.Event
	sess    *Session
	isAdmin bool
	log     *slog.Logger
}

// Machine routes events by (state, input kind) to handlers.
type Machine struct {
	Services

	store     *repository.Store
	messenger chat.Messenger
	log       *slog.Logger
	sessions  *sessions
	table     map[State]map[chat.Kind]handlerFunc
}

// NewMachine creates a machine with an empty session table.
func NewMachine(appCtx *app.AppContext, messenger chat.Messenger, svc Services) *Machine {
	m := &Machine{
		Services:  svc,
		store:     appCtx.Store,
		messenger: messenger,
		log:       appCtx.Logger,
		sessions:  newSessions(),
	}
	m.table = m.transitions()
	return m
}

// transitions is the full (state, input kind) -> handler table. Pairs not
// listed re-prompt the current state.
func (m *Machine) transitions() map[State]map[chat.Kind]handlerFunc {
	text := func(h handlerFunc) map[chat.Kind]handlerFunc {
		return map[chat.Kind]handlerFunc{chat.KindText: h}
	}
	photo := func(h handlerFunc) map[chat.Kind]handlerFunc {
		return map[chat.Kind]handlerFunc{chat.KindPhoto: h}
	}

	return map[State]map[chat.Kind]handlerFunc{
		AwaitingGender:       text(m.onSignupText),
		AwaitingName:         text(m.onSignupText),
		AwaitingAge:          text(m.onSignupAge),
		AwaitingCourse:       text(m.onSignupText),
		AwaitingBio:          text(m.onSignupText),
		AwaitingPhoto:        photo(m.onSignupPhoto),
		AwaitingConfirmation: text(m.onConfirmation),

		MainMenu:     text(m.onMainMenu),
		Browsing:     text(m.onBrowsing),
		SettingsMenu: text(m.onSettings),
		EditMenu:     text(m.onEditMenu),

		EditingGender: text(m.onEditText),
		EditingName:   text(m.onEditText),
		EditingAge:    text(m.onEditAge),
		EditingCourse: text(m.onEditText),
		EditingBio:    text(m.onEditText),
		EditingPhoto:  photo(m.onEditPhoto),

		AdminPanel:              text(m.onAdminPanel),
		BanManagement:           text(m.onBanManagement),
		AdminMaintenanceMessage: text(m.onMaintenanceMessage),
		BanAwaitingTarget:       text(m.onBanTarget),
		UnbanAwaitingTarget:     text(m.onUnbanTarget),
	}
}

// Session returns a copy of the user's current session.
func (m *Machine) Session(userID int64) Session {
	return m.sessions.get(userID)
}

// Handle runs one event through the gate and the transition table. The
// user's session lock is held for the whole event. A store failure leaves
// the session exactly as it was before the event.
func (m *Machine) Handle(ctx context.Context, ev chat.Event) error {
	log := logger.ForEvent(m.log, ev.UserID)
	log.Debug("event received", "kind", ev.Kind, "chat_id", ev.ChatID)

	sl := m.sessions.lock(ev.UserID)
	defer sl.mu.Unlock()

	verdict, err := m.Gate.Admit(ctx, ev.UserID)
	if err != nil {
		log.Error("access gate failed", "err", err)
		m.say(ctx, ev.ChatID, ui.MsgGenericFailure, nil, log)
		return err
	}
	if !verdict.Allowed {
		log.Info("event denied", "reason", verdict.Reason)
		m.deny(ctx, ev.ChatID, verdict, log)
		return verdict.Err()
	}

	sess := sl.session.clone()
	t := &turn{ev: ev, sess: &sess, isAdmin: m.Gate.IsAdmin(ev.UserID), log: log}

	err = m.recover(ctx, t, m.dispatch(ctx, t))
	if svcErr.IsPersistence(err) {
		return err
	}

	if !sess.State.Valid() {
		log.Error("handler produced unknown state", "state", sess.State)
		sess.State = Terminal
	}
	if sess.State != sl.session.State {
		log.Debug("state changed", "from", sl.session.State, "to", sess.State)
	}
	sl.session = sess
	return err
}

func (m *Machine) dispatch(ctx context.Context, t *turn) error {
	if cmd, ok := t.ev.Command(); ok {
		switch cmd {
		case "start":
			return m.onStart(ctx, t)
		case "cancel":
			return m.onCancel(ctx, t)
		default:
			m.reply(ctx, t, ui.MsgUnknownCommand, nil)
			return nil
		}
	}

	if t.ev.Kind == chat.KindCallback {
		return m.onCallback(ctx, t)
	}

	if t.sess.State.adminOnly() && !t.isAdmin {
		t.sess.State = MainMenu
		return m.reprompt(ctx, t)
	}

	if h, ok := m.table[t.sess.State][t.ev.Kind]; ok {
		return h(ctx, t)
	}
	return m.reprompt(ctx, t)
}

// recover turns handler errors into user-facing replies. It returns nil
// for every recovered kind; store failures are returned so Handle keeps the
// previous session.
func (m *Machine) recover(ctx context.Context, t *turn, err error) error {
	if err == nil {
		return nil
	}

	switch svcErr.KindOf(err) {
	case svcErr.KindValidation:
		_, kb := m.prompt(t.sess.State, t.isAdmin)
		m.reply(ctx, t, m.validationMessage(err), kb)
		return nil

	case svcErr.KindNoActiveCandidate:
		t.sess.State = MainMenu
		t.sess.Viewing = 0
		m.reply(ctx, t, ui.MsgStaleCandidate, ui.MainMenuKeyboard(t.isAdmin))
		return nil

	case svcErr.KindNotFound:
		_, kb := m.prompt(t.sess.State, t.isAdmin)
		m.reply(ctx, t, ui.MsgProfileGone, kb)
		return nil

	default:
		t.log.Error("event failed", "state", t.sess.State, "err", err)
		m.reply(ctx, t, ui.MsgGenericFailure, nil)
		if svcErr.KindOf(err) == "" {
			return svcErr.Persistence("unexpected failure", err)
		}
		return err
	}
}

func (m *Machine) validationMessage(err error) string {
	var tooLong *profile.TooLongError
	switch {
	case errors.Is(err, profile.ErrAgeFormat):
		return ui.MsgAgeFormat
	case errors.Is(err, profile.ErrAgeRange):
		return ui.AgeRangeMessage(m.Policy.MinAge, m.Policy.MaxAge)
	case errors.As(err, &tooLong):
		return ui.TextTooLongMessage(tooLong.Limit)
	case errors.Is(err, profile.ErrEmpty):
		return ui.MsgEmptyText
	case errors.Is(err, admin.ErrBadUserID):
		return ui.MsgBadUserID
	case errors.Is(err, admin.ErrBadMaintenanceEnd):
		return ui.MsgBadMaintenanceInput
	case errors.Is(err, admin.ErrCannotBanAdmin):
		return ui.MsgCannotBanAdmin
	default:
		return ui.MsgChooseAction
	}
}

func (m *Machine) deny(ctx context.Context, chatID int64, v access.Verdict, log *slog.Logger) {
	switch v.Reason {
	case access.ReasonBanned:
		reason := ""
		if v.Ban != nil {
			reason = v.Ban.Reason
		}
		m.say(ctx, chatID, ui.BanNotice(reason), ui.RemoveKeyboard(), log)
	default:
		m.say(ctx, chatID, ui.MaintenanceNotice(v.Settings), nil, log)
	}
}

// prompt is the message and keyboard that (re)introduce a state.
func (m *Machine) prompt(s State, isAdmin bool) (string, *chat.Keyboard) {
	switch s {
	case AwaitingGender:
		return ui.MsgAskGender, ui.GenderKeyboard()
	case AwaitingName:
		return ui.MsgAskName, ui.RemoveKeyboard()
	case AwaitingAge:
		return ui.MsgAskAge, nil
	case AwaitingCourse:
		return ui.MsgAskCourse, nil
	case AwaitingBio:
		return ui.MsgAskBio, nil
	case AwaitingPhoto:
		return ui.MsgPhotoRequired, nil
	case AwaitingConfirmation:
		return ui.MsgConfirmChoose, ui.ConfirmKeyboard()
	case MainMenu:
		return ui.MsgChooseAction, ui.MainMenuKeyboard(isAdmin)
	case Browsing:
		return ui.MsgChooseAction, ui.BrowseKeyboard()
	case SettingsMenu:
		return ui.MsgSettings, ui.SettingsKeyboard()
	case EditMenu:
		return ui.MsgEditWhat, ui.EditKeyboard()
	case EditingGender:
		return ui.MsgEditGender, ui.GenderKeyboard()
	case EditingName:
		return ui.MsgEditName, ui.RemoveKeyboard()
	case EditingAge:
		return ui.MsgEditAge, ui.RemoveKeyboard()
	case EditingCourse:
		return ui.MsgEditCourse, ui.RemoveKeyboard()
	case EditingBio:
		return ui.MsgEditBio, ui.RemoveKeyboard()
	case EditingPhoto:
		return ui.MsgEditPhoto, ui.RemoveKeyboard()
	case AdminPanel:
		return ui.MsgAdminPanel, ui.AdminKeyboard()
	case BanManagement:
		return ui.MsgBanManagement, ui.BanManagementKeyboard()
	case AdminMaintenanceMessage:
		return ui.MsgAskMaintenanceText, ui.BackKeyboard()
	case BanAwaitingTarget:
		return ui.MsgAskBanTarget, ui.BackKeyboard()
	case UnbanAwaitingTarget:
		return ui.MsgAskUnbanTarget, ui.BackKeyboard()
	default:
		return ui.MsgPressStart, ui.RemoveKeyboard()
	}
}

func (m *Machine) reprompt(ctx context.Context, t *turn) error {
	text, kb := m.prompt(t.sess.State, t.isAdmin)
	m.reply(ctx, t, text, kb)
	return nil
}

// enter moves to s and sends its prompt.
func (m *Machine) enter(ctx context.Context, t *turn, s State) error {
	t.sess.State = s
	return m.reprompt(ctx, t)
}

func (m *Machine) reply(ctx context.Context, t *turn, text string, kb *chat.Keyboard) {
	m.say(ctx, t.ev.ChatID, text, kb, t.log)
}

// say sends best-effort: a lost message is logged, the transition stands.
func (m *Machine) say(ctx context.Context, chatID int64, text string, kb *chat.Keyboard, log *slog.Logger) {
	if err := m.messenger.SendText(ctx, chatID, text, kb); err != nil {
		log.Warn("message not delivered", "chat_id", chatID, "err", err)
	}
}
