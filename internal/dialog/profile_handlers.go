package dialog

import (
	"context"

	"github.com/oggyb/matchbot/internal/db"
	"github.com/oggyb/matchbot/internal/service/profile"
	"github.com/oggyb/matchbot/internal/ui"
)

// textField describes one free-text profile answer.
type textField struct {
	limit int
	set   func(p *db.Profile, v string)
}

var textFields = map[State]textField{
	AwaitingGender: {profile.MaxGender, func(p *db.Profile, v string) { p.Gender = v }},
	AwaitingName:   {profile.MaxName, func(p *db.Profile, v string) { p.DisplayName = v }},
	AwaitingCourse: {profile.MaxCourse, func(p *db.Profile, v string) { p.Course = v }},
	AwaitingBio:    {profile.MaxBio, func(p *db.Profile, v string) { p.Bio = v }},

	EditingGender: {profile.MaxGender, func(p *db.Profile, v string) { p.Gender = v }},
	EditingName:   {profile.MaxName, func(p *db.Profile, v string) { p.DisplayName = v }},
	EditingCourse: {profile.MaxCourse, func(p *db.Profile, v string) { p.Course = v }},
	EditingBio:    {profile.MaxBio, func(p *db.Profile, v string) { p.Bio = v }},
}

// signupNext is the question order of the sign-up flow.
var signupNext = map[State]State{
	AwaitingGender: AwaitingName,
	AwaitingName:   AwaitingAge,
	AwaitingAge:    AwaitingCourse,
	AwaitingCourse: AwaitingBio,
	AwaitingBio:    AwaitingPhoto,
}

var editPrompts = map[string]State{
	ui.BtnGender: EditingGender,
	ui.BtnName:   EditingName,
	ui.BtnAge:    EditingAge,
	ui.BtnCourse: EditingCourse,
	ui.BtnBio:    EditingBio,
	ui.BtnPhoto:  EditingPhoto,
}

var editDone = map[State]string{
	EditingGender: ui.MsgGenderUpdated,
	EditingName:   ui.MsgNameUpdated,
	EditingAge:    ui.MsgAgeUpdated,
	EditingCourse: ui.MsgCourseUpdated,
	EditingBio:    ui.MsgBioUpdated,
	EditingPhoto:  ui.MsgPhotoUpdated,
}

// onStart greets the user. A user who already answered every question goes
// straight to the main menu; anyone else starts the sign-up from scratch.
func (m *Machine) onStart(ctx context.Context, t *turn) error {
	p, err := m.store.Profiles.TouchProfile(ctx, t.ev.UserID, t.ev.Username)
	if err != nil {
		return err
	}

	t.sess.Viewing = 0
	if m.Policy.HasAllAnswers(p) {
		t.sess.State = MainMenu
		m.reply(ctx, t, ui.MsgWelcomeBack, ui.MainMenuKeyboard(t.isAdmin))
		return nil
	}

	t.sess.Draft = db.Profile{UserID: p.UserID, Username: p.Username, CreatedAt: p.CreatedAt}
	t.sess.State = AwaitingGender
	m.reply(ctx, t, ui.MsgWelcomeNew, ui.GenderKeyboard())
	return nil
}

func (m *Machine) onCancel(ctx context.Context, t *turn) error {
	t.sess.State = Terminal
	t.sess.Draft = db.Profile{}
	t.sess.Viewing = 0
	m.reply(ctx, t, ui.MsgGoodbye, ui.RemoveKeyboard())
	return nil
}

func (m *Machine) onSignupText(ctx context.Context, t *turn) error {
	field := textFields[t.sess.State]
	v, err := m.Policy.CheckText(t.ev.Text(), field.limit)
	if err != nil {
		return err
	}
	field.set(&t.sess.Draft, v)

	next := signupNext[t.sess.State]
	if next == AwaitingPhoto {
		t.sess.State = next
		m.reply(ctx, t, ui.MsgAskPhoto, nil)
		return nil
	}
	return m.enter(ctx, t, next)
}

func (m *Machine) onSignupAge(ctx context.Context, t *turn) error {
	age, err := m.Policy.ParseAge(t.ev.Text())
	if err != nil {
		return err
	}
	t.sess.Draft.Age = age
	return m.enter(ctx, t, AwaitingCourse)
}

// onSignupPhoto stores the finished draft and shows it back for
// confirmation. The durable write happens here so a confirmed profile is
// already visible to others.
func (m *Machine) onSignupPhoto(ctx context.Context, t *turn) error {
	draft := t.sess.Draft
	draft.UserID = t.ev.UserID
	draft.PhotoRef = t.ev.Payload
	if t.ev.Username != "" {
		draft.Username = t.ev.Username
	}

	if err := m.store.Profiles.UpsertProfile(ctx, &draft); err != nil {
		return err
	}
	t.sess.Draft = draft
	t.sess.State = AwaitingConfirmation

	if err := ui.SendProfile(ctx, m.messenger, t.ev.ChatID, ui.MsgConfirmIntro, &draft, ui.ConfirmKeyboard()); err != nil {
		t.log.Warn("profile preview not delivered", "err", err)
	}
	if profile.MissingUsername(&draft) {
		m.reply(ctx, t, ui.MsgNoUsername, ui.ConfirmKeyboard())
	}
	return nil
}

func (m *Machine) onConfirmation(ctx context.Context, t *turn) error {
	switch t.ev.Text() {
	case ui.BtnConfirm:
		t.sess.Draft = db.Profile{}
		t.sess.State = MainMenu
		m.reply(ctx, t, ui.MsgProfileCreated, ui.MainMenuKeyboard(t.isAdmin))
		return nil
	case ui.BtnEdit:
		t.sess.Draft = db.Profile{}
		return m.enter(ctx, t, EditMenu)
	default:
		return m.reprompt(ctx, t)
	}
}

func (m *Machine) onSettings(ctx context.Context, t *turn) error {
	switch t.ev.Text() {
	case ui.BtnEditProfile:
		return m.enter(ctx, t, EditMenu)
	case ui.BtnMyProfile:
		return m.showOwnProfile(ctx, t)
	case ui.BtnMenu:
		t.sess.State = MainMenu
		m.reply(ctx, t, ui.MsgBackToMenu, ui.MainMenuKeyboard(t.isAdmin))
		return nil
	default:
		return m.reprompt(ctx, t)
	}
}

func (m *Machine) showOwnProfile(ctx context.Context, t *turn) error {
	p, err := m.store.Profiles.GetProfile(ctx, t.ev.UserID)
	if err != nil {
		return err
	}
	if !m.Policy.HasAllAnswers(p) {
		m.reply(ctx, t, ui.MsgProfileNotFilled, ui.SettingsKeyboard())
		return nil
	}

	if err := ui.SendProfile(ctx, m.messenger, t.ev.ChatID, ui.MsgYourProfile, p, ui.SettingsKeyboard()); err != nil {
		t.log.Warn("own profile not delivered", "err", err)
	}

	// the card is already out; the counters are optional
	n, err := m.Engine.CountLikesReceived(ctx, t.ev.UserID)
	if err != nil {
		t.log.Warn("likes received unavailable", "err", err)
		return nil
	}
	matches, err := m.store.Edges.MatchesOf(ctx, t.ev.UserID)
	if err != nil {
		t.log.Warn("matches unavailable", "err", err)
		m.reply(ctx, t, ui.LikesReceivedText(n), ui.SettingsKeyboard())
		return nil
	}
	m.reply(ctx, t, ui.OwnStatsText(n, len(matches)), ui.SettingsKeyboard())
	return nil
}

func (m *Machine) onEditMenu(ctx context.Context, t *turn) error {
	if next, ok := editPrompts[t.ev.Text()]; ok {
		return m.enter(ctx, t, next)
	}
	if t.ev.Text() == ui.BtnDone {
		t.sess.State = SettingsMenu
		m.reply(ctx, t, ui.MsgChangesSaved, ui.SettingsKeyboard())
		return nil
	}
	return m.reprompt(ctx, t)
}

func (m *Machine) onEditText(ctx context.Context, t *turn) error {
	field := textFields[t.sess.State]
	v, err := m.Policy.CheckText(t.ev.Text(), field.limit)
	if err != nil {
		return err
	}
	return m.saveEdit(ctx, t, func(p *db.Profile) { field.set(p, v) })
}

func (m *Machine) onEditAge(ctx context.Context, t *turn) error {
	age, err := m.Policy.ParseAge(t.ev.Text())
	if err != nil {
		return err
	}
	return m.saveEdit(ctx, t, func(p *db.Profile) { p.Age = age })
}

func (m *Machine) onEditPhoto(ctx context.Context, t *turn) error {
	ref := t.ev.Payload
	return m.saveEdit(ctx, t, func(p *db.Profile) { p.PhotoRef = ref })
}

// saveEdit applies one field change to the stored profile and returns to
// the edit menu. The state only moves after the write succeeded.
func (m *Machine) saveEdit(ctx context.Context, t *turn, apply func(p *db.Profile)) error {
	p, err := m.store.Profiles.GetProfile(ctx, t.ev.UserID)
	if err != nil {
		return err
	}
	apply(p)
	if t.ev.Username != "" {
		p.Username = t.ev.Username
	}
	if err := m.store.Profiles.UpsertProfile(ctx, p); err != nil {
		return err
	}

	done := editDone[t.sess.State]
	t.sess.State = EditMenu
	m.reply(ctx, t, done, ui.EditKeyboard())
	return nil
}
