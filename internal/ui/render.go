package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oggyb/matchbot/internal/chat"
	"github.com/oggyb/matchbot/internal/db"
)

const timeLayout = "2006-01-02 15:04"

// ProfileCard renders the text part of a profile.
func ProfileCard(p *db.Profile) string {
	bio := p.Bio
	if bio == "" {
		bio = MsgNoInfo
	}
	return fmt.Sprintf("Имя: %s\nВозраст: %d\nКурс: %s\nО себе: %s", p.DisplayName, p.Age, p.Course, bio)
}

// SendProfile delivers a profile card with its photo. When the photo cannot
// be sent the card goes out as text with a short note instead, so the
// recipient always sees the profile.
func SendProfile(ctx context.Context, m chat.Messenger, chatID int64, header string, p *db.Profile, kb *chat.Keyboard) error {
	card := ProfileCard(p)
	if header != "" {
		card = header + "\n\n" + card
	}
	if p.PhotoRef == "" {
		return m.SendText(ctx, chatID, card+"\n"+MsgPhotoMissing, kb)
	}
	if err := m.SendPhoto(ctx, chatID, p.PhotoRef, card, kb); err != nil {
		return m.SendText(ctx, chatID, card+"\n"+MsgPhotoUnavailable, kb)
	}
	return nil
}

// MatchText announces a match with other. Without a username the contact
// line is omitted.
func MatchText(other *db.Profile) string {
	text := fmt.Sprintf("🎉 У тебя совпадение с %s!", other.DisplayName)
	if other.Username != "" {
		text += fmt.Sprintf(" Его/её Telegram: @%s", other.Username)
	}
	return text
}

// LikesReceivedText follows the owner's card in "Мой профиль".
func LikesReceivedText(n int64) string {
	return fmt.Sprintf("Тебя лайкнули: %d", n)
}

// OwnStatsText adds the match count below the likes line.
func OwnStatsText(likes int64, matches int) string {
	return LikesReceivedText(likes) + fmt.Sprintf("\nСовпадений: %d", matches)
}

// BanNotice is shown to a banned user on every message.
func BanNotice(reason string) string {
	if reason == "" {
		return MsgBannedDefault
	}
	return fmt.Sprintf("%s Причина: %s", MsgBannedDefault, reason)
}

// MaintenanceNotice is shown to non-admins while maintenance is on.
func MaintenanceNotice(s db.ServiceSettings) string {
	text := s.MaintenanceMessage
	if strings.TrimSpace(text) == "" {
		text = MsgMaintenanceDefault
	}
	if s.MaintenanceEnd != nil {
		text += fmt.Sprintf("\nПлановое окончание: %s (UTC)", s.MaintenanceEnd.UTC().Format(timeLayout))
	}
	return text
}

// StatsView is the data behind the admin statistics message.
type StatsView struct {
	Profiles         int64
	CompleteProfiles int64
	Likes            int64
	Dislikes         int64
	Matches          int64
	ActiveBans       int64
	Maintenance      bool
	GeneratedAt      time.Time
}

func RenderStats(s StatsView) string {
	mode := "выключен"
	if s.Maintenance {
		mode = "включен"
	}
	return fmt.Sprintf(
		"📊 Статистика\n\nПрофилей: %d\nЗаполненных: %d\nЛайков: %d\nДизлайков: %d\nСовпадений: %d\nАктивных банов: %d\nРежим техработ: %s\n\nОбновлено: %s (UTC)",
		s.Profiles, s.CompleteProfiles, s.Likes, s.Dislikes, s.Matches, s.ActiveBans, mode,
		s.GeneratedAt.UTC().Format(timeLayout),
	)
}

// RenderBanList renders one page of bans with an unban button per entry
// and a next-page button when more remain.
func RenderBanList(bans []db.Ban, next string) (string, *chat.Keyboard) {
	if len(bans) == 0 {
		return MsgNoBans, nil
	}

	var b strings.Builder
	b.WriteString("🚫 Заблокированные пользователи:\n")
	rows := make([][]chat.InlineButton, 0, len(bans)+1)
	for _, ban := range bans {
		name := ban.Username
		if name != "" {
			name = "@" + name
		}
		fmt.Fprintf(&b, "\n%d %s\nПричина: %s\nС: %s", ban.UserID, name, orDash(ban.Reason), ban.BannedAt.UTC().Format(timeLayout))
		rows = append(rows, []chat.InlineButton{{
			Text: fmt.Sprintf("%s %d", BtnUnban, ban.UserID),
			Data: fmt.Sprintf("%s%d", CallbackUnban, ban.UserID),
		}})
	}
	if next != "" {
		rows = append(rows, []chat.InlineButton{{Text: BtnNextPage, Data: CallbackBans + next}})
	}
	return b.String(), &chat.Keyboard{Inline: rows}
}

// ParseTime parses an admin-entered UTC time in the list layout.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, strings.TrimSpace(s), time.UTC)
}
