package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/oggyb/matchbot/internal/chat"
)

// EventFromUpdate maps a Telegram update onto a chat event. ok is false for
// updates without a message or callback, such as edits. Messages that are
// neither text nor a photo become KindOther so the dialog can re-prompt.
func EventFromUpdate(update tgbotapi.Update) (ev chat.Event, ok bool) {
	if q := update.CallbackQuery; q != nil && q.From != nil {
		ev = chat.Event{
			ChatID:   q.From.ID,
			UserID:   q.From.ID,
			Username: q.From.UserName,
			Kind:     chat.KindCallback,
			Payload:  q.Data,
		}
		if q.Message != nil && q.Message.Chat != nil {
			ev.ChatID = q.Message.Chat.ID
			ev.MessageID = q.Message.MessageID
		}
		return ev, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return chat.Event{}, false
	}
	ev = chat.Event{
		ChatID:   msg.Chat.ID,
		UserID:   msg.From.ID,
		Username: msg.From.UserName,
	}

	switch {
	case len(msg.Photo) > 0:
		ev.Kind = chat.KindPhoto
		ev.Payload = largestPhoto(msg.Photo).FileID
	case msg.Text != "":
		ev.Kind = chat.KindText
		ev.Payload = msg.Text
	default:
		ev.Kind = chat.KindOther
	}
	return ev, true
}

func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}
