package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/matchbot/internal/chat"
	"github.com/oggyb/matchbot/internal/logger"
)

func TestEventFromUpdate_Text(t *testing.T) {
	ev, ok := EventFromUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 7, UserName: "alex"},
		Chat: &tgbotapi.Chat{ID: 7},
		Text: "/start",
	}})
	require.True(t, ok)
	assert.Equal(t, chat.Event{ChatID: 7, UserID: 7, Username: "alex", Kind: chat.KindText, Payload: "/start"}, ev)
}

func TestEventFromUpdate_PicksLargestPhoto(t *testing.T) {
	ev, ok := EventFromUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 7},
		Chat: &tgbotapi.Chat{ID: 7},
		Photo: []tgbotapi.PhotoSize{
			{FileID: "small", Width: 90, Height: 90},
			{FileID: "large", Width: 1280, Height: 960},
			{FileID: "medium", Width: 320, Height: 240},
		},
	}})
	require.True(t, ok)
	assert.Equal(t, chat.KindPhoto, ev.Kind)
	assert.Equal(t, "large", ev.Payload)
}

func TestEventFromUpdate_Callback(t *testing.T) {
	ev, ok := EventFromUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 9, UserName: "bella"},
		Message: &tgbotapi.Message{MessageID: 55, Chat: &tgbotapi.Chat{ID: 9}},
		Data:    "like_7",
	}})
	require.True(t, ok)
	assert.Equal(t, chat.KindCallback, ev.Kind)
	assert.Equal(t, "like_7", ev.Payload)
	assert.Equal(t, int64(9), ev.ChatID)
	assert.Equal(t, 55, ev.MessageID)
}

func TestEventFromUpdate_OtherMessages(t *testing.T) {
	cases := map[string]*tgbotapi.Message{
		"image as file": {Document: &tgbotapi.Document{FileID: "doc", MimeType: "image/jpeg"}},
		"sticker":       {Sticker: &tgbotapi.Sticker{FileID: "st"}},
		"voice":         {Voice: &tgbotapi.Voice{FileID: "v"}},
	}
	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			msg.From = &tgbotapi.User{ID: 3}
			msg.Chat = &tgbotapi.Chat{ID: 3}
			ev, ok := EventFromUpdate(tgbotapi.Update{Message: msg})
			require.True(t, ok)
			assert.Equal(t, chat.KindOther, ev.Kind)
			assert.Empty(t, ev.Payload)
			assert.Equal(t, int64(3), ev.UserID)
		})
	}
}

func TestEventFromUpdate_Ignored(t *testing.T) {
	_, ok := EventFromUpdate(tgbotapi.Update{})
	assert.False(t, ok)

	_, ok = EventFromUpdate(tgbotapi.Update{EditedMessage: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 1},
		Chat: &tgbotapi.Chat{ID: 1},
		Text: "edited",
	}})
	assert.False(t, ok)
}

func TestMarkup(t *testing.T) {
	assert.Nil(t, markup(nil))

	reply, ok := markup(&chat.Keyboard{Reply: [][]string{{"a", "b"}, {"c"}}}).(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, reply.Keyboard, 2)
	assert.Equal(t, "b", reply.Keyboard[0][1].Text)
	assert.True(t, reply.ResizeKeyboard)

	inline, ok := markup(&chat.Keyboard{Inline: [][]chat.InlineButton{{{Text: "x", Data: "like_1"}}}}).(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.NotNil(t, inline.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "like_1", *inline.InlineKeyboard[0][0].CallbackData)

	_, ok = markup(&chat.Keyboard{Remove: true}).(tgbotapi.ReplyKeyboardRemove)
	assert.True(t, ok)
}

func TestDryRunClient(t *testing.T) {
	c, err := NewClient("", 0, logger.Discard())
	require.NoError(t, err)
	assert.True(t, c.DryRun())

	ctx := context.Background()
	assert.NoError(t, c.SendText(ctx, 1, "hi", nil))
	assert.NoError(t, c.SendPhoto(ctx, 1, "file", "caption", &chat.Keyboard{Remove: true}))
	assert.NoError(t, c.ClearButtons(ctx, 1, 10))

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.NoError(t, c.Start(cctx, submitFunc(func(context.Context, chat.Event) error { return nil })))
}

type submitFunc func(context.Context, chat.Event) error

func (f submitFunc) Submit(ctx context.Context, ev chat.Event) error { return f(ctx, ev) }
