// Package chat defines the transport-neutral conversation contract: inbound
// events, keyboard descriptions and the outbound Messenger.
package chat

import (
	"context"
	"strings"
)

type Kind string

const (
	KindText     Kind = "text"
	KindPhoto    Kind = "photo"
	KindCallback Kind = "callback"
	// KindOther is any other message (document, sticker, voice). It has no
	// payload and only ever gets the current prompt repeated.
	KindOther Kind = "other"
)

// Event is one inbound user action. Payload is the message text, the photo
// file reference or the callback data, depending on Kind.
type Event struct {
	ChatID   int64
	UserID   int64
	Username string
	Kind     Kind
	Payload  string
	// MessageID is the message a callback button belongs to.
	MessageID int
}

// Command returns the bot command carried by a text event ("/start@bot
// arg" -> "start"). ok is false for anything that is not a command.
func (e Event) Command() (name string, ok bool) {
	if e.Kind != KindText || !strings.HasPrefix(e.Payload, "/") {
		return "", false
	}
	name = strings.TrimPrefix(strings.Fields(e.Payload)[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name), name != ""
}

// Text returns the trimmed payload of a text event.
func (e Event) Text() string {
	if e.Kind != KindText {
		return ""
	}
	return strings.TrimSpace(e.Payload)
}

type InlineButton struct {
	Text string
	Data string
}

// Keyboard describes the markup attached to an outgoing message. At most
// one of Reply, Inline and Remove is honoured, in that order.
type Keyboard struct {
	Reply  [][]string
	Inline [][]InlineButton
	Remove bool
}

// Messenger delivers outgoing messages.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, kb *Keyboard) error
	SendPhoto(ctx context.Context, chatID int64, fileRef, caption string, kb *Keyboard) error
	// ClearButtons removes the inline keyboard of an earlier message.
	ClearButtons(ctx context.Context, chatID int64, messageID int) error
}
