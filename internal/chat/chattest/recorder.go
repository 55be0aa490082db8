// Package chattest provides an in-memory Messenger for tests.
package chattest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/oggyb/matchbot/internal/chat"
)

// ErrPhotoFailed is returned by SendPhoto when FailPhotos is set.
var ErrPhotoFailed = errors.New("photo delivery failed")

// Message is one recorded outgoing message.
type Message struct {
	ChatID   int64
	Text     string
	PhotoRef string
	Keyboard *chat.Keyboard
}

// Recorder records everything sent through it.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	cleared  []int

	// FailPhotos makes SendPhoto fail, exercising text fallbacks.
	FailPhotos bool
}

func (r *Recorder) SendText(_ context.Context, chatID int64, text string, kb *chat.Keyboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{ChatID: chatID, Text: text, Keyboard: kb})
	return nil
}

func (r *Recorder) SendPhoto(_ context.Context, chatID int64, fileRef, caption string, kb *chat.Keyboard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailPhotos {
		return ErrPhotoFailed
	}
	r.messages = append(r.messages, Message{ChatID: chatID, Text: caption, PhotoRef: fileRef, Keyboard: kb})
	return nil
}

func (r *Recorder) ClearButtons(_ context.Context, _ int64, messageID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared = append(r.cleared, messageID)
	return nil
}

// Cleared returns the ids of messages whose buttons were removed.
func (r *Recorder) Cleared() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.cleared...)
}

// Messages returns a copy of every recorded message.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// To returns the messages sent to chatID.
func (r *Recorder) To(chatID int64) []Message {
	var out []Message
	for _, m := range r.Messages() {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// Last returns the last message sent to chatID.
func (r *Recorder) Last(chatID int64) (Message, bool) {
	msgs := r.To(chatID)
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// Contains reports whether any message to chatID contains substr.
func (r *Recorder) Contains(chatID int64, substr string) bool {
	for _, m := range r.To(chatID) {
		if strings.Contains(m.Text, substr) {
			return true
		}
	}
	return false
}

// Count returns how many messages to chatID contain substr.
func (r *Recorder) Count(chatID int64, substr string) int {
	n := 0
	for _, m := range r.To(chatID) {
		if strings.Contains(m.Text, substr) {
			n++
		}
	}
	return n
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
	r.cleared = nil
}
