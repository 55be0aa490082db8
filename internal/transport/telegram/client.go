// Package telegram connects the dialog to the Telegram Bot API: long
// polling for updates and a chat.Messenger for replies.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/oggyb/matchbot/internal/chat"
)

// Submitter queues an event for handling.
type Submitter interface {
	Submit(ctx context.Context, ev chat.Event) error
}

const (
	defaultPollTimeout = 30
	// requestSlack is added to the long-poll timeout so a getUpdates call is
	// never cut short, while a hung send still gives up.
	requestSlack = 15 * time.Second
)

type Client struct {
	api         *tgbotapi.BotAPI
	logger      *slog.Logger
	pollTimeout int
	dryRun      bool
}

// NewClient connects to the Bot API. An empty token yields a dry-run client
// that only logs outgoing messages, which is handy for local development.
func NewClient(token string, pollTimeout int, logger *slog.Logger) (*Client, error) {
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	hc := &http.Client{Timeout: time.Duration(pollTimeout)*time.Second + requestSlack}
	return newClient(token, tgbotapi.APIEndpoint, hc, pollTimeout, logger)
}

func newClient(token, endpoint string, hc tgbotapi.HTTPClient, pollTimeout int, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if strings.TrimSpace(token) == "" {
		return &Client{
			logger:      logger,
			pollTimeout: pollTimeout,
			dryRun:      true,
		}, nil
	}

	api, err := tgbotapi.NewBotAPIWithClient(strings.TrimSpace(token), endpoint, hc)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}
	logger.Info("telegram bot authorized", "username", api.Self.UserName)

	return &Client{
		api:         api,
		logger:      logger,
		pollTimeout: pollTimeout,
	}, nil
}

// DryRun reports whether the client runs without a token.
func (c *Client) DryRun() bool { return c.dryRun }

// Start long-polls for updates and hands every recognised one to sink until
// ctx is done.
func (c *Client) Start(ctx context.Context, sink Submitter) error {
	if sink == nil {
		return errors.New("telegram update sink is required")
	}
	if c.dryRun {
		c.logger.Warn("BOT_TOKEN is empty, running in dry mode")
		<-ctx.Done()
		return nil
	}

	timeout := c.pollTimeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = timeout
	updates := c.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			c.route(ctx, update, sink)
		}
	}
}

func (c *Client) route(ctx context.Context, update tgbotapi.Update, sink Submitter) {
	if q := update.CallbackQuery; q != nil {
		// stop the button spinner; the reply comes as a normal message
		if _, err := c.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
			c.logger.Debug("answer callback failed", "err", err)
		}
	}

	ev, ok := EventFromUpdate(update)
	if !ok {
		return
	}
	if err := sink.Submit(ctx, ev); err != nil {
		c.logger.Warn("update dropped", "user_id", ev.UserID, "err", err)
	}
}

// SendText implements chat.Messenger. The Bot API library takes no
// context, so ctx is only checked up front; the HTTP client timeout bounds
// the call itself.
func (c *Client) SendText(ctx context.Context, chatID int64, text string, kb *chat.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.dryRun {
		c.logger.Info("dry-run send", "chat_id", chatID, "text", text)
		return nil
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if m := markup(kb); m != nil {
		msg.ReplyMarkup = m
	}
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// SendPhoto implements chat.Messenger. fileRef is a Telegram file id.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileRef, caption string, kb *chat.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.dryRun {
		c.logger.Info("dry-run photo", "chat_id", chatID, "file", fileRef, "caption", caption)
		return nil
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileRef))
	photo.Caption = caption
	if m := markup(kb); m != nil {
		photo.ReplyMarkup = m
	}
	if _, err := c.api.Send(photo); err != nil {
		return fmt.Errorf("send telegram photo: %w", err)
	}
	return nil
}

// ClearButtons implements chat.Messenger by replacing the inline keyboard
// with an empty one.
func (c *Client) ClearButtons(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.dryRun {
		c.logger.Info("dry-run clear buttons", "chat_id", chatID, "message_id", messageID)
		return nil
	}

	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := c.api.Request(edit); err != nil {
		return fmt.Errorf("clear telegram buttons: %w", err)
	}
	return nil
}
