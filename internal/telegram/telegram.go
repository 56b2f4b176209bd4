// Package telegram wraps the Bot API operations this service performs:
// replying to a /start with the channel button, and webhook registration.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Fixed per-call timeout. No retries anywhere: a failed send stays failed.
const requestTimeout = 15 * time.Second

const (
	inviteText       = "Готово! Нажми кнопку ниже, чтобы открыть канал 👇"
	inviteButtonText = "Открыть канал"
)

type Client struct {
	bot        *bot.Bot
	channelURL string
}

// New builds a Bot API client. getMe is skipped so startup does not depend
// on Telegram being reachable. Extra options are used by tests to point the
// client at a fake API server.
func New(botToken, channelURL string, opts ...bot.Option) (*Client, error) {
	base := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(requestTimeout, &http.Client{Timeout: requestTimeout}),
	}

	b, err := bot.New(botToken, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("telegram: init bot: %w", err)
	}

	return &Client{bot: b, channelURL: channelURL}, nil
}

// SendChannelInvite sends the reply message with a single inline button
// pointing at the configured channel.
func (c *Client) SendChannelInvite(ctx context.Context, chatID int64) error {
	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   inviteText,
		ReplyMarkup: models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{
				{{Text: inviteButtonText, URL: c.channelURL}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	return nil
}

// RegisterWebhook points the bot's webhook at webhookURL, subscribing to
// live and edited messages only.
func (c *Client) RegisterWebhook(ctx context.Context, webhookURL string) (bool, error) {
	ok, err := c.bot.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:            webhookURL,
		AllowedUpdates: []string{"message", "edited_message"},
	})
	if err != nil {
		return false, fmt.Errorf("telegram: set webhook: %w", err)
	}
	return ok, nil
}
