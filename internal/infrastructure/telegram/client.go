// Package telegram wraps the Bot API calls the service makes.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const defaultTimeout = 15 * time.Second

type Config struct {
	Token  string
	APIURL string
	// HTTPClient defaults to a client with a 15s timeout.
	HTTPClient *http.Client
}

type Client struct {
	bot    *bot.Bot
	token  string
	logger *zap.Logger
}

// NewClient builds a client without calling getMe, so startup does not depend on Telegram
// being reachable.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	opts := []bot.Option{
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(defaultTimeout, httpClient),
	}
	if cfg.APIURL != "" {
		opts = append(opts, bot.WithServerURL(strings.TrimRight(cfg.APIURL, "/")))
	}

	b, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", redact(err, cfg.Token))
	}
	return &Client{
		bot:    b,
		token:  cfg.Token,
		logger: logger,
	}, nil
}

func (c *Client) SendMessage(ctx context.Context, req *SendMessageRequest) (*Message, error) {
	params := &bot.SendMessageParams{
		ChatID:    req.ChatID,
		Text:      req.Text,
		ParseMode: models.ParseMode(req.ParseMode),
	}
	if req.ReplyMarkup != nil {
		params.ReplyMarkup = req.ReplyMarkup
	}

	msg, err := c.bot.SendMessage(ctx, params)
	if err != nil {
		err = redact(err, c.token)
		c.logger.Warn("Failed to send message",
			zap.Int64("chat_id", req.ChatID),
			zap.Error(err))
		return nil, fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	return msg, nil
}

func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text, parseMode string, markup *InlineKeyboardMarkup) error {
	params := &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: models.ParseMode(parseMode),
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := c.bot.EditMessageText(ctx, params); err != nil {
		err = redact(err, c.token)
		c.logger.Warn("Failed to edit message",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err))
		return fmt.Errorf("telegram editMessageText failed: %w", err)
	}
	return nil
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	_, err := c.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackQueryID,
		Text:            text,
	})
	if err != nil {
		return fmt.Errorf("telegram answerCallbackQuery failed: %w", redact(err, c.token))
	}
	return nil
}

// SetWebhook points update delivery at url; Telegram echoes secretToken in the
// X-Telegram-Bot-Api-Secret-Token header of every update.
func (c *Client) SetWebhook(ctx context.Context, url, secretToken string) error {
	_, err := c.bot.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:            url,
		SecretToken:    secretToken,
		AllowedUpdates: []string{"message", "callback_query"},
	})
	if err != nil {
		return fmt.Errorf("telegram setWebhook failed: %w", redact(err, c.token))
	}
	c.logger.Info("Telegram webhook registered", zap.String("url", url))
	return nil
}

// SendText implements the buyer notification capability; private chat ids equal user ids.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := c.SendMessage(ctx, &SendMessageRequest{ChatID: chatID, Text: text})
	return err
}
