package telegram

import "github.com/go-telegram/bot/models"

// Bot API types used across the service.
type (
	Update                   = models.Update
	User                     = models.User
	Chat                     = models.Chat
	Message                  = models.Message
	MaybeInaccessibleMessage = models.MaybeInaccessibleMessage
	CallbackQuery            = models.CallbackQuery
	InlineKeyboardMarkup     = models.InlineKeyboardMarkup
	InlineKeyboardButton     = models.InlineKeyboardButton
)

// ParseModeHTML formats text with the Bot API's HTML subset.
const ParseModeHTML = string(models.ParseModeHTML)

type SendMessageRequest struct {
	ChatID      int64
	Text        string
	ParseMode   string
	ReplyMarkup *InlineKeyboardMarkup
}
