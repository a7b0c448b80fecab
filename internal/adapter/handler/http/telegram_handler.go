package http

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wekeepgrowing/vipgate/internal/infrastructure/telegram"
	"go.uber.org/zap"
)

// SecretTokenHeader is set by Telegram to the secret given in setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateDispatcher handles one decoded Telegram update.
type UpdateDispatcher interface {
	Dispatch(ctx context.Context, update *telegram.Update) error
}

type TelegramHandler struct {
	dispatcher UpdateDispatcher
	secret     string
	logger     *zap.Logger
}

func NewTelegramHandler(dispatcher UpdateDispatcher, secret string, logger *zap.Logger) *TelegramHandler {
	return &TelegramHandler{
		dispatcher: dispatcher,
		secret:     secret,
		logger:     logger,
	}
}

// HandleUpdate answers 200 to every authenticated update, handled or not, so Telegram does
// not redeliver it.
func (h *TelegramHandler) HandleUpdate(c echo.Context) error {
	token := c.Request().Header.Get(SecretTokenHeader)
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
		h.logger.Warn("Rejected Telegram update with bad secret token",
			zap.String("ip", c.RealIP()))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid secret token"})
	}

	var update telegram.Update
	if err := c.Bind(&update); err != nil {
		h.logger.Warn("Failed to decode Telegram update", zap.Error(err))
		return c.NoContent(http.StatusOK)
	}

	if err := h.dispatcher.Dispatch(c.Request().Context(), &update); err != nil {
		h.logger.Error("Failed to handle Telegram update",
			zap.Int64("update_id", update.ID),
			zap.Error(err))
	}
	return c.NoContent(http.StatusOK)
}
