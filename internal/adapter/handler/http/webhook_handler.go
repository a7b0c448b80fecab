package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	domainErrors "github.com/wekeepgrowing/vipgate/internal/domain/errors"
	"github.com/wekeepgrowing/vipgate/internal/domain/provider"
	"github.com/wekeepgrowing/vipgate/internal/domain/repository"
	"github.com/wekeepgrowing/vipgate/internal/usecase"
	pkgErrors "github.com/wekeepgrowing/vipgate/pkg/errors"
	"go.uber.org/zap"
)

// SignatureHeader carries the provider's payload signature.
const SignatureHeader = "Stripe-Signature"

// maxPayloadBytes bounds the webhook body.
const maxPayloadBytes = 1 << 20

type WebhookHandler struct {
	provider   provider.PaymentProvider
	reconciler *usecase.Reconciler
	events     repository.PaymentEventRepository
	logger     *zap.Logger
}

func NewWebhookHandler(
	paymentProvider provider.PaymentProvider,
	reconciler *usecase.Reconciler,
	events repository.PaymentEventRepository,
	logger *zap.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		provider:   paymentProvider,
		reconciler: reconciler,
		events:     events,
		logger:     logger,
	}
}

// HandleWebhook verifies and applies one payment event.
// 400: authenticity failure. 500: a store failure; the provider redelivers and grant
// recording is idempotent. 200 otherwise, including dropped and ignored events.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPayloadBytes))
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error reading request body"})
	}

	event, err := h.provider.ParseWebhook(body, c.Request().Header.Get(SignatureHeader))
	if err != nil {
		if errors.Is(err, domainErrors.ErrAuthenticityFailure) {
			h.logger.Warn("Webhook signature verification failed", zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Webhook signature verification failed"})
		}
		// authentic but undecodable: acknowledged and dropped
		h.logger.Error("Failed to decode webhook event", zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}

	h.logger.Info("Webhook event received",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.RawType),
		zap.Time("created", event.CreatedAt))

	first, err := h.events.Record(ctx, event.ID, event.RawType, event.CreatedAt)
	if err != nil {
		pkgErrors.LogError(h.logger, err, "Failed to journal webhook event", zap.String("event_id", event.ID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to record event"})
	}
	if !first {
		h.logger.Info("Webhook event redelivered", zap.String("event_id", event.ID))
	}

	result, err := h.reconciler.Apply(ctx, event)
	if err != nil {
		pkgErrors.LogError(h.logger, err, "Failed to apply webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.RawType))
		if markErr := h.events.MarkFailed(ctx, event.ID, err); markErr != nil {
			h.logger.Warn("Failed to mark webhook event failed", zap.String("event_id", event.ID), zap.Error(markErr))
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to process event"})
	}

	if err := h.events.MarkProcessed(ctx, event.ID); err != nil {
		h.logger.Warn("Failed to mark webhook event processed", zap.String("event_id", event.ID), zap.Error(err))
	}

	h.logger.Info("Webhook event processed",
		zap.String("event_id", event.ID),
		zap.String("action", string(result.Action)),
		zap.Int64("buyer_id", result.BuyerID),
		zap.Int64("offering_id", result.OfferingID),
		zap.Bool("notified", result.Notified))

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
