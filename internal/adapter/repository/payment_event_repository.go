package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/wekeepgrowing/vipgate/internal/domain/model"
	"github.com/wekeepgrowing/vipgate/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentEventRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentEventRepository creates a new payment event journal
func NewPaymentEventRepository(db *gorm.DB, logger *zap.Logger) repository.PaymentEventRepository {
	return &paymentEventRepository{
		db:     db,
		logger: logger,
	}
}

// Record journals an event. Redeliveries of a known event id only bump delivery_count.
func (r *paymentEventRepository) Record(ctx context.Context, eventID, eventType string, providerCreatedAt time.Time) (bool, error) {
	event := &model.PaymentEvent{
		ProviderEventID: eventID,
		EventType:       eventType,
		Status:          model.PaymentEventStatusPending,
		DeliveryCount:   1,
	}
	if !providerCreatedAt.IsZero() {
		event.ProviderCreatedAt = &providerCreatedAt
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)
	if result.Error != nil {
		r.logger.Error("Failed to save payment event",
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to save payment event: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	err := r.db.WithContext(ctx).
		Model(&model.PaymentEvent{}).
		Where("provider_event_id = ?", eventID).
		Update("delivery_count", gorm.Expr("delivery_count + 1")).Error
	if err != nil {
		r.logger.Error("Failed to count payment event redelivery",
			zap.String("event_id", eventID),
			zap.Error(err))
		return false, fmt.Errorf("failed to update payment event: %w", err)
	}
	return false, nil
}

// MarkProcessed marks a payment event as processed
func (r *paymentEventRepository) MarkProcessed(ctx context.Context, eventID string) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.PaymentEvent{}).
		Where("provider_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":       model.PaymentEventStatusCompleted,
			"processed_at": &now,
			"last_error":   nil,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark payment event as processed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark payment event as processed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("payment event not found: %s", eventID)
	}

	return nil
}

// MarkFailed marks a payment event as failed
func (r *paymentEventRepository) MarkFailed(ctx context.Context, eventID string, cause error) error {
	errorMsg := cause.Error()

	result := r.db.WithContext(ctx).
		Model(&model.PaymentEvent{}).
		Where("provider_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":     model.PaymentEventStatusFailed,
			"last_error": &errorMsg,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark payment event as failed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark payment event as failed: %w", result.Error)
	}

	return nil
}
