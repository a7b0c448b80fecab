package repository

import (
	"context"
	"time"
)

// PaymentEventRepository journals authenticated provider events.
type PaymentEventRepository interface {
	// Record stores the event or bumps its delivery count; first is true on first delivery.
	Record(ctx context.Context, eventID, eventType string, providerCreatedAt time.Time) (first bool, err error)
	MarkProcessed(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID string, cause error) error
}
