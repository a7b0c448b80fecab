package model

import "time"

// PaymentEventStatus represents the processing status of a journaled provider event
type PaymentEventStatus string

const (
	PaymentEventStatusPending   PaymentEventStatus = "pending"
	PaymentEventStatusCompleted PaymentEventStatus = "completed"
	PaymentEventStatusFailed    PaymentEventStatus = "failed"
)

// PaymentEvent journals every authenticated provider notification by event id.
type PaymentEvent struct {
	ID                int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	ProviderEventID   string             `gorm:"column:provider_event_id;unique;not null;size:255" json:"provider_event_id"`
	EventType         string             `gorm:"not null;size:100" json:"event_type"`
	Status            PaymentEventStatus `gorm:"size:20;not null" json:"status"`
	DeliveryCount     int                `gorm:"not null" json:"delivery_count"`
	LastError         *string            `json:"last_error,omitempty"`
	ProcessedAt       *time.Time         `json:"processed_at,omitempty"`
	ProviderCreatedAt *time.Time         `json:"provider_created_at,omitempty"`
	CreatedAt         time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (PaymentEvent) TableName() string {
	return "payment_events"
}
