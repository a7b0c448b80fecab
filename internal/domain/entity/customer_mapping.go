package entity

import "time"

// CustomerMapping binds a buyer to the payment provider's customer record. A buyer has at
// most one mapping and it never changes once created.
type CustomerMapping struct {
	BuyerID            int64     `json:"buyer_id"`
	ProviderCustomerID string    `json:"provider_customer_id"`
	Email              string    `json:"email"`
	CreatedAt          time.Time `json:"created_at"`
}
