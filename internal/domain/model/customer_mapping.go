package model

import "time"

// CustomerMapping maps a buyer to the provider customer id. buyer_id is the primary key
// and provider_customer_id is unique.
type CustomerMapping struct {
	BuyerID            int64     `gorm:"column:buyer_id;primaryKey;autoIncrement:false" json:"buyer_id"`
	ProviderCustomerID string    `gorm:"column:provider_customer_id;unique;not null;size:100" json:"provider_customer_id"`
	CustomerEmail      string    `gorm:"size:255" json:"customer_email"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (CustomerMapping) TableName() string {
	return "customer_mappings"
}
