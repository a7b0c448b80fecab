package model

import "time"

// Offering is the offerings row.
type Offering struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	PriceRef     string    `gorm:"column:price_ref;not null;size:100" json:"price_ref"`
	Description  string    `gorm:"not null" json:"description"`
	ResourceLink string    `gorm:"column:resource_link;not null" json:"resource_link"`
	Recurring    bool      `gorm:"not null" json:"recurring"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Offering) TableName() string {
	return "offerings"
}
