package model

import "time"

// Grant is the grants row; (buyer_id, offering_id) is the primary key.
type Grant struct {
	BuyerID    int64     `gorm:"column:buyer_id;primaryKey;autoIncrement:false" json:"buyer_id"`
	OfferingID int64     `gorm:"column:offering_id;primaryKey;autoIncrement:false" json:"offering_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Grant) TableName() string {
	return "grants"
}

// GrantedAccessRow is the projection used by the "my accesses" listing.
type GrantedAccessRow struct {
	OfferingID   int64
	Name         string
	ResourceLink string
	GrantedAt    time.Time
}
