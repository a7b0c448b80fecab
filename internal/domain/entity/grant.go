package entity

import "time"

// Grant records that a buyer holds access to an offering. (BuyerID, OfferingID) is unique.
type Grant struct {
	BuyerID    int64     `json:"buyer_id"`
	OfferingID int64     `json:"offering_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// GrantOutcome reports what RecordGrant did.
type GrantOutcome int

const (
	GrantCreated GrantOutcome = iota + 1
	// GrantAlreadyExists is a duplicate confirmation; callers treat it as success.
	GrantAlreadyExists
)

func (o GrantOutcome) String() string {
	switch o {
	case GrantCreated:
		return "created"
	case GrantAlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

// GrantedAccess is a grant joined with the offering fields shown to the buyer.
type GrantedAccess struct {
	OfferingID   int64     `json:"offering_id"`
	Name         string    `json:"name"`
	ResourceLink string    `json:"resource_link"`
	GrantedAt    time.Time `json:"granted_at"`
}
