package entity

import (
	"fmt"
	"strings"
)

// Buyer is the chat identity of a purchaser.
type Buyer struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

// DisplayName is a best-effort human name for provider records.
func (b Buyer) DisplayName() string {
	return strings.TrimSpace(b.FirstName + " " + b.LastName)
}

// SyntheticEmail is a stable, non-identifying address derived from the buyer id.
func (b Buyer) SyntheticEmail() string {
	return fmt.Sprintf("%d@telegram.user", b.ID)
}
