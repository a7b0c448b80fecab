package entity

import "time"

// CheckoutMode is how the payment provider charges for an offering.
type CheckoutMode string

const (
	CheckoutModePayment      CheckoutMode = "payment"
	CheckoutModeSubscription CheckoutMode = "subscription"
)

// Offering is a purchasable access to a restricted group.
type Offering struct {
	ID int64 `json:"id"`
	// Name is not unique; operators may register the same name twice.
	Name        string `json:"name"`
	PriceRef    string `json:"price_ref"` // provider price id
	Description string `json:"description"`
	// ResourceLink is the invite link delivered to buyers after payment.
	ResourceLink string    `json:"resource_link"`
	Recurring    bool      `json:"recurring"`
	CreatedAt    time.Time `json:"created_at"`
}

// CheckoutMode derives the provider checkout mode from the recurrence flag.
func (o *Offering) CheckoutMode() CheckoutMode {
	if o.Recurring {
		return CheckoutModeSubscription
	}
	return CheckoutModePayment
}
