package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegistrationStep is the state of an operator's offering registration dialog.
type RegistrationStep string

const (
	StepAwaitingName             RegistrationStep = "awaiting_name"
	StepAwaitingPrice            RegistrationStep = "awaiting_price"
	StepAwaitingDescription      RegistrationStep = "awaiting_description"
	StepAwaitingResourceLink     RegistrationStep = "awaiting_resource_link"
	StepAwaitingRecurrenceChoice RegistrationStep = "awaiting_recurrence_choice"
)

// AcceptsText reports whether the step is fed by free text rather than a choice.
func (s RegistrationStep) AcceptsText() bool {
	switch s {
	case StepAwaitingName, StepAwaitingPrice, StepAwaitingDescription, StepAwaitingResourceLink:
		return true
	default:
		return false
	}
}

// RegistrationDraft is the per-conversation state of the registration dialog. Fields are
// filled in step order; a field is meaningful only once Step has moved past it.
type RegistrationDraft struct {
	ConversationID int64            `json:"conversation_id"`
	OperatorID     int64            `json:"operator_id"`
	Step           RegistrationStep `json:"step"`
	Name           string           `json:"name,omitempty"`
	Amount         decimal.Decimal  `json:"amount"`
	Description    string           `json:"description,omitempty"`
	ResourceLink   string           `json:"resource_link,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewRegistrationDraft starts a dialog at StepAwaitingName.
func NewRegistrationDraft(conversationID, operatorID int64, now time.Time) *RegistrationDraft {
	return &RegistrationDraft{
		ConversationID: conversationID,
		OperatorID:     operatorID,
		Step:           StepAwaitingName,
		UpdatedAt:      now,
	}
}
