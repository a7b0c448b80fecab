package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/vipgate/internal/domain/errors"
	"github.com/wekeepgrowing/vipgate/internal/domain/provider"
	"github.com/wekeepgrowing/vipgate/internal/domain/repository"
	"go.uber.org/zap"
)

// Prompt tells the chat layer what to say after a registration step.
type Prompt int

const (
	PromptAskName Prompt = iota + 1
	PromptAskPrice
	PromptInvalidPrice
	PromptAskDescription
	PromptAskLink
	PromptInvalidLink
	PromptAskRecurrence
	PromptCreated
	PromptProviderFailure
	PromptInternalFailure
	PromptCanceled
	PromptNothingToCancel
)

// RegistrationReply is the outcome of one dialog turn.
type RegistrationReply struct {
	Prompt Prompt
	// Offering is set with PromptCreated.
	Offering *entity.Offering
	// Detail carries the provider's message with PromptProviderFailure.
	Detail string
}

type RegistrationConfig struct {
	AdminID    int64
	Currency   string
	LinkPrefix string
}

// RegistrationService drives the operator dialog that defines a new offering.
type RegistrationService struct {
	store    repository.EntitlementStore
	provider provider.PaymentProvider
	dialogs  repository.DialogStore
	config   RegistrationConfig
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

func NewRegistrationService(
	store repository.EntitlementStore,
	paymentProvider provider.PaymentProvider,
	dialogs repository.DialogStore,
	config RegistrationConfig,
	logger *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		store:    store,
		provider: paymentProvider,
		dialogs:  dialogs,
		config:   config,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// IsOperator reports whether userID may register offerings.
func (s *RegistrationService) IsOperator(userID int64) bool {
	return s.config.AdminID != 0 && userID == s.config.AdminID
}

// Start opens a dialog for conversationID. Non-operators get ErrAuthorizationDenied and no
// state is touched. Starting again restarts the dialog from the first prompt.
func (s *RegistrationService) Start(ctx context.Context, conversationID, operatorID int64) (*RegistrationReply, error) {
	if !s.IsOperator(operatorID) {
		s.logger.Warn("Registration denied",
			zap.Int64("operator_id", operatorID),
			zap.Int64("conversation_id", conversationID))
		return nil, domainErrors.ErrAuthorizationDenied
	}

	draft := entity.NewRegistrationDraft(conversationID, operatorID, s.now())
	if err := s.dialogs.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to start registration: %w", err)
	}
	return &RegistrationReply{Prompt: PromptAskName}, nil
}

// HandleText feeds free text into the dialog. It returns ErrNoActiveDialog when the
// conversation has no dialog waiting for text.
func (s *RegistrationService) HandleText(ctx context.Context, conversationID, operatorID int64, text string) (*RegistrationReply, error) {
	draft, err := s.activeDraft(ctx, conversationID, operatorID)
	if err != nil {
		return nil, err
	}
	if !draft.Step.AcceptsText() {
		return nil, domainErrors.ErrNoActiveDialog
	}

	text = strings.TrimSpace(text)
	var reply *RegistrationReply

	switch draft.Step {
	case entity.StepAwaitingName:
		if text == "" {
			return &RegistrationReply{Prompt: PromptAskName}, nil
		}
		draft.Name = text
		draft.Step = entity.StepAwaitingPrice
		reply = &RegistrationReply{Prompt: PromptAskPrice}

	case entity.StepAwaitingPrice:
		amount, err := parsePrice(text, s.config.Currency)
		if err != nil {
			s.logger.Debug("Rejected price input",
				zap.Int64("conversation_id", conversationID),
				zap.String("input", text),
				zap.Error(err))
			return &RegistrationReply{Prompt: PromptInvalidPrice}, nil
		}
		draft.Amount = amount
		draft.Step = entity.StepAwaitingDescription
		reply = &RegistrationReply{Prompt: PromptAskDescription}

	case entity.StepAwaitingDescription:
		draft.Description = text
		draft.Step = entity.StepAwaitingResourceLink
		reply = &RegistrationReply{Prompt: PromptAskLink}

	case entity.StepAwaitingResourceLink:
		if err := s.checkResourceLink(text); err != nil {
			s.logger.Debug("Rejected resource link",
				zap.Int64("conversation_id", conversationID),
				zap.Error(err))
			return &RegistrationReply{Prompt: PromptInvalidLink}, nil
		}
		draft.ResourceLink = text
		draft.Step = entity.StepAwaitingRecurrenceChoice
		reply = &RegistrationReply{Prompt: PromptAskRecurrence}
	}

	if err := s.dialogs.Save(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to save registration: %w", err)
	}
	return reply, nil
}

// HandleRecurrenceChoice completes the dialog: the product and price are created with the
// payment provider and the offering is stored. The dialog ends whatever the outcome.
func (s *RegistrationService) HandleRecurrenceChoice(ctx context.Context, conversationID, operatorID int64, recurring bool) (*RegistrationReply, error) {
	draft, err := s.activeDraft(ctx, conversationID, operatorID)
	if err != nil {
		return nil, err
	}
	if draft.Step != entity.StepAwaitingRecurrenceChoice {
		return nil, domainErrors.ErrNoActiveDialog
	}

	// Only the caller that takes the dialog provisions; a repeated press finds it gone.
	draft, err = s.dialogs.Take(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim registration: %w", err)
	}
	if draft == nil {
		return nil, domainErrors.ErrNoActiveDialog
	}
	if draft.OperatorID != operatorID || draft.Step != entity.StepAwaitingRecurrenceChoice {
		// restarted between the read and the take
		if err := s.dialogs.Save(ctx, draft); err != nil {
			s.logger.Warn("Failed to restore registration dialog",
				zap.Int64("conversation_id", conversationID),
				zap.Error(err))
		}
		return nil, domainErrors.ErrNoActiveDialog
	}

	offering, err := s.provision(ctx, draft, recurring)
	if err != nil {
		if pe, ok := provider.AsProviderError(err); ok {
			s.logger.Warn("Provider rejected offering",
				zap.String("name", draft.Name),
				zap.String("code", pe.Code),
				zap.Error(err))
			return &RegistrationReply{Prompt: PromptProviderFailure, Detail: pe.Message}, nil
		}
		s.logger.Error("Failed to create offering",
			zap.String("name", draft.Name),
			zap.Error(err))
		return &RegistrationReply{Prompt: PromptInternalFailure}, nil
	}

	s.logger.Info("Offering created",
		zap.Int64("offering_id", offering.ID),
		zap.String("name", offering.Name),
		zap.String("price_ref", offering.PriceRef),
		zap.Bool("recurring", offering.Recurring))
	return &RegistrationReply{Prompt: PromptCreated, Offering: offering}, nil
}

// Cancel discards the conversation's dialog.
func (s *RegistrationService) Cancel(ctx context.Context, conversationID int64) (*RegistrationReply, error) {
	draft, err := s.dialogs.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return &RegistrationReply{Prompt: PromptNothingToCancel}, nil
	}
	if err := s.dialogs.Delete(ctx, conversationID); err != nil {
		return nil, err
	}
	return &RegistrationReply{Prompt: PromptCanceled}, nil
}

func (s *RegistrationService) activeDraft(ctx context.Context, conversationID, operatorID int64) (*entity.RegistrationDraft, error) {
	draft, err := s.dialogs.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if draft == nil || draft.OperatorID != operatorID {
		return nil, domainErrors.ErrNoActiveDialog
	}
	return draft, nil
}

type provisioningRequest struct {
	Name         string `validate:"required"`
	UnitAmount   int64  `validate:"gt=0"`
	ResourceLink string `validate:"required,url"`
	Currency     string `validate:"required,len=3"`
}

// provision runs product, price and store writes in that order. A failure after the product
// exists leaves it orphaned at the provider.
func (s *RegistrationService) provision(ctx context.Context, draft *entity.RegistrationDraft, recurring bool) (*entity.Offering, error) {
	currency := strings.ToLower(s.config.Currency)
	unitAmount, ok := toMinorUnits(draft.Amount, currency)
	if !ok {
		return nil, fmt.Errorf("price %s %s out of range", draft.Amount, currency)
	}
	req := provisioningRequest{
		Name:         draft.Name,
		UnitAmount:   unitAmount,
		ResourceLink: draft.ResourceLink,
		Currency:     currency,
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("incomplete registration: %w", err)
	}

	productID, err := s.provider.CreateProduct(ctx, &provider.CreateProductRequest{
		Name:        draft.Name,
		Description: draft.Description,
	})
	if err != nil {
		return nil, err
	}

	priceReq := &provider.CreatePriceRequest{
		ProductID:  productID,
		UnitAmount: req.UnitAmount,
		Currency:   req.Currency,
	}
	if recurring {
		priceReq.RecurringInterval = provider.IntervalMonth
	}
	priceID, err := s.provider.CreatePrice(ctx, priceReq)
	if err != nil {
		return nil, err
	}

	offering := &entity.Offering{
		Name:         draft.Name,
		PriceRef:     priceID,
		Description:  draft.Description,
		ResourceLink: draft.ResourceLink,
		Recurring:    recurring,
	}
	if _, err := s.store.CreateOffering(ctx, offering); err != nil {
		s.logger.Error("Offering provisioned at provider but not stored",
			zap.String("product_id", productID),
			zap.String("price_id", priceID),
			zap.Error(err))
		return nil, err
	}
	return offering, nil
}

// zeroDecimalCurrencies are charged in whole units.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// minorUnitExponent is the number of decimal places between the major and the minor unit.
func minorUnitExponent(currency string) int32 {
	if zeroDecimalCurrencies[strings.ToLower(currency)] {
		return 0
	}
	return 2
}

// parsePrice accepts a plain decimal amount in major units.
func parsePrice(text, currency string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, domainErrors.NewValidationError("price", err.Error())
	}
	if !amount.IsPositive() {
		return decimal.Zero, domainErrors.NewValidationError("price", "must be positive")
	}
	minor, ok := toMinorUnits(amount, currency)
	if !ok {
		return decimal.Zero, domainErrors.NewValidationError("price", "too large")
	}
	if minor <= 0 {
		return decimal.Zero, domainErrors.NewValidationError("price", "must be positive")
	}
	return amount, nil
}

// toMinorUnits converts to the currency's minor unit, rounding half away from zero. ok is
// false when the result does not fit in an int64.
func toMinorUnits(amount decimal.Decimal, currency string) (int64, bool) {
	minor := amount.Shift(minorUnitExponent(currency)).Round(0)
	if minor.GreaterThan(maxMinorUnits) || minor.LessThan(maxMinorUnits.Neg()) {
		return 0, false
	}
	return minor.IntPart(), true
}

func (s *RegistrationService) checkResourceLink(link string) error {
	if !strings.HasPrefix(link, s.config.LinkPrefix) || len(link) == len(s.config.LinkPrefix) {
		return domainErrors.NewValidationError("resource_link", "must start with "+s.config.LinkPrefix)
	}
	if err := s.validate.Var(link, "url"); err != nil {
		return domainErrors.NewValidationError("resource_link", "not a valid url")
	}
	return nil
}
