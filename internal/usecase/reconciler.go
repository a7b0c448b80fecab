package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/vipgate/internal/domain/errors"
	"github.com/wekeepgrowing/vipgate/internal/domain/provider"
	"github.com/wekeepgrowing/vipgate/internal/domain/repository"
	"go.uber.org/zap"
)

// Messenger delivers a text message to a buyer's chat.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Notifications renders the texts sent by the Reconciler.
type Notifications interface {
	AccessGranted(resourceLink string) string
	SubscriptionRenewed() string
	SubscriptionCanceled() string
}

// ReconcileAction is what the Reconciler did with an event.
type ReconcileAction string

const (
	ActionIgnored   ReconcileAction = "ignored"
	ActionDropped   ReconcileAction = "dropped"
	ActionGranted   ReconcileAction = "granted"
	ActionDuplicate ReconcileAction = "duplicate"
	ActionRenewed   ReconcileAction = "renewal_notified"
	ActionCanceled  ReconcileAction = "cancellation_notified"
)

type ReconcileResult struct {
	Action     ReconcileAction
	BuyerID    int64
	OfferingID int64
	// Reason explains a dropped event.
	Reason string
	// Notified is false when the buyer message could not be delivered.
	Notified bool
}

// Reconciler applies verified payment events to the entitlement store.
type Reconciler struct {
	store         repository.EntitlementStore
	messenger     Messenger
	notifications Notifications
	logger        *zap.Logger
}

func NewReconciler(store repository.EntitlementStore, messenger Messenger, notifications Notifications, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		store:         store,
		messenger:     messenger,
		notifications: notifications,
		logger:        logger,
	}
}

// Apply handles one verified event. Malformed or unknown-customer events are dropped with a
// nil error; only store failures are returned, so redelivery can retry them.
func (r *Reconciler) Apply(ctx context.Context, event *provider.WebhookEvent) (*ReconcileResult, error) {
	switch event.Type {
	case provider.EventTypeCheckoutCompleted:
		return r.applyCheckoutCompleted(ctx, event)
	case provider.EventTypeInvoicePaid:
		return r.notifyCustomer(ctx, event, ActionRenewed, r.notifications.SubscriptionRenewed())
	case provider.EventTypeSubscriptionCanceled:
		return r.notifyCustomer(ctx, event, ActionCanceled, r.notifications.SubscriptionCanceled())
	default:
		r.logger.Debug("Ignoring payment event",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.RawType))
		return &ReconcileResult{Action: ActionIgnored}, nil
	}
}

func (r *Reconciler) applyCheckoutCompleted(ctx context.Context, event *provider.WebhookEvent) (*ReconcileResult, error) {
	buyerID, offeringID, err := correlationIDs(event.Metadata)
	if err != nil {
		r.logger.Warn("Dropping malformed checkout event",
			zap.String("event_id", event.ID),
			zap.Any("metadata", event.Metadata),
			zap.Error(err))
		return &ReconcileResult{Action: ActionDropped, Reason: err.Error()}, nil
	}

	offering, err := r.store.GetOffering(ctx, offeringID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrOfferingNotFound) {
			r.logger.Warn("Dropping checkout event for unknown offering",
				zap.String("event_id", event.ID),
				zap.Int64("buyer_id", buyerID),
				zap.Int64("offering_id", offeringID))
			return &ReconcileResult{Action: ActionDropped, BuyerID: buyerID, OfferingID: offeringID, Reason: err.Error()}, nil
		}
		return nil, fmt.Errorf("failed to load offering %d: %w", offeringID, err)
	}

	outcome, err := r.store.RecordGrant(ctx, buyerID, offeringID)
	if err != nil {
		return nil, fmt.Errorf("failed to record grant: %w", err)
	}

	result := &ReconcileResult{BuyerID: buyerID, OfferingID: offeringID}
	if outcome == entity.GrantAlreadyExists {
		r.logger.Info("Duplicate payment confirmation",
			zap.String("event_id", event.ID),
			zap.Int64("buyer_id", buyerID),
			zap.Int64("offering_id", offeringID))
		result.Action = ActionDuplicate
		return result, nil
	}

	result.Action = ActionGranted
	r.logger.Info("Access granted",
		zap.String("event_id", event.ID),
		zap.Int64("buyer_id", buyerID),
		zap.Int64("offering_id", offeringID))
	result.Notified = r.send(ctx, event, buyerID, r.notifications.AccessGranted(offering.ResourceLink))
	return result, nil
}

func (r *Reconciler) notifyCustomer(ctx context.Context, event *provider.WebhookEvent, action ReconcileAction, text string) (*ReconcileResult, error) {
	if event.CustomerID == "" {
		r.logger.Warn("Dropping event without customer",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.RawType))
		return &ReconcileResult{Action: ActionDropped, Reason: "missing customer"}, nil
	}

	buyerID, err := r.store.FindBuyerByExternalCustomerID(ctx, event.CustomerID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrCustomerNotFound) {
			r.logger.Info("Dropping event for unknown customer",
				zap.String("event_id", event.ID),
				zap.String("event_type", event.RawType),
				zap.String("customer_id", event.CustomerID))
			return &ReconcileResult{Action: ActionDropped, Reason: err.Error()}, nil
		}
		return nil, fmt.Errorf("failed to resolve customer %s: %w", event.CustomerID, err)
	}

	return &ReconcileResult{
		Action:   action,
		BuyerID:  buyerID,
		Notified: r.send(ctx, event, buyerID, text),
	}, nil
}

// send is best effort; a failed delivery never undoes the state change.
func (r *Reconciler) send(ctx context.Context, event *provider.WebhookEvent, buyerID int64, text string) bool {
	if err := r.messenger.SendText(ctx, buyerID, text); err != nil {
		r.logger.Error("Failed to notify buyer",
			zap.String("event_id", event.ID),
			zap.Int64("buyer_id", buyerID),
			zap.Error(err))
		return false
	}
	return true
}

func correlationIDs(metadata map[string]string) (buyerID, offeringID int64, err error) {
	rawBuyer, rawOffering := metadata[MetadataBuyerID], metadata[MetadataOfferingID]
	if rawBuyer == "" || rawOffering == "" {
		return 0, 0, domainErrors.ErrMalformedEvent
	}
	buyerID, err = strconv.ParseInt(rawBuyer, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: buyer_id %q", domainErrors.ErrMalformedEvent, rawBuyer)
	}
	offeringID, err = strconv.ParseInt(rawOffering, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: offering_id %q", domainErrors.ErrMalformedEvent, rawOffering)
	}
	return buyerID, offeringID, nil
}
