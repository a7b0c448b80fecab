package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	"github.com/wekeepgrowing/vipgate/internal/domain/provider"
	"github.com/wekeepgrowing/vipgate/internal/infrastructure/session"
	"github.com/wekeepgrowing/vipgate/internal/messages"
	"github.com/wekeepgrowing/vipgate/internal/usecase"
	"go.uber.org/zap"
)

var notifications = messages.MustLoad()

func checkoutCompleted(id string, metadata map[string]string) *provider.WebhookEvent {
	return &provider.WebhookEvent{
		ID:        id,
		Type:      provider.EventTypeCheckoutCompleted,
		RawType:   "checkout.session.completed",
		Metadata:  metadata,
		CreatedAt: time.Unix(1700000000, 0),
	}
}

func seedGold(t *testing.T, store *memoryStore) *entity.Offering {
	t.Helper()
	offering := &entity.Offering{Name: "Gold", PriceRef: "price_1", ResourceLink: "https://t.me/goldgroup", Recurring: true}
	_, err := store.CreateOffering(context.Background(), offering)
	require.NoError(t, err)
	return offering
}

func TestReconciler_GrantsOncePerDelivery(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	messenger := new(MockMessenger)
	reconciler := usecase.NewReconciler(store, messenger, notifications, zap.NewNop())
	gold := seedGold(t, store)

	messenger.On("SendText", ctx, int64(42), notifications.AccessGranted("https://t.me/goldgroup")).Return(nil).Once()

	event := checkoutCompleted("evt_1", map[string]string{"buyer_id": "42", "offering_id": "1"})

	result, err := reconciler.Apply(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, usecase.ActionGranted, result.Action)
	assert.Equal(t, int64(42), result.BuyerID)
	assert.Equal(t, gold.ID, result.OfferingID)
	assert.True(t, result.Notified)

	result, err = reconciler.Apply(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, usecase.ActionDuplicate, result.Action)
	assert.False(t, result.Notified)

	assert.Equal(t, 1, store.grantCount())
	messenger.AssertNumberOfCalls(t, "SendText", 1)
	messenger.AssertExpectations(t)
}

func TestReconciler_DropsMalformedCheckout(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		metadata map[string]string
	}{
		{name: "no metadata", metadata: nil},
		{name: "missing buyer", metadata: map[string]string{"offering_id": "1"}},
		{name: "missing offering", metadata: map[string]string{"buyer_id": "42"}},
		{name: "non-numeric buyer", metadata: map[string]string{"buyer_id": "abc", "offering_id": "1"}},
		{name: "non-numeric offering", metadata: map[string]string{"buyer_id": "42", "offering_id": "x1"}},
		{name: "unknown offering", metadata: map[string]string{"buyer_id": "42", "offering_id": "99"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			messenger := new(MockMessenger)
			reconciler := usecase.NewReconciler(store, messenger, notifications, zap.NewNop())
			seedGold(t, store)

			result, err := reconciler.Apply(ctx, checkoutCompleted("evt_bad", tt.metadata))

			require.NoError(t, err)
			assert.Equal(t, usecase.ActionDropped, result.Action)
			assert.NotEmpty(t, result.Reason)
			assert.Equal(t, 0, store.grantCount())
			messenger.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestReconciler_StoreFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	store := new(MockEntitlementStore)
	messenger := new(MockMessenger)
	reconciler := usecase.NewReconciler(store, messenger, notifications, zap.NewNop())

	store.On("GetOffering", ctx, int64(1)).Return(&entity.Offering{ID: 1, ResourceLink: "https://t.me/gold"}, nil)
	store.On("RecordGrant", ctx, int64(42), int64(1)).Return(entity.GrantOutcome(0), errors.New("connection reset"))

	result, err := reconciler.Apply(ctx, checkoutCompleted("evt_1", map[string]string{"buyer_id": "42", "offering_id": "1"}))

	assert.Error(t, err)
	assert.Nil(t, result)
	messenger.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_OfferingLookupFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	store := new(MockEntitlementStore)
	reconciler := usecase.NewReconciler(store, new(MockMessenger), notifications, zap.NewNop())

	store.On("GetOffering", ctx, int64(1)).Return(nil, errors.New("timeout"))

	_, err := reconciler.Apply(ctx, checkoutCompleted("evt_1", map[string]string{"buyer_id": "42", "offering_id": "1"}))

	assert.Error(t, err)
	store.AssertNotCalled(t, "RecordGrant", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_NotificationFailureKeepsGrant(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	messenger := new(MockMessenger)
	reconciler := usecase.NewReconciler(store, messenger, notifications, zap.NewNop())
	seedGold(t, store)

	messenger.On("SendText", ctx, int64(42), mock.Anything).Return(errors.New("Forbidden: bot was blocked by the user"))

	result, err := reconciler.Apply(ctx, checkoutCompleted("evt_1", map[string]string{"buyer_id": "42", "offering_id": "1"}))

	require.NoError(t, err)
	assert.Equal(t, usecase.ActionGranted, result.Action)
	assert.False(t, result.Notified)
	assert.Equal(t, 1, store.grantCount())
}

func TestReconciler_SubscriptionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	messenger := new(MockMessenger)
	reconciler := usecase.NewReconciler(store, messenger, notifications, zap.NewNop())

	_, err := store.GetOrCreateCustomerMapping(ctx, 42, func(context.Context) (*entity.CustomerMapping, error) {
		return &entity.CustomerMapping{ProviderCustomerID: "cus_1"}, nil
	})
	require.NoError(t, err)

	messenger.On("SendText", ctx, int64(42), notifications.SubscriptionRenewed()).Return(nil).Once()
	messenger.On("SendText", ctx, int64(42), notifications.SubscriptionCanceled()).Return(nil).Once()

	renewed, err := reconciler.Apply(ctx, &provider.WebhookEvent{ID: "evt_2", Type: provider.EventTypeInvoicePaid, RawType: "invoice.paid", CustomerID: "cus_1"})
	require.NoError(t, err)
	assert.Equal(t, usecase.ActionRenewed, renewed.Action)
	assert.Equal(t, int64(42), renewed.BuyerID)
	assert.True(t, renewed.Notified)

	canceled, err := reconciler.Apply(ctx, &provider.WebhookEvent{ID: "evt_3", Type: provider.EventTypeSubscriptionCanceled, RawType: "customer.subscription.deleted", CustomerID: "cus_1"})
	require.NoError(t, err)
	assert.Equal(t, usecase.ActionCanceled, canceled.Action)
	assert.True(t, canceled.Notified)

	messenger.AssertExpectations(t)
	assert.Equal(t, 0, store.grantCount())
}

func TestReconciler_UnknownCustomerIsDropped(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	messenger := new(MockMessenger)
	reconciler := usecase.NewReconciler(store, messenger, notifications, zap.NewNop())

	for _, event := range []*provider.WebhookEvent{
		{ID: "evt_4", Type: provider.EventTypeInvoicePaid, RawType: "invoice.paid", CustomerID: "cus_unknown"},
		{ID: "evt_5", Type: provider.EventTypeSubscriptionCanceled, RawType: "customer.subscription.deleted", CustomerID: "cus_unknown"},
		{ID: "evt_6", Type: provider.EventTypeInvoicePaid, RawType: "invoice.paid"},
	} {
		result, err := reconciler.Apply(ctx, event)
		require.NoError(t, err)
		assert.Equal(t, usecase.ActionDropped, result.Action, event.ID)
	}

	messenger.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_IgnoresUnhandledEvents(t *testing.T) {
	ctx := context.Background()
	store := new(MockEntitlementStore)
	messenger := new(MockMessenger)
	reconciler := usecase.NewReconciler(store, messenger, notifications, zap.NewNop())

	result, err := reconciler.Apply(ctx, &provider.WebhookEvent{ID: "evt_7", Type: provider.EventTypeUnhandled, RawType: "payment_intent.created"})

	require.NoError(t, err)
	assert.Equal(t, usecase.ActionIgnored, result.Action)
	store.AssertExpectations(t)
	messenger.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
}

// Operator registers Gold, a buyer checks out, the provider confirms payment twice and
// later renews the subscription.
func TestGoldOfferingEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	paymentProvider := new(MockPaymentProvider)
	messenger := new(MockMessenger)
	registration := usecase.NewRegistrationService(store, paymentProvider, session.NewMemoryStore(time.Hour), registrationConfig, zap.NewNop())
	checkout := usecase.NewCheckoutService(store, paymentProvider, checkoutConfig, zap.NewNop())
	reconciler := usecase.NewReconciler(store, messenger, notifications, zap.NewNop())
	catalog := usecase.NewCatalogService(store, zap.NewNop())

	paymentProvider.On("CreateProduct", ctx, mock.Anything).Return("prod_gold", nil)
	paymentProvider.On("CreatePrice", ctx, &provider.CreatePriceRequest{
		ProductID:         "prod_gold",
		UnitAmount:        1099,
		Currency:          "usd",
		RecurringInterval: provider.IntervalMonth,
	}).Return("price_gold", nil)
	paymentProvider.On("CreateCustomer", mock.Anything, mock.Anything).Return("cus_42", nil).Once()
	paymentProvider.On("CreateCheckoutSession", ctx, mock.Anything).
		Return(&provider.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/c/cs_1"}, nil)
	messenger.On("SendText", ctx, int64(42), mock.Anything).Return(nil)

	_, err := registration.Start(ctx, conversationID, adminID)
	require.NoError(t, err)
	for _, input := range []string{"Gold", "10.99", "VIP chat", "https://t.me/goldgroup"} {
		_, err := registration.HandleText(ctx, conversationID, adminID, input)
		require.NoError(t, err)
	}
	reply, err := registration.HandleRecurrenceChoice(ctx, conversationID, adminID, true)
	require.NoError(t, err)
	require.Equal(t, usecase.PromptCreated, reply.Prompt)

	offerings, err := catalog.ListOfferings(ctx)
	require.NoError(t, err)
	require.Len(t, offerings, 1)
	gold := offerings[0]
	assert.Equal(t, "price_gold", gold.PriceRef)

	checkoutSession, err := checkout.InitiateCheckout(ctx, entity.Buyer{ID: 42, FirstName: "Ana"}, gold.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, checkoutSession.URL)

	confirmation := checkoutCompleted("evt_paid", map[string]string{"buyer_id": "42", "offering_id": "1"})
	for i := 0; i < 2; i++ {
		_, err := reconciler.Apply(ctx, confirmation)
		require.NoError(t, err)
	}

	renewal, err := reconciler.Apply(ctx, &provider.WebhookEvent{ID: "evt_renew", Type: provider.EventTypeInvoicePaid, CustomerID: "cus_42"})
	require.NoError(t, err)
	assert.Equal(t, usecase.ActionRenewed, renewal.Action)

	access, err := catalog.ListAccess(ctx, 42)
	require.NoError(t, err)
	require.Len(t, access, 1)
	assert.Equal(t, "https://t.me/goldgroup", access[0].ResourceLink)

	messenger.AssertCalled(t, "SendText", ctx, int64(42), notifications.AccessGranted("https://t.me/goldgroup"))
	messenger.AssertCalled(t, "SendText", ctx, int64(42), notifications.SubscriptionRenewed())
	messenger.AssertNumberOfCalls(t, "SendText", 2)
}
