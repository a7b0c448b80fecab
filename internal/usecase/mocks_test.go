package usecase_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/vipgate/internal/domain/errors"
	"github.com/wekeepgrowing/vipgate/internal/domain/provider"
	"github.com/wekeepgrowing/vipgate/internal/domain/repository"
)

// MockEntitlementStore is a mock implementation of EntitlementStore
type MockEntitlementStore struct {
	mock.Mock
}

func (m *MockEntitlementStore) CreateOffering(ctx context.Context, o *entity.Offering) (int64, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEntitlementStore) ListOfferings(ctx context.Context) ([]*entity.Offering, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Offering), args.Error(1)
}

func (m *MockEntitlementStore) GetOffering(ctx context.Context, id int64) (*entity.Offering, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Offering), args.Error(1)
}

func (m *MockEntitlementStore) DeleteOffering(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEntitlementStore) GetOrCreateCustomerMapping(ctx context.Context, buyerID int64, factory repository.CustomerFactory) (string, error) {
	args := m.Called(ctx, buyerID, factory)
	return args.String(0), args.Error(1)
}

func (m *MockEntitlementStore) FindBuyerByExternalCustomerID(ctx context.Context, providerCustomerID string) (int64, error) {
	args := m.Called(ctx, providerCustomerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEntitlementStore) RecordGrant(ctx context.Context, buyerID, offeringID int64) (entity.GrantOutcome, error) {
	args := m.Called(ctx, buyerID, offeringID)
	return args.Get(0).(entity.GrantOutcome), args.Error(1)
}

func (m *MockEntitlementStore) ListGrantsForBuyer(ctx context.Context, buyerID int64) ([]*entity.GrantedAccess, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.GrantedAccess), args.Error(1)
}

// MockPaymentProvider is a mock implementation of PaymentProvider
type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateProduct(ctx context.Context, req *provider.CreateProductRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentProvider) CreatePrice(ctx context.Context, req *provider.CreatePriceRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentProvider) CreateCustomer(ctx context.Context, req *provider.CreateCustomerRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentProvider) CreateCheckoutSession(ctx context.Context, req *provider.CheckoutSessionRequest) (*provider.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.CheckoutSession), args.Error(1)
}

func (m *MockPaymentProvider) ParseWebhook(payload []byte, signature string) (*provider.WebhookEvent, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.WebhookEvent), args.Error(1)
}

func (m *MockPaymentProvider) GetProviderName() string {
	return "mock"
}

// MockMessenger is a mock implementation of Messenger
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) SendText(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

// memoryStore is an in-memory EntitlementStore with the same uniqueness rules as the database.
type memoryStore struct {
	mu        sync.Mutex
	customers sync.Mutex
	nextID    int64
	offerings map[int64]*entity.Offering
	mappings  map[int64]string
	grants    map[[2]int64]bool
	order     [][2]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		offerings: make(map[int64]*entity.Offering),
		mappings:  make(map[int64]string),
		grants:    make(map[[2]int64]bool),
	}
}

func (s *memoryStore) CreateOffering(_ context.Context, o *entity.Offering) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	o.ID = s.nextID
	clone := *o
	s.offerings[o.ID] = &clone
	return o.ID, nil
}

func (s *memoryStore) ListOfferings(context.Context) ([]*entity.Offering, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Offering, 0, len(s.offerings))
	for id := int64(1); id <= s.nextID; id++ {
		if o, ok := s.offerings[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *memoryStore) GetOffering(_ context.Context, id int64) (*entity.Offering, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offerings[id]
	if !ok {
		return nil, domainErrors.ErrOfferingNotFound
	}
	return o, nil
}

func (s *memoryStore) DeleteOffering(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.offerings[id]; !ok {
		return domainErrors.ErrOfferingNotFound
	}
	delete(s.offerings, id)
	for key := range s.grants {
		if key[1] == id {
			delete(s.grants, key)
		}
	}
	return nil
}

func (s *memoryStore) GetOrCreateCustomerMapping(ctx context.Context, buyerID int64, factory repository.CustomerFactory) (string, error) {
	s.customers.Lock()
	defer s.customers.Unlock()

	s.mu.Lock()
	existing, ok := s.mappings[buyerID]
	s.mu.Unlock()
	if ok {
		return existing, nil
	}

	mapping, err := factory(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings[buyerID] = mapping.ProviderCustomerID
	return mapping.ProviderCustomerID, nil
}

func (s *memoryStore) FindBuyerByExternalCustomerID(_ context.Context, providerCustomerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for buyerID, customerID := range s.mappings {
		if customerID == providerCustomerID {
			return buyerID, nil
		}
	}
	return 0, domainErrors.ErrCustomerNotFound
}

func (s *memoryStore) RecordGrant(_ context.Context, buyerID, offeringID int64) (entity.GrantOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]int64{buyerID, offeringID}
	if s.grants[key] {
		return entity.GrantAlreadyExists, nil
	}
	s.grants[key] = true
	s.order = append(s.order, key)
	return entity.GrantCreated, nil
}

func (s *memoryStore) ListGrantsForBuyer(_ context.Context, buyerID int64) ([]*entity.GrantedAccess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.GrantedAccess
	for _, key := range s.order {
		o, ok := s.offerings[key[1]]
		if key[0] != buyerID || !s.grants[key] || !ok {
			continue
		}
		out = append(out, &entity.GrantedAccess{OfferingID: o.ID, Name: o.Name, ResourceLink: o.ResourceLink})
	}
	return out, nil
}

func (s *memoryStore) grantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.grants)
}
