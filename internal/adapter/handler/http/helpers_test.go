package http

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	domainErrors "github.com/wekeepgrowing/vipgate/internal/domain/errors"
	"github.com/wekeepgrowing/vipgate/internal/domain/repository"
	"github.com/wekeepgrowing/vipgate/internal/infrastructure/telegram"
)

// stubStore implements the parts of EntitlementStore the handlers reach; anything else
// panics through the nil embedded interface.
type stubStore struct {
	repository.EntitlementStore

	mu        sync.Mutex
	offerings map[int64]*entity.Offering
	customers map[string]int64
	grants    map[[2]int64]bool
	grantErr  error
}

func newStubStore() *stubStore {
	return &stubStore{
		offerings: map[int64]*entity.Offering{},
		customers: map[string]int64{},
		grants:    map[[2]int64]bool{},
	}
}

func (s *stubStore) ListOfferings(context.Context) ([]*entity.Offering, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Offering
	for id := int64(1); id <= int64(len(s.offerings)); id++ {
		if o, ok := s.offerings[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubStore) GetOffering(_ context.Context, id int64) (*entity.Offering, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.offerings[id]; ok {
		return o, nil
	}
	return nil, domainErrors.ErrOfferingNotFound
}

func (s *stubStore) DeleteOffering(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.offerings[id]; !ok {
		return domainErrors.ErrOfferingNotFound
	}
	delete(s.offerings, id)
	return nil
}

func (s *stubStore) FindBuyerByExternalCustomerID(_ context.Context, customerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if buyerID, ok := s.customers[customerID]; ok {
		return buyerID, nil
	}
	return 0, domainErrors.ErrCustomerNotFound
}

func (s *stubStore) RecordGrant(_ context.Context, buyerID, offeringID int64) (entity.GrantOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grantErr != nil {
		return 0, s.grantErr
	}
	key := [2]int64{buyerID, offeringID}
	if s.grants[key] {
		return entity.GrantAlreadyExists, nil
	}
	s.grants[key] = true
	return entity.GrantCreated, nil
}

func (s *stubStore) ListGrantsForBuyer(_ context.Context, buyerID int64) ([]*entity.GrantedAccess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.GrantedAccess
	for key := range s.grants {
		if o, ok := s.offerings[key[1]]; ok && key[0] == buyerID {
			out = append(out, &entity.GrantedAccess{OfferingID: o.ID, Name: o.Name, ResourceLink: o.ResourceLink})
		}
	}
	return out, nil
}

// MockPaymentEventRepository is a mock implementation of PaymentEventRepository
type MockPaymentEventRepository struct {
	mock.Mock
}

func (m *MockPaymentEventRepository) Record(ctx context.Context, eventID, eventType string, providerCreatedAt time.Time) (bool, error) {
	args := m.Called(ctx, eventID, eventType, providerCreatedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentEventRepository) MarkProcessed(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *MockPaymentEventRepository) MarkFailed(ctx context.Context, eventID string, cause error) error {
	args := m.Called(ctx, eventID, cause)
	return args.Error(0)
}

// recordingMessenger keeps every text sent per chat.
type recordingMessenger struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (m *recordingMessenger) SendText(_ context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sent == nil {
		m.sent = map[int64][]string{}
	}
	m.sent[chatID] = append(m.sent[chatID], text)
	return nil
}

func (m *recordingMessenger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, texts := range m.sent {
		n += len(texts)
	}
	return n
}

// MockDispatcher is a mock implementation of UpdateDispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, update *telegram.Update) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}
