// Package session stores registration dialogs between chat updates.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	"github.com/wekeepgrowing/vipgate/internal/domain/repository"
)

// MemoryStore keeps dialogs in process. A dialog idle for longer than ttl is dropped on the
// next access; ttl <= 0 keeps dialogs until they finish.
type MemoryStore struct {
	mu      sync.Mutex
	drafts  map[int64]*entity.RegistrationDraft
	ttl     time.Duration
	nowFunc func() time.Time
}

var _ repository.DialogStore = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		drafts:  make(map[int64]*entity.RegistrationDraft),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

func (s *MemoryStore) expired(d *entity.RegistrationDraft, now time.Time) bool {
	return s.ttl > 0 && now.Sub(d.UpdatedAt) > s.ttl
}

func (s *MemoryStore) Get(_ context.Context, conversationID int64) (*entity.RegistrationDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[conversationID]
	if !ok {
		return nil, nil
	}
	if s.expired(d, s.nowFunc()) {
		delete(s.drafts, conversationID)
		return nil, nil
	}
	clone := *d
	return &clone, nil
}

// Save stores a copy of draft, stamping UpdatedAt, and sweeps expired dialogs.
func (s *MemoryStore) Save(_ context.Context, draft *entity.RegistrationDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	for id, d := range s.drafts {
		if s.expired(d, now) {
			delete(s.drafts, id)
		}
	}

	draft.UpdatedAt = now
	clone := *draft
	s.drafts[draft.ConversationID] = &clone
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, conversationID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, conversationID)
	return nil
}

func (s *MemoryStore) Take(_ context.Context, conversationID int64) (*entity.RegistrationDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[conversationID]
	if !ok {
		return nil, nil
	}
	delete(s.drafts, conversationID)
	if s.expired(d, s.nowFunc()) {
		return nil, nil
	}
	return d, nil
}

// Len reports the number of stored dialogs, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}
