package repository

import (
	"context"

	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
)

// DialogStore holds transient registration dialogs keyed by conversation id. Implementations
// may evict idle dialogs; Get and Take return (nil, nil) for unknown or evicted conversations.
type DialogStore interface {
	Get(ctx context.Context, conversationID int64) (*entity.RegistrationDraft, error)
	Save(ctx context.Context, draft *entity.RegistrationDraft) error
	Delete(ctx context.Context, conversationID int64) error
	// Take atomically removes and returns the dialog. Of concurrent callers at most one
	// receives it.
	Take(ctx context.Context, conversationID int64) (*entity.RegistrationDraft, error)
}

// Locker serializes work on a key across concurrent callers.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
