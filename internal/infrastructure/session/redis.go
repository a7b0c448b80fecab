package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wekeepgrowing/vipgate/internal/domain/entity"
	"github.com/wekeepgrowing/vipgate/internal/domain/repository"
	"go.uber.org/zap"
)

const dialogKeyPrefix = "vipgate:dialog:"

// RedisStore keeps dialogs in redis so any replica can continue a conversation. Expiry is
// delegated to redis key TTLs.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ repository.DialogStore = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func dialogKey(conversationID int64) string {
	return dialogKeyPrefix + strconv.FormatInt(conversationID, 10)
}

func (s *RedisStore) Get(ctx context.Context, conversationID int64) (*entity.RegistrationDraft, error) {
	raw, err := s.client.Get(ctx, dialogKey(conversationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		s.logger.Error("Redis dialog get failed",
			zap.Int64("conversation_id", conversationID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to load dialog: %w", err)
	}

	draft := s.decode(conversationID, raw)
	if draft == nil {
		_ = s.client.Del(ctx, dialogKey(conversationID)).Err()
	}
	return draft, nil
}

// Take uses GETDEL, so only one caller sees the dialog.
func (s *RedisStore) Take(ctx context.Context, conversationID int64) (*entity.RegistrationDraft, error) {
	raw, err := s.client.GetDel(ctx, dialogKey(conversationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		s.logger.Error("Redis dialog getdel failed",
			zap.Int64("conversation_id", conversationID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to take dialog: %w", err)
	}
	return s.decode(conversationID, raw), nil
}

// decode returns nil for an unreadable dialog.
func (s *RedisStore) decode(conversationID int64, raw []byte) *entity.RegistrationDraft {
	var draft entity.RegistrationDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		s.logger.Warn("Discarding unreadable dialog",
			zap.Int64("conversation_id", conversationID),
			zap.Error(err))
		return nil
	}
	return &draft
}

func (s *RedisStore) Save(ctx context.Context, draft *entity.RegistrationDraft) error {
	draft.UpdatedAt = time.Now()
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode dialog: %w", err)
	}

	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, dialogKey(draft.ConversationID), raw, ttl).Err(); err != nil {
		s.logger.Error("Redis dialog set failed",
			zap.Int64("conversation_id", draft.ConversationID),
			zap.Error(err))
		return fmt.Errorf("failed to save dialog: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, conversationID int64) error {
	if err := s.client.Del(ctx, dialogKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("failed to delete dialog: %w", err)
	}
	return nil
}
