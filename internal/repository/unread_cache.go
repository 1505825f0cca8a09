package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"job_marketplace/internal/domain"
	"job_marketplace/pkg/logger"
)

type UnreadCacheRepository interface {
	Get(ctx context.Context, accountID uuid.UUID) (*domain.UnreadCounts, bool, error)
	Set(ctx context.Context, accountID uuid.UUID, counts *domain.UnreadCounts, ttl time.Duration) error
	Invalidate(ctx context.Context, accountIDs ...uuid.UUID) error
}

type unreadCacheRepository struct {
	redis *redis.Client
	log   logger.Logger
}

func NewUnreadCacheRepository(redis *redis.Client, log logger.Logger) UnreadCacheRepository {
	return &unreadCacheRepository{redis: redis, log: log}
}

func unreadKey(accountID uuid.UUID) string {
	return fmt.Sprintf("unread:%s", accountID)
}

func (r *unreadCacheRepository) Get(ctx context.Context, accountID uuid.UUID) (*domain.UnreadCounts, bool, error) {
	raw, err := r.redis.Get(ctx, unreadKey(accountID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		r.log.Error("Failed to get unread cache", "error", err, "account_id", accountID)
		return nil, false, err
	}

	counts := &domain.UnreadCounts{}
	if err := json.Unmarshal(raw, counts); err != nil {
		// Битую запись выкидываем и пересчитываем
		r.redis.Del(ctx, unreadKey(accountID))
		return nil, false, nil
	}

	return counts, true, nil
}

func (r *unreadCacheRepository) Set(ctx context.Context, accountID uuid.UUID, counts *domain.UnreadCounts, ttl time.Duration) error {
	raw, err := json.Marshal(counts)
	if err != nil {
		return err
	}

	if err := r.redis.Set(ctx, unreadKey(accountID), raw, ttl).Err(); err != nil {
		r.log.Error("Failed to set unread cache", "error", err, "account_id", accountID)
		return err
	}

	return nil
}

func (r *unreadCacheRepository) Invalidate(ctx context.Context, accountIDs ...uuid.UUID) error {
	if len(accountIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(accountIDs))
	for _, id := range accountIDs {
		keys = append(keys, unreadKey(id))
	}

	if err := r.redis.Del(ctx, keys...).Err(); err != nil {
		r.log.Error("Failed to invalidate unread cache", "error", err)
		return err
	}

	return nil
}
