package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"job_marketplace/pkg/logger"
)

// DB - срез pgxpool.Pool, достаточный репозиториям; в тестах его
// закрывает pgxmock
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repositories struct {
	Account      AccountRepository
	Subscription SubscriptionRepository
	View         ViewRepository
	Job          JobRepository
	Conversation ConversationRepository
	Message      MessageRepository
	ChatRequest  ChatRequestRepository
	Pricing      PricingRepository
	Notification NotificationRepository
	UnreadCache  UnreadCacheRepository
	RateLimit    RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		Account:      NewAccountRepository(db, log),
		Subscription: NewSubscriptionRepository(db, log),
		View:         NewViewRepository(db, log),
		Job:          NewJobRepository(db, log),
		Conversation: NewConversationRepository(db, log),
		Message:      NewMessageRepository(db, log),
		ChatRequest:  NewChatRequestRepository(db, log),
		Pricing:      NewPricingRepository(db, log),
		Notification: NewNotificationRepository(db, log),
		UnreadCache:  NewUnreadCacheRepository(redis, log),
		RateLimit:    NewRateLimitRepository(redis, log),
	}
}
