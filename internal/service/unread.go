package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"job_marketplace/internal/domain"
	"job_marketplace/internal/repository"
	"job_marketplace/pkg/logger"
)

// unreadCacheTTL - короткий TTL: кэш лишь сглаживает частые опросы счетчика
const unreadCacheTTL = 30 * time.Second

type UnreadService interface {
	GetCounts(ctx context.Context, accountID uuid.UUID) (*domain.UnreadCounts, error)
}

type unreadService struct {
	accountRepo      repository.AccountRepository
	messageRepo      repository.MessageRepository
	notificationRepo repository.NotificationRepository
	unreadCache      repository.UnreadCacheRepository
	log              logger.Logger
}

func NewUnreadService(
	accountRepo repository.AccountRepository,
	messageRepo repository.MessageRepository,
	notificationRepo repository.NotificationRepository,
	unreadCache repository.UnreadCacheRepository,
	log logger.Logger,
) UnreadService {
	return &unreadService{
		accountRepo:      accountRepo,
		messageRepo:      messageRepo,
		notificationRepo: notificationRepo,
		unreadCache:      unreadCache,
		log:              log,
	}
}

func (s *unreadService) GetCounts(ctx context.Context, accountID uuid.UUID) (*domain.UnreadCounts, error) {
	if cached, ok, err := s.unreadCache.Get(ctx, accountID); err == nil && ok {
		return cached, nil
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// Итоговый счетчик - агрегат основной роли аккаунта;
	// рекрутер читает переписку со стороны кандидата
	role := domain.RoleCandidate
	if account.Role == domain.RoleEmployer {
		role = domain.RoleEmployer
	}

	chatUnread, err := s.messageRepo.CountUnread(ctx, accountID, role)
	if err != nil {
		return nil, err
	}
	notificationUnread, err := s.notificationRepo.CountUnread(ctx, accountID)
	if err != nil {
		return nil, err
	}

	counts := &domain.UnreadCounts{
		ChatUnread:         chatUnread,
		NotificationUnread: notificationUnread,
	}

	if err := s.unreadCache.Set(ctx, accountID, counts, unreadCacheTTL); err != nil {
		s.log.Warn("Failed to cache unread counts", "error", err, "account_id", accountID)
	}

	return counts, nil
}
