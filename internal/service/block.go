package service

import (
	"context"

	"github.com/google/uuid"

	"job_marketplace/internal/domain"
	"job_marketplace/internal/repository"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

type BlockService interface {
	// Block добавляет инициатора в blockedBy цели и денормализует флаг
	// блокировки на все треды пары (по всем вакансиям) и их сообщения.
	// Без существующего треда блокировка невозможна - жалоба вместо нее.
	Block(ctx context.Context, role domain.Role, selfID, counterpartID, jobID uuid.UUID, reason string) error
	// Unblock снимает ровно то, что выставил Block; View и квоту не трогает
	Unblock(ctx context.Context, selfID, counterpartID uuid.UUID) error
}

type blockService struct {
	accountRepo      repository.AccountRepository
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	unreadCache      repository.UnreadCacheRepository
	log              logger.Logger
}

func NewBlockService(
	accountRepo repository.AccountRepository,
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	unreadCache repository.UnreadCacheRepository,
	log logger.Logger,
) BlockService {
	return &blockService{
		accountRepo:      accountRepo,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		unreadCache:      unreadCache,
		log:              log,
	}
}

// pairIDs раскладывает пару (инициатор, собеседник) на стороны треда
func pairIDs(role domain.Role, selfID, counterpartID uuid.UUID) (employerID, candidateID uuid.UUID) {
	if role == domain.RoleCandidate {
		return counterpartID, selfID
	}
	return selfID, counterpartID
}

func (s *blockService) Block(ctx context.Context, role domain.Role, selfID, counterpartID, jobID uuid.UUID, reason string) error {
	employerID, candidateID := pairIDs(role, selfID, counterpartID)

	conv, err := s.conversationRepo.GetByKey(ctx, employerID, candidateID, jobID)
	if err != nil {
		return err
	}
	if conv == nil {
		return apperrors.ErrNoConversation
	}

	if err := s.accountRepo.AddBlockedBy(ctx, counterpartID, selfID); err != nil {
		return err
	}

	if err := s.conversationRepo.SetBlockFlag(ctx, employerID, candidateID, role, true); err != nil {
		return err
	}
	if err := s.messageRepo.SetBlockFlag(ctx, employerID, candidateID, role, true); err != nil {
		return err
	}

	if reason != "" {
		s.log.Info("User blocked", "blocker_id", selfID, "blocked_id", counterpartID, "reason", reason)
	}
	s.invalidate(ctx, selfID, counterpartID)

	return nil
}

func (s *blockService) Unblock(ctx context.Context, selfID, counterpartID uuid.UUID) error {
	self, err := s.accountRepo.GetByID(ctx, selfID)
	if err != nil {
		return err
	}

	role := self.Role
	if role != domain.RoleCandidate && role != domain.RoleEmployer {
		return apperrors.ErrForbidden
	}
	employerID, candidateID := pairIDs(role, selfID, counterpartID)

	if err := s.accountRepo.RemoveBlockedBy(ctx, counterpartID, selfID); err != nil {
		return err
	}

	if err := s.conversationRepo.SetBlockFlag(ctx, employerID, candidateID, role, false); err != nil {
		return err
	}
	if err := s.messageRepo.SetBlockFlag(ctx, employerID, candidateID, role, false); err != nil {
		return err
	}

	s.invalidate(ctx, selfID, counterpartID)

	return nil
}

func (s *blockService) invalidate(ctx context.Context, ids ...uuid.UUID) {
	// Флаги блокировки входят в фильтры непрочитанного
	if err := s.unreadCache.Invalidate(ctx, ids...); err != nil {
		s.log.Warn("Failed to invalidate unread cache", "error", err)
	}
}
