package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"job_marketplace/internal/domain"
	"job_marketplace/internal/repository"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

type QuotaService interface {
	// ChargeView списывает стоимость первого контакта группы работодателя
	// с кандидатом. Повторный вызов для пары с активным View бесплатен.
	ChargeView(ctx context.Context, employer, candidate *domain.Account) error
	// RecordFreeView регистрирует контакт без списания (путь отклика
	// кандидата): View нужен для дедупликации будущих ручных разблокировок
	RecordFreeView(ctx context.Context, employer, candidate *domain.Account) error
}

type quotaService struct {
	subscriptionRepo repository.SubscriptionRepository
	viewRepo         repository.ViewRepository
	pricingRepo      repository.PricingRepository
	log              logger.Logger
}

func NewQuotaService(
	subscriptionRepo repository.SubscriptionRepository,
	viewRepo repository.ViewRepository,
	pricingRepo repository.PricingRepository,
	log logger.Logger,
) QuotaService {
	return &quotaService{
		subscriptionRepo: subscriptionRepo,
		viewRepo:         viewRepo,
		pricingRepo:      pricingRepo,
		log:              log,
	}
}

func (s *quotaService) ChargeView(ctx context.Context, employer, candidate *domain.Account) error {
	groupID := employer.QuotaGroupID()

	// Группа уже оплатила этого кандидата - бесплатно
	existing, err := s.viewRepo.FindActive(ctx, groupID, candidate.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	// Квота группы живет на корневом аккаунте
	sub, err := s.subscriptionRepo.GetActiveByAccount(ctx, groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrNoViewsIncluded
		}
		return err
	}

	switch {
	case sub.Views.IsUnlimited:
		// Счетчик не трогаем, View записываем для аудита

	case !sub.Views.IsIncluded:
		return apperrors.ErrNoViewsIncluded

	case sub.IsWallet:
		pricing, err := s.pricingRepo.GetPricing(ctx, employer.CountryCode)
		if err != nil {
			return err
		}
		unitCost := pricing.UnitCost()

		debited, err := s.subscriptionRepo.DebitWallet(ctx, sub.ID, unitCost)
		if err != nil {
			return err
		}
		if !debited {
			return apperrors.ErrInsufficientWallet
		}

	default:
		decremented, err := s.subscriptionRepo.DecrementViews(ctx, sub.ID)
		if err != nil {
			return err
		}
		if !decremented {
			return apperrors.ErrOutOfViews
		}
	}

	return s.recordView(ctx, groupID, employer.ID, candidate.ID, sub)
}

func (s *quotaService) RecordFreeView(ctx context.Context, employer, candidate *domain.Account) error {
	groupID := employer.QuotaGroupID()

	sub, err := s.subscriptionRepo.GetActiveByAccount(ctx, groupID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Без подписки срок действия View не определить - пропускаем
			s.log.Warn("No active subscription for free view", "employer_id", employer.ID)
			return nil
		}
		return err
	}

	return s.recordView(ctx, groupID, employer.ID, candidate.ID, sub)
}

func (s *quotaService) recordView(ctx context.Context, groupID, employerID, candidateID uuid.UUID, sub *domain.Subscription) error {
	view := &domain.View{
		ID:          uuid.New(),
		GroupID:     groupID,
		EmployerID:  employerID,
		CandidateID: candidateID,
		ExpiresAt:   sub.ViewExpiration(),
	}

	created, err := s.viewRepo.Record(ctx, view)
	if err != nil {
		return err
	}
	if !created {
		// Конкурентная первая попытка уже записала View - идемпотентный исход
		s.log.Debug("View already recorded", "group_id", groupID, "candidate_id", candidateID)
	}

	return nil
}
