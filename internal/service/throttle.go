package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"job_marketplace/internal/domain"
	"job_marketplace/internal/repository"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

type ThrottleService interface {
	// CheckInvite проверяет, не вышла ли вакансия бесплатного пакета
	// за пределы промо-окна (возраст вакансии в днях)
	CheckInvite(ctx context.Context, employer *domain.Account, job *domain.Job) error
	// CheckApply проверяет порог откликнувшихся на бесплатном пакете;
	// true - вакансия заполнена, отклик мягко отклоняется без ошибки
	CheckApply(ctx context.Context, employer *domain.Account, job *domain.Job, candidateID uuid.UUID) (bool, error)
}

type throttleService struct {
	subscriptionRepo repository.SubscriptionRepository
	conversationRepo repository.ConversationRepository
	pricingRepo      repository.PricingRepository
	log              logger.Logger
}

func NewThrottleService(
	subscriptionRepo repository.SubscriptionRepository,
	conversationRepo repository.ConversationRepository,
	pricingRepo repository.PricingRepository,
	log logger.Logger,
) ThrottleService {
	return &throttleService{
		subscriptionRepo: subscriptionRepo,
		conversationRepo: conversationRepo,
		pricingRepo:      pricingRepo,
		log:              log,
	}
}

// freeTierPolicy возвращает действующую политику или nil, когда ограничений
// нет (платный пакет, нет политики для страны, безлимитная политика)
func (s *throttleService) freeTierPolicy(ctx context.Context, employer *domain.Account, job *domain.Job) (*domain.FreeTierPolicy, error) {
	sub, err := s.subscriptionRepo.GetActiveByAccount(ctx, employer.QuotaGroupID())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !sub.IsFree {
		return nil, nil
	}

	policy, err := s.pricingRepo.GetFreeTierPolicy(ctx, job.CountryCode)
	if err != nil {
		return nil, err
	}
	if policy == nil || policy.IsUnlimited {
		return nil, nil
	}

	return policy, nil
}

func (s *throttleService) CheckInvite(ctx context.Context, employer *domain.Account, job *domain.Job) error {
	policy, err := s.freeTierPolicy(ctx, employer, job)
	if err != nil {
		return err
	}
	if policy == nil {
		return nil
	}

	if time.Since(job.CreatedAt) > time.Duration(policy.Days)*24*time.Hour {
		s.log.Info("Free promotion window expired for job", "job_id", job.ID, "days", policy.Days)
		return apperrors.ErrPolicyDenied
	}

	return nil
}

func (s *throttleService) CheckApply(ctx context.Context, employer *domain.Account, job *domain.Job, candidateID uuid.UUID) (bool, error) {
	policy, err := s.freeTierPolicy(ctx, employer, job)
	if err != nil {
		return false, err
	}
	if policy == nil {
		return false, nil
	}

	// Поле days здесь используется как абсолютный предел числа
	// откликнувшихся - унаследованная перегрузка политики
	count, err := s.conversationRepo.CountDistinctApplicants(ctx, job.EmployerID, candidateID)
	if err != nil {
		return false, err
	}
	if count >= policy.Days {
		s.log.Info("Free tier applicant cap reached", "job_id", job.ID, "count", count)
		return true, nil
	}

	return false, nil
}
