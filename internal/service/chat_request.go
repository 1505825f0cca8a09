package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"job_marketplace/internal/domain"
	"job_marketplace/internal/repository"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

// ApprovalNotice - текст мягкого отказа: запрос передан рекрутеру,
// это успешный ответ, а не ошибка
const ApprovalNotice = "The candidate's recruiter has been notified and will review your request"

type ChatRequestService interface {
	// RequestApproval создает (или переоткрывает) запрос на контакт и
	// уведомляет рекрутера. Повторный вызов по ожидающему запросу только
	// повторяет уведомление, дубликатов не создает.
	RequestApproval(ctx context.Context, candidate, employer *domain.Account, job *domain.Job, direction domain.Role) (*domain.ChatRequest, error)
	// Approved сообщает, одобрил ли рекрутер контакт для этой тройки
	Approved(ctx context.Context, candidate, employer *domain.Account, job *domain.Job) (bool, error)
	Accept(ctx context.Context, recruiterID, requestID uuid.UUID) error
	Reject(ctx context.Context, recruiterID, requestID uuid.UUID) error
	ListPending(ctx context.Context, recruiterID uuid.UUID) ([]*domain.ChatRequest, error)
}

type chatRequestService struct {
	chatRequestRepo  repository.ChatRequestRepository
	accountRepo      repository.AccountRepository
	notificationRepo repository.NotificationRepository
	unreadCache      repository.UnreadCacheRepository
	notifier         Notifier
	log              logger.Logger
}

func NewChatRequestService(
	chatRequestRepo repository.ChatRequestRepository,
	accountRepo repository.AccountRepository,
	notificationRepo repository.NotificationRepository,
	unreadCache repository.UnreadCacheRepository,
	notifier Notifier,
	log logger.Logger,
) ChatRequestService {
	return &chatRequestService{
		chatRequestRepo:  chatRequestRepo,
		accountRepo:      accountRepo,
		notificationRepo: notificationRepo,
		unreadCache:      unreadCache,
		notifier:         notifier,
		log:              log,
	}
}

func (s *chatRequestService) RequestApproval(ctx context.Context, candidate, employer *domain.Account, job *domain.Job, direction domain.Role) (*domain.ChatRequest, error) {
	if !candidate.HasRecruiter() {
		return nil, apperrors.ErrPolicyDenied
	}
	paID := *candidate.PaID

	request, err := s.chatRequestRepo.GetByKey(ctx, paID, job.ID, candidate.ID, employer.ID)
	if err != nil {
		return nil, err
	}

	switch {
	case request == nil:
		request = &domain.ChatRequest{
			ID:                   uuid.New(),
			PaID:                 paID,
			JobID:                job.ID,
			CandidateID:          candidate.ID,
			EmployerID:           employer.ID,
			IsAppliedByCandidate: direction == domain.RoleCandidate,
		}
		if err := s.chatRequestRepo.Create(ctx, request); err != nil {
			return nil, err
		}

	case request.IsAccepted:
		// Уже одобрен - уведомлять некого
		return request, nil

	case request.IsRejected:
		// Новая попытка контакта переоткрывает отклоненный запрос
		if err := s.chatRequestRepo.Reopen(ctx, request.ID); err != nil {
			return nil, err
		}
		request.IsRejected = false
		request.IsAccepted = false

	default:
		// Запрос еще в ожидании - только повторное уведомление
	}

	s.notifyRecruiter(ctx, paID, candidate, employer, job, request)

	return request, nil
}

// notifyRecruiter - побочный эффект вне транзакционного ядра: сбои
// логируются и не откатывают запись запроса
func (s *chatRequestService) notifyRecruiter(ctx context.Context, paID uuid.UUID, candidate, employer *domain.Account, job *domain.Job, request *domain.ChatRequest) {
	title := "Chat approval requested"
	body := fmt.Sprintf("%s wants to chat with %s about %s",
		employer.DisplayName, candidate.DisplayName, job.DisplayTitle())

	notification := &domain.Notification{
		ID:        uuid.New(),
		AccountID: paID,
		Title:     title,
		Body:      body,
		Kind:      domain.NotificationKindChatRequest,
		Payload: map[string]interface{}{
			"chat_request_id": request.ID.String(),
			"job_id":          job.ID.String(),
		},
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.log.Warn("Failed to store recruiter notification", "error", err, "pa_id", paID)
	}
	if err := s.unreadCache.Invalidate(ctx, paID); err != nil {
		s.log.Warn("Failed to invalidate unread cache", "error", err, "pa_id", paID)
	}

	recruiter, err := s.accountRepo.GetByID(ctx, paID)
	if err != nil {
		s.log.Warn("Failed to load recruiter for push", "error", err, "pa_id", paID)
		return
	}
	if recruiter.DeviceToken == nil || recruiter.DeviceType == nil {
		return
	}

	err = s.notifier.SendPush(ctx, *recruiter.DeviceToken, *recruiter.DeviceType, title, body, map[string]string{
		"chat_request_id": request.ID.String(),
	})
	if err != nil {
		s.log.Warn("Failed to push recruiter notification", "error", err, "pa_id", paID)
	}
}

func (s *chatRequestService) Approved(ctx context.Context, candidate, employer *domain.Account, job *domain.Job) (bool, error) {
	if !candidate.HasRecruiter() {
		return false, nil
	}

	request, err := s.chatRequestRepo.GetByKey(ctx, *candidate.PaID, job.ID, candidate.ID, employer.ID)
	if err != nil {
		return false, err
	}

	return request != nil && request.IsAccepted, nil
}

func (s *chatRequestService) Accept(ctx context.Context, recruiterID, requestID uuid.UUID) error {
	return s.decide(ctx, recruiterID, requestID, true)
}

func (s *chatRequestService) Reject(ctx context.Context, recruiterID, requestID uuid.UUID) error {
	return s.decide(ctx, recruiterID, requestID, false)
}

func (s *chatRequestService) decide(ctx context.Context, recruiterID, requestID uuid.UUID, accepted bool) error {
	request, err := s.chatRequestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.PaID != recruiterID {
		return apperrors.ErrForbidden
	}

	return s.chatRequestRepo.SetDecision(ctx, requestID, accepted)
}

func (s *chatRequestService) ListPending(ctx context.Context, recruiterID uuid.UUID) ([]*domain.ChatRequest, error) {
	return s.chatRequestRepo.ListPendingForRecruiter(ctx, recruiterID)
}
