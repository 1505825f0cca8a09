package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"job_marketplace/internal/domain"
	"job_marketplace/internal/repository"
	"job_marketplace/pkg/crypto"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

const (
	recentMessagesLimit = 50
	defaultChatLanguage = "en"

	// JobFullNotice - мягкий отказ отклика: вакансия на бесплатном пакете
	// набрала предел откликнувшихся
	JobFullNotice = "This position has already received the maximum number of applicants"
)

// StartResult - исход попытки начать или возобновить переписку.
// Pending=true - мягкий отказ (решение за рекрутером либо вакансия
// заполнена), треда нет, это успешный ответ
type StartResult struct {
	Conversation *domain.Conversation `json:"conversation,omitempty"`
	Messages     []*domain.Message    `json:"messages,omitempty"`
	Pending      bool                 `json:"pending"`
	Notice       string               `json:"notice,omitempty"`
}

type ConversationService interface {
	StartOrResume(ctx context.Context, employerID, candidateID, jobID uuid.UUID, role domain.Role) (*StartResult, error)
	RespondToInvitation(ctx context.Context, conversationID, candidateID uuid.UUID, accept bool) error
	SendMessage(ctx context.Context, conversationID, senderID uuid.UUID, role domain.Role, body, messageType string) (*domain.Message, error)
	GetMessages(ctx context.Context, conversationID, accountID uuid.UUID, role domain.Role, limit int) ([]*domain.Message, error)
	List(ctx context.Context, accountID uuid.UUID, role domain.Role) ([]*domain.Conversation, error)
	DeleteChat(ctx context.Context, conversationID, accountID uuid.UUID, role domain.Role) error
}

type conversationService struct {
	accountRepo      repository.AccountRepository
	jobRepo          repository.JobRepository
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	notificationRepo repository.NotificationRepository
	unreadCache      repository.UnreadCacheRepository

	visibility  VisibilityService
	quota       QuotaService
	throttle    ThrottleService
	chatRequest ChatRequestService

	translator Translator
	notifier   Notifier
	ats        ATSForwarder
	cipher     *crypto.Cipher

	log logger.Logger
}

func NewConversationService(
	repos *repository.Repositories,
	visibility VisibilityService,
	quota QuotaService,
	throttle ThrottleService,
	chatRequest ChatRequestService,
	translator Translator,
	notifier Notifier,
	ats ATSForwarder,
	cipher *crypto.Cipher,
	log logger.Logger,
) ConversationService {
	return &conversationService{
		accountRepo:      repos.Account,
		jobRepo:          repos.Job,
		conversationRepo: repos.Conversation,
		messageRepo:      repos.Message,
		notificationRepo: repos.Notification,
		unreadCache:      repos.UnreadCache,
		visibility:       visibility,
		quota:            quota,
		throttle:         throttle,
		chatRequest:      chatRequest,
		translator:       translator,
		notifier:         notifier,
		ats:              ats,
		cipher:           cipher,
		log:              log,
	}
}

func (s *conversationService) StartOrResume(ctx context.Context, employerID, candidateID, jobID uuid.UUID, role domain.Role) (*StartResult, error) {
	employer, err := s.accountRepo.GetByID(ctx, employerID)
	if err != nil {
		return nil, err
	}
	candidate, err := s.accountRepo.GetByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != employer.QuotaGroupID() && job.EmployerID != employerID {
		return nil, apperrors.ErrBadRequest
	}

	initiator, counterpart := employer, candidate
	if role == domain.RoleCandidate {
		initiator, counterpart = candidate, employer
	}

	// Заблокированного собеседника сначала нужно разблокировать -
	// до любой тарификации и создания треда
	if counterpart.IsBlockedBy(initiator.ID) {
		return nil, apperrors.ErrBlockedCounterpart
	}

	// Политика видимости: при закрытом профиле решение за рекрутером
	if s.visibility.Resolve(candidate, employer, initiator.ID) == VisibilityRequiresRecruiterApproval {
		approved, err := s.chatRequest.Approved(ctx, candidate, employer, job)
		if err != nil {
			return nil, err
		}
		if !approved {
			if _, err := s.chatRequest.RequestApproval(ctx, candidate, employer, job, role); err != nil {
				return nil, err
			}
			return &StartResult{Pending: true, Notice: ApprovalNotice}, nil
		}
	}

	conv, err := s.conversationRepo.GetByKey(ctx, employerID, candidateID, jobID)
	if err != nil {
		return nil, err
	}

	if conv == nil {
		if role == domain.RoleEmployer {
			conv, err = s.bootstrapInvite(ctx, employer, candidate, job)
		} else {
			var result *StartResult
			conv, result, err = s.bootstrapApplication(ctx, employer, candidate, job)
			if result != nil {
				return result, nil
			}
		}
		if err != nil {
			return nil, err
		}
	}

	return s.resume(ctx, conv, initiator.ID, role)
}

// bootstrapInvite - первый контакт со стороны работодателя:
// троттлинг бесплатного пакета, списание квоты, тред с приглашением
func (s *conversationService) bootstrapInvite(ctx context.Context, employer, candidate *domain.Account, job *domain.Job) (*domain.Conversation, error) {
	if err := s.throttle.CheckInvite(ctx, employer, job); err != nil {
		return nil, err
	}
	if err := s.quota.ChargeView(ctx, employer, candidate); err != nil {
		return nil, err
	}

	conv, created, err := s.createConversation(ctx, employer, candidate, job, true, false)
	if err != nil {
		return nil, err
	}
	if !created {
		return conv, nil
	}

	body := fmt.Sprintf("%s has invited you to chat for the position of %s",
		employer.DisplayName, job.DisplayTitle())
	if err := s.seedSystemMessage(ctx, conv, employer, candidate, body); err != nil {
		return nil, err
	}

	s.deliverInvite(ctx, candidate, employer, job, conv)

	return conv, nil
}

// bootstrapApplication - первый контакт со стороны кандидата; ненулевой
// StartResult - мягкий отказ (вакансия заполнена), треда нет
func (s *conversationService) bootstrapApplication(ctx context.Context, employer, candidate *domain.Account, job *domain.Job) (*domain.Conversation, *StartResult, error) {
	full, err := s.throttle.CheckApply(ctx, employer, job, candidate.ID)
	if err != nil {
		return nil, nil, err
	}
	if full {
		return nil, &StartResult{Pending: true, Notice: JobFullNotice}, nil
	}

	if job.IsATS {
		if err := s.ats.ForwardApplication(ctx, job, candidate); err != nil {
			// Пересылка в ATS - побочный эффект, отклик не откатываем
			s.log.Warn("Failed to forward application to ATS", "error", err, "job_id", job.ID)
		}
	}
	if job.WebhookURL != nil && *job.WebhookURL != "" {
		err := s.ats.PostApplicant(ctx, *job.WebhookURL, map[string]interface{}{
			"candidate_id": candidate.ID.String(),
			"job_id":       job.ID.String(),
			"applied_at":   time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			s.log.Warn("Failed to post applicant webhook", "error", err, "job_id", job.ID)
		}
	}

	conv, created, err := s.createConversation(ctx, employer, candidate, job, false, true)
	if err != nil {
		return nil, nil, err
	}
	if !created {
		return conv, nil, nil
	}

	body := fmt.Sprintf("%s has applied for the position of %s",
		candidate.DisplayName, job.DisplayTitle())
	if err := s.seedSystemMessage(ctx, conv, candidate, employer, body); err != nil {
		return nil, nil, err
	}

	// Контакт засчитывается группе работодателя бесплатно, но View
	// записывается для дедупликации будущих ручных разблокировок
	if err := s.quota.RecordFreeView(ctx, employer, candidate); err != nil {
		s.log.Warn("Failed to record free view", "error", err, "employer_id", employer.ID)
	}

	s.deliverApplication(ctx, employer, candidate, job, conv)

	return conv, nil, nil
}

func (s *conversationService) createConversation(ctx context.Context, employer, candidate *domain.Account, job *domain.Job, invited, applied bool) (*domain.Conversation, bool, error) {
	conv := &domain.Conversation{
		ID:          uuid.New(),
		EmployerID:  employer.ID,
		CandidateID: candidate.ID,
		JobID:       job.ID,
		RoomID:      domain.RoomIDFor(employer.ID, candidate.ID, job.ID),
		PaID:        candidate.PaID,
		IsInvited:   invited,
		IsApplied:   applied,
		// Флаги блокировки денормализуются из текущего состояния пары
		IsCandidateBlocked: candidate.IsBlockedBy(employer.ID),
		IsEmployerBlocked:  employer.IsBlockedBy(candidate.ID),
	}

	created, err := s.conversationRepo.Create(ctx, conv)
	if err != nil {
		return nil, false, err
	}

	return conv, created, nil
}

// seedSystemMessage шифрует и сохраняет системное первое сообщение,
// переводя его на язык чата получателя при необходимости
func (s *conversationService) seedSystemMessage(ctx context.Context, conv *domain.Conversation, from, to *domain.Account, body string) error {
	original := body
	translated := false

	if lang := to.ChatLanguage; lang != "" && lang != defaultChatLanguage {
		out, err := s.translator.Translate(ctx, body, defaultChatLanguage, lang)
		if err != nil {
			// Перевод не на критическом пути - оставляем оригинал
			s.log.Warn("Failed to translate system message", "error", err, "to_lang", lang)
		} else {
			body = out
			translated = true
		}
	}

	encBody, err := s.cipher.Encrypt(body)
	if err != nil {
		return err
	}
	encOriginal, err := s.cipher.Encrypt(original)
	if err != nil {
		return err
	}

	message := &domain.Message{
		ConversationID:      conv.ID,
		FromID:              from.ID,
		ToID:                to.ID,
		Body:                encBody,
		OriginalBody:        encOriginal,
		Type:                domain.MessageTypeSystem,
		IsEncrypted:         true,
		IsTranslated:        translated,
		IsCandidateBlocked:  conv.IsCandidateBlocked,
		IsEmployerBlocked:   conv.IsEmployerBlocked,
		HasCandidateDeleted: conv.HasCandidateDeleted,
		HasEmployerDeleted:  conv.HasEmployerDeleted,
	}

	return s.messageRepo.Append(ctx, message)
}

// deliverInvite - уведомления приглашенному кандидату; сбои логируются
// и не влияют на исход операции
func (s *conversationService) deliverInvite(ctx context.Context, candidate, employer *domain.Account, job *domain.Job, conv *domain.Conversation) {
	title := "New chat invitation"
	body := fmt.Sprintf("%s invited you to chat about %s", employer.DisplayName, job.DisplayTitle())

	s.storeNotification(ctx, candidate.ID, title, body, domain.NotificationKindInvitation, conv)

	if candidate.DeviceToken != nil && candidate.DeviceType != nil {
		err := s.notifier.SendPush(ctx, *candidate.DeviceToken, *candidate.DeviceType, title, body, map[string]string{
			"conversation_id": conv.ID.String(),
		})
		if err != nil {
			s.log.Warn("Failed to push invitation", "error", err, "candidate_id", candidate.ID)
		}
	}

	err := s.notifier.SendEmail(ctx, "chat_invitation", candidate.Email, map[string]string{
		"employer_name": employer.DisplayName,
		"job_title":     job.DisplayTitle(),
	})
	if err != nil {
		s.log.Warn("Failed to email invitation", "error", err, "candidate_id", candidate.ID)
	}

	// SMS-fallback для кандидатов без установленного приложения
	if !candidate.AppInstalled && candidate.Phone != nil {
		err := s.notifier.SendSms(ctx, candidate.CountryCode, *candidate.Phone, body)
		if err != nil {
			s.log.Warn("Failed to send invitation SMS", "error", err, "candidate_id", candidate.ID)
		}
	}
}

func (s *conversationService) deliverApplication(ctx context.Context, employer, candidate *domain.Account, job *domain.Job, conv *domain.Conversation) {
	title := "New application"
	body := fmt.Sprintf("%s applied for %s", candidate.DisplayName, job.DisplayTitle())

	s.storeNotification(ctx, employer.ID, title, body, domain.NotificationKindApplication, conv)

	if employer.DeviceToken != nil && employer.DeviceType != nil {
		err := s.notifier.SendPush(ctx, *employer.DeviceToken, *employer.DeviceType, title, body, map[string]string{
			"conversation_id": conv.ID.String(),
		})
		if err != nil {
			s.log.Warn("Failed to push application", "error", err, "employer_id", employer.ID)
		}
	}

	err := s.notifier.SendEmail(ctx, "new_application", employer.Email, map[string]string{
		"candidate_name": candidate.DisplayName,
		"job_title":      job.DisplayTitle(),
	})
	if err != nil {
		s.log.Warn("Failed to email application", "error", err, "employer_id", employer.ID)
	}
}

func (s *conversationService) storeNotification(ctx context.Context, accountID uuid.UUID, title, body, kind string, conv *domain.Conversation) {
	notification := &domain.Notification{
		ID:        uuid.New(),
		AccountID: accountID,
		Title:     title,
		Body:      body,
		Kind:      kind,
		Payload:   map[string]interface{}{"conversation_id": conv.ID.String()},
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.log.Warn("Failed to store notification", "error", err, "account_id", accountID)
	}
	if err := s.unreadCache.Invalidate(ctx, accountID); err != nil {
		s.log.Warn("Failed to invalidate unread cache", "error", err, "account_id", accountID)
	}
}

// resume помечает адресованные инициатору сообщения прочитанными и
// возвращает тред с хвостом переписки
func (s *conversationService) resume(ctx context.Context, conv *domain.Conversation, accountID uuid.UUID, role domain.Role) (*StartResult, error) {
	marked, err := s.messageRepo.MarkRead(ctx, conv.ID, accountID, role)
	if err != nil {
		return nil, err
	}
	if marked > 0 {
		if err := s.unreadCache.Invalidate(ctx, accountID); err != nil {
			s.log.Warn("Failed to invalidate unread cache", "error", err, "account_id", accountID)
		}
	}

	messages, err := s.listDecrypted(ctx, conv.ID, recentMessagesLimit)
	if err != nil {
		return nil, err
	}

	return &StartResult{Conversation: conv, Messages: messages}, nil
}

func (s *conversationService) listDecrypted(ctx context.Context, conversationID uuid.UUID, limit int) ([]*domain.Message, error) {
	messages, err := s.messageRepo.ListRecent(ctx, conversationID, limit)
	if err != nil {
		return nil, err
	}

	for _, message := range messages {
		if !message.IsEncrypted {
			continue
		}
		if plain, err := s.cipher.Decrypt(message.Body); err == nil {
			message.Body = plain
		} else {
			s.log.Error("Failed to decrypt message body", "error", err, "message_id", message.ID)
		}
		if message.OriginalBody != "" {
			if plain, err := s.cipher.Decrypt(message.OriginalBody); err == nil {
				message.OriginalBody = plain
			}
		}
	}

	return messages, nil
}

func (s *conversationService) RespondToInvitation(ctx context.Context, conversationID, candidateID uuid.UUID, accept bool) error {
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.CandidateID != candidateID {
		return apperrors.ErrForbidden
	}
	if !conv.IsInvited {
		return apperrors.ErrBadRequest
	}

	if accept {
		err = s.conversationRepo.SetInterested(ctx, conversationID)
	} else {
		err = s.conversationRepo.SetInvitationRejected(ctx, conversationID)
	}
	if err != nil {
		return err
	}

	s.notifyInvitationResponse(ctx, conv, accept)

	return nil
}

func (s *conversationService) notifyInvitationResponse(ctx context.Context, conv *domain.Conversation, accepted bool) {
	employer, err := s.accountRepo.GetByID(ctx, conv.EmployerID)
	if err != nil {
		s.log.Warn("Failed to load employer for response push", "error", err, "employer_id", conv.EmployerID)
		return
	}
	if employer.DeviceToken == nil || employer.DeviceType == nil {
		return
	}

	title := "Invitation declined"
	if accepted {
		title = "Invitation accepted"
	}
	err = s.notifier.SendPush(ctx, *employer.DeviceToken, *employer.DeviceType, title, "", map[string]string{
		"conversation_id": conv.ID.String(),
	})
	if err != nil {
		s.log.Warn("Failed to push invitation response", "error", err, "employer_id", conv.EmployerID)
	}
}

func (s *conversationService) SendMessage(ctx context.Context, conversationID, senderID uuid.UUID, role domain.Role, body, messageType string) (*domain.Message, error) {
	if body == "" {
		return nil, apperrors.ErrBadRequest
	}
	if messageType == "" {
		messageType = domain.MessageTypeText
	}

	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.Participant(role) != senderID {
		return nil, apperrors.ErrForbidden
	}

	sender, err := s.accountRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.accountRepo.GetByID(ctx, conv.Counterpart(role))
	if err != nil {
		return nil, err
	}

	if recipient.IsBlockedBy(sender.ID) {
		return nil, apperrors.ErrBlockedCounterpart
	}

	plaintext := body
	original := body
	translated := false

	senderLang := sender.ChatLanguage
	if senderLang == "" {
		senderLang = defaultChatLanguage
	}
	if lang := recipient.ChatLanguage; lang != "" && lang != senderLang {
		out, err := s.translator.Translate(ctx, body, senderLang, lang)
		if err != nil {
			s.log.Warn("Failed to translate message", "error", err, "to_lang", lang)
		} else {
			plaintext = out
			translated = true
		}
	}

	encBody, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return nil, err
	}
	encOriginal, err := s.cipher.Encrypt(original)
	if err != nil {
		return nil, err
	}

	message := &domain.Message{
		ConversationID:      conv.ID,
		FromID:              sender.ID,
		ToID:                recipient.ID,
		Body:                encBody,
		OriginalBody:        encOriginal,
		Type:                messageType,
		IsEncrypted:         true,
		IsTranslated:        translated,
		IsCandidateBlocked:  conv.IsCandidateBlocked,
		IsEmployerBlocked:   conv.IsEmployerBlocked,
		HasCandidateDeleted: conv.HasCandidateDeleted,
		HasEmployerDeleted:  conv.HasEmployerDeleted,
	}
	if err := s.messageRepo.Append(ctx, message); err != nil {
		return nil, err
	}

	if err := s.unreadCache.Invalidate(ctx, recipient.ID); err != nil {
		s.log.Warn("Failed to invalidate unread cache", "error", err, "account_id", recipient.ID)
	}
	if recipient.DeviceToken != nil && recipient.DeviceType != nil {
		err := s.notifier.SendPush(ctx, *recipient.DeviceToken, *recipient.DeviceType,
			sender.DisplayName, plaintext, map[string]string{
				"conversation_id": conv.ID.String(),
			})
		if err != nil {
			s.log.Warn("Failed to push message", "error", err, "recipient_id", recipient.ID)
		}
	}

	// В ответе тела открытым текстом
	message.Body = plaintext
	message.OriginalBody = original

	return message, nil
}

func (s *conversationService) GetMessages(ctx context.Context, conversationID, accountID uuid.UUID, role domain.Role, limit int) ([]*domain.Message, error) {
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.Participant(role) != accountID {
		return nil, apperrors.ErrForbidden
	}

	if limit <= 0 || limit > 100 {
		limit = recentMessagesLimit
	}

	marked, err := s.messageRepo.MarkRead(ctx, conv.ID, accountID, role)
	if err != nil {
		return nil, err
	}
	if marked > 0 {
		if err := s.unreadCache.Invalidate(ctx, accountID); err != nil {
			s.log.Warn("Failed to invalidate unread cache", "error", err, "account_id", accountID)
		}
	}

	return s.listDecrypted(ctx, conv.ID, limit)
}

func (s *conversationService) List(ctx context.Context, accountID uuid.UUID, role domain.Role) ([]*domain.Conversation, error) {
	return s.conversationRepo.ListByAccount(ctx, accountID, role)
}

func (s *conversationService) DeleteChat(ctx context.Context, conversationID, accountID uuid.UUID, role domain.Role) error {
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.Participant(role) != accountID {
		return apperrors.ErrForbidden
	}

	return s.conversationRepo.SetDeleted(ctx, conversationID, role)
}
