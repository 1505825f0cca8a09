package service

import (
	"fmt"

	"job_marketplace/internal/config"
	"job_marketplace/internal/repository"
	"job_marketplace/pkg/crypto"
	"job_marketplace/pkg/logger"
)

type Services struct {
	Auth         AuthService
	Visibility   VisibilityService
	Quota        QuotaService
	Throttle     ThrottleService
	ChatRequest  ChatRequestService
	Conversation ConversationService
	Block        BlockService
	Unread       UnreadService
	RateLimit    RateLimitService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, log logger.Logger) (*Services, error) {
	cipher, err := crypto.NewCipherFromBase64(cfg.Chat.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("chat cipher init failed: %w", err)
	}

	// Клиенты внешних сервисов (переводы, уведомления, рендер резюме)
	translator := NewTranslatorClient(cfg.External.TranslatorURL, cfg.External.TranslatorAPIKey)
	notifier := NewNotifierClient(cfg.External.NotifierURL)
	ats := NewATSClient(cfg.External.RendererURL, notifier)

	visibility := NewVisibilityService(log)
	quota := NewQuotaService(repos.Subscription, repos.View, repos.Pricing, log)
	throttle := NewThrottleService(repos.Subscription, repos.Conversation, repos.Pricing, log)
	chatRequest := NewChatRequestService(repos.ChatRequest, repos.Account, repos.Notification, repos.UnreadCache, notifier, log)

	return &Services{
		Auth:         NewAuthService(cfg.JWT, log),
		Visibility:   visibility,
		Quota:        quota,
		Throttle:     throttle,
		ChatRequest:  chatRequest,
		Conversation: NewConversationService(repos, visibility, quota, throttle, chatRequest, translator, notifier, ats, cipher, log),
		Block:        NewBlockService(repos.Account, repos.Conversation, repos.Message, repos.UnreadCache, log),
		Unread:       NewUnreadService(repos.Account, repos.Message, repos.Notification, repos.UnreadCache, log),
		RateLimit:    NewRateLimitService(repos.RateLimit, log),
	}, nil
}
