package handler

import (
	"job_marketplace/internal/config"
	"job_marketplace/internal/service"
	"job_marketplace/pkg/logger"
)

type Handlers struct {
	Health       *HealthHandler
	Conversation *ConversationHandler
	ChatRequest  *ChatRequestHandler
	Block        *BlockHandler
	Unread       *UnreadHandler
	WebSocket    *WebSocketHandler
}

func NewHandlers(services *service.Services, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(cfg),
		Conversation: NewConversationHandler(services.Conversation, log),
		ChatRequest:  NewChatRequestHandler(services.ChatRequest, log),
		Block:        NewBlockHandler(services.Block, log),
		Unread:       NewUnreadHandler(services.Unread, log),
		WebSocket:    NewWebSocketHandler(services.Conversation, log),
	}
}
