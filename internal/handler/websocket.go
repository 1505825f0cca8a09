package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"job_marketplace/internal/domain"
	"job_marketplace/internal/service"
	"job_marketplace/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

type WebSocketHandler struct {
	conversationService service.ConversationService
	log                 logger.Logger
}

func NewWebSocketHandler(conversationService service.ConversationService, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		conversationService: conversationService,
		log:                 log,
	}
}

type wsInbound struct {
	Body        string `json:"body"`
	MessageType string `json:"message_type"`
}

// HandleConversation держит живой канал диалога: входящие кадры
// сохраняются через обычный путь отправки, ответом идет сохраненное
// сообщение (с переводом и серверными полями).
func (h *WebSocketHandler) HandleConversation(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation ID"})
		return
	}

	// Проверяем доступ до апгрейда, чтобы отказ ушел обычным HTTP статусом
	if _, err := h.conversationService.GetMessages(c.Request.Context(), conversationID, identity.AccountID, identity.Role, 1); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "conversation access denied"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("WebSocket read failed", "conversation_id", conversationID, "error", err)
			}
			break
		}
		if in.MessageType == "" {
			in.MessageType = domain.MessageTypeText
		}

		message, err := h.conversationService.SendMessage(c.Request.Context(), conversationID, identity.AccountID, identity.Role, in.Body, in.MessageType)
		if err != nil {
			if writeErr := conn.WriteJSON(gin.H{"error": err.Error()}); writeErr != nil {
				break
			}
			continue
		}

		if err := conn.WriteJSON(message); err != nil {
			h.log.Warn("WebSocket write failed", "conversation_id", conversationID, "error", err)
			break
		}
	}
}
