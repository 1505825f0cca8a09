package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationKindChatRequest = "chat_request"
	NotificationKindInvitation  = "invitation"
	NotificationKindApplication = "application"
	NotificationKindChatMessage = "chat_message"
)

// Notification - внутриприложенческое уведомление (лента колокольчика)
type Notification struct {
	ID        uuid.UUID              `json:"id"`
	AccountID uuid.UUID              `json:"account_id"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Kind      string                 `json:"kind"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	IsRead    bool                   `json:"is_read"`
	CreatedAt time.Time              `json:"created_at"`
}

// UnreadCounts - счетчики непрочитанного для аккаунта
type UnreadCounts struct {
	ChatUnread         int `json:"chat_unread"`
	NotificationUnread int `json:"notification_unread"`
}
