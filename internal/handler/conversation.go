package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"job_marketplace/internal/domain"
	"job_marketplace/internal/service"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

type ConversationHandler struct {
	conversationService service.ConversationService
	log                 logger.Logger
}

func NewConversationHandler(conversationService service.ConversationService, log logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		log:                 log,
	}
}

type StartConversationRequest struct {
	CounterpartID string `json:"counterpart_id" binding:"required"`
	JobID         string `json:"job_id" binding:"required"`
}

// Start открывает (или возобновляет) диалог по вакансии. Инициатор
// определяется токеном: работодатель приглашает, кандидат откликается.
func (h *ConversationHandler) Start(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	counterpartID, err := uuid.Parse(req.CounterpartID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid counterpart ID"})
		return
	}
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job ID"})
		return
	}

	employerID, candidateID := identity.AccountID, counterpartID
	if identity.Role == domain.RoleCandidate {
		employerID, candidateID = counterpartID, identity.AccountID
	}

	result, err := h.conversationService.StartOrResume(c.Request.Context(), employerID, candidateID, jobID, identity.Role)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

type RespondRequest struct {
	Accept bool `json:"accept"`
}

func (h *ConversationHandler) Respond(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation ID"})
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.conversationService.RespondToInvitation(c.Request.Context(), conversationID, identity.AccountID, req.Accept); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ConversationHandler) List(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	conversations, err := h.conversationService.List(c.Request.Context(), identity.AccountID, identity.Role)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, conversations)
}

func (h *ConversationHandler) GetMessages(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation ID"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, err := h.conversationService.GetMessages(c.Request.Context(), conversationID, identity.AccountID, identity.Role, limit)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, messages)
}

type SendMessageRequest struct {
	Body        string `json:"body" binding:"required"`
	MessageType string `json:"message_type"`
}

func (h *ConversationHandler) SendMessage(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation ID"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MessageType == "" {
		req.MessageType = domain.MessageTypeText
	}

	message, err := h.conversationService.SendMessage(c.Request.Context(), conversationID, identity.AccountID, identity.Role, req.Body, req.MessageType)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *ConversationHandler) Delete(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation ID"})
		return
	}

	if err := h.conversationService.DeleteChat(c.Request.Context(), conversationID, identity.AccountID, identity.Role); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// callerIdentity достает личность из контекста, выставленную middleware
func callerIdentity(c *gin.Context) (*service.Identity, bool) {
	accountID, exists := c.Get("account_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not authenticated"})
		return nil, false
	}
	role, exists := c.Get("account_role")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not authenticated"})
		return nil, false
	}

	return &service.Identity{
		AccountID: accountID.(uuid.UUID),
		Role:      role.(domain.Role),
	}, true
}
