package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"job_marketplace/internal/service"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

type ChatRequestHandler struct {
	chatRequestService service.ChatRequestService
	log                logger.Logger
}

func NewChatRequestHandler(chatRequestService service.ChatRequestService, log logger.Logger) *ChatRequestHandler {
	return &ChatRequestHandler{
		chatRequestService: chatRequestService,
		log:                log,
	}
}

func (h *ChatRequestHandler) ListPending(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	requests, err := h.chatRequestService.ListPending(c.Request.Context(), identity.AccountID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, requests)
}

func (h *ChatRequestHandler) Accept(c *gin.Context) {
	h.decide(c, true)
}

func (h *ChatRequestHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *ChatRequestHandler) decide(c *gin.Context, accept bool) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request ID"})
		return
	}

	if accept {
		err = h.chatRequestService.Accept(c.Request.Context(), identity.AccountID, requestID)
	} else {
		err = h.chatRequestService.Reject(c.Request.Context(), identity.AccountID, requestID)
	}
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
