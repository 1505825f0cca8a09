package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"job_marketplace/internal/service"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

type UnreadHandler struct {
	unreadService service.UnreadService
	log           logger.Logger
}

func NewUnreadHandler(unreadService service.UnreadService, log logger.Logger) *UnreadHandler {
	return &UnreadHandler{
		unreadService: unreadService,
		log:           log,
	}
}

func (h *UnreadHandler) GetCounts(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	counts, err := h.unreadService.GetCounts(c.Request.Context(), identity.AccountID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, counts)
}
