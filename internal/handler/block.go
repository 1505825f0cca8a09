package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"job_marketplace/internal/service"
	apperrors "job_marketplace/pkg/errors"
	"job_marketplace/pkg/logger"
)

type BlockHandler struct {
	blockService service.BlockService
	log          logger.Logger
}

func NewBlockHandler(blockService service.BlockService, log logger.Logger) *BlockHandler {
	return &BlockHandler{
		blockService: blockService,
		log:          log,
	}
}

type BlockRequest struct {
	CounterpartID string `json:"counterpart_id" binding:"required"`
	JobID         string `json:"job_id" binding:"required"`
	Reason        string `json:"reason"`
}

func (h *BlockHandler) Block(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	var req BlockRequest
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

	if err := h.blockService.Block(c.Request.Context(), identity.Role, identity.AccountID, counterpartID, jobID, req.Reason); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *BlockHandler) Unblock(c *gin.Context) {
	identity, ok := callerIdentity(c)
	if !ok {
		return
	}

	counterpartID, err := uuid.Parse(c.Param("counterpartId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid counterpart ID"})
		return
	}

	if err := h.blockService.Unblock(c.Request.Context(), identity.AccountID, counterpartID); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
