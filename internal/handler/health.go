package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"job_marketplace/internal/config"
)

type HealthHandler struct {
	environment string
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{environment: cfg.Environment}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "job-marketplace",
	})
}

// ServerInfo возвращает информацию о сервере для клиентов
func (h *HealthHandler) ServerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"environment": h.environment,
		"api_base":    "/api/v1",
	})
}
