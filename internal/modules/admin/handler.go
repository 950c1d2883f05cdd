package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"queueless/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects admin to be guarded by RequirePlatformAdmin.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/statistics", h.GetStatistics)
}

func (h *Handler) GetStatistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
