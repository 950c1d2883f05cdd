package registration

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"queueless/internal/middleware"
	"queueless/internal/pkg/response"
	"queueless/internal/pkg/utils"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the requester routes on authed and the moderation
// routes on admin.
func (h *Handler) RegisterRoutes(authed, admin *gin.RouterGroup) {
	authed.POST("/company-registrations", h.Submit)
	authed.GET("/company-registrations/my", h.ListMine)
	authed.GET("/company-registrations/:id", h.Get)

	admin.GET("/registrations", h.List)
	admin.POST("/registrations/:id/process", h.Process)
}

func (h *Handler) Submit(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	reg, err := h.service.Submit(c.Request.Context(), actor.UserID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, reg)
}

func (h *Handler) ListMine(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	rows, err := h.service.ListMine(c.Request.Context(), actor.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) Get(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	reg, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, reg)
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	res, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Paginated(c, res.Items, res.Total, res.Page, res.Limit)
}

func (h *Handler) Process(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	reg, err := h.service.Process(c.Request.Context(), actor.UserID, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, reg)
}
