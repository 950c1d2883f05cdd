package queue

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"queueless/internal/middleware"
	"queueless/internal/pkg/apperr"
	"queueless/internal/pkg/response"
	"queueless/internal/pkg/utils"
)

type Handler struct {
	service *Service
	hub     *Hub
}

func NewHandler(service *Service, hub *Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

// RegisterRoutes mounts customer queue routes and the staff dashboard
// guarded by staff (CompanyAccess).
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, auth, staff gin.HandlerFunc) {
	api.POST("/companies/:id/queue", auth, h.Join)

	company := api.Group("/companies/:id/queue", auth, staff)
	company.GET("", h.ListCompany)
	company.POST("/next", h.CallNext)

	q := api.Group("/queue", auth)
	q.POST("/check-in", h.CheckIn)
	q.GET("/my", h.ListMine)
	q.PATCH("/:id/status", h.UpdateStatus)

	api.GET("/worker/queue", auth, h.WorkerQueue)
}

// RegisterWS mounts the live queue socket.
func (h *Handler) RegisterWS(ws *gin.RouterGroup, auth, staff gin.HandlerFunc) {
	ws.GET("/companies/:id/queue", auth, staff, h.Subscribe)
}

func (h *Handler) Join(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	companyID, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	var req JoinRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	e, err := h.service.Join(c.Request.Context(), actor.UserID, companyID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, e)
}

func (h *Handler) CheckIn(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	e, err := h.service.CheckIn(c.Request.Context(), actor, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, e)
}

func (h *Handler) ListCompany(c *gin.Context) {
	rows, err := h.service.ListCompany(c.Request.Context(), middleware.CompanyIDFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// WorkerQueue is the dashboard view: ?company_id= selects the company.
func (h *Handler) WorkerQueue(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	companyID, err := utils.QueryInt64(c, "company_id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	if companyID == nil {
		response.FromError(c, apperr.Validation("company_id is required"))
		return
	}

	rows, err := h.service.ListForStaff(c.Request.Context(), actor, *companyID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) ListMine(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	rows, err := h.service.ListMine(c.Request.Context(), actor.UserID, c.Query("all") != "true")
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	e, err := h.service.UpdateStatus(c.Request.Context(), actor, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, e)
}

func (h *Handler) CallNext(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	e, err := h.service.CallNext(c.Request.Context(), actor, middleware.CompanyIDFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, e)
}

func (h *Handler) Subscribe(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	companyID := middleware.CompanyIDFrom(c)

	snapshot, err := h.service.Snapshot(c.Request.Context(), companyID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	// Upgrade writes its own HTTP error on failure.
	_ = h.hub.Serve(c.Writer, c.Request, companyID, actor.UserID, snapshot)
}
