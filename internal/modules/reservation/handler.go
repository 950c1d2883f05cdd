package reservation

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"queueless/internal/domain"
	"queueless/internal/middleware"
	"queueless/internal/pkg/apperr"
	"queueless/internal/pkg/response"
	"queueless/internal/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts public availability, customer reservations and the
// staff views guarded by staff (CompanyAccess).
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, auth, staff gin.HandlerFunc) {
	api.GET("/companies/:id/availability", h.GetAvailability)

	r := api.Group("/reservations", auth)
	r.POST("", h.Create)
	r.GET("/my", h.ListMine)
	r.GET("/my/calendar.ics", h.ExportCalendar)
	r.GET("/:id", h.Get)
	r.PATCH("/:id", h.Update)
	r.PATCH("/:id/status", h.UpdateStatus)

	company := api.Group("/companies/:id/reservations", auth, staff)
	company.GET("", h.ListCompany)
	company.GET("/export.xlsx", h.ExportCompany)
}

func (h *Handler) GetAvailability(c *gin.Context) {
	companyID, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	workerID, err := utils.QueryInt64(c, "worker_id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	date := c.Query("date")
	if date == "" {
		date = time.Now().In(h.service.loc).Format(domain.DateLayout)
	}

	out, err := h.service.GetAvailability(c.Request.Context(), companyID, date, workerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) Create(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	r, err := h.service.Create(c.Request.Context(), actor.UserID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, r)
}

func (h *Handler) Get(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	r, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, r)
}

func (h *Handler) Update(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	var req UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	r, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, r)
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

	r, err := h.service.UpdateStatus(c.Request.Context(), actor, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, r)
}

func (h *Handler) ListMine(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	res, err := h.service.ListMine(c.Request.Context(), actor.UserID, q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Paginated(c, res.Items, res.Total, res.Page, res.Limit)
}

func (h *Handler) ListCompany(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	res, err := h.service.ListCompany(c.Request.Context(), middleware.CompanyIDFrom(c), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Paginated(c, res.Items, res.Total, res.Page, res.Limit)
}

func (h *Handler) ExportCompany(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		response.FromError(c, apperr.Validation("from and to are required"))
		return
	}

	companyID := middleware.CompanyIDFrom(c)
	buf, err := h.service.ExportCompanyXLSX(c.Request.Context(), companyID, from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}

	filename := fmt.Sprintf("reservations-%d-%s-%s.xlsx", companyID, from, to)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) ExportCalendar(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	body, err := h.service.ExportUserICS(c.Request.Context(), actor.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="reservations.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
