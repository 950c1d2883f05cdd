package company

import (
	"net/http"
	"strconv"

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

// Guards bundles the middleware the company routes need.
type Guards struct {
	Auth  gin.HandlerFunc
	Admin gin.HandlerFunc
	Owner gin.HandlerFunc
}

func (h *Handler) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	// public
	api.GET("/companies", h.List)
	api.GET("/companies/:id", h.Get)
	api.GET("/companies/:id/settings", h.GetSettings)
	api.GET("/companies/:id/hours", h.ListWorkingHours)
	api.GET("/companies/:id/breaks", h.ListWorkBreaks)

	api.GET("/companies/:id/membership", g.Auth, h.MyMembership)

	// platform admin
	api.POST("/companies", g.Auth, g.Admin, h.Create)
	api.PATCH("/companies/:id/active", g.Auth, g.Admin, h.SetActive)

	// owner
	owner := api.Group("/companies/:id", g.Auth, g.Owner)
	owner.PATCH("", h.Update)
	owner.PUT("/logo", h.UpdateLogo)
	owner.PATCH("/settings", h.UpdateSettings)
	owner.PUT("/hours/:weekday", h.ReplaceWorkingHours)
	owner.PUT("/breaks/:weekday", h.ReplaceWorkBreaks)
	owner.GET("/members", h.ListMembers)
	owner.POST("/members", h.AddMember)
	owner.PATCH("/members/:memberId", h.UpdateMember)
	owner.DELETE("/members/:memberId", h.RemoveMember)
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	res, err := h.service.ListCompanies(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Paginated(c, res.Items, res.Total, res.Page, res.Limit)
}

func (h *Handler) Get(c *gin.Context) {
	company, err := h.service.GetCompany(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, company)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	company, err := h.service.CreateCompany(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, company)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	company, err := h.service.UpdateCompany(c.Request.Context(), middleware.CompanyIDFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, company)
}

func (h *Handler) UpdateLogo(c *gin.Context) {
	var req ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	company, err := h.service.UpdateLogo(c.Request.Context(), middleware.CompanyIDFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, company)
}

func (h *Handler) SetActive(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	company, err := h.service.SetCompanyActive(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, company)
}

func (h *Handler) MyMembership(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	role, err := h.service.MembershipRole(c.Request.Context(), id, actor.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"company_id": id,
		"role":       role,
		"is_member":  role != "",
	})
}

func (h *Handler) GetSettings(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	st, err := h.service.GetSettings(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	st, err := h.service.UpdateSettings(c.Request.Context(), middleware.CompanyIDFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}

func (h *Handler) ListWorkingHours(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	rows, err := h.service.ListWorkingHours(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func weekdayParam(c *gin.Context) (int, bool) {
	w, err := strconv.Atoi(c.Param("weekday"))
	if err != nil {
		response.FromError(c, ErrInvalidWeekday)
		return 0, false
	}
	return w, true
}

func (h *Handler) ReplaceWorkingHours(c *gin.Context) {
	weekday, ok := weekdayParam(c)
	if !ok {
		return
	}
	var req WorkingHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	wh, err := h.service.ReplaceWorkingHours(c.Request.Context(), middleware.CompanyIDFrom(c), weekday, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"weekday": weekday, "hours": wh})
}

func (h *Handler) ListWorkBreaks(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	rows, err := h.service.ListWorkBreaks(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) ReplaceWorkBreaks(c *gin.Context) {
	weekday, ok := weekdayParam(c)
	if !ok {
		return
	}
	var req WorkBreaksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	rows, err := h.service.ReplaceWorkBreaks(c.Request.Context(), middleware.CompanyIDFrom(c), weekday, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) ListMembers(c *gin.Context) {
	rows, err := h.service.ListMembers(c.Request.Context(), middleware.CompanyIDFrom(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) AddMember(c *gin.Context) {
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	m, err := h.service.AddMember(c.Request.Context(), middleware.CompanyIDFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, m)
}

func (h *Handler) UpdateMember(c *gin.Context) {
	memberID, err := utils.ParamID(c, "memberId")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	m, err := h.service.UpdateMember(c.Request.Context(), middleware.CompanyIDFrom(c), memberID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, m)
}

func (h *Handler) RemoveMember(c *gin.Context) {
	memberID, err := utils.ParamID(c, "memberId")
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.service.RemoveMember(c.Request.Context(), middleware.CompanyIDFrom(c), memberID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
