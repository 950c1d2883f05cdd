package catalog

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

func (h *Handler) RegisterRoutes(api *gin.RouterGroup, auth, owner gin.HandlerFunc) {
	public := api.Group("/services/companies/:id/services")
	public.GET("", h.List)
	public.GET("/:serviceId", h.Get)

	manage := api.Group("/services/companies/:id/services", auth, owner)
	manage.GET("/all", h.ListAll)
	manage.POST("", h.Create)
	manage.PATCH("/:serviceId", h.Update)
	manage.DELETE("/:serviceId", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	companyID, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	rows, err := h.service.ListServices(c.Request.Context(), companyID, false)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) ListAll(c *gin.Context) {
	rows, err := h.service.ListServices(c.Request.Context(), middleware.CompanyIDFrom(c), true)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) Get(c *gin.Context) {
	companyID, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}
	serviceID, err := utils.ParamID(c, "serviceId")
	if err != nil {
		response.FromError(c, err)
		return
	}
	svc, err := h.service.GetService(c.Request.Context(), companyID, serviceID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, svc)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	svc, err := h.service.CreateService(c.Request.Context(), middleware.CompanyIDFrom(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, svc)
}

func (h *Handler) Update(c *gin.Context) {
	serviceID, err := utils.ParamID(c, "serviceId")
	if err != nil {
		response.FromError(c, err)
		return
	}
	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	svc, err := h.service.UpdateService(c.Request.Context(), middleware.CompanyIDFrom(c), serviceID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, svc)
}

func (h *Handler) Delete(c *gin.Context) {
	serviceID, err := utils.ParamID(c, "serviceId")
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.service.DeleteService(c.Request.Context(), middleware.CompanyIDFrom(c), serviceID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
