package user

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

// RegisterRoutes mounts the caller's profile on authed and user management
// on admin.
func (h *Handler) RegisterRoutes(authed, admin *gin.RouterGroup) {
	me := authed.Group("/users/me")
	me.GET("", h.GetProfile)
	me.PATCH("", h.UpdateProfile)
	me.PUT("/password", h.ChangePassword)
	me.PUT("/avatar", h.UpdateAvatar)

	admin.GET("/users", h.ListUsers)
	admin.GET("/users/:id", h.GetUser)
	admin.PATCH("/users/:id/role", h.SetRole)
}

func (h *Handler) GetProfile(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	u, err := h.service.GetProfile(c.Request.Context(), actor.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), actor.UserID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), actor.UserID, req); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateAvatar(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	var req AvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	u, err := h.service.UpdateAvatar(c.Request.Context(), actor.UserID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

func (h *Handler) ListUsers(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	res, err := h.service.ListUsers(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Paginated(c, res.Items, res.Total, res.Page, res.Limit)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

func (h *Handler) SetRole(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	u, err := h.service.SetPlatformRole(c.Request.Context(), actor, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}
