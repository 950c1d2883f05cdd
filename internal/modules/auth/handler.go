package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"queueless/internal/middleware"
	"queueless/internal/pkg/response"
)

type CookieConfig struct {
	Name     string
	Secure   bool
	SameSite string
	Domain   string
	Path     string
}

type Handler struct {
	service *Service
	cookie  CookieConfig
}

func NewHandler(service *Service, cookie CookieConfig) *Handler {
	return &Handler{service: service, cookie: cookie}
}

// RegisterRoutes mounts /auth. auth guards logout and me.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, auth gin.HandlerFunc) {
	g := api.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/logout", auth, h.Logout)
	g.GET("/me", auth, h.Me)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	sess, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.setCookie(c, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusCreated, sess)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	sess, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.setCookie(c, sess.Token, sess.ExpiresAt)
	response.Success(c, http.StatusOK, sess)
}

func (h *Handler) Logout(c *gin.Context) {
	jti, exp := middleware.SessionFrom(c)
	if err := h.service.Logout(c.Request.Context(), jti, exp); err != nil {
		response.FromError(c, err)
		return
	}
	h.setCookie(c, "", time.Time{})
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)

	me, err := h.service.Me(c.Request.Context(), actor.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, me)
}

// setCookie clears the cookie when token is empty.
func (h *Handler) setCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := -1
	if token != "" {
		maxAge = int(time.Until(expiresAt).Seconds())
	}
	c.SetSameSite(parseSameSite(h.cookie.SameSite))
	c.SetCookie(h.cookie.Name, token, maxAge, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
