package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queueless/internal/domain"
	"queueless/internal/pkg/jwt"
	"queueless/internal/repository"
)

const testCookie = "queueless_session"

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(tokens *jwt.Service, sessions SessionChecker) *gin.Engine {
	router := gin.New()
	router.Use(Auth(tokens, sessions, testCookie))
	router.GET("/protected", func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		jti, _ := SessionFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "role": actor.Role, "jti": jti})
	})
	return router
}

func TestAuth_BearerToken(t *testing.T) {
	tokens := jwt.New("test-secret-123", time.Hour)
	token, jti, _, err := tokens.GenerateToken(jwt.Session{UserID: 42, Email: "a@example.com", Role: "OWNER"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newAuthRouter(tokens, nil).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":42`)
	assert.Contains(t, w.Body.String(), `"role":"OWNER"`)
	assert.Contains(t, w.Body.String(), jti)
}

func TestAuth_Cookie(t *testing.T) {
	tokens := jwt.New("test-secret-123", time.Hour)
	token, _, _, err := tokens.GenerateToken(jwt.Session{UserID: 7, Role: "USER"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	newAuthRouter(tokens, nil).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_QueryTokenOnlyForWebSocket(t *testing.T) {
	tokens := jwt.New("test-secret-123", time.Hour)
	token, _, _, err := tokens.GenerateToken(jwt.Session{UserID: 7, Role: "USER"})
	require.NoError(t, err)
	router := newAuthRouter(tokens, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	req.Header.Set("Upgrade", "websocket")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_Rejections(t *testing.T) {
	tokens := jwt.New("test-secret-123", time.Hour)
	foreign, _, _, _ := jwt.New("other-secret", time.Hour).GenerateToken(jwt.Session{UserID: 1, Role: "USER"})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", "Authentication required"},
		{"wrong scheme", "Basic abc", "Invalid authorization header"},
		{"empty bearer", "Bearer ", "Invalid authorization header"},
		{"bad signature", "Bearer " + foreign, "Invalid or expired session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Auth(tokens, nil, testCookie))
			router.GET("/protected", func(c *gin.Context) {
				t.Fatal("handler must not be reached")
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
			assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)
		})
	}
}

func TestAuth_RevokedSession(t *testing.T) {
	tokens := jwt.New("test-secret-123", time.Hour)
	sessions := repository.NewMemorySessionStore()
	token, jti, exp, err := tokens.GenerateToken(jwt.Session{UserID: 9, Role: "USER"})
	require.NoError(t, err)
	require.NoError(t, sessions.Revoke(context.Background(), jti, exp))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	newAuthRouter(tokens, sessions).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Session has been revoked")
}

func withActor(actor domain.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(keyUserID, actor.UserID)
		c.Set(keyRole, string(actor.Role))
		c.Next()
	}
}

func TestRequirePlatformAdmin(t *testing.T) {
	tests := []struct {
		role domain.Role
		want int
	}{
		{domain.RolePlatformAdmin, http.StatusOK},
		{domain.RoleOwner, http.StatusForbidden},
		{domain.RoleUser, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			router := gin.New()
			router.GET("/admin", withActor(domain.Actor{UserID: 1, Role: tt.role}), RequirePlatformAdmin(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

type stubMembers map[int64]*domain.CompanyMembership

func (s stubMembers) Get(_ context.Context, companyID, userID int64) (*domain.CompanyMembership, error) {
	m, ok := s[userID]
	if !ok || m.CompanyID != companyID {
		return nil, nil
	}
	return m, nil
}

func TestCompanyAccess(t *testing.T) {
	members := stubMembers{
		1: {CompanyID: 5, UserID: 1, Role: domain.MemberRoleOwner, IsActive: true},
		2: {CompanyID: 5, UserID: 2, Role: domain.MemberRoleWorker, IsActive: true},
		3: {CompanyID: 5, UserID: 3, Role: domain.MemberRoleOwner, IsActive: false},
	}

	tests := []struct {
		name  string
		actor domain.Actor
		path  string
		want  int
	}{
		{"owner", domain.Actor{UserID: 1, Role: domain.RoleOwner}, "/companies/5", http.StatusOK},
		{"worker lacks role", domain.Actor{UserID: 2, Role: domain.RoleWorker}, "/companies/5", http.StatusForbidden},
		{"inactive owner", domain.Actor{UserID: 3, Role: domain.RoleOwner}, "/companies/5", http.StatusForbidden},
		{"other company", domain.Actor{UserID: 1, Role: domain.RoleOwner}, "/companies/6", http.StatusForbidden},
		{"platform admin", domain.Actor{UserID: 99, Role: domain.RolePlatformAdmin}, "/companies/6", http.StatusOK},
		{"bad id", domain.Actor{UserID: 1, Role: domain.RoleOwner}, "/companies/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/companies/:id", withActor(tt.actor), CompanyAccess(members, domain.MemberRoleOwner), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"company_id": CompanyIDFrom(c)})
			})
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestCompanyAccess_AnyRole(t *testing.T) {
	members := stubMembers{2: {CompanyID: 5, UserID: 2, Role: domain.MemberRoleWorker, IsActive: true}}

	router := gin.New()
	router.GET("/companies/:id", withActor(domain.Actor{UserID: 2, Role: domain.RoleWorker}), CompanyAccess(members), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/companies/5", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_PerIP(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(1, 2))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusOK, hit("10.0.0.2"), "other clients have their own bucket")
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"https://app.example.com"}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID_EchoesOrGenerates(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	assert.Equal(t, w.Header().Get(HeaderRequestID), w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}
