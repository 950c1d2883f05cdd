package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"queueless/internal/config"
	"queueless/internal/domain"
	"queueless/internal/metrics"
	"queueless/internal/middleware"
	"queueless/internal/modules/admin"
	"queueless/internal/modules/auth"
	"queueless/internal/modules/catalog"
	"queueless/internal/modules/company"
	"queueless/internal/modules/queue"
	"queueless/internal/modules/registration"
	"queueless/internal/modules/reservation"
	"queueless/internal/modules/user"
	"queueless/internal/pkg/jwt"
	"queueless/internal/pkg/media"
	"queueless/internal/pkg/response"
	"queueless/internal/repository"
)

// Deps are the process-level resources the router is built from. Redis is
// optional; without it sessions and the availability cache stay in memory.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Logger zerolog.Logger
}

// App is the assembled HTTP surface.
type App struct {
	Engine *gin.Engine
	Hub    *queue.Hub
}

func NewRouter(d Deps) *App {
	cfg := d.Config
	log := d.Logger
	loc := cfg.Location()

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	// repositories
	users := repository.NewUserRepository(d.DB)
	companies := repository.NewCompanyRepository(d.DB)
	members := repository.NewMembershipRepository(d.DB)
	services := repository.NewServiceRepository(d.DB)
	reservations := repository.NewReservationRepository(d.DB)
	registrations := repository.NewRegistrationRepository(d.DB)
	entries := repository.NewQueueRepository(d.DB)
	tx := repository.NewTransactor(d.DB)

	var (
		sessions interface {
			middleware.SessionChecker
			auth.SessionRevoker
		}
		cache reservation.AvailabilityCache
	)
	if d.Redis != nil {
		sessions = repository.NewRedisSessionStore(d.Redis)
		cache = repository.NewRedisAvailabilityCache(d.Redis, cfg.Scheduling.AvailabilityTTL)
	} else {
		sessions = repository.NewMemorySessionStore()
		cache = repository.NopAvailabilityCache{}
	}

	tokens := jwt.New(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	images := media.NewStore(cfg.Uploads.Dir, cfg.Uploads.PublicBaseURL, cfg.Uploads.MaxBytes)

	// services
	authSvc := auth.NewService(users, members, tokens, sessions, log)
	userSvc := user.NewService(users, images, log)
	companySvc := company.NewService(company.Deps{
		Companies: companies,
		Members:   members,
		Users:     users,
		Tx:        tx,
		Images:    images,
		Cache:     cache,
		Logger:    log,
	})
	catalogSvc := catalog.NewService(services, companies, log)
	reservationSvc := reservation.NewService(reservation.Deps{
		Reservations: reservations,
		Companies:    companies,
		Members:      members,
		Services:     services,
		Cache:        cache,
		Location:     loc,
		Logger:       log,
	})
	registrationSvc := registration.NewService(registration.Deps{
		Registrations: registrations,
		Companies:     companies,
		Users:         users,
		Provisioner:   companySvc,
		Tx:            tx,
		Logger:        log,
	})
	hub := queue.NewHub(cfg.HTTP.AllowedOrigins, log)
	queueSvc := queue.NewService(queue.Deps{
		Entries:      entries,
		Companies:    companies,
		Members:      members,
		Services:     services,
		Reservations: reservations,
		Completer:    reservationSvc,
		Tx:           tx,
		Publisher:    hub,
		Logger:       log,
	})
	adminSvc := admin.NewService(admin.Deps{
		Users:         users,
		Companies:     companies,
		Registrations: registrations,
		Reservations:  reservations,
		Queue:         entries,
		Location:      loc,
		Logger:        log,
	})

	// guards
	requireAuth := middleware.Auth(tokens, sessions, cfg.Auth.CookieName)
	requireAdmin := middleware.RequirePlatformAdmin()
	owner := middleware.CompanyAccess(members, domain.MemberRoleOwner)
	staff := middleware.CompanyAccess(members)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		middleware.CORS(cfg.HTTP.AllowedOrigins),
	)
	if cfg.Monitoring.MetricsEnabled {
		metrics.Register()
		r.Use(middleware.Metrics())
		r.GET(cfg.Monitoring.MetricsPath, gin.WrapH(metrics.Handler()))
	}
	r.GET("/health", health(d))
	r.Static(cfg.Uploads.PublicBaseURL, cfg.Uploads.Dir)

	api := r.Group("/api/v1", middleware.RateLimit(cfg.HTTP.RateLimit.RPS, cfg.HTTP.RateLimit.Burst))
	authed := api.Group("", requireAuth)
	adminGroup := api.Group("/admin", requireAuth, requireAdmin)

	auth.NewHandler(authSvc, auth.CookieConfig{
		Name:     cfg.Auth.CookieName,
		Secure:   cfg.Auth.CookieSecure,
		SameSite: cfg.Auth.CookieSameSite,
		Domain:   cfg.Auth.CookieDomain,
		Path:     cfg.Auth.CookiePath,
	}).RegisterRoutes(api, requireAuth)
	user.NewHandler(userSvc).RegisterRoutes(authed, adminGroup)
	company.NewHandler(companySvc).RegisterRoutes(api, company.Guards{Auth: requireAuth, Admin: requireAdmin, Owner: owner})
	catalog.NewHandler(catalogSvc).RegisterRoutes(api, requireAuth, owner)
	reservation.NewHandler(reservationSvc).RegisterRoutes(api, requireAuth, staff)
	registration.NewHandler(registrationSvc).RegisterRoutes(authed, adminGroup)
	admin.NewHandler(adminSvc).RegisterRoutes(adminGroup)

	queueHandler := queue.NewHandler(queueSvc, hub)
	queueHandler.RegisterRoutes(api, requireAuth, staff)
	queueHandler.RegisterWS(r.Group("/ws"), requireAuth, staff)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})

	return &App{Engine: r, Hub: hub}
}

func health(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"database": "ok"}
		code := http.StatusOK
		if sqlDB, err := d.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["database"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
		if d.Redis != nil {
			status["redis"] = "ok"
			if err := d.Redis.Ping(ctx).Err(); err != nil {
				status["redis"] = "unavailable"
				code = http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{"status": http.StatusText(code), "checks": status})
	}
}
