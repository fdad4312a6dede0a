package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/trackercrm/tracker-api/docs"
	"github.com/trackercrm/tracker-api/internal/api/handler"
	"github.com/trackercrm/tracker-api/internal/api/middleware"
	"github.com/trackercrm/tracker-api/internal/core/domain"
	"github.com/trackercrm/tracker-api/internal/core/ports"
	"github.com/trackercrm/tracker-api/internal/core/service"
	"github.com/trackercrm/tracker-api/internal/infrastructure/config"
	mongodb "github.com/trackercrm/tracker-api/internal/infrastructure/db/mongo"
)

// RouterParams bundles the dependencies the router needs; the mail dispatcher
// and throttle are built in main because they own background goroutines and
// external connections.
type RouterParams struct {
	Client   *mongo.Client
	DB       *mongo.Database
	Redis    *redis.Client
	Mail     ports.MailDispatcher
	Throttle ports.Throttle
	Config   *config.Config
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(p RouterParams) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(p.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("tracker"))

	// --- Repositories ---
	agentRepo := mongodb.NewAgentRepository(p.DB)
	sessionRepo := mongodb.NewSessionRepository(p.DB)
	resetRepo := mongodb.NewResetTokenRepository(p.Client, p.DB)
	businessRepo := mongodb.NewBusinessRepository(p.DB)
	incidentRepo := mongodb.NewIncidentRepository(p.DB)
	activityRepo := mongodb.NewActivityRepository(p.DB)

	// --- Services ---
	authService := service.NewAuthService(agentRepo, sessionRepo, resetRepo, p.Mail, p.Throttle, service.AuthConfig{
		BaseURL:      p.Config.BaseURL,
		SessionTTL:   p.Config.Auth.SessionTTL,
		ResetTTL:     p.Config.Auth.ResetTTL,
		BcryptCost:   p.Config.Auth.BcryptCost,
		NoMatchDelay: p.Config.Auth.NoMatchDelay,
	}, p.Log)
	visibility := service.NewVisibilityResolver(agentRepo)
	agentService := service.NewAgentService(agentRepo, sessionRepo, resetRepo, p.Log)
	businessService := service.NewBusinessService(businessRepo, incidentRepo, p.Log)
	incidentService := service.NewIncidentService(incidentRepo, businessRepo, p.Log)
	activityService := service.NewActivityService(activityRepo, agentRepo, visibility, p.Log)
	statsService := service.NewStatsService(agentRepo, businessRepo, incidentRepo, activityRepo, visibility, p.Log)
	calendarService := service.NewCalendarService(incidentRepo, activityRepo, agentRepo, p.Log)

	// --- Handlers ---
	secureCookies := p.Config.Env == "production"
	authHandler := handler.NewAuthHandler(authService, p.Config.Auth.SessionTTL, secureCookies)
	agentHandler := handler.NewAgentHandler(agentService, activityService)
	businessHandler := handler.NewBusinessHandler(businessService)
	incidentHandler := handler.NewIncidentHandler(incidentService)
	activityHandler := handler.NewActivityHandler(activityService)
	statsHandler := handler.NewStatsHandler(statsService, calendarService)
	exportHandler := handler.NewExportHandler(incidentService, activityService)

	session := middleware.Session(authService)
	manageAgents := middleware.RBAC(domain.RoleAdministrator, domain.RoleBoss)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/reset-password", authHandler.ResetPassword)
	e.GET("/auth/me", authHandler.Me, session)

	// --- Protected API ---
	v1 := e.Group("/v1", session)

	agents := v1.Group("/agents")
	agents.GET("", agentHandler.List)
	agents.GET("/zones", agentHandler.Zones)
	agents.GET("/:id", agentHandler.Get)
	agents.GET("/:id/activities", agentHandler.Activities)
	agents.POST("", agentHandler.Create, manageAgents)
	agents.PUT("/:id", agentHandler.Update, manageAgents)
	agents.DELETE("/:id", agentHandler.Delete, manageAgents)

	businesses := v1.Group("/businesses")
	businesses.GET("", businessHandler.List)
	businesses.GET("/sectors", businessHandler.Sectors)
	businesses.GET("/:id", businessHandler.Get)
	businesses.GET("/:id/incidents", businessHandler.Incidents)
	businesses.POST("", businessHandler.Create)
	businesses.PUT("/:id", businessHandler.Update)
	businesses.DELETE("/:id", businessHandler.Delete)

	incidents := v1.Group("/incidents")
	incidents.GET("", incidentHandler.List)
	incidents.GET("/categories", incidentHandler.Categories)
	incidents.GET("/:id", incidentHandler.Get)
	incidents.POST("", incidentHandler.Create)
	incidents.PUT("/:id", incidentHandler.Update)
	incidents.DELETE("/:id", incidentHandler.Delete)
	incidents.GET("/:id/comments", incidentHandler.Comments)
	incidents.POST("/:id/comments", incidentHandler.AddComment)
	incidents.DELETE("/:id/comments/:comment_id", incidentHandler.DeleteComment)

	activities := v1.Group("/activities")
	activities.GET("", activityHandler.List)
	activities.GET("/:id", activityHandler.Get)
	activities.POST("", activityHandler.Create)
	activities.PUT("/:id", activityHandler.Update)
	activities.DELETE("/:id", activityHandler.Delete)

	v1.GET("/stats/dashboard", statsHandler.Dashboard)
	v1.GET("/calendar/events", statsHandler.Calendar)
	v1.GET("/export/incidents", exportHandler.Incidents)
	v1.GET("/export/activities", exportHandler.Activities)

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(p.DB, p.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
