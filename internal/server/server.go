// Package server contains the HTTP pages and JSON API of the application.
package server

import (
	"context"
	"fmt"
	"time"

	_ "capes/docs" // swagger docs
	"capes/internal/auth"
	"capes/internal/bootstrap"
	"capes/internal/config"
	"capes/internal/featureflags"
	"capes/internal/middleware"
	"capes/internal/repository"
	"capes/internal/service"
	"capes/internal/session"
	"capes/internal/web"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	provider       auth.Provider
	sessions       *session.Manager
	gate           *session.Gate
	profileService *service.ProfileService
	catalogService *service.CatalogService
	rsvpService    *service.RSVPService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Redis is optional; without it sessions cannot be revoked and caches are skipped.
	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedCatalog: !cfg.IsProduction()})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	sessions, err := session.NewManager(cfg.SessionSecret, redisClient, cfg.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}

	profileRepo := repository.NewProfileRepository(db)
	eventRepo := repository.NewEventRepository(db)
	rsvpRepo := repository.NewRSVPRepository(db)

	profileService := service.NewProfileService(profileRepo)
	catalogService := service.NewCatalogService(cfg.CatalogSource, eventRepo, redisClient, cfg.CatalogCacheTTL())

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("capes-web"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		provider:       newProvider(cfg),
		sessions:       sessions,
		gate:           session.NewGate(profileService),
		profileService: profileService,
		catalogService: catalogService,
		rsvpService:    service.NewRSVPService(rsvpRepo, profileRepo, catalogService, redisClient),
	}
	return server, nil
}

func newProvider(cfg *config.Config) auth.Provider {
	if cfg.TwitchClientID != "" {
		return auth.NewTwitchProvider(cfg.TwitchClientID, cfg.TwitchClientSecret, cfg.OAuthCallbackURL())
	}
	middleware.Logger.Warn("TWITCH_CLIENT_ID is not set, using the development sign-in provider")
	return auth.NewDevProvider(cfg.OAuthCallbackURL())
}

// App returns the Fiber application, building it on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:      "Capes",
		Views:        web.NewEngine(),
		ViewsLayout:  web.Layout,
		ErrorHandler: s.handleError,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))
	app.Use(middleware.StructuredLogger())

	// Global rate limiting (120 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/metrics" || c.Path() == "/health/live"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	app.Use(s.sessions.LoadIdentity())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   web.Static(),
		MaxAge: 3600,
	}))

	// Sign-in flow
	app.Get("/login", s.LoginPage)
	app.Get("/error", s.ErrorPage)
	authGroup := app.Group("/auth")
	signInLimit := middleware.RateLimit(s.redis, 10, 5*time.Minute, "signin")
	authGroup.Get("/signin", signInLimit, s.SignIn)
	authGroup.Post("/signin", signInLimit, s.SignIn)
	authGroup.Get("/callback", s.Callback)
	authGroup.Post("/signout", s.SignOut)

	// Onboarding accepts signed-in visitors whose profile is not complete yet
	onboarding := session.RequireIdentity(s.gate, false)
	app.Get("/complete-profile", onboarding, s.CompleteProfilePage)
	app.Post("/complete-profile", onboarding, middleware.RateLimit(
		s.redis, 30, time.Minute, "profile_form"), s.CompleteProfileSubmit)

	// Dash pages
	ready := session.RequireReady(s.gate, false)
	app.Get("/", ready, s.Home)
	app.Get("/events", ready, s.EventsPage)
	app.Get("/events/:id", ready, s.EventDetailPage)
	app.Post("/events/:id/rsvp", ready, middleware.RateLimit(
		s.redis, 30, time.Minute, "rsvp"), s.RSVPSubmit)

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Capes Metrics Dashboard",
	}))
	api.Get("/feature-flags", s.GetFeatureFlags)

	profileAPI := api.Group("/profile", session.RequireIdentity(s.gate, true))
	profileAPI.Get("/me", s.GetMyProfile)
	profileAPI.Put("/me", middleware.RateLimit(
		s.redis, 10, time.Minute, "profile_save"), s.UpdateMyProfile)
	profileAPI.Get("/me/completeness", s.GetMyCompleteness)

	eventsAPI := api.Group("/events", session.RequireReady(s.gate, true))
	eventsAPI.Get("/", s.ListEvents)
	eventsAPI.Get("/:id", s.GetEvent)
	eventsAPI.Post("/:id/rsvp", middleware.RateLimit(
		s.redis, 30, time.Minute, "rsvp"), s.CreateRSVP)
	eventsAPI.Delete("/:id/rsvp", s.DeleteRSVP)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so a
// missing client reports "unavailable" without failing readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unhealthy"
	} else if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"catalog":  s.catalogService.Source(),
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", "port", s.config.Port, "env", s.config.Env)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing sql DB", "error", cerr)
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
