// Package server contains the HTTP handlers for the archive's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "archives/docs" // swagger docs
	"archives/internal/bootstrap"
	"archives/internal/cache"
	"archives/internal/config"
	"archives/internal/featureflags"
	"archives/internal/middleware"
	"archives/internal/models"
	"archives/internal/observability"
	"archives/internal/prefs"
	"archives/internal/repository"
	"archives/internal/service"
	"archives/internal/vault"
	"archives/internal/vip"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
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
	repos          *repository.Repositories
	featureFlags   *featureflags.Manager
	vaultGate      *vault.Gate
	postService    *service.PostService
	commentService *service.CommentService
	vipService     *service.VIPService
	authService    *service.AuthService
	prefsService   *service.PrefsService
	unsubscribe    func()
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	observability.GlobalLogger = middleware.Logger

	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{EnsureAdmin: true})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// db may be nil only in demo mode; redisClient may be nil, in which case
// visitor state lives in process memory and nothing is cached.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	var repos *repository.Repositories
	switch {
	case cfg.IsDemo():
		repos = repository.NewDemoRepositories()
	case db != nil:
		repos = repository.NewDatabaseRepositories(db)
	default:
		return nil, fmt.Errorf("a database is required unless BACKEND_MODE=%s", config.BackendDemo)
	}

	if redisClient != nil {
		cache.SetClient(redisClient)
	}
	// Initialize Prometheus metrics
	prom := middleware.InitMetrics("archives-api")

	store := prefs.New(redisClient)
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		repos:          repos,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		vaultGate:      vault.NewGate(store),
	}
	server.postService = service.NewPostService(repos.Posts, store, cfg.IsDemo())
	server.commentService = service.NewCommentService(repos.Comments, repos.Posts, store)
	server.vipService = service.NewVIPService(repos.VIPs, vip.NewStore(redisClient), cfg.IsDemo())
	server.authService = service.NewAuthService(repos.Admins, redisClient, cfg)
	server.prefsService = service.NewPrefsService(store)

	// Admins see drafts in a separately cached list; any session change
	// drops both lists so the next read is fresh.
	server.unsubscribe = server.authService.Subscribe(func(ev service.SessionEvent) {
		middleware.Logger.Info("session changed", slog.String("kind", ev.Kind), slog.Uint64("admin_id", uint64(ev.AdminID)))
		server.postService.InvalidateFeed(context.Background())
	})

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Anonymous visitor identity; must run before the context middleware.
	app.Use(middleware.Visitor(s.config.IsProduction()))

	// Context Middleware to propagate Request ID and Visitor ID
	app.Use(middleware.ContextMiddleware())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + middleware.VisitorHeader,
		ExposeHeaders:    middleware.VisitorHeader,
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Preflight requests are handled by CORS. VIP flow answers are soft
		// misses the visitor may retry freely.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || strings.HasPrefix(c.Path(), "/api/vip")
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
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Archives Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	// Login fails closed when the limiter store errors.
	auth.Post("/login", middleware.RateLimitWithPolicy(
		s.redis, s.config.Env, 10, 5*time.Minute, middleware.FailClosed, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/session", s.AuthRequired(), s.GetSession)

	api.Get("/tags", s.GetTags)

	// Public post routes; a valid session additionally reveals drafts.
	posts := api.Group("/posts", s.OptionalAuth())
	posts.Get("/", s.GetPosts)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	posts.Get("/:id/comments", s.FeatureRequired(featureflags.Comments), s.GetComments)
	posts.Post("/:id/comments", s.FeatureRequired(featureflags.Comments), middleware.RateLimit(
		s.redis, s.config.Env, 5, time.Minute, "create_comment"), s.CreateComment)
	posts.Post("/:id/like", middleware.RateLimit(
		s.redis, s.config.Env, 30, time.Minute, "like"), s.LikePost)
	posts.Get("/:id", s.GetPost)

	// Vault gate
	vaultRoutes := api.Group("/vault")
	vaultRoutes.Get("/", s.GetVault)
	vaultRoutes.Post("/select", s.SelectTag)
	vaultRoutes.Post("/enter", s.EnterVault)
	vaultRoutes.Post("/exit", s.ExitVault)

	// VIP flow. Skipped by the global limiter and carries no route limiter.
	vipRoutes := api.Group("/vip", s.FeatureRequired(featureflags.VIPGate))
	vipRoutes.Get("/", s.GetVIPFlow)
	vipRoutes.Post("/open", s.OpenVIPFlow)
	vipRoutes.Post("/accept", s.AcceptVIPFlow)
	vipRoutes.Post("/decline", s.DeclineVIPFlow)
	vipRoutes.Post("/name", s.SubmitVIPName)
	vipRoutes.Post("/date", s.SubmitVIPDate)
	vipRoutes.Post("/close", s.CloseVIPFlow)

	// Visitor preferences
	api.Get("/prefs", s.GetPrefs)
	api.Put("/prefs", s.UpdatePrefs)
	api.Get("/feature-flags", s.GetFeatureFlags)

	// Admin routes
	admin := api.Group("/admin", s.AuthRequired(), s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
	adminPosts := admin.Group("/posts")
	adminPosts.Get("/", s.AdminListPosts)
	adminPosts.Post("/", s.AdminCreatePost)
	adminPosts.Put("/:id", s.AdminUpdatePost)
	adminPosts.Delete("/:id", s.AdminDeletePost)
	adminVIPs := admin.Group("/vips")
	adminVIPs.Get("/", s.AdminListVIPs)
	adminVIPs.Post("/", s.AdminCreateVIP)
	adminVIPs.Put("/:id", s.AdminUpdateVIP)
	adminVIPs.Delete("/:id", s.AdminDeleteVIP)
}

// HealthCheck is a simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: without
// it visitor state falls back to memory, so it only degrades the report.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	switch {
	case s.config.IsDemo():
		dbStatus = "demo"
	case s.db == nil:
		dbStatus = "unhealthy"
	default:
		sqlDB, err := s.db.DB()
		if err != nil {
			dbStatus = "unhealthy"
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = "unhealthy"
		}
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": "1.0.0",
		"status":  overallStatus,
		"mode":    s.config.BackendMode,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired rejects requests without a valid, unrevoked admin session.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := s.authService.Session(c.UserContext(), bearerToken(c))
		if err != nil {
			return s.respondError(c, err)
		}
		setAdmin(c, session.AdminID)
		return c.Next()
	}
}

// OptionalAuth records the admin id when a valid session is presented but
// never rejects the request.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if session, err := s.authService.Session(c.UserContext(), token); err == nil {
				setAdmin(c, session.AdminID)
			}
		}
		return c.Next()
	}
}

// AdminRequired returns middleware that rejects sessions whose admin account
// no longer exists. Must be placed after AuthRequired so that adminID is
// available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, ok := c.Locals("adminID").(uint)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		if _, err := s.repos.Admins.GetByID(c.UserContext(), adminID); err != nil {
			if models.ErrorCode(err) == models.CodeNotFound {
				return models.RespondWithError(c, fiber.StatusForbidden,
					models.NewForbiddenError("Admin access required"))
			}
			return s.respondError(c, err)
		}

		return c.Next()
	}
}

// FeatureRequired hides a route group behind a feature flag.
func (s *Server) FeatureRequired(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(flag, middleware.VisitorID(c)) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				&models.AppError{Code: models.CodeNotFound, Message: "Feature not available"})
		}
		return c.Next()
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	var errs []error
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				errs = append(errs, fmt.Errorf("close database: %w", cerr))
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", rerr))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Archives API",
		BodyLimit: 1 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			return s.respondError(c, err)
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// Start builds the app and listens on the configured port until Shutdown.
func (s *Server) Start() error {
	app := s.NewApp()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port), slog.String("mode", s.config.BackendMode))
	return app.Listen(":" + s.config.Port)
}
