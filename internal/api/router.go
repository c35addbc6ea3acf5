package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidvault/streaming-api/internal/api/handler"
	"github.com/vidvault/streaming-api/internal/api/middleware"
	"github.com/vidvault/streaming-api/internal/core/domain"
	"github.com/vidvault/streaming-api/internal/core/service"
	"github.com/vidvault/streaming-api/internal/infrastructure/config"
	mongodb "github.com/vidvault/streaming-api/internal/infrastructure/db/mongo"
	redisdb "github.com/vidvault/streaming-api/internal/infrastructure/db/redis"
	"github.com/vidvault/streaming-api/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The audit sink is owned by the caller so its worker pool can be drained on
// shutdown.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, audit service.AuditSink, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("vidvault"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	deviceRepo := mongodb.NewDeviceRepository(db)
	videoRepo := mongodb.NewVideoRepository(db)
	deviceCache := redisdb.NewDeviceCache(rdb, cfg.DeviceCacheTTL)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	userService := service.NewUserService(userRepo, deviceRepo, videoRepo, log)
	deviceService := service.NewDeviceService(deviceRepo, deviceCache, log)
	videoService := service.NewVideoService(videoRepo, log)
	admissionService := service.NewAdmissionService(userRepo, deviceRepo, deviceCache, audit, cfg.DeviceActiveWindow, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	deviceHandler := handler.NewDeviceHandler(admissionService, deviceService)
	videoHandler := handler.NewVideoHandler(videoService)

	authMiddleware := middleware.Auth(cfg.JWTSecret, userRepo)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/me", authHandler.Me, authMiddleware)

	// --- User management (admin only) ---
	users := e.Group("/auth/users", authMiddleware, adminOnly)
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.PUT("/:userId/role", userHandler.ChangeRole)
	users.PUT("/:userId/maxDevices", userHandler.ChangeMaxDevices)
	users.DELETE("/:userId", userHandler.Delete)

	// --- Device admission and management ---
	devices := e.Group("/devices", authMiddleware)
	devices.POST("/check", deviceHandler.Check)
	devices.GET("", deviceHandler.List)
	devices.GET("/user/:userId", deviceHandler.ListForUser)
	devices.DELETE("/:id", deviceHandler.Delete)

	// --- Video bookmarks ---
	videos := e.Group("/videos", authMiddleware)
	videos.POST("", videoHandler.Add)
	videos.GET("", videoHandler.List)
	videos.GET("/:id", videoHandler.Get)
	videos.PUT("/:id", videoHandler.Update)
	videos.DELETE("/:id", videoHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational surfaces ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
