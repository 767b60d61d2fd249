package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netboss008/yacoolo/internal/core/ports"
	"github.com/Netboss008/yacoolo/internal/core/services"
	httphandlers "github.com/Netboss008/yacoolo/internal/handlers/http"
	"github.com/Netboss008/yacoolo/internal/infrastructure/ai"
	infradist "github.com/Netboss008/yacoolo/internal/infrastructure/distributed"
	"github.com/Netboss008/yacoolo/internal/infrastructure/ingest"
	"github.com/Netboss008/yacoolo/internal/infrastructure/middleware"
	"github.com/Netboss008/yacoolo/internal/infrastructure/monitoring"
	"github.com/Netboss008/yacoolo/internal/infrastructure/realtime"
	"github.com/Netboss008/yacoolo/internal/infrastructure/repositories"
	"github.com/Netboss008/yacoolo/pkg/config"
	"github.com/Netboss008/yacoolo/pkg/logger"
	"github.com/Netboss008/yacoolo/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/yacoolo/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	streamRepo := repoFactory.CreateStreamRepository()
	interventionRepo := repoFactory.CreateInterventionRepository()
	takeoverRepo := repoFactory.CreateTakeoverRepository()
	moderatorRepo := repoFactory.CreateModeratorRepository()
	logRepo := repoFactory.CreateModerationLogRepository()
	messageRepo := repoFactory.CreateChatMessageRepository()
	legalRepo := repoFactory.CreateLegalAnalysisRepository()
	settingsRepo := repoFactory.CreateSettingsRepository()
	userRepo := repoFactory.CreateUserRepository()

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Fan-out room. With Redis available, events replicate to every
	// instance over pub/sub.
	hub := realtime.NewHub(cfg.Realtime.SendBufferSize, log)
	var room ports.RoomPublisher = hub
	if client := repoFactory.RedisClient(); client != nil {
		bridge := realtime.NewBridge(hub, client, log)
		go bridge.Run(rootCtx)
		room = bridge
	}

	guard := services.NewStreamGuard()
	var locker ports.StreamLocker = guard
	if client := repoFactory.RedisClient(); client != nil {
		locker = infradist.NewRedisStreamLocker(client, guard)
	}

	collector := monitoring.NewPrometheusCollector()

	registry := services.NewSessionRegistry(streamRepo, locker, room, collector, log)
	control := services.NewControlAuthority(interventionRepo, takeoverRepo, moderatorRepo, streamRepo, locker, room, collector, log)
	registry.SetControlAuthority(control)

	gate := services.NewAdmissionGate(streamRepo, registry, log)
	streamService := services.NewStreamService(streamRepo, registry, log)
	moderatorService := services.NewModeratorService(moderatorRepo, streamRepo, log)

	judgment := ai.NewClient(
		cfg.Moderation.Endpoint,
		cfg.Moderation.APIKey,
		cfg.Moderation.Model,
		cfg.Moderation.RequestTimeout,
		log,
	)
	moderationService := services.NewModerationService(
		logRepo, messageRepo, legalRepo, settingsRepo, streamRepo,
		judgment, locker, collector, log,
	)

	authService := services.NewAuthService(
		userRepo,
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddCheck("redis", repoFactory.HealthCheck, 2*time.Second)

	wsServer := realtime.NewServer(hub, room, registry, streamRepo, messageRepo, moderationService, authService, realtime.ServerConfig{
		PingInterval:    cfg.Realtime.PingInterval,
		PongTimeout:     cfg.Realtime.PongTimeout,
		WriteTimeout:    cfg.Realtime.WriteTimeout,
		MaxMessageBytes: cfg.Realtime.MaxMessageBytes,
	}, log)
	hookHandler := ingest.NewHookHandler(gate, cfg.Ingest.HookSecret, collector, log)

	authHandler := httphandlers.NewAuthHandler(authService)
	streamHandler := httphandlers.NewStreamHandler(streamService, moderatorService, control, messageRepo, authService)
	adminHandler := httphandlers.NewAdminHandler(control, authService)
	moderationHandler := httphandlers.NewModerationHandler(moderationService, streamService, moderatorRepo, authService)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestLoggingMiddleware(logger.NewContextLogger(zapLogger)))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	authHandler.SetupRoutes(router)
	streamHandler.SetupRoutes(router)
	adminHandler.SetupRoutes(router)
	moderationHandler.SetupRoutes(router)
	hookHandler.RegisterRoutes(router)

	router.GET("/ws", gin.WrapF(wsServer.HandleWebSocket))

	router.GET("/health", func(c *gin.Context) {
		status := healthChecker.CheckAll(c.Request.Context())
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infow("starting server", "address", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	rootCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server shutdown failed", "error", err)
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("tracer shutdown failed", "error", err)
	}
}
