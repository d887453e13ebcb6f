package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	dispensingapp "github.com/medisync/backend/internal/application/dispensing"
	identityapp "github.com/medisync/backend/internal/application/identity"
	inventoryapp "github.com/medisync/backend/internal/application/inventory"
	reportapp "github.com/medisync/backend/internal/application/report"
	"github.com/medisync/backend/internal/domain/dispensing"
	"github.com/medisync/backend/internal/infrastructure/auth"
	"github.com/medisync/backend/internal/infrastructure/cache"
	"github.com/medisync/backend/internal/infrastructure/config"
	"github.com/medisync/backend/internal/infrastructure/logger"
	"github.com/medisync/backend/internal/infrastructure/persistence"
	"github.com/medisync/backend/internal/interfaces/http/handler"
	"github.com/medisync/backend/internal/interfaces/http/middleware"
	"github.com/medisync/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting MediSync backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Session store: in-memory for a single instance, Redis when sessions
	// must survive restarts or be shared.
	var sessions dispensing.SessionStore
	switch cfg.Session.Store {
	case "redis":
		redisStore, err := cache.NewRedisSessionStore(cfg.Redis, cfg.Session.TTL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Error("Error closing Redis", zap.Error(err))
			}
		}()
		sessions = redisStore
		log.Info("Session store: redis", zap.String("addr", cfg.Redis.RedisAddr()))
	default:
		memStore := cache.NewInMemorySessionStore(cfg.Session.TTL)
		defer memStore.Close()
		sessions = memStore
		log.Info("Session store: memory")
	}

	// Repositories
	inventoryRepo := persistence.NewGormBranchInventoryRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Services
	thresholds := dispensing.Thresholds{
		CriticalDays: cfg.Dispensing.CriticalDays,
		NearDays:     cfg.Dispensing.NearDays,
		HorizonDays:  cfg.Dispensing.HorizonDays,
	}
	selector := dispensing.NewFEFOSelector(thresholds, nil)
	jwtService := auth.NewJWTService(cfg.JWT)

	dispensingService := dispensingapp.NewDispensingService(inventoryRepo, sessions, selector, log, nil)
	inventoryService := inventoryapp.NewInventoryService(inventoryRepo, thresholds, log, nil)
	reportService := reportapp.NewExpiryReportService(inventoryRepo, thresholds, log, nil)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)

	// HTTP engine and middleware
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORSWithOrigins(cfg.HTTP.CORSAllowOrigins))
	engine.Use(middleware.JWTAuthMiddleware(jwtService))

	// Routes
	systemHandler := handler.NewSystemHandler(db, cfg.App.Name, version)
	systemHandler.RegisterRoot(engine)

	router.NewRouter(engine).
		Register(handler.NewAuthHandler(authService)).
		Register(handler.NewDispensingHandler(dispensingService)).
		Register(handler.NewInventoryHandler(inventoryService)).
		Register(handler.NewReportHandler(reportService)).
		Register(systemHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
