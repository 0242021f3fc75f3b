package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskmanager-api/internal/authz"
	"github.com/yukikurage/taskmanager-api/internal/config"
	"github.com/yukikurage/taskmanager-api/internal/constants"
	"github.com/yukikurage/taskmanager-api/internal/database"
	"github.com/yukikurage/taskmanager-api/internal/handlers"
	"github.com/yukikurage/taskmanager-api/internal/logger"
	"github.com/yukikurage/taskmanager-api/internal/middleware"
	"github.com/yukikurage/taskmanager-api/internal/notify"
	"github.com/yukikurage/taskmanager-api/internal/repository"
	"github.com/yukikurage/taskmanager-api/internal/services"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Init(cfg.LogDevelopment); err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logger.Fatal("Failed to connect to database", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	policy := authz.DefaultPolicy()
	if cfg.PermissionsFile != "" {
		policy, err = authz.LoadPolicyFile(cfg.PermissionsFile)
		if err != nil {
			logger.Fatal("Failed to load permissions file", err, zap.String("path", cfg.PermissionsFile))
		}
	}
	gate := authz.NewGate(policy)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Notifications are best effort and never block a request
	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.SMTPHost != "" {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}
	dispatcher := notify.NewDispatcher(notifier, cfg.NotifyQueueSize)
	go dispatcher.Start(ctx)

	// Initialize AI service
	var generator services.SubtaskGenerator
	if cfg.OpenAIAPIKey != "" {
		generator = services.NewAIService(cfg.OpenAIAPIKey)
	}

	store := repository.NewStore(database.GetDB())
	svc := handlers.Services{
		Auth:       services.NewAuthService(store.Users()),
		Tokens:     services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL),
		Tasks:      services.NewTaskService(store, gate, dispatcher, generator),
		Extensions: services.NewExtensionService(store, gate, dispatcher, cfg.OpsNotificationEmail),
		Gate:       gate,
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logging())

	sessionStore, err := newSessionStore(cfg)
	if err != nil {
		logger.Fatal("Failed to create session store", err, zap.String("store", cfg.SessionStore))
	}
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))

	handlers.RegisterRoutes(r, svc)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", zap.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", err)
	}

	// the dispatcher drains its queue once ctx is cancelled
	select {
	case <-dispatcher.Done():
	case <-shutdownCtx.Done():
		logger.Warn("Notification queue not drained before shutdown")
	}
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	// Configure session options based on environment
	isProduction := cfg.GinMode == gin.ReleaseMode
	options := sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	}

	if cfg.SessionStore == "cookie" {
		store := cookie.NewStore([]byte(cfg.SessionSecret))
		store.Options(options)
		return store, nil
	}

	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		return nil, err
	}
	store.Options(options)
	return store, nil
}
