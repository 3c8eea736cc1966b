package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stage-cue/internal/auth"
	"stage-cue/internal/broadcast"
	"stage-cue/internal/config"
	"stage-cue/internal/handler"
	"stage-cue/internal/logger"
	"stage-cue/internal/middleware"
	"stage-cue/internal/repository"
	"stage-cue/internal/repository/sqlite"
	"stage-cue/internal/repository/valkey"
	"stage-cue/internal/scheduler"
	"stage-cue/internal/seed"
	"stage-cue/internal/service"
	"stage-cue/internal/task"
)

const stateCleanupKey = "oauth-state-cleanup"

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel))
	logger.SetGlobalLogger(log)

	// Log configuration (excluding secrets)
	cfg.LogConfiguration()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize SQLite database with WAL mode and connection pooling
	db, err := sqlite.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to initialize database", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer db.Close()

	// Run database migrations to ensure schema is up to date
	if err := sqlite.Migrate(db.DB); err != nil {
		log.Error("failed to run migrations", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// Initialize data access layer (repositories)
	eventRepo := sqlite.NewEventRepository(db)
	messageRepo := sqlite.NewMessageRepository(db)
	deviceRepo := sqlite.NewDeviceRepository(db)
	chatRepo := sqlite.NewChatRepository(db)
	userRepo := sqlite.NewUserRepository(db)

	// Optional snapshot feed shared with other operator sessions
	var feed repository.EventFeed
	if cfg.ValkeyAddr != "" {
		vf, err := valkey.Dial(cfg.ValkeyAddr, cfg.ValkeyChannel, log)
		if err != nil {
			log.Warn("snapshot feed unavailable, running single-session", map[string]interface{}{"error": err.Error()})
		} else {
			feed = vf
			defer vf.Close()
		}
	}

	// Session controller, ticker scheduler and countdown broadcast
	sched := scheduler.New(log)
	ctrl := service.NewEventController(service.EventControllerConfig{
		Events:    eventRepo,
		Messages:  messageRepo,
		Feed:      feed,
		Scheduler: sched,
		Logger:    log,
	})
	defer ctrl.Close()

	if err := ctrl.Load(ctx); err != nil {
		log.Error("failed to load event", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	hub := broadcast.NewHub(log)
	go hub.Run(ctx)

	// The display mirror follows every frame so /countdown paints the current state
	display := broadcast.NewMirror(nil)
	broadcaster := broadcast.NewBroadcaster(sched, cfg.BroadcastInterval, ctrl.Payload, log)
	broadcaster.Attach(broadcast.Tee{hub, display})
	broadcaster.Start()
	ctrl.SetNotifier(broadcaster)

	if feed != nil {
		go func() {
			if err := feed.Subscribe(ctx, ctrl.ApplySnapshot); err != nil {
				log.Error("snapshot feed stopped", map[string]interface{}{"error": err.Error()})
			}
		}()
	}

	// Periodically persist running counters
	var checkpoints *task.CheckpointTracker
	if cfg.CheckpointInterval > 0 {
		checkpoints = task.NewCheckpointTracker(ctrl, cfg.CheckpointInterval, log)
		checkpoints.Start(ctx)
	}

	if cfg.SeedDemoEvent {
		if _, err := seed.NewSeeder(ctrl, log).SeedDemoEvent(ctx); err != nil {
			log.Warn("failed to seed demo event", map[string]interface{}{"error": err.Error()})
		}
	}

	// Initialize business logic layer (services)
	messageService := service.NewMessageService(messageRepo, ctrl.ReplaceMessages, log)
	deviceService := service.NewDeviceService(deviceRepo)
	chatService := service.NewChatService(chatRepo)
	userService := service.NewUserService(userRepo, cfg.AdminEmails)

	// Initialize Google OAuth for authentication. Sign-in stays off until configured.
	var identity handler.IdentityProvider
	if cfg.AuthEnabled() {
		identity = auth.NewGoogleOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	}
	sessionManager := auth.NewSessionManager("session", cfg.SessionSecret, false, cfg.SessionDuration)
	stateStore := auth.NewStateStore()
	sched.Every(stateCleanupKey, auth.StateTTL, stateStore.Cleanup)

	// Set up HTTP routing
	router := handler.NewRouter(handler.Handlers{
		Public:        handler.NewPublicHandler(ctrl, userService, identity, sessionManager, stateStore, display, log),
		Authenticated: handler.NewAuthenticatedHandler(ctrl, messageService, deviceService, chatService, userService, log),
		Programme:     handler.NewProgrammeHandler(ctrl, log),
		Auth:          middleware.NewAuthMiddleware(sessionManager, userService),
		Events:        ctrl,
		Countdown:     hub.ServeWS,
	})

	// Configure HTTP server with timeouts to prevent resource exhaustion
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background goroutine
	go func() {
		log.Info("starting server", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed to start", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server", nil)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Gracefully shutdown server with 30-second timeout
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", map[string]interface{}{"error": err.Error()})
	}

	// Stop tickers and flush queued writes before the database closes
	if checkpoints != nil {
		checkpoints.Stop()
	}
	broadcaster.Detach()
	ctrl.Close()
	cancel()

	log.Info("server exited", nil)
}
