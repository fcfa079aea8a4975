package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/festivo/festivo-api/internal/config"
	"github.com/festivo/festivo-api/internal/database"
	"github.com/festivo/festivo-api/internal/http/handlers"
	mw "github.com/festivo/festivo-api/internal/http/middleware"
	"github.com/festivo/festivo-api/internal/migrations"
	"github.com/festivo/festivo-api/internal/notifier"
	"github.com/festivo/festivo-api/internal/platform/events"
	"github.com/festivo/festivo-api/internal/platform/sms"
	"github.com/festivo/festivo-api/internal/repo/postgres"
	"github.com/festivo/festivo-api/internal/service"
	"github.com/festivo/festivo-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrations.Up(ctx, cfg.Database.URL); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Event bus: NATS when configured, in-process otherwise.
	var bus events.EventBus
	if cfg.NATS.Enabled {
		bus, err = events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
	} else {
		bus = events.NewMemoryEventBus()
	}
	defer bus.Close()

	// Rate limiting: Redis when configured, otherwise unlimited.
	var limiter mw.Limiter = mw.NoopLimiter{}
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		limiter = mw.NewRedisLimiter(rdb, 5, time.Minute)
	}

	usersRepo := postgres.NewUsersRepo(pool)
	otpRepo := postgres.NewOTPRepo(pool)
	eventsRepo := postgres.NewEventsRepo(pool)
	packagesRepo := postgres.NewPackagesRepo(pool)
	bookingsRepo := postgres.NewBookingsRepo(pool)

	authSvc := service.NewAuthService(usersRepo, otpRepo, bus, cfg)
	catalogSvc := service.NewCatalogService(eventsRepo, packagesRepo, cfg)
	bookingSvc := service.NewBookingService(bookingsRepo, eventsRepo, packagesRepo, bus)

	n := notifier.New(bus, sms.NewDevSender())
	if err := n.Start(); err != nil {
		logger.Error("failed to start notifier", "error", err)
		os.Exit(1)
	}

	authHandler := handlers.NewAuthHandler(authSvc, limiter, cfg)
	eventsHandler := handlers.NewEventsHandler(catalogSvc, bookingSvc, cfg)
	adminHandler := handlers.NewAdminHandler(catalogSvc, bookingSvc, authSvc, cfg)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Uploaded photos are served straight off disk.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Uploads.Dir))))

	r.Mount("/auth", authHandler.Routes())
	r.Mount("/events", eventsHandler.Routes())
	r.Mount("/admin", adminHandler.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("starting api", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
