// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edustack/edustack-api/internal/admin"
	"github.com/edustack/edustack-api/internal/auth"
	"github.com/edustack/edustack-api/internal/category"
	"github.com/edustack/edustack-api/internal/config"
	"github.com/edustack/edustack-api/internal/core"
	"github.com/edustack/edustack-api/internal/course"
	"github.com/edustack/edustack-api/internal/email"
	"github.com/edustack/edustack-api/internal/enrollment"
	"github.com/edustack/edustack-api/internal/health"
	"github.com/edustack/edustack-api/internal/instructor"
	"github.com/edustack/edustack-api/internal/lesson"
	"github.com/edustack/edustack-api/internal/middleware"
	"github.com/edustack/edustack-api/internal/payment"
	"github.com/edustack/edustack-api/internal/resource"
	"github.com/edustack/edustack-api/internal/review"
	"github.com/edustack/edustack-api/internal/role"
	"github.com/edustack/edustack-api/internal/server"
	"github.com/edustack/edustack-api/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.KeyID(),
	)

	sender, err := email.NewSender(cfg.Email, logger)
	if err != nil {
		return err
	}
	mailer, err := email.NewMailer(sender, cfg.App.Name, cfg.Frontend.URL, logger)
	if err != nil {
		return err
	}
	logger.Info("mailer initialized", "provider", cfg.Email.Provider)

	roleRepo := role.NewRepository(db.DB)
	roleHandler := role.NewHandler(roleRepo)

	userSvc := user.NewService(user.NewRepository(db.DB), roleRepo)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(
		auth.NewRepository(db.DB),
		jwtManager,
		userSvc,
		redis,
		mailer,
		cfg.Auth,
		logger,
	)
	authHandler := auth.NewHandler(authSvc)

	instructorHandler := instructor.NewHandler(instructor.NewService(
		db.DB,
		instructor.NewRepository(db.DB),
		mailer,
		logger,
	))

	categoryRepo := category.NewRepository(db.DB)
	categoryHandler := category.NewHandler(category.NewService(categoryRepo))

	courseRepo := course.NewRepository(db.DB)
	courseHandler := course.NewHandler(course.NewService(courseRepo, categoryRepo))

	enrollmentSvc := enrollment.NewService(
		db.DB,
		enrollment.NewRepository(db.DB),
		courseRepo,
		mailer,
		logger,
	)
	enrollmentHandler := enrollment.NewHandler(enrollmentSvc)

	lessonSvc := lesson.NewService(lesson.NewRepository(db.DB), enrollmentSvc)
	lessonHandler := lesson.NewHandler(lessonSvc)

	resourceHandler := resource.NewHandler(
		resource.NewService(resource.NewRepository(db.DB), lessonSvc),
	)

	paymentSvc := payment.NewService(
		db.DB,
		payment.NewRepository(db.DB),
		courseRepo,
		mailer,
		payment.Options{
			GatewayURL:      cfg.Payment.GatewayURL,
			DefaultCurrency: cfg.Payment.DefaultCurrency,
		},
		logger,
	)
	paymentHandler := payment.NewHandler(paymentSvc)

	reviewHandler := review.NewHandler(
		review.NewService(review.NewRepository(db.DB), courseRepo, enrollmentSvc),
	)

	healthHandler := health.NewHandler(db, redis, cfg.App)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Service:    admin.NewService(admin.NewRepository(db.DB), paymentSvc),
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	guards := middleware.NewGuards(authSvc)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen: true,
		}).Handler,
	)

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.JWKSHandler())

	authLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.RateLimit.AuthRequests,
			cfg.RateLimit.AuthBurst,
		),
		KeyFunc:  middleware.KeyByIPAndEndpoint,
		FailOpen: true,
	})

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Handler)
			authHandler.RegisterRoutes(r, guards)
		})

		r.Route("/users", func(r chi.Router) {
			userHandler.RegisterRoutes(r, guards)
			instructorHandler.RegisterRoutes(r, guards)
		})

		r.Route("/courses", func(r chi.Router) {
			categoryHandler.RegisterRoutes(r, guards)
			lessonHandler.RegisterRoutes(r, guards)
			resourceHandler.RegisterRoutes(r, guards)
			courseHandler.RegisterRoutes(r, guards)
		})

		r.Route("/enrollments", func(r chi.Router) {
			enrollmentHandler.RegisterRoutes(r, guards)
		})

		r.Route("/payments", func(r chi.Router) {
			paymentHandler.RegisterRoutes(r, guards)
		})

		r.Route("/reviews", func(r chi.Router) {
			reviewHandler.RegisterRoutes(r, guards)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(guards.Authenticate, guards.Admin)

			adminHandler.RegisterRoutes(r)
			userHandler.RegisterAdminRoutes(r)
			roleHandler.RegisterAdminRoutes(r)
			instructorHandler.RegisterAdminRoutes(r)
			categoryHandler.RegisterAdminRoutes(r)
			courseHandler.RegisterAdminRoutes(r)
			reviewHandler.RegisterAdminRoutes(r)
		})
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
