package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"dinedash/internal/caching"
	"dinedash/internal/config"
	"dinedash/internal/handlers"
	"dinedash/internal/jobs/background"
	"dinedash/internal/logger"
	"dinedash/internal/middleware"
	"dinedash/internal/models"
	"dinedash/internal/repositories"
	"dinedash/internal/services"
	"dinedash/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLog := logger.NewLogger("dinedash-orders")

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	auth, stopJWKS, err := newAuthenticator(cfg)
	if err != nil {
		log.Fatalf("Failed to configure authentication: %v", err)
	}
	defer stopJWKS()

	redisClient := caching.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()
	limiter := caching.NewRedisRateLimiter(redisClient)
	if err := limiter.Ping(ctx); err != nil {
		appLog.Warn(ctx, "startup", "redis unavailable, rate limiting will fail open",
			slog.String("error", err.Error()))
	}

	// Repositories
	orderRepo := repositories.NewOrderRepo(pool)
	mealRepo := repositories.NewMealRepo(pool)
	couponRepo := repositories.NewCouponRepo(pool)

	// Services
	couponService := services.NewCouponService(couponRepo, appLog)
	orderService := services.NewOrderService(orderRepo, mealRepo, couponService, services.NewStatusAuthorizer(), appLog)

	// Handlers
	orderHandlers := handlers.NewOrderHandlers(orderService, cfg.DefaultPageSize, cfg.MaxPageSize)
	couponHandlers := handlers.NewCouponHandlers(couponService)
	healthHandlers := handlers.NewHealthHandlers(pool, limiter, 2*time.Second)

	scheduler, err := background.NewJobScheduler(orderService, background.SchedulerConfig{
		ConfirmAfter: cfg.ReceiptAutoConfirmAfter,
		Interval:     cfg.ReceiptSweepInterval,
		BatchSize:    cfg.MaxPageSize,
		RunTimeout:   cfg.ReceiptSweepInterval,
	}, appLog)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestID())

	e.GET("/health", healthHandlers.HealthCheck)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTMiddleware(auth))
	v1.Use(storeTimeout(cfg.StoreTimeout))

	orderHandlers.RegisterRoutes(v1,
		middleware.RequireRoles(models.RoleCustomer),
		middleware.RateLimit(limiter, "orders", cfg.RateLimitPerMinute, appLog),
	)
	couponHandlers.RegisterRoutes(v1,
		middleware.RequireRoles(models.RoleOwner, models.RoleAdmin),
		middleware.RateLimit(limiter, "coupons", cfg.RateLimitPerMinute, appLog),
	)

	scheduler.Start()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		appLog.Info(ctx, "startup", "server listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	appLog.Info(shutdownCtx, "shutdown", "shutting down")
	if err := scheduler.Stop(); err != nil {
		appLog.Error(shutdownCtx, "shutdown", "scheduler stop failed", err)
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLog.Error(shutdownCtx, "shutdown", "server shutdown failed", err)
	}
}

func newAuthenticator(cfg config.Config) (*middleware.Authenticator, func(), error) {
	if cfg.JWKSURL != "" {
		return middleware.NewJWKSAuthenticator(cfg.JWKSURL)
	}
	return middleware.NewHMACAuthenticator(cfg.JWTSecret), func() {}, nil
}

// storeTimeout bounds every request's calls into storage.
func storeTimeout(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
