package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RozzaysRed/OnlineShop-Blazor/internal/cache"
	cacheredis "github.com/RozzaysRed/OnlineShop-Blazor/internal/cache/redis"
	handler "github.com/RozzaysRed/OnlineShop-Blazor/internal/handler/http"
	pkgconfig "github.com/RozzaysRed/OnlineShop-Blazor/pkg/config"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/database"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/health"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/httpclient"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/logger"
)

type storefrontConfig struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"storefront"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"0"`

	CartBaseURL string        `env:"CART_BASE_URL" envDefault:"http://localhost:8080"`
	CartTimeout time.Duration `env:"CART_TIMEOUT" envDefault:"5s"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var cfg storefrontConfig
	if err := pkgconfig.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	l := logger.New(cfg.ServiceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	cartHTTP := httpclient.New(httpclient.Config{
		Timeout:         cfg.CartTimeout,
		MaxRetries:      2,
		RetryWaitMin:    200 * time.Millisecond,
		RetryWaitMax:    2 * time.Second,
		MaxConnsPerHost: 50,
	})

	cacheService := cache.NewService(
		cacheredis.NewStore(redisClient, cfg.CacheTTL),
		cache.NewRemoteFetcher(cartHTTP, cfg.CartBaseURL),
		l,
	)

	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	router := handler.NewStorefrontRouter(handler.StorefrontRouterConfig{
		Storefront:     handler.NewStorefrontHandler(cacheService, l),
		Health:         healthHandler,
		Logger:         l,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Error("http shutdown failed", slog.String("error", err.Error()))
	}
	return nil
}
