package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RozzaysRed/OnlineShop-Blazor/internal/catalog"
	"github.com/RozzaysRed/OnlineShop-Blazor/internal/config"
	"github.com/RozzaysRed/OnlineShop-Blazor/internal/event"
	handler "github.com/RozzaysRed/OnlineShop-Blazor/internal/handler/http"
	"github.com/RozzaysRed/OnlineShop-Blazor/internal/repository/postgres"
	"github.com/RozzaysRed/OnlineShop-Blazor/internal/service"
	"github.com/RozzaysRed/OnlineShop-Blazor/migrations"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/database"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/health"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/httpclient"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/kafka"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/tracing"
)

// App owns the cart service's long-lived resources.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool     *pgxpool.Pool
	producer *kafka.Producer
	server   *http.Server

	shutdownTracing func(context.Context) error
}

// New builds the application: database pool, migrations, catalog client,
// event producer, and the HTTP server.
func New(ctx context.Context, cfg *config.Config, l *slog.Logger) (*App, error) {
	shutdownTracing, err := tracing.InitTracer(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.ServiceName,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	pgCfg := cfg.PostgresPoolConfig()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, l)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, l); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	database.RegisterPoolMetrics(pool, cfg.ServiceName)

	var producer *kafka.Producer
	var events service.EventProducer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			BatchTimeout: 50 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
		}, l)
		events = event.NewProducer(producer)
	}

	catalogHTTP := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.Config{
			Timeout:         cfg.Catalog.Timeout,
			MaxRetries:      cfg.Catalog.MaxRetries,
			RetryWaitMin:    200 * time.Millisecond,
			RetryWaitMax:    2 * time.Second,
			MaxConnsPerHost: 50,
		}),
		httpclient.CircuitBreakerConfig{
			Name:         "catalog",
			MaxRequests:  1,
			Interval:     60 * time.Second,
			Timeout:      cfg.Catalog.BreakerTimeout,
			FailureRatio: 0.5,
			MinRequests:  5,
		},
		l,
	)
	catalogClient := catalog.NewClient(catalogHTTP, cfg.Catalog.BaseURL)

	cartService := service.NewCartService(postgres.NewCartRepository(pool), catalogClient, events, l)

	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Cart:           handler.NewCartHandler(cartService, l),
		Health:         healthHandler,
		Logger:         l,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	return &App{
		cfg:      cfg,
		logger:   l,
		pool:     pool,
		producer: producer,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		shutdownTracing: shutdownTracing,
	}, nil
}

// Run serves HTTP until the context is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown failed", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close failed", slog.String("error", err.Error()))
		}
	}

	a.pool.Close()

	if err := a.shutdownTracing(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown failed", slog.String("error", err.Error()))
	}

	return nil
}
