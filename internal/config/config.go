package config

import (
	"time"

	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/config"
	"github.com/RozzaysRed/OnlineShop-Blazor/pkg/database"
)

// Config holds the cart service configuration, populated from the
// environment.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"cart-service"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	Postgres PostgresConfig
	Redis    RedisConfig
	Catalog  CatalogConfig
	Kafka    KafkaConfig
	Tracing  TracingConfig
}

// PostgresConfig holds the database settings.
type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"shoponline"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"shoponline_secret"`
	DBName   string `env:"POSTGRES_DB" envDefault:"shoponline"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"25"`
	MinConns int32  `env:"POSTGRES_MIN_CONNS" envDefault:"5"`
}

// RedisConfig holds the snapshot cache settings.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string        `env:"REDIS_PASSWORD" envDefault:""`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"CACHE_TTL" envDefault:"0"`
}

// CatalogConfig holds the catalog service client settings.
type CatalogConfig struct {
	BaseURL        string        `env:"CATALOG_BASE_URL" envDefault:"http://localhost:8081"`
	Timeout        time.Duration `env:"CATALOG_TIMEOUT" envDefault:"5s"`
	MaxRetries     int           `env:"CATALOG_MAX_RETRIES" envDefault:"2"`
	BreakerTimeout time.Duration `env:"CATALOG_BREAKER_TIMEOUT" envDefault:"30s"`
}

// KafkaConfig holds the event publishing settings.
type KafkaConfig struct {
	Enabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
}

// TracingConfig holds the OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint    string  `env:"OTEL_EXPORTER_ENDPOINT" envDefault:"localhost:4318"`
	SampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1.0"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PostgresPoolConfig translates the env settings into the pool configuration.
func (c *Config) PostgresPoolConfig() database.PostgresConfig {
	pc := database.DefaultPostgresConfig()
	pc.Host = c.Postgres.Host
	pc.Port = c.Postgres.Port
	pc.User = c.Postgres.User
	pc.Password = c.Postgres.Password
	pc.DBName = c.Postgres.DBName
	pc.SSLMode = c.Postgres.SSLMode
	pc.MaxConns = c.Postgres.MaxConns
	pc.MinConns = c.Postgres.MinConns
	return pc
}

// RedisClientConfig translates the env settings into the client configuration.
func (c *Config) RedisClientConfig() database.RedisConfig {
	return database.RedisConfig{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}
