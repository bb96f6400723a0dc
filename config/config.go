package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `env:", prefix=SERVER_"`
	Mongo     MongoConfig     `env:", prefix=MONGO_"`
	Auth      AuthConfig      `env:", prefix=AUTH_"`
	Stripe    StripeConfig    `env:", prefix=STRIPE_"`
	Loyalty   LoyaltyConfig   `env:", prefix=LOYALTY_"`
	Kafka     KafkaConfig     `env:", prefix=KAFKA_"`
	Telemetry TelemetryConfig `env:", prefix=TELEMETRY_"`
	Elastic   ElasticConfig   `env:", prefix=ELASTIC_"`
	App       AppConfig       `env:", prefix=APP_"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host         string        `env:"HOST, default=0.0.0.0"`
	Port         string        `env:"PORT, default=3000"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT, default=15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT, default=15s"`
	CORSOrigins  []string      `env:"CORS_ORIGINS, default=*"`
	// Requests per second allowed per client IP on the auth endpoints.
	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT, default=1"`
	AuthBurst     int     `env:"AUTH_BURST, default=5"`
}

// MongoConfig holds the document database connection settings
type MongoConfig struct {
	URI      string        `env:"URI, default=mongodb://127.0.0.1:27017"`
	Database string        `env:"DATABASE, default=food_app"`
	Timeout  time.Duration `env:"TIMEOUT, default=5s"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=168h"`

	// Privileged accounts are provisioned into the user collection on startup.
	MasterEmail    string `env:"MASTER_EMAIL"`
	MasterPassword string `env:"MASTER_PASSWORD"`
	AdminEmail     string `env:"ADMIN_EMAIL"`
	AdminPassword  string `env:"ADMIN_PASSWORD"`
}

type StripeConfig struct {
	SecretKey      string `env:"SECRET_KEY"`
	PublishableKey string `env:"PUBLISHABLE_KEY"`
	Currency       string `env:"CURRENCY, default=aud"`
}

// LoyaltyConfig drives points conversion at checkout and deal redemption.
type LoyaltyConfig struct {
	PointValue float64       `env:"POINT_VALUE, default=0.5"`
	MinCharge  float64       `env:"MIN_CHARGE, default=0.50"`
	DealWindow time.Duration `env:"DEAL_WINDOW, default=720h"`
}

type KafkaConfig struct {
	Brokers    []string `env:"BROKERS"`
	LogTopic   string   `env:"LOG_TOPIC, default=logs"`
	OrderTopic string   `env:"ORDER_TOPIC, default=orders"`
	GroupID    string   `env:"GROUP_ID, default=es-pusher"`
}

type TelemetryConfig struct {
	ServiceName  string `env:"SERVICE_NAME, default=ordering-api"`
	MetricsAddr  string `env:"METRICS_ADDR"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT"`
}

type ElasticConfig struct {
	Addresses []string `env:"ADDRESSES, default=http://localhost:9200"`
	Index     string   `env:"INDEX, default=logs"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Environment string `env:"ENVIRONMENT, default=development"`
	LogLevel    string `env:"LOG_LEVEL, default=info"`
	Timezone    string `env:"TIMEZONE, default=Australia/Sydney"`
	SeedDemo    bool   `env:"SEED_DEMO, default=false"`
}

// Load reads an optional .env file and then processes the environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Loyalty.PointValue <= 0 {
		return fmt.Errorf("LOYALTY_POINT_VALUE must be positive, got %v", c.Loyalty.PointValue)
	}
	if c.Loyalty.MinCharge < 0 {
		return fmt.Errorf("LOYALTY_MIN_CHARGE must not be negative, got %v", c.Loyalty.MinCharge)
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	return nil
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Location returns the restaurant's time zone. validate guarantees it loads.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction returns true if running in production environment
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// StripeEnabled reports whether a usable secret key was configured.
func (c *StripeConfig) StripeEnabled() bool {
	return c.SecretKey != "" && c.SecretKey != "placeholder"
}
