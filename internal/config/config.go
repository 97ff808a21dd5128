package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server        ServerConfig        `envconfig:"SERVER"`
	Mongo         MongoConfig         `envconfig:"MONGO"`
	DynamoDB      DynamoDBConfig      `envconfig:"DYNAMODB"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	JWT           JWTConfig           `envconfig:"JWT"`
	RateLimit     RateLimitConfig     `envconfig:"RATE_LIMIT"`
	Pagination    PaginationConfig    `envconfig:"PAGINATION"`
	Observability ObservabilityConfig `envconfig:"OBSERVABILITY"`
	CORS          CORSConfig          `envconfig:"CORS"`
	Log           LogConfig           `envconfig:"LOG"`
	AWS           AWSConfig           `envconfig:"AWS"`
}

type AWSConfig struct {
	Region     string `envconfig:"REGION" default:"eu-west-1"`
	Profile    string `envconfig:"PROFILE" default:""`
	SecretName string `envconfig:"SECRET_NAME" default:""`
}

type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"5000"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	PprofEnabled    bool          `envconfig:"PPROF_ENABLED" default:"false"` // admin-only /debug/pprof
}

type MongoConfig struct {
	URI               string        `envconfig:"URI" default:"mongodb://localhost:27017"`
	Database          string        `envconfig:"DATABASE" default:"archive"`
	PickupsCollection string        `envconfig:"PICKUPS_COLLECTION" default:"pickups"`
	ConnectTimeout    time.Duration `envconfig:"CONNECT_TIMEOUT" default:"10s"`
	RetryDelay        time.Duration `envconfig:"RETRY_DELAY" default:"5s"`
	OperationTimeout  time.Duration `envconfig:"OPERATION_TIMEOUT" default:"5s"`
}

type DynamoDBConfig struct {
	AdminsTableName string `envconfig:"ADMINS_TABLE_NAME" default:"pickup-archive-admins"`
	Region          string `envconfig:"REGION" default:"eu-west-1"`
	Endpoint        string `envconfig:"ENDPOINT" default:""` // dynamodb-local
}

type RedisConfig struct {
	Address             string        `envconfig:"ADDRESS" default:"localhost:6379"`
	Password            string        `envconfig:"PASSWORD" default:""`
	Database            int           `envconfig:"DATABASE" default:"0"`
	MaxRetries          int           `envconfig:"MAX_RETRIES" default:"3"`
	PoolSize            int           `envconfig:"POOL_SIZE" default:"50"`
	PoolTimeout         time.Duration `envconfig:"POOL_TIMEOUT" default:"4s"`
	TLSEnabled          bool          `envconfig:"TLS_ENABLED" default:"false"`
	PasswordFromSecrets bool          `envconfig:"PASSWORD_FROM_SECRETS" default:"false"`
}

type JWTConfig struct {
	JWKSEndpoint      string        `envconfig:"JWKS_ENDPOINT" required:"false"` // optional, external issuer
	CacheTTL          time.Duration `envconfig:"CACHE_TTL" default:"10m"`
	Issuer            string        `envconfig:"ISSUER" default:"pickup-archive"`
	Audience          string        `envconfig:"AUDIENCE" default:"pickup-archive-admin"`
	Secret            string        `envconfig:"SECRET"` // required unless read from Secrets Manager or JWKS
	SecretFromSecrets bool          `envconfig:"SECRET_FROM_SECRETS" default:"false"`
	TokenTTL          time.Duration `envconfig:"TOKEN_TTL" default:"1h"`
}

type RateLimitConfig struct {
	Requests    int           `envconfig:"REQUESTS" default:"100"`
	WindowSize  time.Duration `envconfig:"WINDOW_SIZE" default:"15m"`
	Enabled     bool          `envconfig:"ENABLED" default:"true"`
	ExemptPaths []string      `envconfig:"EXEMPT_PATHS" default:"/health,/readyz,/metrics"`
}

type PaginationConfig struct {
	DefaultLimit    int `envconfig:"DEFAULT_LIMIT" default:"10"`
	MaxLimit        int `envconfig:"MAX_LIMIT" default:"100"`
	SuggestionLimit int `envconfig:"SUGGESTION_LIMIT" default:"10"`
}

type ObservabilityConfig struct {
	MetricsPath    string  `envconfig:"METRICS_PATH" default:"/metrics"`
	OTLPEndpoint   string  `envconfig:"OTLP_ENDPOINT" default:"http://localhost:4318"`
	TracingEnabled bool    `envconfig:"TRACING_ENABLED" default:"false"`
	SampleRate     float64 `envconfig:"SAMPLE_RATE" default:"0.1"`
}

type CORSConfig struct {
	AllowOrigins string `envconfig:"ALLOW_ORIGINS" default:"*"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// envconfig does not trim whitespace around slice items
	if exemptPaths := os.Getenv("RATE_LIMIT_EXEMPT_PATHS"); exemptPaths != "" {
		cfg.RateLimit.ExemptPaths = strings.Split(exemptPaths, ",")
		for i := range cfg.RateLimit.ExemptPaths {
			cfg.RateLimit.ExemptPaths[i] = strings.TrimSpace(cfg.RateLimit.ExemptPaths[i])
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", cfg.Server.Port)
	}

	if cfg.Observability.SampleRate < 0 || cfg.Observability.SampleRate > 1 {
		return fmt.Errorf("invalid tracing sample rate: %f", cfg.Observability.SampleRate)
	}

	if cfg.JWT.Secret == "" && !cfg.JWT.SecretFromSecrets && cfg.JWT.JWKSEndpoint == "" {
		return fmt.Errorf("jwt secret must be set")
	}

	if cfg.JWT.TokenTTL <= 0 {
		return fmt.Errorf("invalid token ttl: %s", cfg.JWT.TokenTTL)
	}

	if cfg.Pagination.DefaultLimit < 1 || cfg.Pagination.MaxLimit < cfg.Pagination.DefaultLimit {
		return fmt.Errorf("invalid pagination limits: default=%d max=%d", cfg.Pagination.DefaultLimit, cfg.Pagination.MaxLimit)
	}

	if cfg.RateLimit.Enabled && (cfg.RateLimit.Requests < 1 || cfg.RateLimit.WindowSize <= 0) {
		return fmt.Errorf("invalid rate limit: %d per %s", cfg.RateLimit.Requests, cfg.RateLimit.WindowSize)
	}

	return nil
}
