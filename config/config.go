package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	HTTPPort    string `envconfig:"HTTP_PORT"    default:":8000"`
	GrpcPort    string `envconfig:"GRPC_PORT"    default:":50051"` // gRPC health endpoint
	LogLevel    string `envconfig:"LOG_LEVEL"    default:"info"`

	JWTSecret       string        `envconfig:"JWT_SECRET"        required:"true"`
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL"  default:"24h"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`

	// Empty RedisAddr keeps refresh sessions and idempotency keys in memory.
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	RedisDB        int           `envconfig:"REDIS_DB" default:"0"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	MediaBackend        string `envconfig:"MEDIA_BACKEND"  default:"local"` // local | cloudinary
	MediaRoot           string `envconfig:"MEDIA_ROOT"     default:"./media"`
	MediaBaseURL        string `envconfig:"MEDIA_BASE_URL" default:"http://localhost:8000/media"`
	MediaProxyURL       string `envconfig:"MEDIA_PROXY_URL"`
	CloudinaryURL       string `envconfig:"CLOUDINARY_URL"`
	CloudinaryFolder    string `envconfig:"CLOUDINARY_FOLDER" default:"nexus"`
	PlaceholderImageURL string `envconfig:"PLACEHOLDER_IMAGE_URL" default:"https://placehold.co/600x600?text=No+Image"`
	MaxUploadBytes      int64  `envconfig:"MAX_UPLOAD_BYTES" default:"5242880"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	AuthRateLimit      float64  `envconfig:"AUTH_RATE_LIMIT" default:"1"`
	AuthRateBurst      int      `envconfig:"AUTH_RATE_BURST" default:"5"`
	LowStockThreshold  int      `envconfig:"LOW_STOCK_THRESHOLD" default:"5"`

	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT"  default:"15s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
}

var (
	config Config
	once   sync.Once
)

// Load reads .env (if present) and the process environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration from environment variables: %w", err)
	}
	// envconfig accepts a variable that is set but empty.
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	switch cfg.MediaBackend {
	case "local":
	case "cloudinary":
		if cfg.CloudinaryURL == "" {
			return nil, fmt.Errorf("MEDIA_BACKEND=cloudinary requires CLOUDINARY_URL")
		}
	default:
		return nil, fmt.Errorf("unknown MEDIA_BACKEND %q", cfg.MediaBackend)
	}
	return &cfg, nil
}

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		cfg, err := Load()
		if err != nil {
			logger.Fatalf("Configuration error: %v", err)
		}
		config = *cfg

		logger.Infof("Configuration loaded: HTTP Port=%s, GRPC Port=%s, LogLevel=%s, MediaBackend=%s",
			config.HTTPPort, config.GrpcPort, config.LogLevel, config.MediaBackend)
		if config.RedisAddr == "" {
			logger.Warn("Configuration loaded: REDIS_ADDR is not set, sessions and idempotency keys stay in process memory")
		}
	})
	return &config
}
