package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jj-tech-ranger/alx-project-nexus/config"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/auth"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/idempotency"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/media"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/repository"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/usecase"
	"github.com/jj-tech-ranger/alx-project-nexus/pkg/db"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// App holds the storage handles and use cases shared by the API server and
// the seed command.
type App struct {
	DB     *sql.DB
	Redis  *redis.Client
	Issuer *auth.Issuer

	Categories domain.CategoryUseCase
	Products   domain.ProductUseCase
	Accounts   domain.AccountUseCase
	Addresses  domain.AddressUseCase
	Orders     domain.OrderUseCase
	Reviews    domain.ReviewUseCase
	SavedItems domain.SavedItemUseCase
	Analytics  domain.AnalyticsUseCase

	log *logrus.Logger
}

// OpenDB connects to Postgres. reset drops every table before the schema is
// applied.
func OpenDB(ctx context.Context, cfg *config.Config, reset bool, logger *logrus.Logger) (*sql.DB, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connection established.")

	if reset {
		if err := db.Reset(ctx, database); err != nil {
			database.Close()
			return nil, err
		}
		logger.Warn("All application tables dropped.")
	}
	if err := db.Migrate(ctx, database); err != nil {
		database.Close()
		return nil, err
	}
	logger.Info("Database schema is up to date.")
	return database, nil
}

func New(ctx context.Context, cfg *config.Config, database *sql.DB, logger *logrus.Logger) (*App, error) {
	a := &App{
		DB:     database,
		Issuer: auth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		log:    logger,
	}

	var (
		sessions auth.SessionStore
		keys     idempotency.Store
	)
	if cfg.RedisAddr != "" {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.Redis.Ping(pingCtx).Err(); err != nil {
			a.Redis.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		logger.Infof("Redis connection established at %s", cfg.RedisAddr)
		sessions = auth.NewRedisSessionStore(a.Redis)
		keys = idempotency.NewRedisStore(a.Redis, cfg.IdempotencyTTL)
	} else {
		sessions = auth.NewMemorySessionStore()
		keys = idempotency.NewMemoryStore(cfg.IdempotencyTTL)
	}

	store, err := newMediaStore(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	// --- Dependency Injection ---
	categoryRepo := repository.NewPostgresCategoryRepository(database, logger)
	productRepo := repository.NewPostgresProductRepository(database, logger)
	userRepo := repository.NewPostgresUserRepository(database, logger)
	addressRepo := repository.NewPostgresAddressRepository(database, logger)
	orderRepo := repository.NewPostgresOrderRepository(database, logger)
	reviewRepo := repository.NewPostgresReviewRepository(database, logger)
	savedItemRepo := repository.NewPostgresSavedItemRepository(database, logger)
	analyticsRepo := repository.NewPostgresAnalyticsRepository(database, logger)
	logger.Info("Repositories initialized.")

	a.Categories = usecase.NewCategoryUseCase(categoryRepo, store, logger)
	a.Products = usecase.NewProductUseCase(productRepo, categoryRepo, reviewRepo, store, cfg.PlaceholderImageURL, logger)
	a.Accounts = usecase.NewAccountUseCase(userRepo, a.Issuer, sessions, store, logger)
	a.Addresses = usecase.NewAddressUseCase(addressRepo, logger)
	a.Orders = usecase.NewOrderUseCase(orderRepo, keys, logger)
	a.Reviews = usecase.NewReviewUseCase(reviewRepo, logger)
	a.SavedItems = usecase.NewSavedItemUseCase(savedItemRepo, cfg.PlaceholderImageURL, logger)
	a.Analytics = usecase.NewAnalyticsUseCase(analyticsRepo, orderRepo, cfg.LowStockThreshold, logger)
	logger.Info("Use cases initialized.")

	return a, nil
}

func newMediaStore(cfg *config.Config, logger *logrus.Logger) (domain.MediaStore, error) {
	switch cfg.MediaBackend {
	case "cloudinary":
		logger.Infof("Media backend: cloudinary (folder %s)", cfg.CloudinaryFolder)
		return media.NewCloudinaryStore(cfg.CloudinaryURL, cfg.CloudinaryFolder, logger)
	default:
		logger.Infof("Media backend: local (%s served at %s)", cfg.MediaRoot, cfg.MediaBaseURL)
		return media.NewLocalStore(cfg.MediaRoot, cfg.MediaBaseURL, logger)
	}
}

// Close releases Redis. The database handle belongs to the caller.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.log.Errorf("Error closing redis connection: %v", err)
		}
	}
}
