package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jj-tech-ranger/alx-project-nexus/config"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/app"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/delivery"
	grpcHandler "github.com/jj-tech-ranger/alx-project-nexus/internal/delivery/grpc"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/middleware"
	"github.com/jj-tech-ranger/alx-project-nexus/internal/proxy"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, logLevel.String())
	}
	logger.SetLevel(logLevel)
	logger.Info("Starting Nexus API...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := app.OpenDB(ctx, cfg, false, logger)
	if err != nil {
		logger.Fatalf("Failed to prepare database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Errorf("Error closing database connection: %v", err)
		} else {
			logger.Info("Database connection closed.")
		}
	}()

	a, err := app.New(ctx, cfg, database, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize application: %v", err)
	}
	defer a.Close()

	router, err := newRouter(cfg, a, logger)
	if err != nil {
		logger.Fatalf("Failed to build router: %v", err)
	}

	// --- gRPC health ---
	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		logger.Fatalf("Failed to listen on port %s: %v", cfg.GrpcPort, err)
	}
	grpcServer := grpc.NewServer()
	health := grpcHandler.NewHealthHandler(database, 15*time.Second, logger)
	health.Register(grpcServer)
	go health.Run(ctx)
	go func() {
		logger.Infof("gRPC server listening on %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Errorf("Failed to serve gRPC: %v", err)
		}
	}()

	// --- HTTP ---
	srv := &http.Server{
		Addr:         cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting server on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Failed to start server on port %s: %v", cfg.HTTPPort, err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Warn("Shutdown signal received...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown failed: %v", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Nexus API shut down gracefully.")
}

func newRouter(cfg *config.Config, a *app.App, logger *logrus.Logger) (*gin.Engine, error) {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.MaxMultipartMemory = cfg.MaxUploadBytes
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	switch {
	case cfg.MediaProxyURL != "":
		mediaProxy, err := proxy.NewReverseProxy(cfg.MediaProxyURL, "/media", logger)
		if err != nil {
			return nil, err
		}
		router.Any("/media/*path", proxy.ProxyHandler(mediaProxy, logger))
	case cfg.MediaBackend == "local":
		router.Static("/media", cfg.MediaRoot)
	}

	router.GET("/health", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.PingContext(pingCtx); err != nil {
			delivery.ErrorResponse(c, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		delivery.SuccessResponse(c, http.StatusOK, "OK", nil)
	})

	limiter := middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, 10*time.Minute)
	guards := delivery.Guards{
		Auth:      middleware.AuthMiddleware(a.Issuer, logger),
		Staff:     middleware.RequireStaff(logger),
		RateLimit: middleware.RateLimit(limiter, logger),
	}

	api := router.Group("/api")
	delivery.NewCategoryHandler(a.Categories, cfg.MaxUploadBytes, logger).RegisterRoutes(api, guards)
	delivery.NewProductHandler(a.Products, cfg.MaxUploadBytes, logger).RegisterRoutes(api, guards)
	delivery.NewOrderHandler(a.Orders, logger).RegisterRoutes(api, guards)
	delivery.NewAddressHandler(a.Addresses, logger).RegisterRoutes(api, guards)
	delivery.NewReviewHandler(a.Reviews, logger).RegisterRoutes(api, guards)
	delivery.NewSavedItemHandler(a.SavedItems, logger).RegisterRoutes(api, guards)
	delivery.NewAuthHandler(a.Accounts, cfg.MaxUploadBytes, logger).RegisterRoutes(api, guards)
	delivery.NewAdminHandler(a.Accounts, a.Orders, a.Reviews, a.Analytics, logger).RegisterRoutes(api, guards)
	logger.Info("Routes registered.")

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", delivery.IdempotencyKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
