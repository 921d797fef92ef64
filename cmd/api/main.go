package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angtech/catalog-api/internal/config"
	"github.com/angtech/catalog-api/internal/handler"
	"github.com/angtech/catalog-api/internal/infra/mongodb"
	"github.com/angtech/catalog-api/internal/infra/observability"
	"github.com/angtech/catalog-api/internal/infra/upload"
	"github.com/angtech/catalog-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("mongo_db", cfg.MongoDB),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.String("upload_dir", cfg.UploadDir),
		zap.Strings("cors_origins", cfg.CORSOrigins),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "catalog-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- MongoDB ---
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := mongodb.Connect(connectCtx, cfg.MongoURI, cfg.MongoDB, metrics, logger)
	cancelConnect()
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer db.Disconnect(context.Background())

	if err := db.EnsureIndexes(context.Background()); err != nil {
		logger.Fatal("failed to ensure indexes", zap.Error(err))
	}

	// --- Stores ---
	productStore := mongodb.NewProductStore(db)
	customerStore := mongodb.NewCustomerStore(db)
	enquiryStore := mongodb.NewEnquiryStore(db)
	userStore := mongodb.NewUserStore(db)

	// --- Upload storage ---
	uploads, err := upload.NewStorage(cfg.UploadDir, logger)
	if err != nil {
		logger.Fatal("failed to init upload storage", zap.Error(err))
	}

	// --- Services ---
	svcs := handler.Services{
		Intake:    service.NewIntake(productStore, customerStore, enquiryStore, metrics, logger),
		Catalog:   service.NewCatalog(productStore, logger),
		Enquiries: service.NewEnquiryService(enquiryStore, logger),
		Customers: service.NewCustomerService(customerStore, logger),
		Auth:      service.NewAuthService(userStore, cfg.JWTSecret, cfg.JWTAccessTTL, logger),
		Uploads:   uploads,
		Metrics:   metrics,
		DB:        db,
	}

	// --- Router ---
	router := handler.NewRouter(cfg, svcs, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
