// Command createadmin provisions a back-office admin account. It is meant
// to be run once against a fresh database; running it again with the same
// email is a safe no-op.
package main

import (
	"context"
	"os"
	"time"

	"github.com/angtech/catalog-api/internal/config"
	"github.com/angtech/catalog-api/internal/domain"
	"github.com/angtech/catalog-api/internal/infra/mongodb"
	"github.com/angtech/catalog-api/internal/infra/observability"
	"github.com/angtech/catalog-api/internal/service"

	"go.uber.org/zap"
)

func main() {
	_ = config.LoadDotEnv(".env")
	cfg := config.Load()

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	username := envOr("ADMIN_USERNAME", "admin")
	email := envOr("ADMIN_EMAIL", "admin@angtechnologies.com")
	password := envOr("ADMIN_PASSWORD", "admin123")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB, observability.NewMetrics(), logger)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer db.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx); err != nil {
		logger.Fatal("failed to ensure indexes", zap.Error(err))
	}

	users := mongodb.NewUserStore(db)

	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		logger.Fatal("failed to look up admin user", zap.Error(err))
	}
	if existing != nil {
		logger.Info("admin user already exists, nothing to do",
			zap.String("email", email),
		)
		return
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		logger.Fatal("failed to hash password", zap.Error(err))
	}

	user, err := users.Create(ctx, &domain.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		logger.Fatal("failed to create admin user", zap.Error(err))
	}

	logger.Info("admin user created",
		zap.String("user_id", user.ID.Hex()),
		zap.String("email", user.Email),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
