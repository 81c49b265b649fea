// Command tokenpurge deletes refresh tokens that expired long ago.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	"moments_api/internal/config"
	"moments_api/internal/database"
	"moments_api/internal/logger"
	"moments_api/internal/repository"
	"moments_api/internal/service"
)

func main() {
	retention := flag.Duration("retention", 7*24*time.Hour, "keep tokens expired for less than this long")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	authService := service.NewAuthService(repository.NewRefreshTokenRepository(db), cfg)
	deleted, err := authService.PurgeExpiredTokens(ctx, *retention)
	if err != nil {
		log.Fatalf("Token purge failed: %v", err)
	}
	log.WithField("deleted", deleted).Info("Token purge finished")
}
