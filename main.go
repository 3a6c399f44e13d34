package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"api_pos/api"
	"api_pos/internal/auth"
	"api_pos/internal/config"
	"api_pos/internal/storage/sqlite"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer store.Close()

	authenticator := auth.NewAuthenticator(store)
	if err := authenticator.SeedAdmin(context.Background(), cfg.AdminUser, cfg.AdminPassword); err != nil {
		logger.Fatal("failed to seed admin user", zap.Error(err))
	}

	r := gin.Default()
	api.InitRoutes(r, cfg, store, logger)

	logger.Info("server starting", zap.String("addr", cfg.Addr))
	if err := r.Run(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
