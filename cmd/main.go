package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"exoserve/auth"
	"exoserve/catalog"
	"exoserve/config"
	"exoserve/db"
	qhttp "exoserve/http"
	"exoserve/logger"
	"exoserve/ml"
	"exoserve/monitoring"
	"exoserve/remote"
)

func main() {
	// Look for config in root even if run from cmd/
	configPath := "config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = filepath.Join("..", "config.yaml")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.Init(cfg.Log.Level, cfg.Log.Path, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	if dir := filepath.Dir(cfg.Database.Path); dir != "." && cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			zlog.Fatal("failed to create database dir", zap.Error(err))
		}
	}
	if err := db.Init(cfg.Database.Path); err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	zlog.Info("database initialized", zap.String("path", cfg.Database.Path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initializeServices(ctx, cfg, zlog)

	serverConfig := qhttp.DefaultServerConfig()
	serverConfig.Port = cfg.Http.Port
	serverConfig.Timeout = cfg.HttpTimeout()
	serverConfig.AllowedOrigins = cfg.Http.AllowedOrigins
	serverConfig.RateLimit = cfg.Http.RateLimit
	serverConfig.RateBurst = cfg.Http.RateBurst

	server := qhttp.NewServer(serverConfig)
	go func() {
		if err := server.Start(); err != nil {
			zlog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down")

	if err := server.Stop(); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
}

func initializeServices(ctx context.Context, cfg *config.Config, zlog *zap.Logger) {
	artifacts := ml.NewArtifactProvider(cfg.ML.ArtifactsDir)
	if cfg.ML.EagerLoad {
		if _, err := artifacts.Bundle(); err != nil {
			zlog.Fatal("failed to load model artifacts", zap.Error(err))
		}
		zlog.Info("model artifacts loaded", zap.String("dir", cfg.ML.ArtifactsDir))
	}
	if err := ml.WatchArtifacts(ctx, cfg.ML.ArtifactsDir, zlog); err != nil {
		zlog.Warn("artifact watcher unavailable", zap.Error(err))
	}
	qhttp.SetInferenceProvider(ml.NewService(artifacts, zlog))

	client := remote.NewClient(cfg.ML.APIURL, cfg.ML.APIKey, cfg.APITimeout(), zlog)
	qhttp.SetDelegatedProvider(remote.NewClassifier(client, cfg.ML.UseFallback, zlog))

	tokenService := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenTTL())
	qhttp.SetTokenVerifier(tokenService)
	qhttp.SetTokenIssuer(tokenService)

	store, err := catalog.NewStore(db.Conn())
	if err != nil {
		zlog.Fatal("failed to create catalog store", zap.Error(err))
	}
	qhttp.SetCatalogStore(store)

	qhttp.SetLiveHub(monitoring.NewLiveHub(zlog))
}
