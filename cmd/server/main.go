package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/codyseavey/tcg-inventory-sync/internal/api"
	"github.com/codyseavey/tcg-inventory-sync/internal/config"
	"github.com/codyseavey/tcg-inventory-sync/internal/database"
	"github.com/codyseavey/tcg-inventory-sync/internal/logger"
	"github.com/codyseavey/tcg-inventory-sync/internal/progress"
	"github.com/codyseavey/tcg-inventory-sync/internal/services"
	"github.com/codyseavey/tcg-inventory-sync/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Must(cfg.Log.Level, cfg.Log.Development)
	defer log.Sync()

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LogLevel, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}

	// Jobs this server was running before a crash can never finish
	if _, err := database.FailInterruptedUploads(db, cfg.Sync.StaleJobAfter, log); err != nil {
		log.Fatal("failed to recover upload jobs", zap.Error(err))
	}

	// Every storage call shares one bounded pool across all running batches
	st := store.NewLimited(store.NewGormStore(db), cfg.Sync.PoolSize)
	tracker := progress.NewTracker(cfg.Progress.Capacity, cfg.Progress.TTL)
	syncService := services.NewSyncService(st, tracker, log)

	router := api.SetupRouter(api.RouterConfig{
		CORSOrigins:    cfg.Server.CORSOrigins,
		UploadRate:     cfg.Server.UploadRate,
		UploadBurst:    cfg.Server.UploadBurst,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}, syncService, log)

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server",
			zap.String("port", cfg.Server.Port),
			zap.String("driver", cfg.Database.Driver),
			zap.Int("pool_size", cfg.Sync.PoolSize))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("server exited")
}
