package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/vidforge/config"
	"github.com/bnema/vidforge/internal/adapter/encoder/ffmpeg"
	sqlitestore "github.com/bnema/vidforge/internal/adapter/storage/sqlite"
	"github.com/bnema/vidforge/internal/infrastructure/logger"
	"github.com/bnema/vidforge/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error.Printf("failed to load config: %v", err)
		os.Exit(1)
	}

	for _, dir := range []string{cfg.DataDir, cfg.VideoDir, cfg.ThumbnailDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error.Printf("failed to create directory %s: %v", dir, err)
			os.Exit(1)
		}
	}

	store, err := sqlitestore.NewStore(cfg.DataDir)
	if err != nil {
		logger.Error.Printf("failed to create store: %v", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	jobs := sqlitestore.NewJobStore(store)
	assets := sqlitestore.NewAssetStore(store)
	encoder := ffmpeg.NewEncoder()
	eventBus := service.NewEventBus()

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	workerPool := service.NewWorkerPool(jobs, assets, encoder, eventBus, cfg.Workers)
	workerPool.Start(workerCtx)

	logger.Info.Printf("vidforge running: data=%s workers=%d", cfg.DataDir, cfg.Workers)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info.Printf("received %s, shutting down", sig)

	// Stop workers; jobs still processing keep that status until an
	// operator resets the row.
	workerCancel()
	logger.Info.Printf("shutdown complete")
}
