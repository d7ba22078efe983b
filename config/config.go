package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DataDir      string
	VideoDir     string
	ThumbnailDir string
	Workers      int
}

func Load() (*Config, error) {
	// A missing .env is fine; environment variables win either way.
	_ = godotenv.Load()

	workers, err := strconv.Atoi(getEnv("WORKERS", "2"))
	if err != nil || workers < 1 {
		return nil, fmt.Errorf("invalid WORKERS: %q", os.Getenv("WORKERS"))
	}

	dataDir := getEnv("DATA_DIR", "/data")

	return &Config{
		DataDir:      dataDir,
		VideoDir:     getEnv("VIDEO_DIR", filepath.Join(dataDir, "videos")),
		ThumbnailDir: getEnv("THUMBNAIL_DIR", filepath.Join(dataDir, "thumbnails")),
		Workers:      workers,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
