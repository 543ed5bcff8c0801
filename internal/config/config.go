package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	AppName    = "Lector"
	AppVersion = "1.0.0"
)

// UserAgent identifies Lector to feed origins.
var UserAgent = AppName + "/" + AppVersion + " (+https://github.com/lector-reader/lector)"

type Config struct {
	Addr            string
	DBPath          string
	DataDir         string
	ProxyURL        string
	RefreshInterval time.Duration
	RefreshWorkers  int
	LogLevel        string
}

func Load() Config {
	addr := os.Getenv("LECTOR_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	dataDir := os.Getenv("LECTOR_DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	path := os.Getenv("LECTOR_DB_PATH")
	if path == "" {
		path = filepath.Join(dataDir, "lector.db")
	}
	interval := 30 * time.Minute
	if raw := os.Getenv("LECTOR_REFRESH_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			interval = parsed
		}
	}
	workers := 8
	if raw := os.Getenv("LECTOR_REFRESH_WORKERS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			workers = parsed
		}
	}
	logLevel := os.Getenv("LECTOR_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return Config{
		Addr:            addr,
		DBPath:          filepath.Clean(path),
		DataDir:         filepath.Clean(dataDir),
		ProxyURL:        os.Getenv("LECTOR_PROXY_URL"),
		RefreshInterval: interval,
		RefreshWorkers:  workers,
		LogLevel:        logLevel,
	}
}
