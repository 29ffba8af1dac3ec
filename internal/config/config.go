package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backend identifiers accepted in STORAGE_BACKEND.
const (
	StorageBackendLocal = "local"
	StorageBackendAzure = "azure"
)

// Combination strategy identifiers accepted in COMBINATION_STRATEGY.
const (
	StrategySlidingWindow = "sliding-window"
	// StrategyShuffle is a development stub that mimics the old in-browser
	// random generator. Never the default.
	StrategyShuffle = "shuffle"
)

type Config struct {
	Host                string
	Port                string
	RequestTimeout      time.Duration
	AnalysisTimeout     time.Duration
	MaxRequestBodySize  int64
	UploadDir           string
	StorageBackend      string
	AzureAccountName    string
	AzureAccountKey     string
	AzureContainer      string
	SessionTTL          time.Duration
	PaletteSize         int
	CombinationStrategy string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:                getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                getEnvOrDefault("PORT", "8080"),
		RequestTimeout:      parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		AnalysisTimeout:     parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		MaxRequestBodySize:  parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 16*1024*1024), // 16MiB
		UploadDir:           getEnvOrDefault("UPLOAD_DIR", "uploads"),
		StorageBackend:      getEnvOrDefault("STORAGE_BACKEND", StorageBackendLocal),
		AzureAccountName:    os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureAccountKey:     os.Getenv("AZURE_STORAGE_KEY"),
		AzureContainer:      getEnvOrDefault("AZURE_STORAGE_CONTAINER", "uploads"),
		SessionTTL:          parseDurationOrDefault("SESSION_TTL", 30*time.Minute),
		PaletteSize:         int(parseIntOrDefault("PALETTE_SIZE", 5)),
		CombinationStrategy: getEnvOrDefault("COMBINATION_STRATEGY", StrategySlidingWindow),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.AnalysisTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, analysis=%s)",
			cfg.RequestTimeout, cfg.AnalysisTimeout)
	}
	if cfg.PaletteSize < 1 || cfg.PaletteSize > 16 {
		return nil, fmt.Errorf("PALETTE_SIZE must be in [1,16] (got %d)", cfg.PaletteSize)
	}
	switch cfg.StorageBackend {
	case StorageBackendLocal:
	case StorageBackendAzure:
		if cfg.AzureAccountName == "" || cfg.AzureAccountKey == "" {
			return nil, fmt.Errorf("azure backend requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND: %q", cfg.StorageBackend)
	}
	switch cfg.CombinationStrategy {
	case StrategySlidingWindow, StrategyShuffle:
	default:
		return nil, fmt.Errorf("invalid COMBINATION_STRATEGY: %q", cfg.CombinationStrategy)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
