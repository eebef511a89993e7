package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultUpdateRepo = "Fepozopo/kernelimg"

type Config struct {
	LogLevel       string
	LogFormat      string
	Workers        int
	UpdateRepo     string
	PreviewBackend string
}

// Load reads an optional .env file from the working directory and then
// builds the configuration from the environment. Variables already set in
// the environment win over the .env file.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return LoadFromEnv()
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:       strings.ToLower(getEnvOrDefault("KERNELIMG_LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnvOrDefault("KERNELIMG_LOG_FORMAT", "text")),
		Workers:        parseIntOrDefault("KERNELIMG_WORKERS", DefaultWorkers()),
		UpdateRepo:     getEnvOrDefault("KERNELIMG_UPDATE_REPO", DefaultUpdateRepo),
		PreviewBackend: strings.ToLower(getEnvOrDefault("PREVIEW_BACKEND", "")),
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return nil, fmt.Errorf("invalid KERNELIMG_LOG_LEVEL: %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid KERNELIMG_LOG_FORMAT: %q", cfg.LogFormat)
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("KERNELIMG_WORKERS must be >= 1 (got %d)", cfg.Workers)
	}
	if strings.Count(cfg.UpdateRepo, "/") != 1 {
		return nil, fmt.Errorf("invalid KERNELIMG_UPDATE_REPO: %q (want owner/name)", cfg.UpdateRepo)
	}
	switch cfg.PreviewBackend {
	case "", "kitty", "inline", "none":
	default:
		return nil, fmt.Errorf("invalid PREVIEW_BACKEND: %q", cfg.PreviewBackend)
	}
	return cfg, nil
}

// DefaultWorkers is the number of row workers used when none is configured.
func DefaultWorkers() int {
	return min(6, runtime.NumCPU())
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		// unparsable values fail validation instead of silently defaulting
		return 0
	}
	return defaultValue
}
