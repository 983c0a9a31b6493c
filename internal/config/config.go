package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds everything the process reads from its environment.
type AppConfig struct {
	Port string

	// Upstream Open-Meteo endpoints.
	ForecastURL   string
	AirQualityURL string
	Timezone      string
	HTTPTimeout   time.Duration

	// Redis address for the durable shared cache; empty means in-memory only.
	RedisAddr string
	RedisTTL  time.Duration

	// Cache freshness.
	StalenessThreshold time.Duration
	SnapshotTTL        time.Duration
	ForecastMaxAge     time.Duration

	// Periodic refresh.
	RefreshInterval    time.Duration
	MinRefreshInterval time.Duration
	RefreshJobTimeout  time.Duration
	RefreshRetryAfter  []time.Duration

	// Aggregation.
	ForecastDays int
	TargetHour   int
	TopN         int
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Port:          getenvDefault("PORT", "8080"),
		ForecastURL:   getenvDefault("OPENMETEO_FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
		AirQualityURL: getenvDefault("OPENMETEO_AIR_QUALITY_URL", "https://air-quality-api.open-meteo.com/v1/air-quality"),
		Timezone:      getenvDefault("UPSTREAM_TIMEZONE", "Asia/Dhaka"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		ForecastDays:  getenvInt("FORECAST_DAYS", 7),
		TargetHour:    getenvInt("TARGET_HOUR", 14),
		TopN:          getenvInt("TOP_N", 10),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.RedisTTL, err = getenvDuration("REDIS_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.StalenessThreshold, err = getenvDuration("STALENESS_THRESHOLD", "12m"); err != nil {
		return nil, err
	}
	if cfg.SnapshotTTL, err = getenvDuration("SNAPSHOT_TTL", "15m"); err != nil {
		return nil, err
	}
	if cfg.ForecastMaxAge, err = getenvDuration("FORECAST_MAX_AGE", "30m"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "10m"); err != nil {
		return nil, err
	}
	if cfg.MinRefreshInterval, err = getenvDuration("MIN_REFRESH_INTERVAL", "5m"); err != nil {
		return nil, err
	}
	if cfg.RefreshJobTimeout, err = getenvDuration("REFRESH_JOB_TIMEOUT", "8m"); err != nil {
		return nil, err
	}

	// Retry ladder applied by the scheduler on failed refreshes.
	cfg.RefreshRetryAfter = []time.Duration{30 * time.Second, 60 * time.Second, 120 * time.Second}

	if cfg.TargetHour < 0 || cfg.TargetHour > 23 {
		return nil, fmt.Errorf("TARGET_HOUR must be within 0-23, got %d", cfg.TargetHour)
	}
	if cfg.ForecastDays < 1 || cfg.ForecastDays > 16 {
		return nil, fmt.Errorf("FORECAST_DAYS must be within 1-16, got %d", cfg.ForecastDays)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
