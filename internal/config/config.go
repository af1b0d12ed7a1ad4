package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string

	JWTSecret string
	JWKSURL   string

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RateLimitPerMinute int

	StoreTimeout time.Duration

	// ReceiptAutoConfirmAfter is how long a delivered order waits before the
	// platform confirms receipt. Zero disables the job.
	ReceiptAutoConfirmAfter time.Duration
	ReceiptSweepInterval    time.Duration

	DefaultPageSize int
	MaxPageSize     int
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int, errs *[]error) int {
	raw := os.Getenv(k)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return v
}

func getDuration(k string, def time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(k)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return v
}

// Load reads .env if present and then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var errs []error
	cfg := Config{
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		Port:                    getenv("PORT", "8080"),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		JWKSURL:                 os.Getenv("JWKS_URL"),
		RedisAddr:               getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 getInt("REDIS_DB", 0, &errs),
		RateLimitPerMinute:      getInt("RATE_LIMIT_PER_MINUTE", 60, &errs),
		StoreTimeout:            getDuration("STORE_TIMEOUT", 5*time.Second, &errs),
		ReceiptAutoConfirmAfter: getDuration("RECEIPT_AUTO_CONFIRM_AFTER", 48*time.Hour, &errs),
		ReceiptSweepInterval:    getDuration("RECEIPT_SWEEP_INTERVAL", 15*time.Minute, &errs),
		DefaultPageSize:         getInt("DEFAULT_PAGE_SIZE", 20, &errs),
		MaxPageSize:             getInt("MAX_PAGE_SIZE", 100, &errs),
	}

	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if cfg.JWTSecret == "" && cfg.JWKSURL == "" {
		errs = append(errs, errors.New("one of JWT_SECRET or JWKS_URL is required"))
	}
	if cfg.RateLimitPerMinute < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}
	if cfg.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if cfg.ReceiptAutoConfirmAfter < 0 {
		errs = append(errs, errors.New("RECEIPT_AUTO_CONFIRM_AFTER cannot be negative"))
	}
	if cfg.ReceiptSweepInterval <= 0 {
		errs = append(errs, errors.New("RECEIPT_SWEEP_INTERVAL must be positive"))
	}
	if cfg.DefaultPageSize < 1 || cfg.MaxPageSize < cfg.DefaultPageSize {
		errs = append(errs, errors.New("page sizes must satisfy 1 <= DEFAULT_PAGE_SIZE <= MAX_PAGE_SIZE"))
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}
