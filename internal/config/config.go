package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/anime-shed/blur-culler/internal/sharpness"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ScanTimeout        time.Duration
	ImageFetchTimeout  time.Duration
	MaxRequestBodySize int64

	// Scoring
	BlurThreshold      float64
	Workers            int
	MaxDecodeDimension int

	// Library layout
	ReviewDirName string
	LibraryRoot   string
	ThumbnailSize int

	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Azure Blob Storage, optional
	AzureStorageAccount string
	AzureStorageKey     string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether blob scoring is configured
func (c *Config) AzureEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ScanTimeout:        parseDurationOrDefault("SCAN_TIMEOUT", 10*time.Minute),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 25*1024*1024), // 25MB

		BlurThreshold:      parseFloatOrDefault("BLUR_THRESHOLD", 100.0),
		Workers:            int(parseIntOrDefault("WORKERS", 0)),
		MaxDecodeDimension: int(parseIntOrDefault("MAX_DECODE_DIMENSION", 0)),

		ReviewDirName: getEnvOrDefault("REVIEW_DIR_NAME", "_blurry"),
		LibraryRoot:   strings.TrimSpace(os.Getenv("LIBRARY_ROOT")),
		ThumbnailSize: int(parseIntOrDefault("THUMBNAIL_SIZE", 256)),

		RateLimitRPS:   parseFloatOrDefault("RATE_LIMIT_RPS", 10),
		RateLimitBurst: int(parseIntOrDefault("RATE_LIMIT_BURST", 20)),

		AzureStorageAccount: os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:     os.Getenv("AZURE_STORAGE_KEY"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.LibraryRoot != "" {
		abs, err := filepath.Abs(cfg.LibraryRoot)
		if err != nil {
			return nil, fmt.Errorf("invalid LIBRARY_ROOT: %w", err)
		}
		cfg.LibraryRoot = abs
	}
	return cfg, nil
}

// Validate checks ranges and cross-field constraints
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.ScanTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, scan=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.ScanTimeout)
	}
	if err := sharpness.DefaultConfig().WithThreshold(c.BlurThreshold).Validate(); err != nil {
		return fmt.Errorf("invalid BLUR_THRESHOLD: %w", err)
	}
	if c.Workers < 0 || c.MaxDecodeDimension < 0 || c.ThumbnailSize <= 0 {
		return fmt.Errorf("WORKERS and MAX_DECODE_DIMENSION must be >= 0 and THUMBNAIL_SIZE > 0 (got %d, %d, %d)",
			c.Workers, c.MaxDecodeDimension, c.ThumbnailSize)
	}
	name := c.ReviewDirName
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("REVIEW_DIR_NAME must be a plain folder name (got %q)", name)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limits must be > 0 (got rps=%v, burst=%d)", c.RateLimitRPS, c.RateLimitBurst)
	}
	if (c.AzureStorageAccount == "") != (c.AzureStorageKey == "") {
		return fmt.Errorf("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}
	return nil
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

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}
