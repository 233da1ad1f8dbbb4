// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	DataDir     string // Base directory for all databases, always absolute
	LogLevel    string
	LogPretty   bool
	Port        int
	DevMode     bool
	DBDriver    string   // "sqlite" (modernc, default) or "sqlite3" (mattn, cgo)
	CORSOrigins []string // Allowed origins for the API
	CatalogFile string   // Optional channel catalog override file (yaml, json or toml)

	Optimizer OptimizerConfig
	Realtime  RealtimeConfig
	Jobs      JobsConfig
	Backup    BackupConfig
}

// OptimizerConfig controls the budget optimization engine
type OptimizerConfig struct {
	// FallbackOnInvalid returns the fixed fallback plan instead of a
	// validation error when constraints are not satisfiable.
	FallbackOnInvalid bool
}

// RealtimeConfig controls the real-time performance analyzer
type RealtimeConfig struct {
	HistorySize int // Snapshots kept per session
}

// JobsConfig holds cron schedules (seconds precision) for background jobs
type JobsConfig struct {
	CacheCleanupSchedule string
	BackupSchedule       string
}

// BackupConfig holds database backup settings
type BackupConfig struct {
	Enabled         bool
	Dir             string // Local directory for backup archives
	Retention       int    // Local archives to keep
	S3Bucket        string // Empty disables off-site upload
	S3Prefix        string
	S3Region        string
	S3Endpoint      string // Custom endpoint for S3-compatible stores
	AccessKeyID     string
	SecretAccessKey string
}

// S3Enabled reports whether off-site upload is configured
func (b BackupConfig) S3Enabled() bool {
	return b.S3Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("MVT_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:     absDataDir,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPretty:   getEnvAsBool("LOG_PRETTY", true),
		Port:        getEnvAsInt("PORT", 8000),
		DevMode:     getEnvAsBool("DEV_MODE", false),
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		CORSOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		CatalogFile: getEnv("CATALOG_FILE", ""),
		Optimizer: OptimizerConfig{
			FallbackOnInvalid: getEnvAsBool("OPTIMIZER_FALLBACK_ON_INVALID", false),
		},
		Realtime: RealtimeConfig{
			HistorySize: getEnvAsInt("REALTIME_HISTORY_SIZE", 100),
		},
		Jobs: JobsConfig{
			CacheCleanupSchedule: getEnv("CACHE_CLEANUP_SCHEDULE", "0 0 * * * *"),
			BackupSchedule:       getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"),
		},
		Backup: BackupConfig{
			Enabled:         getEnvAsBool("BACKUP_ENABLED", true),
			Dir:             getEnv("BACKUP_DIR", filepath.Join(absDataDir, "backups")),
			Retention:       getEnvAsInt("BACKUP_RETENTION", 7),
			S3Bucket:        getEnv("BACKUP_S3_BUCKET", ""),
			S3Prefix:        getEnv("BACKUP_S3_PREFIX", "mvt-analytics"),
			S3Region:        getEnv("BACKUP_S3_REGION", "auto"),
			S3Endpoint:      getEnv("BACKUP_S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration values for consistency
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	switch c.DBDriver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (expected sqlite or sqlite3)", c.DBDriver)
	}

	if c.Realtime.HistorySize < 2 {
		return fmt.Errorf("REALTIME_HISTORY_SIZE must be at least 2, got %d", c.Realtime.HistorySize)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Jobs.CacheCleanupSchedule); err != nil {
		return fmt.Errorf("invalid CACHE_CLEANUP_SCHEDULE: %w", err)
	}
	if _, err := parser.Parse(c.Jobs.BackupSchedule); err != nil {
		return fmt.Errorf("invalid BACKUP_SCHEDULE: %w", err)
	}

	if c.Backup.Retention < 1 {
		return fmt.Errorf("BACKUP_RETENTION must be at least 1, got %d", c.Backup.Retention)
	}
	if c.Backup.S3Enabled() && (c.Backup.AccessKeyID == "") != (c.Backup.SecretAccessKey == "") {
		return fmt.Errorf("BACKUP_S3_ACCESS_KEY_ID and BACKUP_S3_SECRET_ACCESS_KEY must be set together")
	}

	return nil
}

// AnalyticsDBPath returns the path of the domain database
func (c *Config) AnalyticsDBPath() string {
	return filepath.Join(c.DataDir, "analytics.db")
}

// CacheDBPath returns the path of the geographic cache database
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
