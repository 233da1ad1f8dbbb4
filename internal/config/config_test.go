package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MVT_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.False(t, cfg.Optimizer.FallbackOnInvalid)
	assert.Equal(t, 100, cfg.Realtime.HistorySize)
	assert.Equal(t, filepath.Join(dir, "backups"), cfg.Backup.Dir)
	assert.False(t, cfg.Backup.S3Enabled())
	assert.Equal(t, filepath.Join(dir, "analytics.db"), cfg.AnalyticsDBPath())
	assert.Equal(t, filepath.Join(dir, "cache.db"), cfg.CacheDBPath())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("MVT_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9100")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("OPTIMIZER_FALLBACK_ON_INVALID", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("BACKUP_S3_BUCKET", "backups")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.True(t, cfg.Optimizer.FallbackOnInvalid)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.Backup.S3Enabled())
}

func TestLoad_InvalidValueFallsBackToDefault(t *testing.T) {
	t.Setenv("MVT_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:     8000,
			DBDriver: "sqlite",
			Realtime: RealtimeConfig{HistorySize: 100},
			Jobs: JobsConfig{
				CacheCleanupSchedule: "0 0 * * * *",
				BackupSchedule:       "@daily",
			},
			Backup: BackupConfig{Retention: 7},
		}
	}

	require.NoError(t, valid().Validate())

	testCases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"unknown driver", func(c *Config) { c.DBDriver = "postgres" }},
		{"tiny history", func(c *Config) { c.Realtime.HistorySize = 1 }},
		{"bad cleanup schedule", func(c *Config) { c.Jobs.CacheCleanupSchedule = "every hour" }},
		{"bad backup schedule", func(c *Config) { c.Jobs.BackupSchedule = "* *" }},
		{"zero retention", func(c *Config) { c.Backup.Retention = 0 }},
		{"half credentials", func(c *Config) {
			c.Backup.S3Bucket = "b"
			c.Backup.AccessKeyID = "key"
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
