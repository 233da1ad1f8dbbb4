package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aristath/mvt-analytics/internal/modules/catalog"
	"github.com/aristath/mvt-analytics/internal/modules/optimization"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRequest = `{
  "industry": "beauty",
  "constraints": {
    "total_budget": 2000000,
    "monthly_budget_limit": 200000,
    "max_risk_tolerance": 0.5,
    "target_customers": 400,
    "target_roi": 200,
    "time_horizon": 12
  },
  "selected_channels": ["google_ads", "facebook_ads"]
}`

func newEngine(fallback bool) *optimization.Engine {
	return optimization.NewEngine(catalog.New(), optimization.Options{FallbackOnInvalid: fallback}, zerolog.Nop())
}

func TestRunOptimize(t *testing.T) {
	var out bytes.Buffer
	err := runOptimize(context.Background(), newEngine(false), strings.NewReader(validRequest), &out, false)
	require.NoError(t, err)

	var result optimization.OptimizationResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, "beauty", result.Industry)
	assert.NotEmpty(t, result.RecommendedAllocation)
	for _, id := range result.RecommendedAllocation.Channels() {
		assert.Contains(t, []string{catalog.GoogleAds, catalog.FacebookAds}, id)
	}
	assert.NotEmpty(t, result.MonthlyProjections)
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}

func TestRunOptimize_Pretty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runOptimize(context.Background(), newEngine(false), strings.NewReader(validRequest), &out, true))
	assert.Contains(t, out.String(), "\n  \"industry\": \"beauty\"")
}

func TestRunOptimize_InvalidConstraints(t *testing.T) {
	req := `{"industry": "beauty", "constraints": {"total_budget": 0, "monthly_budget_limit": 0, "target_roi": 200}}`

	err := runOptimize(context.Background(), newEngine(false), strings.NewReader(req), io.Discard, false)
	assert.ErrorIs(t, err, optimization.ErrConstraintValidation)

	var out bytes.Buffer
	require.NoError(t, runOptimize(context.Background(), newEngine(true), strings.NewReader(req), &out, false))
	assert.Contains(t, out.String(), "recommended_allocation")
}

func TestRunOptimize_RejectsUnknownFields(t *testing.T) {
	err := runOptimize(context.Background(), newEngine(false), strings.NewReader(`{"budget": 1}`), io.Discard, false)
	assert.Error(t, err)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// the root command exports --data-dir through the environment
	t.Setenv("MVT_DATA_DIR", os.Getenv("MVT_DATA_DIR"))
	t.Setenv("LOG_PRETTY", "false")

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestOptimizeCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "request.json")
	require.NoError(t, os.WriteFile(path, []byte(validRequest), 0644))

	out, err := execute(t, "optimize", "--file", path, "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"recommended_allocation"`)

	_, err = execute(t, "optimize", "--data-dir", dir)
	assert.Error(t, err, "--file is required")
}

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "migrate", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "analytics.db")
	assert.FileExists(t, filepath.Join(dir, "analytics.db"))
	assert.FileExists(t, filepath.Join(dir, "cache.db"))
}

func TestBackupCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BACKUP_DIR", filepath.Join(dir, "snapshots"))
	t.Setenv("BACKUP_S3_BUCKET", "")

	out, err := execute(t, "backup", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "snapshots")

	entries, err := os.ReadDir(filepath.Join(dir, "snapshots"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
