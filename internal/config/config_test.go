package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from an empty directory so no stray .env is read.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)
	for key := range defaults {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, "*", cfg.AllowedOrigin)
	assert.Equal(t, "nainai_tea.db", cfg.SQLitePath)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 20*time.Second, cfg.RecommendationTTL())
	assert.Equal(t, "@every 15m", cfg.LowStockCron)
	assert.Equal(t, "55 23 * * *", cfg.DailySummaryCron)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.IsProduction())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadFromEnvironment(t *testing.T) {
	inTempDir(t)
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RECOMMENDATION_TTL_SECONDS", "0")
	t.Setenv("TIMEZONE", "Asia/Taipei")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 20, cfg.RecommendationTTLSeconds)
	assert.True(t, cfg.IsProduction())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Taipei", loc.String())
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SQLITE_PATH=from-file.db\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("SQLITE_PATH", "")
	require.NoError(t, os.Unsetenv("SQLITE_PATH"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file.db", cfg.SQLitePath)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestBadTimezone(t *testing.T) {
	cfg := Config{Timezone: "Mars/Olympus"}
	_, err := cfg.Location()
	require.Error(t, err)
}

func TestEmptySQLitePathIsKept(t *testing.T) {
	inTempDir(t)
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.SQLitePath)
	assert.Empty(t, cfg.DatabaseURL)
}
