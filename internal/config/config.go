package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config maps 1:1 to environment variables. A .env file in the working directory
// is read first and never overrides variables already set.
type Config struct {
	Port          int    `mapstructure:"PORT"`
	Env           string `mapstructure:"APP_ENV"`
	AllowedOrigin string `mapstructure:"ALLOWED_ORIGIN"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	RedisAddr                string `mapstructure:"REDIS_ADDR"`
	RedisPassword            string `mapstructure:"REDIS_PASSWORD"`
	RedisDB                  int    `mapstructure:"REDIS_DB"`
	RecommendationTTLSeconds int    `mapstructure:"RECOMMENDATION_TTL_SECONDS"`

	Timezone         string `mapstructure:"TIMEZONE"`
	LowStockCron     string `mapstructure:"LOW_STOCK_CRON"`
	DailySummaryCron string `mapstructure:"DAILY_SUMMARY_CRON"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`
}

var defaults = map[string]any{
	"PORT":                       8080,
	"APP_ENV":                    "development",
	"ALLOWED_ORIGIN":             "*",
	"DATABASE_URL":               "",
	"SQLITE_PATH":                "nainai_tea.db",
	"REDIS_ADDR":                 "",
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"RECOMMENDATION_TTL_SECONDS": 20,
	"TIMEZONE":                   "Local",
	"LOW_STOCK_CRON":             "@every 15m",
	"DAILY_SUMMARY_CRON":         "55 23 * * *",
	"LOG_LEVEL":                  "info",
	"LOG_FILE":                   "",
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	// SQLITE_PATH= must stay empty to select the in-memory store.
	v.AllowEmptyEnv(true)
	// Unmarshal only sees keys viper already knows, so every key gets a default.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.AllowedOrigin = strings.TrimSpace(c.AllowedOrigin)
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	c.SQLitePath = strings.TrimSpace(c.SQLitePath)
	if c.RecommendationTTLSeconds < 1 {
		c.RecommendationTTLSeconds = 20
	}
	if c.Port < 1 {
		c.Port = 8080
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c Config) RecommendationTTL() time.Duration {
	return time.Duration(c.RecommendationTTLSeconds) * time.Second
}

// Location resolves TIMEZONE. "Local" and empty mean the host zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "Local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
