// Package config provides configuration loading for the planning engine.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/TimUx/Dienstplan-sub000/pkg/logger"
	"github.com/TimUx/Dienstplan-sub000/pkg/scheduler"
)

// Config is the full application configuration. Environment variables take
// precedence; an optional YAML file overlays the planner tunables.
type Config struct {
	App      AppConfig         `yaml:"app"`
	Database DatabaseConfig    `yaml:"database"`
	Planner  scheduler.Config  `yaml:"planner"`
	Weights  scheduler.Weights `yaml:"weights"`
	Log      logger.Config     `yaml:"log"`
}

// AppConfig carries application basics.
type AppConfig struct {
	Name string `yaml:"name"`
	Env  string `yaml:"env"`
}

// DatabaseConfig carries the PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN returns the connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Load builds the configuration from environment variables, then overlays the
// YAML file at path if it is non-empty.
func Load(path string) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "dienstplan"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "dienstplan"),
			User:            getEnv("DB_USER", "dienstplan"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Planner: scheduler.DefaultConfig(),
		Weights: scheduler.DefaultWeights(),
		Log: logger.Config{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "console"),
			Output:     getEnv("LOG_OUTPUT", "stdout"),
			TimeFormat: time.RFC3339,
		},
	}

	cfg.Planner.MinRestHours = getEnvFloat("PLANNER_MIN_REST_HOURS", cfg.Planner.MinRestHours)
	cfg.Planner.MinTotalHours = getEnvFloat("PLANNER_MIN_TOTAL_HOURS", cfg.Planner.MinTotalHours)
	cfg.Planner.WeeklyTargetHours = getEnvFloat("PLANNER_WEEKLY_TARGET_HOURS", cfg.Planner.WeeklyTargetHours)
	cfg.Planner.Workers = getEnvInt("PLANNER_WORKERS", cfg.Planner.Workers)
	cfg.Planner.DefaultTimeBudget = getEnvDuration("PLANNER_TIME_BUDGET", cfg.Planner.DefaultTimeBudget)

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool { return c.App.Env == "development" }

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
