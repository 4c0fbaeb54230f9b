package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// DBConfig holds the postgres connection and pool settings
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	KeepAlive       time.Duration
}

// DSN builds the postgres connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// Config is everything the API process reads from its environment
type Config struct {
	Port        string
	GinMode     string
	JWTSecret   string
	CORSOrigins []string
	LogLevel    string
	LogFormat   string
	DB          DBConfig

	// Finished products below this quantity are reported as low stock.
	LowStockThreshold decimal.Decimal

	// Bootstrap admin, created only while the users table is empty.
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Load reads configs/.env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:        envOr("PORT", "8080"),
		GinMode:     envOr("GIN_MODE", "debug"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: splitList(envOr("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		LogLevel:    envOr("LOG_LEVEL", "info"),
		LogFormat:   envOr("LOG_FORMAT", "json"),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminEmail:    envOr("ADMIN_EMAIL", "admin@localhost.local"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		DB: DBConfig{
			Host:            envOr("DB_HOST", "localhost"),
			Port:            envOr("DB_PORT", "5432"),
			User:            envOr("DB_USER", "postgres"),
			Password:        envOr("DB_PASSWORD", "postgres"),
			Name:            envOr("DB_NAME", "precast_erp"),
			SSLMode:         envOr("DB_SSLMODE", "disable"),
			MaxOpenConns:    intFromEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    intFromEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second,
			KeepAlive:       time.Duration(intFromEnv("DB_KEEPALIVE_SECONDS", 300)) * time.Second,
		},
	}

	threshold, err := decimal.NewFromString(envOr("LOW_STOCK_THRESHOLD", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOW_STOCK_THRESHOLD: %w", err)
	}
	if threshold.IsNegative() {
		return nil, fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative")
	}
	cfg.LowStockThreshold = threshold

	if cfg.JWTSecret == "" {
		if cfg.GinMode == "release" {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in release mode")
		}
		cfg.JWTSecret = "default_super_secret_key" // development fallback only
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
