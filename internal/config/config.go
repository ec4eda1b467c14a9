package config

import (
	"os"
	"strconv"
	"time"

	"alumhub/internal/cache"
	"alumhub/internal/database"
	"alumhub/internal/external"
	"alumhub/internal/messaging"
	"alumhub/internal/search"
)

// Config holds the application configuration
type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	// Pending bookings older than this are swept to expired by the consumers binary
	BookingTTL time.Duration

	// When both are set, the API ensures this admin account exists at startup
	AdminEmail    string
	AdminPassword string

	Database database.Config
	NATS     messaging.Config
	Valkey   cache.Config
	Search   search.Config
	Midtrans external.MidtransConfig
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8090"),
		GinMode:   getEnv("GIN_MODE", "debug"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		BookingTTL: time.Duration(getEnvInt("BOOKING_TTL_HOURS", 24)) * time.Hour,

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "alumhub"),
			Password:           getEnv("DB_PASSWORD", "alumhub"),
			DBName:             getEnv("DB_NAME", "alumhub"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "alumhub"),
			ClientID:  getEnv("NATS_CLIENT_ID", "alumhub-api"),
		},

		Valkey: cache.Config{
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
		},

		Search: search.Config{
			Addresses: []string{getEnv("ELASTICSEARCH_URL", "http://localhost:9200")},
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},

		Midtrans: external.MidtransConfig{
			ServerKey: getEnv("MIDTRANS_SERVER_KEY", ""),
			Timeout:   time.Duration(getEnvInt("MIDTRANS_TIMEOUT_SEC", 15)) * time.Second,
		},
	}
}

// getEnv returns the value of an environment variable or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
