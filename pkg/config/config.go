package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Service  ServiceConfig
	Database DatabaseConfig
	MQTT     MQTTConfig
	Dispatch DispatchConfig
}

// ServiceConfig holds service identity configuration
type ServiceConfig struct {
	Name        string
	Env         string
	MetricsAddr string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
}

// DispatchConfig holds tunables of the transition engine
type DispatchConfig struct {
	// StationaryRadius is the distance in meters below which a location
	// change does not count as movement.
	StationaryRadius float64

	// PermissionCacheSize bounds the per-user permission cache.
	PermissionCacheSize int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Service: ServiceConfig{
			Name:        getEnv("SERVICE_NAME", "dispatch"),
			Env:         getEnv("SERVICE_ENV", "development"),
			MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "dispatch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		MQTT: MQTTConfig{
			BrokerURL: getEnv("MQTT_BROKER_URL", "tcp://localhost:1883"),
			ClientID:  getEnv("MQTT_CLIENT_ID", "dispatch"),
			Username:  getEnv("MQTT_USERNAME", ""),
			Password:  getEnv("MQTT_PASSWORD", ""),
		},
		Dispatch: DispatchConfig{
			StationaryRadius:    getEnvAsFloat("STATIONARY_RADIUS_M", 10.0),
			PermissionCacheSize: getEnvAsInt("PERMISSION_CACHE_SIZE", 10),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
