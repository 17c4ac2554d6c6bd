package orderstore

import (
	"fmt"
	"os"
)

// Config carries the store's runtime settings, all sourced from environment
// variables with local-development defaults.
type Config struct {
	Port string

	// Backend selects "postgres" or "memory". Memory mode is self-contained
	// and seeds demo data on boot.
	Backend string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// KafkaBrokers empty disables event publishing.
	KafkaBrokers string

	AdminEmail    string
	AdminPassword string
}

func LoadConfig() Config {
	return Config{
		Port:          getEnv("ORDER_STORE_PORT", "8081"),
		Backend:       getEnv("STORE_BACKEND", "memory"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "orderstore"),
		DBPassword:    getEnv("DB_PASSWORD", "orderstore"),
		DBName:        getEnv("DB_NAME", "orders"),
		KafkaBrokers:  getEnv("KAFKA_BROKERS", ""),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
	}
}

func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
