package config

import (
	"os"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	GinMode    string
	LogLevel   string
	ListenAddr string
}

func Load() *Config {
	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "dutyuser"),
		DBPassword: getEnv("DB_PASSWORD", "dutypassword"),
		DBName:     getEnv("DB_NAME", "duty_assignment"),
		GinMode:    getEnv("GIN_MODE", "debug"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
