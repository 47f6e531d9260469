package config

import (
	"errors"
	"os"
)

// app config loaded from environment variables
type Config struct {
	Port     string
	Provider string

	MongoURI    string
	RedisAddr   string
	PostgresDSN string

	SweeperSchedule  string
	SweeperEnabled   bool
	ExportSchedule   string
	ExportDir        string
	ExportEnabled    bool
	AllowedOrigins   string
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Port:     getEnvOrDefault("PORT", "8085"),
		Provider: getEnvOrDefault("AI_PROVIDER", "webhook"),

		MongoURI:    os.Getenv("MONGO_URI"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		SweeperSchedule: getEnvOrDefault("TIMEOUT_SWEEP_SCHEDULE", "* * * * *"),
		SweeperEnabled:  getEnvOrDefault("TIMEOUT_SWEEP_ENABLED", "true") == "true",
		ExportSchedule:  getEnvOrDefault("INTERACTION_EXPORT_SCHEDULE", "0 2 * * *"),
		ExportDir:       getEnvOrDefault("INTERACTION_EXPORT_DIR", "./exports"),
		ExportEnabled:   getEnvOrDefault("INTERACTION_EXPORT_ENABLED", "false") == "true",
		AllowedOrigins:  getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000"),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	switch config.Provider {
	case "webhook", "gemini":
		return nil
	default:
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: webhook, gemini")
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
