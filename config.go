package main

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the bot reads from the environment.
type Config struct {
	// DiscordToken is required; without it there is no front-end to start.
	DiscordToken string

	// ITADAPIKey is optional. When missing, the deal-aggregator sources
	// report unavailable but the bot still answers with the rest.
	ITADAPIKey string

	HTTPAddr string
	LogLevel string
}

// LoadConfig reads the environment, letting a local .env file supply values
// during development.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		ITADAPIKey:   os.Getenv("ITAD_API_KEY"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DiscordToken == "" {
		return nil, errors.New("DISCORD_TOKEN is not set")
	}
	return cfg, nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
