package main

import "testing"

func TestLoadConfig(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("ITAD_API_KEY", "test-key")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DiscordToken != "test-token" {
		t.Errorf("DiscordToken = %q", cfg.DiscordToken)
	}
	if cfg.ITADAPIKey != "test-key" {
		t.Errorf("ITADAPIKey = %q", cfg.ITADAPIKey)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("ITAD_API_KEY", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ITADAPIKey != "" {
		t.Errorf("ITADAPIKey = %q, want empty when unset", cfg.ITADAPIKey)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want the default :8080", cfg.HTTPAddr)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want the default info", cfg.LogLevel)
	}
}

func TestLoadConfigMissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() error = nil, want an error without DISCORD_TOKEN")
	}
}
