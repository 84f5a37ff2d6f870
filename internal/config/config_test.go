package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DEFAULT_PHONE_REGION", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.DefaultPhoneRegion != "GB" {
		t.Fatalf("expected default phone region GB, got %s", cfg.DefaultPhoneRegion)
	}
	if cfg.DefaultLeadSource != "Facebook" {
		t.Fatalf("expected default lead source, got %s", cfg.DefaultLeadSource)
	}
	if cfg.MappingsTTL != 5*time.Minute {
		t.Fatalf("expected default mappings TTL, got %s", cfg.MappingsTTL)
	}
	if cfg.UseMemoryQueue {
		t.Fatalf("expected memory queue disabled by default")
	}
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Fatalf("expected no CORS origins by default, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("USE_MEMORY_QUEUE", "true")
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("LEAD_QUEUE_URL", "http://localstack:4566/000000000000/leads")
	t.Setenv("MAPPINGS_CACHE_TTL", "90s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("DEFAULT_PHONE_REGION", "US")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if !cfg.UseMemoryQueue {
		t.Fatalf("expected memory queue enabled")
	}
	if cfg.WorkerCount != 4 {
		t.Fatalf("expected worker count override, got %d", cfg.WorkerCount)
	}
	if cfg.LeadQueueURL != "http://localstack:4566/000000000000/leads" {
		t.Fatalf("expected queue URL override, got %s", cfg.LeadQueueURL)
	}
	if cfg.MappingsTTL != 90*time.Second {
		t.Fatalf("expected TTL override, got %s", cfg.MappingsTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.example.com" {
		t.Fatalf("expected trimmed origin list, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.DefaultPhoneRegion != "US" {
		t.Fatalf("expected phone region override, got %s", cfg.DefaultPhoneRegion)
	}
}
