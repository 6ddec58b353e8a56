package config

import (
	"testing"
	"time"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/locale"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LLM_PROVIDER", "LLM_MODEL", "LLM_API_KEY", "LLM_BASE_URL", "LLM_TIMEOUT_SECONDS",
		"DATABASE_URL", "DB_MAX_CONNS", "DB_AUTO_MIGRATE", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "DEFAULT_LOCALE",
		"VISION_PROVIDER", "VISION_MODEL", "VISION_API_KEY", "VISION_BASE_URL", "SUPABASE_JWT_SECRET"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.AI.Provider != ProviderOpenAI {
		t.Fatalf("unexpected provider %q", cfg.AI.Provider)
	}
	if cfg.AI.Enabled() {
		t.Fatal("AI must be disabled without credentials")
	}
	if cfg.DefaultLocale != locale.ZH {
		t.Fatalf("unexpected default locale %q", cfg.DefaultLocale)
	}
	if cfg.Database.MaxConns != 10 || cfg.Database.AutoMigrate {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if cfg.RateLimit.Burst != 5 {
		t.Fatalf("unexpected burst %d", cfg.RateLimit.Burst)
	}
}

func TestLoadProviderAndTimeout(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("LLM_MODEL", "gemini-2.5-flash")
	t.Setenv("LLM_API_KEY", "key")
	t.Setenv("LLM_TIMEOUT_SECONDS", "45")
	t.Setenv("VISION_MODEL", "gemini-2.5-flash")
	t.Setenv("VISION_PROVIDER", "")
	t.Setenv("VISION_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.AI.Provider != ProviderGemini || !cfg.AI.Enabled() {
		t.Fatalf("unexpected AI config %+v", cfg.AI)
	}
	if cfg.AI.Timeout != 45*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.AI.Timeout)
	}
	if cfg.Vision.Timeout != 45*time.Second {
		t.Fatalf("vision should inherit the LLM timeout, got %s", cfg.Vision.Timeout)
	}
	if !cfg.Vision.Enabled() || cfg.Vision.Provider != ProviderGemini || cfg.Vision.APIKey != "key" {
		t.Fatalf("vision should inherit provider and key: %+v", cfg.Vision)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"LLM_PROVIDER":    "bard",
		"PORT":            "80 80",
		"DB_AUTO_MIGRATE": "maybe",
		"RATE_LIMIT_RPS":  "fast",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestArkEnabledWithAccessKeys(t *testing.T) {
	cfg := AIConfig{Provider: ProviderArk, Model: "ep-1", AccessKey: "ak", SecretKey: "sk"}
	if !cfg.Enabled() {
		t.Fatal("ark should accept AK/SK pair")
	}
	cfg.Provider = ProviderOpenAI
	if cfg.Enabled() {
		t.Fatal("openai provider requires an API key")
	}
}
