package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "PUBLIC_BASE_URL", "BOLDTRAIL_API_URL", "BOLDTRAIL_TIMEOUT",
		"LEAD_STORE", "GEMINI_MODEL_ID", "GEMINI_API_KEY", "API_KEY", "CHATBOT_URL",
		"CORS_ALLOWED_ORIGINS", "LEAD_RATE_LIMIT_PER_MINUTE", "CHAT_SESSION_TTL",
	} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.BoldTrailAPIURL != DefaultBoldTrailAPIURL {
		t.Fatalf("expected default kvCORE url, got %s", cfg.BoldTrailAPIURL)
	}
	if cfg.BoldTrailTimeout != 15*time.Second {
		t.Fatalf("expected default timeout, got %s", cfg.BoldTrailTimeout)
	}
	if cfg.LeadStore != "supabase" {
		t.Fatalf("expected supabase store, got %s", cfg.LeadStore)
	}
	if cfg.GeminiModelID != DefaultGeminiModelID {
		t.Fatalf("expected default model, got %s", cfg.GeminiModelID)
	}
	if cfg.ChatbotURL != "/widget" {
		t.Fatalf("expected relative chatbot url, got %s", cfg.ChatbotURL)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard CORS, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.LeadRateLimitPerMinute != 10 {
		t.Fatalf("expected rate limit 10, got %d", cfg.LeadRateLimitPerMinute)
	}
	if cfg.ChatSessionTTL != 30*time.Minute {
		t.Fatalf("expected 30m session ttl, got %s", cfg.ChatSessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PUBLIC_BASE_URL", "https://chat.example.com/")
	t.Setenv("BOLDTRAIL_API_TOKEN", "tok")
	t.Setenv("BOLDTRAIL_API_URL", "https://crm.test/contact")
	t.Setenv("BOLDTRAIL_TIMEOUT", "3s")
	t.Setenv("LEAD_STORE", " Postgres ")
	t.Setenv("SUPABASE_URL", "https://proj.supabase.co/")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CHATBOT_URL", "")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.ChatbotURL != "https://chat.example.com/widget" {
		t.Fatalf("expected chatbot url from base, got %s", cfg.ChatbotURL)
	}
	if cfg.BoldTrailAPIToken != "tok" || cfg.BoldTrailAPIURL != "https://crm.test/contact" {
		t.Fatalf("unexpected boldtrail config: %+v", cfg)
	}
	if cfg.BoldTrailTimeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %s", cfg.BoldTrailTimeout)
	}
	if cfg.LeadStore != "postgres" {
		t.Fatalf("expected normalized store name, got %q", cfg.LeadStore)
	}
	if cfg.SupabaseURL != "https://proj.supabase.co" || !cfg.SupabaseConfigured() {
		t.Fatalf("expected supabase configured, got %q", cfg.SupabaseURL)
	}
	if cfg.GeminiAPIKey != "legacy-key" {
		t.Fatalf("expected API_KEY fallback, got %q", cfg.GeminiAPIKey)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
}

func TestLoadInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("LEAD_RATE_LIMIT_PER_MINUTE", "lots")
	t.Setenv("CHAT_SESSION_TTL", "soon")
	cfg := Load()
	if cfg.LeadRateLimitPerMinute != 10 {
		t.Fatalf("expected fallback rate limit, got %d", cfg.LeadRateLimitPerMinute)
	}
	if cfg.ChatSessionTTL != 30*time.Minute {
		t.Fatalf("expected fallback ttl, got %s", cfg.ChatSessionTTL)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("WIDGET_POSITION=top-left\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("WIDGET_POSITION", "")
	os.Unsetenv("WIDGET_POSITION")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := Load().WidgetPosition; got != "top-left" {
		t.Fatalf("expected position from .env, got %q", got)
	}
}

func TestLoadDotEnvMissingFileIsNotAnError(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestLoadTracingSettings(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc, bad ,x-team = re")
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("ADMIN_JWT_SECRET", "shh")

	cfg := Load()
	if cfg.OTelEndpoint != "collector:4318" {
		t.Fatalf("unexpected endpoint %q", cfg.OTelEndpoint)
	}
	if len(cfg.OTelHeaders) != 2 || cfg.OTelHeaders["x-api-key"] != "abc" || cfg.OTelHeaders["x-team"] != "re" {
		t.Fatalf("unexpected headers %v", cfg.OTelHeaders)
	}
	if cfg.OTelServiceName != "realestate-chatbot" {
		t.Fatalf("expected default service name, got %q", cfg.OTelServiceName)
	}
	if cfg.AdminJWTSecret != "shh" {
		t.Fatalf("expected admin secret, got %q", cfg.AdminJWTSecret)
	}
}

func TestLoadTrustProxyHeaders(t *testing.T) {
	t.Setenv("TRUST_PROXY_HEADERS", "")
	if Load().TrustProxyHeaders {
		t.Fatal("expected proxy headers to be untrusted by default")
	}

	t.Setenv("TRUST_PROXY_HEADERS", "true")
	if !Load().TrustProxyHeaders {
		t.Fatal("expected proxy headers to be trusted")
	}
}
