package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBoldTrailAPIURL = "https://api.kvcore.com/v2/public/contact"
	DefaultGeminiModelID   = "gemini-2.5-flash"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// BoldTrail (kvCORE) CRM
	BoldTrailAPIToken string
	BoldTrailAPIURL   string
	BoldTrailTimeout  time.Duration

	// Lead record store
	LeadStore              string
	SupabaseURL            string
	SupabaseServiceRoleKey string
	DatabaseURL            string

	// Hosted chat model
	GeminiAPIKey   string
	GeminiModelID  string
	ChatSessionTTL time.Duration

	// Embeddable widget
	ChatbotURL     string
	WidgetPosition string

	// HTTP edge
	CORSAllowedOrigins     []string
	LeadRateLimitPerMinute int
	RedisAddr              string
	RedisPassword          string
	RedisTLS               bool
	// TrustProxyHeaders honours X-Real-IP / X-Forwarded-For for client
	// addresses. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool

	// Admin views
	AdminJWTSecret string

	// Tracing
	OTelEndpoint    string
	OTelHeaders     map[string]string
	OTelServiceName string
}

// Load reads configuration from environment variables
func Load() *Config {
	publicBaseURL := strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/")
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: publicBaseURL,

		BoldTrailAPIToken: getEnv("BOLDTRAIL_API_TOKEN", ""),
		BoldTrailAPIURL:   getEnv("BOLDTRAIL_API_URL", DefaultBoldTrailAPIURL),
		BoldTrailTimeout:  getEnvAsDuration("BOLDTRAIL_TIMEOUT", 15*time.Second),

		LeadStore:              strings.ToLower(strings.TrimSpace(getEnv("LEAD_STORE", "supabase"))),
		SupabaseURL:            strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		DatabaseURL:            getEnv("DATABASE_URL", ""),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", DefaultGeminiModelID),
		ChatSessionTTL: getEnvAsDuration("CHAT_SESSION_TTL", 30*time.Minute),

		ChatbotURL:     getEnv("CHATBOT_URL", joinURL(publicBaseURL, "/widget")),
		WidgetPosition: getEnv("WIDGET_POSITION", "bottom-right"),

		CORSAllowedOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LeadRateLimitPerMinute: getEnvAsInt("LEAD_RATE_LIMIT_PER_MINUTE", 10),
		RedisAddr:              getEnv("REDIS_ADDR", ""),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		RedisTLS:               getEnvAsBool("REDIS_TLS", false),
		TrustProxyHeaders:      getEnvAsBool("TRUST_PROXY_HEADERS", false),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelHeaders:     parseHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", "")),
		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "realestate-chatbot"),
	}
}

// LoadDotEnv populates the environment from the given .env files when they
// exist. Variables already set in the process win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// SupabaseConfigured reports whether the REST store credentials are present.
func (c *Config) SupabaseConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseServiceRoleKey != ""
}

// parseHeaders reads the OTLP "k1=v1,k2=v2" header format.
func parseHeaders(raw string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}

func joinURL(base, path string) string {
	if base == "" {
		return path
	}
	return base + path
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
