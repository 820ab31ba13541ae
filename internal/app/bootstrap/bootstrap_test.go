package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/realestate-chatbot/internal/config"
	httpmiddleware "github.com/wolfman30/realestate-chatbot/internal/http/middleware"
	"github.com/wolfman30/realestate-chatbot/internal/leads"
	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

func TestBuildRedisClientDisabledWithoutAddr(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, logging.Discard(), true))
	assert.Nil(t, BuildRedisClient(context.Background(), nil, logging.Discard(), true))
}

func TestBuildRedisClientVerifiesConnection(t *testing.T) {
	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.Discard(), true)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })

	addr := mr.Addr()
	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: addr}, logging.Discard(), true))
}

func TestBuildPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	assert.Nil(t, BuildPostgresPool(context.Background(), "", logging.Discard()))
}

func TestBuildLeadLimiter(t *testing.T) {
	assert.Nil(t, BuildLeadLimiter(&appconfig.Config{}, nil, logging.Discard()))

	mem := BuildLeadLimiter(&appconfig.Config{LeadRateLimitPerMinute: 5}, nil, logging.Discard())
	assert.IsType(t, &httpmiddleware.MemoryLimiter{}, mem)
	assert.NotNil(t, memoryLimiter(mem))

	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logging.Discard(), false)
	t.Cleanup(func() { _ = client.Close() })
	shared := BuildLeadLimiter(&appconfig.Config{LeadRateLimitPerMinute: 5}, client, logging.Discard())
	assert.IsType(t, httpmiddleware.FallbackLimiter{}, shared)
	assert.NotNil(t, memoryLimiter(shared))

	ok, err := shared.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("realestate:ratelimit:leads:1.2.3.4"))
}

func TestBuildStores(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		s, err := BuildStores(&appconfig.Config{LeadStore: "memory"}, nil, logging.Discard())
		require.NoError(t, err)
		assert.IsType(t, &leads.MemoryStore{}, s.Records)
		assert.Nil(t, s.Events)
	})
	t.Run("supabase unconfigured", func(t *testing.T) {
		s, err := BuildStores(&appconfig.Config{LeadStore: "supabase"}, nil, logging.Discard())
		require.NoError(t, err)
		assert.Nil(t, s.Records)
		assert.Nil(t, s.Events)
		_, err = s.Leads.ListRecent(context.Background(), 10)
		assert.Error(t, err)
	})
	t.Run("supabase configured", func(t *testing.T) {
		s, err := BuildStores(&appconfig.Config{LeadStore: "supabase", SupabaseURL: "https://x.supabase.co", SupabaseServiceRoleKey: "k"}, nil, logging.Discard())
		require.NoError(t, err)
		assert.NotNil(t, s.Records)
		assert.NotNil(t, s.Events)
	})
	t.Run("postgres without pool", func(t *testing.T) {
		_, err := BuildStores(&appconfig.Config{LeadStore: "postgres"}, nil, logging.Discard())
		assert.ErrorContains(t, err, "DATABASE_URL")
	})
	t.Run("unknown", func(t *testing.T) {
		_, err := BuildStores(&appconfig.Config{LeadStore: "dynamo"}, nil, logging.Discard())
		assert.ErrorContains(t, err, "dynamo")
	})
}

func TestBuildChatModelWithoutKeyReturnsNil(t *testing.T) {
	model, err := BuildChatModel(context.Background(), &appconfig.Config{}, logging.Discard())
	require.NoError(t, err)
	assert.Nil(t, model)
}

func TestBuildAppServesLeadsFromMemory(t *testing.T) {
	crm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"c-1"}`))
	}))
	defer crm.Close()

	cfg := &appconfig.Config{
		LeadStore:              "memory",
		BoldTrailAPIToken:      "tok",
		BoldTrailAPIURL:        crm.URL,
		BoldTrailTimeout:       time.Second,
		CORSAllowedOrigins:     []string{"*"},
		LeadRateLimitPerMinute: 10,
		ChatSessionTTL:         time.Minute,
		ChatbotURL:             "/widget",
		WidgetPosition:         "bottom-left",
		AdminJWTSecret:         "admin-secret",
	}
	app, err := BuildApp(context.Background(), cfg, Dependencies{}, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	app.Run(ctx)

	req := httptest.NewRequest(http.MethodPost, "/api/boldtrail-lead",
		strings.NewReader(`{"fullName":"Grace Hopper","phone":"(413) 555-0100","consent":true}`))
	rec := httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cancel()
	app.Close()

	page := httptest.NewRecorder()
	pageReq := httptest.NewRequest(http.MethodGet, "/admin/leads?format=json", nil)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "broker"}).SignedString([]byte("admin-secret"))
	require.NoError(t, err)
	pageReq.Header.Set("Authorization", "Bearer "+token)
	app.Handler.ServeHTTP(page, pageReq)
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Grace")

	js := httptest.NewRecorder()
	app.Handler.ServeHTTP(js, httptest.NewRequest(http.MethodGet, "/embed.js", nil))
	assert.Contains(t, js.Body.String(), `"position":"bottom-left"`)

	assert.False(t, app.Registry.Available())
}
