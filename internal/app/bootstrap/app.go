package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/realestate-chatbot/internal/analytics"
	"github.com/wolfman30/realestate-chatbot/internal/api/router"
	"github.com/wolfman30/realestate-chatbot/internal/boldtrail"
	"github.com/wolfman30/realestate-chatbot/internal/chat"
	appconfig "github.com/wolfman30/realestate-chatbot/internal/config"
	"github.com/wolfman30/realestate-chatbot/internal/events"
	httpmiddleware "github.com/wolfman30/realestate-chatbot/internal/http/middleware"
	"github.com/wolfman30/realestate-chatbot/internal/leads"
	"github.com/wolfman30/realestate-chatbot/internal/observability/metrics"
	"github.com/wolfman30/realestate-chatbot/internal/widget"
	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

const sweepInterval = time.Minute

// App is the assembled HTTP service and the background pieces it owns.
type App struct {
	Handler  http.Handler
	Registry *chat.Registry

	leadRecorder  *leads.Recorder
	eventRecorder *events.Recorder
	limiter       httpmiddleware.Limiter
	closers       []func()
	logger        *logging.Logger
}

// Dependencies lets callers and tests supply pre-built backends. Zero values
// are built from the config.
type Dependencies struct {
	Stores     *Stores
	Model      chat.Model
	Forwarder  leads.Forwarder
	Metrics    *prometheus.Registry
}

// BuildApp wires every component from configuration.
func BuildApp(ctx context.Context, cfg *appconfig.Config, deps Dependencies, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	app := &App{logger: logger}

	reg := deps.Metrics
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	leadMetrics := metrics.NewLeadMetrics(reg)
	chatMetrics := metrics.NewChatMetrics(reg)

	stores := deps.Stores
	if stores == nil {
		pool := BuildPostgresPool(ctx, cfg.DatabaseURL, logger)
		if pool != nil {
			app.closers = append(app.closers, pool.Close)
		}
		built, err := BuildStores(cfg, pool, logger)
		if err != nil {
			app.Close()
			return nil, err
		}
		stores = &built
	}

	model := deps.Model
	if model == nil {
		gemini, err := BuildChatModel(ctx, cfg, logger)
		if err != nil {
			app.Close()
			return nil, err
		}
		if gemini != nil {
			model = gemini
			app.closers = append(app.closers, func() { _ = gemini.Close() })
		}
	}

	registryOpts := []chat.RegistryOption{
		chat.WithMetrics(chatMetrics),
		chat.WithLogger(logger),
		chat.WithTTL(cfg.ChatSessionTTL),
	}
	var dashboard *analytics.Service
	if stores.Events != nil {
		app.eventRecorder = events.NewRecorder(stores.Events, logger)
		registryOpts = append(registryOpts, chat.WithTelemetry(app.eventRecorder))
		dashboard = analytics.NewService(stores.Events)
	} else {
		dashboard = analytics.NewService(nil)
	}
	app.Registry = chat.NewRegistry(model, registryOpts...)

	app.leadRecorder = leads.NewRecorder(stores.Records, logger, leadMetrics)
	forwarder := deps.Forwarder
	if forwarder == nil {
		forwarder = BuildForwarder(cfg, logger)
	}
	leadService := leads.NewService(forwarder, app.leadRecorder, logger,
		leads.WithMetrics(leadMetrics),
		leads.WithExcerptSource(app.Registry),
	)

	widgetHandler, err := widget.NewHandler(widget.Config{
		ChatbotURL: cfg.ChatbotURL,
		Position:   cfg.WidgetPosition,
	}, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	redisClient := BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		app.closers = append(app.closers, func() { _ = redisClient.Close() })
	}
	app.limiter = BuildLeadLimiter(cfg, redisClient, logger)

	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set; /admin views return 503")
	}

	app.Handler = router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(leadService, logger),
		ChatHandler:        chat.NewHandler(app.Registry, cfg.CORSAllowedOrigins, logger),
		WidgetHandler:      widgetHandler,
		AnalyticsHandler:   analytics.NewHandler(dashboard, stores.Leads, reg, logger),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		LeadLimiter:        app.limiter,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
	})
	return app, nil
}

// BuildForwarder returns the kvCORE client. The token is read from the
// environment on every call so an unset token surfaces per request.
func BuildForwarder(cfg *appconfig.Config, logger *logging.Logger) *boldtrail.Client {
	token := boldtrail.EnvToken("BOLDTRAIL_API_TOKEN")
	if cfg.BoldTrailAPIToken != "" {
		token = boldtrail.StaticToken(cfg.BoldTrailAPIToken)
	}
	return boldtrail.NewClient(cfg.BoldTrailAPIURL, token,
		boldtrail.WithTimeout(cfg.BoldTrailTimeout),
		boldtrail.WithLogger(logger),
	)
}

// BuildChatModel returns the Gemini model, or nil when no API key is set.
func BuildChatModel(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*chat.GeminiModel, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set; chat is unavailable")
		return nil, nil
	}
	model, err := chat.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: gemini: %w", err)
	}
	return model, nil
}

// Run drives the background sweepers until ctx is done.
func (a *App) Run(ctx context.Context) {
	go a.Registry.Run(ctx, sweepInterval)
	if m := memoryLimiter(a.limiter); m != nil {
		go m.Run(ctx, 5*time.Minute)
	}
}

// Close flushes pending writes and releases connections.
func (a *App) Close() {
	if a == nil {
		return
	}
	a.leadRecorder.Wait()
	if a.eventRecorder != nil {
		a.eventRecorder.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func memoryLimiter(l httpmiddleware.Limiter) *httpmiddleware.MemoryLimiter {
	switch v := l.(type) {
	case *httpmiddleware.MemoryLimiter:
		return v
	case httpmiddleware.FallbackLimiter:
		m, _ := v.Secondary.(*httpmiddleware.MemoryLimiter)
		return m
	}
	return nil
}
