package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wolfman30/realestate-chatbot/internal/app/bootstrap"
	appconfig "github.com/wolfman30/realestate-chatbot/internal/config"
	"github.com/wolfman30/realestate-chatbot/internal/observability/tracing"
	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

func main() {
	if err := appconfig.LoadDotEnv(".env", ".env.local"); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting realestate-chatbot API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"lead_store", cfg.LeadStore,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry, err := tracing.Setup(ctx, tracingConfig(cfg))
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	app, err := bootstrap.BuildApp(ctx, cfg, bootstrap.Dependencies{}, logger)
	if err != nil {
		logger.Error("failed to build app", "error", err)
		os.Exit(1)
	}
	app.Run(ctx)

	srv := newServer(cfg.Port, app.Handler)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	app.Close()
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

// newServer leaves WriteTimeout unset because chat sockets and streamed
// replies outlive any fixed write deadline.
func newServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func tracingConfig(cfg *appconfig.Config) tracing.Config {
	return tracing.Config{
		Endpoint:    cfg.OTelEndpoint,
		Headers:     cfg.OTelHeaders,
		ServiceName: cfg.OTelServiceName,
	}
}
