package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestSetupDisabledWithoutEndpoint(t *testing.T) {
	tel, err := Setup(context.Background(), Config{})
	require.NoError(t, err)
	assert.Nil(t, tel)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestTracesURL(t *testing.T) {
	assert.Equal(t, "http://collector:4318/v1/traces", tracesURL("collector:4318"))
	assert.Equal(t, "https://otel.example.com/v1/traces", tracesURL("https://otel.example.com/"))
	assert.Equal(t, "https://otel.example.com/v1/traces", tracesURL("https://otel.example.com/v1/traces"))
}

func TestNewProviderTagsServiceName(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider, err := NewProvider(Config{ServiceName: "chatbot-test", ServiceVersion: "1.2.3"}, sdktrace.WithSyncer(exporter))
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	_, span := provider.Tracer("test").Start(context.Background(), "leads.submit")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "leads.submit", spans[0].Name)
	assert.Contains(t, spans[0].Resource.Attributes(), semconv.ServiceName("chatbot-test"))
	assert.Contains(t, spans[0].Resource.Attributes(), semconv.ServiceVersion("1.2.3"))
}

func TestSetupExportsToCollector(t *testing.T) {
	var hits atomic.Int32
	var gotHeader atomic.Value
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/traces" {
			hits.Add(1)
			gotHeader.Store(r.Header.Get("X-Api-Key"))
		}
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	tel, err := Setup(context.Background(), Config{
		Endpoint:    collector.URL,
		Headers:     map[string]string{"X-Api-Key": "k"},
		ServiceName: "chatbot-test",
	})
	require.NoError(t, err)
	require.NotNil(t, tel)

	_, span := otel.Tracer("test").Start(context.Background(), "chat.send")
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tel.Shutdown(ctx))

	assert.GreaterOrEqual(t, hits.Load(), int32(1))
	assert.Equal(t, "k", gotHeader.Load())
}
