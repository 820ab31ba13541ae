package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/wolfman30/realestate-chatbot/internal/app/bootstrap"
	appconfig "github.com/wolfman30/realestate-chatbot/internal/config"
	"github.com/wolfman30/realestate-chatbot/internal/leads"
	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

const leadPath = "/api/boldtrail-lead"

// waiter blocks until background record writes finish.
type waiter interface {
	Wait()
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	pool := bootstrap.BuildPostgresPool(context.Background(), cfg.DatabaseURL, logger)
	stores, err := bootstrap.BuildStores(cfg, pool, logger)
	if err != nil {
		logger.Error("failed to build stores", "error", err)
		panic(err)
	}

	recorder := leads.NewRecorder(stores.Records, logger, nil)
	svc := leads.NewService(bootstrap.BuildForwarder(cfg, logger), recorder, logger)
	handler := leads.NewHandler(svc, logger)

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, handler, recorder, evt)
	})
}

// handle serves the lead endpoint from a function URL or HTTP API event. The
// invocation is frozen once it returns, so pending record writes are awaited.
func handle(ctx context.Context, handler *leads.Handler, records waiter, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}

	if path == "/health" || path == "/_health" {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"content-type": "application/json"},
			Body:       `{"status":"ok"}`,
		}, nil
	}
	if path != leadPath {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNotFound}, nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusBadRequest,
			Headers:    map[string]string{"content-type": "application/json"},
			Body:       `{"ok":false,"error":"Invalid request body."}`,
		}, nil
	}

	req, err := http.NewRequestWithContext(ctx, method, path, bytes.NewReader(body))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	for k, v := range evt.Headers {
		req.Header.Set(k, v)
	}

	rw := newResponseWriter()
	handler.Submit(rw, req)
	records.Wait()

	return rw.response(), nil
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	return base64.StdEncoding.DecodeString(evt.Body)
}

// responseWriter buffers a handler's output into a gateway response.
type responseWriter struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseWriter() *responseWriter {
	return &responseWriter{header: http.Header{}}
}

func (w *responseWriter) Header() http.Header { return w.header }

func (w *responseWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.body.Write(p)
}

func (w *responseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *responseWriter) response() events.APIGatewayV2HTTPResponse {
	status := w.status
	if status == 0 {
		status = http.StatusOK
	}
	headers := make(map[string]string, len(w.header))
	for k := range w.header {
		headers[strings.ToLower(k)] = w.header.Get(k)
	}
	return events.APIGatewayV2HTTPResponse{StatusCode: status, Headers: headers, Body: w.body.String()}
}
