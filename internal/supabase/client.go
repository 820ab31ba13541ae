package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultTimeout = 10 * time.Second

// ErrNotConfigured is returned when the base URL or service key is missing.
var ErrNotConfigured = errors.New("supabase: missing SUPABASE_URL or SUPABASE_SERVICE_ROLE_KEY")

// APIError is a non-2xx reply from the REST endpoint.
type APIError struct {
	Method     string
	Table      string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase: %s %s failed %d", e.Method, e.Table, e.StatusCode)
}

// Client talks to the PostgREST interface exposed under /rest/v1, authenticated
// with the service-role key.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewClient builds a REST client. It does not validate credentials; calls
// return ErrNotConfigured when either value is empty.
func NewClient(baseURL, serviceKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		serviceKey: strings.TrimSpace(serviceKey),
		httpClient: httpClient,
		tracer:     otel.Tracer("realestate.internal.supabase"),
	}
}

// Configured reports whether both the URL and key are set.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.serviceKey != ""
}

// Insert posts one row to the table.
func (c *Client) Insert(ctx context.Context, table string, row any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	ctx, span := c.tracer.Start(ctx, "supabase.insert")
	defer span.End()
	span.SetAttributes(attribute.String("supabase.table", table))

	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("supabase: marshal %s row: %w", table, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, table, "", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	_, err = c.do(req, table)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// Select runs a filtered GET against the table and decodes the JSON array into out.
func (c *Client) Select(ctx context.Context, table string, q *Query, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	ctx, span := c.tracer.Start(ctx, "supabase.select")
	defer span.End()
	span.SetAttributes(attribute.String("supabase.table", table))

	req, err := c.newRequest(ctx, http.MethodGet, table, q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cache-Control", "no-store")

	body, err := c.do(req, table)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("supabase: decode %s rows: %w", table, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, table, rawQuery string, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL + "/rest/v1/" + url.PathEscape(table)
	if rawQuery != "" {
		endpoint += "?" + rawQuery
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("supabase: build request: %w", err)
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, table string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: %s %s: %w", req.Method, table, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("supabase: read %s response: %w", table, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Method: req.Method, Table: table, StatusCode: resp.StatusCode, Body: truncate(string(body), maxErrorBody)}
	}
	return body, nil
}

const maxErrorBody = 300

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
