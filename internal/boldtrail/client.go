package boldtrail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

const (
	DefaultAPIURL  = "https://api.kvcore.com/v2/public/contact"
	defaultTimeout = 15 * time.Second
	maxLoggedBody  = 500
)

// TokenSource yields the bearer token at call time.
type TokenSource func() string

// EnvToken reads the token from the named environment variable on every call,
// so a rotated secret is picked up without a restart.
func EnvToken(key string) TokenSource {
	return func() string { return strings.TrimSpace(os.Getenv(key)) }
}

// StaticToken always returns the same token.
func StaticToken(token string) TokenSource {
	return func() string { return token }
}

// Client creates contacts through the kvCORE Public API v2.
// A single attempt is made per call; there is no retry.
type Client struct {
	httpClient *http.Client
	apiURL     string
	token      TokenSource
	logger     *logging.Logger
	tracer     trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a kvCORE client. An empty apiURL selects DefaultAPIURL.
func NewClient(apiURL string, token TokenSource, opts ...Option) *Client {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = DefaultAPIURL
	}
	if token == nil {
		token = EnvToken("BOLDTRAIL_API_TOKEN")
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		apiURL:     apiURL,
		token:      token,
		logger:     logging.Default(),
		tracer:     otel.Tracer("realestate.internal.boldtrail"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("boldtrail")
	return c
}

// Configured reports whether a token is currently available.
func (c *Client) Configured() bool {
	return c.token() != ""
}

// CreateContact posts the payload and interprets the reply.
// Non-2xx replies yield *UpstreamError; transport failures wrap ErrUnreachable.
func (c *Client) CreateContact(ctx context.Context, payload ContactPayload) (*ContactResult, error) {
	token := c.token()
	if token == "" {
		return nil, ErrMissingToken
	}

	ctx, span := c.tracer.Start(ctx, "boldtrail.create_contact")
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("boldtrail: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("boldtrail: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.logger.Warn("boldtrail request failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: read response: %v", ErrUnreachable, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	decoded := decodeBody(resp.Header.Get("Content-Type"), raw)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, "upstream rejected")
		c.logger.Warn("boldtrail non-2xx response",
			"status", resp.StatusCode,
			"body", truncate(string(raw), maxLoggedBody),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: decoded}
	}

	result := &ContactResult{
		StatusCode: resp.StatusCode,
		Body:       decoded,
		ContactID:  ExtractContactID(decoded),
	}
	c.logger.Info("boldtrail contact created",
		"status", resp.StatusCode,
		"contact_id", result.ContactID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// decodeBody returns parsed JSON when the content type says JSON, else the
// raw text. A JSON content type with an unparseable body degrades to text.
func decodeBody(contentType string, raw []byte) any {
	if strings.Contains(strings.ToLower(contentType), "application/json") && len(bytes.TrimSpace(raw)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err == nil {
			return v
		}
	}
	return string(raw)
}

// ExtractContactID looks for the created contact's identifier at `id`, then
// `contact_id`, then `contact.id`. The first non-empty value wins.
func ExtractContactID(body any) string {
	obj, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	if id := idString(obj["id"]); id != "" {
		return id
	}
	if id := idString(obj["contact_id"]); id != "" {
		return id
	}
	if nested, ok := obj["contact"].(map[string]any); ok {
		return idString(nested["id"])
	}
	return ""
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case json.Number:
		if id.String() == "0" {
			return ""
		}
		return id.String()
	case float64:
		if id == 0 {
			return ""
		}
		return fmt.Sprintf("%.0f", id)
	default:
		return ""
	}
}

// truncate keeps at most n runes so logged bodies stay valid UTF-8.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
