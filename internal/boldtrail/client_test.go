package boldtrail

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/v2/public/contact", StaticToken(token), WithLogger(logging.Discard())), calls
}

func samplePayload() ContactPayload {
	return ContactPayload{
		FirstName: "Jane",
		LastName:  "Q. Public",
		Source:    "Website Chatbot",
		Emails:    []Email{{Email: "jane@example.com", IsPrimary: true}},
		Phones:    []Phone{{Number: "4135759175", Type: PhoneTypeMobile, IsPrimary: true}},
		Note:      "Looking in Northampton",
	}
}

func TestCreateContact_SendsBearerAndJSON(t *testing.T) {
	client, calls := newTestClient(t, "secret-token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/public/contact", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		raw, _ := io.ReadAll(r.Body)
		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "Jane", got["first_name"])
		assert.Equal(t, "Q. Public", got["last_name"])
		emails := got["emails"].([]any)
		assert.Equal(t, "jane@example.com", emails[0].(map[string]any)["email"])
		assert.Equal(t, true, emails[0].(map[string]any)["is_primary"])
		phones := got["phones"].([]any)
		assert.Equal(t, "mobile", phones[0].(map[string]any)["type"])

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 98765, "first_name": "Jane"}`))
	})

	res, err := client.CreateContact(context.Background(), samplePayload())
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "98765", res.ContactID)
	body, ok := res.Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Jane", body["first_name"])
}

func TestCreateContact_MissingTokenMakesNoCall(t *testing.T) {
	client, calls := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.CreateContact(context.Background(), samplePayload())
	require.ErrorIs(t, err, ErrMissingToken)
	assert.EqualValues(t, 0, calls.Load())
	assert.False(t, client.Configured())
}

func TestCreateContact_NonJSONSuccessKeepsText(t *testing.T) {
	client, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("created"))
	})

	res, err := client.CreateContact(context.Background(), samplePayload())
	require.NoError(t, err)
	assert.Equal(t, "created", res.Body)
	assert.Empty(t, res.ContactID)
}

func TestCreateContact_UpstreamErrorCarriesStatusAndBody(t *testing.T) {
	client, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid email"}`))
	})

	_, err := client.CreateContact(context.Background(), samplePayload())
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnprocessableEntity, upstream.StatusCode)
	assert.Equal(t, map[string]any{"message": "invalid email"}, upstream.Body)
}

func TestCreateContact_TransportFailureIsUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1/contact", StaticToken("tok"),
		WithTimeout(500*time.Millisecond), WithLogger(logging.Discard()))

	_, err := client.CreateContact(context.Background(), samplePayload())
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestEnvTokenReadsAtCallTime(t *testing.T) {
	src := EnvToken("BOLDTRAIL_TEST_TOKEN")
	t.Setenv("BOLDTRAIL_TEST_TOKEN", "")
	assert.Empty(t, src())
	t.Setenv("BOLDTRAIL_TEST_TOKEN", " rotated ")
	assert.Equal(t, "rotated", src())
}

func TestExtractContactID(t *testing.T) {
	tests := []struct {
		name string
		body any
		want string
	}{
		{"top-level id", map[string]any{"id": "c-1", "contact_id": "c-2"}, "c-1"},
		{"contact_id fallback", map[string]any{"contact_id": json.Number("42")}, "42"},
		{"nested contact", map[string]any{"contact": map[string]any{"id": "nested"}}, "nested"},
		{"empty id skipped", map[string]any{"id": "", "contact": map[string]any{"id": "n2"}}, "n2"},
		{"zero id skipped", map[string]any{"id": json.Number("0"), "contact_id": "c-3"}, "c-3"},
		{"float id", map[string]any{"id": float64(1234)}, "1234"},
		{"text body", "ok", ""},
		{"no id", map[string]any{"status": "ok"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractContactID(tt.body))
		})
	}
}

func TestNewClientDefaultsURL(t *testing.T) {
	c := NewClient("  ", StaticToken("x"))
	assert.Equal(t, DefaultAPIURL, c.apiURL)
}

func TestTruncateKeepsWholeRunes(t *testing.T) {
	body := "a" + strings.Repeat("é", 10)

	got := truncate(body, 4)

	assert.Equal(t, "aééé", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, body, truncate(body, 50))
}
