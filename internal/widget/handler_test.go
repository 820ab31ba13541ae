package widget

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

func newTestHandler(t *testing.T, cfg Config) *Handler {
	t.Helper()
	h, err := NewHandler(cfg, logging.Discard())
	require.NoError(t, err)
	return h
}

func TestEmbedJSInjectsConfiguredDefaults(t *testing.T) {
	h := newTestHandler(t, Config{ChatbotURL: "https://chat.example.com/widget", Position: "top-left"})

	rec := httptest.NewRecorder()
	h.EmbedJS(rec, httptest.NewRequest(http.MethodGet, "/embed.js", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/javascript")
	body := rec.Body.String()
	assert.Contains(t, body, `"chatbotUrl":"https://chat.example.com/widget"`)
	assert.Contains(t, body, `"position":"top-left"`)
	assert.Contains(t, body, `"theme":"light"`)
	assert.Contains(t, body, "real-estate-chatbot-widget")
	assert.Contains(t, body, "real-estate-chatbot-iframe")
	assert.Contains(t, body, "allow-same-origin allow-scripts allow-popups allow-forms allow-top-navigation-by-user-activation")
	assert.Contains(t, body, "window.RealEstateChatbot")
	assert.Contains(t, body, "Math.min(window.innerWidth * 0.9, 450)")
	assert.Contains(t, body, "Math.min(window.innerHeight * 0.9, 800)")
}

func TestEmbedJSFallsBackOnUnknownPosition(t *testing.T) {
	script, err := RenderEmbed(Config{Position: "middle"})
	require.NoError(t, err)
	assert.Contains(t, string(script), `"position":"bottom-right"`)
	assert.Contains(t, string(script), `"chatbotUrl":"/widget"`)
}

func TestEmbedJSEscapesScriptBreakingURL(t *testing.T) {
	script, err := RenderEmbed(Config{ChatbotURL: "https://x.test/</script><script>alert(1)</script>"})
	require.NoError(t, err)
	assert.NotContains(t, string(script), "</script>")
	assert.Contains(t, string(script), `\u003c/script\u003e`)
}

func TestWidgetPageCarriesEndpoints(t *testing.T) {
	h := newTestHandler(t, Config{WSPath: "/ws", LeadPath: "/lead"})

	rec := httptest.NewRecorder()
	h.Widget(rec, httptest.NewRequest(http.MethodGet, "/widget", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `"wsPath":"/ws"`), "ws path missing from page config")
	assert.Contains(t, body, `"leadPath":"/lead"`)
	assert.Contains(t, body, ToggleMessage)
	assert.Contains(t, body, `id="lead-consent"`)
}

func TestValidPosition(t *testing.T) {
	for _, p := range Positions {
		assert.True(t, ValidPosition(p), p)
	}
	assert.False(t, ValidPosition(""))
	assert.False(t, ValidPosition("center"))
}
