package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const defaultModelID = "gemini-2.5-flash"

// GeminiModel implements Model using Google's Gemini API.
type GeminiModel struct {
	client  *genai.Client
	modelID string
	tracer  trace.Tracer
}

// NewGeminiModel creates a Gemini-backed model.
func NewGeminiModel(ctx context.Context, apiKey, modelID string) (*GeminiModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("chat: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = defaultModelID
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("chat: failed to create gemini client: %w", err)
	}

	return &GeminiModel{
		client:  client,
		modelID: modelID,
		tracer:  otel.Tracer("realestate.internal.chat"),
	}, nil
}

// NewSession starts a model-side chat seeded with the system instruction.
func (m *GeminiModel) NewSession() ModelSession {
	model := m.client.GenerativeModel(m.modelID)
	model.SystemInstruction = genai.NewUserContent(genai.Text(SystemInstruction))
	return &geminiSession{cs: model.StartChat(), tracer: m.tracer}
}

// Suggest asks for follow-up questions with a JSON response schema.
func (m *GeminiModel) Suggest(ctx context.Context, question, answer string) ([]string, error) {
	ctx, span := m.tracer.Start(ctx, "chat.suggest")
	defer span.End()

	model := m.client.GenerativeModel(m.modelID)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"suggestions": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(SuggestionPrompt(question, answer)))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chat: gemini suggestions failed: %w", err)
	}
	return ParseSuggestions(responseText(resp))
}

// Close releases resources held by the Gemini client.
func (m *GeminiModel) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

type geminiSession struct {
	cs     *genai.ChatSession
	tracer trace.Tracer
}

func (s *geminiSession) SendStream(ctx context.Context, text string) ChunkStream {
	ctx, span := s.tracer.Start(ctx, "chat.send_stream")
	return &geminiStream{iter: s.cs.SendMessageStream(ctx, genai.Text(text)), span: span}
}

type geminiStream struct {
	iter *genai.GenerateContentResponseIterator
	span trace.Span
}

func (s *geminiStream) Next() (string, error) {
	resp, err := s.iter.Next()
	if errors.Is(err, iterator.Done) {
		s.span.End()
		return "", io.EOF
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.End()
		return "", fmt.Errorf("chat: gemini stream failed: %w", err)
	}
	return responseText(resp), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
