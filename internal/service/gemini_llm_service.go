package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/wellrelay/config"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/option"
)

var geminiTracer = otel.Tracer("wellrelay.llm.gemini")

type geminiLLMService struct {
	client *genai.Client
	model  string
}

func NewGeminiLLMService(cfg *config.Config) (LLMService, error) {
	if cfg.LLM.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Gemini LLM service will be non-functional.")
		return &geminiLLMService{model: cfg.LLM.GeminiModel}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.LLM.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &geminiLLMService{client: client, model: cfg.LLM.GeminiModel}, nil
}

func (s *geminiLLMService) Provider() string { return "gemini" }

func (s *geminiLLMService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if s.client == nil {
		return "", ErrLLMUnavailable
	}
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("gemini: no messages to send")
	}
	modelName := req.Model
	if modelName == "" {
		modelName = s.model
	}

	ctx, span := geminiTracer.Start(ctx, "gemini.Chat")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", modelName), attribute.Bool("llm.json", req.JSON))

	// GenerativeModel carries per-call settings, so build a fresh one each time.
	model := s.client.GenerativeModel(modelName)
	if req.JSON {
		model.ResponseMIMEType = "application/json"
	}

	var system []string
	var history []*genai.Content
	for _, m := range req.Messages[:len(req.Messages)-1] {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		history = append(history, &genai.Content{Role: geminiRole(m.Role), Parts: []genai.Part{genai.Text(m.Content)}})
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(system, "\n"))}}
	}

	cs := model.StartChat()
	cs.History = history
	resp, err := cs.SendMessage(ctx, genai.Text(req.Messages[len(req.Messages)-1].Content))
	if err != nil {
		log.Error().Err(err).Str("model", modelName).Msg("Gemini API error")
		return "", recordSpanError(span, fmt.Errorf("gemini API error: %w", err))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", recordSpanError(span, fmt.Errorf("gemini returned no content"))
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", recordSpanError(span, fmt.Errorf("gemini returned no text content"))
	}
	return b.String(), nil
}

func (s *geminiLLMService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func geminiRole(role string) string {
	if role == RoleAssistant {
		return "model"
	}
	return "user"
}
