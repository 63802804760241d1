package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ollamaTracer = otel.Tracer("wellrelay.llm.ollama")

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
}

type ollamaChatResponse struct {
	Model   string      `json:"model"`
	Message ChatMessage `json:"message"`
	Done    bool        `json:"done"`
}

type ollamaLLMService struct {
	chatURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaLLMService talks to an Ollama server's /api/chat endpoint.
// Request deadlines come from the caller's context.
func NewOllamaLLMService(baseURL, model string, httpClient *http.Client) LLMService {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ollamaLLMService{
		chatURL:    strings.TrimSuffix(baseURL, "/") + "/api/chat",
		model:      model,
		httpClient: httpClient,
	}
}

func (s *ollamaLLMService) Provider() string { return "ollama" }

func (s *ollamaLLMService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = s.model
	}

	ctx, span := ollamaTracer.Start(ctx, "ollama.Chat")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", model),
		attribute.Int("llm.num_messages", len(req.Messages)),
		attribute.Bool("llm.json", req.JSON),
	)

	payload := ollamaChatRequest{Model: model, Messages: req.Messages, Stream: false}
	if req.JSON {
		payload.Format = "json"
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", recordSpanError(span, fmt.Errorf("failed to marshal ollama request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.chatURL, bytes.NewReader(body))
	if err != nil {
		return "", recordSpanError(span, fmt.Errorf("failed to create ollama request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", recordSpanError(span, fmt.Errorf("ollama request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", recordSpanError(span, fmt.Errorf("failed to read ollama response: %w", err))
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Error().Int("status_code", resp.StatusCode).Str("response", string(respBody)).Msg("Ollama chat returned an error")
		return "", recordSpanError(span, fmt.Errorf("ollama chat failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	var chatResp ollamaChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", recordSpanError(span, fmt.Errorf("failed to decode ollama response: %w", err))
	}
	return chatResp.Message.Content, nil
}

func recordSpanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
