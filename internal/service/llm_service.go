package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/lshigami/wellrelay/config"
	"github.com/lshigami/wellrelay/internal/observability"
	"github.com/rs/zerolog/log"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var ErrLLMUnavailable = errors.New("llm client not configured")

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is one non-streaming chat completion. An empty Model uses
// the backend's configured default; JSON asks the backend for a JSON object.
type CompletionRequest struct {
	Model    string
	Messages []ChatMessage
	JSON     bool
}

type LLMService interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Provider() string
}

// NewLLMService builds the backend selected by LLM_PROVIDER.
func NewLLMService(cfg *config.Config, metrics *observability.Metrics) (LLMService, error) {
	var (
		backend LLMService
		err     error
	)
	switch cfg.LLM.Provider {
	case "gemini":
		backend, err = NewGeminiLLMService(cfg)
	case "openai":
		backend = NewOpenAILLMService(cfg)
	case "ollama", "":
		backend = NewOllamaLLMService(cfg.LLM.OllamaBaseURL, cfg.LLM.OllamaModel, nil)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLM.Provider)
	}
	if err != nil {
		return nil, err
	}
	log.Info().Str("provider", backend.Provider()).Msg("LLM service initialized")
	return &instrumentedLLMService{next: backend, metrics: metrics}, nil
}

type instrumentedLLMService struct {
	next    LLMService
	metrics *observability.Metrics
}

func (s *instrumentedLLMService) Provider() string { return s.next.Provider() }

func (s *instrumentedLLMService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	start := time.Now()
	out, err := s.next.Complete(ctx, req)
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveLLMLatency(s.next.Provider(), status, time.Since(start).Seconds())
	return out, err
}

// Close releases the backend's client when it holds one.
func (s *instrumentedLLMService) Close() error {
	if c, ok := s.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
