package service

import (
	"context"
	"time"

	"github.com/lshigami/wellrelay/config"
	"github.com/lshigami/wellrelay/internal/dto"
	"github.com/rs/zerolog/log"
)

// ChatService relays a single user message to the LLM.
type ChatService interface {
	Chat(ctx context.Context, req dto.ChatRequest) (string, error)
}

type chatService struct {
	llm     LLMService
	timeout time.Duration
}

func NewChatService(llm LLMService, cfg *config.Config) ChatService {
	return &chatService{llm: llm, timeout: cfg.LLM.ChatTimeout}
}

func (s *chatService) Chat(ctx context.Context, req dto.ChatRequest) (string, error) {
	if req.Message == "" {
		return "", newValidationError("message", "is required")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.llm.Complete(ctx, CompletionRequest{
		Model:    req.Model,
		Messages: []ChatMessage{{Role: RoleUser, Content: req.Message}},
	})
	if err != nil {
		log.Error().Err(err).Str("provider", s.llm.Provider()).Msg("Chat relay failed")
		return "", err
	}
	return reply, nil
}
