package service

import (
	"context"
	"fmt"

	"github.com/lshigami/wellrelay/config"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var openAITracer = otel.Tracer("wellrelay.llm.openai")

type openAILLMService struct {
	client *openai.Client
	model  string
}

// NewOpenAILLMService also serves OpenAI-compatible servers via OPENAI_BASE_URL.
func NewOpenAILLMService(cfg *config.Config) LLMService {
	if cfg.LLM.OpenAIApiKey == "" && cfg.LLM.OpenAIBaseURL == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set. OpenAI LLM service will be non-functional.")
		return &openAILLMService{model: cfg.LLM.OpenAIModel}
	}
	clientCfg := openai.DefaultConfig(cfg.LLM.OpenAIApiKey)
	if cfg.LLM.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.LLM.OpenAIBaseURL
	}
	return &openAILLMService{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.LLM.OpenAIModel,
	}
}

func (s *openAILLMService) Provider() string { return "openai" }

func (s *openAILLMService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if s.client == nil {
		return "", ErrLLMUnavailable
	}
	model := req.Model
	if model == "" {
		model = s.model
	}

	ctx, span := openAITracer.Start(ctx, "openai.Chat")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", model), attribute.Bool("llm.json", req.JSON))

	chatReq := openai.ChatCompletionRequest{Model: model}
	for _, m := range req.Messages {
		chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		log.Error().Err(err).Str("model", model).Msg("OpenAI API call failed")
		return "", recordSpanError(span, fmt.Errorf("openai API call failed: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", recordSpanError(span, fmt.Errorf("openai returned no choices"))
	}
	log.Debug().Str("finish_reason", string(resp.Choices[0].FinishReason)).Msg("Received response from OpenAI")
	return resp.Choices[0].Message.Content, nil
}
