package summarize

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"ytdigest/pkg/config"
	errs "ytdigest/pkg/errors"
	"ytdigest/pkg/logger"
)

// Summarizer condenses a transcript into a short digest
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// OpenAI summarizes with a single chat completion
type OpenAI struct {
	client       *openai.Client
	model        string
	systemPrompt string
	logger       logger.Logger
}

// New creates a chat-completion summarizer. Empty model and prompt fall back to defaults.
func New(client *openai.Client, model, systemPrompt string, log logger.Logger) *OpenAI {
	if model == "" {
		model = openai.GPT4
	}
	if systemPrompt == "" {
		systemPrompt = config.DefaultSystemPrompt
	}
	return &OpenAI{
		client:       client,
		model:        model,
		systemPrompt: systemPrompt,
		logger:       log,
	}
}

// Summarize sends the transcript as the user message and returns the first choice
func (s *OpenAI) Summarize(ctx context.Context, transcript string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: s.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
	})
	if err != nil {
		return "", errs.FromOpenAI(errs.ErrorTypeSummarization, "chat completion", err)
	}

	if len(resp.Choices) == 0 {
		return "", errs.New(errs.ErrorTypeSummarization, "chat completion", fmt.Errorf("response has no choices"))
	}

	s.logger.DebugWithFields("summary received", map[string]interface{}{
		"model":             resp.Model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	})

	return resp.Choices[0].Message.Content, nil
}
