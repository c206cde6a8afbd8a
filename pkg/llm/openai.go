package llm

import (
	"context"
	"math"
	"strings"

	"github.com/go-go-golems/qalog/pkg/helpers"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	go_openai "github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	settings *Settings
	client   *go_openai.Client
}

var _ Client = (*OpenAIClient)(nil)

func NewOpenAIClient(settings *Settings) (*OpenAIClient, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	config := go_openai.DefaultConfig(settings.APIKey)
	if settings.BaseURL != "" {
		config.BaseURL = settings.BaseURL
	}
	return &OpenAIClient{
		settings: settings.Clone(),
		client:   go_openai.NewClientWithConfig(config),
	}, nil
}

func (c *OpenAIClient) makeRequest(prompt string) go_openai.ChatCompletionRequest {
	var messages []go_openai.ChatCompletionMessage
	if c.settings.SystemMessage != "" {
		messages = append(messages, go_openai.ChatCompletionMessage{
			Role:    go_openai.ChatMessageRoleSystem,
			Content: c.settings.SystemMessage,
		})
	}
	messages = append(messages, go_openai.ChatCompletionMessage{
		Role:    go_openai.ChatMessageRoleUser,
		Content: prompt,
	})

	// temperature is omitempty in the request, 0 would fall back to the
	// server default of 1
	temperature := c.settings.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}
	return go_openai.ChatCompletionRequest{
		Model:       c.settings.Model,
		Messages:    messages,
		MaxTokens:   c.settings.MaxTokens,
		Temperature: temperature,
		TopP:        c.settings.TopP,
		Seed:        helpers.ToPtr(c.settings.Seed),
	}
}

func (c *OpenAIClient) Query(ctx context.Context, prompt string) (string, error) {
	logger := log.With().
		Str("request_id", helpers.RequestIDFromContext(ctx)).
		Str("model", c.settings.Model).
		Logger()

	logger.Debug().Int("prompt_length", len(prompt)).Msg("sending prompt")

	resp, err := c.client.CreateChatCompletion(ctx, c.makeRequest(prompt))
	if err != nil {
		return "", errors.Wrap(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	logger.Info().
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Int("total_tokens", resp.Usage.TotalTokens).
		Str("finish_reason", string(resp.Choices[0].FinishReason)).
		Msg("received response")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
