// Package openai provides an adapter for the OpenAI chat completions API using the official SDK.
package openai

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/observability"
	"github.com/davidbz/markl/internal/provider"
)

// Adapter implements domain.ProviderAdapter for OpenAI.
type Adapter struct {
	client openai.Client
}

// NewAdapter creates a new OpenAI adapter.
func NewAdapter(config Config) *Adapter {
	// Retries belong to the orchestrator.
	opts := []option.RequestOption{
		option.WithMaxRetries(0),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	return &Adapter{
		client: openai.NewClient(opts...),
	}
}

// Name returns the provider identifier.
func (a *Adapter) Name() domain.ProviderID {
	return domain.ProviderOpenAI
}

// Invoke sends a chat completion request and returns the first choice's content.
func (a *Adapter) Invoke(
	ctx context.Context,
	apiKey, model string,
	messages []domain.Message,
	maxTokens int,
) (string, error) {
	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI API", observability.String("model", model))

	resp, err := a.client.Chat.Completions.New(ctx, toSDKParams(model, messages, maxTokens), option.WithAPIKey(apiKey))
	if err != nil {
		logger.Error("OpenAI API call failed", observability.Error(err))
		return "", mapError(err)
	}

	logger.Debug("OpenAI API call succeeded",
		observability.Int64("prompt_tokens", resp.Usage.PromptTokens),
		observability.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}

func toSDKParams(model string, messages []domain.Message, maxTokens int) openai.ChatCompletionNewParams {
	sdkMessages := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case domain.RoleAssistant:
			sdkMessages[i] = openai.AssistantMessage(msg.Content)
		case "system":
			sdkMessages[i] = openai.SystemMessage(msg.Content)
		default:
			sdkMessages[i] = openai.UserMessage(msg.Content)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    sdkMessages,
		Temperature: openai.Float(provider.Temperature),
	}

	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	return params
}

func mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		body := apiErr.RawJSON()
		if body == "" {
			body = apiErr.Message
		}
		if body == "" {
			body = http.StatusText(apiErr.StatusCode)
		}
		return provider.HTTPError(domain.ProviderOpenAI, apiErr.StatusCode, body)
	}

	return provider.WrapError(domain.ProviderOpenAI, err)
}
