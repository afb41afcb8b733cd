// Package anthropic provides an adapter for the Anthropic messages API using the official SDK.
package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/observability"
	"github.com/davidbz/markl/internal/provider"
)

const (
	humanPrefix     = "Human: "
	assistantPrefix = "Assistant: "
	turnSeparator   = "\n\n"
)

// Adapter implements domain.ProviderAdapter for Anthropic.
type Adapter struct {
	client anthropic.Client
}

// NewAdapter creates a new Anthropic adapter.
func NewAdapter(config Config) *Adapter {
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
		client: anthropic.NewClient(opts...),
	}
}

// Name returns the provider identifier.
func (a *Adapter) Name() domain.ProviderID {
	return domain.ProviderAnthropic
}

// Invoke flattens the conversation into a single user turn and returns the first text block.
func (a *Adapter) Invoke(
	ctx context.Context,
	apiKey, model string,
	messages []domain.Message,
	maxTokens int,
) (string, error) {
	logger := observability.FromContext(ctx)
	logger.Debug("calling Anthropic API", observability.String("model", model))

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(provider.Temperature),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: FlattenMessages(messages)},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	}

	resp, err := a.client.Messages.New(ctx, params, option.WithAPIKey(apiKey))
	if err != nil {
		logger.Error("Anthropic API call failed", observability.Error(err))
		return "", mapError(err)
	}

	logger.Debug("Anthropic API call succeeded",
		observability.Int64("input_tokens", resp.Usage.InputTokens),
		observability.Int64("output_tokens", resp.Usage.OutputTokens),
	)

	if len(resp.Content) == 0 {
		return "", nil
	}

	return resp.Content[0].AsText().Text, nil
}

// FlattenMessages renders a conversation as alternating Human/Assistant turns.
func FlattenMessages(messages []domain.Message) string {
	turns := make([]string, 0, len(messages))
	for _, msg := range messages {
		prefix := assistantPrefix
		if msg.Role == domain.RoleUser {
			prefix = humanPrefix
		}
		turns = append(turns, prefix+msg.Content)
	}

	return strings.Join(turns, turnSeparator)
}

func mapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		body := apiErr.RawJSON()
		if body == "" {
			body = http.StatusText(apiErr.StatusCode)
		}
		return provider.HTTPError(domain.ProviderAnthropic, apiErr.StatusCode, body)
	}

	return provider.WrapError(domain.ProviderAnthropic, err)
}
