// Package gemini provides an adapter for Google's Gemini models using the generative-ai-go SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/observability"
	"github.com/davidbz/markl/internal/provider"
)

const (
	contentSeparator = "\n\n"
	apiKeyHeader     = "x-goog-api-key"
	maxErrorBody     = 64 << 10
)

// Adapter implements domain.ProviderAdapter for Gemini.
// The SDK binds the API key at client construction, so a client is created per call.
type Adapter struct {
	endpoint string
	timeout  time.Duration
}

// NewAdapter creates a new Gemini adapter.
func NewAdapter(config Config) *Adapter {
	return &Adapter{
		endpoint: config.Endpoint,
		timeout:  time.Duration(config.Timeout) * time.Second,
	}
}

// Name returns the provider identifier.
func (a *Adapter) Name() domain.ProviderID {
	return domain.ProviderGemini
}

// Invoke concatenates the conversation into one text part and returns the first candidate's text.
func (a *Adapter) Invoke(
	ctx context.Context,
	apiKey, model string,
	messages []domain.Message,
	maxTokens int,
) (string, error) {
	logger := observability.FromContext(ctx)
	logger.Debug("calling Gemini API", observability.String("model", model))

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	// The HTTP client option must come first: the SDK accepts the first auth
	// option it finds. The API key still authenticates the non-REST clients.
	opts := []option.ClientOption{
		option.WithHTTPClient(&http.Client{Transport: &transport{apiKey: apiKey, base: http.DefaultTransport}}),
		option.WithAPIKey(apiKey),
	}
	if a.endpoint != "" {
		opts = append(opts, option.WithEndpoint(a.endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	generative := client.GenerativeModel(model)
	generative.SetTemperature(provider.Temperature)
	if maxTokens > 0 {
		generative.SetMaxOutputTokens(int32(maxTokens))
	}

	resp, err := generative.GenerateContent(ctx, genai.Text(JoinContents(messages)))
	if err != nil {
		logger.Error("Gemini API call failed", observability.Error(err))
		return "", mapError(err)
	}

	return ExtractText(resp), nil
}

// JoinContents concatenates message contents separated by blank lines.
func JoinContents(messages []domain.Message) string {
	contents := make([]string, 0, len(messages))
	for _, msg := range messages {
		contents = append(contents, msg.Content)
	}
	return strings.Join(contents, contentSeparator)
}

// ExtractText returns the first text part of the first candidate, or "" when absent.
func ExtractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	if text, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(text)
	}

	return ""
}

// transport authenticates REST calls and turns non-2xx responses into
// provider errors, so the SDK's own retry policy never sees a retryable status.
// Retries belong to the orchestrator.
type transport struct {
	apiKey string
	base   http.RoundTripper
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(apiKeyHeader, t.apiKey)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(body) == 0 {
		body = []byte(http.StatusText(resp.StatusCode))
	}
	return nil, provider.HTTPError(domain.ProviderGemini, resp.StatusCode, string(body))
}

func mapError(err error) error {
	var httpErr *domain.ProviderHTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		body := apiErr.Body
		if body == "" {
			body = apiErr.Message
		}
		if body == "" {
			body = http.StatusText(apiErr.Code)
		}
		return provider.HTTPError(domain.ProviderGemini, apiErr.Code, body)
	}

	return provider.WrapError(domain.ProviderGemini, err)
}
