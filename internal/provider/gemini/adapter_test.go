package gemini_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/provider/gemini"
)

func TestAdapter_Name(t *testing.T) {
	require.Equal(t, domain.ProviderGemini, gemini.NewAdapter(gemini.Config{}).Name())
}

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *gemini.Adapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return gemini.NewAdapter(gemini.Config{Endpoint: server.URL, Timeout: 5})
}

func TestAdapter_Invoke(t *testing.T) {
	t.Run("should send joined contents and return first candidate text", func(t *testing.T) {
		var captured map[string]any
		adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", r.URL.Path)
			require.Equal(t, "g-test", r.Header.Get("x-goog-api-key"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hi"}],"role":"model"}}]}`))
		})

		reply, err := adapter.Invoke(context.Background(), "g-test", "gemini-1.5-flash",
			[]domain.Message{
				{Role: domain.RoleUser, Content: "a"},
				{Role: domain.RoleAssistant, Content: "b"},
			}, 123)
		require.NoError(t, err)
		require.Equal(t, "hi", reply)

		contents, ok := captured["contents"].([]any)
		require.True(t, ok)
		require.Len(t, contents, 1)
		content := contents[0].(map[string]any)
		require.Equal(t, "user", content["role"])
		parts := content["parts"].([]any)
		require.Len(t, parts, 1)
		require.Equal(t, "a\n\nb", parts[0].(map[string]any)["text"])

		config, ok := captured["generationConfig"].(map[string]any)
		require.True(t, ok)
		require.InDelta(t, 123, config["maxOutputTokens"], 1e-9)
		require.InDelta(t, 0.7, config["temperature"], 1e-6)
	})

	for _, status := range []int{
		http.StatusBadRequest,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable,
	} {
		t.Run(fmt.Sprintf("should map status %d without retrying", status), func(t *testing.T) {
			var calls atomic.Int32
			body := fmt.Sprintf(`{"error":{"code":%d,"message":"upstream says no"}}`, status)
			adapter := newTestAdapter(t, func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_, _ = w.Write([]byte(body))
			})

			start := time.Now()
			_, err := adapter.Invoke(context.Background(), "g-test", "gemini-1.5-flash",
				[]domain.Message{{Role: domain.RoleUser, Content: "Hi"}}, 10)
			require.Less(t, time.Since(start), 3*time.Second)

			var httpErr *domain.ProviderHTTPError
			require.ErrorAs(t, err, &httpErr)
			require.Equal(t, domain.ProviderGemini, httpErr.Provider)
			require.Equal(t, status, httpErr.Status)
			require.Equal(t, body, httpErr.Body)
			require.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestJoinContents(t *testing.T) {
	joined := gemini.JoinContents([]domain.Message{
		{Role: domain.RoleUser, Content: "first"},
		{Role: domain.RoleAssistant, Content: "second"},
		{Role: domain.RoleUser, Content: "third"},
	})
	require.Equal(t, "first\n\nsecond\n\nthird", joined)
}

func TestExtractText(t *testing.T) {
	t.Run("should return first part text", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Text("hello"), genai.Text("ignored")}},
			}},
		}
		require.Equal(t, "hello", gemini.ExtractText(resp))
	})

	t.Run("should return empty text when shape is missing", func(t *testing.T) {
		require.Empty(t, gemini.ExtractText(nil))
		require.Empty(t, gemini.ExtractText(&genai.GenerateContentResponse{}))
		require.Empty(t, gemini.ExtractText(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: nil}},
		}))
	})
}

func TestMapError(t *testing.T) {
	t.Run("should map googleapi errors to provider http errors", func(t *testing.T) {
		err := gemini.MapError(fmt.Errorf("generate: %w", &googleapi.Error{
			Code: http.StatusTooManyRequests,
			Body: `{"error":{"status":"RESOURCE_EXHAUSTED"}}`,
		}))

		var httpErr *domain.ProviderHTTPError
		require.ErrorAs(t, err, &httpErr)
		require.Equal(t, domain.ProviderGemini, httpErr.Provider)
		require.Equal(t, http.StatusTooManyRequests, httpErr.Status)
		require.True(t, httpErr.Retryable())
	})

	t.Run("should keep provider http errors from the transport", func(t *testing.T) {
		original := &domain.ProviderHTTPError{Provider: domain.ProviderGemini, Status: http.StatusServiceUnavailable, Body: "busy"}
		err := gemini.MapError(fmt.Errorf("Post %q: %w", "http://gemini", original))
		require.Same(t, original, err)
	})

	t.Run("should keep context errors", func(t *testing.T) {
		err := gemini.MapError(context.Canceled)
		require.Equal(t, domain.ErrorTypeCanceled, domain.ClassifyError(err))
	})
}

func TestCatalog(t *testing.T) {
	c, err := gemini.Catalog()
	require.NoError(t, err)
	require.Equal(t, "gemini-1.5-flash", c.DefaultModel())

	m, ok := c.Find("gemini-1.5-pro")
	require.True(t, ok)
	require.True(t, m.Recommended)
}
