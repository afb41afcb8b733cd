package modelsdev_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/modelsdev"
)

func newClient(t *testing.T, handler http.Handler) *modelsdev.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return modelsdev.NewClient(&modelsdev.Config{BaseURL: server.URL + "/", Timeout: 5})
}

func TestClient_Catalog(t *testing.T) {
	t.Run("should pass upstream status and body through", func(t *testing.T) {
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api.json", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte(`{"openai":{}}`))
		}))

		resp, err := client.Catalog(context.Background())
		require.NoError(t, err)
		require.Equal(t, http.StatusTeapot, resp.Status)
		require.JSONEq(t, `{"openai":{}}`, string(resp.Body))
	})

	t.Run("should share one upstream request between concurrent callers", func(t *testing.T) {
		var hits atomic.Int32
		release := make(chan struct{})
		client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			<-release
			_, _ = w.Write([]byte(`{}`))
		}))

		var wg sync.WaitGroup
		errs := make(chan error, 5)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := client.Catalog(context.Background())
				errs <- err
			}()
		}

		time.Sleep(100 * time.Millisecond)
		close(release)
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		require.Equal(t, int32(1), hits.Load())
	})

	t.Run("should return error when upstream unreachable", func(t *testing.T) {
		client := modelsdev.NewClient(&modelsdev.Config{BaseURL: "http://127.0.0.1:1", Timeout: 1})

		_, err := client.Catalog(context.Background())
		require.Error(t, err)
	})
}

func TestClient_Logo(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/logos/openai.svg" {
			w.Header().Set("Content-Type", "image/svg+xml")
			_, _ = w.Write([]byte(`<svg id="openai"/>`))
			return
		}
		http.NotFound(w, r)
	}))

	t.Run("should proxy existing logo", func(t *testing.T) {
		resp, err := client.Logo(context.Background(), "openai")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.Status)
		require.Equal(t, `<svg id="openai"/>`, string(resp.Body))
	})

	t.Run("should fall back to default logo on 404", func(t *testing.T) {
		resp, err := client.Logo(context.Background(), "unknown-vendor")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.Status)
		require.Equal(t, modelsdev.SVGContentType, resp.ContentType)
		require.Equal(t, modelsdev.DefaultLogo, string(resp.Body))
	})

	t.Run("should reject path-like provider names", func(t *testing.T) {
		_, err := client.Logo(context.Background(), "../etc")
		require.Equal(t, domain.ErrorTypeValidation, domain.ClassifyError(err))
	})
}
