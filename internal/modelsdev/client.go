// Package modelsdev proxies the public models.dev catalog and provider logos.
package modelsdev

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/davidbz/markl/internal/domain"
	"github.com/davidbz/markl/internal/observability"
)

const (
	catalogPath = "/api.json"
	logoPath    = "/logos/%s.svg"

	// SVGContentType is the content type of logo responses.
	SVGContentType = "image/svg+xml"

	maxBodyBytes = 10 << 20
)

// DefaultLogo is served when the upstream has no logo for a provider.
const DefaultLogo = `<svg xmlns="http://www.w3.org/2000/svg" width="24" height="24" viewBox="0 0 24 24">` +
	`<rect width="24" height="24" rx="4" fill="#e5e7eb"/>` +
	`<path d="M8 12h8M12 8v8" stroke="#6b7280" stroke-width="2" stroke-linecap="round"/></svg>`

var providerPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Response is an upstream reply passed through to the caller.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Client fetches from models.dev.
type Client struct {
	baseURL    string
	httpClient *http.Client
	group      singleflight.Group
}

// NewClient creates a models.dev client.
func NewClient(config *Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}
}

// Catalog fetches the model catalog. Concurrent callers share one upstream request.
func (c *Client) Catalog(ctx context.Context) (*Response, error) {
	ch := c.group.DoChan("catalog", func() (interface{}, error) {
		return c.get(context.WithoutCancel(ctx), c.baseURL+catalogPath)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Response), nil
	}
}

// Logo fetches a provider logo, substituting DefaultLogo when upstream returns 404.
func (c *Client) Logo(ctx context.Context, provider string) (*Response, error) {
	if !providerPattern.MatchString(provider) {
		return nil, &domain.ValidationError{Field: "provider", Message: "invalid provider name"}
	}

	resp, err := c.get(ctx, c.baseURL+fmt.Sprintf(logoPath, provider))
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusNotFound {
		observability.FromContext(ctx).Debug("logo not found upstream, serving default",
			observability.String("provider", provider))
		return &Response{Status: http.StatusOK, ContentType: SVGContentType, Body: []byte(DefaultLogo)}, nil
	}

	if resp.ContentType == "" {
		resp.ContentType = SVGContentType
	}

	return resp, nil
}

func (c *Client) get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("models.dev request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read models.dev response: %w", err)
	}

	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
