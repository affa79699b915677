package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"viral-scout/internal/model"
)

// CloudflareClient calls Cloudflare Browser Rendering REST API.
// See: https://developers.cloudflare.com/browser-rendering/rest-api/
type CloudflareClient struct {
	baseURL string
	token   string
	http    *http.Client
}

type contentRequest struct {
	URL                  string   `json:"url"`
	RejectRequestPattern []string `json:"rejectRequestPattern,omitempty"`
}

type contentResponse struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
	Errors  any    `json:"errors"`
}

// NewCloudflare creates a new client from an account ID.
// Endpoint: https://api.cloudflare.com/client/v4/accounts/<ACCOUNT_ID>/browser-rendering/content
func NewCloudflare(accountID, token string, timeout time.Duration) *CloudflareClient {
	baseURL := fmt.Sprintf("https://api.cloudflare.com/client/v4/accounts/%s/browser-rendering/content", strings.TrimSpace(accountID))
	return newCloudflare(baseURL, token, timeout)
}

func newCloudflare(baseURL, token string, timeout time.Duration) *CloudflareClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &CloudflareClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// Render returns the fully rendered HTML of u, after scripts have run.
func (c *CloudflareClient) Render(ctx context.Context, u string) (string, error) {
	if c == nil {
		return "", errors.New("nil cloudflare client")
	}
	if _, err := url.ParseRequestURI(u); err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	body, _ := json.Marshal(contentRequest{
		URL:                  u,
		RejectRequestPattern: []string{"/^.*\\.(css|png|jpg|jpeg|gif|webp)/"},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("cloudflare render failed: status=%d body=%s", resp.StatusCode, string(b))
	}
	var envelope contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", err
	}
	if !envelope.Success {
		return "", fmt.Errorf("cloudflare render failed: %v", envelope.Errors)
	}
	return envelope.Result, nil
}

// Fetch renders u and extracts the post from the resulting HTML.
func (c *CloudflareClient) Fetch(ctx context.Context, src model.Source, u string) (Page, error) {
	html, err := c.Render(ctx, ResolveURL(u))
	if err != nil {
		return Page{}, err
	}
	return Extract(src, html)
}
