// Package quaily publishes rendered digests to a Quaily channel.
package quaily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a minimal HTTP client for the Quaily API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a client. baseURL looks like "https://api.quaily.com/v1".
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(b))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// CreatePost creates a draft in the channel and returns its id.
func (c *Client) CreatePost(ctx context.Context, channel string, params map[string]any) (string, error) {
	if c == nil {
		return "", errors.New("nil quaily client")
	}
	var out map[string]any
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/lists/%s/posts", channel), params, &out); err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}
	if id := postID(out); id != "" {
		return id, nil
	}
	if data, ok := out["data"].(map[string]any); ok {
		if id := postID(data); id != "" {
			return id, nil
		}
	}
	return "", errors.New("create post: missing id in response")
}

func postID(m map[string]any) string {
	switch v := m["id"].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// PublishPost publishes a created post.
func (c *Client) PublishPost(ctx context.Context, channel, id string) error {
	if c == nil {
		return errors.New("nil quaily client")
	}
	if strings.TrimSpace(id) == "" {
		return errors.New("empty post id")
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/lists/%s/posts/%s/publish", channel, id), nil, nil); err != nil {
		return fmt.Errorf("publish post: %w", err)
	}
	return nil
}

// DeliverPost mails a published post to subscribers.
func (c *Client) DeliverPost(ctx context.Context, channel, slug string) error {
	if c == nil {
		return errors.New("nil quaily client")
	}
	if strings.TrimSpace(slug) == "" {
		return errors.New("empty post slug")
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/lists/%s/posts/%s/deliver", channel, slug), nil, nil); err != nil {
		return fmt.Errorf("deliver post: %w", err)
	}
	return nil
}
