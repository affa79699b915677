package quaily

import (
	"context"
	"fmt"
	"time"

	"viral-scout/internal/markdown"
)

// Params turns a digest document into create-post fields. Frontmatter keys
// are passed through; "datetime" is normalized to RFC 3339.
func Params(doc markdown.Document, channel string) map[string]any {
	params := make(map[string]any, len(doc.Frontmatter)+2)
	for k, v := range doc.Frontmatter {
		params[k] = v
	}
	if s, ok := params["datetime"].(string); ok {
		if t, err := time.Parse("2006-01-02 15:04", s); err == nil {
			params["datetime"] = t.Format(time.RFC3339)
		}
	}
	params["channel_slug"] = channel
	params["content"] = doc.Body
	return params
}

// Publish creates and publishes doc, then delivers it by slug when deliver is set.
func Publish(ctx context.Context, c *Client, doc markdown.Document, channel string, deliver bool) error {
	id, err := c.CreatePost(ctx, channel, Params(doc, channel))
	if err != nil {
		return err
	}
	if err := c.PublishPost(ctx, channel, id); err != nil {
		return err
	}
	if !deliver {
		return nil
	}
	slug, _ := doc.Frontmatter["slug"].(string)
	if slug == "" {
		return fmt.Errorf("deliver: frontmatter has no slug")
	}
	return c.DeliverPost(ctx, channel, slug)
}

// PublishMarkdownFile publishes a digest file written by an earlier run.
func PublishMarkdownFile(ctx context.Context, c *Client, path, channel string, deliver bool) error {
	doc, err := markdown.ParseFile(path)
	if err != nil {
		return fmt.Errorf("read markdown: %w", err)
	}
	return Publish(ctx, c, doc, channel, deliver)
}
