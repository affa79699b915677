package worker

import (
	"context"
	"fmt"
	"time"

	"viral-scout/internal/markdown"
	"viral-scout/internal/quaily"
)

// QuailyPublisher posts rendered digests to a Quaily channel.
type QuailyPublisher struct {
	Client  *quaily.Client
	Channel string
	Deliver bool
	Timeout time.Duration
}

func (p QuailyPublisher) Publish(ctx context.Context, md string) error {
	doc, err := markdown.ParseString(md)
	if err != nil {
		return fmt.Errorf("quaily: parse digest: %w", err)
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	return quaily.Publish(ctx, p.Client, doc, p.Channel, p.Deliver)
}
