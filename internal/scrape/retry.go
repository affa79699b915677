package scrape

import (
	"context"
	"log/slog"
	"time"

	"viral-scout/internal/model"
)

// Retrying wraps a Fetcher with a bounded number of attempts and a fixed
// backoff. It never returns an error: after the last failure the page content
// is the unavailable sentinel.
type Retrying struct {
	Fetcher  Fetcher
	Attempts int
	Backoff  time.Duration
}

// Fetch returns the page, or a Page carrying model.ContentUnavailable.
func (r Retrying) Fetch(ctx context.Context, src model.Source, u string) Page {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	var (
		last    Page
		lastErr error
	)
	for i := 0; i < attempts; i++ {
		p, err := r.Fetcher.Fetch(ctx, src, u)
		if err == nil {
			return p
		}
		last, lastErr = p, err
		if i < attempts-1 && !sleep(ctx, r.Backoff) {
			break
		}
	}
	slog.Warn("scrape: fetch failed, using sentinel", "url", u, "attempts", attempts, "err", lastErr)
	// comments and cafe name may still have been found on an empty article
	last.Content = model.ContentUnavailable
	return last
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
