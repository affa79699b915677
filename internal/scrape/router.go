package scrape

import (
	"context"

	"viral-scout/internal/model"
)

// Router picks a fetcher per source. A nil Cafe fetcher falls back to Blog.
type Router struct {
	Blog Fetcher
	Cafe Fetcher
}

func (r Router) Fetch(ctx context.Context, src model.Source, u string) (Page, error) {
	if src == model.SourceCafe && r.Cafe != nil {
		return r.Cafe.Fetch(ctx, src, u)
	}
	return r.Blog.Fetch(ctx, src, u)
}
