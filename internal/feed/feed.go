// Package feed searches configured RSS/Atom feeds as an additional blog source.
package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"viral-scout/internal/model"
	"viral-scout/internal/textutil"
)

// Searcher matches feed items against a keyword. Each feed is fetched at most
// once until Reset is called, which the scanner does at the start of a run.
type Searcher struct {
	urls    []string
	parser  *gofeed.Parser
	timeout time.Duration
	cache   map[string]*gofeed.Feed
}

func NewSearcher(urls []string, timeout time.Duration) *Searcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Searcher{
		urls:    urls,
		parser:  gofeed.NewParser(),
		timeout: timeout,
		cache:   map[string]*gofeed.Feed{},
	}
}

// Search returns blog candidates whose title or description contains keyword.
// Feeds only serve the blog source. A feed that fails to load is skipped and
// reported in the returned error after the others are searched.
func (s *Searcher) Search(ctx context.Context, src model.Source, keyword string) ([]model.Post, error) {
	if src != model.SourceBlog || len(s.urls) == 0 {
		return nil, nil
	}
	needle := textutil.NFC(keyword)
	var (
		posts []model.Post
		errs  []string
	)
	for _, u := range s.urls {
		f, err := s.load(ctx, u)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		for _, it := range f.Items {
			if it == nil || it.Link == "" {
				continue
			}
			title := textutil.StripMarkup(it.Title)
			desc := textutil.StripMarkup(it.Description)
			if !strings.Contains(textutil.NFC(title+" "+desc), needle) {
				continue
			}
			p := model.Post{
				Source:      model.SourceBlog,
				Keyword:     keyword,
				Title:       title,
				Description: desc,
				RawContent:  textutil.StripMarkup(it.Content),
				Link:        it.Link,
				GroupName:   f.Title,
			}
			if it.Author != nil {
				p.Author = it.Author.Name
			}
			if it.PublishedParsed != nil {
				p.PublishedDate = it.PublishedParsed.Format("2006-01-02")
			}
			posts = append(posts, p)
		}
	}
	if len(errs) > 0 {
		return posts, fmt.Errorf("feed: %s", strings.Join(errs, "; "))
	}
	return posts, nil
}

// Reset drops cached feeds.
func (s *Searcher) Reset() {
	s.cache = map[string]*gofeed.Feed{}
}

func (s *Searcher) load(ctx context.Context, u string) (*gofeed.Feed, error) {
	if f, ok := s.cache[u]; ok {
		return f, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	f, err := s.parser.ParseURLWithContext(u, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", u, err)
	}
	s.cache[u] = f
	return f, nil
}
