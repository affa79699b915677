package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"viral-scout/internal/ai"
	"viral-scout/internal/digest"
	"viral-scout/internal/filter"
	"viral-scout/internal/identity"
	"viral-scout/internal/model"
	"viral-scout/internal/notify"
	"viral-scout/internal/pipeline"
	"viral-scout/internal/scrape"
	"viral-scout/internal/storage"
	"viral-scout/internal/textutil"
)

// ErrNoKeywords is a setup failure: neither the settings table nor the
// config provided a search term.
var ErrNoKeywords = errors.New("scanner: no keywords configured")

// Searcher finds candidate posts for one keyword.
type Searcher interface {
	Search(ctx context.Context, src model.Source, keyword string) ([]model.Post, error)
}

// PageFetcher loads page content. Failures come back as the unavailable
// sentinel rather than an error.
type PageFetcher interface {
	Fetch(ctx context.Context, src model.Source, url string) scrape.Page
}

// SeenStore keeps accepted content hashes between runs.
type SeenStore interface {
	SeenHashes(ctx context.Context, table string, now time.Time) ([]string, error)
	AddHashes(ctx context.Context, table string, hashes []string, now time.Time) error
}

// Publisher hands the rendered markdown digest to an outside channel.
type Publisher interface {
	Publish(ctx context.Context, markdown string) error
}

// Options are the per-run knobs of a Scanner.
type Options struct {
	Keywords      []string // used when the settings table has none
	BlogTable     string
	CafeTable     string
	SettingsTable string
	EnableBlog    bool
	EnableCafe    bool
	BlogContent   bool // fetch blog pages instead of using search previews
	CafeMaxPosts  int
	PostDelay     time.Duration
	KeywordDelay  time.Duration
	WritePace     time.Duration
	Location      *time.Location
	SheetURL      string
	OutputDir     string
	Digest        digest.Options
	Title         string
	Preface       string
	Postscript    string
}

// Scanner runs one collection pass: search, filter, enrich, store, report.
// Searchers, Sheet and Settings are required; the rest are optional.
type Scanner struct {
	Searchers []Searcher
	Fetcher   PageFetcher
	Sheet     storage.Sheet
	Seen      SeenStore
	AI        ai.Completer
	Notifier  notify.Notifier
	Publisher Publisher
	Settings  pipeline.Settings
	Options   Options
	Now       func() time.Time
}

// Report summarizes a run.
type Report struct {
	RunID      string
	Keywords   []string
	Candidates int
	Accepted   map[model.Source]int
	Rejected   map[filter.Stage]int
	Saved      map[model.Source]int
	Digest     digest.Digest
	Notified   bool
	Output     string // markdown digest path, if written
}

func (s *Scanner) now() time.Time {
	t := time.Now()
	if s.Now != nil {
		t = s.Now()
	}
	if s.Options.Location != nil {
		t = t.In(s.Options.Location)
	}
	return t
}

func (s *Scanner) sources() []model.Source {
	var out []model.Source
	if s.Options.EnableBlog {
		out = append(out, model.SourceBlog)
	}
	if s.Options.EnableCafe {
		out = append(out, model.SourceCafe)
	}
	return out
}

func (s *Scanner) table(src model.Source) string {
	if src == model.SourceCafe {
		return s.Options.CafeTable
	}
	return s.Options.BlogTable
}

// Run performs one pass. Errors returned are setup failures or cancellation;
// everything else is logged and the run continues.
func (s *Scanner) Run(ctx context.Context) (Report, error) {
	rep := Report{
		RunID:    uuid.NewString(),
		Accepted: map[model.Source]int{},
		Rejected: map[filter.Stage]int{},
		Saved:    map[model.Source]int{},
	}
	log := slog.With("run_id", rep.RunID)

	sources := s.sources()
	if len(sources) == 0 {
		return rep, errors.New("scanner: no source enabled")
	}
	keywords, err := s.keywords(ctx, log)
	if err != nil {
		return rep, err
	}
	rep.Keywords = keywords

	var links, hashes []string
	prior := map[model.Source]int{}
	for _, src := range sources {
		table := s.table(src)
		if err := s.Sheet.EnsureHeader(ctx, table, storage.Header(src)); err != nil {
			return rep, fmt.Errorf("scanner: prepare table %s: %w", table, err)
		}
		ls, err := s.Sheet.ExistingLinks(ctx, table, storage.LinkColumn(src))
		if err != nil {
			return rep, fmt.Errorf("scanner: read links of %s: %w", table, err)
		}
		prior[src] = len(ls)
		links = append(links, ls...)
		if s.Seen == nil {
			continue
		}
		hs, err := s.Seen.SeenHashes(ctx, table, s.now())
		if err != nil {
			log.Warn("scanner: seen hashes unavailable", "table", table, "err", err)
			continue
		}
		hashes = append(hashes, hs...)
	}
	log.Info("scanner: run started", "keywords", len(keywords), "known_links", len(links), "known_hashes", len(hashes))

	norm := identity.Normalizer{ForumDomain: s.Settings.ForumDomain}
	pipe := pipeline.New(s.Settings, identity.NewRegistry(norm, links, hashes), s.AI)
	agg := digest.NewAggregator(s.Options.Digest)
	for src, n := range prior {
		agg.SetPrior(src, n)
	}
	for _, r := range s.Searchers {
		if rs, ok := r.(interface{ Reset() }); ok {
			rs.Reset()
		}
	}

	rows := map[model.Source][]storage.Row{}
	accepted := map[model.Source][]string{}
collect:
	for _, src := range sources {
		for i, kw := range keywords {
			if i > 0 && !sleep(ctx, s.Options.KeywordDelay) {
				break collect
			}
			posts := s.search(ctx, log, src, kw)
			rep.Candidates += len(posts)
			for _, p := range posts {
				if ctx.Err() != nil {
					break collect
				}
				out, called := s.process(ctx, pipe, p)
				if !out.Accepted {
					rep.Rejected[out.Stage]++
					log.Info("scanner: rejected", "source", src, "keyword", kw, "stage", out.Stage, "reason", out.Reason, "title", textutil.Ellipsis(p.Title, 40))
				} else {
					post := out.Post
					post.Link = pipe.Normalize(post.Link)
					if err := agg.Add(post, out.Analysis, out.IsQuestion); err != nil {
						log.Warn("scanner: digest refused post", "link", post.Link, "err", err)
						if !sleep(ctx, s.Options.PostDelay) {
							break collect
						}
						continue
					}
					rows[src] = append(rows[src], storage.NewRow(s.now(), post, out.Analysis))
					accepted[src] = append(accepted[src], post.ContentHash)
					rep.Accepted[src]++
					log.Info("scanner: accepted", "source", src, "keyword", kw, "mode", out.Analysis.Mode, "title", textutil.Ellipsis(post.Title, 40))
				}
				if called && !sleep(ctx, s.Options.PostDelay) {
					break collect
				}
			}
		}
	}

	// whatever was collected before a cancellation is still stored
	flushCtx := context.WithoutCancel(ctx)
	for _, src := range sources {
		table := s.table(src)
		saved := storage.Flush(flushCtx, s.Sheet, table, rows[src], s.Options.WritePace)
		rep.Saved[src] = saved
		if s.Seen == nil || len(accepted[src]) == 0 {
			continue
		}
		if saved != len(rows[src]) {
			log.Warn("scanner: not registering hashes after partial save", "table", table, "saved", saved, "expected", len(rows[src]))
			continue
		}
		if err := s.Seen.AddHashes(flushCtx, table, accepted[src], s.now()); err != nil {
			log.Warn("scanner: register hashes failed", "table", table, "err", err)
		}
	}

	rep.Digest = agg.Build(s.now())
	s.report(flushCtx, log, &rep)
	log.Info("scanner: run finished", "candidates", rep.Candidates, "total", rep.Digest.Total, "rejected", len(rep.Rejected))
	if err := ctx.Err(); err != nil {
		return rep, fmt.Errorf("scanner: interrupted: %w", err)
	}
	return rep, nil
}

func (s *Scanner) keywords(ctx context.Context, log *slog.Logger) ([]string, error) {
	var raw []string
	if s.Options.SettingsTable != "" {
		kws, err := s.Sheet.Keywords(ctx, s.Options.SettingsTable)
		if err != nil {
			log.Warn("scanner: search settings unreadable, using config keywords", "err", err)
		}
		raw = kws
	}
	if len(raw) == 0 {
		raw = s.Options.Keywords
	}
	seen := map[string]struct{}{}
	var out []string
	for _, k := range raw {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	if len(out) == 0 {
		return nil, ErrNoKeywords
	}
	return out, nil
}

func (s *Scanner) search(ctx context.Context, log *slog.Logger, src model.Source, kw string) []model.Post {
	var out []model.Post
	for _, r := range s.Searchers {
		posts, err := r.Search(ctx, src, kw)
		if err != nil {
			log.Warn("scanner: search failed", "source", src, "keyword", kw, "err", err)
		}
		out = append(out, posts...)
	}
	if src == model.SourceCafe && s.Options.CafeMaxPosts > 0 && len(out) > s.Options.CafeMaxPosts {
		out = out[:s.Options.CafeMaxPosts]
	}
	return out
}

// process fetches page content when needed and runs the pipeline. Known links
// are rejected before any fetch; called is false only for those.
func (s *Scanner) process(ctx context.Context, pipe *pipeline.Pipeline, p model.Post) (out pipeline.Outcome, called bool) {
	if pipe.Seen(p.Link) {
		return pipeline.Outcome{Stage: pipeline.StageDuplicate, Reason: "known link", Post: p}, false
	}
	if s.Fetcher != nil && (p.Source == model.SourceCafe || s.Options.BlogContent) {
		page := s.Fetcher.Fetch(ctx, p.Source, p.Link)
		if page.Content != model.ContentUnavailable || p.RawContent == "" {
			p.RawContent = page.Content
		}
		if len(page.Comments) > 0 {
			p.Comments = page.Comments
		}
		if p.GroupName == "" {
			p.GroupName = page.GroupName
		}
	}
	return pipe.Evaluate(ctx, p), true
}

// report sends the chat digest and writes and publishes the markdown one.
// Empty runs produce neither.
func (s *Scanner) report(ctx context.Context, log *slog.Logger, rep *Report) {
	d := rep.Digest
	if d.Empty() {
		log.Info("scanner: nothing new, skipping digest")
		return
	}
	if s.Notifier != nil {
		if err := s.Notifier.Send(ctx, digest.FormatText(d, s.Options.SheetURL)); err != nil {
			log.Warn("scanner: notify failed", "err", err)
		} else {
			rep.Notified = true
		}
	}

	slug := "viral-" + d.Date.Format("20060102-1504")
	md, err := digest.Markdown(d, digest.MarkdownOptions{
		Title:      s.Options.Title,
		Slug:       slug,
		Preface:    s.Options.Preface,
		Postscript: s.Options.Postscript,
	})
	if err != nil {
		log.Warn("scanner: render markdown failed", "err", err)
		return
	}
	if s.Options.OutputDir != "" {
		if err := os.MkdirAll(s.Options.OutputDir, 0o755); err != nil {
			log.Warn("scanner: create output dir failed", "err", err)
		} else {
			path := filepath.Join(s.Options.OutputDir, slug+".md")
			if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
				log.Warn("scanner: write markdown failed", "path", path, "err", err)
			} else {
				rep.Output = path
			}
		}
	}
	if s.Publisher != nil {
		if err := s.Publisher.Publish(ctx, md); err != nil {
			log.Warn("scanner: publish failed", "err", err)
		} else {
			log.Info("scanner: digest published", "slug", slug)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
