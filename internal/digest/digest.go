// Package digest accumulates accepted posts for one run and renders the
// end-of-run report.
package digest

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"viral-scout/internal/model"
	"viral-scout/internal/newsletter"
	"viral-scout/internal/textutil"
)

// ErrIrrelevant is returned when an off-topic analysis is offered to the
// aggregator.
var ErrIrrelevant = errors.New("digest: post is not domain relevant")

// MaxMessage bounds the text report, in runes.
const MaxMessage = 4000

// Entry is one accepted post with its analysis.
type Entry struct {
	Post       model.Post
	Analysis   model.AnalysisResult
	IsQuestion bool
}

// Options controls preview sizes.
type Options struct {
	PreviewPerKind int
	TitleWidth     int
	TopPerKeyword  int
}

func (o Options) withDefaults() Options {
	if o.PreviewPerKind <= 0 {
		o.PreviewPerKind = 5
	}
	if o.TitleWidth <= 0 {
		o.TitleWidth = 30
	}
	if o.TopPerKeyword <= 0 {
		o.TopPerKeyword = 2
	}
	return o
}

// Aggregator collects entries in acceptance order.
type Aggregator struct {
	opts    Options
	entries []Entry
	prior   map[model.Source]int
}

func NewAggregator(opts Options) *Aggregator {
	return &Aggregator{opts: opts.withDefaults(), prior: map[model.Source]int{}}
}

// SetPrior records how many rows a source already held before this run.
func (a *Aggregator) SetPrior(src model.Source, n int) { a.prior[src] = n }

// Add appends an accepted post. Irrelevant analyses are refused.
func (a *Aggregator) Add(p model.Post, res model.AnalysisResult, isQuestion bool) error {
	if !res.IsDomainRelevant {
		return ErrIrrelevant
	}
	a.entries = append(a.entries, Entry{Post: p, Analysis: res, IsQuestion: isQuestion})
	return nil
}

// Entries returns accepted entries for one source, in acceptance order.
func (a *Aggregator) Entries(src model.Source) []Entry {
	var out []Entry
	for _, e := range a.entries {
		if e.Post.Source == src {
			out = append(out, e)
		}
	}
	return out
}

// Len is the number of accepted entries.
func (a *Aggregator) Len() int { return len(a.entries) }

// Preview is one truncated line of the report.
type Preview struct {
	Keyword string
	Title   string
	Link    string
}

// SourceSummary counts and previews one source.
type SourceSummary struct {
	Source    model.Source
	New       int
	Total     int
	Previews  []Preview
	Overflow  int
	Fallbacks int
	Questions int
	entries   []Entry
}

// KeywordTop holds the leading titles for one keyword.
type KeywordTop struct {
	Keyword string
	Titles  []string
}

// Digest is the pure summary of a run.
type Digest struct {
	Date      time.Time
	Total     int
	Sources   []SourceSummary
	Top       []KeywordTop
	Questions []Preview
}

// Empty reports whether nothing new was accepted.
func (d Digest) Empty() bool { return d.Total == 0 }

// Build summarizes the collected entries. Sources appear blog first, then cafe.
func (a *Aggregator) Build(now time.Time) Digest {
	d := Digest{Date: now, Total: len(a.entries)}
	for _, src := range []model.Source{model.SourceBlog, model.SourceCafe} {
		entries := a.Entries(src)
		s := SourceSummary{
			Source:  src,
			New:     len(entries),
			Total:   a.prior[src] + len(entries),
			entries: entries,
		}
		for i, e := range entries {
			if i < a.opts.PreviewPerKind {
				s.Previews = append(s.Previews, a.preview(e))
			}
			if e.Analysis.Mode.Fallback() {
				s.Fallbacks++
			}
			if e.IsQuestion {
				s.Questions++
				d.Questions = append(d.Questions, a.preview(e))
			}
		}
		if len(entries) > a.opts.PreviewPerKind {
			s.Overflow = len(entries) - a.opts.PreviewPerKind
		}
		d.Sources = append(d.Sources, s)
	}
	d.Top = a.topPerKeyword()
	return d
}

func (a *Aggregator) preview(e Entry) Preview {
	return Preview{
		Keyword: e.Post.Keyword,
		Title:   textutil.Ellipsis(e.Post.Title, a.opts.TitleWidth),
		Link:    e.Post.Link,
	}
}

// topPerKeyword ranks each keyword's entries by comment count, keeping
// acceptance order for ties. Keywords appear in first-seen order.
func (a *Aggregator) topPerKeyword() []KeywordTop {
	var order []string
	byKeyword := map[string][]Entry{}
	for _, e := range a.entries {
		k := e.Post.Keyword
		if _, ok := byKeyword[k]; !ok {
			order = append(order, k)
		}
		byKeyword[k] = append(byKeyword[k], e)
	}
	out := make([]KeywordTop, 0, len(order))
	for _, k := range order {
		es := byKeyword[k]
		sort.SliceStable(es, func(i, j int) bool {
			return len(es[i].Post.Comments) > len(es[j].Post.Comments)
		})
		top := KeywordTop{Keyword: k}
		for i := 0; i < len(es) && i < a.opts.TopPerKeyword; i++ {
			top.Titles = append(top.Titles, textutil.Ellipsis(es[i].Post.Title, a.opts.TitleWidth))
		}
		out = append(out, top)
	}
	return out
}

// FormatText renders the chat message. The result never exceeds MaxMessage
// runes.
func FormatText(d Digest, sheetURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "오늘 총 %d개의 글이 수집되었습니다!\n\n", d.Total)
	for _, s := range d.Sources {
		fmt.Fprintf(&b, "%s : +%d/%d\n", s.Source.Label(), s.New, s.Total)
	}
	b.WriteString("\n")
	for _, s := range d.Sources {
		if len(s.Previews) == 0 {
			continue
		}
		fmt.Fprintf(&b, "【%s】\n", s.Source.Label())
		for _, p := range s.Previews {
			fmt.Fprintf(&b, " - [%s] %s\n", p.Keyword, p.Title)
		}
		if s.Overflow > 0 {
			fmt.Fprintf(&b, " ... 외 %d개\n", s.Overflow)
		}
		b.WriteString("\n")
	}
	if sheetURL != "" {
		fmt.Fprintf(&b, "👉 %s", sheetURL)
	}
	return textutil.Head(strings.TrimRight(b.String(), "\n"), MaxMessage)
}

// MarkdownOptions carries the config-provided text of the markdown digest.
type MarkdownOptions struct {
	Title      string
	Slug       string
	Preface    string
	Postscript string
}

// Markdown renders the full digest with YAML frontmatter.
func Markdown(d Digest, o MarkdownOptions) (string, error) {
	data := newsletter.Data{
		Title:      newsletter.ExpandVars(o.Title, d.Date, d.Total),
		Slug:       o.Slug,
		Datetime:   d.Date.Format("2006-01-02 15:04"),
		Preface:    newsletter.ExpandVars(o.Preface, d.Date, d.Total),
		Postscript: newsletter.ExpandVars(o.Postscript, d.Date, d.Total),
		Total:      d.Total,
	}
	for _, s := range d.Sources {
		sec := newsletter.Section{Name: s.Source.Label(), New: s.New, Total: s.Total}
		for _, e := range s.entries {
			sec.Items = append(sec.Items, newsletter.Item{
				Title:     e.Post.Title,
				URL:       e.Post.Link,
				Keyword:   e.Post.Keyword,
				Group:     e.Post.GroupName,
				Date:      e.Post.PublishedDate,
				Summary:   e.Analysis.Summary,
				Brands:    e.Analysis.BrandMentionsText(),
				Sentiment: e.Analysis.Sentiment.Label(),
				Comments:  len(e.Post.Comments),
				Question:  e.IsQuestion,
			})
		}
		data.Sections = append(data.Sections, sec)
	}
	for _, t := range d.Top {
		data.Highlights = append(data.Highlights, newsletter.Highlight{Keyword: t.Keyword, Titles: t.Titles})
	}
	return newsletter.Render(data)
}
