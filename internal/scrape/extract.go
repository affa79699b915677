// Package scrape obtains post bodies and comments from blog and cafe pages.
package scrape

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"viral-scout/internal/model"
	"viral-scout/internal/textutil"
)

// ErrNoContent means the page loaded but no known content container held
// usable text.
var ErrNoContent = errors.New("scrape: no content found")

const (
	maxContent     = 2000
	minBlogContent = 100
	maxComments    = 20
)

// Page is what the pipeline needs from a post page.
type Page struct {
	Content   string
	Comments  []model.Comment
	GroupName string
}

// Fetcher loads one page.
type Fetcher interface {
	Fetch(ctx context.Context, src model.Source, url string) (Page, error)
}

var (
	blogSelectors  = []string{".se-main-container", "#postViewArea"}
	cafeSelectors  = []string{".ContentRenderer", ".se-main-container", "#postContent", ".post-content"}
	groupSelectors = []string{"h1.tit", ".cafe_name", ".gnb_cafe_title a", "h1.title_text"}
)

// Extract pulls content (and for cafes, comments and the cafe name) out of
// rendered HTML.
func Extract(src model.Source, html string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Page{}, err
	}
	if src == model.SourceCafe {
		return extractCafe(doc)
	}
	return extractBlog(doc)
}

func extractBlog(doc *goquery.Document) (Page, error) {
	for _, sel := range blogSelectors {
		if text := selectionText(doc.Find(sel).First()); utf8.RuneCountInString(text) > minBlogContent {
			return Page{Content: text}, nil
		}
	}
	var parts []string
	doc.Find("p[class*='se-text'], div[class*='se-text']").Each(func(_ int, s *goquery.Selection) {
		if t := textutil.CollapseSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if text := textutil.Head(strings.Join(parts, " "), maxContent); utf8.RuneCountInString(text) > minBlogContent {
		return Page{Content: text}, nil
	}
	return Page{}, ErrNoContent
}

func extractCafe(doc *goquery.Document) (Page, error) {
	var p Page
	for _, sel := range cafeSelectors {
		if text := selectionText(doc.Find(sel).First()); text != "" {
			p.Content = text
			break
		}
	}
	doc.Find(".CommentItem").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := textutil.CollapseSpace(s.Find(".comment_text_view").First().Text())
		if text != "" {
			p.Comments = append(p.Comments, model.Comment{
				Author:  textutil.CollapseSpace(s.Find(".comment_nickname").First().Text()),
				Content: text,
			})
		}
		return len(p.Comments) < maxComments
	})
	p.GroupName = groupName(doc)
	if p.Content == "" {
		return p, ErrNoContent
	}
	return p, nil
}

func groupName(doc *goquery.Document) string {
	for _, sel := range groupSelectors {
		name := textutil.CollapseSpace(doc.Find(sel).First().Text())
		if name == "" {
			continue
		}
		// "카페명 - 부제" keeps the first part
		name = strings.SplitN(name, "-", 2)[0]
		name = strings.SplitN(name, "|", 2)[0]
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	if v, ok := doc.Find(`meta[property="og:site_name"]`).First().Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func selectionText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	return textutil.Head(textutil.CollapseSpace(s.Text()), maxContent)
}
