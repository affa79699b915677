// Package naver searches Naver blog posts and cafe articles through the
// Naver OpenAPI.
package naver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"viral-scout/internal/model"
	"viral-scout/internal/textutil"
)

type Client struct {
	baseURL string
	client  *http.Client
	id      string
	secret  string
	display int
	sort    string
}

// Options configures NewClient.
type Options struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Display      int    // results per query, at most 100
	Sort         string // sim or date
	Timeout      time.Duration
}

func NewClient(o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Display <= 0 || o.Display > 100 {
		o.Display = 30
	}
	if o.Sort == "" {
		o.Sort = "date"
	}
	return &Client{
		baseURL: strings.TrimRight(o.BaseURL, "/"),
		client:  &http.Client{Timeout: o.Timeout},
		id:      o.ClientID,
		secret:  o.ClientSecret,
		display: o.Display,
		sort:    o.Sort,
	}
}

// item is the union of blog and cafe result fields used by this service.
type item struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	BloggerName string `json:"bloggername"`
	PostDate    string `json:"postdate"`
	CafeName    string `json:"cafename"`
}

type searchResponse struct {
	Items []item `json:"items"`
}

// Search queries one source for keyword. Titles and descriptions come back
// with highlight markup, which is stripped here.
func (c *Client) Search(ctx context.Context, src model.Source, keyword string) ([]model.Post, error) {
	if c.id == "" || c.secret == "" {
		return nil, errors.New("naver: client id and secret are required")
	}
	path := "/v1/search/blog.json"
	if src == model.SourceCafe {
		path = "/v1/search/cafearticle.json"
	}
	q := url.Values{
		"query":   {keyword},
		"display": {strconv.Itoa(c.display)},
		"sort":    {c.sort},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Naver-Client-Id", c.id)
	req.Header.Set("X-Naver-Client-Secret", c.secret)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("naver: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var raw searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("naver: decode: %w", err)
	}
	posts := make([]model.Post, 0, len(raw.Items))
	for _, it := range raw.Items {
		if it.Link == "" {
			continue
		}
		posts = append(posts, model.Post{
			Source:        src,
			Keyword:       keyword,
			Title:         textutil.StripMarkup(it.Title),
			Description:   textutil.StripMarkup(it.Description),
			Link:          it.Link,
			Author:        it.BloggerName,
			GroupName:     it.CafeName,
			PublishedDate: FormatPostDate(it.PostDate),
		})
	}
	return posts, nil
}

// FormatPostDate turns yyyymmdd into yyyy-mm-dd; other input is returned as is.
func FormatPostDate(s string) string {
	t, err := time.Parse("20060102", strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}
