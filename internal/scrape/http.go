package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"viral-scout/internal/model"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

// HTTPFetcher loads pages with a plain GET. It serves blog pages well; cafe
// articles usually need script execution and are better served by
// CloudflareClient.
type HTTPFetcher struct {
	http *http.Client
	ua   string
}

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultUserAgent
	}
	return &HTTPFetcher{http: &http.Client{Timeout: timeout}, ua: userAgent}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, src model.Source, u string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ResolveURL(u), nil)
	if err != nil {
		return Page{}, err
	}
	req.Header.Set("User-Agent", f.ua)
	resp, err := f.http.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Page{}, fmt.Errorf("scrape: GET %s: status %d", u, resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Page{}, err
	}
	return Extract(src, string(b))
}

// ResolveURL maps a blog post URL to its frame-less PostView page, whose HTML
// carries the post body directly. Other URLs are returned unchanged.
func ResolveURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Host, "blog.naver.com") {
		return raw
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return raw
	}
	q := url.Values{"blogId": {parts[0]}, "logNo": {parts[1]}}
	return u.Scheme + "://" + u.Host + "/PostView.naver?" + q.Encode()
}
