package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"viral-scout/internal/model"
)

const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>멍멍 블로그</title>
  <item>
    <title>강아지 &lt;b&gt;사료&lt;/b&gt; 바꾼 후기</title>
    <link>https://example.com/posts/1</link>
    <description>기호성이 좋아요</description>
    <pubDate>Sun, 08 Mar 2026 10:00:00 +0900</pubDate>
  </item>
  <item>
    <title>산책 일기</title>
    <link>https://example.com/posts/2</link>
    <description>오늘은 공원</description>
  </item>
</channel>
</rss>`

func TestSearchFiltersByKeyword(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rss))
	}))
	defer srv.Close()

	s := NewSearcher([]string{srv.URL}, time.Second)
	posts, err := s.Search(context.Background(), model.SourceBlog, "사료")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("posts = %+v", posts)
	}
	p := posts[0]
	if p.Title != "강아지 사료 바꾼 후기" || p.GroupName != "멍멍 블로그" || p.PublishedDate != "2026-03-08" {
		t.Fatalf("post = %+v", p)
	}

	if _, err := s.Search(context.Background(), model.SourceBlog, "산책"); err != nil {
		t.Fatalf("second search: %v", err)
	}
	if hits != 1 {
		t.Fatalf("feed fetched %d times, want 1", hits)
	}
	s.Reset()
	if _, err := s.Search(context.Background(), model.SourceBlog, "사료"); err != nil || hits != 2 {
		t.Fatalf("reset should refetch: hits=%d err=%v", hits, err)
	}
	if cafe, _ := s.Search(context.Background(), model.SourceCafe, "사료"); cafe != nil {
		t.Fatalf("feeds must not serve cafe results")
	}
}

func TestSearchReportsBrokenFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewSearcher([]string{srv.URL}, time.Second)
	if _, err := s.Search(context.Background(), model.SourceBlog, "사료"); err == nil {
		t.Fatalf("expected error for broken feed")
	}
}
