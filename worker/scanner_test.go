package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"viral-scout/internal/config"
	"viral-scout/internal/filter"
	"viral-scout/internal/model"
	"viral-scout/internal/pipeline"
	"viral-scout/internal/scrape"
	"viral-scout/internal/storage"
)

type fakeSearcher struct {
	results  map[model.Source][]model.Post
	searched []string
	resets   int
}

func (f *fakeSearcher) Search(ctx context.Context, src model.Source, keyword string) ([]model.Post, error) {
	f.searched = append(f.searched, string(src)+":"+keyword)
	var out []model.Post
	for _, p := range f.results[src] {
		p.Source = src
		p.Keyword = keyword
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeSearcher) Reset() { f.resets++ }

type brokenSearcher struct{}

func (brokenSearcher) Search(ctx context.Context, src model.Source, keyword string) ([]model.Post, error) {
	return nil, errors.New("quota exceeded")
}

type fakeFetcher struct {
	pages map[string]scrape.Page
	urls  []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, src model.Source, u string) scrape.Page {
	f.urls = append(f.urls, u)
	if p, ok := f.pages[u]; ok {
		return p
	}
	return scrape.Page{Content: model.ContentUnavailable}
}

type fakeSeen struct {
	prior map[string][]string
	added map[string][]string
}

func (f *fakeSeen) SeenHashes(ctx context.Context, table string, now time.Time) ([]string, error) {
	return f.prior[table], nil
}

func (f *fakeSeen) AddHashes(ctx context.Context, table string, hashes []string, now time.Time) error {
	if f.added == nil {
		f.added = map[string][]string{}
	}
	f.added[table] = append(f.added[table], hashes...)
	return nil
}

type fakeNotifier struct{ sent []string }

func (f *fakeNotifier) Send(ctx context.Context, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

type fakePublisher struct{ docs []string }

func (f *fakePublisher) Publish(ctx context.Context, md string) error {
	f.docs = append(f.docs, md)
	return nil
}

func openSheet(t *testing.T) *storage.SQLite {
	t.Helper()
	s, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "scout.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newScanner(t *testing.T, sheet storage.Sheet, searchers ...Searcher) *Scanner {
	t.Helper()
	var cfg config.Config
	cfg.FillDefaults()
	loc := time.FixedZone("KST", 9*60*60)
	return &Scanner{
		Searchers: searchers,
		Sheet:     sheet,
		Settings:  pipeline.SettingsFromConfig(cfg),
		Options: Options{
			Keywords:      []string{"사료"},
			BlogTable:     "blog",
			CafeTable:     "cafe",
			SettingsTable: "settings",
			EnableBlog:    true,
			EnableCafe:    true,
			CafeMaxPosts:  20,
			Location:      loc,
			OutputDir:     t.TempDir(),
			Title:         "반려동물 리포트 {.CurrentDate}",
		},
		Now: func() time.Time { return time.Date(2026, 3, 9, 9, 30, 0, 0, loc) },
	}
}

func TestScannerRun(t *testing.T) {
	ctx := context.Background()
	sheet := openSheet(t)
	if err := sheet.EnsureHeader(ctx, "cafe", storage.CafeHeader); err != nil {
		t.Fatal(err)
	}
	old := storage.Row{"2026-03-08 09:00:00", "사료", "강사모", "예전 글", "", "https://cafe.naver.com/dog/1", "", "0", "", ""}
	if err := sheet.AppendRow(ctx, "cafe", old); err != nil {
		t.Fatal(err)
	}

	search := &fakeSearcher{results: map[model.Source][]model.Post{
		model.SourceBlog: {
			{Title: "XX사료 협찬 후기", Description: "맛있게 먹어요", Link: "https://blog.naver.com/a/1"},
			{Title: "강아지 사료 바꾼 후기", Description: "기호성이 좋아서 로얄캐닌으로 바꿨어요", Link: "https://blog.naver.com/b/2", Author: "멍멍"},
			{Title: "강아지 사료 바꾼 후기", Description: "기호성이 좋아서 로얄캐닌으로 바꿨어요", Link: "https://blog.naver.com/b/2", Author: "멍멍"},
		},
		model.SourceCafe: {
			{Title: "사료 추천?", Link: "https://cafe.naver.com/dog/1?art=xyz"},
			{Title: "사료 추천 부탁드려요?", Link: "https://cafe.naver.com/dog/2?art=abc"},
			{Title: "오늘 산책", Link: "https://cafe.naver.com/dog/3"},
		},
	}}
	fetch := &fakeFetcher{pages: map[string]scrape.Page{
		"https://cafe.naver.com/dog/2?art=abc": {
			Content:   "눈물자국 때문에 사료를 바꾸려고 해요. 어떤 게 좋을까요",
			Comments:  []model.Comment{{Author: "a", Content: "나우 먹여보세요"}},
			GroupName: "강사모",
		},
		"https://cafe.naver.com/dog/3": {Content: "공원에 다녀왔어요"},
	}}
	seen := &fakeSeen{}
	note := &fakeNotifier{}
	pub := &fakePublisher{}

	s := newScanner(t, sheet, search, brokenSearcher{})
	s.Fetcher = fetch
	s.Seen = seen
	s.Notifier = note
	s.Publisher = pub

	rep, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.RunID == "" || search.resets != 1 {
		t.Fatalf("run id %q, resets %d", rep.RunID, search.resets)
	}
	if rep.Accepted[model.SourceBlog] != 1 || rep.Accepted[model.SourceCafe] != 1 {
		t.Fatalf("accepted = %v", rep.Accepted)
	}
	wantRejected := map[filter.Stage]int{
		filter.StageSponsored:      1,
		pipeline.StageDuplicate:    2,
		filter.StageZeroEngagement: 1,
	}
	for stage, n := range wantRejected {
		if rep.Rejected[stage] != n {
			t.Errorf("rejected[%s] = %d, want %d (all: %v)", stage, rep.Rejected[stage], n, rep.Rejected)
		}
	}

	// the known cafe link is never fetched; blog previews are used as-is
	wantURLs := []string{"https://cafe.naver.com/dog/2?art=abc", "https://cafe.naver.com/dog/3"}
	if strings.Join(fetch.urls, " ") != strings.Join(wantURLs, " ") {
		t.Fatalf("fetched %v", fetch.urls)
	}

	cafeLinks, err := sheet.ExistingLinks(ctx, "cafe", storage.CafeLinkColumn)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(cafeLinks, " ") != "https://cafe.naver.com/dog/1 https://cafe.naver.com/dog/2" {
		t.Fatalf("cafe links = %v", cafeLinks)
	}
	blogLinks, _ := sheet.ExistingLinks(ctx, "blog", storage.BlogLinkColumn)
	if len(blogLinks) != 1 || blogLinks[0] != "https://blog.naver.com/b/2" {
		t.Fatalf("blog links = %v", blogLinks)
	}
	if rep.Saved[model.SourceBlog] != 1 || rep.Saved[model.SourceCafe] != 1 {
		t.Fatalf("saved = %v", rep.Saved)
	}
	if len(seen.added["blog"]) != 1 || len(seen.added["cafe"]) != 1 {
		t.Fatalf("registered hashes = %v", seen.added)
	}

	if len(note.sent) != 1 {
		t.Fatalf("notifications = %d", len(note.sent))
	}
	msg := note.sent[0]
	for _, want := range []string{"오늘 총 2개의 글이 수집되었습니다!", "블로그 : +1/1", "카페 : +1/2", "[사료] 강아지 사료 바꾼 후기"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
	if !rep.Notified || rep.Digest.Total != 2 || len(rep.Digest.Questions) != 1 {
		t.Fatalf("report = %+v", rep)
	}

	if rep.Output == "" {
		t.Fatalf("markdown digest not written")
	}
	b, err := os.ReadFile(rep.Output)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(rep.Output) != "viral-20260309-0930.md" || !strings.Contains(string(b), "반려동물 리포트 2026-03-09") {
		t.Fatalf("markdown %s:\n%s", rep.Output, b)
	}
	if len(pub.docs) != 1 || pub.docs[0] != string(b) {
		t.Fatalf("published %d docs", len(pub.docs))
	}
}

func TestScannerSecondRunFindsNothingNew(t *testing.T) {
	ctx := context.Background()
	sheet := openSheet(t)
	search := &fakeSearcher{results: map[model.Source][]model.Post{
		model.SourceBlog: {{Title: "강아지 간식 후기", Description: "잘 먹어요", Link: "https://blog.naver.com/c/3"}},
	}}
	note := &fakeNotifier{}
	s := newScanner(t, sheet, search)
	s.Options.EnableCafe = false
	s.Notifier = note

	if rep, err := s.Run(ctx); err != nil || rep.Digest.Total != 1 {
		t.Fatalf("first run: total=%d err=%v", rep.Digest.Total, err)
	}
	rep, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if rep.Digest.Total != 0 || rep.Rejected[pipeline.StageDuplicate] != 1 {
		t.Fatalf("second run report = %+v", rep)
	}
	if len(note.sent) != 1 || rep.Output != "" {
		t.Fatalf("empty run must not notify or write: sent=%d output=%q", len(note.sent), rep.Output)
	}
}

func TestScannerKnownHashAcrossRuns(t *testing.T) {
	sheet := openSheet(t)
	post := model.Post{Title: "고양이 습식 사료 후기", Description: "잘 먹어요", Author: "냥", Link: "https://blog.naver.com/d/4?from=search"}
	search := &fakeSearcher{results: map[model.Source][]model.Post{model.SourceBlog: {post}}}
	seen := &fakeSeen{}
	s := newScanner(t, sheet, search)
	s.Options.EnableCafe = false
	s.Seen = seen
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// same content under a new link, with a fresh store
	search.results[model.SourceBlog][0].Link = "https://blog.naver.com/d/5"
	s2 := newScanner(t, openSheet(t), search)
	s2.Options.EnableCafe = false
	s2.Seen = &fakeSeen{prior: seen.added}
	rep, err := s2.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Digest.Total != 0 || rep.Rejected[pipeline.StageDuplicate] != 1 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestScannerKeywordsFromSettingsTable(t *testing.T) {
	ctx := context.Background()
	sheet := openSheet(t)
	for _, k := range []string{"간식", "영양제", "간식"} {
		if err := sheet.AddKeyword(ctx, "settings", k); err != nil {
			t.Fatal(err)
		}
	}
	search := &fakeSearcher{}
	s := newScanner(t, sheet, search)
	rep, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Join(rep.Keywords, ",") != "간식,영양제" {
		t.Fatalf("keywords = %v", rep.Keywords)
	}
	want := "blog:간식 blog:영양제 cafe:간식 cafe:영양제"
	if got := strings.Join(search.searched, " "); got != want {
		t.Fatalf("search order = %q", got)
	}
}

func TestScannerNoKeywordsIsSetupFailure(t *testing.T) {
	s := newScanner(t, openSheet(t), &fakeSearcher{})
	s.Options.Keywords = nil
	if _, err := s.Run(context.Background()); !errors.Is(err, ErrNoKeywords) {
		t.Fatalf("err = %v, want ErrNoKeywords", err)
	}
}

func TestScannerCafeCap(t *testing.T) {
	var posts []model.Post
	for _, id := range []string{"1", "2", "3"} {
		posts = append(posts, model.Post{Title: "산책 " + id, Link: "https://cafe.naver.com/x/" + id})
	}
	search := &fakeSearcher{results: map[model.Source][]model.Post{model.SourceCafe: posts}}
	fetch := &fakeFetcher{}
	s := newScanner(t, openSheet(t), search)
	s.Options.EnableBlog = false
	s.Options.CafeMaxPosts = 2
	s.Fetcher = fetch
	rep, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Candidates != 2 || len(fetch.urls) != 2 {
		t.Fatalf("candidates=%d fetched=%d", rep.Candidates, len(fetch.urls))
	}
}

func TestManagerReturnsWorkerError(t *testing.T) {
	s := newScanner(t, openSheet(t), &fakeSearcher{})
	s.Options.Keywords = nil
	m := NewManager(&Periodic{Scanner: s, Interval: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.Start(ctx); !errors.Is(err, ErrNoKeywords) {
		t.Fatalf("err = %v", err)
	}
}

type clockAI struct{ calls []time.Time }

func (c *clockAI) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	c.calls = append(c.calls, time.Now())
	return `{"반려동물관련": true, "요약": "강아지가 새 사료를 잘 먹는다는 후기입니다.", "감성": "긍정"}`, nil
}

func (c *clockAI) Name() string { return "clock" }

func TestScannerPacesUnfetchedBlogPosts(t *testing.T) {
	const delay = 50 * time.Millisecond
	var posts []model.Post
	for _, id := range []string{"1", "2", "3"} {
		posts = append(posts, model.Post{Title: "강아지 사료 후기 " + id, Description: "잘 먹어요 " + id, Author: id, Link: "https://blog.naver.com/p/" + id})
	}
	search := &fakeSearcher{results: map[model.Source][]model.Post{model.SourceBlog: posts}}
	clock := &clockAI{}
	s := newScanner(t, openSheet(t), search)
	s.Options.EnableCafe = false
	s.Options.PostDelay = delay
	s.Settings.Filter.RelevanceCheck = false
	s.AI = clock

	rep, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Accepted[model.SourceBlog] != 3 || len(clock.calls) != 3 {
		t.Fatalf("accepted=%d ai calls=%d", rep.Accepted[model.SourceBlog], len(clock.calls))
	}
	for i := 1; i < len(clock.calls); i++ {
		if gap := clock.calls[i].Sub(clock.calls[i-1]); gap < delay {
			t.Errorf("ai calls %d and %d only %v apart, want >= %v", i-1, i, gap, delay)
		}
	}
}

func TestScannerSkipsPacingForKnownLinks(t *testing.T) {
	ctx := context.Background()
	sheet := openSheet(t)
	if err := sheet.EnsureHeader(ctx, "blog", storage.BlogHeader); err != nil {
		t.Fatal(err)
	}
	var posts []model.Post
	for _, id := range []string{"1", "2", "3"} {
		link := "https://blog.naver.com/k/" + id
		row := storage.Row{"2026-03-08 09:00:00", "사료", "예전 글", "", link, storage.StatusNew, "", "", "", "", ""}
		if err := sheet.AppendRow(ctx, "blog", row); err != nil {
			t.Fatal(err)
		}
		posts = append(posts, model.Post{Title: "예전 글 " + id, Link: link})
	}
	search := &fakeSearcher{results: map[model.Source][]model.Post{model.SourceBlog: posts}}
	s := newScanner(t, sheet, search)
	s.Options.EnableCafe = false
	s.Options.PostDelay = time.Hour

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rep, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("known links must not wait: %v", err)
	}
	if rep.Rejected[pipeline.StageDuplicate] != 3 {
		t.Fatalf("rejected = %v", rep.Rejected)
	}
}

func TestScannerKeywordDelay(t *testing.T) {
	const delay = 40 * time.Millisecond
	search := &fakeSearcher{}
	s := newScanner(t, openSheet(t), search)
	s.Options.Keywords = []string{"사료", "간식", "영양제"}
	s.Options.EnableCafe = false
	s.Options.KeywordDelay = delay

	start := time.Now()
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 2*delay {
		t.Fatalf("three keywords took %v, want >= %v", elapsed, 2*delay)
	}
	if len(search.searched) != 3 {
		t.Fatalf("searched = %v", search.searched)
	}
}
