package identity

import (
	"strings"
	"testing"

	"viral-scout/internal/model"
)

func TestNormalizeLinkStripsForumQuery(t *testing.T) {
	in := "https://cafe.naver.com/dogpalza/1234?art=ZXh0ZXJuYWw&tc=naver_search"
	want := "https://cafe.naver.com/dogpalza/1234"
	if got := NormalizeLink(in); got != want {
		t.Fatalf("NormalizeLink = %q, want %q", got, want)
	}
	if got := NormalizeLink(want); got != want {
		t.Fatalf("not idempotent: %q", got)
	}
}

func TestNormalizeLinkLeavesOtherDomains(t *testing.T) {
	in := "https://blog.naver.com/PostView.naver?blogId=a&logNo=1"
	if got := NormalizeLink(in); got != in {
		t.Fatalf("blog link changed: %q", got)
	}
}

func TestNormalizeLinkMalformed(t *testing.T) {
	for _, in := range []string{"%zz://bad", "not a url", "https://cafe.naver.com/", ""} {
		if got := NormalizeLink(in); got != in {
			t.Errorf("NormalizeLink(%q) = %q", in, got)
		}
	}
}

func TestContentHashStable(t *testing.T) {
	long := strings.Repeat("가", 100)
	a := ContentHash("카페회원", "사료 추천", long+"뒤쪽은 무시")
	b := ContentHash("카페회원", "사료 추천", long+"다른 꼬리")
	if a != b {
		t.Fatalf("hash should only use first 100 runes of content")
	}
	if a != ContentHash("카페회원", "사료 추천", long) {
		t.Fatalf("hash not stable")
	}
	if a == ContentHash("다른회원", "사료 추천", long) {
		t.Fatalf("author must affect hash")
	}
}

func TestRegistryRejectsKnownLink(t *testing.T) {
	known := "https://cafe.naver.com/dogpalza/1234"
	r := NewRegistry(Normalizer{}, []string{known}, nil)
	p := model.Post{Link: known + "?art=abc", Title: "완전히 다른 제목"}
	v := r.Check(p)
	if !v.Duplicate || v.Reason != "link" {
		t.Fatalf("verdict = %+v", v)
	}
}

func TestRegistryRejectsKnownHashWithDifferentLink(t *testing.T) {
	p := model.Post{Author: "카페회원", Title: "사료 바꿨어요", RawContent: "본문"}
	p.ContentHash = HashPost(p)
	r := NewRegistry(Normalizer{}, []string{"https://cafe.naver.com/a/1"}, []string{p.ContentHash})

	p.Link = "https://cafe.naver.com/b/2?ref=search"
	v := r.Check(p)
	if !v.Duplicate || v.Reason != "hash" {
		t.Fatalf("verdict = %+v", v)
	}
}

func TestRegistryAcceptWithinRun(t *testing.T) {
	r := NewRegistry(Normalizer{}, nil, nil)
	p := model.Post{Link: "https://cafe.naver.com/a/1?x=1", ContentHash: "h1"}
	if r.Check(p).Duplicate {
		t.Fatalf("fresh registry reported duplicate")
	}
	r.Accept(p)
	p.Link = "https://cafe.naver.com/a/1?x=2"
	if !r.Check(p).Duplicate {
		t.Fatalf("second sighting in the same run should be duplicate")
	}
	if r.PriorLinks() != 0 {
		t.Fatalf("run acceptances must not change prior set")
	}
}
