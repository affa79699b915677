package filter

import (
	"context"
	"errors"
	"testing"

	"viral-scout/internal/config"
	"viral-scout/internal/model"
)

type fakeAI struct {
	answer string
	err    error
	calls  int
}

func (f *fakeAI) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.calls++
	return f.answer, f.err
}

func (f *fakeAI) Name() string { return "fake" }

func settings() Settings {
	return Settings{
		Exclude:         []string{"레시피", "맛집"},
		Required:        []string{"사료", "간식"},
		Sponsored:       config.DefaultSponsoredPhrases,
		QuestionPhrases: config.DefaultQuestionPhrases,
		FilterSponsored: true,
		RelevanceCheck:  true,
	}
}

func TestBlacklistSkipsClassifier(t *testing.T) {
	f := &fakeAI{answer: "YES"}
	c := New(settings(), f)
	d := c.Evaluate(context.Background(), model.Post{Source: model.SourceBlog, Title: "강아지 사료 레시피"})
	if d.Accepted || d.Stage != StageBlacklist {
		t.Fatalf("decision = %+v", d)
	}
	if f.calls != 0 {
		t.Fatalf("classifier called %d times after blacklist rejection", f.calls)
	}
}

func TestRequiredKeyword(t *testing.T) {
	c := New(settings(), nil)
	d := c.Evaluate(context.Background(), model.Post{Source: model.SourceBlog, Title: "오늘의 산책"})
	if d.Accepted || d.Stage != StageRequired {
		t.Fatalf("decision = %+v", d)
	}

	s := settings()
	s.Required = nil
	if d := New(s, nil).Evaluate(context.Background(), model.Post{Source: model.SourceBlog, Title: "오늘의 산책"}); !d.Accepted {
		t.Fatalf("empty allowlist should pass, got %+v", d)
	}
}

func TestSponsoredBeatsRequiredKeyword(t *testing.T) {
	f := &fakeAI{answer: "YES"}
	c := New(settings(), f)
	d := c.Evaluate(context.Background(), model.Post{Source: model.SourceBlog, Keyword: "사료", Title: "XX사료 협찬 후기"})
	if d.Accepted || d.Stage != StageSponsored {
		t.Fatalf("decision = %+v", d)
	}
	if f.calls != 0 {
		t.Fatalf("sponsored stage must not consult AI, calls=%d", f.calls)
	}
}

func TestSponsoredLooksAtContentHead(t *testing.T) {
	c := New(settings(), nil)
	p := model.Post{Source: model.SourceBlog, Title: "사료 후기", RawContent: "이 글은 원고료를 받고 작성했습니다"}
	if d := c.Evaluate(context.Background(), p); d.Stage != StageSponsored {
		t.Fatalf("decision = %+v", d)
	}

	s := settings()
	s.FilterSponsored = false
	if d := New(s, nil).Evaluate(context.Background(), p); !d.Accepted {
		t.Fatalf("disabled sponsored filter rejected: %+v", d)
	}
}

func TestZeroEngagementRule(t *testing.T) {
	c := New(settings(), nil)
	p := model.Post{Source: model.SourceCafe, Title: "우리집 사료 바꿨어요", RawContent: "잘 먹네요"}
	d := c.Evaluate(context.Background(), p)
	if d.Accepted || d.Stage != StageZeroEngagement {
		t.Fatalf("decision = %+v", d)
	}

	p.Comments = []model.Comment{{Content: "저희도요"}}
	if d := c.Evaluate(context.Background(), p); !d.Accepted {
		t.Fatalf("post with a comment rejected: %+v", d)
	}
}

func TestQuestionWithoutCommentsIsKept(t *testing.T) {
	c := New(settings(), nil)
	p := model.Post{Source: model.SourceCafe, Title: "이 사료 어떤가요?", RawContent: "알러지가 있어서요"}
	d := c.Evaluate(context.Background(), p)
	if !d.Accepted || !d.IsQuestion {
		t.Fatalf("decision = %+v", d)
	}
}

func TestIsQuestion(t *testing.T) {
	f := &fakeAI{answer: "YES"}
	c := New(settings(), f)
	ctx := context.Background()

	if c.IsQuestion(ctx, "사료 어떤가요", "궁금해요") {
		t.Fatalf("no question mark must be false")
	}
	if f.calls != 0 {
		t.Fatalf("AI consulted without question mark")
	}
	if !c.IsQuestion(ctx, "간식 뭐 주세요？", "") {
		t.Fatalf("ambiguous question with YES classifier should be true")
	}
	if f.calls != 1 {
		t.Fatalf("calls = %d, want 1", f.calls)
	}

	failing := New(settings(), &fakeAI{err: errors.New("timeout")})
	if failing.IsQuestion(ctx, "간식 뭐 주세요?", "") {
		t.Fatalf("AI failure must default to not a question")
	}
	if New(settings(), nil).IsQuestion(ctx, "간식 뭐 주세요?", "") {
		t.Fatalf("no AI and no phrase must be false")
	}
}

func TestRelevanceStage(t *testing.T) {
	p := model.Post{Source: model.SourceBlog, Title: "고양이 간식 만들기"}
	ctx := context.Background()

	if d := New(settings(), &fakeAI{answer: "NO"}).Evaluate(ctx, p); d.Accepted || d.Stage != StageRelevance {
		t.Fatalf("explicit NO should reject, got %+v", d)
	}
	if d := New(settings(), &fakeAI{err: errors.New("503")}).Evaluate(ctx, p); !d.Accepted {
		t.Fatalf("AI error should keep post, got %+v", d)
	}
	if d := New(settings(), &fakeAI{answer: "잘 모르겠어요"}).Evaluate(ctx, p); !d.Accepted {
		t.Fatalf("unparseable answer should keep post, got %+v", d)
	}

	s := settings()
	s.RelevanceCheck = false
	f := &fakeAI{answer: "NO"}
	if d := New(s, f).Evaluate(ctx, p); !d.Accepted || f.calls != 0 {
		t.Fatalf("disabled relevance stage ran: %+v calls=%d", d, f.calls)
	}
}

func TestParseYesNo(t *testing.T) {
	cases := []struct {
		in      string
		yes, ok bool
	}{
		{"YES", true, true},
		{"yes.", true, true},
		{"\"NO\"", false, true},
		{"네, 관련 있습니다", true, true},
		{"아니요", false, true},
		{"Answer: NO", false, true},
		{"", false, false},
		{"글쎄요", false, false},
		{"NOTE: YES", true, true},
		{"**YES**", true, true},
		{"I KNOW", false, false},
		{"NOPE", false, false},
		{"I don't know, likely NO", false, true},
		{"YES or NO", true, true},
		{"maybe yes, maybe no", false, false},
	}
	for _, tc := range cases {
		yes, ok := ParseYesNo(tc.in)
		if yes != tc.yes || ok != tc.ok {
			t.Errorf("ParseYesNo(%q) = (%v, %v), want (%v, %v)", tc.in, yes, ok, tc.yes, tc.ok)
		}
	}
}
