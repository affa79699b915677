// Package filter decides whether a candidate post is worth enriching.
package filter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"viral-scout/internal/ai"
	"viral-scout/internal/model"
	"viral-scout/internal/textutil"
)

// Stage names a filter step; rejections carry the stage that fired.
type Stage string

const (
	StageBlacklist      Stage = "blacklist"
	StageRequired       Stage = "required_keyword"
	StageSponsored      Stage = "sponsored"
	StageQuestion       Stage = "question"
	StageZeroEngagement Stage = "zero_engagement"
	StageRelevance      Stage = "ai_relevance"
)

const (
	sponsoredWindow = 500
	questionWindow  = 200
	promptWindow    = 300
	yesNoTokens     = 10
)

// Settings is the frozen filter configuration.
type Settings struct {
	Exclude         []string
	Required        []string
	Sponsored       []string
	QuestionPhrases []string
	FilterSponsored bool
	// RelevanceCheck enables the AI topicality stage.
	RelevanceCheck bool
}

// Decision is the outcome of running the chain on one post.
type Decision struct {
	Accepted   bool
	Stage      Stage
	Reason     string
	IsQuestion bool
}

func reject(stage Stage, reason string) Decision {
	return Decision{Stage: stage, Reason: reason}
}

// Chain runs the stages in fixed order and stops at the first rejection.
type Chain struct {
	s  Settings
	ai ai.Completer
}

// New builds a chain. completer may be nil, in which case the AI-backed
// decisions take their conservative defaults.
func New(s Settings, completer ai.Completer) *Chain {
	return &Chain{s: s, ai: completer}
}

// Evaluate runs every stage against p.
func (c *Chain) Evaluate(ctx context.Context, p model.Post) Decision {
	content := p.BestContent()

	if term, ok := containsAny(p.Title, c.s.Exclude); ok {
		return reject(StageBlacklist, fmt.Sprintf("title contains %q", term))
	}
	if len(c.s.Required) > 0 {
		if _, ok := containsAny(p.Title, c.s.Required); !ok {
			return reject(StageRequired, "title has no required keyword")
		}
	}
	if c.s.FilterSponsored {
		if term, ok := containsAny(p.Title+" "+textutil.Head(content, sponsoredWindow), c.s.Sponsored); ok {
			return reject(StageSponsored, fmt.Sprintf("sponsorship phrase %q", term))
		}
	}

	var question bool
	if p.Source == model.SourceCafe {
		question = c.IsQuestion(ctx, p.Title, content)
		if len(p.Comments) == 0 && !question {
			return reject(StageZeroEngagement, "no comments and not a question")
		}
	}

	if c.s.RelevanceCheck && c.ai != nil {
		if !c.relevant(ctx, p.Title, content) {
			d := reject(StageRelevance, "classifier answered NO")
			d.IsQuestion = question
			return d
		}
	}
	return Decision{Accepted: true, IsQuestion: question}
}

// IsQuestion reports whether a forum post is a genuine product question.
// Without a question mark in the title it never consults the AI.
func (c *Chain) IsQuestion(ctx context.Context, title, content string) bool {
	if !strings.ContainsAny(title, "?？") {
		return false
	}
	if _, ok := containsAny(title+" "+textutil.Head(content, questionWindow), c.s.QuestionPhrases); ok {
		return true
	}
	if c.ai == nil {
		return false
	}
	prompt := fmt.Sprintf(`다음 글이 제품에 대한 진짜 질문글인지 판단해주세요:

제목: %s
본문: %s

진짜 질문이란:
- 구매 전 고민/문의
- 사용 경험 물어봄
- 추천 요청

YES 또는 NO로만 답변:`, title, textutil.Head(content, promptWindow))
	resp, err := c.ai.Complete(ctx, prompt, yesNoTokens)
	if err != nil {
		slog.Warn("filter: question classifier failed", "err", err)
		return false
	}
	yes, ok := ParseYesNo(resp)
	return ok && yes
}

func (c *Chain) relevant(ctx context.Context, title, content string) bool {
	prompt := fmt.Sprintf(`다음 글이 "반려동물(강아지/고양이) 사료, 간식, 영양제" 관련 내용인지 판단해주세요.
사람이 먹는 음식, 한식 레시피, 맛집, 인테리어 등은 관련 없습니다.

제목: %s
요약: %s

답변은 "YES" 또는 "NO"로만 해주세요.`, title, textutil.Head(content, promptWindow))
	resp, err := c.ai.Complete(ctx, prompt, yesNoTokens)
	if err != nil {
		slog.Warn("filter: relevance classifier failed, keeping post", "err", err)
		return true
	}
	yes, ok := ParseYesNo(resp)
	if !ok {
		slog.Debug("filter: unparseable relevance answer, keeping post", "answer", resp)
		return true
	}
	return yes
}

// ParseYesNo reads a strict yes/no answer. A leading YES or NO word decides;
// otherwise exactly one of the two must appear as a whole word. ok is false
// when the answer is neither.
func ParseYesNo(s string) (yes, ok bool) {
	words := strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return false, false
	}
	if isYes(words[0]) {
		return true, true
	}
	if isNo(words[0]) {
		return false, true
	}
	var hasYes, hasNo bool
	for _, w := range words[1:] {
		hasYes = hasYes || isYes(w)
		hasNo = hasNo || isNo(w)
	}
	if hasYes != hasNo {
		return hasYes, true
	}
	return false, false
}

func isYes(w string) bool {
	return w == "YES" || w == "예" || w == "네"
}

func isNo(w string) bool {
	return w == "NO" || strings.HasPrefix(w, "아니")
}
