package model

import "strings"

// Sentiment is the tone of a post or comment.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Label returns the Korean label used in prompts and sheet rows.
func (s Sentiment) Label() string {
	switch s {
	case SentimentPositive:
		return "긍정"
	case SentimentNegative:
		return "부정"
	case SentimentNeutral:
		return "중립"
	default:
		return ""
	}
}

// ParseSentiment maps a Korean or English label to a Sentiment. Negative wins
// over positive when both appear; unknown text yields "".
func ParseSentiment(s string) Sentiment {
	t := strings.ToLower(strings.TrimSpace(s))
	switch {
	case t == "":
		return ""
	case strings.Contains(t, "부정") || strings.Contains(t, "negative"):
		return SentimentNegative
	case strings.Contains(t, "긍정") || strings.Contains(t, "positive"):
		return SentimentPositive
	case strings.Contains(t, "중립") || strings.Contains(t, "neutral"):
		return SentimentNeutral
	default:
		return ""
	}
}

// EnrichMode records how an AnalysisResult was produced.
type EnrichMode string

const (
	ModeAI                 EnrichMode = "ai"
	ModeFallbackNoProvider EnrichMode = "fallback-no-provider"
	ModeFallbackAIError    EnrichMode = "fallback-ai-error"
	ModeFallbackParse      EnrichMode = "fallback-parse"
)

// Fallback reports whether the analysis was produced without a usable AI answer.
func (m EnrichMode) Fallback() bool { return m != ModeAI }

// CommentStats aggregates per-comment sentiment.
type CommentStats struct {
	Positive        int      `json:"positive"`
	Neutral         int      `json:"neutral"`
	Negative        int      `json:"negative"`
	NegativeSamples []string `json:"negative_samples,omitempty"`
}

// AnalysisResult is the enrichment output attached once to an accepted post.
type AnalysisResult struct {
	IsDomainRelevant bool         `json:"is_domain_relevant"`
	Summary          string       `json:"summary"`
	KeyNotes         string       `json:"key_notes"`
	Sentiment        Sentiment    `json:"sentiment"`
	ActionPoint      string       `json:"action_point"`
	CoreKeywords     []string     `json:"core_keywords"`
	BrandMentions    []string     `json:"brand_mentions"`
	CommentStats     CommentStats `json:"comment_stats"`
	Mode             EnrichMode   `json:"mode"`
}

// BrandMentionsText joins brand mentions in their stored order.
func (a AnalysisResult) BrandMentionsText() string {
	return strings.Join(a.BrandMentions, ", ")
}

// CoreKeywordsText joins core keywords in dictionary order.
func (a AnalysisResult) CoreKeywordsText() string {
	return strings.Join(a.CoreKeywords, ", ")
}
