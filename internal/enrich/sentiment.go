package enrich

import (
	"context"
	"log/slog"
	"strings"

	"viral-scout/internal/model"
	"viral-scout/internal/textutil"
)

const (
	maxComments     = 20
	negativeSamples = 3
	sampleWidth     = 50
	sentimentTokens = 10
)

// CommentSentiment classifies one comment. With an AI collaborator it asks for
// a one-word label and treats any failure as neutral; without one it counts
// dictionary words.
func (e *Engine) CommentSentiment(ctx context.Context, text string) model.Sentiment {
	if e.ai == nil {
		return DictionarySentiment(text, e.s.PositiveWords, e.s.NegativeWords)
	}
	resp, err := e.ai.Complete(ctx, commentPrompt(text), sentimentTokens)
	if err != nil {
		slog.Debug("enrich: comment sentiment failed", "err", err)
		return model.SentimentNeutral
	}
	if s := model.ParseSentiment(resp); s != "" {
		return s
	}
	return model.SentimentNeutral
}

// DictionarySentiment compares positive and negative word hits.
func DictionarySentiment(text string, positive, negative []string) model.Sentiment {
	pos, neg := countHits(text, positive), countHits(text, negative)
	switch {
	case neg > pos:
		return model.SentimentNegative
	case pos > neg:
		return model.SentimentPositive
	default:
		return model.SentimentNeutral
	}
}

func countHits(text string, words []string) int {
	n := 0
	for _, w := range words {
		if w != "" && strings.Contains(text, w) {
			n++
		}
	}
	return n
}

// CommentsEnabled reports whether comment sentiment should run.
func (e *Engine) CommentsEnabled() bool { return e.s.AnalyzeComments }

// ClassifyComments labels up to the first 20 comments and aggregates them.
// The returned slice is a copy; comments beyond the limit are left unlabeled.
func (e *Engine) ClassifyComments(ctx context.Context, comments []model.Comment) ([]model.Comment, model.CommentStats) {
	out := make([]model.Comment, len(comments))
	copy(out, comments)
	var stats model.CommentStats
	for i := range out {
		if i >= maxComments {
			break
		}
		s := e.CommentSentiment(ctx, out[i].Content)
		out[i].Sentiment = s
		switch s {
		case model.SentimentPositive:
			stats.Positive++
		case model.SentimentNegative:
			stats.Negative++
			if len(stats.NegativeSamples) < negativeSamples {
				stats.NegativeSamples = append(stats.NegativeSamples, textutil.Head(out[i].Content, sampleWidth))
			}
		default:
			stats.Neutral++
		}
	}
	return out, stats
}
