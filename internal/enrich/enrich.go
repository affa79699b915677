// Package enrich turns an accepted post into an AnalysisResult, using the AI
// collaborator when one is configured and a deterministic fallback otherwise.
package enrich

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"viral-scout/internal/ai"
	"viral-scout/internal/extract"
	"viral-scout/internal/model"
	"viral-scout/internal/textutil"
)

const (
	// SummaryMax bounds every stored summary, in runes.
	SummaryMax = 150
	// SummaryMin is the shortest summary considered usable.
	SummaryMin = 10

	blogTokens = 600
	cafeTokens = 300
)

// Settings is the frozen enrichment configuration.
type Settings struct {
	BlogBudget      int
	CafeBudget      int
	AnalyzeComments bool
	PositiveWords   []string
	NegativeWords   []string
}

// Engine produces analyses. It holds no per-post state.
type Engine struct {
	s  Settings
	ai ai.Completer
	ex *extract.Extractor
}

// New builds an engine; completer may be nil.
func New(s Settings, completer ai.Completer, ex *extract.Extractor) *Engine {
	return &Engine{s: s, ai: completer, ex: ex}
}

// Analyze enriches p. It never fails: AI errors and malformed answers degrade
// to the deterministic fallback, recorded in the result's Mode. Comment
// sentiment is handled separately by ClassifyComments.
func (e *Engine) Analyze(ctx context.Context, p model.Post) model.AnalysisResult {
	text := extract.Text(p.Title, p.BestContent())
	found := e.ex.Brands(text)
	core := e.ex.CoreKeywords(text)

	var res model.AnalysisResult
	if e.ai == nil {
		res = e.fallback(p, found, model.ModeFallbackNoProvider)
	} else {
		budget, tokens := e.s.BlogBudget, blogTokens
		if p.Source == model.SourceCafe {
			budget, tokens = e.s.CafeBudget, cafeTokens
		}
		raw, err := e.ai.Complete(ctx, Prompt(p, budget), tokens)
		if err != nil {
			slog.Warn("enrich: ai call failed, using fallback", "provider", e.ai.Name(), "link", p.Link, "err", err)
			res = e.fallback(p, found, model.ModeFallbackAIError)
		} else {
			res = e.fromResponse(p, raw, found)
		}
	}
	res.CoreKeywords = core

	if utf8.RuneCountInString(res.Summary) < SummaryMin {
		res.Summary = plainSummary(p)
	}
	return res
}

func (e *Engine) fromResponse(p model.Post, raw string, found []string) model.AnalysisResult {
	f, strategy, ok := Parse(raw)
	if !ok {
		slog.Info("enrich: unparseable ai response, using raw text", "link", p.Link)
		body := Sanitize(StripFence(raw))
		if body == "" {
			body = Sanitize(raw)
		}
		return model.AnalysisResult{
			IsDomainRelevant: true,
			Summary:          textutil.CapClause(body, SummaryMax),
			BrandMentions:    e.ex.Merge(found, ""),
			Mode:             model.ModeFallbackParse,
		}
	}
	slog.Debug("enrich: parsed ai response", "strategy", strategy, "link", p.Link)
	relevant := true
	if f.Relevant != nil {
		relevant = *f.Relevant
	}
	return model.AnalysisResult{
		IsDomainRelevant: relevant,
		Summary:          textutil.CapClause(Sanitize(f.Summary), SummaryMax),
		KeyNotes:         Sanitize(f.KeyNotes),
		Sentiment:        model.ParseSentiment(Sanitize(f.Sentiment)),
		ActionPoint:      Sanitize(f.ActionPoint),
		BrandMentions:    e.ex.Merge(found, Sanitize(f.Brands)),
		Mode:             model.ModeAI,
	}
}

func (e *Engine) fallback(p model.Post, found []string, mode model.EnrichMode) model.AnalysisResult {
	return model.AnalysisResult{
		IsDomainRelevant: true,
		Summary:          plainSummary(p),
		BrandMentions:    e.ex.Merge(found, ""),
		Mode:             mode,
	}
}

// plainSummary truncates the post body, or its title when the body is empty.
func plainSummary(p model.Post) string {
	src := textutil.CollapseSpace(p.BestContent())
	if src == "" {
		src = textutil.CollapseSpace(p.Title)
	}
	return strings.TrimSpace(textutil.Head(src, SummaryMax))
}
