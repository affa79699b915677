// Package pipeline composes identity, filtering, extraction and enrichment
// into one decision per candidate post. It performs no I/O of its own beyond
// the AI collaborator handed to it.
package pipeline

import (
	"context"
	"log/slog"

	"viral-scout/internal/ai"
	"viral-scout/internal/config"
	"viral-scout/internal/enrich"
	"viral-scout/internal/extract"
	"viral-scout/internal/filter"
	"viral-scout/internal/identity"
	"viral-scout/internal/model"
)

// Stages reported in addition to the filter stages.
const (
	StageDuplicate  filter.Stage = "duplicate"
	StageIrrelevant filter.Stage = "irrelevant"
)

// Settings is built once at startup and never changes during a run.
type Settings struct {
	ForumDomain   string
	Filter        filter.Settings
	Enrich        enrich.Settings
	CoreKeywords  []string
	Brands        []string
	PriorityBrand string
}

// SettingsFromConfig freezes the pipeline-relevant part of cfg.
func SettingsFromConfig(cfg config.Config) Settings {
	sponsored := true
	if cfg.Filters.FilterSponsored != nil {
		sponsored = *cfg.Filters.FilterSponsored
	}
	return Settings{
		ForumDomain: cfg.Scrape.ForumDomain,
		Filter: filter.Settings{
			Exclude:         clone(cfg.Filters.ExcludeKeywords),
			Required:        clone(cfg.Filters.RequiredKeywords),
			Sponsored:       clone(cfg.Filters.SponsoredPhrases),
			QuestionPhrases: clone(cfg.Filters.QuestionPhrases),
			FilterSponsored: sponsored,
			RelevanceCheck:  cfg.AI.RelevanceFilter,
		},
		Enrich: enrich.Settings{
			BlogBudget:      cfg.Scan.BlogBudget,
			CafeBudget:      cfg.Scan.CafeBudget,
			AnalyzeComments: cfg.AI.AnalyzeComments,
			PositiveWords:   clone(cfg.Dictionary.PositiveWords),
			NegativeWords:   clone(cfg.Dictionary.NegativeWords),
		},
		CoreKeywords:  clone(cfg.Dictionary.CoreKeywords),
		Brands:        clone(cfg.Dictionary.Brands),
		PriorityBrand: cfg.Dictionary.PriorityBrand,
	}
}

func clone(in []string) []string {
	return append([]string(nil), in...)
}

// Outcome is the pipeline's verdict on one post.
type Outcome struct {
	Accepted   bool
	Stage      filter.Stage
	Reason     string
	IsQuestion bool
	// Post is the candidate with its content hash set and, when accepted,
	// its comments labeled.
	Post     model.Post
	Analysis model.AnalysisResult
}

// Pipeline evaluates posts against a registry of previously accepted ones.
type Pipeline struct {
	norm     identity.Normalizer
	registry *identity.Registry
	chain    *filter.Chain
	engine   *enrich.Engine
}

// New wires the stages. completer may be nil.
func New(s Settings, registry *identity.Registry, completer ai.Completer) *Pipeline {
	ex := extract.New(s.CoreKeywords, s.Brands, s.PriorityBrand)
	return &Pipeline{
		norm:     identity.Normalizer{ForumDomain: s.ForumDomain},
		registry: registry,
		chain:    filter.New(s.Filter, completer),
		engine:   enrich.New(s.Enrich, completer, ex),
	}
}

// Normalize canonicalizes a link the same way the registry does.
func (p *Pipeline) Normalize(link string) string {
	return p.norm.NormalizeLink(link)
}

// Seen reports whether link is already known. The orchestrator calls it
// before fetching page content.
func (p *Pipeline) Seen(link string) bool {
	return p.registry.SeenLink(link)
}

// Evaluate decides on post. Accepted posts are recorded in the registry so a
// second sighting in the same run is a duplicate.
func (p *Pipeline) Evaluate(ctx context.Context, post model.Post) Outcome {
	if post.ContentHash == "" {
		post.ContentHash = identity.HashPost(post)
	}
	if v := p.registry.Check(post); v.Duplicate {
		return Outcome{Stage: StageDuplicate, Reason: "known " + v.Reason, Post: post}
	}

	d := p.chain.Evaluate(ctx, post)
	if !d.Accepted {
		return Outcome{Stage: d.Stage, Reason: d.Reason, IsQuestion: d.IsQuestion, Post: post}
	}

	res := p.engine.Analyze(ctx, post)
	if !res.IsDomainRelevant {
		return Outcome{Stage: StageIrrelevant, Reason: "analysis marked off-topic", IsQuestion: d.IsQuestion, Post: post, Analysis: res}
	}
	if p.engine.CommentsEnabled() && len(post.Comments) > 0 {
		post.Comments, res.CommentStats = p.engine.ClassifyComments(ctx, post.Comments)
	}

	p.registry.Accept(post)
	slog.Debug("pipeline: accepted", "link", post.Link, "mode", res.Mode)
	return Outcome{Accepted: true, IsQuestion: d.IsQuestion, Post: post, Analysis: res}
}
