package config

import (
	"fmt"
	"strings"
	"time"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // text or json
	Timezone  string `mapstructure:"timezone"`   // collection timestamps, e.g. Asia/Seoul
	SheetURL  string `mapstructure:"sheet_url"`  // link appended to the digest message
}

// RedisConfig holds redis connection settings for the seen-hash registry.
// An empty Addr disables the registry.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	Retention string `mapstructure:"retention"` // duration string, e.g. "2160h"
}

// NaverConfig controls the Naver search OpenAPI collaborator.
type NaverConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	BaseURL      string `mapstructure:"base_url"`
	Display      int    `mapstructure:"display"`
	Sort         string `mapstructure:"sort"` // sim or date
	Timeout      string `mapstructure:"timeout"`
}

// CloudflareConfig enables browser-rendered page fetches.
type CloudflareConfig struct {
	AccountID string `mapstructure:"account_id"`
	APIToken  string `mapstructure:"api_token"`
}

// ScrapeConfig controls page-content fetching.
type ScrapeConfig struct {
	BlogContent bool   `mapstructure:"blog_content"` // fetch blog bodies instead of using the search preview
	ForumDomain string `mapstructure:"forum_domain"`
	Timeout     string `mapstructure:"timeout"`
	Attempts    int    `mapstructure:"attempts"`
	Backoff     string `mapstructure:"backoff"`
	UserAgent   string `mapstructure:"user_agent"`
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// AIConfig selects and configures the AI collaborator.
type AIConfig struct {
	Provider        string       `mapstructure:"provider"` // openai or gemini
	Timeout         string       `mapstructure:"timeout"`
	RelevanceFilter bool         `mapstructure:"relevance_filter"`
	AnalyzeComments bool         `mapstructure:"analyze_comments"`
	OpenAI          OpenAIConfig `mapstructure:"openai"`
	Gemini          GeminiConfig `mapstructure:"gemini"`
}

// StorageConfig selects the tabular store backend.
type StorageConfig struct {
	Driver        string `mapstructure:"driver"` // sqlite or postgres
	DSN           string `mapstructure:"dsn"`
	BlogTable     string `mapstructure:"blog_table"`
	CafeTable     string `mapstructure:"cafe_table"`
	SettingsTable string `mapstructure:"settings_table"`
	WritePace     string `mapstructure:"write_pace"` // delay between row-by-row fallback writes
}

// TelegramConfig configures digest delivery.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// QuailyConfig optionally publishes the markdown digest. Title, Preface and
// Postscript accept {.CurrentDate} and {.Total}.
type QuailyConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Channel    string `mapstructure:"channel"`
	Deliver    bool   `mapstructure:"deliver"`
	Timeout    string `mapstructure:"timeout"`
	Title      string `mapstructure:"title"`
	Preface    string `mapstructure:"preface"`
	Postscript string `mapstructure:"postscript"`
}

// Enabled reports whether publishing is configured.
func (q QuailyConfig) Enabled() bool {
	return strings.TrimSpace(q.BaseURL) != "" && strings.TrimSpace(q.APIKey) != "" && strings.TrimSpace(q.Channel) != ""
}

// ScanConfig controls one scan run.
type ScanConfig struct {
	Keywords       []string `mapstructure:"keywords"`
	Feeds          []string `mapstructure:"feeds"` // RSS/Atom feeds searched as blog sources
	EnableBlog     bool     `mapstructure:"enable_blog"`
	EnableCafe     bool     `mapstructure:"enable_cafe"`
	CafeMaxPosts   int      `mapstructure:"cafe_max_posts"`
	PostDelay      string   `mapstructure:"post_delay"`
	KeywordDelay   string   `mapstructure:"keyword_delay"`
	BlogBudget     int      `mapstructure:"blog_budget"` // prompt content budget in runes
	CafeBudget     int      `mapstructure:"cafe_budget"`
	PreviewPerKind int      `mapstructure:"preview_per_kind"`
	TitleWidth     int      `mapstructure:"title_width"`
	OutputDir      string   `mapstructure:"output_dir"`
	Interval       string   `mapstructure:"interval"` // serve mode only
}

// FilterConfig holds the filter-chain dictionaries.
type FilterConfig struct {
	ExcludeKeywords  []string `mapstructure:"exclude_keywords"`
	RequiredKeywords []string `mapstructure:"required_keywords"`
	SponsoredPhrases []string `mapstructure:"sponsored_phrases"`
	QuestionPhrases  []string `mapstructure:"question_phrases"`
	FilterSponsored  *bool    `mapstructure:"filter_sponsored"`
}

// DictionaryConfig holds entity and sentiment dictionaries.
type DictionaryConfig struct {
	CoreKeywords  []string `mapstructure:"core_keywords"`
	Brands        []string `mapstructure:"brands"`
	PriorityBrand string   `mapstructure:"priority_brand"`
	PositiveWords []string `mapstructure:"positive_words"`
	NegativeWords []string `mapstructure:"negative_words"`
}

// Config is the top-level configuration structure.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Naver      NaverConfig      `mapstructure:"naver"`
	Cloudflare CloudflareConfig `mapstructure:"cloudflare"`
	Scrape     ScrapeConfig     `mapstructure:"scrape"`
	AI         AIConfig         `mapstructure:"ai"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Quaily     QuailyConfig     `mapstructure:"quaily"`
	Scan       ScanConfig       `mapstructure:"scan"`
	Filters    FilterConfig     `mapstructure:"filters"`
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.LogFormat == "" {
		c.App.LogFormat = "text"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "Asia/Seoul"
	}
	if c.Redis.Retention == "" {
		c.Redis.Retention = "2160h"
	}
	if c.Naver.BaseURL == "" {
		c.Naver.BaseURL = "https://openapi.naver.com"
	}
	if c.Naver.Display == 0 {
		c.Naver.Display = 30
	}
	if c.Naver.Sort == "" {
		c.Naver.Sort = "date"
	}
	if c.Naver.Timeout == "" {
		c.Naver.Timeout = "10s"
	}
	if c.Scrape.ForumDomain == "" {
		c.Scrape.ForumDomain = "cafe.naver.com"
	}
	if c.Scrape.Timeout == "" {
		c.Scrape.Timeout = "15s"
	}
	if c.Scrape.Attempts == 0 {
		c.Scrape.Attempts = 2
	}
	if c.Scrape.Backoff == "" {
		c.Scrape.Backoff = "1s"
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "gemini"
	}
	if c.AI.Timeout == "" {
		c.AI.Timeout = "15s"
	}
	if c.AI.OpenAI.Model == "" {
		c.AI.OpenAI.Model = "gpt-4o-mini"
	}
	if c.AI.Gemini.Model == "" {
		c.AI.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.DSN == "" && c.Storage.Driver == "sqlite" {
		c.Storage.DSN = "./viral_scout.db"
	}
	if c.Storage.BlogTable == "" {
		c.Storage.BlogTable = "블로그"
	}
	if c.Storage.CafeTable == "" {
		c.Storage.CafeTable = "카페"
	}
	if c.Storage.SettingsTable == "" {
		c.Storage.SettingsTable = "검색설정"
	}
	if c.Storage.WritePace == "" {
		c.Storage.WritePace = "500ms"
	}
	if c.Quaily.Timeout == "" {
		c.Quaily.Timeout = "20s"
	}
	if c.Quaily.Title == "" {
		c.Quaily.Title = "반려동물 바이럴 리포트 {.CurrentDate}"
	}
	if c.Scan.CafeMaxPosts == 0 {
		c.Scan.CafeMaxPosts = 20
	}
	if c.Scan.PostDelay == "" {
		c.Scan.PostDelay = "1s"
	}
	if c.Scan.KeywordDelay == "" {
		c.Scan.KeywordDelay = "2s"
	}
	if c.Scan.BlogBudget == 0 {
		c.Scan.BlogBudget = 1500
	}
	if c.Scan.CafeBudget == 0 {
		c.Scan.CafeBudget = 800
	}
	if c.Scan.PreviewPerKind == 0 {
		c.Scan.PreviewPerKind = 5
	}
	if c.Scan.TitleWidth == 0 {
		c.Scan.TitleWidth = 30
	}
	if c.Scan.Interval == "" {
		c.Scan.Interval = "6h"
	}
	if c.Scan.OutputDir == "" {
		c.Scan.OutputDir = "./out"
	}
	if len(c.Filters.SponsoredPhrases) == 0 {
		c.Filters.SponsoredPhrases = DefaultSponsoredPhrases
	}
	if len(c.Filters.QuestionPhrases) == 0 {
		c.Filters.QuestionPhrases = DefaultQuestionPhrases
	}
	if c.Filters.FilterSponsored == nil {
		on := true
		c.Filters.FilterSponsored = &on
	}
	if len(c.Dictionary.CoreKeywords) == 0 {
		c.Dictionary.CoreKeywords = DefaultCoreKeywords
	}
	if len(c.Dictionary.Brands) == 0 {
		c.Dictionary.Brands = DefaultBrands
	}
	if c.Dictionary.PriorityBrand == "" {
		c.Dictionary.PriorityBrand = DefaultPriorityBrand
	}
	if len(c.Dictionary.PositiveWords) == 0 {
		c.Dictionary.PositiveWords = DefaultPositiveWords
	}
	if len(c.Dictionary.NegativeWords) == 0 {
		c.Dictionary.NegativeWords = DefaultNegativeWords
	}
}

// Validate checks settings that would otherwise fail halfway through a run.
func (c *Config) Validate() error {
	for name, v := range map[string]string{
		"redis.retention":    c.Redis.Retention,
		"naver.timeout":      c.Naver.Timeout,
		"scrape.timeout":     c.Scrape.Timeout,
		"scrape.backoff":     c.Scrape.Backoff,
		"ai.timeout":         c.AI.Timeout,
		"storage.write_pace": c.Storage.WritePace,
		"quaily.timeout":     c.Quaily.Timeout,
		"scan.post_delay":    c.Scan.PostDelay,
		"scan.keyword_delay": c.Scan.KeywordDelay,
		"scan.interval":      c.Scan.Interval,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	switch strings.ToLower(c.AI.Provider) {
	case "openai", "gemini":
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("storage.dsn is required for driver %s", c.Storage.Driver)
	}
	return nil
}

// Duration parses a duration field already checked by Validate.
func Duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// Location resolves the configured timezone, falling back to KST.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.App.Timezone); err == nil {
		return loc
	}
	return time.FixedZone("KST", 9*60*60)
}
