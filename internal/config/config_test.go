package config

import (
	"strings"
	"testing"
	"time"
)

func TestFillDefaults(t *testing.T) {
	var c Config
	c.FillDefaults()
	if c.Storage.Driver != "sqlite" || c.Storage.DSN == "" {
		t.Fatalf("storage defaults: %+v", c.Storage)
	}
	if c.Scrape.Attempts != 2 || c.Scrape.ForumDomain != "cafe.naver.com" {
		t.Fatalf("scrape defaults: %+v", c.Scrape)
	}
	if c.Filters.FilterSponsored == nil || !*c.Filters.FilterSponsored {
		t.Fatalf("sponsored filter should default on")
	}
	if c.Dictionary.PriorityBrand != "보양대첩" {
		t.Fatalf("priority brand = %q", c.Dictionary.PriorityBrand)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestFillDefaultsKeepsExplicitValues(t *testing.T) {
	off := false
	c := Config{
		Filters:    FilterConfig{FilterSponsored: &off, SponsoredPhrases: []string{"광고"}},
		Dictionary: DictionaryConfig{Brands: []string{"A"}},
	}
	c.FillDefaults()
	if *c.Filters.FilterSponsored {
		t.Fatalf("explicit false was overwritten")
	}
	if len(c.Filters.SponsoredPhrases) != 1 || len(c.Dictionary.Brands) != 1 {
		t.Fatalf("explicit lists were overwritten")
	}
}

func TestValidateRejectsBadDuration(t *testing.T) {
	var c Config
	c.FillDefaults()
	c.Scan.PostDelay = "soon"
	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "scan.post_delay") {
		t.Fatalf("expected post_delay error, got %v", err)
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	var c Config
	c.FillDefaults()
	c.AI.Provider = "claude"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected provider error")
	}
}

func TestDuration(t *testing.T) {
	if Duration("1500ms") != 1500*time.Millisecond {
		t.Fatalf("Duration parse mismatch")
	}
}

func TestQuailyEnabled(t *testing.T) {
	q := QuailyConfig{BaseURL: "https://api.quaily.com/v1", APIKey: "k"}
	if q.Enabled() {
		t.Fatalf("enabled without channel")
	}
	q.Channel = "pets"
	if !q.Enabled() {
		t.Fatalf("expected enabled")
	}
}
