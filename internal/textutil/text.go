// Package textutil holds rune-aware string helpers shared by the pipeline.
package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// Head returns at most n runes from the start of s.
func Head(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Ellipsis truncates s to max runes and appends "..." when it was cut.
func Ellipsis(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return Head(s, max) + "..."
}

// NFC normalizes s so composed and decomposed Hangul compare equal.
func NFC(s string) string {
	return norm.NFC.String(s)
}

// CollapseSpace replaces runs of whitespace with a single space and trims.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripMarkup removes inline HTML (search highlight tags such as <b>) and
// unescapes entities.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div>" + s + "</div>"))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Find("div").First().Text())
}

var sentenceEnds = []string{". ", "! ", "? ", "다. ", "요. "}

// CapClause bounds s to max runes without cutting a word in half. It prefers
// the last sentence end inside the budget, then the last space; a single
// unbroken token longer than max is hard-cut.
func CapClause(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	head := Head(s, max)
	// one rune of look-ahead so a sentence ending exactly at the budget counts
	probe := Head(s, max+1)
	best := -1
	for _, end := range sentenceEnds {
		if i := strings.LastIndex(probe, end); i > best && i+len(end)-1 <= len(head) {
			best = i + len(end) - 1
		}
	}
	if last := lastRune(head); last == '.' || last == '!' || last == '?' {
		best = len(head)
	}
	if best > 0 {
		return strings.TrimSpace(head[:best])
	}
	if i := strings.LastIndexFunc(head, unicode.IsSpace); i > 0 {
		return strings.TrimSpace(head[:i])
	}
	return head
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}
