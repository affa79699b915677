// Package extract finds dictionary terms in post text and merges brand
// mentions into their reporting order.
package extract

import (
	"sort"
	"strings"

	"viral-scout/internal/textutil"
)

// scanWindow bounds how much of title+content is searched.
const scanWindow = 1000

// Extractor matches two fixed dictionaries by substring containment.
type Extractor struct {
	core     []string
	brands   []string
	priority string
}

// New freezes the dictionaries. Terms are NFC-normalized once so that matching
// only has to normalize the text side.
func New(core, brands []string, priority string) *Extractor {
	return &Extractor{
		core:     normalizeAll(core),
		brands:   normalizeAll(brands),
		priority: textutil.NFC(strings.TrimSpace(priority)),
	}
}

// Priority is the brand hoisted to the front of merged mentions.
func (e *Extractor) Priority() string { return e.priority }

// Text builds the searchable window for a post.
func Text(title, content string) string {
	return textutil.NFC(textutil.Head(title+"\n"+content, scanWindow))
}

// CoreKeywords returns the core terms found in text, in dictionary order.
func (e *Extractor) CoreKeywords(text string) []string {
	return match(text, e.core)
}

// Brands returns the brand names found in text, in dictionary order.
func (e *Extractor) Brands(text string) []string {
	return match(text, e.brands)
}

// Merge combines dictionary and AI brand mentions using the extractor's
// priority brand.
func (e *Extractor) Merge(found []string, aiText string) []string {
	return MergeBrands(found, SplitBrands(aiText), e.priority)
}

func match(text string, terms []string) []string {
	text = textutil.NFC(text)
	var out []string
	for _, t := range terms {
		if strings.Contains(text, t) {
			out = append(out, t)
		}
	}
	return out
}

func normalizeAll(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = textutil.NFC(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

var placeholders = map[string]struct{}{
	"없음": {}, "-": {}, "N/A": {}, "n/a": {}, "none": {}, "None": {},
}

// SplitBrands parses free-text brand suggestions separated by ASCII or
// ideographic commas. Placeholder answers are dropped.
func SplitBrands(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '、' || r == '，' || r == '\n'
	})
	var out []string
	for _, f := range fields {
		f = textutil.NFC(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if _, skip := placeholders[f]; skip {
			continue
		}
		out = append(out, f)
	}
	return out
}

// MergeBrands unions both lists, removes duplicates, sorts, and moves the
// priority brand to index 0 when present.
func MergeBrands(found, suggested []string, priority string) []string {
	set := make(map[string]struct{}, len(found)+len(suggested))
	for _, b := range append(append([]string(nil), found...), suggested...) {
		b = strings.TrimSpace(b)
		if b != "" {
			set[b] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for b := range set {
		out = append(out, b)
	}
	sort.Strings(out)
	if priority == "" {
		return out
	}
	for i, b := range out {
		if b == priority {
			copy(out[1:i+1], out[:i])
			out[0] = priority
			break
		}
	}
	return out
}

// JoinBrands renders merged mentions for storage and reports.
func JoinBrands(brands []string) string {
	return strings.Join(brands, ", ")
}
