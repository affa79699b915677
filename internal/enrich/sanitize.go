package enrich

import (
	"strings"
	"unicode"

	"viral-scout/internal/textutil"
)

var emphasis = strings.NewReplacer("**", "", "__", "", "*", "", "`", "")

// pictographic ranges removed from AI output
var emojiRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200d, Hi: 0x200d, Stride: 1},
		{Lo: 0x2600, Hi: 0x26ff, Stride: 1},
		{Lo: 0x2702, Hi: 0x27b0, Stride: 1},
		{Lo: 0xfe0f, Hi: 0xfe0f, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1f1e6, Hi: 0x1f1ff, Stride: 1},
		{Lo: 0x1f300, Hi: 0x1f5ff, Stride: 1},
		{Lo: 0x1f600, Hi: 0x1f64f, Stride: 1},
		{Lo: 0x1f680, Hi: 0x1f6ff, Stride: 1},
		{Lo: 0x1f900, Hi: 0x1f9ff, Stride: 1},
		{Lo: 0x1fa70, Hi: 0x1faff, Stride: 1},
	},
}

// Sanitize removes emphasis markers and emoji, then collapses whitespace.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	s = emphasis.Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.Is(emojiRanges, r) {
			return -1
		}
		return r
	}, s)
	return textutil.CollapseSpace(s)
}

// StripFence removes a fenced-code-block wrapper and its language tag. Text
// without a fence is only trimmed.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	i := strings.Index(s, "```")
	if i < 0 {
		return s
	}
	rest := s[i+3:]
	if j := strings.Index(rest, "```"); j >= 0 {
		rest = rest[:j]
	}
	return stripLanguageTag(strings.TrimSpace(rest))
}

func stripLanguageTag(s string) string {
	first, rest, found := strings.Cut(s, "\n")
	tag := strings.TrimSpace(first)
	if !found || tag == "" || len(tag) > 16 {
		return s
	}
	for _, r := range tag {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return s
		}
	}
	return strings.TrimSpace(rest)
}
