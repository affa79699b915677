package enrich

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Fields is the structured part of an AI analysis answer, before sanitizing.
type Fields struct {
	Relevant    *bool
	Summary     string
	KeyNotes    string
	Brands      string
	Sentiment   string
	ActionPoint string
}

// strategy tries to read a fenceless response body.
type strategy struct {
	name  string
	parse func(body string) (Fields, bool)
}

var strategies = []strategy{
	{name: "json", parse: parseJSON},
	{name: "labels", parse: parseLabels},
}

// Parse runs the strategies in order on the fence-stripped response. It
// reports the name of the strategy that succeeded, or ok=false when none did.
func Parse(raw string) (f Fields, name string, ok bool) {
	body := StripFence(raw)
	if body == "" {
		return Fields{}, "", false
	}
	for _, s := range strategies {
		if f, ok := s.parse(body); ok {
			return f, s.name, true
		}
	}
	return Fields{}, "", false
}

const (
	keyRelevant    = "반려동물관련"
	keyRelevantAlt = "관련여부"
	keySummary     = "요약"
	keyNotes       = "주요내용"
	keyBrands      = "경쟁사언급"
	keySentiment   = "감성"
	keyAction      = "액션포인트"
)

func parseJSON(body string) (Fields, bool) {
	start, end := strings.Index(body, "{"), strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return Fields{}, false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(body[start:end+1]), &m); err != nil {
		return Fields{}, false
	}
	var f Fields
	known := false
	for k, v := range m {
		if set(&f, strings.TrimSpace(k), v) {
			known = true
		}
	}
	return f, known
}

func parseLabels(body string) (Fields, bool) {
	var f Fields
	var current string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
		if line == "" {
			continue
		}
		if label, value, ok := splitLabel(line); ok {
			if set(&f, label, value) {
				current = label
				continue
			}
		}
		// continuation of a wrapped value
		if current != "" && current != keyRelevant && current != keyRelevantAlt {
			set(&f, current, get(f, current)+" "+line)
		}
	}
	return f, strings.TrimSpace(f.Summary) != ""
}

func splitLabel(line string) (label, value string, ok bool) {
	i := strings.IndexAny(line, ":：")
	if i <= 0 {
		return "", "", false
	}
	label = strings.Trim(line[:i], " *[]")
	_, size := utf8.DecodeRuneInString(line[i:])
	return label, strings.TrimSpace(line[i+size:]), true
}

// set assigns a known key and reports whether it was known.
func set(f *Fields, key string, v any) bool {
	switch key {
	case keyRelevant, keyRelevantAlt:
		if b, ok := parseFlag(v); ok {
			f.Relevant = &b
		}
	case keySummary:
		f.Summary = text(v)
	case keyNotes:
		f.KeyNotes = text(v)
	case keyBrands:
		f.Brands = text(v)
	case keySentiment:
		f.Sentiment = text(v)
	case keyAction:
		f.ActionPoint = text(v)
	default:
		return false
	}
	return true
}

func get(f Fields, key string) string {
	switch key {
	case keySummary:
		return f.Summary
	case keyNotes:
		return f.KeyNotes
	case keyBrands:
		return f.Brands
	case keySentiment:
		return f.Sentiment
	case keyAction:
		return f.ActionPoint
	}
	return ""
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			if s := strings.TrimSpace(text(p)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

func parseFlag(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	s := strings.ToLower(strings.TrimSpace(text(v)))
	switch {
	case s == "":
		return false, false
	case strings.HasPrefix(s, "false"), strings.HasPrefix(s, "no"), strings.HasPrefix(s, "아니"),
		strings.HasPrefix(s, "무관"), strings.Contains(s, "관련없"), strings.Contains(s, "관련 없"), s == "x":
		return false, true
	case strings.HasPrefix(s, "true"), strings.HasPrefix(s, "yes"), strings.HasPrefix(s, "예"),
		strings.HasPrefix(s, "네"), strings.HasPrefix(s, "관련"), s == "o":
		return true, true
	}
	return false, false
}
