package markdown

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFileWithFrontmatter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digest.md")
	content := "" +
		"---\n" +
		"title: \"반려동물 바이럴 리포트 2025-10-24\"\n" +
		"slug: viral-20251024\n" +
		"datetime: 2025-10-24 09:00\n" +
		"---\n\n" +
		"## 블로그 (+3/120)\n\n### [사료 후기](https://blog.naver.com/a/1)\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	for _, k := range []string{"title", "slug", "datetime"} {
		if _, ok := doc.Frontmatter[k]; !ok {
			t.Errorf("missing %s in frontmatter", k)
		}
	}
	if dt, ok := doc.Frontmatter["datetime"].(string); !ok || dt != "2025-10-24 09:00" {
		t.Errorf("datetime = %#v", doc.Frontmatter["datetime"])
	}
	if !strings.Contains(doc.Body, "### [사료 후기](https://blog.naver.com/a/1)") {
		t.Errorf("body missing entry: %q", doc.Body)
	}
	if strings.Contains(doc.Body, "slug:") {
		t.Errorf("frontmatter leaked into body")
	}
}

func TestParseStringWithoutFrontmatter(t *testing.T) {
	doc, err := ParseString("# 제목\n본문\n")
	if err != nil {
		t.Fatalf("ParseString error: %v", err)
	}
	if len(doc.Frontmatter) != 0 {
		t.Fatalf("expected empty frontmatter, got %v", doc.Frontmatter)
	}
	if doc.Body != "# 제목\n본문\n" {
		t.Fatalf("body = %q", doc.Body)
	}
}

func TestParseStringEmptyFrontmatter(t *testing.T) {
	doc, err := ParseString("---\n---\nbody")
	if err != nil {
		t.Fatalf("ParseString error: %v", err)
	}
	if doc.Frontmatter == nil || doc.Body != "body" {
		t.Fatalf("doc = %+v", doc)
	}
}
