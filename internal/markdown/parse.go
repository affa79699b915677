// Package markdown splits digest documents into YAML frontmatter and body.
package markdown

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a Markdown file with optional YAML frontmatter.
type Document struct {
	Frontmatter map[string]any
	Body        string
}

const fence = "---"

// ParseFile reads a Markdown file from disk.
func ParseFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	return Parse(f)
}

// ParseString parses an already rendered document.
func ParseString(s string) (Document, error) {
	return Parse(strings.NewReader(s))
}

// Parse extracts frontmatter found between two "---" lines at the top of r.
// Without a leading fence the whole input is body.
func Parse(r io.Reader) (Document, error) {
	br := bufio.NewReader(r)
	d := Document{Frontmatter: map[string]any{}}

	peek, err := br.Peek(len(fence))
	if err != nil && !errors.Is(err, io.EOF) {
		return Document{}, err
	}
	if string(peek) == fence {
		if _, err := br.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
			return Document{}, err
		}
		var fm strings.Builder
		for {
			l, err := br.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return Document{}, err
			}
			if strings.TrimSpace(l) == fence {
				break
			}
			fm.WriteString(l)
			if errors.Is(err, io.EOF) {
				break
			}
		}
		if err := yaml.Unmarshal([]byte(fm.String()), &d.Frontmatter); err != nil {
			return Document{}, err
		}
		if d.Frontmatter == nil {
			d.Frontmatter = map[string]any{}
		}
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return Document{}, err
	}
	d.Body = string(body)
	return d, nil
}
