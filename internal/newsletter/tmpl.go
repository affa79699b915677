package newsletter

import (
	"bytes"
	_ "embed"
	"text/template"
)

// Item is one accepted post in the markdown digest.
type Item struct {
	Title     string
	URL       string
	Keyword   string
	Group     string
	Date      string
	Summary   string
	Brands    string
	Sentiment string
	Comments  int
	Question  bool
}

// Section groups items by source.
type Section struct {
	Name     string
	New      int
	Total    int
	Items    []Item
	Overflow int
}

type Data struct {
	Title      string
	Slug       string
	Datetime   string
	Preface    string
	Postscript string
	Total      int
	Sections   []Section
	Highlights []Highlight
}

// Highlight lists the leading titles found for one keyword.
type Highlight struct {
	Keyword string
	Titles  []string
}

//go:embed newsletter.tmpl
var newsletterTpl string

var compiled = template.Must(template.New("newsletter").Parse(newsletterTpl))

func Render(d Data) (string, error) {
	var buf bytes.Buffer
	if err := compiled.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
