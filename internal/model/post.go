package model

import "strings"

// Source identifies where a post was discovered.
type Source string

const (
	SourceBlog Source = "blog"
	SourceCafe Source = "cafe" // forum thread
)

// Label returns the Korean display name used in stored rows and digests.
func (s Source) Label() string {
	switch s {
	case SourceCafe:
		return "카페"
	default:
		return "블로그"
	}
}

// ContentUnavailable marks a post whose page content could not be fetched.
const ContentUnavailable = "(본문 없음)"

// Post is one candidate item from a search collaborator.
type Post struct {
	Source        Source    `json:"source"`
	Keyword       string    `json:"keyword"`
	Title         string    `json:"title"`
	RawContent    string    `json:"raw_content"`
	Description   string    `json:"description"`
	Link          string    `json:"link"`
	Author        string    `json:"author"`
	GroupName     string    `json:"group_name"`
	PublishedDate string    `json:"published_date"`
	Comments      []Comment `json:"comments"`
	ContentHash   string    `json:"content_hash"`
}

// Comment is a reader reply attached to a post.
type Comment struct {
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
}

// BestContent returns the fetched body, or the search preview when the body is
// empty or the fetch sentinel.
func (p Post) BestContent() string {
	c := strings.TrimSpace(p.RawContent)
	if c == "" || c == ContentUnavailable {
		return strings.TrimSpace(p.Description)
	}
	return c
}
