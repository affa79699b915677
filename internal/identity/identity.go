// Package identity computes stable post identities and answers "seen before?".
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"

	"viral-scout/internal/model"
	"viral-scout/internal/textutil"
)

// DefaultForumDomain is the host whose links carry volatile query parameters.
const DefaultForumDomain = "cafe.naver.com"

// Normalizer canonicalizes links for a single forum domain.
type Normalizer struct {
	ForumDomain string
}

// NormalizeLink strips query and fragment from forum links, keeping
// scheme+host+path. Other domains and malformed URLs are returned unchanged.
func (n Normalizer) NormalizeLink(raw string) string {
	if raw == "" {
		return ""
	}
	domain := n.ForumDomain
	if domain == "" {
		domain = DefaultForumDomain
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	if !strings.Contains(strings.ToLower(u.Host), domain) {
		return raw
	}
	if u.Path == "" || u.Path == "/" {
		return raw
	}
	return u.Scheme + "://" + u.Host + u.Path
}

// NormalizeLink uses the default forum domain.
func NormalizeLink(raw string) string {
	return Normalizer{}.NormalizeLink(raw)
}

// ContentHash identifies a post by author, title and the first 100 runes of
// its content.
func ContentHash(author, title, content string) string {
	sum := md5.Sum([]byte(author + title + textutil.Head(content, 100)))
	return hex.EncodeToString(sum[:])
}

// HashPost computes the content hash of p from its raw content.
func HashPost(p model.Post) string {
	return ContentHash(p.Author, p.Title, p.RawContent)
}
