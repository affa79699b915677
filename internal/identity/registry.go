package identity

import "viral-scout/internal/model"

// Verdict explains a registry check.
type Verdict struct {
	Duplicate bool
	Reason    string // "link" or "hash"
}

// Registry holds links and content hashes accepted by earlier runs, plus the
// ones accepted during the current run. The prior sets are loaded once and
// never modified.
type Registry struct {
	norm      Normalizer
	links     map[string]struct{}
	hashes    map[string]struct{}
	runLinks  map[string]struct{}
	runHashes map[string]struct{}
}

// NewRegistry builds a registry from previously stored links and hashes.
// Links are normalized on the way in so stored rows with stale query strings
// still match.
func NewRegistry(norm Normalizer, links, hashes []string) *Registry {
	r := &Registry{
		norm:      norm,
		links:     make(map[string]struct{}, len(links)),
		hashes:    make(map[string]struct{}, len(hashes)),
		runLinks:  map[string]struct{}{},
		runHashes: map[string]struct{}{},
	}
	for _, l := range links {
		if l == "" {
			continue
		}
		r.links[norm.NormalizeLink(l)] = struct{}{}
	}
	for _, h := range hashes {
		if h == "" {
			continue
		}
		r.hashes[h] = struct{}{}
	}
	return r
}

// PriorLinks is the number of links known from earlier runs.
func (r *Registry) PriorLinks() int { return len(r.links) }

// SeenLink reports whether the normalized link is already known.
func (r *Registry) SeenLink(link string) bool {
	l := r.norm.NormalizeLink(link)
	if _, ok := r.links[l]; ok {
		return true
	}
	_, ok := r.runLinks[l]
	return ok
}

// SeenHash reports whether the content hash is already known.
func (r *Registry) SeenHash(hash string) bool {
	if hash == "" {
		return false
	}
	if _, ok := r.hashes[hash]; ok {
		return true
	}
	_, ok := r.runHashes[hash]
	return ok
}

// Check rejects a post whose normalized link or content hash is known.
func (r *Registry) Check(p model.Post) Verdict {
	if r.SeenLink(p.Link) {
		return Verdict{Duplicate: true, Reason: "link"}
	}
	if r.SeenHash(p.ContentHash) {
		return Verdict{Duplicate: true, Reason: "hash"}
	}
	return Verdict{}
}

// Accept records an accepted post for the rest of the run.
func (r *Registry) Accept(p model.Post) {
	if p.Link != "" {
		r.runLinks[r.norm.NormalizeLink(p.Link)] = struct{}{}
	}
	if p.ContentHash != "" {
		r.runHashes[p.ContentHash] = struct{}{}
	}
}
