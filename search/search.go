// Package search provides the name-autocomplete collaborator. The server
// only depends on the Searcher interface; Index is the in-process default.
package search

import (
	"strings"
)

// Result is one autocomplete hit.
type Result struct {
	Name string `json:"name"`
}

// Searcher answers bounded, deduplicated prefix queries over the roster.
type Searcher interface {
	Search(q string, limit int) []Result
}

// entry pre-computes the lowercased forms matched against a query.
type entry struct {
	name   string
	lower  string
	tokens []string
}

// Index is a small in-memory prefix index: a query matches a name when it
// is a prefix of the full name or of any word in it.
type Index struct {
	entries []entry
}

func NewIndex(names []string) *Index {
	idx := &Index{entries: make([]entry, 0, len(names))}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		lower := strings.ToLower(name)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		idx.entries = append(idx.entries, entry{
			name:   name,
			lower:  lower,
			tokens: strings.Fields(lower),
		})
	}
	return idx
}

func (idx *Index) Search(q string, limit int) []Result {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" || limit <= 0 {
		return nil
	}

	var results []Result
	for _, e := range idx.entries {
		if e.matches(q) {
			results = append(results, Result{Name: e.name})
			if len(results) == limit {
				break
			}
		}
	}
	return results
}

func (e *entry) matches(q string) bool {
	if strings.HasPrefix(e.lower, q) {
		return true
	}
	for _, tok := range e.tokens {
		if strings.HasPrefix(tok, q) {
			return true
		}
	}
	return false
}
