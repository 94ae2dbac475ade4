package search

import (
	"testing"
)

var roster = []string{
	"Monkey D. Luffy",
	"Roronoa Zoro",
	"Nico Robin",
	"Monkey D. Garp",
	"monkey d. garp", // case duplicate, must be dropped
	"Trafalgar D. Water Law",
}

func names(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Name)
	}
	return out
}

func TestIndex_PrefixOnFullName(t *testing.T) {
	idx := NewIndex(roster)

	got := names(idx.Search("monkey", 10))
	if len(got) != 2 {
		t.Fatalf("Expected 2 hits for 'monkey', got %v", got)
	}
}

func TestIndex_PrefixOnAnyToken(t *testing.T) {
	idx := NewIndex(roster)

	got := names(idx.Search("zor", 10))
	if len(got) != 1 || got[0] != "Roronoa Zoro" {
		t.Errorf("Token prefix should match Zoro, got %v", got)
	}

	got = names(idx.Search("law", 10))
	if len(got) != 1 || got[0] != "Trafalgar D. Water Law" {
		t.Errorf("Last-token prefix should match Law, got %v", got)
	}
}

func TestIndex_CaseInsensitiveAndTrimmed(t *testing.T) {
	idx := NewIndex(roster)

	if got := names(idx.Search("  ROBIN  ", 10)); len(got) != 1 || got[0] != "Nico Robin" {
		t.Errorf("Case/whitespace must not matter, got %v", got)
	}
}

func TestIndex_Limit(t *testing.T) {
	idx := NewIndex(roster)

	if got := idx.Search("d", 1); len(got) != 1 {
		t.Errorf("Limit 1 must cap the result set, got %v", got)
	}
	if got := idx.Search("monkey", 0); got != nil {
		t.Errorf("Limit 0 returns nothing, got %v", got)
	}
}

func TestIndex_EmptyQuery(t *testing.T) {
	idx := NewIndex(roster)

	if got := idx.Search("", 10); got != nil {
		t.Errorf("Empty query returns nothing, got %v", got)
	}
	if got := idx.Search("   ", 10); got != nil {
		t.Errorf("Whitespace query returns nothing, got %v", got)
	}
}

func TestIndex_Dedup(t *testing.T) {
	idx := NewIndex(roster)

	got := names(idx.Search("garp", 10))
	if len(got) != 1 {
		t.Errorf("Case-duplicate names must index once, got %v", got)
	}
}

func TestIndex_NoMatch(t *testing.T) {
	idx := NewIndex(roster)

	if got := idx.Search("buggy", 10); len(got) != 0 {
		t.Errorf("Expected no hits, got %v", got)
	}
}
