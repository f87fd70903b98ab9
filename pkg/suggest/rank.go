package suggest

import "sort"

// Source tags where a completion item came from.
type Source uint8

const (
	// SourcePrefix marks items found by prefix descent.
	SourcePrefix Source = iota
	// SourceFuzzy marks items found within the edit-distance bound.
	SourceFuzzy
)

// String renders the source tag for response detail text.
func (s Source) String() string {
	if s == SourceFuzzy {
		return "fuzzy"
	}
	return "prefix"
}

// CompletionItem is one ranked suggestion.
type CompletionItem struct {
	Word     string
	Source   Source
	Score    int
	Distance int
}

// Merge combines prefix and fuzzy candidates into a single deduplicated
// list capped at limit. Order: prefix matches before fuzzy ones, then
// higher frequency score, then smaller edit distance, then
// lexicographic. A word present in both sets keeps its prefix-sourced
// item.
func Merge(prefix, fuzzy []Candidate, limit int) []CompletionItem {
	if limit < 1 {
		return nil
	}

	seen := make(map[string]struct{}, len(prefix)+len(fuzzy))
	items := make([]CompletionItem, 0, len(prefix)+len(fuzzy))

	for _, c := range prefix {
		if _, dup := seen[c.Word]; dup {
			continue
		}
		seen[c.Word] = struct{}{}
		items = append(items, CompletionItem{Word: c.Word, Source: SourcePrefix, Score: c.Score})
	}
	for _, c := range fuzzy {
		if _, dup := seen[c.Word]; dup {
			continue
		}
		seen[c.Word] = struct{}{}
		items = append(items, CompletionItem{Word: c.Word, Source: SourceFuzzy, Score: c.Score, Distance: c.Distance})
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		return a.Word < b.Word
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
