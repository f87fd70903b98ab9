package dictionary

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/lexserve/lexserve/internal/utils"
)

// JSONStore holds a whole dictionary in memory, loaded once from a JSON
// file shaped word -> part-of-speech -> [sense strings]. Entries are kept
// in a patricia trie keyed by the normalized word, which gives exact
// lookups and the full key iteration the completion engine builds from.
// The store is never mutated after load.
type JSONStore struct {
	entries *patricia.Trie
	count   int
}

// OpenJSON reads and parses the dictionary file. An unreadable or
// malformed file is an error; the caller treats it as fatal.
func OpenJSON(path string) (*JSONStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary file %s: %w", path, err)
	}

	var raw map[string]map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed dictionary JSON in %s: %w", path, err)
	}

	store := &JSONStore{entries: patricia.NewTrie()}
	for word, posMap := range raw {
		key := utils.NormalizeWord(word)
		if key == "" {
			continue
		}
		entry := &Entry{Word: key, Meanings: buildMeanings(posMap)}
		store.entries.Insert(patricia.Prefix(key), entry)
		store.count++
	}

	log.Debugf("Loaded %d dictionary entries from %s", store.count, path)
	return store, nil
}

// buildMeanings converts the raw pos -> senses map into ordered meanings.
// Parts of speech are sorted by name so repeated loads render identically.
func buildMeanings(posMap map[string][]string) []Meaning {
	parts := make([]string, 0, len(posMap))
	for pos := range posMap {
		parts = append(parts, pos)
	}
	sort.Strings(parts)

	meanings := make([]Meaning, 0, len(parts))
	for _, pos := range parts {
		senses := make([]Sense, 0, len(posMap[pos]))
		for _, def := range posMap[pos] {
			senses = append(senses, Sense{Definition: def})
		}
		meanings = append(meanings, Meaning{PartOfSpeech: pos, Senses: senses})
	}
	return meanings
}

// Lookup returns the entry for a word, matching case-insensitively.
func (s *JSONStore) Lookup(word string) (*Entry, bool, error) {
	item := s.entries.Get(patricia.Prefix(utils.NormalizeWord(word)))
	if item == nil {
		return nil, false, nil
	}
	return item.(*Entry), true, nil
}

// Words visits every vocabulary word in key order.
func (s *JSONStore) Words(visit func(word string) error) error {
	return s.entries.Visit(func(p patricia.Prefix, _ patricia.Item) error {
		return visit(string(p))
	})
}

// Len returns the number of loaded entries.
func (s *JSONStore) Len() int { return s.count }

// Close is a no-op; the store owns no OS resources after load.
func (s *JSONStore) Close() error { return nil }
