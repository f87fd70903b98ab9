/*
Package dictionary provides read-only word lookup over one of two backends:
an in-memory store loaded from a JSON file, or an on-disk SQLite store.

Both backends answer case-insensitive exact lookups. Only the JSON store can
enumerate its full vocabulary, which is what the in-process completion engine
is built from; the SQLite store instead exposes its own indexed prefix and
fuzzy query surface. The backend is picked once at startup from the
configured path, never per call.
*/
package dictionary

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Sense is a single definition with an optional usage example.
// The text is opaque to the engine; only the formatter reads it.
type Sense struct {
	Definition string
	Example    string
}

// Meaning groups the senses of a word under one part of speech.
type Meaning struct {
	PartOfSpeech string
	Senses       []Sense
}

// Entry is one dictionary headword. Word is the normalized lowercase key.
// Entries are immutable after load.
type Entry struct {
	Word     string
	Meanings []Meaning
}

// Store answers exact lookups. A missing word is (nil, false, nil):
// absence is a normal outcome, not an error. A non-nil error means the
// backend itself failed on this query and the caller should surface a
// transient backend error.
type Store interface {
	Lookup(word string) (*Entry, bool, error)
	Close() error
}

// KeyLister is the extra capability of backends that can enumerate every
// vocabulary word. Its presence at startup decides whether the in-process
// trie and fuzzy engine are built.
type KeyLister interface {
	Words(visit func(word string) error) error
}

// ScoredWord is one result of a backend's own indexed search.
type ScoredWord struct {
	Word     string
	Weight   int
	Distance int
}

// Searcher is the indexed query surface of backends that search on their
// own (the SQLite store). Used when the in-process engine is inactive.
// Queries honor ctx so a cancelled request aborts instead of answering.
type Searcher interface {
	WordsByPrefix(ctx context.Context, prefix string, limit int) ([]ScoredWord, error)
	WordsWithin(ctx context.Context, word string, maxDist, limit int) ([]ScoredWord, error)
}

// Open loads the configured dictionary backend. Paths ending in .db or
// .sqlite open the SQLite store; everything else is treated as a JSON file.
// Any load failure is returned as-is and is fatal to the caller: the
// process cannot serve without a vocabulary.
func Open(path string) (Store, error) {
	if path == "" {
		return nil, fmt.Errorf("dictionary path not configured")
	}
	if IsSQLitePath(path) {
		return OpenSQL(path)
	}
	return OpenJSON(path)
}

// IsSQLitePath reports whether the path points at a SQLite database.
func IsSQLitePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".db" || ext == ".sqlite" || ext == ".sqlite3"
}
