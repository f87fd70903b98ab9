// Package document tracks the text of open editor documents and resolves
// the word token under a cursor position.
package document

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lexserve/lexserve/internal/utils"
)

// Position is a zero-based line/character cursor location. Character
// counts runes, not bytes.
type Position struct {
	Line      int
	Character int
}

// Span marks the rune range [Start, End) of a token on one line.
type Span struct {
	Line  int
	Start int
	End   int
}

// Document is one open document's version-consistent snapshot.
type Document struct {
	URI     string
	Version int
	Text    string
}

// Store tracks open documents. It is the only mutable shared state in the
// engine: lifecycle notifications take the write lock, word resolution
// takes the read lock, and every reader sees a complete snapshot, never a
// half-applied edit.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewStore creates an empty document store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Open starts tracking a document. Reopening an already-open URI replaces
// its content, matching editor behavior on reload.
func (s *Store) Open(uri, text string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = &Document{URI: uri, Version: version, Text: text}
}

// Change atomically replaces the tracked snapshot with a newer version.
// Changes for unknown documents are an error; stale or replayed versions
// are dropped so an out-of-order change can never roll text back.
func (s *Store) Change(uri, text string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return fmt.Errorf("change for unopened document %s", uri)
	}
	if version <= doc.Version {
		log.Debugf("Ignoring stale change for %s: version %d <= %d", uri, version, doc.Version)
		return nil
	}
	s.docs[uri] = &Document{URI: uri, Version: version, Text: text}
	return nil
}

// Close stops tracking a document. Closing an unknown URI is a no-op.
func (s *Store) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// Snapshot returns a value copy of the document's current state.
func (s *Store) Snapshot(uri string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// Len returns the number of tracked documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// WordAt resolves the word token containing pos. Word characters are
// letters and digits plus hyphens and apostrophes between them; a cursor
// on whitespace or punctuation resolves to nothing.
func (s *Store) WordAt(uri string, pos Position) (string, Span, bool) {
	doc, ok := s.Snapshot(uri)
	if !ok {
		return "", Span{}, false
	}
	return wordAt(doc.Text, pos)
}

// PrefixAt resolves the part of the token strictly before pos, which is
// what a completion request matches against. A cursor at the start of a
// word, or outside any word, yields nothing.
func (s *Store) PrefixAt(uri string, pos Position) (string, Span, bool) {
	doc, ok := s.Snapshot(uri)
	if !ok {
		return "", Span{}, false
	}
	return prefixAt(doc.Text, pos)
}

func lineRunes(text string, line int) ([]rune, bool) {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return nil, false
	}
	return []rune(strings.TrimSuffix(lines[line], "\r")), true
}

func wordAt(text string, pos Position) (string, Span, bool) {
	chars, ok := lineRunes(text, pos.Line)
	if !ok || pos.Character < 0 || pos.Character >= len(chars) {
		return "", Span{}, false
	}
	if !utils.IsWordRune(chars[pos.Character]) {
		return "", Span{}, false
	}

	start, end := pos.Character, pos.Character+1
	for start > 0 && utils.IsWordRune(chars[start-1]) {
		start--
	}
	for end < len(chars) && utils.IsWordRune(chars[end]) {
		end++
	}

	// Trim edge hyphens/apostrophes: only internal ones belong to the word.
	trimmed, word := utils.TrimWordEdges(chars[start:end])
	start += trimmed
	end = start + len(word)
	if len(word) == 0 || pos.Character < start || pos.Character >= end {
		return "", Span{}, false
	}
	return string(word), Span{Line: pos.Line, Start: start, End: end}, true
}

func prefixAt(text string, pos Position) (string, Span, bool) {
	chars, ok := lineRunes(text, pos.Line)
	if !ok || pos.Character < 0 || pos.Character > len(chars) {
		return "", Span{}, false
	}

	start := pos.Character
	for start > 0 && utils.IsWordRune(chars[start-1]) {
		start--
	}
	trimmed, word := utils.TrimWordEdges(chars[start:pos.Character])
	start += trimmed
	if len(word) == 0 {
		return "", Span{}, false
	}
	return string(word), Span{Line: pos.Line, Start: start, End: start + len(word)}, true
}
