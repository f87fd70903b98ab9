package document

import (
	"fmt"
	"sync"
	"testing"
)

func TestWordAt(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.txt", "The well-known word isn't here.\nsecond line", 1)

	testCases := []struct {
		pos         Position
		word        string
		ok          bool
		description string
	}{
		{Position{0, 0}, "The", true, "start of line"},
		{Position{0, 2}, "The", true, "last rune of word"},
		{Position{0, 3}, "", false, "cursor on whitespace"},
		{Position{0, 6}, "well-known", true, "internal hyphen kept"},
		{Position{0, 22}, "isn't", true, "internal apostrophe kept"},
		{Position{0, 30}, "", false, "cursor on period"},
		{Position{1, 0}, "second", true, "second line"},
		{Position{5, 0}, "", false, "line out of range"},
		{Position{0, 99}, "", false, "character out of range"},
		{Position{0, -1}, "", false, "negative character"},
	}

	for _, tc := range testCases {
		word, span, ok := s.WordAt("file:///a.txt", tc.pos)
		if ok != tc.ok || word != tc.word {
			t.Errorf("%s: WordAt(%v) = (%q, %v), want (%q, %v)",
				tc.description, tc.pos, word, ok, tc.word, tc.ok)
		}
		if ok && (tc.pos.Character < span.Start || tc.pos.Character >= span.End) {
			t.Errorf("%s: span %+v does not contain cursor %d", tc.description, span, tc.pos.Character)
		}
	}
}

func TestWordAtTrimsEdgePunctuation(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.txt", "say 'hello' now", 1)

	word, span, ok := s.WordAt("file:///a.txt", Position{0, 6})
	if !ok || word != "hello" {
		t.Fatalf("WordAt on quoted word = (%q, %v), want (hello, true)", word, ok)
	}
	if span.Start != 5 || span.End != 10 {
		t.Errorf("span = %+v, want [5, 10)", span)
	}

	// Cursor on the quote itself is outside the trimmed word.
	if _, _, ok := s.WordAt("file:///a.txt", Position{0, 4}); ok {
		t.Error("cursor on leading quote should resolve to nothing")
	}
}

func TestPrefixAt(t *testing.T) {
	s := NewStore()
	s.Open("file:///a.txt", "the pass word", 1)

	testCases := []struct {
		pos         Position
		prefix      string
		ok          bool
		description string
	}{
		{Position{0, 8}, "pass", true, "cursor after token"},
		{Position{0, 6}, "pa", true, "cursor mid token"},
		{Position{0, 4}, "", false, "cursor at token start"},
		{Position{0, 3}, "the", true, "cursor just past previous word"},
		{Position{0, 13}, "word", true, "cursor at end of line"},
	}

	for _, tc := range testCases {
		prefix, _, ok := s.PrefixAt("file:///a.txt", tc.pos)
		if ok != tc.ok || prefix != tc.prefix {
			t.Errorf("%s: PrefixAt(%v) = (%q, %v), want (%q, %v)",
				tc.description, tc.pos, prefix, ok, tc.prefix, tc.ok)
		}
	}
}

func TestChangeVersioning(t *testing.T) {
	s := NewStore()
	uri := "file:///a.txt"
	s.Open(uri, "one", 3)

	if err := s.Change(uri, "two", 4); err != nil {
		t.Fatalf("Change to newer version: %v", err)
	}
	if doc, _ := s.Snapshot(uri); doc.Text != "two" || doc.Version != 4 {
		t.Fatalf("after change: %+v", doc)
	}

	// Stale and replayed versions must not roll the text back.
	if err := s.Change(uri, "stale", 4); err != nil {
		t.Fatalf("replayed version should be dropped silently: %v", err)
	}
	if err := s.Change(uri, "stale", 2); err != nil {
		t.Fatalf("old version should be dropped silently: %v", err)
	}
	if doc, _ := s.Snapshot(uri); doc.Text != "two" {
		t.Errorf("stale change applied: text = %q", doc.Text)
	}

	if err := s.Change("file:///unknown.txt", "x", 1); err == nil {
		t.Error("change for unopened document should error")
	}
}

func TestOpenCloseLifecycle(t *testing.T) {
	s := NewStore()
	uri := "file:///a.txt"

	s.Open(uri, "first", 1)
	s.Open(uri, "reopened", 1)
	if doc, _ := s.Snapshot(uri); doc.Text != "reopened" {
		t.Errorf("reopen should replace content, got %q", doc.Text)
	}

	s.Close(uri)
	if _, ok := s.Snapshot(uri); ok {
		t.Error("closed document still tracked")
	}
	s.Close(uri) // closing again is a no-op
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	s := NewStore()
	uri := "file:///a.txt"
	s.Open(uri, "word zero", 0)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(2)
		go func(v int) {
			defer wg.Done()
			s.Change(uri, fmt.Sprintf("word %d", v), v)
		}(i)
		go func() {
			defer wg.Done()
			if word, _, ok := s.WordAt(uri, Position{0, 0}); ok && word != "word" {
				t.Errorf("torn read: %q", word)
			}
		}()
	}
	wg.Wait()
}
