// Package suggest is the core search engine: a frequency-scored prefix
// trie, a bounded edit-distance fuzzy matcher that walks the same trie,
// and the ranker that merges both candidate streams into one completion
// list.
//
// The trie is built once during startup from the full vocabulary and is
// never mutated afterwards, so any number of request workers can query it
// concurrently without locks.
package suggest

import (
	"sort"

	"github.com/lexserve/lexserve/internal/utils"
)

// Candidate is one scored vocabulary word produced by a query.
// Distance is the edit distance from the query; prefix matches are 0.
type Candidate struct {
	Word     string
	Score    int
	Distance int
}

// node is one character edge of the trie. A non-empty word marks a
// terminal carrying the word's frequency score.
type node struct {
	children map[rune]*node
	word     string
	score    int
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Trie indexes the vocabulary by shared character prefixes.
type Trie struct {
	root *node
	size int
}

// NewTrie creates an empty trie.
func NewTrie() *Trie {
	return &Trie{root: newNode()}
}

// Insert adds a word with its frequency score. Words are normalized to
// lowercase; inserting a word twice keeps the higher score.
func (t *Trie) Insert(word string, score int) {
	key := utils.NormalizeWord(word)
	if key == "" {
		return
	}
	n := t.root
	for _, r := range key {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
	}
	if n.word == "" {
		n.word = key
		n.score = score
		t.size++
		return
	}
	if score > n.score {
		n.score = score
	}
}

// Len returns the number of distinct words inserted.
func (t *Trie) Len() int { return t.size }

// Contains reports whether the exact word is in the vocabulary.
func (t *Trie) Contains(word string) bool {
	n := t.descend(utils.NormalizeWord(word))
	return n != nil && n.word != ""
}

// descend follows the edges spelled by prefix, or returns nil when any
// character has no edge.
func (t *Trie) descend(prefix string) *node {
	n := t.root
	for _, r := range prefix {
		child, ok := n.children[r]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

// CompleteByPrefix returns up to limit vocabulary words starting with
// prefix, ordered by descending frequency score, ties broken
// lexicographically. An unmatched prefix returns nothing.
// Locating the subtree is O(len(prefix)); ranking the k matches below it
// is O(k log k).
func (t *Trie) CompleteByPrefix(prefix string, limit int) []Candidate {
	if limit < 1 {
		return nil
	}
	start := t.descend(utils.NormalizeWord(prefix))
	if start == nil {
		return nil
	}

	var out []Candidate
	collectTerminals(start, &out)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func collectTerminals(n *node, out *[]Candidate) {
	if n.word != "" {
		*out = append(*out, Candidate{Word: n.word, Score: n.score})
	}
	for _, child := range n.children {
		collectTerminals(child, out)
	}
}
