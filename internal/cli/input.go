// Package cli provides an interactive prompt for exercising lookups and
// completions directly, without a wire client. DBG and testing only.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lexserve/lexserve/pkg/config"
	"github.com/lexserve/lexserve/pkg/dictionary"
	"github.com/lexserve/lexserve/pkg/session"
	"github.com/lexserve/lexserve/pkg/suggest"
)

// InputHandler reads prefixes and lookup commands from stdin and prints
// results with frequency and source information.
type InputHandler struct {
	cfg    *config.Config
	store  dictionary.Store
	engine *suggest.Trie
	search dictionary.Searcher
}

// NewInputHandler builds a handler over an already-loaded backend.
// Exactly one of engine and search is expected to be non-nil.
func NewInputHandler(cfg *config.Config, store dictionary.Store, engine *suggest.Trie, search dictionary.Searcher) *InputHandler {
	return &InputHandler{cfg: cfg, store: store, engine: engine, search: search}
}

// Start begins the prompt loop. It runs until stdin closes or reading
// fails.
func (h *InputHandler) Start() error {
	log.Print("LexServe CLI [DBG]")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a prefix for completions, or :def <word> for a definition (Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if word, ok := strings.CutPrefix(line, ":def "); ok {
			h.handleLookup(strings.TrimSpace(word))
			continue
		}
		h.handleComplete(line)
	}
}

// handleLookup prints the rendered entry for one word.
func (h *InputHandler) handleLookup(word string) {
	if word == "" {
		log.Error("Usage: :def <word>")
		return
	}
	start := time.Now()
	entry, found, err := h.store.Lookup(word)
	elapsed := time.Since(start)
	if err != nil {
		log.Errorf("Lookup failed for '%s': %v", word, err)
		return
	}
	log.Debugf("Took [ %v ] for word '%s'", elapsed, word)
	if !found {
		log.Warnf("%s", session.FormatMissing(word))
		return
	}
	fmt.Println(session.FormatEntry(entry, h.cfg.Formatting))
}

// handleComplete prints merged prefix and fuzzy suggestions for a prefix.
func (h *InputHandler) handleComplete(prefix string) {
	if len([]rune(prefix)) > h.cfg.Server.MaxPrefix {
		log.Errorf("Prefix too long: %s", prefix)
		return
	}

	limit := h.cfg.Completion.MaxResults
	maxDist := h.cfg.Completion.MaxDistance

	start := time.Now()
	var items []suggest.CompletionItem
	if h.engine != nil {
		byPrefix := h.engine.CompleteByPrefix(prefix, limit)
		fuzzy, err := h.engine.FuzzyMatch(context.Background(), prefix, maxDist)
		if err != nil {
			log.Errorf("Fuzzy match failed for '%s': %v", prefix, err)
			return
		}
		items = suggest.Merge(byPrefix, fuzzy, limit)
	} else {
		byPrefix, err := h.search.WordsByPrefix(context.Background(), prefix, limit)
		if err != nil {
			log.Errorf("Prefix query failed for '%s': %v", prefix, err)
			return
		}
		fuzzy, err := h.search.WordsWithin(context.Background(), prefix, maxDist, limit)
		if err != nil {
			log.Errorf("Fuzzy query failed for '%s': %v", prefix, err)
			return
		}
		items = suggest.Merge(scoredToCandidates(byPrefix), scoredToCandidates(fuzzy), limit)
	}
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for prefix '%s'", elapsed, prefix)

	if len(items) == 0 {
		log.Warnf("No suggestions found for prefix: '%s'", prefix)
		return
	}

	log.Printf("Found %d suggestions for prefix '%s':", len(items), prefix)
	for i, it := range items {
		fmtFreq := formatWithCommas(it.Score)
		clWord := fmt.Sprintf("\033[38;5;75m%s\033[0m", it.Word)
		log.Printf("%2d. %-40s (freq: %8s, %s)", i+1, clWord, fmtFreq, it.Source)
	}
}

func scoredToCandidates(rows []dictionary.ScoredWord) []suggest.Candidate {
	out := make([]suggest.Candidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, suggest.Candidate{Word: r.Word, Score: r.Weight, Distance: r.Distance})
	}
	return out
}

// formatWithCommas formats an integer with comma separators.
func formatWithCommas(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	str := fmt.Sprintf("%d", n)
	result := ""
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(char)
	}
	return result
}
