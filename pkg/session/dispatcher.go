/*
Package session holds the protocol state machine and the request handlers
behind it.

A Dispatcher moves through four states: it starts Uninitialized, becomes
Ready after initialize, ShuttingDown after shutdown, and Terminated after
exit. Mutating requests are only honored while Ready; lookups are still
answered while draining. Handlers never touch the transport, so the state
machine is testable without a wire.
*/
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/lexserve/lexserve/internal/utils"
	"github.com/lexserve/lexserve/pkg/config"
	"github.com/lexserve/lexserve/pkg/dictionary"
	"github.com/lexserve/lexserve/pkg/document"
	"github.com/lexserve/lexserve/pkg/suggest"
)

// State is the session lifecycle phase. Transitions only move forward.
type State int32

const (
	StateUninitialized State = iota
	StateReady
	StateShuttingDown
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateShuttingDown:
		return "shutting-down"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// CommandEnableCompletion toggles or sets whether completion requests are
// served. It is the only workspace command the session understands.
const CommandEnableCompletion = "dictionary.enable_cmp"

// InitResult is what initialize reports back to the client.
type InitResult struct {
	Words             int
	CompletionEnabled bool
}

// Completion is one ranked suggestion ready for the wire.
type Completion struct {
	Word   string
	Detail string
}

// Dispatcher routes decoded requests to the engine and enforces the
// session state machine. All methods are safe for concurrent use.
type Dispatcher struct {
	mu    sync.Mutex
	state State

	cfg    *config.Config
	store  dictionary.Store
	search dictionary.Searcher
	engine *suggest.Trie
	docs   *document.Store

	cmpEnabled  atomic.Bool
	didShutdown atomic.Bool
}

// New wires a dispatcher to its backend. Backends that can list their
// keys get the in-process trie built from the union of dictionary and
// frequency vocabularies; backends that cannot must search on their own.
func New(cfg *config.Config, store dictionary.Store, freqs dictionary.Frequencies) (*Dispatcher, error) {
	engine, search, err := BuildVocabulary(store, freqs)
	if err != nil {
		return nil, err
	}
	d := &Dispatcher{
		state:  StateUninitialized,
		cfg:    cfg,
		store:  store,
		engine: engine,
		search: search,
		docs:   document.NewStore(),
	}
	d.cmpEnabled.Store(cfg.Completion.Enabled)
	return d, nil
}

// BuildVocabulary picks the completion path for a backend: a trie over
// the union of dictionary and frequency keys when the backend can list
// them, otherwise the backend's own indexed searcher. Exactly one of the
// returns is non-nil on success.
func BuildVocabulary(store dictionary.Store, freqs dictionary.Frequencies) (*suggest.Trie, dictionary.Searcher, error) {
	if lister, ok := store.(dictionary.KeyLister); ok {
		trie := suggest.NewTrie()
		err := lister.Words(func(word string) error {
			trie.Insert(word, freqs.Score(word))
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
		for word, score := range freqs {
			trie.Insert(word, score)
		}
		log.Debugf("Built completion trie with %d words", trie.Len())
		return trie, nil, nil
	}
	searcher, ok := store.(dictionary.Searcher)
	if !ok {
		return nil, nil, fmt.Errorf("backend can neither list keys nor search")
	}
	return nil, searcher, nil
}

// State returns the current lifecycle phase.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// CompletionEnabled reports whether completion requests are being served.
func (d *Dispatcher) CompletionEnabled() bool {
	return d.cmpEnabled.Load()
}

// Initialize moves the session to Ready. Valid exactly once, from
// Uninitialized.
func (d *Dispatcher) Initialize() (InitResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateUninitialized {
		return InitResult{}, errInvalidState("initialize", d.state)
	}
	d.state = StateReady
	res := InitResult{CompletionEnabled: d.cmpEnabled.Load()}
	if d.engine != nil {
		res.Words = d.engine.Len()
	}
	return res, nil
}

// Shutdown starts the drain phase. In-flight requests finish; new
// mutating requests are rejected from here on.
func (d *Dispatcher) Shutdown() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateReady {
		return errInvalidState("shutdown", d.state)
	}
	d.state = StateShuttingDown
	d.didShutdown.Store(true)
	return nil
}

// Exit terminates the session from any state and releases the backend.
// Returns true when shutdown preceded it, which is the clean path.
func (d *Dispatcher) Exit() bool {
	d.mu.Lock()
	d.state = StateTerminated
	d.mu.Unlock()
	if err := d.store.Close(); err != nil {
		log.Warnf("Closing dictionary backend: %v", err)
	}
	return d.didShutdown.Load()
}

// requireMutable gates document notifications and commands: they are only
// honored while Ready.
func (d *Dispatcher) requireMutable(method string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateReady {
		return errInvalidState(method, d.state)
	}
	return nil
}

// requireServing gates lookups: answered while Ready and while draining.
func (d *Dispatcher) requireServing(method string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateReady && d.state != StateShuttingDown {
		return errInvalidState(method, d.state)
	}
	return nil
}

// DidOpen starts tracking a document.
func (d *Dispatcher) DidOpen(uri, text string, version int) error {
	if err := d.requireMutable("textDocument/didOpen"); err != nil {
		return err
	}
	d.docs.Open(uri, text, version)
	return nil
}

// DidChange replaces a document's tracked text.
func (d *Dispatcher) DidChange(uri, text string, version int) error {
	if err := d.requireMutable("textDocument/didChange"); err != nil {
		return err
	}
	if err := d.docs.Change(uri, text, version); err != nil {
		return errBadRequest("%v", err)
	}
	return nil
}

// DidClose stops tracking a document.
func (d *Dispatcher) DidClose(uri string) error {
	if err := d.requireMutable("textDocument/didClose"); err != nil {
		return err
	}
	d.docs.Close(uri)
	return nil
}

// Hover returns the formatted entry for the word under the cursor. A
// cursor outside any word yields ok=false with no content; a word the
// dictionary misses yields placeholder content, not an error.
func (d *Dispatcher) Hover(ctx context.Context, uri string, pos document.Position) (string, bool, error) {
	return d.lookupAt(ctx, "textDocument/hover", uri, pos, FormatEntry)
}

// SignatureHelp returns the short-form entry for the word under the
// cursor, following the same miss semantics as Hover.
func (d *Dispatcher) SignatureHelp(ctx context.Context, uri string, pos document.Position) (string, bool, error) {
	return d.lookupAt(ctx, "textDocument/signatureHelp", uri, pos, FormatEntryBrief)
}

func (d *Dispatcher) lookupAt(ctx context.Context, method, uri string, pos document.Position, render func(*dictionary.Entry, config.FormattingConfig) string) (string, bool, error) {
	if err := d.requireServing(method); err != nil {
		return "", false, err
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	word, _, ok := d.docs.WordAt(uri, pos)
	if !ok {
		return "", false, nil
	}
	entry, found, err := d.store.Lookup(word)
	if err != nil {
		return "", false, err
	}
	if !found {
		return FormatMissing(word), true, nil
	}
	return render(entry, d.cfg.Formatting), true, nil
}

// Completion returns ranked suggestions for the token prefix before the
// cursor, merging prefix and bounded fuzzy matches. When completion is
// disabled the matcher is never consulted and the result is empty.
func (d *Dispatcher) Completion(ctx context.Context, uri string, pos document.Position) ([]Completion, error) {
	if err := d.requireServing("textDocument/completion"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !d.cmpEnabled.Load() {
		return nil, nil
	}
	prefix, _, ok := d.docs.PrefixAt(uri, pos)
	if !ok {
		return nil, nil
	}
	if len([]rune(prefix)) > d.cfg.Server.MaxPrefix {
		return nil, errBadRequest("prefix exceeds %d characters", d.cfg.Server.MaxPrefix)
	}

	caps := utils.CapitalPositions(prefix)
	limit := d.cfg.Completion.MaxResults
	maxDist := d.cfg.Completion.MaxDistance

	var items []suggest.CompletionItem
	if d.engine != nil {
		byPrefix := d.engine.CompleteByPrefix(prefix, limit)
		fuzzy, err := d.engine.FuzzyMatch(ctx, prefix, maxDist)
		if err != nil {
			return nil, err
		}
		items = suggest.Merge(byPrefix, fuzzy, limit)
	} else {
		byPrefix, err := d.search.WordsByPrefix(ctx, utils.NormalizeWord(prefix), limit)
		if err != nil {
			return nil, err
		}
		fuzzy, err := d.search.WordsWithin(ctx, utils.NormalizeWord(prefix), maxDist, limit)
		if err != nil {
			return nil, err
		}
		items = suggest.Merge(toCandidates(byPrefix), toCandidates(fuzzy), limit)
	}

	out := make([]Completion, 0, len(items))
	for _, it := range items {
		out = append(out, Completion{
			Word:   utils.ApplyCapitalization(it.Word, caps),
			Detail: it.Source.String(),
		})
	}
	return out, nil
}

func toCandidates(rows []dictionary.ScoredWord) []suggest.Candidate {
	out := make([]suggest.Candidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, suggest.Candidate{Word: r.Word, Score: r.Weight, Distance: r.Distance})
	}
	return out
}

// ExecuteCommand runs a workspace command. With a boolean argument
// completion serving is set to it; with no argument it toggles. Repeating
// the same set is a no-op, not an error. Returns the resulting state.
func (d *Dispatcher) ExecuteCommand(cmd string, arg *bool) (bool, error) {
	if err := d.requireMutable("workspace/executeCommand"); err != nil {
		return false, err
	}
	if cmd != CommandEnableCompletion {
		return false, errBadRequest("unknown command %q", cmd)
	}
	var next bool
	if arg != nil {
		next = *arg
	} else {
		next = !d.cmpEnabled.Load()
	}
	d.cmpEnabled.Store(next)
	log.Debugf("Completion serving set to %v", next)
	return next, nil
}
