package dictionary

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/lexserve/lexserve/internal/utils"
)

// SQLStore serves lookups from an on-disk SQLite dictionary with the schema
//
//	words(id, word [, frequency])
//	parts_of_speech(id, name)
//	definitions(word_id, pos_id, definition [, example])
//
// Unlike the JSON store it does not enumerate its vocabulary; prefix and
// fuzzy queries go through its own indexed search surface instead
// (WordsByPrefix, WordsWithin). Query failures after startup are transient:
// they fail the one request, never the session.
type SQLStore struct {
	db        *sql.DB
	hasWeight bool
}

// OpenSQL opens the database and verifies the schema is usable. Errors
// here are fatal to the caller.
func OpenSQL(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	// Check the schema now so a missing table fails at startup, not on the
	// first live query.
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM words`).Scan(&n); err != nil {
		db.Close()
		return nil, fmt.Errorf("dictionary database %s is unusable: %w", path, err)
	}

	store := &SQLStore{db: db}
	if err := db.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info('words') WHERE name = 'frequency'`,
	).Scan(&n); err == nil && n > 0 {
		store.hasWeight = true
	}

	log.Debugf("Opened SQLite dictionary %s (%s frequency weights)", path,
		map[bool]string{true: "with", false: "without"}[store.hasWeight])
	return store, nil
}

// Lookup fetches every definition row for a word, grouped by part of
// speech in name order.
func (s *SQLStore) Lookup(word string) (*Entry, bool, error) {
	key := utils.NormalizeWord(word)
	rows, err := s.db.Query(`
		SELECT p.name, d.definition, COALESCE(d.example, '')
		FROM words w
		JOIN definitions d ON w.id = d.word_id
		JOIN parts_of_speech p ON d.pos_id = p.id
		WHERE w.word = ?1 COLLATE NOCASE
		ORDER BY p.name`, key)
	if err != nil {
		return nil, false, fmt.Errorf("dictionary query failed: %w", err)
	}
	defer rows.Close()

	byPos := make(map[string][]Sense)
	for rows.Next() {
		var pos, def, example string
		if err := rows.Scan(&pos, &def, &example); err != nil {
			return nil, false, fmt.Errorf("dictionary row scan failed: %w", err)
		}
		byPos[pos] = append(byPos[pos], Sense{Definition: def, Example: example})
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("dictionary query failed: %w", err)
	}
	if len(byPos) == 0 {
		return nil, false, nil
	}

	parts := make([]string, 0, len(byPos))
	for pos := range byPos {
		parts = append(parts, pos)
	}
	sort.Strings(parts)
	entry := &Entry{Word: key}
	for _, pos := range parts {
		entry.Meanings = append(entry.Meanings, Meaning{PartOfSpeech: pos, Senses: byPos[pos]})
	}
	return entry, true, nil
}

// WordsByPrefix runs an indexed prefix scan, ordered by frequency weight
// when the schema carries one, else alphabetically.
func (s *SQLStore) WordsByPrefix(ctx context.Context, prefix string, limit int) ([]ScoredWord, error) {
	key := utils.NormalizeWord(prefix)
	if key == "" || limit < 1 {
		return nil, nil
	}

	query := `SELECT word, 0 FROM words WHERE word LIKE ?1 || '%' ORDER BY word LIMIT ?2`
	if s.hasWeight {
		query = `SELECT word, COALESCE(frequency, 0) FROM words
			WHERE word LIKE ?1 || '%'
			ORDER BY COALESCE(frequency, 0) DESC, word LIMIT ?2`
	}

	rows, err := s.db.QueryContext(ctx, query, key, limit)
	if err != nil {
		return nil, fmt.Errorf("prefix query failed: %w", err)
	}
	defer rows.Close()

	var out []ScoredWord
	for rows.Next() {
		var sw ScoredWord
		if err := rows.Scan(&sw.Word, &sw.Weight); err != nil {
			return nil, fmt.Errorf("prefix row scan failed: %w", err)
		}
		out = append(out, sw)
	}
	return out, rows.Err()
}

// WordsWithin returns dictionary words no more than maxDist edits from
// word. The SQL side only bands candidates by length, which can never
// exclude a true match (an edit changes length by at most one); the exact
// distance check happens here.
func (s *SQLStore) WordsWithin(ctx context.Context, word string, maxDist, limit int) ([]ScoredWord, error) {
	key := utils.NormalizeWord(word)
	if key == "" || maxDist < 0 || limit < 1 {
		return nil, nil
	}

	query := `SELECT word, 0 FROM words WHERE length(word) BETWEEN ?1 - ?2 AND ?1 + ?2`
	if s.hasWeight {
		query = `SELECT word, COALESCE(frequency, 0) FROM words
			WHERE length(word) BETWEEN ?1 - ?2 AND ?1 + ?2`
	}

	rows, err := s.db.QueryContext(ctx, query, utf8.RuneCountInString(key), maxDist)
	if err != nil {
		return nil, fmt.Errorf("fuzzy query failed: %w", err)
	}
	defer rows.Close()

	var out []ScoredWord
	for rows.Next() {
		var sw ScoredWord
		if err := rows.Scan(&sw.Word, &sw.Weight); err != nil {
			return nil, fmt.Errorf("fuzzy row scan failed: %w", err)
		}
		sw.Distance = editDistance(key, utils.NormalizeWord(sw.Word))
		if sw.Distance <= maxDist {
			out = append(out, sw)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error { return s.db.Close() }

// editDistance is two-row Wagner-Fischer Levenshtein: insertions,
// deletions and substitutions, no transpositions.
func editDistance(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}
