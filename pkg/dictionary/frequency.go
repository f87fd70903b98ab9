package dictionary

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lexserve/lexserve/internal/utils"
)

// Frequencies maps a normalized word to its popularity score. Higher is
// more frequent. Loaded once at startup and read-only afterwards; words
// without a record score zero, the lowest priority.
type Frequencies map[string]int

// Score returns the word's score, or zero when it has no record.
func (f Frequencies) Score(word string) int {
	return f[utils.NormalizeWord(word)]
}

// LoadFrequencies reads a frequency source: a SQLite database with a
// word_frequencies(word, frequency) table, or a plain text file with one
// "word<TAB>count" (or space separated) pair per line. An empty path
// yields an empty table; a configured but unreadable source is an error
// the caller treats as fatal.
func LoadFrequencies(path string) (Frequencies, error) {
	if path == "" {
		return Frequencies{}, nil
	}
	if IsSQLitePath(path) {
		return loadFrequenciesSQL(path)
	}
	return loadFrequenciesText(path)
}

func loadFrequenciesSQL(path string) (Frequencies, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frequency database %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT word, frequency FROM word_frequencies`)
	if err != nil {
		return nil, fmt.Errorf("frequency database %s is unusable: %w", path, err)
	}
	defer rows.Close()

	freqs := make(Frequencies)
	for rows.Next() {
		var word string
		var score int
		if err := rows.Scan(&word, &score); err != nil {
			return nil, fmt.Errorf("frequency row scan failed: %w", err)
		}
		freqs[utils.NormalizeWord(word)] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("frequency query failed: %w", err)
	}

	log.Debugf("Loaded %d frequency records from %s", len(freqs), path)
	return freqs, nil
}

func loadFrequenciesText(path string) (Frequencies, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open frequency file %s: %w", path, err)
	}
	defer file.Close()

	freqs := make(Frequencies)
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed frequency record at %s:%d", path, lineNo)
		}
		score, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("malformed frequency count at %s:%d: %w", path, lineNo, err)
		}
		freqs[utils.NormalizeWord(fields[0])] = score
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read frequency file %s: %w", path, err)
	}

	log.Debugf("Loaded %d frequency records from %s", len(freqs), path)
	return freqs, nil
}
