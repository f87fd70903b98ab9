package suggest

import (
	"context"

	"github.com/lexserve/lexserve/internal/utils"
)

// FuzzyMatch returns every vocabulary word whose edit distance to query
// is at most maxDist, with the exact distance on each candidate.
//
// Distance is plain Levenshtein: insertions, deletions and substitutions
// cost one each. Transpositions are not a single edit; "appel" is two
// edits from "apple", not one.
//
// The walk shares the completion trie. One dynamic-programming row is
// carried per trie depth, and a whole subtree is skipped as soon as the
// smallest value in its row exceeds maxDist, since extending the path can
// never shrink any cell. This prunes aggressively but exactly: no word
// within the bound is ever discarded.
//
// ctx is checked at every node boundary so a cancelled request aborts a
// wide walk promptly; the error is then ctx.Err().
func (t *Trie) FuzzyMatch(ctx context.Context, query string, maxDist int) ([]Candidate, error) {
	key := []rune(utils.NormalizeWord(query))
	if len(key) == 0 || maxDist < 0 {
		return nil, nil
	}

	// Row zero: transforming the empty trie path into the first i query
	// characters costs i insertions.
	row := make([]int, len(key)+1)
	for i := range row {
		row[i] = i
	}

	var out []Candidate
	for r, child := range t.root.children {
		if err := fuzzyWalk(ctx, child, r, key, row, maxDist, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// fuzzyWalk extends the DP by one trie edge and recurses while any cell
// of the new row is still within the bound.
func fuzzyWalk(ctx context.Context, n *node, edge rune, query []rune, prevRow []int, maxDist int, out *[]Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cols := len(query) + 1
	row := make([]int, cols)
	row[0] = prevRow[0] + 1
	rowMin := row[0]
	for i := 1; i < cols; i++ {
		cost := 1
		if query[i-1] == edge {
			cost = 0
		}
		row[i] = min(row[i-1]+1, prevRow[i]+1, prevRow[i-1]+cost)
		if row[i] < rowMin {
			rowMin = row[i]
		}
	}

	if n.word != "" && row[cols-1] <= maxDist {
		*out = append(*out, Candidate{Word: n.word, Score: n.score, Distance: row[cols-1]})
	}

	if rowMin > maxDist {
		return nil
	}
	for r, child := range n.children {
		if err := fuzzyWalk(ctx, child, r, query, row, maxDist, out); err != nil {
			return err
		}
	}
	return nil
}
