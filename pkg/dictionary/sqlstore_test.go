package dictionary

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// buildTestDB creates a small dictionary database with frequency weights.
func buildTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE words (id INTEGER PRIMARY KEY, word TEXT NOT NULL, frequency INTEGER)`,
		`CREATE TABLE parts_of_speech (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE definitions (word_id INTEGER, pos_id INTEGER, definition TEXT NOT NULL, example TEXT)`,
		`INSERT INTO words VALUES (1, 'apple', 100), (2, 'apply', 95), (3, 'ample', 60), (4, 'banana', 90)`,
		`INSERT INTO parts_of_speech VALUES (1, 'noun'), (2, 'verb')`,
		`INSERT INTO definitions VALUES
			(1, 1, 'A round fruit.', 'She ate an apple.'),
			(1, 2, 'To become apple-like.', NULL),
			(2, 2, 'To put to use.', NULL),
			(3, 1, 'More than enough.', NULL),
			(4, 1, 'A long yellow fruit.', NULL)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return path
}

func TestOpenSQLRejectsBadSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE unrelated (x)`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := OpenSQL(path); err == nil {
		t.Fatal("database without a words table should fail at open")
	}
}

func TestSQLStoreLookup(t *testing.T) {
	store, err := OpenSQL(buildTestDB(t))
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	defer store.Close()

	entry, found, err := store.Lookup("APPLE")
	if err != nil || !found {
		t.Fatalf("Lookup(APPLE) = (found=%v, err=%v), want hit", found, err)
	}
	if len(entry.Meanings) != 2 {
		t.Fatalf("meanings = %d, want 2", len(entry.Meanings))
	}
	if entry.Meanings[0].PartOfSpeech != "noun" || entry.Meanings[1].PartOfSpeech != "verb" {
		t.Errorf("meanings out of order: %+v", entry.Meanings)
	}
	if entry.Meanings[0].Senses[0].Example != "She ate an apple." {
		t.Errorf("example lost: %+v", entry.Meanings[0].Senses[0])
	}

	if _, found, err := store.Lookup("pear"); err != nil || found {
		t.Errorf("Lookup(pear) = (found=%v, err=%v), want clean miss", found, err)
	}
}

func TestSQLStoreWordsByPrefix(t *testing.T) {
	store, err := OpenSQL(buildTestDB(t))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	got, err := store.WordsByPrefix(ctx, "app", 10)
	if err != nil {
		t.Fatalf("WordsByPrefix: %v", err)
	}
	// Frequency order: apple (100) before apply (95).
	want := []string{"apple", "apply"}
	if len(got) != len(want) {
		t.Fatalf("WordsByPrefix returned %+v, want %v", got, want)
	}
	for i := range want {
		if got[i].Word != want[i] {
			t.Errorf("WordsByPrefix[%d] = %q, want %q", i, got[i].Word, want[i])
		}
	}

	if got, _ := store.WordsByPrefix(ctx, "app", 1); len(got) != 1 || got[0].Word != "apple" {
		t.Errorf("limit 1 returned %+v", got)
	}
	if got, _ := store.WordsByPrefix(ctx, "zzz", 10); len(got) != 0 {
		t.Errorf("unmatched prefix returned %+v", got)
	}
}

func TestSQLStoreWordsWithin(t *testing.T) {
	store, err := OpenSQL(buildTestDB(t))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	got, err := store.WordsWithin(ctx, "aple", 2, 10)
	if err != nil {
		t.Fatalf("WordsWithin: %v", err)
	}
	// Distance order, weight breaking ties: apple and ample at 1,
	// apply at 2.
	want := []struct {
		word string
		dist int
	}{
		{"apple", 1},
		{"ample", 1},
		{"apply", 2},
	}
	if len(got) != len(want) {
		t.Fatalf("WordsWithin returned %+v, want %v", got, want)
	}
	for i, w := range want {
		if got[i].Word != w.word || got[i].Distance != w.dist {
			t.Errorf("WordsWithin[%d] = %+v, want %+v", i, got[i], w)
		}
	}

	if got, _ := store.WordsWithin(ctx, "banana", 0, 10); len(got) != 1 || got[0].Word != "banana" {
		t.Errorf("maxDist 0 returned %+v, want exact word only", got)
	}
}

func TestSQLStoreSearchCancelled(t *testing.T) {
	store, err := OpenSQL(buildTestDB(t))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.WordsByPrefix(ctx, "app", 10); !errors.Is(err, context.Canceled) {
		t.Errorf("WordsByPrefix with cancelled context: err = %v, want context.Canceled", err)
	}
	if _, err := store.WordsWithin(ctx, "aple", 2, 10); !errors.Is(err, context.Canceled) {
		t.Errorf("WordsWithin with cancelled context: err = %v, want context.Canceled", err)
	}
}

func TestEditDistance(t *testing.T) {
	testCases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"apple", "apple", 0},
		{"appel", "apple", 2},
		{"café", "cafe", 1},
	}
	for _, tc := range testCases {
		if got := editDistance(tc.a, tc.b); got != tc.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
