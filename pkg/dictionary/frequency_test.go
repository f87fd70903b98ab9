package dictionary

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrequenciesText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freq.txt")
	content := "# common words\nthe\t2000\nApple 100\n\nbanana\t90\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	freqs, err := LoadFrequencies(path)
	if err != nil {
		t.Fatalf("LoadFrequencies: %v", err)
	}
	if len(freqs) != 3 {
		t.Fatalf("loaded %d records, want 3", len(freqs))
	}
	if freqs.Score("THE") != 2000 {
		t.Errorf("Score(THE) = %d, want 2000", freqs.Score("THE"))
	}
	if freqs.Score("apple") != 100 {
		t.Errorf("Score(apple) = %d, want 100 (keys normalized)", freqs.Score("apple"))
	}
	if freqs.Score("unknown") != 0 {
		t.Errorf("Score(unknown) = %d, want 0", freqs.Score("unknown"))
	}
}

func TestLoadFrequenciesTextMalformed(t *testing.T) {
	testCases := []struct {
		content     string
		description string
	}{
		{"word\n", "missing count"},
		{"word notanumber\n", "non-numeric count"},
		{"too many fields 3\n", "extra fields"},
	}
	for _, tc := range testCases {
		path := filepath.Join(t.TempDir(), "freq.txt")
		if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFrequencies(path); err == nil {
			t.Errorf("%s: expected error", tc.description)
		}
	}
}

func TestLoadFrequenciesEmptyPath(t *testing.T) {
	freqs, err := LoadFrequencies("")
	if err != nil {
		t.Fatalf("empty path should not error: %v", err)
	}
	if len(freqs) != 0 || freqs.Score("anything") != 0 {
		t.Errorf("empty path should yield an empty table, got %v", freqs)
	}
}

func TestLoadFrequenciesMissingFile(t *testing.T) {
	if _, err := LoadFrequencies(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("configured but missing file should error")
	}
}

func TestLoadFrequenciesSQL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freq.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE word_frequencies (word TEXT, frequency INTEGER)`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO word_frequencies VALUES ('The', 2000), ('cat', 490)`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	freqs, err := LoadFrequencies(path)
	if err != nil {
		t.Fatalf("LoadFrequencies: %v", err)
	}
	if freqs.Score("the") != 2000 || freqs.Score("cat") != 490 {
		t.Errorf("loaded scores wrong: %v", freqs)
	}
}
