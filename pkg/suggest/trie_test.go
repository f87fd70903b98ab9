package suggest

import "testing"

func TestCompleteByPrefixRanking(t *testing.T) {
	trie := NewTrie()
	words := map[string]int{
		"passion": 10,
		"passing": 50,
		"passive": 5,
		"past":    80,
		"pastel":  3,
		"banana":  90,
	}
	for w, score := range words {
		trie.Insert(w, score)
	}

	testCases := []struct {
		prefix   string
		limit    int
		expected []string
	}{
		{"pass", 10, []string{"passing", "passion", "passive"}},
		{"pass", 2, []string{"passing", "passion"}},
		{"pas", 10, []string{"past", "passing", "passion", "passive", "pastel"}},
		{"passing", 10, []string{"passing"}},
		{"PASS", 2, []string{"passing", "passion"}},
		{"zzz", 10, nil},
		{"pass", 0, nil},
	}

	for _, tc := range testCases {
		got := trie.CompleteByPrefix(tc.prefix, tc.limit)
		if len(got) != len(tc.expected) {
			t.Errorf("CompleteByPrefix(%q, %d) returned %d results, want %d",
				tc.prefix, tc.limit, len(got), len(tc.expected))
			continue
		}
		for i, c := range got {
			if c.Word != tc.expected[i] {
				t.Errorf("CompleteByPrefix(%q, %d)[%d] = %q, want %q",
					tc.prefix, tc.limit, i, c.Word, tc.expected[i])
			}
		}
	}
}

func TestCompleteByPrefixTieBreak(t *testing.T) {
	trie := NewTrie()
	trie.Insert("cart", 100)
	trie.Insert("carp", 100)
	trie.Insert("card", 100)

	got := trie.CompleteByPrefix("car", 10)
	expected := []string{"card", "carp", "cart"}
	for i, want := range expected {
		if got[i].Word != want {
			t.Errorf("equal scores: position %d = %q, want %q (lexicographic tie break)", i, got[i].Word, want)
		}
	}
}

func TestInsertDuplicateKeepsHigherScore(t *testing.T) {
	trie := NewTrie()
	trie.Insert("word", 10)
	trie.Insert("word", 5)
	trie.Insert("Word", 30)

	if trie.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after duplicate inserts", trie.Len())
	}
	got := trie.CompleteByPrefix("wor", 1)
	if len(got) != 1 || got[0].Score != 30 {
		t.Errorf("duplicate insert: got %+v, want score 30", got)
	}
}

func TestContains(t *testing.T) {
	trie := NewTrie()
	trie.Insert("hello", 1)
	trie.Insert("help", 1)

	if !trie.Contains("hello") || !trie.Contains("HELLO") {
		t.Error("Contains should match case-insensitively")
	}
	if trie.Contains("hel") {
		t.Error("Contains should not match a bare prefix")
	}
	if trie.Contains("helper") {
		t.Error("Contains should not match an extension")
	}
}
