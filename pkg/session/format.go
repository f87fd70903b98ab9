package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lexserve/lexserve/pkg/config"
	"github.com/lexserve/lexserve/pkg/dictionary"
)

// FormatEntry renders a full dictionary entry as markdown using the
// configured templates. Senses are numbered per part of speech starting
// at 1; a sense without an example skips the example line entirely.
func FormatEntry(e *dictionary.Entry, f config.FormattingConfig) string {
	var b strings.Builder
	b.WriteString(strings.ReplaceAll(f.WordFormat, "{word}", e.Word))
	b.WriteString("\n")

	for _, m := range e.Meanings {
		if f.AddSpacing {
			b.WriteString("\n")
		}
		b.WriteString(strings.ReplaceAll(f.PartOfSpeechFormat, "{part}", m.PartOfSpeech))
		b.WriteString("\n")
		for i, s := range m.Senses {
			line := strings.ReplaceAll(f.DefinitionFormat, "{num}", strconv.Itoa(i+1))
			line = strings.ReplaceAll(line, "{definition}", s.Definition)
			b.WriteString(line)
			b.WriteString("\n")
			if s.Example != "" {
				b.WriteString(strings.ReplaceAll(f.ExampleFormat, "{example}", s.Example))
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatEntryBrief renders the short form used for signature help: the
// headword, its first part of speech, and the first definition only.
func FormatEntryBrief(e *dictionary.Entry, f config.FormattingConfig) string {
	word := strings.ReplaceAll(f.WordFormat, "{word}", e.Word)
	if len(e.Meanings) == 0 || len(e.Meanings[0].Senses) == 0 {
		return word
	}
	m := e.Meanings[0]
	part := strings.ReplaceAll(f.PartOfSpeechFormat, "{part}", m.PartOfSpeech)
	return fmt.Sprintf("%s %s: %s", word, part, m.Senses[0].Definition)
}

// FormatMissing is the placeholder content for a word the dictionary does
// not know. Lookups that miss are answered, not errored.
func FormatMissing(word string) string {
	return fmt.Sprintf("No definition found for **%s**", word)
}
