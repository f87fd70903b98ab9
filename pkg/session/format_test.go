package session

import (
	"testing"

	"github.com/lexserve/lexserve/pkg/config"
	"github.com/lexserve/lexserve/pkg/dictionary"
)

func sampleEntry() *dictionary.Entry {
	return &dictionary.Entry{
		Word: "apple",
		Meanings: []dictionary.Meaning{
			{
				PartOfSpeech: "noun",
				Senses: []dictionary.Sense{
					{Definition: "A round fruit.", Example: "She ate an apple."},
					{Definition: "The tree bearing such fruit."},
				},
			},
			{
				PartOfSpeech: "verb",
				Senses:       []dictionary.Sense{{Definition: "To become apple-like."}},
			},
		},
	}
}

func TestFormatEntry(t *testing.T) {
	got := FormatEntry(sampleEntry(), config.DefaultConfig().Formatting)
	want := "**apple**\n" +
		"_noun_\n" +
		"1. A round fruit.\n" +
		"   > Example: _She ate an apple._\n" +
		"2. The tree bearing such fruit.\n" +
		"_verb_\n" +
		"1. To become apple-like."
	if got != want {
		t.Errorf("FormatEntry:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatEntryCustomTemplates(t *testing.T) {
	f := config.FormattingConfig{
		WordFormat:         "# {word}",
		PartOfSpeechFormat: "[{part}]",
		DefinitionFormat:   "({num}) {definition}",
		ExampleFormat:      "e.g. {example}",
		AddSpacing:         true,
	}
	got := FormatEntry(sampleEntry(), f)
	want := "# apple\n" +
		"\n[noun]\n" +
		"(1) A round fruit.\n" +
		"e.g. She ate an apple.\n" +
		"(2) The tree bearing such fruit.\n" +
		"\n[verb]\n" +
		"(1) To become apple-like."
	if got != want {
		t.Errorf("FormatEntry with custom templates:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatEntryBrief(t *testing.T) {
	got := FormatEntryBrief(sampleEntry(), config.DefaultConfig().Formatting)
	want := "**apple** _noun_: A round fruit."
	if got != want {
		t.Errorf("FormatEntryBrief = %q, want %q", got, want)
	}

	bare := &dictionary.Entry{Word: "ghost"}
	if got := FormatEntryBrief(bare, config.DefaultConfig().Formatting); got != "**ghost**" {
		t.Errorf("entry without senses = %q", got)
	}
}

func TestFormatMissing(t *testing.T) {
	if got := FormatMissing("zzqx"); got != "No definition found for **zzqx**" {
		t.Errorf("FormatMissing = %q", got)
	}
}
