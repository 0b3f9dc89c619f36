package wikitext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripLinks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "See [[Paris]] now", "See Paris now"},
		{"label", "[[Paris|the capital]]", "the capital"},
		{"pipe trick parenthetical", "[[Paris (film)|]]", "Paris"},
		{"pipe trick namespace and comma", "[[Help:Springfield, Ohio|]]", "Springfield"},
		{"section", "[[#History]]", "History"},
		{"section of page", "[[Paris#History]]", "Paris#History"},
		{"interwiki", "[[wikt:word]]", "word"},
		{"interwiki labelled", "[[wikt:word|a word]]", "a word"},
		{"category", "Text[[Category:Cities]]", "Text"},
		{"visible category", "[[:Category:Cities]]", "Category:Cities"},
		{"file", "[[File:Paris.jpg|thumb|The [[Seine]] river]]", ""},
		{"localized file", "[[Datei:Paris.jpg|mini]]", ""},
		{"interlanguage", "[[fr:Paris]]", ""},
		{"label keeps spacing", "a [[b|c d]] e", "a c d e"},
		{"unclosed", "[[Paris", "[[Paris"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripLinks(tt.input))
		})
	}
}

func TestStripExternalLinks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"labelled", "[http://example.com Example site]", "Example site"},
		{"bare", "see [https://example.com]", "see "},
		{"protocol relative", "[//example.com/x label]", "label"},
		{"mailto", "[mailto:a@example.com write]", "write"},
		{"not a url", "[note 1]", "[note 1]"},
		{"unbracketed", "http://example.com", "http://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripExternalLinks(tt.input))
		})
	}
}

func TestLinks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"plain and labelled", "[[Paris]] and [[Lyon|the city]]", []string{"Paris", "Lyon"}},
		{"deduplicated", "[[Paris]], [[Paris|again]], [[Paris#History]]", []string{"Paris"}},
		{"underscores", "[[Eiffel_Tower]]", []string{"Eiffel Tower"}},
		{"section only", "[[#History]]", nil},
		{"category file language dropped", "[[Category:X]] [[File:a.jpg]] [[fr:Paris]]", nil},
		{"leading colon kept", "[[:Category:Cities]]", []string{"Category:Cities"}},
		{"interwiki kept", "[[wikt:word]]", []string{"wikt:word"}},
		{"nested caption link", "[[File:a.jpg|thumb|The [[Seine]]]]", []string{"Seine"}},
		{"comment and nowiki ignored", "<!-- [[A]] --><nowiki>[[B]]</nowiki>[[C]]", []string{"C"}},
		{"no links", "plain text", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Links(tt.input))
		})
	}
}

func TestFiles(t *testing.T) {
	text := "[[File:a.jpg|thumb]] [[Image:b_c.png]] [[Datei:a.jpg]] [[Paris]] [[file:a.jpg]]"
	assert.Equal(t, []string{"a.jpg", "b c.png"}, Files(text))
	assert.Nil(t, Files("[[Paris]]"))
}
