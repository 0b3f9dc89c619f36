package wikitext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeCharRef(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"&#x1F600;", "😀"},
		{"&#128512;", "😀"},
		{"&#X41;", "A"},
		{"&#x10FFFF;", "\U0010FFFF"},
		{"&#x110000;", ""},
		{"&#xD800;", ""},
		{"&#57343;", ""},
		{"&#0;", ""},
		{"&#99999999999;", ""},
		{"not a ref", "not a ref"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, DecodeCharRef(tt.input))
		})
	}
}

func TestDecodeEntities(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"named", "Fish &amp; Chips", "Fish & Chips"},
		{"double escaped", "&amp;amp;", "&"},
		{"numeric mix", "&#65;&#x42;C", "ABC"},
		{"angle brackets", "&lt;b&gt;", "<b>"},
		{"nbsp", "a&nbsp;b", "a\u00a0b"},
		{"dashes", "1990&ndash;2000", "1990–2000"},
		{"invalid code point", "x&#x110000;y", "xy"},
		{"bare ampersand", "AT&T", "AT&T"},
		{"no entities", "plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DecodeEntities(tt.input))
		})
	}
}
