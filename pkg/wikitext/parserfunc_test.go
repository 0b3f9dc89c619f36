package wikitext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testRef = time.Date(2024, time.June, 15, 12, 30, 0, 0, time.UTC)

func TestParserFunctions_Evaluate(t *testing.T) {
	pf := NewParserFunctions(testRef)
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"if true", "{{#if:yes|true|false}}", "true"},
		{"if empty", "{{#if:|true|false}}", "false"},
		{"if whitespace only", "{{#if:   |true|false}}", "false"},
		{"if without else", "{{#if:|true}}", ""},
		{"ifeq equal", "{{#ifeq:a|a|same|diff}}", "same"},
		{"ifeq case sensitive", "{{#ifeq:a|A|same|diff}}", "diff"},
		{"ifeq trims", "{{#ifeq: a | a |same|diff}}", "same"},
		{"switch match", "{{#switch:2|1=one|2=two|3=three}}", "two"},
		{"switch fallthrough", "{{#switch:a|a|b=ab|c=see}}", "ab"},
		{"switch default label", "{{#switch:z|a=1|#default=d}}", "d"},
		{"switch trailing default", "{{#switch:z|a=1|other}}", "other"},
		{"switch no match", "{{#switch:z|a=1}}", ""},
		{"switch numeric", "{{#switch:1.0|1=one}}", "one"},
		{"expr", "{{#expr:(2+3)*4}}", "20"},
		{"expr division precision", "{{#expr:10/3}}", "3.3333"},
		{"expr malformed", "{{#expr:1+}}", ""},
		{"ifexpr true", "{{#ifexpr:1 > 0|yes|no}}", "yes"},
		{"ifexpr false", "{{#ifexpr:1 < 0|yes|no}}", "no"},
		{"ifexpr malformed", "{{#ifexpr:(|yes|no}}", "no"},
		{"iferror on error", "{{#iferror:{{#expr:1/0}}|bad|good}}", "bad"},
		{"iferror passes value", "{{#iferror:{{#expr:1+1}}|bad}}", "2"},
		{"iferror html error", `{{#iferror:<strong class="error">x</strong>|bad|good}}`, "bad"},
		{"ifexist always missing", "{{#ifexist:Main Page|yes|no}}", "no"},
		{"titleparts", "{{#titleparts:Talk:Foo/Bar/Baz|2}}", "Talk:Foo/Bar"},
		{"titleparts negative", "{{#titleparts:Talk:Foo/Bar/Baz|-1}}", "Talk:Foo/Bar"},
		{"titleparts offset", "{{#titleparts:Talk:Foo/Bar/Baz|1|2}}", "Bar"},
		{"pos found", "{{#pos:hello|l}}", "2"},
		{"pos absent", "{{#pos:hello|x}}", ""},
		{"rpos found", "{{#rpos:hello|l}}", "3"},
		{"rpos absent", "{{#rpos:hello|x}}", "-1"},
		{"len runes", "{{#len:héllo}}", "5"},
		{"sub", "{{#sub:hello|1|3}}", "ell"},
		{"sub negative start", "{{#sub:hello|-3}}", "llo"},
		{"replace", "{{#replace:a-b-c|-|+}}", "a+b+c"},
		{"count overlapping", "{{#count:aaa|aa}}", "2"},
		{"explode", "{{#explode:a,b,c|,|1}}", "b"},
		{"explode negative", "{{#explode:a,b,c|,|-1}}", "c"},
		{"explode out of range", "{{#explode:a,b,c|,|5}}", ""},
		{"urlencode", "{{#urlencode:a b&c}}", "a%20b%26c"},
		{"urldecode", "{{#urldecode:a%20b}}", "a b"},
		{"padleft", "{{#padleft:7|3|0}}", "007"},
		{"padleft no truncation", "{{#padleft:abc|2}}", "abc"},
		{"padright cycles pad", "{{#padright:ab|5|xy}}", "abxyx"},
		{"padleft default pad", "{{#padleft:x|3}}", "  x"},
		{"time iso", "{{#time:Y-m-d|2024-06-01}}", "2024-06-01"},
		{"time ordinal", "{{#time:jS F Y|2024-06-01}}", "1st June 2024"},
		{"time weekday", "{{#time:l|2024-06-15}}", "Saturday"},
		{"time default now", "{{#time:Y}}", "2024"},
		{"nested", "{{#if:{{#expr:1+1}}|{{#len:abc}}|no}}", "3"},
		{"unknown function", "{{#nosuchfunction:x}}", ""},
		{"ordinary template untouched", "{{foo|bar}}", "{{foo|bar}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, pf.Evaluate(tt.input))
		})
	}
}

func TestParserFunctions_Expand(t *testing.T) {
	pf := NewParserFunctions(testRef)

	res, ok := pf.Expand("#len:abc")
	assert.True(t, ok)
	assert.Equal(t, "3", res)

	_, ok = pf.Expand("PAGENAME")
	assert.False(t, ok)
}

func TestParserFunctionRegistry_Names(t *testing.T) {
	expected := []string{"expr", "if", "ifeq", "iferror", "ifexpr", "switch", "len", "pos", "rpos",
		"sub", "replace", "titleparts", "count", "explode", "urlencode", "urldecode", "padleft",
		"padright", "time"}

	for _, name := range expected {
		t.Run(name, func(t *testing.T) {
			_, ok := ParserFunctionRegistry[name]
			assert.True(t, ok, "ParserFunctionRegistry should contain %q", name)
		})
	}
}
