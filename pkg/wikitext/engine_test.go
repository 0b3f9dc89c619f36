package wikitext

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(mod func(*Options)) *Engine {
	opts := DefaultOptions()
	opts.DumpDate = testRef
	if mod != nil {
		mod(&opts)
	}
	return New(opts)
}

func TestEngine_Clean(t *testing.T) {
	e := newTestEngine(nil)
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"emphasis", "'''Bold''' and ''italic'' text.", "Bold and italic text.\n"},
		{"heading", "== History ==\nText here.", "History\nText here.\n"},
		{"short dashes kept", "---", "---\n"},
		{"rule removed", "----", ""},
		{"rule between lines", "a\n-----\nb", "a\n\nb\n"},
		{"char refs", "&#x1F600; &#x110000;x", "😀 x\n"},
		{"math", `Euler: <math>e^{i\pi}+1=0</math> done`, "Euler: [MATH]e^{i\\pi}+1=0[/MATH] done\n"},
		{"code keeps whitespace", "<syntaxhighlight lang=\"go\">a  \n\n\n\n\nb</syntaxhighlight>", "[CODE]a  \n\n\n\n\nb[/CODE]\n"},
		{"birth date and age", "Born {{birth date and age|1990|5|15}}.", "Born May 15, 1990 (age 34).\n"},
		{"convert", "It is {{convert|10|km|mi|1}} long.", "It is 10 km (6.2 mi) long.\n"},
		{"links", "[[Paris|The capital]] of [[France]].[[Category:Cities]]", "The capital of France.\n"},
		{"external link", "See [http://example.com the site].", "See the site.\n"},
		{"refs dropped", `Fact.<ref>Source one</ref> More.<ref name="x"/>`, "Fact. More.\n"},
		{"directives", "__NOTOC__\nText __not_a_switch__", "Text __not_a_switch__\n"},
		{"lists", "* one\n* two\n# three", "one\ntwo\nthree\n"},
		{"table", "Intro\n{| class=\"wikitable\"\n|-\n| a || {{x|}}\n|}\nOutro", "Intro\n[TABLE]\nOutro\n"},
		{"infobox", "{{Infobox person|name=Jane|birth_date={{birth date|1990|5|15}}}}\n'''Jane''' is a person.", "[INFOBOX]\nJane is a person.\n"},
		{"reflist", "Text\n== References ==\n{{reflist}}", "Text\nReferences\n[REFERENCES]\n"},
		{"unknown template", "A {{unknown thing|x}} B", "A  B\n"},
		{"comment", "A<!-- hidden -->B", "AB\n"},
		{"nowiki tags", "a <nowiki>b</nowiki> c", "a b c\n"},
		{"page magic without title", "{{PAGENAME}}", ""},
		{"string function without title", "{{lc:ABC}}", "abc\n"},
		{"formatnum without title", "{{formatnum:1234567.89}}", "1,234,567.89\n"},
		{"namespace without title", "a{{NAMESPACE}}b", "ab\n"},
		{"escaped pipe", "a{{!}}b", "a|b\n"},
		{"parser function", "{{#if:{{#expr:1+1}}|yes|no}}", "yes\n"},
		{"tag function", "{{#tag:math|x^2}}", "[MATH]x^2[/MATH]\n"},
		{"whitespace", "a  \n\n\n\n\nb   ", "a\n\nb\n"},
		{"stray delimiter", "a\x7fb", "ab\n"},
		{"forged token", "a\x7fWXM0\x7fb", "aWXM0b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Clean(tt.input))
		})
	}
}

func TestEngine_Markers(t *testing.T) {
	input := "Euler: <math>e^{i\\pi}+1=0</math> done\n{|\n| x\n|}"

	t.Run("math disabled", func(t *testing.T) {
		e := newTestEngine(func(o *Options) { o.Markers = AllMarkers.Without(MarkerMath) })
		got := e.Clean(input)
		assert.Equal(t, "Euler:  done\n[TABLE]\n", got)
		assert.NotContains(t, got, "\x7f")
		assert.NotContains(t, got, "WXM")
	})

	t.Run("none", func(t *testing.T) {
		e := newTestEngine(func(o *Options) { o.Markers = NoMarkers })
		assert.Equal(t, "Euler:  done\n", e.Clean(input))
	})

	t.Run("all", func(t *testing.T) {
		e := newTestEngine(nil)
		assert.Equal(t, "Euler: [MATH]e^{i\\pi}+1=0[/MATH] done\n[TABLE]\n", e.Clean(input))
	})
}

func TestEngine_Options(t *testing.T) {
	t.Run("title enables magic words", func(t *testing.T) {
		e := newTestEngine(func(o *Options) { o.Title = "Foo bar" })
		assert.Equal(t, "Foo bar is here.\n", e.Clean("{{PAGENAME}} is here."))
		assert.Equal(t, "Baz\n", e.WithTitle("Baz", "").Clean("{{PAGENAME}}"))
	})

	t.Run("expansion disabled", func(t *testing.T) {
		e := newTestEngine(func(o *Options) { o.ExpandTemplates = false })
		assert.Equal(t, "Born .\n", e.Clean("Born {{birth date|1990|5|15}}."))
	})

	t.Run("preserve unknown templates", func(t *testing.T) {
		e := newTestEngine(func(o *Options) { o.PreserveUnknownTemplates = true })
		assert.Equal(t, "A {{unknown thing|x}} B\n", e.Clean("A {{unknown thing|x}} B"))
	})

	t.Run("extract citations", func(t *testing.T) {
		e := newTestEngine(func(o *Options) { o.ExtractCitations = true })
		assert.Equal(t, "Fact.[Source one] More.\n", e.Clean("Fact.<ref>Source one</ref> More."))
	})

	t.Run("zero dump date", func(t *testing.T) {
		e := New(Options{})
		assert.False(t, e.Options().DumpDate.IsZero())
	})
}

func TestEngine_Idempotent(t *testing.T) {
	corpus := []string{
		"'''Bold''' and ''italic'' text.",
		"== History ==\nText here.\n\n\n\n\nMore.",
		"a\n---\nb\n----\nc",
		`Euler: <math>e^{i\pi}+1=0</math> done`,
		"<syntaxhighlight>x  \n\n\n\n y</syntaxhighlight>",
		"Born {{birth date and age|1990|5|15}}. It is {{convert|10|km|mi|1}} long.",
		"[[Paris|The capital]] of [[France]].[[Category:Cities]]",
		"Intro\n{|\n| a\n|}\nOutro\n{{Infobox person|name=Jane}}\n{{IPA|/pæˈriː/}}",
		"* one\n** two\n# three\n: four",
		"__NOTOC__\nText &amp;amp; more &#x1F600;",
		"A {{unknown}} B <ref>cite</ref>",
		"<span>{|</span>\n|a\n|}",
		"{|x\n*|}",
	}

	for _, opts := range []func(*Options){
		nil,
		func(o *Options) { o.Markers = NoMarkers },
		func(o *Options) { o.PreserveUnknownTemplates = true },
	} {
		e := newTestEngine(opts)
		for _, input := range corpus {
			once := e.Clean(input)
			assert.Equal(t, once, e.Clean(once), "input %q", input)
		}
	}
}

func TestEngine_TableFenceAfterStripping(t *testing.T) {
	e := newTestEngine(nil)
	assert.Equal(t, "[TABLE]\n", e.Clean("<span>{|</span>\n|a\n|}"))
	assert.Equal(t, "[TABLE]\n", e.Clean("{|x\n*|}"))
}

func TestEngine_CleanDetailed_Warnings(t *testing.T) {
	e := newTestEngine(nil)
	input := strings.Repeat("{{nowrap|a}}", MaxNestingIterations+1)

	res := e.CleanDetailed(input)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "template expansion stopped")
	assert.NotContains(t, res.Text, "{{")

	res = e.CleanDetailed("{{nowrap|a}}")
	assert.Empty(t, res.Warnings)
}

func TestEngine_Concurrent(t *testing.T) {
	e := newTestEngine(nil)
	input := "Born {{birth date and age|1990|5|15}} in [[Paris]].<math>x</math>"
	want := e.Clean(input)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Clean(input)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestEngine_ParseAndElementText(t *testing.T) {
	e := newTestEngine(func(o *Options) { o.Title = "Sample" })
	art := e.Parse("== Early life ==\n'''Jane''' was born in [[Paris]].")

	assert.Equal(t, "Sample", art.Title)
	require.Len(t, art.Elements, 2)
	assert.Equal(t, "Early life", e.ElementText(art.Elements[0]))
	assert.Equal(t, "Jane was born in Paris.", e.ElementText(art.Elements[1]))
	assert.Equal(t, "", e.ElementText(Element{Kind: Redirect, Content: "Elsewhere"}))
}
