package wikitext

import (
	"strings"
)

// FormattingTemplates only style their first argument; expansion keeps
// the argument.
var FormattingTemplates = []string{
	"nowrap", "small", "smaller", "big", "larger", "midsize", "em", "strong",
	"nobold", "noitalic", "var", "code", "kbd", "mono", "monospace", "serif",
	"sans-serif", "highlight", "underline", "strikethrough", "strike", "s",
	"sup", "sub", "vanchor", "visible anchor", "text", "plainlist",
	"flatlist", "nowrap begin", "lang-en", "linktext", "tooltip", "keypress",
	"native name", "abbrlink",
}

// HatnoteTemplates are navigation notes with no article text.
var HatnoteTemplates = []string{
	"main", "main article", "see also", "further", "further information",
	"about", "for", "redirect", "redirect-distinguish", "distinguish",
	"hatnote", "other uses", "selfref", "anchor", "sfn", "sfnp", "harvnb",
	"efn", "refn", "clear", "break", "-", "toc", "toc limit", "clear left",
	"clear right", "cn", "citation needed", "fact", "when", "who", "which",
	"dubious", "clarify", "vague", "by whom",
}

var punctuation = map[string]string{
	"nbsp":         " ",
	"ndash":        "–",
	"mdash":        "—",
	"snd":          " – ",
	"spaced ndash": " – ",
	"spnd":         " – ",
	"·":            " · ",
	"dot":          " · ",
	"middot":       " · ",
	"bull":         " • ",
	"bullet":       " • ",
	"'":            "'",
	"\"":           "\"",
	"spaces":       " ",
	"pipe":         "&#124;",
	"!":            "&#124;",
	"=":            "&#61;",
	"en dash":      "–",
	"em dash":      "—",
}

func registerTextTemplates() {
	registerTemplate(firstArg, FormattingTemplates...)
	registerTemplate(empty, HatnoteTemplates...)
	for name, out := range punctuation {
		registerTemplate(constant(out), name)
	}
	registerTemplate(secondArg, "lang", "script", "color", "colour", "font color", "native phrase")
	registerTemplatePrefix("lang-", langPrefixed)
	registerTemplate(lastArg, "transl", "transliteration", "resize", "font")
	registerTemplate(nihongo, "nihongo", "nihongo2", "nihongo3", "nihongo foot")
	registerTemplate(firstArg, "abbr", "abbreviation", "sic")
	registerTemplate(hlist, "hlist", "flatlist inline")
	registerTemplate(ubl, "ubl", "unbulleted list", "plain list", "ul")
	registerTemplate(frac, "frac", "fraction", "sfrac")
	registerTemplate(sqrt, "sqrt", "radic")
	registerTemplate(val, "val")
	registerTemplate(currency("US$"), "us$", "usd")
	registerTemplate(currency("£"), "gbp", "£")
	registerTemplate(currency("€"), "eur", "€")
	registerTemplate(quotation, QuoteTemplates...)
	registerTemplate(citation, "citation", "cite")
	registerTemplatePrefix("cite ", citation)
}

func firstArg(t *Templates, inv Invocation) string {
	return arg(inv.Positional, 0)
}

func secondArg(t *Templates, inv Invocation) string {
	return arg(inv.Positional, 1)
}

func lastArg(t *Templates, inv Invocation) string {
	if len(inv.Positional) == 0 {
		return ""
	}
	return inv.Positional[len(inv.Positional)-1]
}

// quotation keeps the quoted text of {{quote|text|author}} and its named
// forms, dropping the attribution.
func quotation(t *Templates, inv Invocation) string {
	for _, key := range []string{"text", "quote", "1"} {
		if v := inv.Named[key]; v != "" {
			return v
		}
	}
	return arg(inv.Positional, 0)
}

func empty(t *Templates, inv Invocation) string {
	return ""
}

func constant(s string) TemplateFunc {
	return func(t *Templates, inv Invocation) string {
		return s
	}
}

// langPrefixed renders {{lang-fr|texte}} as "French: texte".
func langPrefixed(t *Templates, inv Invocation) string {
	code := strings.TrimPrefix(NormalizeName(inv.Name), "lang-")
	text := arg(inv.Positional, 0)
	if lit := inv.Param("lit"); lit != "" {
		text += `, lit. "` + lit + `"`
	}
	if name, ok := LanguageNames[code]; ok {
		return name + ": " + text
	}
	return text
}

// nihongo composes "English (kanji, romaji)".
func nihongo(t *Templates, inv Invocation) string {
	english := arg(inv.Positional, 0)
	kanji := arg(inv.Positional, 1)
	romaji := arg(inv.Positional, 2)
	switch NormalizeName(inv.Name) {
	case "nihongo2":
		return kanji
	case "nihongo3":
		english, romaji = romaji, english
	}
	var inner []string
	for _, s := range []string{kanji, romaji} {
		if s != "" {
			inner = append(inner, s)
		}
	}
	switch {
	case english == "" && len(inner) == 0:
		return ""
	case english == "":
		if len(inner) == 1 {
			return inner[0]
		}
		return inner[0] + " (" + inner[1] + ")"
	case len(inner) == 0:
		return english
	}
	return english + " (" + strings.Join(inner, ", ") + ")"
}

func nonEmpty(args []string) []string {
	var out []string
	for _, a := range args {
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

func hlist(t *Templates, inv Invocation) string {
	return strings.Join(nonEmpty(inv.Positional), " · ")
}

func ubl(t *Templates, inv Invocation) string {
	return strings.Join(nonEmpty(inv.Positional), "\n")
}

func frac(t *Templates, inv Invocation) string {
	args := nonEmpty(inv.Positional)
	switch len(args) {
	case 0:
		return ""
	case 1:
		return "1/" + args[0]
	case 2:
		return args[0] + "/" + args[1]
	}
	return args[0] + " " + args[1] + "/" + args[2]
}

func sqrt(t *Templates, inv Invocation) string {
	return "√" + arg(inv.Positional, 0)
}

// val renders {{val|1234.5|u=m}} as "1,234.5 m".
func val(t *Templates, inv Invocation) string {
	out := FormatNum(arg(inv.Positional, 0), false)
	if e := inv.Param("e"); e != "" {
		out += "×10^" + e
	}
	if u := inv.Param("u", "ul"); u != "" {
		out += " " + u
	}
	return out
}

func currency(symbol string) TemplateFunc {
	return func(t *Templates, inv Invocation) string {
		amount := arg(inv.Positional, 0)
		if amount == "" {
			return symbol
		}
		return symbol + FormatNum(amount, false)
	}
}

// citation renders a reference as one line when citations are extracted
// and drops it otherwise.
func citation(t *Templates, inv Invocation) string {
	if !t.opts.ExtractCitations {
		return ""
	}
	var parts []string
	author := inv.Param("author", "authors", "author1", "last", "last1")
	if first := inv.Param("first", "first1"); first != "" && inv.Param("last", "last1") != "" {
		author += ", " + first
	}
	if author != "" {
		parts = append(parts, author)
	}
	if title := inv.Param("title", "chapter"); title != "" {
		parts = append(parts, `"`+title+`"`)
	}
	for _, key := range []string{"work", "website", "journal", "newspaper", "magazine", "publisher"} {
		if v := inv.Named[key]; v != "" {
			parts = append(parts, v)
		}
	}
	if date := inv.Param("date", "year"); date != "" {
		parts = append(parts, date)
	}
	if url := inv.Param("url"); url != "" {
		parts = append(parts, url)
	}
	return strings.Join(parts, ". ")
}
