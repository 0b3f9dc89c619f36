// Package render formats classified wikitext pages as plain text, markdown
// or HTML.
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/open-cli-collective/wtx/pkg/wikitext"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// RenderFunc renders one article with the given engine.
type RenderFunc func(art *wikitext.Article, e *wikitext.Engine) (string, error)

// Formats maps format names to their renderers.
// Adding a format = adding one entry here.
var Formats = map[Format]RenderFunc{
	FormatText:     textFormat,
	FormatMarkdown: Markdown,
	FormatHTML:     HTML,
}

// FormatNames lists the registered format names, sorted.
func FormatNames() []string {
	names := make([]string, 0, len(Formats))
	for f := range Formats {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// Render renders art in the named format.
func Render(format Format, art *wikitext.Article, e *wikitext.Engine) (string, error) {
	fn, ok := Formats[format]
	if !ok {
		return "", fmt.Errorf("unknown format %q (valid: %s)", format, strings.Join(FormatNames(), ", "))
	}
	return fn(art, e)
}

// htmlRenderer is a pre-configured goldmark instance with GFM table extension.
var htmlRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

var (
	sourceRE = regexp.MustCompile(`(?is)<(?:syntaxhighlight|source)([^>]*)>(.*?)</(?:syntaxhighlight|source)\s*>`)
	langRE   = regexp.MustCompile(`(?i)\blang\s*=\s*"?([\w+#.-]+)`)
)

func textFormat(art *wikitext.Article, e *wikitext.Engine) (string, error) {
	return Text(art, e), nil
}

// Text renders the article as plain text: one cleaned line per element,
// blank lines kept as paragraph breaks.
func Text(art *wikitext.Article, e *wikitext.Engine) string {
	if art.IsRedirect() {
		return "Redirect to " + art.RedirectTarget + "\n"
	}
	var lines []string
	for _, el := range art.Elements {
		if el.Kind == wikitext.Blank {
			lines = append(lines, "")
			continue
		}
		if text := e.ElementText(el); text != "" {
			lines = append(lines, text)
		}
	}
	return wikitext.NormalizeWhitespace(strings.Join(lines, "\n"))
}

// Markdown renders the article as CommonMark with GFM tables. Headings keep
// their level, lists their depth, source and math blocks become fenced
// blocks and tables are converted cell by cell.
func Markdown(art *wikitext.Article, e *wikitext.Engine) (string, error) {
	var sb strings.Builder
	if art.Title != "" {
		sb.WriteString("# " + art.Title + "\n\n")
	}
	if art.IsRedirect() {
		sb.WriteString("Redirect to [" + art.RedirectTarget + "](" + linkTarget(art.RedirectTarget) + ")\n")
		return sb.String(), nil
	}

	prev := wikitext.Blank
	for _, el := range art.Elements {
		block, err := markdownBlock(el, e)
		if err != nil {
			return "", err
		}
		if block == "" {
			if el.Kind == wikitext.Blank && prev != wikitext.Blank {
				sb.WriteString("\n")
				prev = wikitext.Blank
			}
			continue
		}
		if prev != wikitext.Blank && !sameBlock(prev, el.Kind) {
			sb.WriteString("\n")
		}
		sb.WriteString(block + "\n")
		prev = el.Kind
	}
	return wikitext.NormalizeWhitespace(sb.String()), nil
}

// sameBlock reports whether consecutive elements belong to one markdown
// block (a list or a paragraph) and need no blank line between them.
func sameBlock(prev, cur wikitext.ElementKind) bool {
	switch cur {
	case wikitext.UnorderedItem, wikitext.OrderedItem, wikitext.DefinitionItem:
		return prev == wikitext.UnorderedItem || prev == wikitext.OrderedItem || prev == wikitext.DefinitionItem
	case wikitext.Paragraph:
		return prev == wikitext.Paragraph
	}
	return false
}

func markdownBlock(el wikitext.Element, e *wikitext.Engine) (string, error) {
	switch el.Kind {
	case wikitext.Blank, wikitext.Redirect:
		return "", nil
	case wikitext.Heading:
		return strings.Repeat("#", el.Level) + " " + e.ElementText(el), nil
	case wikitext.UnorderedItem:
		return listIndent(el.Level) + "- " + e.ElementText(el), nil
	case wikitext.OrderedItem:
		return listIndent(el.Level) + "1. " + e.ElementText(el), nil
	case wikitext.Quote:
		return quoteBlock(e.ElementText(el)), nil
	case wikitext.Pre:
		return fence("", el.Content), nil
	case wikitext.SourceBlock:
		if m := sourceRE.FindStringSubmatch(el.Content); m != nil {
			lang := ""
			if l := langRE.FindStringSubmatch(m[1]); l != nil {
				lang = strings.ToLower(l[1])
			}
			return fence(lang, strings.Trim(m[2], "\n")), nil
		}
	case wikitext.MathBlock:
		if m := wikitext.TagPattern("math").FindStringSubmatch(el.Content); m != nil {
			return "$$\n" + strings.TrimSpace(m[1]) + "\n$$", nil
		}
	case wikitext.Table:
		return TableMarkdown(WikitableHTML(el.Content, e))
	case wikitext.HTMLTable:
		return TableMarkdown(CleanHTMLTable(el.Content, e))
	}
	return e.ElementText(el), nil
}

// listIndent indents nested list items by two spaces per level, which
// CommonMark reads as nesting for "- " items.
func listIndent(level int) string {
	return strings.Repeat("  ", max(level-1, 0))
}

func quoteBlock(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight("> "+l, " ")
	}
	return strings.Join(lines, "\n")
}

func fence(lang, body string) string {
	marker := "```"
	for strings.Contains(body, marker) {
		marker += "`"
	}
	return marker + lang + "\n" + body + "\n" + marker
}

func linkTarget(title string) string {
	return strings.ReplaceAll(title, " ", "_")
}

// HTML renders the article's markdown with goldmark.
func HTML(art *wikitext.Article, e *wikitext.Engine) (string, error) {
	markdown, err := Markdown(art, e)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := htmlRenderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.String(), nil
}

// Summary returns the cleaned paragraphs before the first heading,
// separated by blank lines. Consecutive paragraph lines join into one
// paragraph.
func Summary(art *wikitext.Article, e *wikitext.Engine) string {
	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}
	for _, el := range art.Elements {
		if el.Kind == wikitext.Heading {
			break
		}
		switch el.Kind {
		case wikitext.Blank:
			flush()
		case wikitext.Paragraph:
			if text := e.ElementText(el); text != "" {
				current = append(current, strings.Join(strings.Fields(text), " "))
			}
		}
	}
	flush()
	return strings.Join(paragraphs, "\n\n")
}
