package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/open-cli-collective/wtx/pkg/wikitext"
)

// tableConverter turns HTML tables into GFM pipe tables.
var tableConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// TableMarkdown converts an HTML table to a markdown table.
func TableMarkdown(tableHTML string) (string, error) {
	if tableHTML == "" {
		return "", nil
	}
	markdown, err := tableConverter.ConvertString(tableHTML)
	if err != nil {
		return "", fmt.Errorf("failed to convert table: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

// WikitableHTML converts a {| ... |} wikitable to an HTML table with
// cleaned cell text. Attributes are dropped and nested tables skipped.
func WikitableHTML(content string, e *wikitext.Engine) string {
	tbl := &html.Node{Type: html.ElementNode, Data: "table", DataAtom: atom.Table}
	var row *html.Node
	depth := 0

	for _, line := range strings.Split(content, "\n") {
		t := strings.TrimLeft(line, ": \t")
		switch {
		case strings.HasPrefix(t, "{|"):
			depth++
			continue
		case strings.HasPrefix(t, "|}"):
			depth--
			continue
		}
		if depth != 1 {
			continue
		}

		switch {
		case strings.HasPrefix(t, "|+"):
			appendCell(tbl, atom.Caption, cellText(t[2:], e))
		case strings.HasPrefix(t, "|-"):
			row = nil
		case strings.HasPrefix(t, "!"):
			row = ensureRow(tbl, row)
			for _, h := range strings.Split(t[1:], "!!") {
				for _, c := range splitCells(h) {
					appendCell(row, atom.Th, cellText(c, e))
				}
			}
		case strings.HasPrefix(t, "|"):
			row = ensureRow(tbl, row)
			for _, c := range splitCells(t[1:]) {
				appendCell(row, atom.Td, cellText(c, e))
			}
		default:
			// A line without a marker continues the previous cell.
			if row != nil && row.LastChild != nil {
				if text := cellText(t, e); text != "" {
					appendText(row.LastChild, " "+text)
				}
			}
		}
	}

	if tbl.FirstChild == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, tbl); err != nil {
		return ""
	}
	return buf.String()
}

// CleanHTMLTable cleans the wikitext inside the text nodes of an HTML
// table and returns the table as HTML.
func CleanHTMLTable(content string, e *wikitext.Engine) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			n.Data = cellText(n.Data, e)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	tbl := findTable(doc)
	if tbl == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, tbl); err != nil {
		return ""
	}
	return buf.String()
}

func findTable(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Table {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTable(c); t != nil {
			return t
		}
	}
	return nil
}

// splitCells splits one row line on "||" and drops each cell's
// "attributes |" prefix. Pipes inside links and templates do not count.
func splitCells(s string) []string {
	var cells, run []string
	for _, p := range wikitext.SplitTopLevel(s, '|') {
		if p == "" && len(run) > 0 {
			cells = append(cells, run[len(run)-1])
			run = nil
			continue
		}
		run = append(run, p)
	}
	if len(run) > 0 {
		cells = append(cells, run[len(run)-1])
	}
	return cells
}

func cellText(s string, e *wikitext.Engine) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(e.ElementText(wikitext.Element{Kind: wikitext.Paragraph, Content: s})), " ")
}

func ensureRow(tbl, row *html.Node) *html.Node {
	if row != nil {
		return row
	}
	row = &html.Node{Type: html.ElementNode, Data: "tr", DataAtom: atom.Tr}
	tbl.AppendChild(row)
	return row
}

func appendCell(parent *html.Node, a atom.Atom, text string) {
	cell := &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
	parent.AppendChild(cell)
	appendText(cell, text)
}

func appendText(n *html.Node, text string) {
	if text == "" {
		return
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
