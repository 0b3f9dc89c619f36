package cmdutil

import (
	"fmt"
	"io"

	"github.com/open-cli-collective/wtx/internal/view"
	"github.com/open-cli-collective/wtx/pkg/render"
	"github.com/open-cli-collective/wtx/pkg/wikitext"
)

// Page is the JSON form of a processed page.
type Page struct {
	Title      string             `json:"title,omitempty"`
	Redirect   string             `json:"redirect,omitempty"`
	Categories []string           `json:"categories"`
	Links      []string           `json:"links,omitempty"`
	Files      []string           `json:"files,omitempty"`
	Summary    string             `json:"summary,omitempty"`
	Text       string             `json:"text"`
	Elements   []wikitext.Element `json:"elements,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
}

// IsRedirect reports whether the page is a redirect.
func (p *Page) IsRedirect() bool {
	return p.Redirect != ""
}

// BuildPage cleans and classifies text.
func BuildPage(e *wikitext.Engine, text string, withElements bool) *Page {
	art := e.Parse(text)
	res := e.CleanDetailed(text)
	p := &Page{
		Title:      art.Title,
		Redirect:   art.RedirectTarget,
		Categories: art.Categories,
		Links:      art.Links,
		Files:      art.Files,
		Text:       res.Text,
		Warnings:   res.Warnings,
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	if !art.IsRedirect() {
		p.Summary = render.Summary(art, e)
	}
	if withElements {
		p.Elements = art.Elements
	}
	return p
}

// Convert returns text in one of the string formats: the cleaned text
// itself or a render format.
func Convert(e *wikitext.Engine, text, format string) (string, []string, error) {
	if format == "clean" {
		res := e.CleanDetailed(text)
		return res.Text, res.Warnings, nil
	}
	out, err := render.Render(render.Format(format), e.Parse(text), e)
	if err != nil {
		return "", nil, err
	}
	return out, nil, nil
}

// WritePage writes text in format to out. Cleaning warnings are logged
// by the engine.
func WritePage(out io.Writer, e *wikitext.Engine, text, format string, noColor bool) error {
	renderer := view.NewRenderer(view.FormatPlain, noColor)
	renderer.SetWriter(out)

	if format == "json" {
		return renderer.RenderJSON(BuildPage(e, text, true))
	}

	converted, _, err := Convert(e, text, format)
	if err != nil {
		return fmt.Errorf("failed to convert page: %w", err)
	}
	if converted != "" {
		renderer.RenderText(converted)
	}
	return nil
}
