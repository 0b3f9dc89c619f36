// Package wikitext turns MediaWiki markup into clean text and typed page
// elements. An Engine expands magic words, templates and parser functions,
// protects special content behind markers, strips the remaining markup and
// normalizes whitespace. A Classifier splits raw markup into Elements.
package wikitext

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Options configures an Engine.
type Options struct {
	// Title enables page-context magic words such as {{PAGENAME}}.
	Title     string
	Namespace string
	// DumpDate is "today" for date magic words, ages and #time. The zero
	// value means time.Now at construction.
	DumpDate                 time.Time
	ExpandTemplates          bool
	ExtractCitations         bool
	Markers                  MarkerSet
	PreserveUnknownTemplates bool
}

// DefaultOptions expands templates, drops citations and keeps every
// marker.
func DefaultOptions() Options {
	return Options{
		ExpandTemplates: true,
		Markers:         AllMarkers,
	}
}

// CleanResult is the output of CleanDetailed.
type CleanResult struct {
	Text     string
	Warnings []string // recoverable problems met while cleaning
}

// AddWarning logs a warning and stores it in the result.
func (r *CleanResult) AddWarning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	log.Printf("WARN: "+format, args...)
}

// Engine holds the expansion components for one configuration. It keeps
// no per-document state, so one Engine may clean many pages, including
// concurrently.
type Engine struct {
	opts       Options
	magic      *MagicWords
	functions  *ParserFunctions
	templates  *Templates
	classifier *Classifier
	strip      stripper
}

// New builds an Engine for opts.
func New(opts Options) *Engine {
	if opts.DumpDate.IsZero() {
		opts.DumpDate = time.Now().UTC()
	}
	e := &Engine{
		opts:       opts,
		functions:  NewParserFunctions(opts.DumpDate),
		classifier: NewClassifier(),
		strip: stripper{
			extractCitations: opts.ExtractCitations,
			preserveUnknown:  opts.PreserveUnknownTemplates,
		},
	}
	e.magic = NewMagicWords(opts.Title, opts.Namespace, opts.DumpDate)
	e.templates = NewTemplates(opts.DumpDate, e.functions, e.magic, TemplateOptions{
		PreserveUnknown:  opts.PreserveUnknownTemplates,
		ExtractCitations: opts.ExtractCitations,
	})
	return e
}

// Options returns the engine's configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// WithTitle returns an Engine for the same options and another page.
func (e *Engine) WithTitle(title, namespace string) *Engine {
	opts := e.opts
	opts.Title = title
	opts.Namespace = namespace
	return New(opts)
}

// Clean converts wikitext to plain text.
func (e *Engine) Clean(text string) string {
	return e.CleanDetailed(text).Text
}

// CleanDetailed converts wikitext to plain text and reports what had to be
// recovered from along the way.
func (e *Engine) CleanDetailed(text string) *CleanResult {
	result := &CleanResult{}
	if text == "" {
		return result
	}
	mt := &MarkerTable{}

	text = strings.ReplaceAll(text, "\x7f", "")
	text = StripComments(text)
	text = StripInclusion(text)
	text = ShieldTags(text, mt)

	text = e.magic.Expand(text)
	if e.opts.ExpandTemplates {
		var exhausted bool
		text, exhausted = e.templates.ExpandLimit(text, MaxNestingIterations)
		if exhausted {
			result.AddWarning("template expansion stopped after %d rewrites in %q", MaxNestingIterations, e.opts.Title)
		}
		// {{#tag:}} can produce extension tags.
		text = ShieldTags(text, mt)
	}
	text = mt.RestoreRaw(text)

	text = ProtectRegions(text, mt)
	text = DecodeEntities(text)
	text = e.strip.Strip(text)
	// Stripping tags and list markers can leave a fence at a line start.
	text = protectTables(text, mt)

	text = mt.Resolve(text, e.opts.Markers)
	text = NormalizeWhitespace(text)
	result.Text = mt.Finalize(text, e.opts.Markers)
	return result
}

// Expand rewrites magic words, templates and parser functions in text
// without any other cleanup.
func (e *Engine) Expand(text string) string {
	text = e.magic.Expand(text)
	return e.templates.Expand(text)
}

// Parse classifies text into an Article titled with the engine's title.
func (e *Engine) Parse(text string) *Article {
	return e.classifier.Classify(e.opts.Title, text)
}

// ElementText cleans the content of one element as standalone wikitext.
func (e *Engine) ElementText(el Element) string {
	switch el.Kind {
	case Blank, Redirect:
		return ""
	}
	return strings.TrimSuffix(e.Clean(el.Content), "\n")
}
