// templates.go defines the template registry and the expansion pass.
package wikitext

import (
	"regexp"
	"strings"
	"time"
)

// TemplateFunc renders one template invocation.
type TemplateFunc func(t *Templates, inv Invocation) string

// TemplateRegistry maps normalized template names to their renderers.
// Adding a template = adding one entry here (or a prefix rule below).
var TemplateRegistry = map[string]TemplateFunc{}

// templatePrefixRule handles a family of names sharing a prefix, e.g.
// "cite web", "cite book" or "lang-fr".
type templatePrefixRule struct {
	prefix string
	fn     TemplateFunc
}

var templatePrefixRules []templatePrefixRule

// ProtectedTemplatePrefixes name template families that expansion leaves
// intact so the protection stage can replace them with markers.
var ProtectedTemplatePrefixes = []string{
	"infobox",
	"navbox",
	"sidebar",
	"ipa",
	"ipa-",
	"ipac-",
	"chem",
	"chem2",
	"chembox",
	"drugbox",
	"taxobox",
	"speciesbox",
	"automatic taxobox",
	"reflist",
}

func registerTemplate(fn TemplateFunc, names ...string) {
	for _, name := range names {
		TemplateRegistry[NormalizeName(name)] = fn
	}
}

func registerTemplatePrefix(prefix string, fn TemplateFunc) {
	templatePrefixRules = append(templatePrefixRules, templatePrefixRule{prefix: prefix, fn: fn})
}

// LookupTemplate returns the renderer for name, trying exact names first
// and then prefix families.
func LookupTemplate(name string) (TemplateFunc, bool) {
	name = NormalizeName(name)
	if fn, ok := TemplateRegistry[name]; ok {
		return fn, true
	}
	for _, rule := range templatePrefixRules {
		if strings.HasPrefix(name, rule.prefix) {
			return rule.fn, true
		}
	}
	return nil, false
}

// IsProtectedTemplate reports whether name belongs to a family that is
// kept for marker protection instead of being expanded.
func IsProtectedTemplate(name string) bool {
	name = NormalizeName(name)
	for _, p := range ProtectedTemplatePrefixes {
		if name == p || strings.HasPrefix(name, p+" ") || (strings.HasSuffix(p, "-") && strings.HasPrefix(name, p)) {
			return true
		}
	}
	return false
}

// TemplateOptions configures a Templates expander.
type TemplateOptions struct {
	PreserveUnknown  bool
	ExtractCitations bool
}

// Templates expands template invocations, parser functions and (when a
// MagicWords is attached) magic words in one innermost-first pass.
type Templates struct {
	ref   time.Time
	pf    *ParserFunctions
	magic *MagicWords
	opts  TemplateOptions
}

// NewTemplates returns an expander using ref as "today". magic may be nil.
func NewTemplates(ref time.Time, pf *ParserFunctions, magic *MagicWords, opts TemplateOptions) *Templates {
	if pf == nil {
		pf = NewParserFunctions(ref)
	}
	return &Templates{ref: ref, pf: pf, magic: magic, opts: opts}
}

var paramRE = regexp.MustCompile(`\{\{\{\s*([^{}|]*?)\s*(?:\|([^{}]*))?\}\}\}`)

// SubstituteParams replaces {{{name|default}}} with its default and
// {{{name}}} with "". Pages are rendered outside any template call, so no
// parameter ever has a value.
func SubstituteParams(text string) string {
	for i := 0; i < 8 && strings.Contains(text, "{{{"); i++ {
		next := paramRE.ReplaceAllString(text, "$2")
		if next == text {
			break
		}
		text = next
	}
	return text
}

// Expand rewrites templates until nothing changes or the nesting budget
// runs out.
func (t *Templates) Expand(text string) string {
	out, _ := t.ExpandLimit(text, MaxNestingIterations)
	return out
}

// ExpandLimit is Expand with an explicit budget shared by all passes. The
// second result reports whether the budget was exhausted.
func (t *Templates) ExpandLimit(text string, limit int) (string, bool) {
	text = SubstituteParams(text)
	for limit > 0 {
		out, used, exhausted := ScanLimit(text, "{{", "}}", t.transform, limit)
		out = stripErrorMarks(out)
		if exhausted {
			return out, true
		}
		if out == text {
			return out, false
		}
		text = out
		limit -= used
	}
	return text, strings.Contains(text, "{{")
}

func (t *Templates) transform(content string) string {
	if res, ok := t.pf.Expand(content); ok {
		return res
	}
	if t.magic != nil {
		if res, ok := t.magic.Lookup(content); ok {
			return res
		}
	}
	inv := ParseInvocation(content)
	name := NormalizeName(inv.Name)
	if name == "" {
		return ""
	}
	if IsProtectedTemplate(name) {
		return "{{" + content + "}}"
	}
	if fn, ok := LookupTemplate(name); ok {
		return fn(t, inv)
	}
	if t.opts.PreserveUnknown {
		return "{{" + content + "}}"
	}
	return ""
}

func init() {
	registerDateTemplates()
	registerConvertTemplates()
	registerTextTemplates()
	registerTemplate(coordTemplate, "coord", "coor", "coor d", "coor dms")
}

func coordTemplate(t *Templates, inv Invocation) string {
	c, err := ParseCoord(inv.Positional)
	if err != nil {
		return ""
	}
	if strings.EqualFold(inv.Param("format"), "dec") {
		return c.Decimal()
	}
	return c.String()
}
