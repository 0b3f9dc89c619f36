// markers.go protects special-content regions behind opaque tokens while
// the rest of the page is cleaned, then resolves them to [TYPE] brackets.
package wikitext

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// MarkerType names a kind of protected content.
type MarkerType int

const (
	MarkerMath MarkerType = iota
	MarkerCode
	MarkerChem
	MarkerTables
	MarkerScore
	MarkerTimeline
	MarkerGraph
	MarkerIPA
	MarkerInfobox
	MarkerNavbox
	MarkerGallery
	MarkerReferences
	MarkerSidebar
	MarkerMapframe
	MarkerImagemap

	// markerRaw holds nowiki bodies. It is never rendered as a bracket.
	markerRaw
)

var markerNames = [...]string{
	MarkerMath:       "MATH",
	MarkerCode:       "CODE",
	MarkerChem:       "CHEM",
	MarkerTables:     "TABLE",
	MarkerScore:      "SCORE",
	MarkerTimeline:   "TIMELINE",
	MarkerGraph:      "GRAPH",
	MarkerIPA:        "IPA",
	MarkerInfobox:    "INFOBOX",
	MarkerNavbox:     "NAVBOX",
	MarkerGallery:    "GALLERY",
	MarkerReferences: "REFERENCES",
	MarkerSidebar:    "SIDEBAR",
	MarkerMapframe:   "MAPFRAME",
	MarkerImagemap:   "IMAGEMAP",
	markerRaw:        "RAW",
}

func (t MarkerType) String() string {
	if t < 0 || int(t) >= len(markerNames) {
		return "UNKNOWN"
	}
	return markerNames[t]
}

// HasContent reports whether the type keeps its inner text when
// finalized, as [MATH]x^2[/MATH]. Other types become a bare [TABLE].
func (t MarkerType) HasContent() bool {
	switch t {
	case MarkerMath, MarkerCode, MarkerChem, MarkerIPA, MarkerScore:
		return true
	}
	return false
}

// MarkerSet is a set of enabled marker types.
type MarkerSet uint32

const (
	NoMarkers  MarkerSet = 0
	AllMarkers MarkerSet = 1<<markerRaw - 1
)

// Has reports whether t is enabled.
func (s MarkerSet) Has(t MarkerType) bool {
	return s&(1<<t) != 0
}

// With returns s with t enabled.
func (s MarkerSet) With(t MarkerType) MarkerSet {
	return s | 1<<t
}

// Without returns s with t disabled.
func (s MarkerSet) Without(t MarkerType) MarkerSet {
	return s &^ (1 << t)
}

// Types lists the enabled types in declaration order.
func (s MarkerSet) Types() []MarkerType {
	var out []MarkerType
	for t := MarkerMath; t < markerRaw; t++ {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s MarkerSet) String() string {
	switch s {
	case AllMarkers:
		return "all"
	case NoMarkers:
		return "none"
	}
	var names []string
	for _, t := range s.Types() {
		names = append(names, strings.ToLower(t.String()))
	}
	return strings.Join(names, ",")
}

// ParseMarkers reads "all", "none" or a comma-separated list of marker
// names such as "math,code".
func ParseMarkers(s string) (MarkerSet, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "all":
		return AllMarkers, nil
	case "", "none":
		return NoMarkers, nil
	}
	set := NoMarkers
	for _, name := range strings.Split(s, ",") {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		found := false
		for t := MarkerMath; t < markerRaw; t++ {
			if t.String() == name {
				set = set.With(t)
				found = true
				break
			}
		}
		if !found {
			return NoMarkers, fmt.Errorf("unknown marker type %q", strings.ToLower(name))
		}
	}
	return set, nil
}

// MarkerNames lists every valid marker name in lowercase.
func MarkerNames() []string {
	var out []string
	for t := MarkerMath; t < markerRaw; t++ {
		out = append(out, strings.ToLower(t.String()))
	}
	sort.Strings(out)
	return out
}

const (
	markerPrefix = "\x7fWXM"
	markerSuffix = "\x7f"
)

var (
	markerTokenRE = regexp.MustCompile(`\x7fWXM(\d+)\x7f`)
	strayTokenRE  = regexp.MustCompile(`\x7fWX[A-Z]*\d*\x7f`)
)

type markerEntry struct {
	typ     MarkerType
	content string
}

// MarkerTable records the regions protected in one document. Tokens are
// unique within a table.
type MarkerTable struct {
	entries []markerEntry
}

// Add records content and returns the token standing in for it.
func (mt *MarkerTable) Add(typ MarkerType, content string) string {
	mt.entries = append(mt.entries, markerEntry{typ: typ, content: content})
	return markerPrefix + strconv.Itoa(len(mt.entries)-1) + markerSuffix
}

// Len returns the number of recorded regions.
func (mt *MarkerTable) Len() int {
	return len(mt.entries)
}

func (mt *MarkerTable) lookup(token string) (markerEntry, bool) {
	m := markerTokenRE.FindStringSubmatch(token)
	if m == nil {
		return markerEntry{}, false
	}
	i, err := strconv.Atoi(m[1])
	if err != nil || i >= len(mt.entries) {
		return markerEntry{}, false
	}
	return mt.entries[i], true
}

// RestoreRaw puts nowiki bodies back as plain text and leaves every
// other token in place.
func (mt *MarkerTable) RestoreRaw(text string) string {
	for i := 0; i <= len(mt.entries) && strings.Contains(text, markerPrefix); i++ {
		next := markerTokenRE.ReplaceAllStringFunc(text, func(tok string) string {
			e, ok := mt.lookup(tok)
			if !ok || e.typ != markerRaw {
				return tok
			}
			return e.content
		})
		if next == text {
			break
		}
		text = next
	}
	return text
}

// Resolve settles every token except those that will finalize with their
// inner bytes, so whitespace can be normalized without touching them.
func (mt *MarkerTable) Resolve(text string, enabled MarkerSet) string {
	return mt.resolve(text, enabled, true)
}

// Finalize resolves every token: enabled content types become
// [TYPE]inner[/TYPE] with the inner bytes untouched, enabled opaque types
// become [TYPE] and disabled types are removed. Unresolvable tokens are
// swept so none reach the output.
func (mt *MarkerTable) Finalize(text string, enabled MarkerSet) string {
	return SweepTokens(mt.resolve(text, enabled, false))
}

func (mt *MarkerTable) resolve(text string, enabled MarkerSet, keepContent bool) string {
	for i := 0; i <= len(mt.entries) && strings.Contains(text, markerPrefix); i++ {
		next := markerTokenRE.ReplaceAllStringFunc(text, func(tok string) string {
			e, ok := mt.lookup(tok)
			if !ok {
				return ""
			}
			switch {
			case e.typ == markerRaw:
				return e.content
			case !enabled.Has(e.typ):
				return ""
			case e.typ.HasContent() && keepContent:
				return tok
			case e.typ.HasContent():
				return "[" + e.typ.String() + "]" + e.content + "[/" + e.typ.String() + "]"
			}
			return "[" + e.typ.String() + "]"
		})
		if next == text {
			break
		}
		text = next
	}
	return text
}

// SweepTokens removes any marker token or stray delimiter byte.
func SweepTokens(text string) string {
	text = strayTokenRE.ReplaceAllString(text, "")
	return strings.ReplaceAll(text, "\x7f", "")
}

// shieldedTags are extension tags whose bodies MediaWiki never expands.
// They are hidden from template expansion and stripping from the start.
var shieldedTags = []struct {
	tag string
	typ MarkerType
}{
	{"nowiki", markerRaw},
	{"math", MarkerMath},
	{"syntaxhighlight", MarkerCode},
	{"source", MarkerCode},
	{"code", MarkerCode},
	{"pre", MarkerCode},
	{"chem", MarkerChem},
	{"ce", MarkerChem},
	{"score", MarkerScore},
	{"timeline", MarkerTimeline},
	{"graph", MarkerGraph},
	{"mapframe", MarkerMapframe},
	{"imagemap", MarkerImagemap},
	{"gallery", MarkerGallery},
	{"references", MarkerReferences},
}

// tagPatterns holds the precompiled tag-pair patterns for known tags.
var tagPatterns = map[string]*regexp.Regexp{}

// tagPatternCache holds patterns for tag names only seen at run time.
// LoadOrStore makes concurrent insert-if-absent idempotent.
var tagPatternCache sync.Map

var finalizedRE = map[MarkerType]*regexp.Regexp{}

var selfClosingRefsRE = regexp.MustCompile(`(?i)<references\s*/>`)

func init() {
	for _, st := range shieldedTags {
		tagPatterns[st.tag] = compileTagPair(st.tag)
	}
	for _, tag := range []string{"table", "ref", "blockquote", "div", "poem", "includeonly", "inputbox"} {
		tagPatterns[tag] = compileTagPair(tag)
	}
	for t := MarkerMath; t < markerRaw; t++ {
		name := regexp.QuoteMeta(t.String())
		if t.HasContent() {
			finalizedRE[t] = regexp.MustCompile(`(?s)\[` + name + `\](.*?)\[/` + name + `\]`)
		} else {
			finalizedRE[t] = regexp.MustCompile(`\[` + name + `\]`)
		}
	}
}

func compileTagPair(tag string) *regexp.Regexp {
	q := regexp.QuoteMeta(tag)
	return regexp.MustCompile(`(?is)<` + q + `(?:\s[^>]*[^>/])?\s*>(.*?)</` + q + `\s*>`)
}

// TagPattern returns a pattern matching <tag ...>body</tag> with the body
// in group 1.
func TagPattern(tag string) *regexp.Regexp {
	tag = strings.ToLower(tag)
	if re, ok := tagPatterns[tag]; ok {
		return re
	}
	if re, ok := tagPatternCache.Load(tag); ok {
		return re.(*regexp.Regexp)
	}
	re, _ := tagPatternCache.LoadOrStore(tag, compileTagPair(tag))
	return re.(*regexp.Regexp)
}

// ShieldTags replaces extension-tag bodies and already-finalized
// [TYPE]...[/TYPE] forms with tokens.
func ShieldTags(text string, mt *MarkerTable) string {
	for t := MarkerMath; t < markerRaw; t++ {
		re := finalizedRE[t]
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			inner := ""
			if sub := re.FindStringSubmatch(m); len(sub) > 1 {
				inner = sub[1]
			}
			return mt.Add(t, inner)
		})
	}
	for _, st := range shieldedTags {
		re := TagPattern(st.tag)
		text = re.ReplaceAllStringFunc(text, func(m string) string {
			return mt.Add(st.typ, re.FindStringSubmatch(m)[1])
		})
	}
	return selfClosingRefsRE.ReplaceAllStringFunc(text, func(string) string {
		return mt.Add(MarkerReferences, "")
	})
}

// templateMarker maps a protected template name to its marker type.
func templateMarker(name string) (MarkerType, bool) {
	switch {
	case !IsProtectedTemplate(name):
		return 0, false
	case strings.HasPrefix(name, "navbox"):
		return MarkerNavbox, true
	case strings.HasPrefix(name, "sidebar"):
		return MarkerSidebar, true
	case strings.HasPrefix(name, "ipa"):
		return MarkerIPA, true
	case strings.HasPrefix(name, "chem") && name != "chembox":
		return MarkerChem, true
	case name == "reflist":
		return MarkerReferences, true
	}
	return MarkerInfobox, true
}

// templateMarkerContent is what a content-type template shows: the IPA
// transcription or the chemical formula.
func templateMarkerContent(typ MarkerType, inv Invocation) string {
	switch typ {
	case MarkerIPA:
		if strings.HasPrefix(NormalizeName(inv.Name), "ipac") {
			return strings.Join(inv.Positional, "")
		}
		if strings.HasPrefix(NormalizeName(inv.Name), "ipa-") {
			return arg(inv.Positional, 0)
		}
		return lastNonEmpty(inv.Positional)
	case MarkerChem:
		if NormalizeName(inv.Name) == "chem2" {
			return arg(inv.Positional, 0)
		}
		return strings.Join(inv.Positional, "")
	}
	return ""
}

func lastNonEmpty(args []string) string {
	for i := len(args) - 1; i >= 0; i-- {
		if args[i] != "" {
			return args[i]
		}
	}
	return ""
}

// ProtectRegions replaces tables, protected template families and
// reference lists with tokens.
func ProtectRegions(text string, mt *MarkerTable) string {
	text = protectTemplates(text, mt)
	text = protectTables(text, mt)
	text = protectTagBlocks(text, "table", func(string) string { return mt.Add(MarkerTables, "") })
	return text
}

func protectTemplates(text string, mt *MarkerTable) string {
	var sb strings.Builder
	i := 0
	for {
		j := strings.Index(text[i:], "{{")
		if j < 0 {
			break
		}
		start := i + j
		end := FindClosing(text, start, "{{", "}}")
		if end < 0 {
			break
		}
		inv := ParseInvocation(text[start+2 : end-2])
		typ, ok := templateMarker(NormalizeName(inv.Name))
		if !ok {
			sb.WriteString(text[i : start+2])
			i = start + 2
			continue
		}
		sb.WriteString(text[i:start])
		sb.WriteString(mt.Add(typ, templateMarkerContent(typ, inv)))
		i = end
	}
	sb.WriteString(text[i:])
	return sb.String()
}

// protectSpans replaces every outermost balanced open/close span.
func protectSpans(text, open, close string, fn func(span string) string) string {
	var sb strings.Builder
	i := 0
	for {
		j := strings.Index(text[i:], open)
		if j < 0 {
			break
		}
		start := i + j
		end := FindClosing(text, start, open, close)
		if end < 0 {
			break
		}
		sb.WriteString(text[i:start])
		sb.WriteString(fn(text[start:end]))
		i = end
	}
	sb.WriteString(text[i:])
	return sb.String()
}

// tableFence reports whether a line opens (+1) or closes (-1) a wikitable.
// Fences only count at the start of a line, so a "|}}" inside a cell is
// not mistaken for the end of the table.
func tableFence(line string) int {
	t := strings.TrimLeft(line, ": \t")
	switch {
	case strings.HasPrefix(t, "{|"):
		if strings.HasSuffix(strings.TrimSpace(t), "|}") && len(strings.TrimSpace(t)) > 3 {
			return 0
		}
		return 1
	case strings.HasPrefix(t, "|}"):
		return -1
	}
	return 0
}

// tableEnd returns the index after the line closing the wikitable opened
// at lines[i], or -1 if it never closes.
func tableEnd(lines []string, i int) int {
	depth := 0
	for j := i; j < len(lines); j++ {
		t := strings.TrimLeft(lines[j], ": \t")
		if j == i && !strings.HasPrefix(t, "{|") {
			return -1
		}
		depth += tableFence(lines[j])
		if depth <= 0 {
			return j + 1
		}
	}
	return -1
}

// protectTables replaces each outermost wikitable, fence lines included,
// with a TABLE token on a line of its own.
func protectTables(text string, mt *MarkerTable) string {
	if !strings.Contains(text, "{|") {
		return text
	}
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); {
		if end := tableEnd(lines, i); end > 0 {
			out = append(out, mt.Add(MarkerTables, ""))
			i = end
			continue
		}
		out = append(out, lines[i])
		i++
	}
	return strings.Join(out, "\n")
}

var tagBoundaryCache sync.Map

type tagBoundary struct {
	open, close *regexp.Regexp
}

func boundaries(tag string) tagBoundary {
	if b, ok := tagBoundaryCache.Load(tag); ok {
		return b.(tagBoundary)
	}
	q := regexp.QuoteMeta(tag)
	b := tagBoundary{
		open:  regexp.MustCompile(`(?i)<` + q + `(?:\s[^>]*[^>/])?\s*>`),
		close: regexp.MustCompile(`(?i)</` + q + `\s*>`),
	}
	v, _ := tagBoundaryCache.LoadOrStore(tag, b)
	return v.(tagBoundary)
}

// protectTagBlocks replaces outermost <tag>...</tag> blocks, honoring
// nesting. An unclosed block is left alone.
func protectTagBlocks(text, tag string, fn func(block string) string) string {
	b := boundaries(tag)
	var sb strings.Builder
	i := 0
	for {
		loc := b.open.FindStringIndex(text[i:])
		if loc == nil {
			break
		}
		start := i + loc[0]
		depth := 0
		pos := start
		end := -1
		for pos < len(text) {
			o := b.open.FindStringIndex(text[pos:])
			c := b.close.FindStringIndex(text[pos:])
			if c == nil {
				break
			}
			if o != nil && o[0] < c[0] {
				depth++
				pos += o[1]
				continue
			}
			depth--
			pos += c[1]
			if depth == 0 {
				end = pos
				break
			}
		}
		if end < 0 {
			break
		}
		sb.WriteString(text[i:start])
		sb.WriteString(fn(text[start:end]))
		i = end
	}
	sb.WriteString(text[i:])
	return sb.String()
}
