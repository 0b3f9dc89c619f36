package wikitext

import (
	"regexp"
	"strings"

	"golang.org/x/net/html/atom"
)

// maxStripPasses bounds the strip loop. Removing one construct can expose
// another (a tag between two apostrophes leaves an emphasis run), so
// stripping repeats until the text stops changing.
const maxStripPasses = 4

// ExtensionTags are MediaWiki tags that are not HTML but are removed from
// text the same way.
var ExtensionTags = []string{
	"ref", "references", "nowiki", "math", "chem", "ce", "score", "timeline",
	"graph", "mapframe", "imagemap", "gallery", "poem", "syntaxhighlight",
	"source", "includeonly", "noinclude", "onlyinclude", "templatestyles",
	"inputbox", "section", "indicator", "categorytree", "hiero", "charinsert",
	"templatedata", "maplink", "langconvert", "rdf", "translate", "languages",
}

var (
	includeOnlyRE    = regexp.MustCompile(`(?is)<includeonly\s*>.*?</includeonly\s*>`)
	inclusionTagRE   = regexp.MustCompile(`(?i)</?(?:noinclude|onlyinclude)\s*>`)
	selfClosingRefRE = regexp.MustCompile(`(?i)<ref\b[^>]*/>`)
	breakRE          = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRE            = regexp.MustCompile(`</?([A-Za-z][A-Za-z0-9]*)\b[^<>]*?/?>`)
	emphasisRE       = regexp.MustCompile(`'{2,5}`)
	headingRE        = regexp.MustCompile(`(?m)^[ \t]*=+[ \t]*(.*?)[ \t]*=+[ \t]*$`)
	listMarkerRE     = regexp.MustCompile(`(?m)^(?:[ \t]*[*#:;]+)+[ \t]*`)
	ruleRE           = regexp.MustCompile(`(?m)^[ \t]*-{4,}[ \t]*$`)
	directiveRE      = regexp.MustCompile(`__([\p{L}_]+?)__`)
	trailingSpaceRE  = regexp.MustCompile(`(?m)[ \t]+$`)
	blankRunRE       = regexp.MustCompile(`\n{4,}`)
	footerLineRE     *regexp.Regexp
	extensionTagSet  = make(map[string]bool)
)

func init() {
	footerLineRE = regexp.MustCompile(`(?im)^[ \t]*\{\{\s*(?:` + alternation(FooterTemplates) + `)\s*(?:\|[^\n]*)?\}\}[ \t]*$\n?`)
	for _, tag := range ExtensionTags {
		extensionTagSet[tag] = true
	}
}

// StripInclusion applies the page-view meaning of the transclusion tags:
// includeonly bodies are dropped and noinclude/onlyinclude tags vanish.
func StripInclusion(text string) string {
	text = includeOnlyRE.ReplaceAllString(text, "")
	return inclusionTagRE.ReplaceAllString(text, "")
}

// StripComments removes <!-- ... --> comments.
func StripComments(text string) string {
	return commentRE.ReplaceAllString(text, "")
}

// stripper removes structural markup from text that has already had its
// templates expanded and special regions protected.
type stripper struct {
	extractCitations bool
	preserveUnknown  bool
}

// Strip repeats one strip pass, with entity decoding in between, until the
// text stops changing.
func (s stripper) Strip(text string) string {
	for i := 0; i < maxStripPasses; i++ {
		next := s.pass(DecodeEntities(text))
		if next == text {
			break
		}
		text = next
	}
	return text
}

func (s stripper) pass(text string) string {
	text = StripComments(text)
	text = footerLineRE.ReplaceAllString(text, "")
	if !s.preserveUnknown {
		text = Scan(text, "{{", "}}", func(string) string { return "" })
	}
	text = StripExternalLinks(text)
	text = s.references(text)
	text = StripLinks(text)
	text = emphasisRE.ReplaceAllString(text, "")
	text = headingRE.ReplaceAllString(text, "$1")
	text = listMarkerRE.ReplaceAllString(text, "")
	text = ruleRE.ReplaceAllString(text, "")
	text = StripDirectives(text)
	text = breakRE.ReplaceAllString(text, "\n")
	text = StripTags(text)
	return categoryLine.ReplaceAllString(text, "")
}

// references brackets <ref> bodies as [body] when citations are extracted
// and drops them otherwise.
func (s stripper) references(text string) string {
	text = selfClosingRefRE.ReplaceAllString(text, "")
	re := TagPattern("ref")
	return re.ReplaceAllStringFunc(text, func(m string) string {
		if !s.extractCitations {
			return ""
		}
		body := strings.TrimSpace(re.FindStringSubmatch(m)[1])
		if body == "" {
			return ""
		}
		return "[" + body + "]"
	})
}

// StripDirectives removes whitelisted __WORD__ behavior switches. Other
// double-underscore text is kept.
func StripDirectives(text string) string {
	return directiveRE.ReplaceAllStringFunc(text, func(m string) string {
		word := strings.ToUpper(m[2 : len(m)-2])
		if directiveSet[word] {
			return ""
		}
		return m
	})
}

// IsKnownTag reports whether name is an HTML element or a MediaWiki
// extension tag.
func IsKnownTag(name string) bool {
	name = strings.ToLower(name)
	return atom.Lookup([]byte(name)) != 0 || extensionTagSet[name]
}

// StripTags removes opening, closing and self-closing tags whose names are
// known. Anything else that looks like a tag is text.
func StripTags(text string) string {
	return tagRE.ReplaceAllStringFunc(text, func(m string) string {
		if IsKnownTag(tagRE.FindStringSubmatch(m)[1]) {
			return ""
		}
		return m
	})
}

// NormalizeWhitespace trims trailing blanks on every line, collapses runs
// of three or more blank lines into one and ends the text with exactly one
// newline. Empty text stays empty.
func NormalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = trailingSpaceRE.ReplaceAllString(text, "")
	text = blankRunRE.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return text + "\n"
}
