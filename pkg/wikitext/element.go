// element.go defines the typed page elements produced by the classifier.
package wikitext

import "fmt"

// ElementKind tags an Element. The set is closed; every switch over it
// should handle all kinds.
type ElementKind int

const (
	Heading ElementKind = iota
	Paragraph
	Table
	HTMLTable
	Quote
	Pre
	UnorderedItem
	OrderedItem
	DefinitionItem
	Link
	MultilineLink
	Redirect
	Template
	MultilineTemplate
	IsolatedTemplate
	IsolatedTag
	SourceBlock
	MathBlock
	InputBox
	Blank
)

var elementKindNames = [...]string{
	Heading:           "heading",
	Paragraph:         "paragraph",
	Table:             "table",
	HTMLTable:         "html_table",
	Quote:             "quote",
	Pre:               "pre",
	UnorderedItem:     "unordered_item",
	OrderedItem:       "ordered_item",
	DefinitionItem:    "definition_item",
	Link:              "link",
	MultilineLink:     "multiline_link",
	Redirect:          "redirect",
	Template:          "template",
	MultilineTemplate: "multiline_template",
	IsolatedTemplate:  "isolated_template",
	IsolatedTag:       "isolated_tag",
	SourceBlock:       "source_block",
	MathBlock:         "math_block",
	InputBox:          "inputbox",
	Blank:             "blank",
}

func (k ElementKind) String() string {
	if k < 0 || int(k) >= len(elementKindNames) {
		return "unknown"
	}
	return elementKindNames[k]
}

// MarshalText lets element kinds appear by name in JSON output.
func (k ElementKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText reads a kind written by MarshalText.
func (k *ElementKind) UnmarshalText(b []byte) error {
	kind, ok := ParseElementKind(string(b))
	if !ok {
		return fmt.Errorf("unknown element kind %q", b)
	}
	*k = kind
	return nil
}

// ParseElementKind returns the kind named name.
func ParseElementKind(name string) (ElementKind, bool) {
	for i, n := range elementKindNames {
		if n == name {
			return ElementKind(i), true
		}
	}
	return 0, false
}

// ElementKindNames lists every element kind name in declaration order.
func ElementKindNames() []string {
	return append([]string(nil), elementKindNames[:]...)
}

// Element is one classified unit of a page, in source order.
type Element struct {
	Kind    ElementKind `json:"kind"`
	Content string      `json:"content"`
	Level   int         `json:"level,omitempty"` // heading level 2..6 or list depth
}

// Article is a classified page.
type Article struct {
	Title          string    `json:"title"`
	RawText        string    `json:"-"`
	Elements       []Element `json:"elements"`
	Categories     []string  `json:"categories"`
	Links          []string  `json:"links,omitempty"`
	Files          []string  `json:"files,omitempty"`
	RedirectTarget string    `json:"redirect_target,omitempty"`
}

// IsRedirect reports whether the page is a redirect.
func (a *Article) IsRedirect() bool {
	return a.RedirectTarget != ""
}

// ElementsOf returns the elements of the given kind, in order.
func (a *Article) ElementsOf(kind ElementKind) []Element {
	var out []Element
	for _, el := range a.Elements {
		if el.Kind == kind {
			out = append(out, el)
		}
	}
	return out
}
