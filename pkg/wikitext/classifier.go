package wikitext

import (
	"regexp"
	"strings"
)

// tagBlock is a tag whose element may span several lines.
type tagBlock struct {
	kind  ElementKind
	start *regexp.Regexp
	open  *regexp.Regexp
	close *regexp.Regexp
}

// blockTagKinds maps tags that open a block to the element they produce.
// Adding a block tag = adding one entry here.
var blockTagKinds = []struct {
	tag  string
	kind ElementKind
}{
	{"table", HTMLTable},
	{"blockquote", Quote},
	{"pre", Pre},
	{"syntaxhighlight", SourceBlock},
	{"source", SourceBlock},
	{"math", MathBlock},
	{"inputbox", InputBox},
}

var (
	headingLineRE = regexp.MustCompile(`^(=+)\s*(.*?)\s*(=+)\s*$`)
	listLineRE    = regexp.MustCompile(`^([*#:;]+)\s*(.*)$`)
)

// Classifier splits raw wikitext into typed elements. Its patterns are
// compiled once in NewClassifier; Classify keeps no state between calls.
type Classifier struct {
	blocks []tagBlock
	quotes map[string]bool
}

// NewClassifier returns a Classifier with its tag patterns compiled.
func NewClassifier() *Classifier {
	c := &Classifier{quotes: make(map[string]bool)}
	add := func(tag string, kind ElementKind) {
		b := boundaries(tag)
		c.blocks = append(c.blocks, tagBlock{
			kind:  kind,
			start: regexp.MustCompile(`(?i)^\s*<` + regexp.QuoteMeta(tag) + `(?:[\s>/]|$)`),
			open:  b.open,
			close: b.close,
		})
	}
	for _, bt := range blockTagKinds {
		add(bt.tag, bt.kind)
	}
	for _, tag := range BlockTags {
		add(tag, IsolatedTag)
	}
	for _, name := range QuoteTemplates {
		c.quotes[name] = true
	}
	return c
}

// Classify turns page text into an Article. A page whose first non-blank
// line is a redirect yields exactly one Redirect element. Otherwise every
// line lands in exactly one element, in source order.
func (c *Classifier) Classify(title, text string) *Article {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	art := &Article{
		Title:      title,
		RawText:    text,
		Elements:   []Element{},
		Categories: []string{},
	}
	blanked := blankComments(text)

	if target, ok := RedirectTarget(blanked); ok {
		art.RedirectTarget = target
		art.Elements = append(art.Elements, Element{Kind: Redirect, Content: target})
		return art
	}

	lines := strings.Split(blanked, "\n")
	for i := 0; i < len(lines); {
		el, next := c.element(lines, i)
		art.Elements = append(art.Elements, el)
		i = next
	}
	art.Categories = Categories(blanked)
	art.Links = Links(blanked)
	art.Files = Files(blanked)
	return art
}

// RedirectTarget returns the target of a redirect page, without any
// pipe or surrounding space.
func RedirectTarget(text string) (string, bool) {
	m := redirectRE.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	target, _, _ := strings.Cut(m[1], "|")
	target = strings.TrimSpace(target)
	if target == "" {
		return "", false
	}
	return target, true
}

// Categories lists the categories a page is filed in, in first-seen order
// without duplicates. Sort keys are dropped and underscores read as spaces.
func Categories(text string) []string {
	var found []string
	for _, m := range categoryRE.FindAllStringSubmatch(text, -1) {
		name := strings.Join(strings.Fields(strings.ReplaceAll(m[1], "_", " ")), " ")
		if name != "" {
			found = append(found, name)
		}
	}
	seen := make(map[string]bool, len(found))
	out := []string{}
	for _, name := range found {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// blankComments removes comment bodies but keeps their newlines, so line
// numbers still match the source. An unterminated comment runs to the end.
func blankComments(text string) string {
	if !strings.Contains(text, "<!--") {
		return text
	}
	var sb strings.Builder
	for {
		i := strings.Index(text, "<!--")
		if i < 0 {
			break
		}
		sb.WriteString(text[:i])
		rest := text[i:]
		end := strings.Index(rest, "-->")
		if end < 0 {
			sb.WriteString(strings.Repeat("\n", strings.Count(rest, "\n")))
			return sb.String()
		}
		sb.WriteString(strings.Repeat("\n", strings.Count(rest[:end], "\n")))
		text = rest[end+3:]
	}
	sb.WriteString(text)
	return sb.String()
}

// element classifies the construct starting at lines[i] and returns it with
// the index of the first line after it.
func (c *Classifier) element(lines []string, i int) (Element, int) {
	line := lines[i]
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(strings.TrimLeft(line, ": \t"), "{|") {
		end := accumulateTable(lines, i)
		return Element{Kind: Table, Content: strings.Join(lines[i:end], "\n")}, end
	}

	for _, b := range c.blocks {
		if !b.start.MatchString(line) {
			continue
		}
		end := accumulateTag(lines, i, b)
		return Element{Kind: b.kind, Content: strings.Join(lines[i:end], "\n")}, end
	}

	if Depth(0, line, "{{", "}}") > 0 {
		end := accumulate(lines, i, "{{", "}}")
		content := strings.Join(lines[i:end], "\n")
		if strings.HasPrefix(trimmed, "{{") {
			if c.isQuote(trimmed) {
				return Element{Kind: Quote, Content: content}, end
			}
			return Element{Kind: MultilineTemplate, Content: content}, end
		}
		return c.continued(line, lines[i+1:end]), end
	}

	if Depth(0, line, "[[", "]]") > 0 {
		end := accumulate(lines, i, "[[", "]]")
		if strings.HasPrefix(trimmed, "[[") {
			return Element{Kind: MultilineLink, Content: strings.Join(lines[i:end], "\n")}, end
		}
		return c.continued(line, lines[i+1:end]), end
	}

	return c.classifyLine(line), i + 1
}

// continued classifies a construct that starts mid-line by its first line
// and appends the lines it runs into.
func (c *Classifier) continued(first string, rest []string) Element {
	el := c.classifyLine(first)
	if el.Kind == Blank || el.Kind == Heading {
		el = Element{Kind: Paragraph, Content: first}
	}
	if len(rest) > 0 {
		el.Content += "\n" + strings.Join(rest, "\n")
	}
	return el
}

// accumulate returns the index after the line where the open/close depth
// started at lines[i] returns to zero, or len(lines).
func accumulate(lines []string, i int, open, close string) int {
	depth := 0
	for j := i; j < len(lines); j++ {
		depth = Depth(depth, lines[j], open, close)
		if depth == 0 {
			return j + 1
		}
	}
	return len(lines)
}

func accumulateTable(lines []string, i int) int {
	if end := tableEnd(lines, i); end > 0 {
		return end
	}
	return len(lines)
}

func accumulateTag(lines []string, i int, b tagBlock) int {
	depth := 0
	for j := i; j < len(lines); j++ {
		depth += len(b.open.FindAllStringIndex(lines[j], -1))
		depth -= len(b.close.FindAllStringIndex(lines[j], -1))
		if depth <= 0 {
			return j + 1
		}
	}
	return len(lines)
}

func (c *Classifier) isQuote(s string) bool {
	end := FindClosing(s, 0, "{{", "}}")
	if end < 0 {
		end = len(s)
	} else {
		end -= 2
	}
	inv := ParseInvocation(s[2:end])
	return c.quotes[NormalizeName(inv.Name)]
}

// classifyLine classifies a line that is not part of a multi-line block.
func (c *Classifier) classifyLine(line string) Element {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Element{Kind: Blank}
	}

	if m := headingLineRE.FindStringSubmatch(line); m != nil && m[2] != "" {
		level := min(len(m[1]), len(m[3]))
		return Element{Kind: Heading, Content: m[2], Level: min(max(level, 2), 6)}
	}

	if m := listLineRE.FindStringSubmatch(line); m != nil {
		markers := m[1]
		kind := DefinitionItem
		switch markers[len(markers)-1] {
		case '*':
			kind = UnorderedItem
		case '#':
			kind = OrderedItem
		}
		return Element{Kind: kind, Content: m[2], Level: len(markers)}
	}

	if line[0] == ' ' || line[0] == '\t' {
		return Element{Kind: Pre, Content: line[1:]}
	}

	if rest, n := removeSpans(trimmed, "{{", "}}"); n > 0 && strings.TrimSpace(rest) == "" {
		switch {
		case n > 1:
			return Element{Kind: Template, Content: trimmed}
		case c.isQuote(trimmed):
			return Element{Kind: Quote, Content: trimmed}
		}
		return Element{Kind: IsolatedTemplate, Content: trimmed}
	}

	if rest, n := removeSpans(trimmed, "[[", "]]"); n > 0 && strings.TrimSpace(rest) == "" {
		return Element{Kind: Link, Content: trimmed}
	}

	if tagRE.MatchString(trimmed) && strings.TrimSpace(tagRE.ReplaceAllString(trimmed, "")) == "" {
		return Element{Kind: IsolatedTag, Content: trimmed}
	}

	return Element{Kind: Paragraph, Content: line}
}

// removeSpans drops every outermost balanced open/close span from s and
// reports how many were removed.
func removeSpans(s, open, close string) (string, int) {
	n := 0
	out := protectSpans(s, open, close, func(string) string {
		n++
		return ""
	})
	return out, n
}
