// scanner.go implements balanced-delimiter scanning for {{...}}, [[...]] and friends.
package wikitext

import "strings"

// MaxNestingIterations caps how many spans a single document may rewrite.
// Reaching it stops expansion for that document only; the partially
// rewritten text is returned as-is.
const MaxNestingIterations = 50000

// TransformFunc rewrites the content of one innermost span. The returned
// string replaces the whole span, delimiters included.
type TransformFunc func(content string) string

// Scan rewrites every balanced open/close span of text, innermost first.
//
// A span's content is handed to fn only after every span nested inside it
// has been rewritten, so {{a|{{b|{{c}}}}}} resolves c, then b, then a.
// Text produced by fn is not scanned again during the same call.
// Unterminated opens and orphan closes are kept verbatim.
func Scan(text, open, close string, fn TransformFunc) string {
	out, _, _ := ScanLimit(text, open, close, fn, MaxNestingIterations)
	return out
}

// ScanLimit is Scan with an explicit transform budget. It returns the
// rewritten text, the number of transforms applied and whether the budget
// ran out before the end of the input.
func ScanLimit(text, open, close string, fn TransformFunc, limit int) (string, int, bool) {
	if open == "" || close == "" || fn == nil || !strings.Contains(text, open) {
		return text, 0, false
	}

	out := &strings.Builder{}
	out.Grow(len(text))
	var stack []*strings.Builder
	cur := out
	used := 0
	exhausted := false

	i := 0
	for i < len(text) {
		if strings.HasPrefix(text[i:], open) {
			frame := &strings.Builder{}
			stack = append(stack, frame)
			cur = frame
			i += len(open)
			continue
		}
		if len(stack) > 0 && strings.HasPrefix(text[i:], close) {
			if used >= limit {
				exhausted = true
				break
			}
			content := cur.String()
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				cur = stack[len(stack)-1]
			} else {
				cur = out
			}
			cur.WriteString(fn(content))
			used++
			i += len(close)
			continue
		}
		cur.WriteByte(text[i])
		i++
	}

	// Unterminated spans go back in with their open delimiter.
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parent := out
		if len(stack) > 0 {
			parent = stack[len(stack)-1]
		}
		parent.WriteString(open)
		parent.WriteString(top.String())
	}
	out.WriteString(text[i:])

	return out.String(), used, exhausted
}

// Depth returns the nesting depth after reading s, starting from depth.
// Closes never take the depth below zero.
func Depth(depth int, s, open, close string) int {
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], open):
			depth++
			i += len(open)
		case strings.HasPrefix(s[i:], close):
			if depth > 0 {
				depth--
			}
			i += len(close)
		default:
			i++
		}
	}
	return depth
}

// FindClosing returns the index just past the close delimiter matching the
// open delimiter at s[start:], or -1 if the span never closes.
func FindClosing(s string, start int, open, close string) int {
	if !strings.HasPrefix(s[start:], open) {
		return -1
	}
	depth := 0
	for i := start; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], open):
			depth++
			i += len(open)
		case strings.HasPrefix(s[i:], close):
			depth--
			i += len(close)
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return -1
}

// SplitTopLevel splits s on sep where sep is outside any {{...}} or [[...]].
func SplitTopLevel(s string, sep byte) []string {
	var parts []string
	braces, brackets := 0, 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "{{"):
			braces++
			i++
		case strings.HasPrefix(s[i:], "}}") && braces > 0:
			braces--
			i++
		case strings.HasPrefix(s[i:], "[["):
			brackets++
			i++
		case strings.HasPrefix(s[i:], "]]") && brackets > 0:
			brackets--
			i++
		case s[i] == sep && braces == 0 && brackets == 0:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	return append(parts, s[last:])
}

// indexTopLevel is like strings.IndexByte but ignores bytes nested in
// {{...}} or [[...]].
func indexTopLevel(s string, b byte) int {
	braces, brackets := 0, 0
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "{{"):
			braces++
			i++
		case strings.HasPrefix(s[i:], "}}") && braces > 0:
			braces--
			i++
		case strings.HasPrefix(s[i:], "[["):
			brackets++
			i++
		case strings.HasPrefix(s[i:], "]]") && brackets > 0:
			brackets--
			i++
		case s[i] == b && braces == 0 && brackets == 0:
			return i
		}
	}
	return -1
}
