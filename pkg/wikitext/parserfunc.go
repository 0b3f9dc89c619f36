package wikitext

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// errorMark stands in for MediaWiki's <strong class="error"> output so
// {{#iferror:}} can see failures of nested calls. It never reaches output.
const errorMark = "\x7fWXERR\x7f"

// maxPadWidth bounds #padleft/#padright so a hostile width cannot
// allocate without limit.
const maxPadWidth = 500

var errorClassRE = regexp.MustCompile(`class\s*=\s*["']?[^"'>]*\berror\b`)

// ParserFunction implements one {{#name:...}} function. Arguments are
// already expanded and trimmed.
type ParserFunction func(pf *ParserFunctions, args []string) string

// ParserFunctionRegistry maps function names (without '#') to their
// implementations.
// Adding a parser function = adding one entry here.
var ParserFunctionRegistry = map[string]ParserFunction{
	"expr":       (*ParserFunctions).expr,
	"if":         (*ParserFunctions).ifFunc,
	"ifeq":       (*ParserFunctions).ifeq,
	"iferror":    (*ParserFunctions).iferror,
	"ifexpr":     (*ParserFunctions).ifexpr,
	"ifexist":    (*ParserFunctions).ifexist,
	"switch":     (*ParserFunctions).switchFunc,
	"len":        (*ParserFunctions).length,
	"pos":        (*ParserFunctions).pos,
	"rpos":       (*ParserFunctions).rpos,
	"sub":        (*ParserFunctions).sub,
	"replace":    (*ParserFunctions).replace,
	"titleparts": (*ParserFunctions).titleparts,
	"count":      (*ParserFunctions).count,
	"explode":    (*ParserFunctions).explode,
	"urlencode":  (*ParserFunctions).urlencode,
	"urldecode":  (*ParserFunctions).urldecode,
	"padleft":    (*ParserFunctions).padleft,
	"padright":   (*ParserFunctions).padright,
	"time":       (*ParserFunctions).timeFunc,
	"timel":      (*ParserFunctions).timeFunc,
	"dateformat": (*ParserFunctions).dateformat,
	"formatdate": (*ParserFunctions).dateformat,
	"tag":        (*ParserFunctions).tag,
	"language":   (*ParserFunctions).language,
}

// ParserFunctions evaluates {{#name:args}} forms against a reference date.
type ParserFunctions struct {
	now time.Time
}

// NewParserFunctions returns an evaluator whose "now" is ref.
func NewParserFunctions(ref time.Time) *ParserFunctions {
	return &ParserFunctions{now: ref}
}

// Evaluate rewrites every parser function call in text, innermost first.
// Other {{...}} spans are left as they are.
func (pf *ParserFunctions) Evaluate(text string) string {
	out, _, _ := ScanLimit(text, "{{", "}}", func(content string) string {
		if res, ok := pf.Expand(content); ok {
			return res
		}
		return "{{" + content + "}}"
	}, MaxNestingIterations)
	return stripErrorMarks(out)
}

// Expand evaluates the content of one {{...}} span if it is a parser
// function call. ok is false when content does not start with '#'.
// Unknown function names expand to "".
func (pf *ParserFunctions) Expand(content string) (string, bool) {
	trimmed := strings.TrimLeft(content, " \t\r\n")
	if !strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	name, args := splitFunction(trimmed[1:])
	fn, ok := ParserFunctionRegistry[name]
	if !ok {
		return "", true
	}
	return fn(pf, args), true
}

func splitFunction(s string) (string, []string) {
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return strings.ToLower(strings.TrimSpace(s)), []string{""}
	}
	args := SplitTopLevel(s[colon+1:], '|')
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	return strings.ToLower(strings.TrimSpace(s[:colon])), args
}

func stripErrorMarks(s string) string {
	return strings.ReplaceAll(s, errorMark, "")
}

func hasError(s string) bool {
	return strings.Contains(s, errorMark) || errorClassRE.MatchString(s)
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func intArg(args []string, i int, def int) int {
	n, err := strconv.Atoi(arg(args, i))
	if err != nil {
		return def
	}
	return n
}

func (pf *ParserFunctions) expr(args []string) string {
	res, err := EvalExpr(arg(args, 0))
	if err != nil {
		return errorMark
	}
	return res
}

func (pf *ParserFunctions) ifFunc(args []string) string {
	if arg(args, 0) != "" {
		return arg(args, 1)
	}
	return arg(args, 2)
}

func (pf *ParserFunctions) ifeq(args []string) string {
	if arg(args, 0) == arg(args, 1) {
		return arg(args, 2)
	}
	return arg(args, 3)
}

func (pf *ParserFunctions) iferror(args []string) string {
	test := arg(args, 0)
	if hasError(test) {
		return arg(args, 1)
	}
	if len(args) > 2 {
		return args[2]
	}
	return test
}

// ifexpr takes the else branch when the condition does not parse.
func (pf *ParserFunctions) ifexpr(args []string) string {
	res, err := EvalExpr(arg(args, 0))
	if err != nil || res == "" || res == "0" {
		return arg(args, 2)
	}
	return arg(args, 1)
}

// ifexist has no page database to consult, so every page is missing.
func (pf *ParserFunctions) ifexist(args []string) string {
	return arg(args, 2)
}

func (pf *ParserFunctions) switchFunc(args []string) string {
	value := arg(args, 0)
	cases := args[1:]
	matched := false
	def := ""
	for i, c := range cases {
		eq := indexTopLevel(c, '=')
		if eq < 0 {
			if i == len(cases)-1 {
				return c
			}
			if switchEqual(value, c) {
				matched = true
			}
			continue
		}
		label := strings.TrimSpace(c[:eq])
		result := strings.TrimSpace(c[eq+1:])
		if matched || switchEqual(value, label) {
			return result
		}
		if label == "#default" {
			def = result
		}
	}
	return def
}

// switchEqual compares as numbers when both sides are numeric.
func switchEqual(a, b string) bool {
	if a == b {
		return true
	}
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	return errA == nil && errB == nil && fa == fb
}

func (pf *ParserFunctions) length(args []string) string {
	return strconv.Itoa(utf8.RuneCountInString(arg(args, 0)))
}

func searchArg(args []string, i int) string {
	if s := arg(args, i); s != "" {
		return s
	}
	return " "
}

func (pf *ParserFunctions) pos(args []string) string {
	s := []rune(arg(args, 0))
	needle := []rune(searchArg(args, 1))
	offset := intArg(args, 2, 0)
	if offset < 0 {
		offset = 0
	}
	for i := offset; i+len(needle) <= len(s); i++ {
		if runesEqual(s[i:i+len(needle)], needle) {
			return strconv.Itoa(i)
		}
	}
	return ""
}

// rpos reports "-1" rather than "" when the needle is absent.
func (pf *ParserFunctions) rpos(args []string) string {
	s := []rune(arg(args, 0))
	needle := []rune(searchArg(args, 1))
	for i := len(s) - len(needle); i >= 0; i-- {
		if runesEqual(s[i:i+len(needle)], needle) {
			return strconv.Itoa(i)
		}
	}
	return "-1"
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (pf *ParserFunctions) sub(args []string) string {
	s := []rune(arg(args, 0))
	start := intArg(args, 1, 0)
	if start < 0 {
		start += len(s)
		if start < 0 {
			start = 0
		}
	}
	if start > len(s) {
		return ""
	}
	end := len(s)
	if n := intArg(args, 2, 0); n > 0 {
		end = min(start+n, len(s))
	} else if n < 0 {
		end = max(len(s)+n, start)
	}
	return string(s[start:end])
}

func (pf *ParserFunctions) replace(args []string) string {
	return strings.ReplaceAll(arg(args, 0), searchArg(args, 1), arg(args, 2))
}

func (pf *ParserFunctions) titleparts(args []string) string {
	title := arg(args, 0)
	segs := strings.Split(title, "/")
	first := intArg(args, 2, 0)
	switch {
	case first > 0:
		if first > len(segs) {
			return ""
		}
		segs = segs[first-1:]
	case first < 0:
		segs = segs[max(len(segs)+first, 0):]
	}
	parts := intArg(args, 1, 0)
	switch {
	case parts > 0 && parts < len(segs):
		segs = segs[:parts]
	case parts < 0:
		segs = segs[:max(len(segs)+parts, 0)]
	}
	return strings.Join(segs, "/")
}

// count counts overlapping occurrences.
func (pf *ParserFunctions) count(args []string) string {
	s := arg(args, 0)
	needle := searchArg(args, 1)
	n := 0
	for i := 0; i+len(needle) <= len(s); i++ {
		if strings.HasPrefix(s[i:], needle) {
			n++
		}
	}
	return strconv.Itoa(n)
}

func (pf *ParserFunctions) explode(args []string) string {
	delim := searchArg(args, 1)
	limit := intArg(args, 3, -1)
	if limit == 0 {
		limit = -1
	}
	parts := strings.SplitN(arg(args, 0), delim, limit)
	i := intArg(args, 2, 0)
	if i < 0 {
		i += len(parts)
	}
	if i < 0 || i >= len(parts) {
		return ""
	}
	return parts[i]
}

func (pf *ParserFunctions) urlencode(args []string) string {
	return strings.ReplaceAll(url.QueryEscape(arg(args, 0)), "+", "%20")
}

func (pf *ParserFunctions) urldecode(args []string) string {
	s, err := url.QueryUnescape(arg(args, 0))
	if err != nil {
		return arg(args, 0)
	}
	return s
}

func (pf *ParserFunctions) padleft(args []string) string {
	s := arg(args, 0)
	return padding(s, intArg(args, 1, 0), searchArg(args, 2)) + s
}

func (pf *ParserFunctions) padright(args []string) string {
	s := arg(args, 0)
	return s + padding(s, intArg(args, 1, 0), searchArg(args, 2))
}

// padding returns the runes needed to bring s to width, cycling through
// pad. Nothing is ever truncated.
func padding(s string, width int, pad string) string {
	width = min(width, maxPadWidth)
	need := width - utf8.RuneCountInString(s)
	if need <= 0 || pad == "" {
		return ""
	}
	p := []rune(pad)
	out := make([]rune, need)
	for i := range out {
		out[i] = p[i%len(p)]
	}
	return string(out)
}

func (pf *ParserFunctions) timeFunc(args []string) string {
	t, ok := ParseDate(arg(args, 1), pf.now)
	if !ok {
		return errorMark
	}
	return FormatTime(arg(args, 0), t)
}

func (pf *ParserFunctions) dateformat(args []string) string {
	t, ok := ParseDate(arg(args, 0), pf.now)
	if !ok {
		return arg(args, 0)
	}
	switch strings.ToLower(arg(args, 1)) {
	case "dmy":
		return t.Format("2 January 2006")
	case "ymd":
		return t.Format("2006 January 2")
	case "iso 8601", "iso":
		return t.Format("2006-01-02")
	}
	return t.Format("January 2, 2006")
}

// tag rebuilds an extension tag so later stages treat it like a literal one.
func (pf *ParserFunctions) tag(args []string) string {
	name := strings.ToLower(arg(args, 0))
	if name == "" {
		return ""
	}
	var attrs strings.Builder
	for _, a := range args[min(2, len(args)):] {
		if eq := strings.IndexByte(a, '='); eq > 0 {
			attrs.WriteString(" " + strings.TrimSpace(a[:eq]) + `="` + strings.Trim(strings.TrimSpace(a[eq+1:]), `"`) + `"`)
		}
	}
	return "<" + name + attrs.String() + ">" + arg(args, 1) + "</" + name + ">"
}

func (pf *ParserFunctions) language(args []string) string {
	code := strings.ToLower(arg(args, 0))
	if name, ok := LanguageNames[code]; ok {
		return name
	}
	return code
}
