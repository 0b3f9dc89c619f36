package wikitext

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SiteName is what {{SITENAME}} expands to.
const SiteName = "Wikipedia"

// MagicWords expands page-context and date variables such as {{PAGENAME}}
// and the one-argument string functions such as {{lc:...}}.
// Words it does not know are left verbatim.
type MagicWords struct {
	title     string
	namespace string
	ref       time.Time
}

type magicVariable func(mw *MagicWords) string

// magicVariables are matched case-sensitively.
var magicVariables = map[string]magicVariable{
	"PAGENAME":            func(mw *MagicWords) string { return mw.pageName() },
	"PAGENAMEE":           func(mw *MagicWords) string { return wikiEncode(mw.pageName()) },
	"FULLPAGENAME":        func(mw *MagicWords) string { return mw.fullPageName() },
	"FULLPAGENAMEE":       func(mw *MagicWords) string { return wikiEncode(mw.fullPageName()) },
	"BASEPAGENAME":        func(mw *MagicWords) string { return mw.basePageName() },
	"BASEPAGENAMEE":       func(mw *MagicWords) string { return wikiEncode(mw.basePageName()) },
	"ROOTPAGENAME":        func(mw *MagicWords) string { return mw.rootPageName() },
	"ROOTPAGENAMEE":       func(mw *MagicWords) string { return wikiEncode(mw.rootPageName()) },
	"SUBPAGENAME":         func(mw *MagicWords) string { return mw.subPageName() },
	"SUBPAGENAMEE":        func(mw *MagicWords) string { return wikiEncode(mw.subPageName()) },
	"NAMESPACE":           func(mw *MagicWords) string { return mw.namespace },
	"NAMESPACEE":          func(mw *MagicWords) string { return wikiEncode(mw.namespace) },
	"TALKPAGENAME":        func(mw *MagicWords) string { return mw.talkPageName() },
	"TALKPAGENAMEE":       func(mw *MagicWords) string { return wikiEncode(mw.talkPageName()) },
	"SITENAME":            func(mw *MagicWords) string { return SiteName },
	"CURRENTYEAR":         func(mw *MagicWords) string { return strconv.Itoa(mw.ref.Year()) },
	"CURRENTMONTH":        func(mw *MagicWords) string { return pad2(int(mw.ref.Month())) },
	"CURRENTMONTH2":       func(mw *MagicWords) string { return pad2(int(mw.ref.Month())) },
	"CURRENTMONTH1":       func(mw *MagicWords) string { return strconv.Itoa(int(mw.ref.Month())) },
	"CURRENTMONTHNAME":    func(mw *MagicWords) string { return mw.ref.Month().String() },
	"CURRENTMONTHNAMEGEN": func(mw *MagicWords) string { return mw.ref.Month().String() },
	"CURRENTMONTHABBREV":  func(mw *MagicWords) string { return mw.ref.Month().String()[:3] },
	"CURRENTDAY":          func(mw *MagicWords) string { return strconv.Itoa(mw.ref.Day()) },
	"CURRENTDAY2":         func(mw *MagicWords) string { return pad2(mw.ref.Day()) },
	"CURRENTDOW":          func(mw *MagicWords) string { return strconv.Itoa(int(mw.ref.Weekday())) },
	"CURRENTDAYNAME":      func(mw *MagicWords) string { return mw.ref.Weekday().String() },
	"CURRENTTIME":         func(mw *MagicWords) string { return mw.ref.Format("15:04") },
	"CURRENTHOUR":         func(mw *MagicWords) string { return mw.ref.Format("15") },
	"CURRENTWEEK":         func(mw *MagicWords) string { return strconv.Itoa(isoWeek(mw.ref)) },
	"CURRENTTIMESTAMP":    func(mw *MagicWords) string { return mw.ref.Format("20060102150405") },
	"!":                   func(mw *MagicWords) string { return "&#124;" },
	"=":                   func(mw *MagicWords) string { return "&#61;" },
}

// pageVariables need a page title; without one they stay verbatim.
var pageVariables = map[string]bool{
	"PAGENAME":      true,
	"PAGENAMEE":     true,
	"FULLPAGENAME":  true,
	"FULLPAGENAMEE": true,
	"BASEPAGENAME":  true,
	"BASEPAGENAMEE": true,
	"ROOTPAGENAME":  true,
	"ROOTPAGENAMEE": true,
	"SUBPAGENAME":   true,
	"SUBPAGENAMEE":  true,
	"NAMESPACE":     true,
	"NAMESPACEE":    true,
	"TALKPAGENAME":  true,
	"TALKPAGENAMEE": true,
}

type magicFunction func(mw *MagicWords, args []string) string

// magicFunctions are matched case-insensitively on the part before ':'.
var magicFunctions = map[string]magicFunction{
	"lc":                  magicLC,
	"uc":                  magicUC,
	"lcfirst":             magicLCFirst,
	"ucfirst":             magicUCFirst,
	"urlencode":           magicURLEncode,
	"anchorencode":        magicAnchorEncode,
	"padleft":             magicPadLeft,
	"padright":            magicPadRight,
	"formatnum":           magicFormatNum,
	"plural":              magicPlural,
	"ns":                  magicNamespace,
	"defaultsort":         magicEmpty,
	"defaultsortkey":      magicEmpty,
	"defaultcategorysort": magicEmpty,
	"displaytitle":        magicEmpty,
}

func init() {
	for name, fn := range magicVariables {
		if rest, ok := strings.CutPrefix(name, "CURRENT"); ok {
			magicVariables["LOCAL"+rest] = fn
		}
	}
}

var namespaceNames = map[string]string{
	"-2":  "Media",
	"-1":  "Special",
	"0":   "",
	"1":   "Talk",
	"2":   "User",
	"3":   "User talk",
	"4":   "Wikipedia",
	"5":   "Wikipedia talk",
	"6":   "File",
	"7":   "File talk",
	"8":   "MediaWiki",
	"10":  "Template",
	"11":  "Template talk",
	"12":  "Help",
	"14":  "Category",
	"15":  "Category talk",
	"100": "Portal",
	"828": "Module",
}

// NamespaceName returns the canonical name of namespace key. The main
// namespace and unknown keys have no name.
func NamespaceName(key int) string {
	return namespaceNames[strconv.Itoa(key)]
}

// NewMagicWords returns an expander for the page title in namespace, with
// date words taken from ref. An empty title leaves the page-context
// variables unexpanded.
func NewMagicWords(title, namespace string, ref time.Time) *MagicWords {
	return &MagicWords{title: title, namespace: namespace, ref: ref}
}

// Expand rewrites every magic word in text, innermost first.
func (mw *MagicWords) Expand(text string) string {
	out, _, _ := ScanLimit(text, "{{", "}}", func(content string) string {
		if res, ok := mw.Lookup(content); ok {
			return res
		}
		return "{{" + content + "}}"
	}, MaxNestingIterations)
	return out
}

// Lookup expands the content of one {{...}} span. ok is false when the
// content is not a magic word this expander knows.
func (mw *MagicWords) Lookup(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	if fn, ok := magicVariables[trimmed]; ok {
		if mw.title == "" && pageVariables[trimmed] {
			return "", false
		}
		return fn(mw), true
	}
	colon := strings.IndexByte(trimmed, ':')
	if colon < 0 {
		return "", false
	}
	fn, ok := magicFunctions[strings.ToLower(strings.TrimSpace(trimmed[:colon]))]
	if !ok {
		return "", false
	}
	args := SplitTopLevel(trimmed[colon+1:], '|')
	for i := range args {
		args[i] = strings.TrimSpace(args[i])
	}
	return fn(mw, args), true
}

func (mw *MagicWords) pageName() string {
	if mw.namespace != "" {
		if rest, ok := strings.CutPrefix(mw.title, mw.namespace+":"); ok {
			return rest
		}
	}
	return mw.title
}

func (mw *MagicWords) fullPageName() string {
	if mw.namespace == "" {
		return mw.pageName()
	}
	return mw.namespace + ":" + mw.pageName()
}

func (mw *MagicWords) rootPageName() string {
	root, _, _ := strings.Cut(mw.pageName(), "/")
	return root
}

func (mw *MagicWords) basePageName() string {
	name := mw.pageName()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[:i]
	}
	return name
}

func (mw *MagicWords) subPageName() string {
	name := mw.pageName()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func (mw *MagicWords) talkPageName() string {
	if mw.namespace == "" {
		return "Talk:" + mw.pageName()
	}
	return mw.namespace + " talk:" + mw.pageName()
}

// wikiEncode is MediaWiki's page-name URL encoding: spaces become
// underscores and slashes and colons stay readable.
func wikiEncode(s string) string {
	s = url.PathEscape(strings.ReplaceAll(s, " ", "_"))
	return strings.ReplaceAll(s, "%2F", "/")
}

func mapFirst(s string, c cases.Caser) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return c.String(string(r)) + s[size:]
}

func magicLC(mw *MagicWords, args []string) string {
	return cases.Lower(language.Und).String(arg(args, 0))
}

func magicUC(mw *MagicWords, args []string) string {
	return cases.Upper(language.Und).String(arg(args, 0))
}

func magicLCFirst(mw *MagicWords, args []string) string {
	return mapFirst(arg(args, 0), cases.Lower(language.Und))
}

func magicUCFirst(mw *MagicWords, args []string) string {
	return mapFirst(arg(args, 0), cases.Upper(language.Und))
}

func magicAnchorEncode(mw *MagicWords, args []string) string {
	return strings.ReplaceAll(arg(args, 0), " ", "_")
}

func magicFormatNum(mw *MagicWords, args []string) string {
	return FormatNum(arg(args, 0), strings.EqualFold(arg(args, 1), "R"))
}

func magicNamespace(mw *MagicWords, args []string) string {
	return namespaceName(arg(args, 0))
}

func magicEmpty(mw *MagicWords, args []string) string {
	return ""
}

func magicURLEncode(mw *MagicWords, args []string) string {
	s := arg(args, 0)
	switch strings.ToUpper(arg(args, 1)) {
	case "PATH":
		return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	case "WIKI":
		return wikiEncode(s)
	}
	return url.QueryEscape(s)
}

func magicPadLeft(mw *MagicWords, args []string) string {
	return magicPad(args, true)
}

func magicPadRight(mw *MagicWords, args []string) string {
	return magicPad(args, false)
}

// magicPad pads with "0" by default, unlike #padleft.
func magicPad(args []string, left bool) string {
	s := arg(args, 0)
	pad := arg(args, 2)
	if pad == "" {
		pad = "0"
	}
	p := padding(s, intArg(args, 1, 0), pad)
	if left {
		return p + s
	}
	return s + p
}

func magicPlural(mw *MagicWords, args []string) string {
	n, err := strconv.ParseFloat(strings.ReplaceAll(arg(args, 0), ",", ""), 64)
	if err == nil && (n == 1 || n == -1) {
		return arg(args, 1)
	}
	if len(args) > 2 {
		return args[2]
	}
	return arg(args, 1)
}

func isoWeek(t time.Time) int {
	_, w := t.ISOWeek()
	return w
}

func namespaceName(s string) string {
	if name, ok := namespaceNames[s]; ok {
		return name
	}
	return s
}

var formatNumRE = regexp.MustCompile(`^([+-]?)(\d+)(\.\d+)?$`)

// FormatNum groups the integer part of s by thousands. With raw set it
// removes separators instead. Anything that is not a plain decimal number
// is returned unchanged.
func FormatNum(s string, raw bool) string {
	if raw {
		return strings.ReplaceAll(s, ",", "")
	}
	m := formatNumRE.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	n, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return s
	}
	return m[1] + humanize.Comma(n) + m[3]
}
