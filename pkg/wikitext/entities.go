package wikitext

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// maxEntityPasses bounds repeated decoding of double-escaped text such as
// "&amp;amp;".
const maxEntityPasses = 8

var numericRefRE = regexp.MustCompile(`&#(?:[xX]([0-9a-fA-F]+)|([0-9]+));`)

// DecodeCharRef decodes one numeric character reference ("&#x1F600;" or
// "&#128512;"). Code points outside U+0001..U+10FFFF and surrogates
// decode to "".
func DecodeCharRef(ref string) string {
	m := numericRefRE.FindStringSubmatch(ref)
	if m == nil {
		return ref
	}
	var cp uint64
	var err error
	if m[1] != "" {
		cp, err = strconv.ParseUint(m[1], 16, 32)
	} else {
		cp, err = strconv.ParseUint(m[2], 10, 32)
	}
	if err != nil || cp == 0 || cp > 0x10FFFF || (cp >= 0xD800 && cp <= 0xDFFF) {
		return ""
	}
	return string(rune(cp))
}

// DecodeEntities decodes numeric references and named HTML entities,
// repeating until the text stops changing.
func DecodeEntities(s string) string {
	for i := 0; i < maxEntityPasses && strings.Contains(s, "&"); i++ {
		next := html.UnescapeString(numericRefRE.ReplaceAllStringFunc(s, DecodeCharRef))
		if next == s {
			break
		}
		s = next
	}
	return s
}
