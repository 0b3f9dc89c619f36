package wikitext

import (
	"regexp"
	"strings"
)

var (
	linkRE        = regexp.MustCompile(`\[\[([^\|\]]+)`)
	externalRE    = regexp.MustCompile(`(?i)\[(?:https?:|ftps?:|//|mailto:|irc:|news:)[^\s\]\[]*(?:\s+([^\]\[]*))?\]`)
	parentheticRE = regexp.MustCompile(`\s*\([^()]*\)\s*$`)
)

// Links lists the pages an article links to, in first-seen order without
// duplicates. Section anchors are dropped and underscores read as spaces.
// Category, file and interlanguage links are not page links; a leading
// colon makes them one.
func Links(text string) []string {
	var out []string
	for _, target := range linkTargets(text) {
		visible := strings.HasPrefix(target, ":")
		target = strings.TrimPrefix(target, ":")
		if prefix, _, ok := strings.Cut(target, ":"); ok && !visible {
			p := strings.ToLower(strings.TrimSpace(prefix))
			if categoryNSSet[p] || fileNSSet[p] || LanguageNames[p] != "" {
				continue
			}
		}
		if i := strings.IndexByte(target, '#'); i >= 0 {
			target = target[:i]
		}
		out = append(out, normalizeTitle(target))
	}
	return dedupe(out)
}

// Files lists the files an article embeds, without the namespace prefix,
// in first-seen order without duplicates.
func Files(text string) []string {
	var out []string
	for _, target := range linkTargets(text) {
		prefix, name, ok := strings.Cut(target, ":")
		if ok && fileNSSet[strings.ToLower(strings.TrimSpace(prefix))] {
			out = append(out, normalizeTitle(name))
		}
	}
	return dedupe(out)
}

// linkTargets returns the raw target of every [[...]] link, nested ones
// included, outside comments and nowiki.
func linkTargets(text string) []string {
	text = nowikiRE.ReplaceAllString(commentRE.ReplaceAllString(text, ""), "")
	matches := linkRE.FindAllStringSubmatch(text, -1)
	targets := make([]string, 0, len(matches))
	for _, m := range matches {
		targets = append(targets, strings.TrimSpace(m[1]))
	}
	return targets
}

func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " ")
}

// dedupe drops empty and repeated entries, keeping first-seen order.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		if it != "" && !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}

// StripLinks replaces every [[...]] link with its display text.
func StripLinks(text string) string {
	return Scan(text, "[[", "]]", linkText)
}

// StripExternalLinks replaces [url label] with label, and bare bracketed
// URLs with nothing.
func StripExternalLinks(text string) string {
	return externalRE.ReplaceAllString(text, "$1")
}

// linkText is the visible text of one wiki link:
//
//	[[Target]]            Target
//	[[Target|label]]      label
//	[[Target (film)|]]    Target
//	[[#Section]]          Section
//	[[wikt:word]]         word
//	[[Category:X]]        (dropped)
//	[[File:x.jpg|thumb]]  (dropped)
//	[[fr:Paris]]          (dropped)
func linkText(content string) string {
	visible := strings.HasPrefix(strings.TrimSpace(content), ":")
	content = strings.TrimPrefix(strings.TrimSpace(content), ":")

	target, label, piped := content, "", false
	if i := indexTopLevel(content, '|'); i >= 0 {
		target, label, piped = content[:i], content[i+1:], true
	}
	target = strings.TrimSpace(target)

	if prefix, rest, ok := strings.Cut(target, ":"); ok {
		p := strings.ToLower(strings.TrimSpace(prefix))
		switch {
		case visible:
		case categoryNSSet[p], fileNSSet[p]:
			return ""
		case LanguageNames[p] != "":
			return ""
		case interwikiSet[p]:
			target = strings.TrimSpace(rest)
		}
	}

	if piped {
		if label = strings.TrimSpace(label); label != "" {
			return label
		}
		return pipeTrick(target)
	}

	if strings.HasPrefix(target, "#") {
		return strings.TrimSpace(target[1:])
	}
	return target
}

// pipeTrick derives the label MediaWiki shows for [[Target|]]: no
// namespace, no trailing parenthetical, nothing after a comma.
func pipeTrick(target string) string {
	if _, rest, ok := strings.Cut(target, ":"); ok {
		target = rest
	}
	target = parentheticRE.ReplaceAllString(target, "")
	if i := strings.IndexByte(target, ','); i >= 0 {
		target = target[:i]
	}
	return strings.TrimSpace(target)
}
