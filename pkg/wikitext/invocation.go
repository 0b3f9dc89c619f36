package wikitext

import (
	"strconv"
	"strings"
)

// Invocation is a template call recovered from the inside of a {{...}} span.
type Invocation struct {
	Name       string
	Positional []string
	Named      map[string]string
}

// ParseInvocation splits the content of a {{...}} span into its name,
// positional arguments and named arguments. Values are trimmed.
// A numbered key such as "2=x" fills the matching positional slot.
func ParseInvocation(content string) Invocation {
	parts := SplitTopLevel(content, '|')
	inv := Invocation{
		Name:  strings.TrimSpace(parts[0]),
		Named: make(map[string]string),
	}
	for _, part := range parts[1:] {
		if eq := indexTopLevel(part, '='); eq >= 0 {
			key := strings.TrimSpace(part[:eq])
			value := strings.TrimSpace(part[eq+1:])
			if n, err := strconv.Atoi(key); err == nil && n > 0 {
				inv.setPositional(n-1, value)
				continue
			}
			inv.Named[strings.ToLower(key)] = value
			continue
		}
		inv.Positional = append(inv.Positional, strings.TrimSpace(part))
	}
	return inv
}

func (inv *Invocation) setPositional(i int, value string) {
	if i > 1000 {
		return
	}
	for len(inv.Positional) <= i {
		inv.Positional = append(inv.Positional, "")
	}
	inv.Positional[i] = value
}

// Arg returns the i-th (0-based) positional argument or "".
func (inv Invocation) Arg(i int) string {
	if i < 0 || i >= len(inv.Positional) {
		return ""
	}
	return inv.Positional[i]
}

// Param returns the first non-empty named argument among keys.
func (inv Invocation) Param(keys ...string) string {
	for _, k := range keys {
		if v := inv.Named[k]; v != "" {
			return v
		}
	}
	return ""
}

// Flag reports whether a named argument is set to a yes-like value.
func (inv Invocation) Flag(key string) bool {
	switch strings.ToLower(inv.Named[key]) {
	case "y", "yes", "on", "true", "1":
		return true
	}
	return false
}

// NormalizeName folds a template name for registry lookup: case,
// underscores, repeated spaces and a leading "Template:" are ignored.
func NormalizeName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.Join(strings.Fields(name), " ")
	name = strings.ToLower(name)
	name = strings.TrimPrefix(name, "template:")
	return strings.TrimSpace(name)
}
