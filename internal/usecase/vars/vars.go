// Package vars implements placeholder extraction and substitution for prompt
// text. Placeholders have the form {{identifier}}.
package vars

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var placeholderRE = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_-]*)\}\}`)

// ExtractNames returns the distinct placeholder identifiers in template,
// sorted for stable output.
func ExtractNames(template string) []string {
	m := placeholderRE.FindAllStringSubmatch(template, -1)
	if len(m) == 0 {
		return nil
	}
	uniq := make(map[string]struct{}, len(m))
	for _, g := range m {
		uniq[g[1]] = struct{}{}
	}
	out := make([]string, 0, len(uniq))
	for v := range uniq {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Render substitutes values into every placeholder occurrence. Identifiers
// absent from values render as a literal [Missing: name] marker. Substituted
// values are not re-scanned, so values containing placeholder syntax cannot
// cause loops. Render never fails.
func Render(template string, values map[string]string) string {
	return placeholderRE.ReplaceAllStringFunc(template, func(ph string) string {
		name := ph[2 : len(ph)-2]
		if v, ok := values[name]; ok {
			return v
		}
		return fmt.Sprintf("[Missing: %s]", name)
	})
}

// Occurrences returns every placeholder occurrence left to right with its
// byte offsets, including duplicates. Used by the guard, which must replace
// each occurrence individually.
func Occurrences(text string) []Occurrence {
	idx := placeholderRE.FindAllStringIndex(text, -1)
	if len(idx) == 0 {
		return nil
	}
	out := make([]Occurrence, 0, len(idx))
	for _, p := range idx {
		out = append(out, Occurrence{Text: text[p[0]:p[1]], Start: p[0], End: p[1]})
	}
	return out
}

// Occurrence is one literal placeholder occurrence in a text.
type Occurrence struct {
	Text  string
	Start int
	End   int
}

// HasPlaceholders reports whether text contains at least one well-formed
// placeholder.
func HasPlaceholders(text string) bool {
	return strings.Contains(text, "{{") && placeholderRE.MatchString(text)
}
