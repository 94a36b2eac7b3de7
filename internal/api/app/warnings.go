package app

import (
	"fmt"
	"strings"

	"promptforge/internal/usecase/guard"
	"promptforge/internal/usecase/vars"
)

// restoreWarnings turns a guard report into human-readable messages.
func restoreWarnings(rep guard.Report) []string {
	var out []string
	if rep.SeparatorLost {
		out = append(out, "the transform altered the segment separator; fields were restored best-effort over the combined output")
	}
	for _, t := range rep.Missing {
		out = append(out, fmt.Sprintf("placeholder marker %s was dropped by the transform", t))
	}
	for _, t := range rep.Duplicated {
		out = append(out, fmt.Sprintf("placeholder marker %s was duplicated by the transform", t))
	}
	return out
}

// missingPlaceholders lists placeholders of original that improved no
// longer contains.
func missingPlaceholders(original, improved string) []string {
	var out []string
	for _, name := range vars.ExtractNames(original) {
		ph := "{{" + name + "}}"
		if !strings.Contains(improved, ph) {
			out = append(out, ph)
		}
	}
	return out
}
