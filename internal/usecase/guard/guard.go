// Package guard protects placeholders around opaque external transforms.
// Each placeholder occurrence is swapped for a synthetic ASCII token the
// transform is unlikely to touch, then swapped back afterwards.
package guard

import (
	"fmt"
	"strings"

	"promptforge/internal/usecase/vars"
)

// Map records token -> original placeholder text for one protect/restore
// round trip. It is only valid for that round trip.
type Map map[string]string

// Report describes how faithfully a restore could be applied.
type Report struct {
	// Missing lists tokens that did not appear in the transformed text.
	Missing []string
	// Duplicated lists tokens that appeared more than once.
	Duplicated []string
	// SeparatorLost is set when a combined restore could not split the
	// transformed text back into its segments.
	SeparatorLost bool
}

// Clean reports whether every token was found exactly once and segment
// boundaries survived.
func (r Report) Clean() bool {
	return len(r.Missing) == 0 && len(r.Duplicated) == 0 && !r.SeparatorLost
}

// Protect replaces every placeholder occurrence in text with a unique token
// and returns the guarded text plus the token map. Occurrences are rewritten
// from the highest offset down so earlier offsets stay valid while later
// ones change. Token candidates that already occur in the text get a nonce
// appended until they are collision free.
func Protect(text string) (string, Map) {
	guarded, m, _ := protect(text, text, 0)
	return guarded, m
}

// protect guards one text, numbering tokens from seq upward and checking
// candidates against corpus for collisions. Callers guarding several
// segments for one call pass the joined segments as corpus and thread seq
// through, so every token is unique across the whole call.
func protect(text, corpus string, seq int) (string, Map, int) {
	occ := vars.Occurrences(text)
	if len(occ) == 0 {
		return text, Map{}, seq
	}
	m := make(Map, len(occ))
	tokens := make([]string, len(occ))
	for i := range occ {
		tokens[i] = newToken(corpus, seq)
		seq++
		m[tokens[i]] = occ[i].Text
	}
	guarded := text
	for i := len(occ) - 1; i >= 0; i-- {
		o := occ[i]
		guarded = guarded[:o.Start] + tokens[i] + guarded[o.End:]
	}
	return guarded, m, seq
}

// Restore replaces every token occurrence in text with its original
// placeholder. Tokens are mutually distinct and non-overlapping, so the
// order of replacement across tokens does not matter. The report flags
// tokens the transform dropped or duplicated; restoration is still applied
// for whatever tokens remain.
func Restore(text string, m Map) (string, Report) {
	var rep Report
	out := text
	for token, original := range m {
		switch strings.Count(out, token) {
		case 0:
			rep.Missing = append(rep.Missing, token)
			continue
		case 1:
		default:
			rep.Duplicated = append(rep.Duplicated, token)
		}
		out = strings.ReplaceAll(out, token, original)
	}
	return out, rep
}

// ProtectCombined guards each segment and joins them with sep so several
// fields ride in a single external call. One token sequence runs across all
// segments and candidates are checked against every segment, so no token
// appears in two maps and the separator-lost fallback in RestoreCombined
// cannot rewrite one segment's token with another segment's placeholder.
func ProtectCombined(segments []string, sep string) (string, []Map) {
	corpus := strings.Join(segments, sep)
	guarded := make([]string, len(segments))
	maps := make([]Map, len(segments))
	seq := 0
	for i, s := range segments {
		guarded[i], maps[i], seq = protect(s, corpus, seq)
	}
	return strings.Join(guarded, sep), maps
}

// RestoreCombined splits the transformed combined text on sep and restores
// each part with its own map. When the transform altered the separator and
// the split no longer yields one part per segment, every map is applied
// against the whole text instead; callers get the full text in every slot
// plus a report marking the mismatch. That path is best effort only.
func RestoreCombined(text string, maps []Map, sep string) ([]string, []Report) {
	parts := strings.Split(text, sep)
	out := make([]string, len(maps))
	reports := make([]Report, len(maps))
	if len(parts) == len(maps) {
		for i := range maps {
			out[i], reports[i] = Restore(parts[i], maps[i])
		}
		return out, reports
	}
	// Separator mangled by the transform: restore everything over the full
	// text so no placeholder is lost, even though segment boundaries are.
	restored := text
	for i := range maps {
		var rep Report
		restored, rep = Restore(restored, maps[i])
		rep.SeparatorLost = true
		reports[i] = rep
	}
	for i := range out {
		out[i] = restored
	}
	return out, reports
}

// newToken builds the token for sequence number i, appending a nonce until
// the candidate does not already occur in corpus. The sentinel is plain
// ASCII with no spaces so translation-style transforms pass it through.
func newToken(corpus string, i int) string {
	token := fmt.Sprintf("__PF%d__", i)
	for nonce := 0; strings.Contains(corpus, token); nonce++ {
		token = fmt.Sprintf("__PF%dx%d__", i, nonce)
	}
	return token
}
