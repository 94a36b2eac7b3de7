package guard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectRestoreRoundTrip(t *testing.T) {
	in := "Translate {{text}} into {{target_lang}}, keep {{text}} intact."
	guarded, m := Protect(in)

	assert.NotContains(t, guarded, "{{")
	assert.Len(t, m, 3)

	out, rep := Restore(guarded, m)
	assert.Equal(t, in, out)
	assert.True(t, rep.Clean())
}

func TestProtectNoPlaceholders(t *testing.T) {
	guarded, m := Protect("nothing to guard")
	assert.Equal(t, "nothing to guard", guarded)
	assert.Empty(t, m)
}

func TestProtectTokenCollision(t *testing.T) {
	// Text already contains the first candidate token, so occurrence 0
	// must pick a nonced variant.
	in := "__PF0__ and {{x}}"
	guarded, m := Protect(in)
	require.Len(t, m, 1)

	out, rep := Restore(guarded, m)
	assert.Equal(t, in, out)
	assert.True(t, rep.Clean())
}

func TestRestoreReportsDroppedToken(t *testing.T) {
	guarded, m := Protect("{{a}} then {{b}}")

	var dropped string
	for token := range m {
		if m[token] == "{{b}}" {
			dropped = token
		}
	}
	mangled := strings.ReplaceAll(guarded, dropped, "")

	out, rep := Restore(mangled, m)
	assert.False(t, rep.Clean())
	assert.Equal(t, []string{dropped}, rep.Missing)
	assert.Contains(t, out, "{{a}}")
	assert.NotContains(t, out, "{{b}}")
}

func TestRestoreReportsDuplicatedToken(t *testing.T) {
	guarded, m := Protect("{{a}}")
	require.Len(t, m, 1)
	var token string
	for tok := range m {
		token = tok
	}
	mangled := guarded + " " + token

	out, rep := Restore(mangled, m)
	assert.False(t, rep.Clean())
	assert.Equal(t, []string{token}, rep.Duplicated)
	assert.Equal(t, 2, strings.Count(out, "{{a}}"))
}

func TestCombinedRoundTrip(t *testing.T) {
	segments := []string{"desc with {{a}}", "instruction", "body {{b}} {{a}}"}
	combined, maps := ProtectCombined(segments, "\n---\n")

	require.Len(t, maps, 3)
	assert.Equal(t, 3, len(strings.Split(combined, "\n---\n")))

	out, reports := RestoreCombined(combined, maps, "\n---\n")
	require.Len(t, out, 3)
	for i, seg := range segments {
		assert.Equal(t, seg, out[i])
		assert.True(t, reports[i].Clean())
	}
}

func TestCombinedTokensUniqueAcrossSegments(t *testing.T) {
	segments := []string{"one {{a}}", "two {{b}}"}
	combined, maps := ProtectCombined(segments, "\n---\n")

	require.Len(t, maps, 2)
	seen := map[string]bool{}
	for _, m := range maps {
		for token := range m {
			assert.False(t, seen[token], "token %q issued twice", token)
			seen[token] = true
			assert.Equal(t, 1, strings.Count(combined, token))
		}
	}
}

func TestCombinedCollisionAgainstOtherSegment(t *testing.T) {
	// The second segment already contains the first segment's would-be
	// token, so the first segment must pick a nonced variant.
	segments := []string{"first {{a}}", "literal __PF0__ and {{b}}"}
	combined, maps := ProtectCombined(segments, "\n---\n")

	_, held := maps[0]["__PF0__"]
	assert.False(t, held)

	out, reports := RestoreCombined(combined, maps, "\n---\n")
	require.Len(t, out, 2)
	assert.Equal(t, segments[0], out[0])
	assert.Equal(t, segments[1], out[1])
	for i := range reports {
		assert.True(t, reports[i].Clean())
	}
}

func TestCombinedSeparatorLost(t *testing.T) {
	segments := []string{"one {{a}}", "two {{b}}"}
	combined, maps := ProtectCombined(segments, "\n---\n")

	// The transform rewrote the separator; the split no longer matches.
	mangled := strings.ReplaceAll(combined, "\n---\n", " --- ")

	out, reports := RestoreCombined(mangled, maps, "\n---\n")
	require.Len(t, out, 2)
	for i := range reports {
		assert.True(t, reports[i].SeparatorLost)
		assert.False(t, reports[i].Clean())
	}
	// No placeholder is lost: both land in the whole-text restore and no
	// token leaks through.
	assert.Contains(t, out[0], "{{a}}")
	assert.Contains(t, out[0], "{{b}}")
	assert.NotContains(t, out[0], "__PF")
	assert.Equal(t, out[0], out[1])
}
