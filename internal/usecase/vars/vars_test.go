package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractNames(t *testing.T) {
	names := ExtractNames("Hello {{name}}, you are {{age}}. Again: {{name}}.")
	assert.Equal(t, []string{"age", "name"}, names)
}

func TestExtractNamesNone(t *testing.T) {
	assert.Nil(t, ExtractNames("no placeholders here"))
	assert.Nil(t, ExtractNames("malformed {{ name }} and {{1bad}}"))
}

func TestRender(t *testing.T) {
	out := Render("Hello {{name}}, you are {{age}}.", map[string]string{
		"name": "Ada",
		"age":  "36",
	})
	assert.Equal(t, "Hello Ada, you are 36.", out)
}

func TestRenderMissingValue(t *testing.T) {
	out := Render("Hello {{name}}, you are {{age}}.", map[string]string{"name": "Ada"})
	assert.Equal(t, "Hello Ada, you are [Missing: age].", out)
}

func TestRenderDoesNotRescanValues(t *testing.T) {
	out := Render("{{a}}", map[string]string{"a": "{{b}}", "b": "nope"})
	assert.Equal(t, "{{b}}", out)
}

func TestRenderLeavesMalformedAlone(t *testing.T) {
	in := "{{ spaced }} {{-leading}} {{}}"
	assert.Equal(t, in, Render(in, map[string]string{"spaced": "x"}))
}

func TestOccurrences(t *testing.T) {
	occ := Occurrences("{{a}} mid {{b}} and {{a}}")
	assert.Len(t, occ, 3)
	assert.Equal(t, "{{a}}", occ[0].Text)
	assert.Equal(t, 0, occ[0].Start)
	assert.Equal(t, 5, occ[0].End)
	assert.Equal(t, "{{b}}", occ[1].Text)
	assert.Equal(t, "{{a}}", occ[2].Text)
}

func TestHasPlaceholders(t *testing.T) {
	assert.True(t, HasPlaceholders("x {{y}} z"))
	assert.False(t, HasPlaceholders("x {{ y }} z"))
	assert.False(t, HasPlaceholders("plain"))
}
