package compare

import "promptforge/internal/domain"

// FieldDiff pairs one revision field with its edit script.
type FieldDiff struct {
	Field  string `json:"field"`
	Result Result `json:"result"`
}

// CompareRevisions diffs the paired text fields of two revisions. Each field
// is diffed independently so a change in the body does not bleed highlights
// into the instruction pane.
func (e *Engine) CompareRevisions(a, b *domain.Revision) []FieldDiff {
	pairs := []struct {
		field   string
		oldText string
		newText string
	}{
		{"description", a.Description, b.Description},
		{"instruction", a.Instruction, b.Instruction},
		{"body", a.Body, b.Body},
	}
	out := make([]FieldDiff, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, FieldDiff{Field: p.field, Result: e.Diff(p.oldText, p.newText)})
	}
	return out
}
