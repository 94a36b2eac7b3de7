package prompt

import (
	"context"
	"fmt"

	"promptforge/internal/ports"
	"promptforge/internal/usecase/vars"
)

// Renderer builds instruction text from the effective stored template for a
// transform kind, falling back to builtins. Bodies are rendered with the
// app's own {{name}} substitution rather than text/template: instruction
// templates carry the same placeholder grammar as prompts, and Go template
// syntax would collide with it.
type Renderer struct {
	Templates ports.TemplateRepository
}

func New(templates ports.TemplateRepository) *Renderer { return &Renderer{Templates: templates} }

// Render resolves the effective template for scope/kind/role and substitutes
// values. Builtins cover the no-stored-template case; a failing store read
// is an error, not a silent fall back to builtins.
func (r *Renderer) Render(ctx context.Context, scope string, refID *int64, kind, role string, values map[string]string) (string, error) {
	t, err := r.Templates.GetEffective(ctx, scope, refID, kind, role)
	if err != nil {
		return "", fmt.Errorf("resolve %s/%s template: %w", kind, role, err)
	}
	body := builtinTemplate(kind, role)
	if t != nil && t.Body != "" {
		body = t.Body
	}
	return vars.Render(body, values), nil
}
