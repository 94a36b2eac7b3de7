package ports

import "context"

// InstructionRenderer builds the final instruction text for one transform
// kind and role from the effective stored template and a value map. Values
// are substituted with the same {{name}} grammar prompts themselves use.
type InstructionRenderer interface {
	Render(ctx context.Context, scope string, refID *int64, kind, role string, values map[string]string) (string, error)
}
