package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/domain"
)

type stubTemplates struct {
	stored map[string]*domain.InstructionTemplate // kind/role -> template
	err    error
}

func (s *stubTemplates) GetEffective(ctx context.Context, scope string, refID *int64, kind, role string) (*domain.InstructionTemplate, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.stored == nil {
		return nil, nil
	}
	return s.stored[kind+"/"+role], nil
}

func (s *stubTemplates) Upsert(ctx context.Context, t *domain.InstructionTemplate) error { return nil }

func TestRenderFallsBackToBuiltin(t *testing.T) {
	r := New(&stubTemplates{})
	id := int64(1)

	out, err := r.Render(context.Background(), "endpoint", &id, "translate", "system", map[string]string{"target_lang": "German"})
	require.NoError(t, err)
	assert.Contains(t, out, "German")
	assert.Contains(t, out, "__PF<number>__")
}

func TestRenderPrefersStoredTemplate(t *testing.T) {
	r := New(&stubTemplates{stored: map[string]*domain.InstructionTemplate{
		"translate/user": {Body: "Translate into {{target_lang}}: {{text}}"},
	}})
	id := int64(1)

	out, err := r.Render(context.Background(), "endpoint", &id, "translate", "user", map[string]string{
		"target_lang": "French",
		"text":        "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "Translate into French: hello", out)
}

func TestRenderPropagatesStoreError(t *testing.T) {
	r := New(&stubTemplates{err: errors.New("db locked")})
	id := int64(1)

	out, err := r.Render(context.Background(), "endpoint", &id, "translate", "system", nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "db locked")
	assert.Empty(t, out, "no builtin fall back on a failed store read")
}

func TestRenderStageTemplatesCarryUpstreamOutputs(t *testing.T) {
	r := New(&stubTemplates{})

	out, err := r.Render(context.Background(), "global", nil, "stage_adapt", "user", map[string]string{
		"prompt":    "Summarize {{doc}}.",
		"selection": "add constraints",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Summarize {{doc}}.")
	assert.Contains(t, out, "add constraints")
}

func TestBuiltinCoversAllStageKinds(t *testing.T) {
	for _, stage := range domain.StageOrder {
		for _, role := range []string{"system", "user"} {
			assert.NotEmpty(t, builtinTemplate("stage_"+stage, role), "stage_%s/%s", stage, role)
		}
	}
	assert.Empty(t, builtinTemplate("unknown", "system"))
}
