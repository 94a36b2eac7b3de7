package translator

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/adapters/cache/memory"
	"promptforge/internal/domain"
	"promptforge/internal/ports"
	"promptforge/internal/usecase/vars"
)

type fakeEndpoints struct {
	ep *domain.Endpoint
}

func (f *fakeEndpoints) Create(ctx context.Context, e *domain.Endpoint) error { return nil }
func (f *fakeEndpoints) Update(ctx context.Context, e *domain.Endpoint) error { return nil }
func (f *fakeEndpoints) Get(ctx context.Context, id int64) (*domain.Endpoint, error) {
	if f.ep != nil && f.ep.ID == id {
		return f.ep, nil
	}
	return nil, nil
}
func (f *fakeEndpoints) List(ctx context.Context) ([]*domain.Endpoint, error) { return nil, nil }
func (f *fakeEndpoints) Delete(ctx context.Context, id int64) error           { return nil }
func (f *fakeEndpoints) SaveModelCache(ctx context.Context, endpointID int64, names []string) error {
	return nil
}
func (f *fakeEndpoints) ListModelCache(ctx context.Context, endpointID int64) ([]*domain.EndpointModel, error) {
	return nil, nil
}

// passthroughRenderer hands the guarded text straight through, so the fake
// provider sees exactly what the guard produced.
type passthroughRenderer struct{}

func (passthroughRenderer) Render(ctx context.Context, scope string, refID *int64, kind, role string, values map[string]string) (string, error) {
	if role == "system" {
		return "translate to " + values["target_lang"], nil
	}
	return values["text"], nil
}

// fakeProvider applies transform to the user prompt and counts calls.
type fakeProvider struct {
	calls     atomic.Int64
	transform func(string) string
	err       error
}

func (f *fakeProvider) Complete(ctx context.Context, p ports.CompleteParams) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	if f.transform != nil {
		return f.transform(p.UserPrompt), nil
	}
	return p.UserPrompt, nil
}
func (f *fakeProvider) ListModels(ctx context.Context) ([]ports.ModelInfo, error) { return nil, nil }
func (f *fakeProvider) Test(ctx context.Context) error                            { return nil }

func newService(p *fakeProvider) *Service {
	return New(Deps{
		Endpoints: &fakeEndpoints{ep: &domain.Endpoint{ID: 1, Type: "ollama", Model: "test-model"}},
		Cache:     memory.New(16),
		Prompt:    passthroughRenderer{},
		BuildProvider: func(e *domain.Endpoint) (ports.Provider, error) {
			return p, nil
		},
	})
}

func upperCaseWords(s string) string {
	// Uppercases letters but leaves guard tokens alone, like a transform
	// that respects the protected markers.
	var b strings.Builder
	for _, line := range strings.SplitAfter(s, "__") {
		if strings.HasPrefix(line, "PF") {
			b.WriteString(line)
			continue
		}
		b.WriteString(strings.ToUpper(line))
	}
	return b.String()
}

func TestTranslateOnePreservesPlaceholders(t *testing.T) {
	p := &fakeProvider{transform: upperCaseWords}
	s := newService(p)

	res, err := s.TranslateOne(context.Background(), TranslateArgs{
		EndpointID: 1,
		Text:       "Hello {{name}}, welcome to {{place}}.",
		TargetLang: "German",
	})
	require.NoError(t, err)
	assert.True(t, res.Report.Clean())
	assert.False(t, res.FromCache)
	assert.ElementsMatch(t, []string{"name", "place"}, vars.ExtractNames(res.Text))
	assert.Contains(t, res.Text, "{{name}}")
	assert.Contains(t, res.Text, "{{place}}")
}

func TestTranslateOneSecondCallHitsCache(t *testing.T) {
	p := &fakeProvider{}
	s := newService(p)
	ctx := context.Background()
	args := TranslateArgs{EndpointID: 1, Text: "Hello {{name}}.", TargetLang: "French"}

	first, err := s.TranslateOne(ctx, args)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := s.TranslateOne(ctx, args)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, int64(1), p.calls.Load())
}

func TestTranslateOneBypassCache(t *testing.T) {
	p := &fakeProvider{}
	s := newService(p)
	ctx := context.Background()
	args := TranslateArgs{EndpointID: 1, Text: "Hello {{name}}.", BypassCache: true}

	_, err := s.TranslateOne(ctx, args)
	require.NoError(t, err)
	_, err = s.TranslateOne(ctx, args)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.calls.Load())
}

func TestTranslateOneReportsDroppedToken(t *testing.T) {
	p := &fakeProvider{transform: func(s string) string {
		// Transform eats every guard token.
		out := s
		for strings.Contains(out, "__PF") {
			start := strings.Index(out, "__PF")
			end := strings.Index(out[start+4:], "__")
			out = out[:start] + out[start+4+end+2:]
		}
		return out
	}}
	s := newService(p)

	res, err := s.TranslateOne(context.Background(), TranslateArgs{
		EndpointID: 1,
		Text:       "Hello {{name}}.",
	})
	require.NoError(t, err)
	assert.False(t, res.Report.Clean())
	assert.Len(t, res.Report.Missing, 1)
	assert.NotContains(t, res.Text, "{{name}}")
}

func TestTranslateOneProviderError(t *testing.T) {
	p := &fakeProvider{err: errors.New("boom")}
	s := newService(p)

	_, err := s.TranslateOne(context.Background(), TranslateArgs{EndpointID: 1, Text: "x"})
	assert.Error(t, err)
}

func TestTranslateOneEmptyText(t *testing.T) {
	s := newService(&fakeProvider{})
	_, err := s.TranslateOne(context.Background(), TranslateArgs{EndpointID: 1, Text: "   "})
	assert.Error(t, err)
}

func TestTranslateOneUnknownEndpoint(t *testing.T) {
	s := newService(&fakeProvider{})
	_, err := s.TranslateOne(context.Background(), TranslateArgs{EndpointID: 99, Text: "x"})
	assert.Error(t, err)
}

func TestTranslateFieldsRoundTrip(t *testing.T) {
	p := &fakeProvider{}
	s := newService(p)

	res, err := s.TranslateFields(context.Background(), FieldsArgs{
		EndpointID: 1,
		Fields:     []string{"desc {{a}}", "instr", "body {{b}}"},
		TargetLang: "Spanish",
	})
	require.NoError(t, err)
	require.Len(t, res.Fields, 3)
	assert.Equal(t, "desc {{a}}", res.Fields[0])
	assert.Equal(t, "instr", res.Fields[1])
	assert.Equal(t, "body {{b}}", res.Fields[2])
	assert.Equal(t, int64(1), p.calls.Load())
	for _, rep := range res.Reports {
		assert.True(t, rep.Clean())
	}
}

func TestTranslateFieldsSeparatorLost(t *testing.T) {
	p := &fakeProvider{transform: func(s string) string {
		return strings.ReplaceAll(s, Separator, " / ")
	}}
	s := newService(p)

	res, err := s.TranslateFields(context.Background(), FieldsArgs{
		EndpointID: 1,
		Fields:     []string{"one {{a}}", "two {{b}}"},
	})
	require.NoError(t, err)
	require.Len(t, res.Reports, 2)
	for _, rep := range res.Reports {
		assert.True(t, rep.SeparatorLost)
	}
	// Placeholders survive in the merged best-effort output.
	assert.Contains(t, res.Fields[0], "{{a}}")
	assert.Contains(t, res.Fields[0], "{{b}}")
}
