package app

import (
	"context"
	"errors"
	"strings"

	"promptforge/internal/adapters/llm/factory"
	"promptforge/internal/domain"
	"promptforge/internal/ports"
)

type EndpointAPI struct {
	repo ports.EndpointRepository
}

func NewEndpointAPI(repo ports.EndpointRepository) *EndpointAPI { return &EndpointAPI{repo: repo} }

func (a *EndpointAPI) Create(e domain.Endpoint) (*domain.Endpoint, error) {
	ctx := context.Background()
	if e.Type == "" || e.Name == "" {
		return nil, errors.New("type and name are required")
	}
	_ = a.normalizeModel(ctx, &e)
	if err := a.repo.Create(ctx, &e); err != nil {
		return nil, err
	}
	// mask API key when returning
	e.APIKey = mask(e.APIKey)
	return &e, nil
}

func (a *EndpointAPI) Update(e domain.Endpoint) (*domain.Endpoint, error) {
	ctx := context.Background()
	if e.ID == 0 {
		return nil, errors.New("id is required")
	}
	// Preserve existing API key if masked or empty provided from the caller
	if strings.HasPrefix(e.APIKey, "****") || e.APIKey == "" {
		existing, err := a.repo.Get(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		e.APIKey = existing.APIKey
	}
	_ = a.normalizeModel(ctx, &e)
	if err := a.repo.Update(ctx, &e); err != nil {
		return nil, err
	}
	e.APIKey = mask(e.APIKey)
	return &e, nil
}

func (a *EndpointAPI) List() ([]*domain.Endpoint, error) {
	ctx := context.Background()
	list, err := a.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range list {
		e.APIKey = mask(e.APIKey)
	}
	return list, nil
}

func (a *EndpointAPI) Delete(id int64) (bool, error) {
	if err := a.repo.Delete(context.Background(), id); err != nil {
		return false, err
	}
	return true, nil
}

type ModelInfo struct {
	Name, Description string
	ContextTokens     int
}

func (a *EndpointAPI) ListModels(id int64) ([]ModelInfo, error) {
	ctx := context.Background()
	e, err := a.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prov, ok := factory.FromEndpoint(e)
	if !ok {
		return nil, errors.New("unsupported endpoint type")
	}
	models, err := prov.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(models))
	out := make([]ModelInfo, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
		out = append(out, ModelInfo{Name: m.Name, Description: m.Description, ContextTokens: m.ContextTokens})
	}
	_ = a.repo.SaveModelCache(ctx, id, names)
	return out, nil
}

// EndpointTestResult contains details of a connectivity test.
type EndpointTestResult struct {
	Ok       bool   `json:"ok"`
	Category string `json:"category,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Test checks whether the endpoint is reachable and the credentials work.
// Failures are reported with their call-error category so the caller can
// tell a timeout from a certificate problem.
func (a *EndpointAPI) Test(id int64) (EndpointTestResult, error) {
	ctx := context.Background()
	e, err := a.repo.Get(ctx, id)
	if err != nil {
		return EndpointTestResult{}, err
	}
	prov, ok := factory.FromEndpoint(e)
	if !ok {
		return EndpointTestResult{}, errors.New("unsupported endpoint type")
	}
	if err := prov.Test(ctx); err != nil {
		return EndpointTestResult{Ok: false, Category: string(ports.CategoryOf(err)), Error: err.Error()}, nil
	}
	return EndpointTestResult{Ok: true}, nil
}

// normalizeModel attempts to convert human-readable model labels to
// canonical IDs for endpoints that expose both (e.g., OpenRouter). It
// best-effort updates e.Model in place.
func (a *EndpointAPI) normalizeModel(ctx context.Context, e *domain.Endpoint) error {
	if e == nil {
		return nil
	}
	if strings.ToLower(e.Type) != "openrouter" {
		return nil
	}
	m := strings.TrimSpace(e.Model)
	if m == "" {
		return nil
	}
	// Heuristic: labels often contain spaces/parentheses; IDs rarely do.
	if !strings.Contains(m, " ") && !strings.Contains(m, "(") && !strings.Contains(m, ")") {
		return nil
	}
	prov, ok := factory.FromEndpoint(e)
	if !ok {
		return nil
	}
	models, err := prov.ListModels(ctx)
	if err != nil {
		return err
	}
	for _, mi := range models {
		if strings.EqualFold(mi.Name, m) || strings.EqualFold(mi.Description, m) {
			e.Model = mi.Name
			return nil
		}
	}
	return nil
}

func mask(s string) string {
	if len(s) <= 4 {
		return s
	}
	return "****" + s[len(s)-4:]
}
