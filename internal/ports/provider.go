package ports

import (
	"context"
)

// CompleteParams is the request contract of the external completion service.
type CompleteParams struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
}

type ModelInfo struct {
	Name          string
	Description   string
	ContextTokens int
}

// Provider is a single completion backend. Complete returns the plain text
// content of the response; every failure is a *CallError.
type Provider interface {
	Complete(ctx context.Context, p CompleteParams) (string, error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
	Test(ctx context.Context) error
}
