package factory

import (
	"time"

	httpprov "promptforge/internal/adapters/llm/httpclient"
	"promptforge/internal/domain"
	"promptforge/internal/ports"
)

// FromEndpoint returns an HTTP-backed provider for the given record.
func FromEndpoint(e *domain.Endpoint) (ports.Provider, bool) {
	return httpprov.New(e.Type, e.APIKey, e.BaseURL, e.Model), true
}

// FromEndpointWithTimeout is used by the stage pipeline, whose reasoning
// calls run longer than a single translate.
func FromEndpointWithTimeout(e *domain.Endpoint, timeout time.Duration) (ports.Provider, bool) {
	return httpprov.NewWithTimeout(e.Type, e.APIKey, e.BaseURL, e.Model, timeout), true
}
