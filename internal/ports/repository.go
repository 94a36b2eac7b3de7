package ports

import (
	"context"
	"promptforge/internal/domain"
)

type PromptRepository interface {
	Create(ctx context.Context, p *domain.Prompt) error
	Get(ctx context.Context, id int64) (*domain.Prompt, error)
	List(ctx context.Context) ([]*domain.Prompt, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

type RevisionRepository interface {
	// Append stores r as the next revision of its prompt and fills ID/Number.
	Append(ctx context.Context, r *domain.Revision) error
	Get(ctx context.Context, id int64) (*domain.Revision, error)
	Latest(ctx context.Context, promptID int64) (*domain.Revision, error)
	ListByPrompt(ctx context.Context, promptID int64) ([]*domain.Revision, error)
}

type EndpointRepository interface {
	Create(ctx context.Context, e *domain.Endpoint) error
	Update(ctx context.Context, e *domain.Endpoint) error
	Get(ctx context.Context, id int64) (*domain.Endpoint, error)
	List(ctx context.Context) ([]*domain.Endpoint, error)
	Delete(ctx context.Context, id int64) error
	SaveModelCache(ctx context.Context, endpointID int64, names []string) error
	ListModelCache(ctx context.Context, endpointID int64) ([]*domain.EndpointModel, error)
}

type TemplateRepository interface {
	GetEffective(ctx context.Context, scope string, refID *int64, kind, role string) (*domain.InstructionTemplate, error)
	Upsert(ctx context.Context, t *domain.InstructionTemplate) error
}

// TransformCache memoizes external transform results. Get returns nil when
// the key is absent; Put must be idempotent for identical key/value pairs.
type TransformCache interface {
	Get(ctx context.Context, key string) (*domain.CacheEntry, error)
	Put(ctx context.Context, entry *domain.CacheEntry) error
}

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type CallLogRepository interface {
	Add(ctx context.Context, rec *domain.CallRecord) error
	List(ctx context.Context, limit int) ([]*domain.CallRecord, error)
}
