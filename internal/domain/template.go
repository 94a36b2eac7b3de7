package domain

import "time"

// InstructionTemplate is a stored instruction text for one transform kind
// and role. Scope resolution is endpoint -> global -> builtin.
type InstructionTemplate struct {
	ID        int64     `json:"id"`
	Scope     string    `json:"scope"`  // global | endpoint
	RefID     *int64    `json:"ref_id"` // endpoint_id when scope is endpoint
	Kind      string    `json:"kind"`   // translate | stage_select | stage_adapt | stage_implement | stage_solve
	Role      string    `json:"role"`   // system | user
	Body      string    `json:"body"`
	IsDefault bool      `json:"is_default"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CacheEntry memoizes one external transform result. Key is a stable hash of
// the model plus the exact prompts sent, so any input change misses.
type CacheEntry struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Model     string    `json:"model"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

// CallRecord is one row of the external-call audit log.
type CallRecord struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"kind"` // translate | stage_select | ... | test
	Model      string    `json:"model"`
	Status     string    `json:"status"` // ok | failed | cached
	Error      string    `json:"error"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
