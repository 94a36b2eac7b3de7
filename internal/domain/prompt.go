package domain

import "time"

// Prompt is an editable template the author iterates on. The text fields may
// contain {{identifier}} placeholders. A prompt is never edited in place:
// each save produces a new Revision and the prompt points at the latest one.
type Prompt struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Revision is an immutable snapshot of a prompt's text fields.
type Revision struct {
	ID          int64     `json:"id"`
	PromptID    int64     `json:"prompt_id"`
	Number      int       `json:"number"`
	Description string    `json:"description"`
	Instruction string    `json:"instruction"`
	Body        string    `json:"body"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}
