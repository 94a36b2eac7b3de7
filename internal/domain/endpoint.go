package domain

import "time"

// Endpoint is a configured completion backend.
type Endpoint struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"` // e.g., ollama, openrouter
	Name      string    `json:"name"`
	BaseURL   string    `json:"base_url"`
	Model     string    `json:"model"`
	APIKey    string    `json:"api_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EndpointModel struct {
	ID         int64     `json:"id"`
	EndpointID int64     `json:"endpoint_id"`
	Name       string    `json:"name"`
	UpdatedAt  time.Time `json:"updated_at"`
}
