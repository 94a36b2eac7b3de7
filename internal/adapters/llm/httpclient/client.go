package httpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"promptforge/internal/ports"

	"github.com/go-resty/resty/v2"
)

// Client talks to a chat-completions style endpoint over HTTP. It implements
// ports.Provider for the endpoint types the app knows about.
type Client struct {
	EndpointType string
	APIKey       string
	BaseURL      string
	Model        string
	http         *resty.Client
}

// DefaultTimeout bounds a single completion call. Reasoning-heavy stage
// calls get a longer budget via NewWithTimeout.
const DefaultTimeout = 60 * time.Second

func New(endpointType, apiKey, baseURL, model string) *Client {
	return NewWithTimeout(endpointType, apiKey, baseURL, model, DefaultTimeout)
}

func NewWithTimeout(endpointType, apiKey, baseURL, model string, timeout time.Duration) *Client {
	c := resty.New().SetTimeout(timeout)
	return &Client{EndpointType: strings.ToLower(endpointType), APIKey: apiKey, BaseURL: baseURL, Model: model, http: c}
}

func (c *Client) Complete(ctx context.Context, p ports.CompleteParams) (string, error) {
	switch c.EndpointType {
	case "openrouter":
		return c.completeOpenRouter(ctx, p)
	case "ollama":
		return c.completeOllama(ctx, p)
	default:
		return "", fmt.Errorf("unsupported endpoint type: %s", c.EndpointType)
	}
}

func (c *Client) ListModels(ctx context.Context) ([]ports.ModelInfo, error) {
	switch c.EndpointType {
	case "ollama":
		base := c.BaseURL
		if base == "" {
			base = "http://localhost:11434"
		}
		url := strings.TrimRight(base, "/") + "/api/tags"
		var resp struct {
			Models []struct {
				Name string `json:"name"`
			} `json:"models"`
		}
		r, err := c.http.R().SetContext(ctx).SetResult(&resp).Get(url)
		if err != nil {
			return nil, classify(err)
		}
		if r.IsError() {
			return nil, httpError(r)
		}
		out := make([]ports.ModelInfo, 0, len(resp.Models))
		for _, m := range resp.Models {
			out = append(out, ports.ModelInfo{Name: m.Name})
		}
		return out, nil
	case "openrouter":
		base := c.BaseURL
		if base == "" {
			base = "https://openrouter.ai"
		}
		url := openRouterURL(base, "/models")
		var resp struct {
			Data []struct {
				ID            string `json:"id"`
				Name          string `json:"name"`
				ContextLength int    `json:"context_length"`
			} `json:"data"`
		}
		r, err := c.http.R().SetContext(ctx).
			SetHeader("Authorization", "Bearer "+c.APIKey).
			SetResult(&resp).Get(url)
		if err != nil {
			return nil, classify(err)
		}
		if r.IsError() {
			return nil, httpError(r)
		}
		out := make([]ports.ModelInfo, 0, len(resp.Data))
		for _, d := range resp.Data {
			label := d.Name
			if label == "" {
				label = d.ID
			}
			out = append(out, ports.ModelInfo{Name: d.ID, Description: label, ContextTokens: d.ContextLength})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported endpoint type: %s", c.EndpointType)
	}
}

func (c *Client) Test(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

func (c *Client) completeOpenRouter(ctx context.Context, p ports.CompleteParams) (string, error) {
	base := c.BaseURL
	if base == "" {
		base = "https://openrouter.ai"
	}
	url := openRouterURL(base, "/chat/completions")
	model := p.Model
	if model == "" {
		model = c.Model
	}
	body := map[string]any{
		"model":       model,
		"messages":    messages(p),
		"temperature": p.Temperature,
	}
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	r, err := c.http.R().SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).SetResult(&resp).Post(url)
	if err != nil {
		return "", classify(err)
	}
	if r.IsError() {
		return "", httpError(r)
	}
	if len(resp.Choices) == 0 {
		return "", &ports.CallError{Category: ports.CallBadResponse, Err: fmt.Errorf("no choices returned")}
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &ports.CallError{Category: ports.CallBadResponse, Err: fmt.Errorf("empty completion content")}
	}
	return content, nil
}

func (c *Client) completeOllama(ctx context.Context, p ports.CompleteParams) (string, error) {
	base := c.BaseURL
	if base == "" {
		base = "http://localhost:11434"
	}
	url := strings.TrimRight(base, "/") + "/api/chat"
	model := p.Model
	if model == "" {
		model = c.Model
	}
	body := map[string]any{
		"model":    model,
		"messages": messages(p),
		"stream":   false,
		"options":  map[string]any{"temperature": p.Temperature},
	}
	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	r, err := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).SetResult(&resp).Post(url)
	if err != nil {
		return "", classify(err)
	}
	if r.IsError() {
		return "", httpError(r)
	}
	content := strings.TrimSpace(resp.Message.Content)
	if content == "" {
		return "", &ports.CallError{Category: ports.CallBadResponse, Err: fmt.Errorf("empty completion content")}
	}
	return content, nil
}

func messages(p ports.CompleteParams) []map[string]string {
	msgs := make([]map[string]string, 0, 2)
	if p.SystemPrompt != "" {
		msgs = append(msgs, map[string]string{"role": "system", "content": p.SystemPrompt})
	}
	msgs = append(msgs, map[string]string{"role": "user", "content": p.UserPrompt})
	return msgs
}

// openRouterURL builds a URL for OpenRouter whether base contains /api/v1 or not.
func openRouterURL(base, tail string) string {
	b := strings.TrimRight(base, "/")
	if strings.Contains(b, "/api/v1") {
		idx := strings.Index(b, "/api/v1")
		b = b[:idx+len("/api/v1")]
		return b + tail
	}
	return b + "/api/v1" + tail
}
