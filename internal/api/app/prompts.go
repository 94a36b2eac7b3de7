package app

import (
	"context"
	"errors"

	"promptforge/internal/domain"
	"promptforge/internal/ports"
	"promptforge/internal/usecase/vars"
)

type PromptAPI struct {
	prompts   ports.PromptRepository
	revisions ports.RevisionRepository
}

func NewPromptAPI(prompts ports.PromptRepository, revisions ports.RevisionRepository) *PromptAPI {
	return &PromptAPI{prompts: prompts, revisions: revisions}
}

func (a *PromptAPI) Create(name string) (*domain.Prompt, error) {
	ctx := context.Background()
	if name == "" {
		return nil, errors.New("name is required")
	}
	p := &domain.Prompt{Name: name}
	if err := a.prompts.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (a *PromptAPI) List() ([]*domain.Prompt, error) {
	return a.prompts.List(context.Background())
}

func (a *PromptAPI) Delete(id int64) (bool, error) {
	if err := a.prompts.Delete(context.Background(), id); err != nil {
		return false, err
	}
	return true, nil
}

type SaveRevisionRequest struct {
	PromptID    int64  `json:"prompt_id"`
	Description string `json:"description"`
	Instruction string `json:"instruction"`
	Body        string `json:"body"`
	Note        string `json:"note"`
}

// SaveRevision appends a new revision; existing revisions are never touched.
func (a *PromptAPI) SaveRevision(req SaveRevisionRequest) (*domain.Revision, error) {
	ctx := context.Background()
	if req.PromptID == 0 {
		return nil, errors.New("prompt_id is required")
	}
	rev := &domain.Revision{
		PromptID:    req.PromptID,
		Description: req.Description,
		Instruction: req.Instruction,
		Body:        req.Body,
		Note:        req.Note,
	}
	if err := a.revisions.Append(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

func (a *PromptAPI) Revisions(promptID int64) ([]*domain.Revision, error) {
	return a.revisions.ListByPrompt(context.Background(), promptID)
}

func (a *PromptAPI) Latest(promptID int64) (*domain.Revision, error) {
	return a.revisions.Latest(context.Background(), promptID)
}

// Variables returns the distinct placeholder names of a revision's body.
func (a *PromptAPI) Variables(revisionID int64) ([]string, error) {
	rev, err := a.revisions.Get(context.Background(), revisionID)
	if err != nil {
		return nil, err
	}
	if rev == nil {
		return nil, errors.New("revision not found")
	}
	return vars.ExtractNames(rev.Body), nil
}

type PreviewRequest struct {
	RevisionID int64             `json:"revision_id"`
	Values     map[string]string `json:"values"`
}

// Preview renders a revision's body with the given values. Missing values
// show up as literal markers; preview never fails on incomplete input.
func (a *PromptAPI) Preview(req PreviewRequest) (string, error) {
	rev, err := a.revisions.Get(context.Background(), req.RevisionID)
	if err != nil {
		return "", err
	}
	if rev == nil {
		return "", errors.New("revision not found")
	}
	return vars.Render(rev.Body, req.Values), nil
}
