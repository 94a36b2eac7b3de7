package importer

import (
	"context"
	"errors"

	parreg "promptforge/internal/adapters/parser/registry"
	"promptforge/internal/domain"
	"promptforge/internal/ports"
)

// Service loads a prompt library file: each item becomes a new prompt with
// one initial revision.
type Service struct {
	Prompts        ports.PromptRepository
	Revisions      ports.RevisionRepository
	ParserRegistry *parreg.Registry
}

func New(prompts ports.PromptRepository, revisions ports.RevisionRepository, reg *parreg.Registry) *Service {
	return &Service{Prompts: prompts, Revisions: revisions, ParserRegistry: reg}
}

type ImportResult struct {
	Imported int
}

func (s *Service) Import(ctx context.Context, format string, content []byte) (ImportResult, error) {
	parser, ok := s.ParserRegistry.Get(format)
	if !ok {
		return ImportResult{}, errors.New("unsupported format: " + format)
	}
	items, err := parser.Parse(content)
	if err != nil {
		return ImportResult{}, err
	}
	for _, it := range items {
		p := &domain.Prompt{Name: it.Name}
		if err := s.Prompts.Create(ctx, p); err != nil {
			return ImportResult{}, err
		}
		rev := &domain.Revision{
			PromptID:    p.ID,
			Description: it.Description,
			Instruction: it.Instruction,
			Body:        it.Body,
			Note:        "imported",
		}
		if err := s.Revisions.Append(ctx, rev); err != nil {
			return ImportResult{}, err
		}
	}
	return ImportResult{Imported: len(items)}, nil
}
