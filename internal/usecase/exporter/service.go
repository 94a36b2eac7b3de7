package exporter

import (
	"context"
	"errors"

	exreg "promptforge/internal/adapters/exporter/registry"
	"promptforge/internal/ports"
)

// Service serializes the prompt library (latest revision of each prompt)
// into one of the registered formats.
type Service struct {
	Prompts   ports.PromptRepository
	Revisions ports.RevisionRepository
	Reg       *exreg.Registry
}

func New(prompts ports.PromptRepository, revisions ports.RevisionRepository, reg *exreg.Registry) *Service {
	return &Service{Prompts: prompts, Revisions: revisions, Reg: reg}
}

func (s *Service) ExportLibrary(ctx context.Context, format string) ([]byte, error) {
	exp, ok := s.Reg.Get(format)
	if !ok {
		return nil, errors.New("no exporter for format: " + format)
	}
	prompts, err := s.Prompts.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]ports.LibraryItem, 0, len(prompts))
	for _, p := range prompts {
		rev, err := s.Revisions.Latest(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if rev == nil {
			continue
		}
		items = append(items, ports.LibraryItem{
			Name:        p.Name,
			Description: rev.Description,
			Instruction: rev.Instruction,
			Body:        rev.Body,
		})
	}
	return exp.Export(items)
}
