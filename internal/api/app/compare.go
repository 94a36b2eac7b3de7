package app

import (
	"context"
	"errors"

	"promptforge/internal/ports"
	"promptforge/internal/usecase/compare"
)

type CompareAPI struct {
	revisions ports.RevisionRepository
	engine    *compare.Engine
}

func NewCompareAPI(revisions ports.RevisionRepository) *CompareAPI {
	return &CompareAPI{revisions: revisions, engine: compare.NewEngine()}
}

// FieldHighlights is one field's two-pane highlight view.
type FieldHighlights struct {
	Field string         `json:"field"`
	Left  []compare.Span `json:"left"`
	Right []compare.Span `json:"right"`
}

// Compare diffs two stored revisions field by field and returns the left
// (old) and right (new) highlight spans for each.
func (a *CompareAPI) Compare(oldRevisionID, newRevisionID int64) ([]FieldHighlights, error) {
	ctx := context.Background()
	oldRev, err := a.revisions.Get(ctx, oldRevisionID)
	if err != nil {
		return nil, err
	}
	newRev, err := a.revisions.Get(ctx, newRevisionID)
	if err != nil {
		return nil, err
	}
	if oldRev == nil || newRev == nil {
		return nil, errors.New("revision not found")
	}
	diffs := a.engine.CompareRevisions(oldRev, newRev)
	out := make([]FieldHighlights, 0, len(diffs))
	for _, d := range diffs {
		out = append(out, FieldHighlights{
			Field: d.Field,
			Left:  compare.LeftSpans(d.Result),
			Right: compare.RightSpans(d.Result),
		})
	}
	return out, nil
}
