package improver

import (
	"fmt"
	"sync"
	"time"

	"promptforge/internal/domain"
)

// Run is one improvement workflow over a prompt text. It lives for the
// session only; abandoning the workflow discards it.
type Run struct {
	ID         string
	PromptText string
	EndpointID int64
	// Model is captured when the run starts. Switching the active model
	// later never affects a run already underway.
	Model string

	mu        sync.Mutex
	results   [numStages]*domain.StageResult
	completed [numStages]bool
	lastErr   error
	createdAt time.Time
}

const numStages = 4

func stageIndex(stage string) (int, error) {
	for i, s := range domain.StageOrder {
		if s == stage {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown stage: %s", stage)
}

// gate returns an error unless every stage before idx is complete.
func (r *Run) gate(idx int) error {
	for i := 0; i < idx; i++ {
		if !r.completed[i] {
			return fmt.Errorf("stage %s is not complete", domain.StageOrder[i])
		}
	}
	return nil
}

// invalidateAfter conceptually discards results of stages after idx. Called
// when a completed stage is re-run: later outputs derived from the old
// result must be recomputed.
func (r *Run) invalidateAfter(idx int) {
	for i := idx + 1; i < numStages; i++ {
		r.results[i] = nil
		r.completed[i] = false
	}
}

// Snapshot is a consistent copy of a run's visible state.
type Snapshot struct {
	ID         string                `json:"id"`
	Model      string                `json:"model"`
	Completed  []bool                `json:"completed"`
	Results    []*domain.StageResult `json:"results"`
	LastError  string                `json:"last_error,omitempty"`
	Final      string                `json:"final,omitempty"`
	PromptText string                `json:"prompt_text"`
}

func (r *Run) snapshot() Snapshot {
	s := Snapshot{
		ID:         r.ID,
		Model:      r.Model,
		Completed:  make([]bool, numStages),
		Results:    make([]*domain.StageResult, numStages),
		PromptText: r.PromptText,
	}
	copy(s.Completed, r.completed[:])
	for i, res := range r.results {
		if res != nil {
			cp := *res
			s.Results[i] = &cp
		}
	}
	if r.lastErr != nil {
		s.LastError = r.lastErr.Error()
	}
	if r.completed[numStages-1] && r.results[numStages-1] != nil {
		s.Final = r.results[numStages-1].Output
	}
	return s
}

// Snapshot returns the run's current state.
func (r *Run) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// Final returns the improved template once every stage is complete.
func (r *Run) Final() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.completed[numStages-1] || r.results[numStages-1] == nil {
		return "", false
	}
	return r.results[numStages-1].Output, true
}

// StageCompleted reports whether the named stage has a result.
func (r *Run) StageCompleted(stage string) bool {
	idx, err := stageIndex(stage)
	if err != nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed[idx]
}
