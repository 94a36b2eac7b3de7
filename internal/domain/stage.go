package domain

import "time"

// Stage identifiers of the improvement pipeline, in execution order.
const (
	StageSelect    = "select"    // pick an improvement strategy
	StageAdapt     = "adapt"     // adapt the strategy to this prompt
	StageImplement = "implement" // produce the reasoning structure
	StageSolve     = "solve"     // apply the reasoning structure
)

// StageOrder lists the stages in the only order they may run.
var StageOrder = []string{StageSelect, StageAdapt, StageImplement, StageSolve}

// StageResult is the outcome of one completed stage.
type StageResult struct {
	Stage       string    `json:"stage"`
	Input       string    `json:"input"`
	Output      string    `json:"output"`
	FromCache   bool      `json:"from_cache"`
	CompletedAt time.Time `json:"completed_at"`
}
