package app

import (
	"context"
	"errors"
	"fmt"

	"promptforge/internal/ports"
	"promptforge/internal/usecase/guard"
	"promptforge/internal/usecase/improver"
)

type ImproveAPI struct {
	runner    *improver.Runner
	revisions ports.RevisionRepository
	settings  ports.SettingsRepository
}

func NewImproveAPI(runner *improver.Runner, revisions ports.RevisionRepository, settings ports.SettingsRepository) *ImproveAPI {
	return &ImproveAPI{runner: runner, revisions: revisions, settings: settings}
}

type StartImproveRequest struct {
	RevisionID int64  `json:"revision_id"`
	EndpointID int64  `json:"endpoint_id"`
	Model      string `json:"model"`
}

// Start creates an improvement run over a stored revision's body.
func (a *ImproveAPI) Start(req StartImproveRequest) (improver.Snapshot, error) {
	ctx := context.Background()
	rev, err := a.revisions.Get(ctx, req.RevisionID)
	if err != nil {
		return improver.Snapshot{}, err
	}
	if rev == nil {
		return improver.Snapshot{}, errors.New("revision not found")
	}
	endpointID := req.EndpointID
	if endpointID == 0 && a.settings != nil {
		endpointID = activeEndpointID(ctx, a.settings)
	}
	model := req.Model
	if model == "" && a.settings != nil {
		model, _ = a.settings.Get(ctx, SettingActiveModel)
	}
	run, err := a.runner.Start(ctx, rev.Body, endpointID, model)
	if err != nil {
		return improver.Snapshot{}, err
	}
	return run.Snapshot(), nil
}

// RunStage starts the named stage asynchronously. Progress arrives through
// the runner's event emitter; Status polls the same state.
func (a *ImproveAPI) RunStage(runID, stage string) (bool, error) {
	if err := a.runner.StartStage(context.Background(), runID, stage); err != nil {
		return false, err
	}
	return true, nil
}

func (a *ImproveAPI) Status(runID string) (improver.Snapshot, error) {
	run, ok := a.runner.Get(runID)
	if !ok {
		return improver.Snapshot{}, fmt.Errorf("unknown run: %s", runID)
	}
	return run.Snapshot(), nil
}

// Final returns the improved template once all stages are complete, after
// verifying the original placeholders survived the pipeline.
type FinalResult struct {
	Template string   `json:"template"`
	Clean    bool     `json:"clean"`
	Warnings []string `json:"warnings,omitempty"`
}

func (a *ImproveAPI) Final(runID string) (FinalResult, error) {
	run, ok := a.runner.Get(runID)
	if !ok {
		return FinalResult{}, fmt.Errorf("unknown run: %s", runID)
	}
	final, done := run.Final()
	if !done {
		return FinalResult{}, errors.New("run is not complete")
	}
	rep := placeholderCheck(run.PromptText, final)
	return FinalResult{Template: final, Clean: rep.Clean(), Warnings: restoreWarnings(rep)}, nil
}

func (a *ImproveAPI) Abandon(runID string) bool {
	return a.runner.Abandon(runID)
}

// placeholderCheck flags original placeholders the improved template lost.
func placeholderCheck(original, improved string) guard.Report {
	var rep guard.Report
	for _, occ := range missingPlaceholders(original, improved) {
		rep.Missing = append(rep.Missing, occ)
	}
	return rep
}
