// Package improver runs the staged improvement workflow: four external
// transform calls in strict order, each stage consuming the previous
// stage's output, with the transform cache consulted before every call.
package improver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"promptforge/internal/adapters/cache"
	"promptforge/internal/domain"
	"promptforge/internal/ports"
)

// DefaultStageTimeout bounds one stage call. Stage calls reason over whole
// templates, so the budget is wider than a single translate.
const DefaultStageTimeout = 2 * time.Minute

type EventEmitter interface {
	Emit(name string, payload any)
}

type Deps struct {
	Endpoints ports.EndpointRepository
	Cache     ports.TransformCache
	Prompt    ports.InstructionRenderer
	Calls     ports.CallLogRepository
	// BuildProvider returns a provider for an endpoint with the given call timeout.
	BuildProvider func(*domain.Endpoint, time.Duration) (ports.Provider, error)
	Logger        *zap.Logger
	StageTimeout  time.Duration
}

// Runner owns the session's active improvement runs: cancel funcs per run,
// a goroutine per in-flight stage, events pushed to whoever is listening.
type Runner struct {
	d      Deps
	mu     sync.Mutex
	runs   map[string]*Run
	active map[string]context.CancelFunc
	em     EventEmitter
	sf     singleflight.Group
}

func NewRunner(d Deps) *Runner {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.StageTimeout <= 0 {
		d.StageTimeout = DefaultStageTimeout
	}
	return &Runner{d: d, runs: map[string]*Run{}, active: map[string]context.CancelFunc{}}
}

func (r *Runner) SetEmitter(em EventEmitter) { r.em = em }

// Start creates a run for promptText. The model is resolved now (argument,
// else endpoint default) and pinned for the run's lifetime.
func (r *Runner) Start(ctx context.Context, promptText string, endpointID int64, model string) (*Run, error) {
	if promptText == "" {
		return nil, errors.New("prompt text is required")
	}
	if model == "" {
		ep, err := r.d.Endpoints.Get(ctx, endpointID)
		if err != nil {
			return nil, err
		}
		if ep == nil {
			return nil, fmt.Errorf("endpoint %d not found", endpointID)
		}
		model = ep.Model
	}
	run := &Run{
		ID:         uuid.NewString(),
		PromptText: promptText,
		EndpointID: endpointID,
		Model:      model,
		createdAt:  time.Now(),
	}
	r.mu.Lock()
	r.runs[run.ID] = run
	r.mu.Unlock()
	r.d.Logger.Info("improvement run started", zap.String("run_id", run.ID), zap.String("model", model))
	return run, nil
}

func (r *Runner) Get(runID string) (*Run, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[runID]
	return run, ok
}

// Abandon cancels any in-flight stage call and discards the run. The worker
// may still be executing, but its context is canceled and its result will
// not be delivered.
func (r *Runner) Abandon(runID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.active[runID]; ok {
		cancel()
		delete(r.active, runID)
	}
	if _, ok := r.runs[runID]; !ok {
		return false
	}
	delete(r.runs, runID)
	return true
}

// StartStage launches the named stage on a worker goroutine. Gating is
// checked synchronously: the stage before it must be complete, and no other
// stage of this run may be in flight. Re-running a completed stage discards
// every later result.
func (r *Runner) StartStage(ctx context.Context, runID, stage string) error {
	idx, err := stageIndex(stage)
	if err != nil {
		return err
	}
	run, ok := r.Get(runID)
	if !ok {
		return fmt.Errorf("unknown run: %s", runID)
	}

	run.mu.Lock()
	if err := run.gate(idx); err != nil {
		run.mu.Unlock()
		return err
	}
	if run.completed[idx] {
		run.invalidateAfter(idx)
	}
	run.mu.Unlock()

	r.mu.Lock()
	if _, busy := r.active[runID]; busy {
		r.mu.Unlock()
		return fmt.Errorf("run %s already has a stage in flight", runID)
	}
	cctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.active[runID] = cancel
	r.mu.Unlock()

	r.emit("improve.stage.start", map[string]any{"run_id": runID, "stage": stage, "model": run.Model})
	go func() {
		defer func() {
			r.mu.Lock()
			if c, ok := r.active[runID]; ok {
				c()
				delete(r.active, runID)
			}
			r.mu.Unlock()
		}()
		res, err := r.executeStage(cctx, run, idx)
		// A canceled run delivers nothing: the requester is gone.
		if cctx.Err() != nil {
			r.d.Logger.Debug("stage result discarded after cancel", zap.String("run_id", runID), zap.String("stage", stage))
			return
		}
		run.mu.Lock()
		if err != nil {
			run.lastErr = err
			run.mu.Unlock()
			r.d.Logger.Warn("stage failed", zap.String("run_id", runID), zap.String("stage", stage), zap.Error(err))
			r.emit("improve.stage.failed", map[string]any{"run_id": runID, "stage": stage, "error": err.Error()})
			return
		}
		run.results[idx] = res
		run.completed[idx] = true
		run.lastErr = nil
		snap := run.snapshot()
		run.mu.Unlock()
		r.emit("improve.stage.done", map[string]any{"run_id": runID, "stage": stage, "from_cache": res.FromCache, "snapshot": snap})
	}()
	return nil
}

// RunStageSync executes the named stage and waits for it, for callers
// without an event loop. Gating, invalidation, and the one-stage-in-flight
// rule match StartStage: the sync caller occupies the run's active slot for
// the duration of the call, so it cannot race an async stage and Abandon
// cancels it the same way.
func (r *Runner) RunStageSync(ctx context.Context, runID, stage string) (*domain.StageResult, error) {
	idx, err := stageIndex(stage)
	if err != nil {
		return nil, err
	}
	run, ok := r.Get(runID)
	if !ok {
		return nil, fmt.Errorf("unknown run: %s", runID)
	}

	r.mu.Lock()
	if _, busy := r.active[runID]; busy {
		r.mu.Unlock()
		return nil, fmt.Errorf("run %s already has a stage in flight", runID)
	}
	cctx, cancel := context.WithCancel(ctx)
	r.active[runID] = cancel
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		if c, ok := r.active[runID]; ok {
			c()
			delete(r.active, runID)
		}
		r.mu.Unlock()
	}()

	run.mu.Lock()
	if err := run.gate(idx); err != nil {
		run.mu.Unlock()
		return nil, err
	}
	if run.completed[idx] {
		run.invalidateAfter(idx)
	}
	run.mu.Unlock()

	res, err := r.executeStage(cctx, run, idx)
	if cctx.Err() != nil && ctx.Err() == nil {
		// Abandoned mid-call: the run is gone, keep nothing.
		return nil, fmt.Errorf("run %s abandoned", runID)
	}
	run.mu.Lock()
	defer run.mu.Unlock()
	if err != nil {
		run.lastErr = err
		return nil, err
	}
	run.results[idx] = res
	run.completed[idx] = true
	run.lastErr = nil
	return res, nil
}

// executeStage builds the stage instruction, consults the cache, and only
// then issues the external call. It does not mutate the run.
func (r *Runner) executeStage(ctx context.Context, run *Run, idx int) (*domain.StageResult, error) {
	stage := domain.StageOrder[idx]
	kind := "stage_" + stage

	values := r.stageValues(run, idx)
	system, err := r.d.Prompt.Render(ctx, "endpoint", &run.EndpointID, kind, "system", values)
	if err != nil {
		return nil, err
	}
	user, err := r.d.Prompt.Render(ctx, "endpoint", &run.EndpointID, kind, "user", values)
	if err != nil {
		return nil, err
	}

	key := cache.Key(run.Model, system, user)
	if e, _ := r.d.Cache.Get(ctx, key); e != nil {
		r.record(ctx, kind, run.Model, "cached", "", 0)
		return &domain.StageResult{Stage: stage, Input: user, Output: e.Result, FromCache: true, CompletedAt: time.Now().UTC()}, nil
	}

	ep, err := r.d.Endpoints.Get(ctx, run.EndpointID)
	if err != nil {
		return nil, err
	}
	if ep == nil {
		return nil, fmt.Errorf("endpoint %d not found", run.EndpointID)
	}
	provider, err := r.d.BuildProvider(ep, r.d.StageTimeout)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	out, err, _ := r.sf.Do(key, func() (any, error) {
		cctx, cancel := context.WithTimeout(ctx, r.d.StageTimeout)
		defer cancel()
		return provider.Complete(cctx, ports.CompleteParams{
			Model:        run.Model,
			SystemPrompt: system,
			UserPrompt:   user,
			Temperature:  0.7,
		})
	})
	elapsed := time.Since(started)
	if err != nil {
		r.record(ctx, kind, run.Model, "failed", err.Error(), elapsed.Milliseconds())
		return nil, err
	}
	output := out.(string)
	_ = r.d.Cache.Put(ctx, &domain.CacheEntry{Key: key, Model: run.Model, Result: output})
	r.record(ctx, kind, run.Model, "ok", "", elapsed.Milliseconds())
	return &domain.StageResult{Stage: stage, Input: user, Output: output, CompletedAt: time.Now().UTC()}, nil
}

// stageValues maps the fixed placeholder names of the stage templates to
// the original prompt and the outputs of the preceding stages.
func (r *Runner) stageValues(run *Run, idx int) map[string]string {
	run.mu.Lock()
	defer run.mu.Unlock()
	values := map[string]string{"prompt": run.PromptText}
	if idx > 0 && run.results[0] != nil {
		values["selection"] = run.results[0].Output
	}
	if idx > 1 && run.results[1] != nil {
		values["adaptation"] = run.results[1].Output
	}
	if idx > 2 && run.results[2] != nil {
		values["structure"] = run.results[2].Output
	}
	return values
}

func (r *Runner) record(ctx context.Context, kind, model, status, errMsg string, durationMS int64) {
	if r.d.Calls == nil {
		return
	}
	_ = r.d.Calls.Add(ctx, &domain.CallRecord{Kind: kind, Model: model, Status: status, Error: errMsg, DurationMS: durationMS})
}

func (r *Runner) emit(name string, payload any) {
	if r.em != nil {
		r.em.Emit(name, payload)
	}
}
