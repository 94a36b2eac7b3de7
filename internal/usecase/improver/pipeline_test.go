package improver

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/adapters/cache/memory"
	"promptforge/internal/domain"
	"promptforge/internal/ports"
)

type fakeEndpoints struct {
	ep *domain.Endpoint
}

func (f *fakeEndpoints) Create(ctx context.Context, e *domain.Endpoint) error { return nil }
func (f *fakeEndpoints) Update(ctx context.Context, e *domain.Endpoint) error { return nil }
func (f *fakeEndpoints) Get(ctx context.Context, id int64) (*domain.Endpoint, error) {
	if f.ep != nil && f.ep.ID == id {
		return f.ep, nil
	}
	return nil, nil
}
func (f *fakeEndpoints) List(ctx context.Context) ([]*domain.Endpoint, error) { return nil, nil }
func (f *fakeEndpoints) Delete(ctx context.Context, id int64) error           { return nil }
func (f *fakeEndpoints) SaveModelCache(ctx context.Context, endpointID int64, names []string) error {
	return nil
}
func (f *fakeEndpoints) ListModelCache(ctx context.Context, endpointID int64) ([]*domain.EndpointModel, error) {
	return nil, nil
}

type stubRenderer struct{}

func (stubRenderer) Render(ctx context.Context, scope string, refID *int64, kind, role string, values map[string]string) (string, error) {
	if role == "system" {
		return "system for " + kind, nil
	}
	// Distinct user prompt per stage and per upstream output, so cache keys
	// differ between stages and change when a stage is re-run.
	return kind + "|" + values["prompt"] + "|" + values["selection"] + "|" + values["adaptation"] + "|" + values["structure"], nil
}

type stageProvider struct {
	calls atomic.Int64
	fail  map[string]error    // user-prompt substring -> error
	block chan struct{}       // when set, Complete waits for ctx or close
	reply func(string) string // maps user prompt to output
}

func (p *stageProvider) Complete(ctx context.Context, cp ports.CompleteParams) (string, error) {
	p.calls.Add(1)
	for sub, err := range p.fail {
		if sub != "" && strings.Contains(cp.UserPrompt, sub) {
			return "", err
		}
	}
	if p.block != nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-p.block:
		}
	}
	if p.reply != nil {
		return p.reply(cp.UserPrompt), nil
	}
	return "out(" + cp.UserPrompt + ")", nil
}

func (p *stageProvider) ListModels(ctx context.Context) ([]ports.ModelInfo, error) { return nil, nil }
func (p *stageProvider) Test(ctx context.Context) error                            { return nil }

func newRunner(p *stageProvider) *Runner {
	return NewRunner(Deps{
		Endpoints: &fakeEndpoints{ep: &domain.Endpoint{ID: 1, Type: "ollama", Model: "m"}},
		Cache:     memory.New(32),
		Prompt:    stubRenderer{},
		BuildProvider: func(e *domain.Endpoint, timeout time.Duration) (ports.Provider, error) {
			return p, nil
		},
	})
}

func TestStartPinsModel(t *testing.T) {
	r := newRunner(&stageProvider{})
	run, err := r.Start(context.Background(), "improve {{x}}", 1, "")
	require.NoError(t, err)
	assert.Equal(t, "m", run.Model, "model resolved from the endpoint at start")

	run2, err := r.Start(context.Background(), "improve {{x}}", 1, "explicit")
	require.NoError(t, err)
	assert.Equal(t, "explicit", run2.Model)
}

func TestStartRequiresPromptText(t *testing.T) {
	r := newRunner(&stageProvider{})
	_, err := r.Start(context.Background(), "", 1, "m")
	assert.Error(t, err)
}

func TestStagesRunInOrder(t *testing.T) {
	p := &stageProvider{}
	r := newRunner(p)
	ctx := context.Background()
	run, err := r.Start(ctx, "the prompt", 1, "m")
	require.NoError(t, err)

	for _, stage := range domain.StageOrder {
		res, err := r.RunStageSync(ctx, run.ID, stage)
		require.NoError(t, err)
		assert.Equal(t, stage, res.Stage)
		assert.True(t, run.StageCompleted(stage))
	}

	final, done := run.Final()
	assert.True(t, done)
	assert.NotEmpty(t, final)
	assert.Equal(t, int64(4), p.calls.Load())
}

func TestStageGatingRejectsOutOfOrder(t *testing.T) {
	r := newRunner(&stageProvider{})
	ctx := context.Background()
	run, err := r.Start(ctx, "the prompt", 1, "m")
	require.NoError(t, err)

	_, err = r.RunStageSync(ctx, run.ID, domain.StageAdapt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select")

	_, err = r.RunStageSync(ctx, run.ID, domain.StageSolve)
	assert.Error(t, err)

	_, err = r.RunStageSync(ctx, run.ID, "bogus")
	assert.Error(t, err)
}

func TestFinalUnavailableBeforeCompletion(t *testing.T) {
	r := newRunner(&stageProvider{})
	ctx := context.Background()
	run, err := r.Start(ctx, "the prompt", 1, "m")
	require.NoError(t, err)

	_, done := run.Final()
	assert.False(t, done)

	_, err = r.RunStageSync(ctx, run.ID, domain.StageSelect)
	require.NoError(t, err)
	_, done = run.Final()
	assert.False(t, done)
}

func TestStageFailureHaltsPipeline(t *testing.T) {
	p := &stageProvider{fail: map[string]error{"stage_adapt": errors.New("upstream down")}}
	r := newRunner(p)
	ctx := context.Background()
	run, err := r.Start(ctx, "the prompt", 1, "m")
	require.NoError(t, err)

	_, err = r.RunStageSync(ctx, run.ID, domain.StageSelect)
	require.NoError(t, err)

	_, err = r.RunStageSync(ctx, run.ID, domain.StageAdapt)
	require.Error(t, err)
	assert.False(t, run.StageCompleted(domain.StageAdapt))

	// Later stages remain gated on the failed one.
	_, err = r.RunStageSync(ctx, run.ID, domain.StageImplement)
	assert.Error(t, err)

	snap := run.Snapshot()
	assert.Contains(t, snap.LastError, "upstream down")
}

func TestRerunInvalidatesLaterStages(t *testing.T) {
	p := &stageProvider{}
	r := newRunner(p)
	ctx := context.Background()
	run, err := r.Start(ctx, "the prompt", 1, "m")
	require.NoError(t, err)

	for _, stage := range domain.StageOrder {
		_, err := r.RunStageSync(ctx, run.ID, stage)
		require.NoError(t, err)
	}

	// Re-running stage two discards stages three and four.
	_, err = r.RunStageSync(ctx, run.ID, domain.StageAdapt)
	require.NoError(t, err)
	assert.True(t, run.StageCompleted(domain.StageSelect))
	assert.True(t, run.StageCompleted(domain.StageAdapt))
	assert.False(t, run.StageCompleted(domain.StageImplement))
	assert.False(t, run.StageCompleted(domain.StageSolve))

	_, done := run.Final()
	assert.False(t, done)

	_, err = r.RunStageSync(ctx, run.ID, domain.StageSolve)
	assert.Error(t, err, "solve must wait for implement again")
}

func TestStageCacheHitSkipsProvider(t *testing.T) {
	p := &stageProvider{}
	r := newRunner(p)
	ctx := context.Background()

	run1, err := r.Start(ctx, "the prompt", 1, "m")
	require.NoError(t, err)
	res1, err := r.RunStageSync(ctx, run1.ID, domain.StageSelect)
	require.NoError(t, err)
	assert.False(t, res1.FromCache)

	// Same prompt and model: the select stage resolves from cache.
	run2, err := r.Start(ctx, "the prompt", 1, "m")
	require.NoError(t, err)
	res2, err := r.RunStageSync(ctx, run2.ID, domain.StageSelect)
	require.NoError(t, err)
	assert.True(t, res2.FromCache)
	assert.Equal(t, res1.Output, res2.Output)
	assert.Equal(t, int64(1), p.calls.Load())
}

func TestDifferentModelMissesCache(t *testing.T) {
	p := &stageProvider{}
	r := newRunner(p)
	ctx := context.Background()

	run1, err := r.Start(ctx, "the prompt", 1, "model-a")
	require.NoError(t, err)
	_, err = r.RunStageSync(ctx, run1.ID, domain.StageSelect)
	require.NoError(t, err)

	run2, err := r.Start(ctx, "the prompt", 1, "model-b")
	require.NoError(t, err)
	res, err := r.RunStageSync(ctx, run2.ID, domain.StageSelect)
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, int64(2), p.calls.Load())
}

func TestAbandonDiscardsRun(t *testing.T) {
	r := newRunner(&stageProvider{})
	ctx := context.Background()
	run, err := r.Start(ctx, "the prompt", 1, "m")
	require.NoError(t, err)

	assert.True(t, r.Abandon(run.ID))
	_, ok := r.Get(run.ID)
	assert.False(t, ok)
	assert.False(t, r.Abandon(run.ID), "second abandon is a no-op")
}

func TestAbandonedStageDeliversNothing(t *testing.T) {
	block := make(chan struct{})
	p := &stageProvider{block: block}
	r := newRunner(p)
	ctx := context.Background()
	run, err := r.Start(ctx, "the prompt", 1, "m")
	require.NoError(t, err)

	done := make(chan struct{})
	r.SetEmitter(emitterFunc(func(name string, payload any) {
		if name == "improve.stage.done" {
			close(done)
		}
	}))

	require.NoError(t, r.StartStage(ctx, run.ID, domain.StageSelect))

	// Abandon while the provider call is parked, then let the worker go.
	assert.True(t, r.Abandon(run.ID))
	close(block)

	select {
	case <-done:
		t.Fatal("abandoned run must not emit a completion")
	case <-time.After(100 * time.Millisecond):
	}
	assert.False(t, run.StageCompleted(domain.StageSelect))
}

func TestStartStageRejectsConcurrentStage(t *testing.T) {
	block := make(chan struct{})
	p := &stageProvider{block: block}
	r := newRunner(p)
	ctx := context.Background()
	run, err := r.Start(ctx, "the prompt", 1, "m")
	require.NoError(t, err)

	require.NoError(t, r.StartStage(ctx, run.ID, domain.StageSelect))
	err = r.StartStage(ctx, run.ID, domain.StageSelect)
	assert.Error(t, err, "one stage in flight per run")
	close(block)
}

func TestRunStageSyncRejectsWhileStageInFlight(t *testing.T) {
	block := make(chan struct{})
	p := &stageProvider{block: block}
	r := newRunner(p)
	ctx := context.Background()
	run, err := r.Start(ctx, "the prompt", 1, "m")
	require.NoError(t, err)

	require.NoError(t, r.StartStage(ctx, run.ID, domain.StageSelect))
	_, err = r.RunStageSync(ctx, run.ID, domain.StageSelect)
	assert.Error(t, err, "sync callers obey the same one-in-flight rule")
	close(block)
}

func TestStartStageRejectsWhileSyncStageInFlight(t *testing.T) {
	block := make(chan struct{})
	p := &stageProvider{block: block}
	r := newRunner(p)
	ctx := context.Background()
	run, err := r.Start(ctx, "the prompt", 1, "m")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := r.RunStageSync(ctx, run.ID, domain.StageSelect)
		done <- err
	}()
	// Wait for the sync call to reach the provider before trying the slot.
	require.Eventually(t, func() bool { return p.calls.Load() > 0 }, time.Second, 5*time.Millisecond)

	err = r.StartStage(ctx, run.ID, domain.StageSelect)
	assert.Error(t, err, "sync caller holds the run's active slot")

	close(block)
	require.NoError(t, <-done)
}

type emitterFunc func(name string, payload any)

func (f emitterFunc) Emit(name string, payload any) { f(name, payload) }
