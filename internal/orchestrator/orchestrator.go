package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/flotilla/internal/agent"
	"github.com/ShayCichocki/flotilla/internal/decompose"
	"github.com/ShayCichocki/flotilla/internal/executor"
	"github.com/ShayCichocki/flotilla/internal/provider"
	"github.com/ShayCichocki/flotilla/internal/synthesis"
	"github.com/ShayCichocki/flotilla/pkg/models"
)

// ErrAlreadyRan reports a second Run call on the same instance.
var ErrAlreadyRan = errors.New("orchestrator already ran; instances are single-use")

// RequiredConfig contains the minimal required configuration for an
// Orchestrator. All fields are required and have no defaults.
type RequiredConfig struct {
	// Provider executes every subtask at every tier.
	Provider provider.Provider
}

// Orchestrator drives one root task through decomposition, worker
// execution, and synthesis. Instances are single-use; create a new one per
// run.
type Orchestrator struct {
	provider   provider.Provider
	decomposer *decompose.Decomposer
	emitter    *fanout
	maxPerTier int
	started    atomic.Bool
}

// New creates an Orchestrator from the required configuration and options.
func New(required RequiredConfig, opts ...Option) (*Orchestrator, error) {
	if required.Provider == nil {
		return nil, errors.New("orchestrator requires a provider")
	}

	options := &orchestratorOptions{}
	for _, opt := range opts {
		opt(options)
	}

	d := options.decomposer
	if d == nil {
		d = decompose.New(required.Provider)
	}

	return &Orchestrator{
		provider:   required.Provider,
		decomposer: d,
		emitter:    &fanout{observers: options.observers},
		maxPerTier: options.maxPerTier,
	}, nil
}

// Run executes root under cfg and returns the complete record of the run.
// Subtask failures never fail the run; the returned error is non-nil only
// for invalid input, cancellation, or an unrecoverable internal failure.
// On cancellation the partial result is returned alongside the error:
// in-flight attempts finish, nothing new starts, and whatever completed is
// kept.
func (o *Orchestrator) Run(ctx context.Context, root *models.RootTask, cfg Config) (*models.OrchestratorResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if root == nil || strings.TrimSpace(root.Instruction) == "" {
		return nil, errors.New("root task instruction is empty")
	}
	if !o.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRan
	}

	task := *root
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.DomainHint == "" {
		task.DomainHint = cfg.DomainHint
	}

	runID := uuid.New().String()
	start := time.Now()
	result := &models.OrchestratorResult{
		RunID:       runID,
		RootTaskID:  task.ID,
		Instruction: task.Instruction,
		State:       models.RunStatePending,
		StartedAt:   start,
	}
	var synthTokens int64

	o.emit(runID, models.StreamEvent{Type: models.EventRunStarted, Message: task.Instruction})

	if cfg.WorkerCount == 0 {
		o.transition(result, models.RunStateDone)
		finalize(result, start, 0)
		o.emit(runID, models.StreamEvent{Type: models.EventRunCompleted, Message: "no workers requested"})
		return result, nil
	}

	pool := agent.NewPool(agent.PoolConfig{Provider: o.provider, MaxPerTier: o.poolCeiling(cfg)})
	defer pool.Shutdown()
	exec := executor.New(pool, runID, o.emitter)

	o.transition(result, models.RunStateDecomposing)
	subs := o.decomposer.Decompose(ctx, &task, cfg.WorkerCount)
	o.emit(runID, models.StreamEvent{
		Type:    models.EventTaskDecomposed,
		Message: fmt.Sprintf("%d subtasks", len(subs)),
	})
	if err := ctx.Err(); err != nil {
		return o.fail(result, start, synthTokens, err)
	}

	o.transition(result, models.RunStateExecutingWorkers)
	result.WorkerResults = exec.RunBatch(ctx, subs, models.TierWorker, cfg.executorOptions())
	if err := ctx.Err(); err != nil {
		return o.fail(result, start, synthTokens, err)
	}

	plan := synthesis.Scale(len(result.WorkerResults))
	finalOutput := joinWorkerOutputs(result.WorkerResults)

	if plan.SynthesizerCount > 0 {
		o.transition(result, models.RunStateExecutingSynthesizers)
		groups := synthesis.Groups(result.WorkerResults)
		groupInputs := make([][]synthesis.Input, len(groups))
		mergeSubs := make([]*models.SubTask, len(groups))
		for gi, group := range groups {
			groupInputs[gi] = synthesis.WorkerInputs(group)
			mergeSubs[gi] = synthesis.ComposeSubTask(task.ID, models.TierSynthesizer, gi, len(groups), groupInputs[gi])
		}
		o.emit(runID, models.StreamEvent{
			Type:    models.EventSynthesisStarted,
			Tier:    models.TierSynthesizer,
			Message: fmt.Sprintf("%d synthesizer group(s) over %d worker results", len(groups), len(result.WorkerResults)),
		})

		mergeResults := exec.RunBatch(ctx, mergeSubs, models.TierSynthesizer, cfg.executorOptions())
		synthResults := make([]*models.SynthesisResult, len(groups))
		for gi := range groups {
			synthTokens += mergeResults[gi].TokensUsed
			synthResults[gi] = synthesis.BuildResult(mergeResults[gi], models.TierSynthesizer, gi, groupInputs[gi])
			result.SynthesisResults = append(result.SynthesisResults, synthResults[gi])
		}
		o.emit(runID, models.StreamEvent{
			Type:    models.EventSynthesisCompleted,
			Tier:    models.TierSynthesizer,
			Message: fmt.Sprintf("%d synthesis result(s)", len(synthResults)),
		})
		if err := ctx.Err(); err != nil {
			return o.fail(result, start, synthTokens, err)
		}

		top := synthResults[0]
		if plan.HasExecutive {
			o.transition(result, models.RunStateExecutingExecutive)
			execInputs := synthesis.SynthesizerInputs(synthResults)
			execSub := synthesis.ComposeSubTask(task.ID, models.TierExecutive, 0, 1, execInputs)
			o.emit(runID, models.StreamEvent{
				Type:    models.EventSynthesisStarted,
				Tier:    models.TierExecutive,
				Message: fmt.Sprintf("executive over %d synthesizer results", len(execInputs)),
			})

			execBatch := exec.RunBatch(ctx, []*models.SubTask{execSub}, models.TierExecutive, cfg.executorOptions())
			synthTokens += execBatch[0].TokensUsed
			execRes := synthesis.BuildResult(execBatch[0], models.TierExecutive, 0, execInputs)
			result.SynthesisResults = append(result.SynthesisResults, execRes)
			o.emit(runID, models.StreamEvent{
				Type:    models.EventSynthesisCompleted,
				Tier:    models.TierExecutive,
				Message: "executive synthesis done",
			})
			if err := ctx.Err(); err != nil {
				return o.fail(result, start, synthTokens, err)
			}
			top = execRes
		}

		// A failed top synthesis falls back to the joined worker outputs so
		// the run still surfaces whatever the workers produced.
		if top.Success {
			finalOutput = top.Output
		}
	}

	o.transition(result, models.RunStateDone)
	result.FinalOutput = finalOutput
	finalize(result, start, synthTokens)
	o.emit(runID, models.StreamEvent{
		Type:    models.EventRunCompleted,
		Message: fmt.Sprintf("success=%v cost=$%.4f duration=%v", result.Success, result.TotalCost, result.Duration.Round(time.Millisecond)),
	})
	return result, nil
}

// fail moves the run to its Failed terminal state, keeping the partial
// results gathered so far.
func (o *Orchestrator) fail(result *models.OrchestratorResult, start time.Time, synthTokens int64, cause error) (*models.OrchestratorResult, error) {
	o.transition(result, models.RunStateFailed)
	finalize(result, start, synthTokens)
	o.emit(result.RunID, models.StreamEvent{Type: models.EventRunFailed, Message: cause.Error()})
	return result, cause
}

// transition advances the run state. States only move forward; Failed is
// reachable from anywhere.
func (o *Orchestrator) transition(result *models.OrchestratorResult, next models.RunState) {
	log.Printf("[orchestrator] %s -> %s", result.State, next)
	result.State = next
}

func (o *Orchestrator) emit(runID string, ev models.StreamEvent) {
	ev.RunID = runID
	ev.Timestamp = time.Now()
	o.emitter.OnEvent(ev)
}

// poolCeiling sizes the agent pool so the executor's concurrency gate is
// the only thing that ever makes a subtask wait.
func (o *Orchestrator) poolCeiling(cfg Config) int {
	if o.maxPerTier > 0 {
		return o.maxPerTier
	}
	return cfg.ConcurrencyLimit
}

// finalize computes the run totals. Success is judged on worker results
// alone: one successful worker makes the run a success.
func finalize(result *models.OrchestratorResult, start time.Time, synthTokens int64) {
	var cost float64
	var tokens int64
	for _, r := range result.WorkerResults {
		cost += r.Cost
		tokens += r.TokensUsed
		if r.Success {
			result.Success = true
		}
	}
	for _, s := range result.SynthesisResults {
		cost += s.Cost
	}
	result.TotalCost = cost
	result.TotalTokens = tokens + synthTokens
	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(start)
}

// joinWorkerOutputs is the final output when no synthesis tier exists: the
// successful worker outputs in batch order. One worker yields its output
// unchanged.
func joinWorkerOutputs(results []*models.AgentResult) string {
	var outs []string
	for _, r := range results {
		if r.Success {
			outs = append(outs, r.Output)
		}
	}
	return strings.Join(outs, "\n\n---\n\n")
}
