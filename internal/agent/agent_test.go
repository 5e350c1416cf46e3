package agent

import (
	"context"
	"testing"
	"time"

	"github.com/ShayCichocki/flotilla/internal/provider"
	"github.com/ShayCichocki/flotilla/pkg/models"
)

// fakeProvider lets tests script provider behavior.
type fakeProvider struct {
	handler func(ctx context.Context, req provider.Request) (*provider.Response, error)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Execute(ctx context.Context, req provider.Request) (*provider.Response, error) {
	if f.handler != nil {
		return f.handler(ctx, req)
	}
	return &provider.Response{Output: "ok"}, nil
}

func newSubTask(id string, index, total int) *models.SubTask {
	return &models.SubTask{
		ID:          id,
		Index:       index,
		Total:       total,
		Instruction: "instruction " + id,
		CreatedAt:   time.Now(),
	}
}

func TestNew_StartsIdle(t *testing.T) {
	a := New(models.TierWorker, &fakeProvider{})

	if a.ID() == "" {
		t.Error("agent should have a non-empty ID")
	}
	if a.Tier() != models.TierWorker {
		t.Errorf("Tier() = %q, want %q", a.Tier(), models.TierWorker)
	}
	if a.Status() != models.AgentStatusIdle {
		t.Errorf("Status() = %q, want %q", a.Status(), models.AgentStatusIdle)
	}
}

func TestAgent_RunSetsRunning(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	p := &fakeProvider{
		handler: func(ctx context.Context, req provider.Request) (*provider.Response, error) {
			close(entered)
			<-release
			return &provider.Response{Output: "done"}, nil
		},
	}

	a := New(models.TierWorker, p)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := a.Run(context.Background(), newSubTask("st-1", 0, 1)); err != nil {
			t.Errorf("Run failed: %v", err)
		}
	}()

	<-entered
	if got := a.Status(); got != models.AgentStatusRunning {
		t.Errorf("Status during Run = %q, want %q", got, models.AgentStatusRunning)
	}
	close(release)
	<-done
}

func TestAgent_RunPassesInstruction(t *testing.T) {
	var got provider.Request
	p := &fakeProvider{
		handler: func(ctx context.Context, req provider.Request) (*provider.Response, error) {
			got = req
			return &provider.Response{Output: "x"}, nil
		},
	}

	a := New(models.TierWorker, p)
	sub := newSubTask("st-7", 0, 1)

	if _, err := a.Run(context.Background(), sub); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got.Instruction != sub.Instruction {
		t.Errorf("provider received %q, want %q", got.Instruction, sub.Instruction)
	}
}

func TestAgent_CompleteSuccess(t *testing.T) {
	a := New(models.TierWorker, &fakeProvider{})

	a.Complete(true, 0.25, 2*time.Second)

	stats := a.Stats()
	if stats.TasksRun != 1 || stats.TasksSucceeded != 1 || stats.TasksFailed != 0 {
		t.Errorf("counters = (%d, %d, %d), want (1, 1, 0)",
			stats.TasksRun, stats.TasksSucceeded, stats.TasksFailed)
	}
	if stats.TotalCost != 0.25 {
		t.Errorf("TotalCost = %v, want 0.25", stats.TotalCost)
	}
	if a.Status() != models.AgentStatusCompleted {
		t.Errorf("Status = %q, want %q", a.Status(), models.AgentStatusCompleted)
	}
	if stats.LastTaskAt.IsZero() {
		t.Error("LastTaskAt should be set after Complete")
	}
}

func TestAgent_CompleteFailure(t *testing.T) {
	a := New(models.TierSynthesizer, &fakeProvider{})

	a.Complete(false, 0, time.Second)

	stats := a.Stats()
	if stats.TasksRun != 1 || stats.TasksSucceeded != 0 || stats.TasksFailed != 1 {
		t.Errorf("counters = (%d, %d, %d), want (1, 0, 1)",
			stats.TasksRun, stats.TasksSucceeded, stats.TasksFailed)
	}
	if a.Status() != models.AgentStatusFailed {
		t.Errorf("Status = %q, want %q", a.Status(), models.AgentStatusFailed)
	}
}

func TestAgent_StatsAccumulate(t *testing.T) {
	a := New(models.TierWorker, &fakeProvider{})

	a.Complete(true, 0.10, time.Second)
	a.Complete(false, 0.05, 3*time.Second)
	a.Complete(true, 0.10, 2*time.Second)

	stats := a.Stats()
	if stats.TasksRun != 3 {
		t.Errorf("TasksRun = %d, want 3", stats.TasksRun)
	}
	if got := stats.SuccessRate(); got < 0.66 || got > 0.67 {
		t.Errorf("SuccessRate() = %v, want ~2/3", got)
	}
	if stats.MeanDuration() != 2*time.Second {
		t.Errorf("MeanDuration() = %v, want 2s", stats.MeanDuration())
	}
	if stats.TotalCost != 0.25 {
		t.Errorf("TotalCost = %v, want 0.25", stats.TotalCost)
	}
}
