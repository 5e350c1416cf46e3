package decompose

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/flotilla/internal/provider"
	"github.com/ShayCichocki/flotilla/pkg/models"
)

// fakeProvider returns a canned response or error and records the prompt it
// was asked to execute.
type fakeProvider struct {
	output string
	err    error
	calls  int
	prompt string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Execute(ctx context.Context, req provider.Request) (*provider.Response, error) {
	f.calls++
	f.prompt = req.Instruction
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Response{Output: f.output}, nil
}

func newRootTask(instruction, hint string) *models.RootTask {
	return &models.RootTask{
		ID:          "root-1",
		Instruction: instruction,
		DomainHint:  hint,
		CreatedAt:   time.Now(),
	}
}

func assertBatchShape(t *testing.T, subs []*models.SubTask, want int) {
	t.Helper()
	if len(subs) != want {
		t.Fatalf("got %d subtasks, want %d", len(subs), want)
	}
	seen := make(map[string]bool)
	for i, s := range subs {
		if s.Index != i {
			t.Errorf("subtask %d has index %d", i, s.Index)
		}
		if s.Total != want {
			t.Errorf("subtask %d has total %d, want %d", i, s.Total, want)
		}
		if s.ID == "" {
			t.Errorf("subtask %d has empty ID", i)
		}
		if seen[s.ID] {
			t.Errorf("duplicate subtask ID %q", s.ID)
		}
		seen[s.ID] = true
		if !s.Valid() {
			t.Errorf("subtask %d fails validation: %+v", i, s)
		}
	}
}

func TestNew(t *testing.T) {
	if New(nil) == nil {
		t.Fatal("New returned nil")
	}
}

func TestDecompose_ProviderList(t *testing.T) {
	fake := &fakeProvider{output: "1. Survey the field\n2. Gather data\n3. Draft findings"}
	d := New(fake)

	subs := d.Decompose(context.Background(), newRootTask("study tidal power", ""), 3)

	assertBatchShape(t, subs, 3)
	want := []string{"Survey the field", "Gather data", "Draft findings"}
	for i, w := range want {
		if subs[i].Instruction != w {
			t.Errorf("subtask %d instruction = %q, want %q", i, subs[i].Instruction, w)
		}
		if subs[i].RootTaskID != "root-1" {
			t.Errorf("subtask %d root task ID = %q", i, subs[i].RootTaskID)
		}
	}
	if fake.calls != 1 {
		t.Errorf("provider called %d times, want 1", fake.calls)
	}
	if !strings.Contains(fake.prompt, "study tidal power") {
		t.Errorf("prompt does not carry the root instruction: %q", fake.prompt)
	}
}

func TestDecompose_PadsShortProviderOutput(t *testing.T) {
	fake := &fakeProvider{output: "1. Map the landscape\n2. Dig into specifics"}
	d := New(fake)

	subs := d.Decompose(context.Background(), newRootTask("review the codebase", ""), 5)

	assertBatchShape(t, subs, 5)
	if subs[0].Instruction != "Map the landscape" {
		t.Errorf("first subtask = %q", subs[0].Instruction)
	}
	for i := 2; i < 5; i++ {
		if !strings.HasPrefix(subs[i].Instruction, "Map the landscape") {
			t.Errorf("padded subtask %d does not derive from the overview: %q", i, subs[i].Instruction)
		}
		if !strings.Contains(subs[i].Instruction, "focus on a distinct aspect") {
			t.Errorf("padded subtask %d lacks a focus note: %q", i, subs[i].Instruction)
		}
	}
	if subs[2].Instruction == subs[3].Instruction {
		t.Error("padded subtasks are indistinguishable from each other")
	}
}

func TestDecompose_TruncatesLongProviderOutput(t *testing.T) {
	var lines []string
	for _, s := range []string{"Overview", "Second", "Third", "Fourth", "Fifth", "Sixth", "Seventh", "Eighth"} {
		lines = append(lines, "1. "+s)
	}
	fake := &fakeProvider{output: strings.Join(lines, "\n")}
	d := New(fake)

	subs := d.Decompose(context.Background(), newRootTask("wide task", ""), 4)

	assertBatchShape(t, subs, 4)
	want := []string{"Overview", "Second", "Third", "Fourth"}
	for i, w := range want {
		if subs[i].Instruction != w {
			t.Errorf("subtask %d = %q, want %q", i, subs[i].Instruction, w)
		}
	}
}

func TestDecompose_ProviderErrorFallsBackToTemplate(t *testing.T) {
	fake := &fakeProvider{err: errors.New("boom")}
	d := New(fake)

	subs := d.Decompose(context.Background(), newRootTask("the future of desalination", "research"), 4)

	assertBatchShape(t, subs, 4)
	if !strings.Contains(subs[0].Instruction, "Survey the background") {
		t.Errorf("research template not used: %q", subs[0].Instruction)
	}
	if !strings.Contains(subs[0].Instruction, "the future of desalination") {
		t.Errorf("template does not carry the root instruction: %q", subs[0].Instruction)
	}
}

func TestDecompose_MalformedOutputFallsBackToTemplate(t *testing.T) {
	fake := &fakeProvider{output: "I am sorry, I cannot break this down for you."}
	d := New(fake)

	subs := d.Decompose(context.Background(), newRootTask("plan the rollout", ""), 3)

	assertBatchShape(t, subs, 3)
	if !strings.Contains(subs[0].Instruction, "overview") {
		t.Errorf("generic template overview missing: %q", subs[0].Instruction)
	}
	for i := 1; i < 3; i++ {
		if !strings.Contains(subs[i].Instruction, "plan the rollout") {
			t.Errorf("generic facet %d does not carry the root instruction: %q", i, subs[i].Instruction)
		}
	}
}

func TestDecompose_NilProviderUsesTemplates(t *testing.T) {
	d := New(nil)

	subs := d.Decompose(context.Background(), newRootTask("ship the feature", "build"), 5)

	assertBatchShape(t, subs, 5)
	if !strings.Contains(subs[0].Instruction, "Outline the overall design") {
		t.Errorf("build template not used: %q", subs[0].Instruction)
	}
}

func TestDecompose_TargetBelowOne(t *testing.T) {
	d := New(nil)

	subs := d.Decompose(context.Background(), newRootTask("tiny task", ""), 0)

	assertBatchShape(t, subs, 1)
	if subs[0].Index != 0 || subs[0].Total != 1 {
		t.Errorf("degenerate batch numbered %d of %d, want 0 of 1", subs[0].Index, subs[0].Total)
	}
}

func TestDecompose_CancelledContextFallsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fake := &fakeProvider{err: ctx.Err()}
	d := New(fake)

	subs := d.Decompose(ctx, newRootTask("interrupted task", "analyze"), 3)

	assertBatchShape(t, subs, 3)
	if !strings.Contains(subs[0].Instruction, "Describe the overall structure") {
		t.Errorf("analyze template not used: %q", subs[0].Instruction)
	}
}

func TestTruncateToTarget_KeepsAnchorAndHighestPriority(t *testing.T) {
	subs := []*models.SubTask{
		{ID: "a", Instruction: "anchor", Priority: 0},
		{ID: "b", Instruction: "low", Priority: 1},
		{ID: "c", Instruction: "mid", Priority: 5},
		{ID: "d", Instruction: "high", Priority: 9},
	}

	out := truncateToTarget(subs, 2)

	if len(out) != 2 {
		t.Fatalf("got %d subtasks, want 2", len(out))
	}
	if out[0].ID != "a" {
		t.Errorf("anchor dropped, first kept subtask is %q", out[0].ID)
	}
	if out[1].ID != "d" {
		t.Errorf("highest-priority subtask not kept, got %q", out[1].ID)
	}
}

func TestTruncateToTarget_EqualPrioritiesKeepOrder(t *testing.T) {
	subs := []*models.SubTask{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"},
	}

	out := truncateToTarget(subs, 3)

	want := []string{"a", "b", "c"}
	for i, w := range want {
		if out[i].ID != w {
			t.Errorf("position %d = %q, want %q", i, out[i].ID, w)
		}
	}
}

func TestBuildPrompt_IncludesHint(t *testing.T) {
	withHint := buildPrompt(newRootTask("task", "research"), 5)
	if !strings.Contains(withHint, "research task") {
		t.Errorf("prompt does not mention the domain hint: %q", withHint)
	}

	plain := buildPrompt(newRootTask("task", ""), 5)
	if strings.Contains(plain, "Approach this as a") {
		t.Errorf("hint line present without a hint: %q", plain)
	}
}
