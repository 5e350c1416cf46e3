package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write scenario file: %v", err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `
instruction: |
  Survey the current state of battery recycling technology
domain_hint: research
workers: 12
concurrency: 6
task_timeout: 90s
max_retries: 1
retry_delay: 250ms
backoff: fixed
`)

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}

	if s.Instruction == "" {
		t.Fatal("instruction not loaded")
	}
	if s.DomainHint != "research" {
		t.Errorf("domain hint = %q", s.DomainHint)
	}
	if s.Workers == nil || *s.Workers != 12 {
		t.Errorf("workers = %v, want 12", s.Workers)
	}
	if s.Concurrency == nil || *s.Concurrency != 6 {
		t.Errorf("concurrency = %v, want 6", s.Concurrency)
	}
	if s.TaskTimeout != "90s" {
		t.Errorf("task timeout = %q", s.TaskTimeout)
	}
}

func TestLoadScenario_MinimalFile(t *testing.T) {
	path := writeScenario(t, "instruction: do the thing\n")

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}

	if s.Instruction != "do the thing" {
		t.Errorf("instruction = %q", s.Instruction)
	}
	if s.Workers != nil {
		t.Errorf("workers = %v, want unset", s.Workers)
	}
}

func TestLoadScenario_MissingInstruction(t *testing.T) {
	path := writeScenario(t, "workers: 3\n")

	if _, err := LoadScenario(path); err == nil {
		t.Error("expected error for a scenario without an instruction")
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	if _, err := LoadScenario("/nonexistent/scenario.yaml"); err == nil {
		t.Error("expected error for missing scenario file")
	}
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	path := writeScenario(t, "instruction: [unclosed\n")

	if _, err := LoadScenario(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestScenario_ApplyTo(t *testing.T) {
	base := Default().Run

	workers := 0
	s := &Scenario{
		DomainHint:  "analyze",
		Workers:     &workers,
		TaskTimeout: "45s",
		Backoff:     "fixed",
	}

	run, err := s.ApplyTo(base)
	if err != nil {
		t.Fatalf("ApplyTo failed: %v", err)
	}

	if run.Workers != 0 {
		t.Errorf("workers = %d, want the explicit zero override", run.Workers)
	}
	if run.DomainHint != "analyze" {
		t.Errorf("domain hint = %q", run.DomainHint)
	}
	if run.TaskTimeout != 45*time.Second {
		t.Errorf("task timeout = %v, want 45s", run.TaskTimeout)
	}
	if run.Backoff != "fixed" {
		t.Errorf("backoff = %q, want fixed", run.Backoff)
	}

	// Fields the scenario never mentions keep the base values.
	if run.Concurrency != base.Concurrency {
		t.Errorf("concurrency = %d, want base %d", run.Concurrency, base.Concurrency)
	}
	if run.MaxRetries != base.MaxRetries {
		t.Errorf("max retries = %d, want base %d", run.MaxRetries, base.MaxRetries)
	}
}

func TestScenario_ApplyTo_NoOverrides(t *testing.T) {
	base := Default().Run

	run, err := (&Scenario{Instruction: "task"}).ApplyTo(base)
	if err != nil {
		t.Fatalf("ApplyTo failed: %v", err)
	}

	if run != base {
		t.Errorf("run config changed with no overrides: %+v != %+v", run, base)
	}
}

func TestScenario_ApplyTo_BadDuration(t *testing.T) {
	base := Default().Run

	if _, err := (&Scenario{TaskTimeout: "ninety seconds"}).ApplyTo(base); err == nil {
		t.Error("expected error for unparseable task_timeout")
	}

	if _, err := (&Scenario{RetryDelay: "soon"}).ApplyTo(base); err == nil {
		t.Error("expected error for unparseable retry_delay")
	}
}
