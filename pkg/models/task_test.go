package models

import (
	"testing"
	"time"
)

func TestSubTask_Valid(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		sub  SubTask
		want bool
	}{
		{
			"well-formed subtask is valid",
			SubTask{ID: "st-1", Index: 0, Total: 3, Instruction: "do part 1", CreatedAt: now},
			true,
		},
		{
			"last index in batch is valid",
			SubTask{ID: "st-3", Index: 2, Total: 3, Instruction: "do part 3", CreatedAt: now},
			true,
		},
		{
			"singleton batch is valid",
			SubTask{ID: "st-1", Index: 0, Total: 1, Instruction: "do everything", CreatedAt: now},
			true,
		},
		{
			"missing id is invalid",
			SubTask{Index: 0, Total: 1, Instruction: "x"},
			false,
		},
		{
			"empty instruction is invalid",
			SubTask{ID: "st-1", Index: 0, Total: 1},
			false,
		},
		{
			"index equal to total is invalid",
			SubTask{ID: "st-1", Index: 3, Total: 3, Instruction: "x"},
			false,
		},
		{
			"negative index is invalid",
			SubTask{ID: "st-1", Index: -1, Total: 3, Instruction: "x"},
			false,
		},
		{
			"zero total is invalid",
			SubTask{ID: "st-1", Index: 0, Total: 0, Instruction: "x"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sub.Valid(); got != tt.want {
				t.Errorf("SubTask.Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubTask_DefaultValues(t *testing.T) {
	sub := SubTask{}

	if sub.Priority != 0 {
		t.Errorf("SubTask.Priority default should be 0, got %d", sub.Priority)
	}
	if sub.DependsOn != nil {
		t.Errorf("SubTask.DependsOn default should be nil, got %v", sub.DependsOn)
	}
	if sub.Valid() {
		t.Error("zero SubTask should not be valid")
	}
}

func TestRootTask_Fields(t *testing.T) {
	task := RootTask{
		ID:          "rt-1",
		Instruction: "summarize topic X",
		DomainHint:  "research",
	}

	if task.ID != "rt-1" {
		t.Errorf("RootTask.ID = %q, want %q", task.ID, "rt-1")
	}
	if task.DomainHint != "research" {
		t.Errorf("RootTask.DomainHint = %q, want %q", task.DomainHint, "research")
	}
}
