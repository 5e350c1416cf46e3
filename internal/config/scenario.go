package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is a YAML run request: the root task plus optional overrides of
// the run defaults. Pointer and string fields distinguish "not set" from a
// zero value, so a scenario can legitimately request zero workers.
type Scenario struct {
	// Instruction is the root task. Required.
	Instruction string `yaml:"instruction"`
	// DomainHint optionally selects a decomposition strategy.
	DomainHint string `yaml:"domain_hint"`
	// Workers overrides run.workers when set.
	Workers *int `yaml:"workers"`
	// Concurrency overrides run.concurrency when set.
	Concurrency *int `yaml:"concurrency"`
	// TaskTimeout overrides run.task_timeout when set ("90s", "2m").
	TaskTimeout string `yaml:"task_timeout"`
	// MaxRetries overrides run.max_retries when set.
	MaxRetries *int `yaml:"max_retries"`
	// RetryDelay overrides run.retry_delay when set.
	RetryDelay string `yaml:"retry_delay"`
	// Backoff overrides run.backoff when set.
	Backoff string `yaml:"backoff"`
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if strings.TrimSpace(s.Instruction) == "" {
		return nil, fmt.Errorf("scenario %s has no instruction", path)
	}

	return &s, nil
}

// ApplyTo overlays the scenario's overrides onto the given run defaults and
// returns the merged run configuration.
func (s *Scenario) ApplyTo(run RunConfig) (RunConfig, error) {
	if s.DomainHint != "" {
		run.DomainHint = s.DomainHint
	}
	if s.Workers != nil {
		run.Workers = *s.Workers
	}
	if s.Concurrency != nil {
		run.Concurrency = *s.Concurrency
	}
	if s.MaxRetries != nil {
		run.MaxRetries = *s.MaxRetries
	}
	if s.Backoff != "" {
		run.Backoff = s.Backoff
	}

	if s.TaskTimeout != "" {
		d, err := time.ParseDuration(s.TaskTimeout)
		if err != nil {
			return run, fmt.Errorf("scenario task_timeout: %w", err)
		}
		run.TaskTimeout = d
	}
	if s.RetryDelay != "" {
		d, err := time.ParseDuration(s.RetryDelay)
		if err != nil {
			return run, fmt.Errorf("scenario retry_delay: %w", err)
		}
		run.RetryDelay = d
	}

	return run, nil
}
