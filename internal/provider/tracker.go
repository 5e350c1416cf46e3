package provider

import "sync"

// TokenTracker tracks token usage across provider calls.
type TokenTracker struct {
	mu        sync.Mutex
	inputTok  int64
	outputTok int64
	calls     int

	inputPerMTok  float64
	outputPerMTok float64
}

// NewTokenTracker creates a tracker priced in dollars per million input and
// output tokens.
func NewTokenTracker(inputPerMTok, outputPerMTok float64) *TokenTracker {
	return &TokenTracker{
		inputPerMTok:  inputPerMTok,
		outputPerMTok: outputPerMTok,
	}
}

// Add records token usage from one call.
func (t *TokenTracker) Add(input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputTok += input
	t.outputTok += output
	t.calls++
}

// Total returns the total input and output tokens tracked.
func (t *TokenTracker) Total() (input, output int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inputTok, t.outputTok
}

// Calls returns the number of calls recorded.
func (t *TokenTracker) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// Reset clears all tracked usage.
func (t *TokenTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputTok = 0
	t.outputTok = 0
	t.calls = 0
}

// Cost estimates the cumulative cost in dollars at the configured pricing.
func (t *TokenTracker) Cost() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.costOfLocked(t.inputTok, t.outputTok)
}

// CostOf estimates the cost of a single call at the configured pricing.
func (t *TokenTracker) CostOf(input, output int64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.costOfLocked(input, output)
}

func (t *TokenTracker) costOfLocked(input, output int64) float64 {
	inputCost := float64(input) / 1_000_000 * t.inputPerMTok
	outputCost := float64(output) / 1_000_000 * t.outputPerMTok
	return inputCost + outputCost
}
