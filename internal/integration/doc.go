// Package integration provides cross-package integration tests for flotilla.
// These tests drive the orchestrator through the static provider and verify
// that runs survive the history store and reach the event bus intact.
//
// Build tag: integration
// Run with: go test -tags integration ./internal/integration/...
package integration
