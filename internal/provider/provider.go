// Package provider abstracts the external capability executors that agents
// delegate their work to. Implementations are swappable by configuration and
// are never selected by runtime type inspection.
package provider

import "context"

// Request is one unit of work handed to a provider.
type Request struct {
	// Instruction is the free-text work description.
	Instruction string
	// Context is optional supporting material, injected as a system prompt
	// by providers that distinguish one.
	Context string
	// MaxTokens caps the response size. Zero means the provider default.
	MaxTokens int64
}

// Response is a provider's successful result.
type Response struct {
	// Output is the provider-defined payload.
	Output string
	// TokensIn is the provider-reported input token count, if any.
	TokensIn int64
	// TokensOut is the provider-reported output token count, if any.
	TokensOut int64
	// Cost is the estimated cost of the call in dollars.
	Cost float64
	// Citations lists provenance references, when the provider reports them.
	Citations []string
}

// Provider executes one instruction against an external capability.
type Provider interface {
	// Name identifies the provider for logs and error messages.
	Name() string
	// Execute runs one request to completion. Failures are reported as
	// *Error values so callers can distinguish retryable ones.
	Execute(ctx context.Context, req Request) (*Response, error)
}

// Chunk is one increment of streamed provider output.
type Chunk struct {
	// Text is the incremental payload.
	Text string
	// Done is true on the final chunk.
	Done bool
}

// StreamingProvider is implemented by providers that can deliver output
// incrementally. The final Response matches the concatenated chunks.
type StreamingProvider interface {
	Provider
	ExecuteStreaming(ctx context.Context, req Request, onChunk func(Chunk)) (*Response, error)
}
