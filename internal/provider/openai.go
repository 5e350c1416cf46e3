package provider

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIConfig contains configuration for creating an OpenAI provider.
type OpenAIConfig struct {
	// Model is the chat model to use (e.g., openai.ChatModelGPT4o).
	Model openai.ChatModel
	// APIKey is the OpenAI API key. If empty, uses OPENAI_API_KEY env var.
	APIKey string
	// MaxTokens caps response size when a request does not set its own.
	MaxTokens int64
}

// OpenAI executes requests against the OpenAI Chat Completions API.
type OpenAI struct {
	inner     openai.Client
	model     openai.ChatModel
	maxTokens int64
	tracker   *TokenTracker
}

var _ Provider = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI-backed provider.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	model := cfg.Model
	if model == "" {
		model = openai.ChatModelGPT4o
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	return &OpenAI{
		inner:     openai.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
		// GPT-4o pricing: $2.50/1M input, $10/1M output (approximate).
		tracker: NewTokenTracker(2.5, 10.0),
	}, nil
}

// Name identifies the provider.
func (o *OpenAI) Name() string { return "openai" }

// Tracker returns the token tracker for this provider.
func (o *OpenAI) Tracker() *TokenTracker { return o.tracker }

// Execute runs one request through the Chat Completions API.
func (o *OpenAI) Execute(ctx context.Context, req Request) (*Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = o.maxTokens
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.Context != "" {
		messages = append(messages, openai.SystemMessage(req.Context))
	}
	messages = append(messages, openai.UserMessage(req.Instruction))

	resp, err := o.inner.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:     o.model,
		Messages:  messages,
		MaxTokens: openai.Int(maxTokens),
	})
	if err != nil {
		return nil, o.wrapErr(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{
			Provider:  o.Name(),
			Kind:      KindUnknown,
			Message:   "response contained no choices",
			Retryable: true,
		}
	}

	o.tracker.Add(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	return &Response{
		Output:    resp.Choices[0].Message.Content,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
		Cost:      o.tracker.CostOf(resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
	}, nil
}

func (o *OpenAI) wrapErr(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return wrapHTTPError(o.Name(), apierr.StatusCode, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return wrapHTTPError(o.Name(), 0, err)
}
