// Package generation provides the public types for talking to the remote
// text-generation service: messages, call options, and typed errors.
// The client implementation lives in internal/generation.
package generation

import "context"

// Generator produces the model's textual reply for a conversation.
type Generator interface {
	// Generate wraps prompt into a single user message and calls Chat.
	Generate(ctx context.Context, prompt string, opts ...CallOption) (string, error)

	// Chat sends the ordered messages and returns the assembled reply.
	Chat(ctx context.Context, messages []Message, opts ...CallOption) (string, error)
}

// FrameHook observes the streamed delta protocol. Implementations must be
// safe for concurrent use when shared between calls.
type FrameHook interface {
	// OnDelta is called for every delta appended to the accumulator.
	OnDelta(delta string)

	// OnSkip is called for a "0:" line that was discarded. err is nil when
	// the line decoded but did not have the delta shape.
	OnSkip(line string, err error)
}

// CallOption configures a single Generate or Chat call.
type CallOption func(*CallConfig)

// CallConfig holds the resolved configuration for a single call.
// Users interact through CallOption functions, not this struct directly.
type CallConfig struct {
	StreamFunc func(ctx context.Context, delta string) error
	FrameHook  FrameHook
}

// WithStreamFunc registers fn to receive each delta as it is appended.
// Return a non-nil error to abort the call. Ignored in single-shot mode
// except for one invocation with the full text.
func WithStreamFunc(fn func(ctx context.Context, delta string) error) CallOption {
	return func(c *CallConfig) { c.StreamFunc = fn }
}

// WithFrameHook overrides the client's frame hook for this call.
func WithFrameHook(h FrameHook) CallOption {
	return func(c *CallConfig) { c.FrameHook = h }
}

// ApplyOptions creates a CallConfig from a list of options.
func ApplyOptions(opts ...CallOption) CallConfig {
	var cfg CallConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
