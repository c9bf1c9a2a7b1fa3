package generationtest

import (
	"context"
	"strings"
	"sync"

	"github.com/HerbHall/campaigndesk/pkg/generation"
)

// Compile-time interface guard.
var _ generation.Generator = (*Fake)(nil)

// Fake is an in-memory generation.Generator. Replies come from Reply when
// set, otherwise from Responses in order (the last one repeats). Err, when
// non-nil, is returned from every call.
type Fake struct {
	Reply     func(messages []generation.Message) (string, error)
	Responses []string
	Err       error

	mu    sync.Mutex
	calls [][]generation.Message
}

// NewFake returns a Fake that answers every call with the given responses.
func NewFake(responses ...string) *Fake {
	return &Fake{Responses: responses}
}

func (f *Fake) Generate(ctx context.Context, prompt string, opts ...generation.CallOption) (string, error) {
	return f.Chat(ctx, []generation.Message{generation.UserMessage(prompt)}, opts...)
}

func (f *Fake) Chat(ctx context.Context, messages []generation.Message, opts ...generation.CallOption) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", generation.NewError(generation.ErrCodeCanceled, "generation canceled or timed out", err)
	}

	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, messages)
	f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}

	var text string
	switch {
	case f.Reply != nil:
		var err error
		if text, err = f.Reply(messages); err != nil {
			return "", err
		}
	case len(f.Responses) > 0:
		text = f.Responses[min(n, len(f.Responses)-1)]
	}

	call := generation.ApplyOptions(opts...)
	if call.StreamFunc != nil {
		// Emit word-sized deltas so stream consumers see more than one chunk.
		for _, d := range splitDeltas(text) {
			if err := call.StreamFunc(ctx, d); err != nil {
				return "", err
			}
		}
	}
	return text, nil
}

// Calls returns every conversation received so far.
func (f *Fake) Calls() [][]generation.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]generation.Message, len(f.calls))
	copy(out, f.calls)
	return out
}

// LastPrompt returns the text of the last message of the most recent call.
func (f *Fake) LastPrompt() string {
	calls := f.Calls()
	if len(calls) == 0 {
		return ""
	}
	msgs := calls[len(calls)-1]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Content.Text()
}

func splitDeltas(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	for len(text) > 0 {
		i := strings.IndexByte(text, ' ')
		if i < 0 {
			out = append(out, text)
			break
		}
		out = append(out, text[:i+1])
		text = text[i+1:]
	}
	return out
}
