// Package generationtest provides a fake generator and shared contract
// tests that any generation.Generator implementation should pass.
package generationtest

import (
	"context"
	"strings"
	"testing"

	"github.com/HerbHall/campaigndesk/pkg/generation"
)

// TestGeneratorContract runs behavioral contract tests against a generator.
// The factory must return a generator whose reply to any conversation is
// non-empty. Call it from the implementation's _test.go:
//
//	func TestContract(t *testing.T) {
//	    generationtest.TestGeneratorContract(t, func() generation.Generator { return newClient(t) })
//	}
func TestGeneratorContract(t *testing.T, factory func() generation.Generator) {
	t.Helper()

	t.Run("Generate_returns_non_empty_text", func(t *testing.T) {
		g := factory()
		text, err := g.Generate(context.Background(), "Say hello in exactly three words")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if text == "" {
			t.Error("Generate() returned empty text")
		}
	})

	t.Run("Generate_matches_single_user_message_chat", func(t *testing.T) {
		g := factory()
		ctx := context.Background()
		a, err := g.Generate(ctx, "ping")
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		b, err := g.Chat(ctx, []generation.Message{generation.UserMessage("ping")})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if a != b {
			t.Errorf("Generate() = %q, Chat() = %q", a, b)
		}
	})

	t.Run("Chat_with_conversation_history", func(t *testing.T) {
		g := factory()
		text, err := g.Chat(context.Background(), []generation.Message{
			generation.UserMessage("Remember the number 4."),
			generation.AssistantMessage("Noted."),
			generation.UserMessage("Which number?"),
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if text == "" {
			t.Error("Chat() returned empty text")
		}
	})

	t.Run("StreamFunc_deltas_concatenate_to_result", func(t *testing.T) {
		g := factory()
		var sb strings.Builder
		text, err := g.Generate(context.Background(), "stream please",
			generation.WithStreamFunc(func(_ context.Context, d string) error {
				sb.WriteString(d)
				return nil
			}))
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if sb.String() != text {
			t.Errorf("streamed %q, returned %q", sb.String(), text)
		}
	})

	t.Run("Generate_cancelled_context", func(t *testing.T) {
		g := factory()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := g.Generate(ctx, "Write a very long essay about everything")
		if err == nil {
			t.Fatal("Generate() with cancelled context should return error")
		}
		if !generation.IsCanceled(err) {
			t.Errorf("error = %v, want canceled", err)
		}
	})
}
