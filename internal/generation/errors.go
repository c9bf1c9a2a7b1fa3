package generation

import (
	"context"
	"errors"
	"strings"

	"github.com/HerbHall/campaigndesk/pkg/generation"
)

// mapError translates network and context errors into typed generation errors.
// Errors that are already typed pass through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var ge *generation.Error
	if errors.As(err, &ge) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return generation.NewError(generation.ErrCodeCanceled, "generation canceled or timed out", err)
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "dial tcp") {
		return generation.NewError(generation.ErrCodeTransport, "generation service unreachable", err)
	}

	return generation.NewError(generation.ErrCodeTransport, "generation request failed", err)
}

// errorCode returns the generation error code of err, or "unknown".
func errorCode(err error) string {
	var ge *generation.Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return "unknown"
}
