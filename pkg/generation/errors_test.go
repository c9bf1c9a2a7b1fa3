package generation

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNewStatusError(t *testing.T) {
	err := NewStatusError(500, "500 Internal Server Error", "server error")
	if got, want := err.Error(), "HTTP error! status: 500 - server error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !IsProtocolError(err) {
		t.Error("IsProtocolError() = false")
	}
	if StatusCode(err) != 500 {
		t.Errorf("StatusCode() = %d, want 500", StatusCode(err))
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transport bool
		noBody    bool
		protocol  bool
		canceled  bool
	}{
		{"transport", NewError(ErrCodeTransport, "x", nil), true, false, false, false},
		{"no body", NewError(ErrCodeNoBody, "x", nil), true, true, false, false},
		{"protocol", NewStatusError(404, "404 Not Found", ""), false, false, true, false},
		{"canceled", NewError(ErrCodeCanceled, "x", context.Canceled), false, false, false, true},
		{"wrapped", fmt.Errorf("outer: %w", NewError(ErrCodeTransport, "x", nil)), true, false, false, false},
		{"plain", errors.New("plain"), false, false, false, false},
		{"nil", nil, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransportError(tt.err); got != tt.transport {
				t.Errorf("IsTransportError() = %v, want %v", got, tt.transport)
			}
			if got := IsNoBodyError(tt.err); got != tt.noBody {
				t.Errorf("IsNoBodyError() = %v, want %v", got, tt.noBody)
			}
			if got := IsProtocolError(tt.err); got != tt.protocol {
				t.Errorf("IsProtocolError() = %v, want %v", got, tt.protocol)
			}
			if got := IsCanceled(tt.err); got != tt.canceled {
				t.Errorf("IsCanceled() = %v, want %v", got, tt.canceled)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := NewError(ErrCodeCanceled, "generation canceled or timed out", context.DeadlineExceeded)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("errors.Is(err, DeadlineExceeded) = false")
	}
	if got, want := err.Error(), "generation canceled or timed out: context deadline exceeded"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
