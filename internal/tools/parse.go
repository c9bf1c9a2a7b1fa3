package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Tool errors.
var (
	ErrEmptyInput    = errors.New("input is required")
	ErrInvalidFormat = errors.New("invalid response format")
)

// fenceReplacer strips markdown code fences the model adds despite the
// prompt asking for bare JSON. Longer patterns are listed first.
var fenceReplacer = strings.NewReplacer(
	"```json\n", "",
	"```json", "",
	"```\n", "",
	"```", "",
)

// CleanJSON trims s and removes ```json / ``` fences anywhere in it.
func CleanJSON(s string) string {
	return strings.TrimSpace(fenceReplacer.Replace(strings.TrimSpace(s)))
}

// decodeReply cleans reply and decodes it into v. Failures wrap ErrInvalidFormat.
func decodeReply(reply string, v any) error {
	if err := json.Unmarshal([]byte(CleanJSON(reply)), v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return nil
}
