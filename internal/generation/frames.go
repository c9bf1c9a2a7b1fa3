package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/HerbHall/campaigndesk/pkg/generation"
	"go.uber.org/zap"
)

// Wire markers of the streamed delta protocol.
const (
	deltaPrefix = "0:"
	deltaType   = "text-delta"
)

var errNotDeltaString = errors.New("textDelta is not a string")

// deltaFrame is the JSON object carried after the "0:" prefix.
type deltaFrame struct {
	Type      string          `json:"type"`
	TextDelta json.RawMessage `json:"textDelta"`
}

// frameDecoder splits a byte stream into newline-terminated records and
// accumulates the text deltas they carry. Bytes after the last newline stay
// buffered until more data arrives, so records and UTF-8 sequences split
// across reads are reassembled. Each call owns its decoder.
type frameDecoder struct {
	ctx    context.Context
	buf    []byte
	out    strings.Builder
	hook   generation.FrameHook
	stream func(ctx context.Context, delta string) error
}

func newFrameDecoder(ctx context.Context, hook generation.FrameHook, stream func(context.Context, string) error) *frameDecoder {
	return &frameDecoder{ctx: ctx, hook: hook, stream: stream}
}

// Write feeds a chunk of the response body. It returns an error only when
// the stream callback aborts; malformed records never fail.
func (d *frameDecoder) Write(chunk []byte) error {
	d.buf = append(d.buf, chunk...)

	start := 0
	for {
		i := bytes.IndexByte(d.buf[start:], '\n')
		if i < 0 {
			break
		}
		line := d.buf[start : start+i]
		start += i + 1
		if err := d.handleLine(line); err != nil {
			return err
		}
	}

	// Keep only the trailing partial record.
	n := copy(d.buf, d.buf[start:])
	d.buf = d.buf[:n]
	return nil
}

// Text returns the accumulated deltas. Any buffered partial record is not
// part of the result.
func (d *frameDecoder) Text() string {
	return d.out.String()
}

// Pending returns the number of buffered bytes not yet terminated by a newline.
func (d *frameDecoder) Pending() int {
	return len(d.buf)
}

func (d *frameDecoder) handleLine(line []byte) error {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	if !bytes.HasPrefix(line, []byte(deltaPrefix)) {
		return nil
	}

	var frame deltaFrame
	if err := json.Unmarshal(line[len(deltaPrefix):], &frame); err != nil {
		d.skip(line, err)
		return nil
	}
	if frame.Type != deltaType || len(frame.TextDelta) == 0 {
		d.skip(line, nil)
		return nil
	}

	var delta string
	if err := json.Unmarshal(frame.TextDelta, &delta); err != nil {
		d.skip(line, errNotDeltaString)
		return nil
	}
	if delta == "" {
		return nil
	}

	d.out.WriteString(delta)
	if d.hook != nil {
		d.hook.OnDelta(delta)
	}
	if d.stream != nil {
		return d.stream(d.ctx, delta)
	}
	return nil
}

func (d *frameDecoder) skip(line []byte, err error) {
	if d.hook != nil {
		d.hook.OnSkip(string(line), err)
	}
}

// logHook is the default frame hook: it logs discarded frames and feeds the
// Prometheus counters.
type logHook struct {
	logger *zap.Logger
}

func (h logHook) OnDelta(string) {
	deltasTotal.Inc()
}

func (h logHook) OnSkip(line string, err error) {
	framesSkippedTotal.Inc()
	h.logger.Warn("failed to parse stream line",
		zap.String("line", truncate(line, 200)),
		zap.Error(err),
	)
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
