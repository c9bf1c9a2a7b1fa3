// Package generation implements the client for the remote text-generation
// service. A call POSTs the conversation once and assembles the reply from
// either a streamed delta protocol or a single JSON body.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/HerbHall/campaigndesk/pkg/generation"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Compile-time interface guard.
var _ generation.Generator = (*Client)(nil)

// maxErrorBody bounds how much of a failed response is read into the error.
const maxErrorBody = 1 << 16

// Client implements generation.Generator over HTTP. It holds no per-call
// state and is safe for concurrent use.
type Client struct {
	endpoint   string
	baseURL    *url.URL
	httpClient *http.Client
	cfg        Config
	limiter    *rate.Limiter
	hook       generation.FrameHook
	logger     *zap.Logger
}

// New creates a generation client. It does not verify connectivity;
// call Heartbeat explicitly if you need an early health check.
// A nil hook installs the default hook, which logs skipped frames.
func New(cfg Config, hook generation.FrameHook, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeStream
	}
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = 4096
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	endpoint, base, err := resolveEndpoint(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	if hook == nil {
		hook = logHook{logger: logger}
	}

	c := &Client{
		endpoint:   endpoint,
		baseURL:    base,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		hook:       hook,
		logger:     logger,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

// resolveEndpoint resolves ChatPath against base, replacing any base path.
func resolveEndpoint(base string) (string, *url.URL, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", nil, fmt.Errorf("parse generation base url %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", nil, fmt.Errorf("generation base url %q must be absolute", base)
	}
	return u.ResolveReference(&url.URL{Path: ChatPath}).String(), u, nil
}

// Endpoint returns the resolved URL every call is POSTed to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Mode returns the configured response-consumption mode.
func (c *Client) Mode() Mode {
	return c.cfg.Mode
}

// Generate wraps prompt into a single user message and calls Chat.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...generation.CallOption) (string, error) {
	return c.Chat(ctx, []generation.Message{generation.UserMessage(prompt)}, opts...)
}

// Chat sends messages to the service and returns the assembled reply.
// Transport and protocol failures are logged and returned; malformed stream
// frames are passed to the frame hook and skipped.
func (c *Client) Chat(ctx context.Context, messages []generation.Message, opts ...generation.CallOption) (string, error) {
	call := generation.ApplyOptions(opts...)
	hook := call.FrameHook
	if hook == nil {
		hook = c.hook
	}

	c.logger.Debug("generating text",
		zap.String("url", c.endpoint),
		zap.Int("message_count", len(messages)),
		zap.String("mode", string(c.cfg.Mode)),
	)

	start := time.Now()
	text, err := c.chat(ctx, messages, call, hook)
	requestDuration.WithLabelValues(string(c.cfg.Mode)).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(string(c.cfg.Mode), outcome(err)).Inc()

	if err != nil {
		c.logger.Error("error generating text", zap.String("url", c.endpoint), zap.Error(err))
		return "", err
	}

	c.logger.Debug("text generated", zap.String("preview", truncate(text, 100)))
	return text, nil
}

func (c *Client) chat(ctx context.Context, messages []generation.Message, call generation.CallConfig, hook generation.FrameHook) (string, error) {
	if c.limiter != nil {
		// Wait fails early when the deadline is too close to get a token.
		if err := c.limiter.Wait(ctx); err != nil {
			return "", generation.NewError(generation.ErrCodeCanceled, "waiting for rate limiter", err)
		}
	}

	body, err := json.Marshal(generation.Request{Messages: messages})
	if err != nil {
		return "", generation.NewError(generation.ErrCodeEncoding, "marshal generation request", err)
	}

	respBody, err := c.doPost(ctx, body)
	if err != nil {
		return "", mapError(err)
	}
	defer respBody.Close()

	switch c.cfg.Mode {
	case ModeSingle:
		return c.readSingle(ctx, respBody, call)
	default:
		return c.readStream(ctx, respBody, call, hook)
	}
}

// doPost sends the request and returns the response body.
// The caller must close the returned body.
func (c *Client) doPost(ctx context.Context, body []byte) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		se := parseStatusError(resp)
		c.logger.Error("generation API error",
			zap.Int("status", se.StatusCode),
			zap.String("status_text", se.Status),
			zap.String("body", truncate(se.Body, 500)),
			zap.String("url", c.endpoint),
		)
		return nil, se
	}

	// An empty 200 is a body with no records; only a status that cannot
	// carry content has no body at all.
	if resp.Body == nil || noBodyStatus(resp.StatusCode) {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, generation.NewError(generation.ErrCodeNoBody, "no response body reader available", nil)
	}

	return resp.Body, nil
}

func noBodyStatus(code int) bool {
	return code == http.StatusNoContent || code == http.StatusResetContent || code == http.StatusNotModified
}

// parseStatusError reads the failed response body best-effort. A read
// failure is swallowed and replaced by "Unknown error".
func parseStatusError(resp *http.Response) *generation.Error {
	text := "Unknown error"
	if resp.Body != nil {
		if raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); err == nil {
			text = string(raw)
		}
	}
	return generation.NewStatusError(resp.StatusCode, resp.Status, text)
}

// readStream consumes the delta stream until EOF.
func (c *Client) readStream(ctx context.Context, body io.Reader, call generation.CallConfig, hook generation.FrameHook) (string, error) {
	dec := newFrameDecoder(ctx, hook, call.StreamFunc)
	buf := make([]byte, c.cfg.ReadBufferSize)

	for {
		n, err := body.Read(buf)
		if n > 0 {
			if sErr := dec.Write(buf[:n]); sErr != nil {
				return "", sErr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return "", mapError(ctx.Err())
			}
			return "", generation.NewError(generation.ErrCodeTransport, "read generation stream", err)
		}
	}

	if p := dec.Pending(); p > 0 {
		c.logger.Debug("discarding unterminated trailing record", zap.Int("bytes", p))
	}
	return dec.Text(), nil
}

// readSingle decodes one JSON object and returns its text field.
func (c *Client) readSingle(ctx context.Context, body io.Reader, call generation.CallConfig) (string, error) {
	var resp singleResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		if ctx.Err() != nil {
			return "", mapError(ctx.Err())
		}
		return "", generation.NewError(generation.ErrCodeEncoding, "decode generation response", err)
	}

	if call.StreamFunc != nil && resp.Text != "" {
		if err := call.StreamFunc(ctx, resp.Text); err != nil {
			return "", err
		}
	}
	return resp.Text, nil
}

// Heartbeat checks whether the generation service is reachable. Any
// response below 500 counts as reachable.
func (c *Client) Heartbeat(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.String(), http.NoBody)
	if err != nil {
		return mapError(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mapError(err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 500 {
		return generation.NewStatusError(resp.StatusCode, resp.Status, "heartbeat failed")
	}
	return nil
}

// --- wire types (internal) ---

type singleResponse struct {
	Text string `json:"text"`
}
