// Package ws relays generation streams to WebSocket clients.
package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/HerbHall/campaigndesk/internal/auth"
	"github.com/HerbHall/campaigndesk/pkg/generation"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

// maxRequestSize bounds one client message; image parts make requests large.
const maxRequestSize = 4 << 20

// MaxInflightPerConn caps concurrent generations on one connection. A
// request over the cap is answered with a generate.error carrying
// ErrCodeBusy.
const MaxInflightPerConn = 2

// ErrCodeBusy is the error code of a request refused by MaxInflightPerConn.
const ErrCodeBusy = "too_many_requests"

// Handler provides the generation relay endpoint.
type Handler struct {
	hub    *Hub
	gen    generation.Generator
	tokens *auth.TokenService
	logger *zap.Logger
}

// Compile-time check that Handler implements the server interface.
var _ interface {
	RegisterRoutes(mux *http.ServeMux)
} = (*Handler)(nil)

// NewHandler creates a WebSocket handler relaying to gen.
func NewHandler(gen generation.Generator, tokens *auth.TokenService, logger *zap.Logger) *Handler {
	return &Handler{
		hub:    NewHub(DefaultMaxConnsPerUser, logger),
		gen:    gen,
		tokens: tokens,
		logger: logger,
	}
}

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/generate", h.handleGenerate)
}

// ClientCount returns the number of connected clients.
func (h *Handler) ClientCount() int {
	return h.hub.ClientCount()
}

// Notify sends a notice to every connected client.
func (h *Handler) Notify(text string) {
	h.hub.Broadcast(Message{
		Type:      MessageNotice,
		Timestamp: time.Now(),
		Data:      NoticeData{Message: text},
	})
}

// handleGenerate upgrades the connection and serves generate requests until
// the client disconnects. Each request streams generate.delta messages and
// ends with generate.done or generate.error.
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	// Browsers cannot set headers on WebSocket requests, so the JWT rides in the query.
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token parameter", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokens.ValidateAccessToken(token)
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusUnauthorized)
		return
	}

	// Register before the upgrade so an over-limit caller gets a plain 429.
	client := newClient(nil, claims.UserID, h.logger)
	if err := h.hub.Register(client); err != nil {
		rejectedConnections.Inc()
		http.Error(w, err.Error(), http.StatusTooManyRequests)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origin is not checked; the token authenticates the caller.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.hub.Unregister(client)
		h.logger.Error("websocket accept failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(maxRequestSize)
	client.conn = conn

	ctx, cancel := context.WithCancel(r.Context())
	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	var inflight sync.WaitGroup
	h.readRequests(ctx, client, &inflight)

	// Stop in-flight generations before closing the send channel they write to.
	cancel()
	inflight.Wait()
	h.hub.Unregister(client)
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}

// readRequests blocks until the client disconnects, starting one generation
// per request received, at most MaxInflightPerConn at a time.
func (h *Handler) readRequests(ctx context.Context, c *Client, inflight *sync.WaitGroup) {
	slots := make(chan struct{}, MaxInflightPerConn)
	for {
		var req GenerateRequest
		if err := wsjson.Read(ctx, c.conn, &req); err != nil {
			var ce websocket.CloseError
			if !errors.As(err, &ce) && ctx.Err() == nil {
				h.logger.Debug("websocket read ended", zap.Error(err))
			}
			return
		}
		if len(req.Messages) == 0 {
			_ = c.enqueue(ctx, Message{
				Type:      MessageGenerateError,
				RequestID: req.ID,
				Timestamp: time.Now(),
				Data:      ErrorData{Error: "messages are required"},
			})
			continue
		}

		select {
		case slots <- struct{}{}:
		default:
			relayedRequests.WithLabelValues("rejected").Inc()
			_ = c.enqueue(ctx, Message{
				Type:      MessageGenerateError,
				RequestID: req.ID,
				Timestamp: time.Now(),
				Data:      ErrorData{Error: "too many generations in flight", Code: ErrCodeBusy},
			})
			continue
		}

		inflight.Add(1)
		go func() {
			defer func() {
				<-slots
				inflight.Done()
			}()
			h.relay(ctx, c, req)
		}()
	}
}

// relay runs one generation and forwards its deltas to the client.
func (h *Handler) relay(ctx context.Context, c *Client, req GenerateRequest) {
	forward := func(ctx context.Context, delta string) error {
		return c.enqueue(ctx, Message{
			Type:      MessageGenerateDelta,
			RequestID: req.ID,
			Timestamp: time.Now(),
			Data:      DeltaData{Delta: delta},
		})
	}

	text, err := h.gen.Chat(ctx, req.Messages, generation.WithStreamFunc(forward))
	if err != nil {
		relayedRequests.WithLabelValues("error").Inc()
		data := ErrorData{Error: err.Error()}
		var ge *generation.Error
		if errors.As(err, &ge) {
			data.Code = ge.Code
		}
		h.logger.Debug("relayed generation failed",
			zap.String("user_id", c.userID),
			zap.String("request_id", req.ID),
			zap.Error(err))
		_ = c.enqueue(ctx, Message{
			Type:      MessageGenerateError,
			RequestID: req.ID,
			Timestamp: time.Now(),
			Data:      data,
		})
		return
	}

	relayedRequests.WithLabelValues("ok").Inc()
	_ = c.enqueue(ctx, Message{
		Type:      MessageGenerateDone,
		RequestID: req.ID,
		Timestamp: time.Now(),
		Data:      DoneData{Text: text},
	})
}
