package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

const (
	// sendBuffer is the per-client outbound queue length.
	sendBuffer = 256

	// DefaultMaxConnsPerUser caps concurrent relay connections per account.
	DefaultMaxConnsPerUser = 4

	writeTimeout = 5 * time.Second
)

// ErrTooManyConnections is returned by Register when the user already holds
// the maximum number of relay connections.
var ErrTooManyConnections = errors.New("too many relay connections for user")

// Client is one relay connection.
type Client struct {
	conn   *websocket.Conn
	userID string
	send   chan Message
	logger *zap.Logger
}

func newClient(conn *websocket.Conn, userID string, logger *zap.Logger) *Client {
	return &Client{
		conn:   conn,
		userID: userID,
		send:   make(chan Message, sendBuffer),
		logger: logger,
	}
}

// enqueue queues msg for the write pump, waiting while the buffer is full.
// It gives up when ctx ends so a stalled reader cannot block generation.
func (c *Client) enqueue(ctx context.Context, msg Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// writePump drains the send queue onto the socket until the queue closes,
// ctx ends, or a write fails.
func (c *Client) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, c.conn, msg)
			cancel()
			if err != nil {
				c.logger.Debug("websocket write error", zap.String("user_id", c.userID), zap.Error(err))
				return
			}
		}
	}
}

// Hub indexes relay connections by user.
type Hub struct {
	mu         sync.RWMutex
	users      map[string]map[*Client]struct{}
	count      int
	maxPerUser int
	logger     *zap.Logger
}

// NewHub creates a hub allowing maxPerUser connections per user. Zero or
// less means no cap.
func NewHub(maxPerUser int, logger *zap.Logger) *Hub {
	return &Hub{
		users:      make(map[string]map[*Client]struct{}),
		maxPerUser: maxPerUser,
		logger:     logger,
	}
}

// Register adds c to the hub, or returns ErrTooManyConnections.
func (h *Hub) Register(c *Client) error {
	h.mu.Lock()
	conns := h.users[c.userID]
	if h.maxPerUser > 0 && len(conns) >= h.maxPerUser {
		h.mu.Unlock()
		return ErrTooManyConnections
	}
	if conns == nil {
		conns = make(map[*Client]struct{})
		h.users[c.userID] = conns
	}
	conns[c] = struct{}{}
	h.count++
	h.mu.Unlock()

	connectedClients.Inc()
	h.logger.Debug("websocket client connected", zap.String("user_id", c.userID))
	return nil
}

// Unregister removes c and closes its send queue. Nothing may enqueue to c
// afterwards. Unregistering an unknown client is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	conns := h.users[c.userID]
	_, ok := conns[c]
	if ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.users, c.userID)
		}
		h.count--
		close(c.send)
	}
	h.mu.Unlock()

	if ok {
		connectedClients.Dec()
		h.logger.Debug("websocket client disconnected", zap.String("user_id", c.userID))
	}
}

// Broadcast offers msg to every client. A client whose queue is full
// misses it.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conns := range h.users {
		for c := range conns {
			h.offer(c, msg)
		}
	}
}

// offer is a non-blocking enqueue. Caller holds h.mu.
func (h *Hub) offer(c *Client, msg Message) {
	select {
	case c.send <- msg:
	default:
		h.logger.Warn("client send buffer full, dropping message",
			zap.String("user_id", c.userID),
			zap.String("type", string(msg.Type)))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// UserCount returns the number of connections held by userID.
func (h *Hub) UserCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}
