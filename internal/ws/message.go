package ws

import (
	"time"

	"github.com/HerbHall/campaigndesk/pkg/generation"
)

// MessageType discriminates WebSocket messages.
type MessageType string

const (
	MessageGenerateDelta MessageType = "generate.delta"
	MessageGenerateDone  MessageType = "generate.done"
	MessageGenerateError MessageType = "generate.error"
	MessageNotice        MessageType = "server.notice"
)

// Message is the envelope for all server-to-client messages.
type Message struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data"`
}

// GenerateRequest is the only message a client sends. ID is echoed back as
// request_id so replies to overlapping requests can be told apart.
type GenerateRequest struct {
	ID       string               `json:"id,omitempty"`
	Messages []generation.Message `json:"messages"`
}

// DeltaData is the payload for generate.delta messages.
type DeltaData struct {
	Delta string `json:"delta"`
}

// DoneData is the payload for generate.done messages.
type DoneData struct {
	Text string `json:"text"`
}

// ErrorData is the payload for generate.error messages. Code is one of the
// generation error codes when the failure came from the service.
type ErrorData struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// NoticeData is the payload for server.notice messages.
type NoticeData struct {
	Message string `json:"message"`
}
