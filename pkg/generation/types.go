package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Role constants for the Message.Role field.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry of the conversation sent to the service.
type Message struct {
	Role    string  `json:"role"` // RoleUser or RoleAssistant; not validated.
	Content Content `json:"content"`
}

// UserMessage returns a user message with plain text content.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: TextContent(text)}
}

// AssistantMessage returns an assistant message with plain text content.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: TextContent(text)}
}

// Request is the body POSTed to the generation endpoint.
type Request struct {
	Messages []Message `json:"messages"`
}

// Content is either plain text or an ordered list of parts.
// On the wire it is a JSON string or a JSON array respectively.
type Content struct {
	text  string
	parts []Part
	multi bool
}

// TextContent returns content that encodes as a plain JSON string.
func TextContent(text string) Content {
	return Content{text: text}
}

// PartsContent returns content that encodes as an array of typed parts.
func PartsContent(parts ...Part) Content {
	return Content{parts: parts, multi: true}
}

// IsParts reports whether the content is a part list rather than plain text.
func (c Content) IsParts() bool { return c.multi }

// Text returns the plain text, or the concatenated text parts for a part list.
func (c Content) Text() string {
	if !c.multi {
		return c.text
	}
	var buf bytes.Buffer
	for _, p := range c.parts {
		if tp, ok := p.(TextPart); ok {
			buf.WriteString(tp.Text)
		}
	}
	return buf.String()
}

// Parts returns the part list. It is nil for plain text content.
func (c Content) Parts() []Part { return c.parts }

func (c Content) MarshalJSON() ([]byte, error) {
	if !c.multi {
		return json.Marshal(c.text)
	}
	if c.parts == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.parts)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = TextContent(s)
		return nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("content must be a string or an array of parts: %w", err)
	}
	parts := make([]Part, 0, len(raws))
	for i, raw := range raws {
		p, err := unmarshalPart(raw)
		if err != nil {
			return fmt.Errorf("content part %d: %w", i, err)
		}
		parts = append(parts, p)
	}
	*c = PartsContent(parts...)
	return nil
}

// PartType discriminates content parts.
type PartType string

const (
	PartTypeText  PartType = "text"
	PartTypeImage PartType = "image"
)

// Part is one element of a multi-part message. The only implementations are
// TextPart and ImagePart.
type Part interface {
	PartType() PartType
	isPart()
}

// TextPart carries a text fragment.
type TextPart struct {
	Text string
}

func (TextPart) PartType() PartType { return PartTypeText }
func (TextPart) isPart()            {}

func (p TextPart) MarshalJSON() ([]byte, error) {
	return json.Marshal(wirePart{Type: PartTypeText, Text: p.Text})
}

// ImagePart carries an image reference (URL or data URI). The client passes
// it through untouched.
type ImagePart struct {
	Image string
}

func (ImagePart) PartType() PartType { return PartTypeImage }
func (ImagePart) isPart()            {}

func (p ImagePart) MarshalJSON() ([]byte, error) {
	return json.Marshal(wirePart{Type: PartTypeImage, Image: p.Image})
}

type wirePart struct {
	Type  PartType `json:"type"`
	Text  string   `json:"text,omitempty"`
	Image string   `json:"image,omitempty"`
}

func unmarshalPart(raw json.RawMessage) (Part, error) {
	var w wirePart
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	switch w.Type {
	case PartTypeText:
		return TextPart{Text: w.Text}, nil
	case PartTypeImage:
		return ImagePart{Image: w.Image}, nil
	default:
		return nil, fmt.Errorf("unknown part type %q", w.Type)
	}
}
