package service

// Stream frame types, emitted in the fixed order: one metadata frame, zero or
// more content frames, then exactly one end or error frame.
const (
	EventMetadata = "metadata"
	EventContent  = "content"
	EventEnd      = "end"
	EventError    = "error"
)

// streamBuffer is the event channel capacity. The producer blocks when the
// consumer falls this far behind instead of buffering the whole reply.
const streamBuffer = 32

// StreamEvent is one frame of a streaming chat reply.
type StreamEvent struct {
	Type           string `json:"type"`
	Title          string `json:"title,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	Content        string `json:"content,omitempty"`
	Status         string `json:"status,omitempty"`
	Message        string `json:"message,omitempty"`
}
