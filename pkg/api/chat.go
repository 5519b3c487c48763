package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	ID        string          `json:"id"`
	Sender    string          `json:"sender"` // "user" or "assistant"
	Text      string          `json:"text"`
	Image     string          `json:"image,omitempty"` // data URI or object-store reference
	Analysis  json.RawMessage `json:"analysis,omitempty"`
	IsLoading bool            `json:"isLoading,omitempty"`
}

type ChatSessionMetadata struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatSession struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	Timestamp time.Time     `json:"timestamp"`
	Messages  []ChatMessage `json:"messages"`
}

type GetSessionsResponse struct {
	Sessions []ChatSessionMetadata `json:"sessions"`
}

type SaveSessionRequest struct {
	Title string `json:"title"`
}

type RenameSessionRequest struct {
	Title string `json:"title"`
}

type SendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"` // data URI
}

type SendMessageResponse struct {
	UserMessage      ChatMessage `json:"user_message"`
	AssistantMessage ChatMessage `json:"assistant_message"`
}

// TextSegment is one typed span of a rendered message body.
type TextSegment struct {
	Type     string `json:"type"` // "text", "bold" or "code"
	Language string `json:"language,omitempty"`
	Content  string `json:"content"`
}

type MessageSegmentsResponse struct {
	MessageID string        `json:"message_id"`
	Segments  []TextSegment `json:"segments"`
}
