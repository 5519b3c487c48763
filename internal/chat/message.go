package chat

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// WelcomeMessageID marks the synthetic greeting every session starts with.
// It is excluded from collaborator history.
const WelcomeMessageID = "welcome"

const welcomeText = "Hello! I'm CyGuard. Paste a suspicious message, link, or attach a screenshot below. You can save this chat session from the 'New Chat' button."

type Message struct {
	ID     string `json:"id"`
	Sender string `json:"sender"`
	Text   string `json:"text"`

	// Image is an inline data URI, or an object-store reference once a saved
	// session's screenshots have been offloaded.
	Image string `json:"image,omitempty"`

	// Analysis carries the structured collaborator payload verbatim.
	Analysis json.RawMessage `json:"analysis,omitempty"`

	// IsLoading marks a placeholder awaiting a collaborator result. Loading
	// messages never survive Snapshot, so they are never persisted.
	IsLoading bool `json:"isLoading,omitempty"`
}

func (m Message) clone() Message {
	c := m
	if m.Analysis != nil {
		c.Analysis = append(json.RawMessage(nil), m.Analysis...)
	}
	return c
}

// conversational reports whether the message belongs in collaborator history:
// not loading, not the welcome message, and not an analysis-only result with
// no text of its own.
func (m Message) conversational() bool {
	if m.IsLoading || m.ID == WelcomeMessageID {
		return false
	}
	if strings.TrimSpace(m.Text) == "" {
		return false
	}
	return true
}

type Session struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
	Messages  []Message `json:"messages"`
}

func NewSession() Session {
	return Session{
		ID:        uuid.New(),
		Title:     "New Chat",
		Timestamp: time.Now().UTC(),
		Messages: []Message{{
			ID:     WelcomeMessageID,
			Sender: SenderAssistant,
			Text:   welcomeText,
		}},
	}
}

// Pristine reports whether the session has not been meaningfully used yet,
// i.e. it still contains only the welcome message.
func (s Session) Pristine() bool {
	return len(s.Messages) <= 1
}

func (s Session) Clone() Session {
	c := s
	c.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		c.Messages[i] = m.clone()
	}
	return c
}

// Snapshot returns a persistable copy of the session with every loading
// placeholder stripped.
func (s Session) Snapshot() Session {
	c := s
	c.Messages = make([]Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m.IsLoading {
			continue
		}
		c.Messages = append(c.Messages, m.clone())
	}
	return c
}

// History maps the session's conversational messages to collaborator turns,
// translating senders into the collaborator's role vocabulary.
func (s Session) History() []Turn {
	var turns []Turn
	for _, m := range s.Messages {
		if !m.conversational() {
			continue
		}
		role := "model"
		if m.Sender == SenderUser {
			role = "user"
		}
		turns = append(turns, Turn{Role: role, Content: m.Text})
	}
	return turns
}

// Turn is one collaborator-history entry.
type Turn struct {
	Role    string
	Content string
}

// firstUserText returns the text of the earliest user message, or "".
func (s Session) firstUserText() string {
	for _, m := range s.Messages {
		if m.Sender == SenderUser && strings.TrimSpace(m.Text) != "" {
			return m.Text
		}
	}
	return ""
}

const titleRuneLimit = 40

// FallbackTitle derives a display name for an untitled save: the leading
// substring of the first user message, or a timestamped default.
func (s Session) FallbackTitle(now time.Time) string {
	if text := s.firstUserText(); text != "" {
		runes := []rune(strings.TrimSpace(text))
		if len(runes) > titleRuneLimit {
			return string(runes[:titleRuneLimit])
		}
		return string(runes)
	}
	return "Chat " + now.Format("2006-01-02 15:04")
}
