package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"cyguard-backend/internal/chat"
	"cyguard-backend/pkg/api"

	"github.com/google/uuid"
)

// ErrRequestInFlight is returned while the active session still awaits a
// collaborator result. One outstanding request per session.
var ErrRequestInFlight = errors.New("a request is already in flight for this session")

// Dispatcher drives the chat message lifecycle: it records the user message,
// parks a loading placeholder, runs the matching tool, and swaps the
// placeholder for the result.
type Dispatcher struct {
	svc *Service
}

func NewDispatcher(svc *Service) *Dispatcher {
	return &Dispatcher{svc: svc}
}

// Send appends the outbound message to the store's active session and returns
// both the recorded user message and the finished assistant message. On
// collaborator failure the placeholder is removed and the user message stays
// in place so the send can be retried.
func (d *Dispatcher) Send(ctx context.Context, store *chat.Store, req api.SendMessageRequest) (chat.Message, chat.Message, error) {
	if req.Image != "" {
		if err := validateImageDataURI(req.Image); err != nil {
			return chat.Message{}, chat.Message{}, err
		}
		if req.Text != "" {
			if err := validateMessageText(req.Text); err != nil {
				return chat.Message{}, chat.Message{}, err
			}
		}
	} else if err := validateMessageText(req.Text); err != nil {
		return chat.Message{}, chat.Message{}, err
	}

	userMsg := chat.Message{
		ID:     uuid.NewString(),
		Sender: chat.SenderUser,
		Text:   req.Text,
		Image:  req.Image,
	}
	placeholder := chat.Message{
		ID:        uuid.NewString(),
		Sender:    chat.SenderAssistant,
		IsLoading: true,
	}
	history, ok := store.AppendIfIdle(userMsg, placeholder)
	if !ok {
		return chat.Message{}, chat.Message{}, ErrRequestInFlight
	}

	text, analysis, err := d.invoke(ctx, req, history)
	if err != nil {
		store.RemoveFromActive(placeholder.ID)
		slog.Error("analysis dispatch failed", "error", err)
		return chat.Message{}, chat.Message{}, err
	}

	assistantMsg := chat.Message{
		ID:       placeholder.ID,
		Sender:   chat.SenderAssistant,
		Text:     text,
		Analysis: analysis,
	}
	store.ReplaceInActive(placeholder.ID, assistantMsg)
	return userMsg, assistantMsg, nil
}

func (d *Dispatcher) invoke(ctx context.Context, req api.SendMessageRequest, history []chat.Turn) (string, json.RawMessage, error) {
	if req.Image != "" {
		res, err := d.svc.AnalyzeScreenshot(ctx, api.AnalyzeScreenshotRequest{
			Prompt:            req.Text,
			ScreenshotDataURI: req.Image,
		})
		if err != nil {
			return "", nil, err
		}
		payload, err := json.Marshal(res)
		if err != nil {
			return "", nil, fmt.Errorf("marshal screenshot analysis: %w", err)
		}
		return res.Summary, payload, nil
	}

	turns := make([]api.ChatTurn, len(history))
	for i, turn := range history {
		turns[i] = api.ChatTurn{Role: turn.Role, Content: turn.Content}
	}
	res, err := d.svc.AssessThreat(ctx, api.AssessThreatRequest{
		UserInput: req.Text,
		History:   turns,
	})
	if err != nil {
		return "", nil, err
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return "", nil, fmt.Errorf("marshal threat assessment: %w", err)
	}
	return res.Response, payload, nil
}
