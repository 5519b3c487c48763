package api

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"cyguard-backend/internal/analysis"
	"cyguard-backend/internal/chat"
	"cyguard-backend/internal/chat/markdown"
	"cyguard-backend/internal/persistence"
	"cyguard-backend/pkg/api"
)

// ChatService exposes the per-user session store over HTTP. Stores are cached
// by user id and kept in sync with the persistence backend through its
// subscription feed.
type ChatService struct {
	adapter    chat.Persistence
	source     persistence.Store
	dispatcher *analysis.Dispatcher

	mu     sync.Mutex
	stores map[string]*userStore
}

type userStore struct {
	store       *chat.Store
	unsubscribe func()
	initialized bool
}

// NewChatService builds the chat surface. adapter is the persistence path
// sessions are written through (possibly wrapping source with screenshot
// offloading); source provides the change feed.
func NewChatService(adapter chat.Persistence, source persistence.Store, dispatcher *analysis.Dispatcher) *ChatService {
	return &ChatService{
		adapter:    adapter,
		source:     source,
		dispatcher: dispatcher,
		stores:     make(map[string]*userStore),
	}
}

func (s *ChatService) AddRoutes(r chi.Router) {
	r.Route("/chat", func(r chi.Router) {
		r.Get("/active", RestHandler(s.GetActive))
		r.Post("/new", RestHandler(s.StartNew))
		r.Get("/sessions", RestHandler(s.GetSessions))
		r.Post("/sessions", RestHandler(s.SaveSession))
		r.Get("/sessions/{session_id}", RestHandler(s.GetSession))
		r.Post("/sessions/{session_id}/load", RestHandler(s.LoadSession))
		r.Post("/sessions/{session_id}/rename", RestHandler(s.RenameSession))
		r.Delete("/sessions/{session_id}", RestHandler(s.DeleteSession))
		r.Post("/sessions/{session_id}/messages", RestHandler(s.SendMessage))
		r.Get("/sessions/{session_id}/history", RestHandler(s.GetHistory))
		r.Get("/sessions/{session_id}/messages/{message_id}/segments", RestHandler(s.GetMessageSegments))
	})
}

// Close drops every cached store and its subscription.
func (s *ChatService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, cached := range s.stores {
		cached.unsubscribe()
		delete(s.stores, userID)
	}
}

// storeFor returns the user's session store, creating and initializing it on
// first use. A failed initial load is retried on the next request; the store
// itself stays cached so its subscription survives.
func (s *ChatService) storeFor(ctx context.Context, userID string) *chat.Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.stores[userID]; ok {
		if !cached.initialized {
			cached.initialized = cached.store.Init(ctx) == nil
		}
		return cached.store
	}

	store := chat.NewStore(s.adapter, userID)
	initialized := store.Init(ctx) == nil

	// The feed only signals that something changed remotely; reload through
	// the adapter so offloaded screenshots are restored.
	unsubscribe := s.source.Subscribe(userID, func([]chat.Session) {
		sessions, err := s.adapter.Load(context.Background(), userID)
		if err != nil {
			return
		}
		store.ApplySnapshot(sessions)
	})

	s.stores[userID] = &userStore{store: store, unsubscribe: unsubscribe, initialized: initialized}
	return store
}

func (s *ChatService) requestStore(r *http.Request) (*chat.Store, error) {
	user, err := UserFromContext(r.Context())
	if err != nil {
		return nil, err
	}
	return s.storeFor(r.Context(), user.Id.String()), nil
}

func (s *ChatService) GetActive(r *http.Request) (any, error) {
	store, err := s.requestStore(r)
	if err != nil {
		return nil, err
	}
	return toWireSession(store.Active()), nil
}

func (s *ChatService) StartNew(r *http.Request) (any, error) {
	store, err := s.requestStore(r)
	if err != nil {
		return nil, err
	}
	return toWireSession(store.StartNew()), nil
}

func (s *ChatService) GetSessions(r *http.Request) (any, error) {
	store, err := s.requestStore(r)
	if err != nil {
		return nil, err
	}

	saved := store.Saved()
	sessions := make([]api.ChatSessionMetadata, len(saved))
	for i, sess := range saved {
		sessions[i] = api.ChatSessionMetadata{
			ID:        sess.ID,
			Title:     sess.Title,
			Timestamp: sess.Timestamp,
		}
	}
	return api.GetSessionsResponse{Sessions: sessions}, nil
}

func (s *ChatService) SaveSession(r *http.Request) (any, error) {
	store, err := s.requestStore(r)
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.SaveSessionRequest](r)
	if err != nil {
		return nil, err
	}

	saved, err := store.SaveCurrent(r.Context(), req.Title)
	if errors.Is(err, chat.ErrPristineSession) {
		return nil, CodedError(http.StatusBadRequest, err)
	}
	if err != nil {
		return nil, err
	}
	return toWireSession(saved), nil
}

func (s *ChatService) GetSession(r *http.Request) (any, error) {
	store, err := s.requestStore(r)
	if err != nil {
		return nil, err
	}
	sessionID, err := URLParamUUID(r, "session_id")
	if err != nil {
		return nil, err
	}

	for _, sess := range store.Saved() {
		if sess.ID == sessionID {
			return toWireSession(sess), nil
		}
	}
	return nil, CodedErrorf(http.StatusNotFound, "chat session not found")
}

func (s *ChatService) LoadSession(r *http.Request) (any, error) {
	store, err := s.requestStore(r)
	if err != nil {
		return nil, err
	}
	sessionID, err := URLParamUUID(r, "session_id")
	if err != nil {
		return nil, err
	}

	loaded, err := store.Load(sessionID)
	if errors.Is(err, chat.ErrSessionNotFound) {
		return nil, CodedError(http.StatusNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	return toWireSession(loaded), nil
}

func (s *ChatService) RenameSession(r *http.Request) (any, error) {
	store, err := s.requestStore(r)
	if err != nil {
		return nil, err
	}
	sessionID, err := URLParamUUID(r, "session_id")
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.RenameSessionRequest](r)
	if err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "title cannot be empty")
	}

	err = store.Rename(r.Context(), sessionID, req.Title)
	if errors.Is(err, chat.ErrSessionNotFound) {
		return nil, CodedError(http.StatusNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *ChatService) DeleteSession(r *http.Request) (any, error) {
	store, err := s.requestStore(r)
	if err != nil {
		return nil, err
	}
	sessionID, err := URLParamUUID(r, "session_id")
	if err != nil {
		return nil, err
	}

	err = store.Delete(r.Context(), sessionID)
	if errors.Is(err, chat.ErrSessionNotFound) {
		return nil, CodedError(http.StatusNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	return nil, nil
}

// SendMessage dispatches a message on the addressed session. Addressing a
// saved session that is not active loads it first.
func (s *ChatService) SendMessage(r *http.Request) (any, error) {
	store, err := s.requestStore(r)
	if err != nil {
		return nil, err
	}
	sessionID, err := URLParamUUID(r, "session_id")
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.SendMessageRequest](r)
	if err != nil {
		return nil, err
	}

	if store.Active().ID != sessionID {
		if _, err := store.Load(sessionID); err != nil {
			if errors.Is(err, chat.ErrSessionNotFound) {
				return nil, CodedError(http.StatusNotFound, err)
			}
			return nil, err
		}
	}

	userMsg, assistantMsg, err := s.dispatcher.Send(r.Context(), store, req)
	switch {
	case errors.Is(err, analysis.ErrInvalidInput):
		return nil, CodedError(http.StatusBadRequest, err)
	case errors.Is(err, analysis.ErrRequestInFlight):
		return nil, CodedError(http.StatusConflict, err)
	case err != nil:
		return nil, CodedErrorf(http.StatusBadGateway, "analysis failed: %v", err)
	}

	return api.SendMessageResponse{
		UserMessage:      toWireMessage(userMsg),
		AssistantMessage: toWireMessage(assistantMsg),
	}, nil
}

func (s *ChatService) GetHistory(r *http.Request) (any, error) {
	store, err := s.requestStore(r)
	if err != nil {
		return nil, err
	}
	sessionID, err := URLParamUUID(r, "session_id")
	if err != nil {
		return nil, err
	}

	sess, err := s.findSession(store, sessionID)
	if err != nil {
		return nil, err
	}

	turns := sess.History()
	history := make([]api.ChatTurn, len(turns))
	for i, turn := range turns {
		history[i] = api.ChatTurn{Role: turn.Role, Content: turn.Content}
	}
	return history, nil
}

func (s *ChatService) GetMessageSegments(r *http.Request) (any, error) {
	store, err := s.requestStore(r)
	if err != nil {
		return nil, err
	}
	sessionID, err := URLParamUUID(r, "session_id")
	if err != nil {
		return nil, err
	}
	messageID := chi.URLParam(r, "message_id")
	if messageID == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "missing {message_id} url parameter")
	}

	sess, err := s.findSession(store, sessionID)
	if err != nil {
		return nil, err
	}

	for _, msg := range sess.Messages {
		if msg.ID != messageID {
			continue
		}
		parsed := markdown.Parse(msg.Text)
		segments := make([]api.TextSegment, len(parsed))
		for i, seg := range parsed {
			segments[i] = api.TextSegment{
				Type:     seg.Type,
				Language: seg.Language,
				Content:  seg.Content,
			}
		}
		return api.MessageSegmentsResponse{MessageID: messageID, Segments: segments}, nil
	}
	return nil, CodedErrorf(http.StatusNotFound, "message not found")
}

// findSession resolves an id against the active session first, then the saved
// collection.
func (s *ChatService) findSession(store *chat.Store, sessionID uuid.UUID) (chat.Session, error) {
	if active := store.Active(); active.ID == sessionID {
		return active, nil
	}
	for _, sess := range store.Saved() {
		if sess.ID == sessionID {
			return sess, nil
		}
	}
	return chat.Session{}, CodedErrorf(http.StatusNotFound, "chat session not found")
}

func toWireMessage(msg chat.Message) api.ChatMessage {
	return api.ChatMessage{
		ID:        msg.ID,
		Sender:    msg.Sender,
		Text:      msg.Text,
		Image:     msg.Image,
		Analysis:  msg.Analysis,
		IsLoading: msg.IsLoading,
	}
}

func toWireSession(sess chat.Session) api.ChatSession {
	messages := make([]api.ChatMessage, len(sess.Messages))
	for i, msg := range sess.Messages {
		messages[i] = toWireMessage(msg)
	}
	return api.ChatSession{
		ID:        sess.ID,
		Title:     sess.Title,
		Timestamp: sess.Timestamp,
		Messages:  messages,
	}
}
