package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cyguard-backend/internal/chat"
	"cyguard-backend/internal/database"
)

// RecordStore keeps one row per session under a per-user collection,
// mirroring a remote document store at users/{uid}/chats/{chatId}: every
// write or delete targets a single record by id, and subscribers receive the
// user's full list after each change.
type RecordStore struct {
	db *gorm.DB

	mu      sync.Mutex
	subs    map[string]map[int]func([]chat.Session)
	nextSub int
}

var _ Store = (*RecordStore)(nil)

func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{
		db:   db,
		subs: make(map[string]map[int]func([]chat.Session)),
	}
}

func (s *RecordStore) Load(ctx context.Context, userID string) ([]chat.Session, error) {
	var rows []database.SessionRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("loading chat sessions: %w", err)
	}

	sessions := make([]chat.Session, 0, len(rows))
	for _, row := range rows {
		var session chat.Session
		if err := json.Unmarshal(row.Data, &session); err != nil {
			slog.Error("corrupt chat session record, skipping", "user_id", userID, "session_id", row.SessionID, "error", err)
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *RecordStore) Save(ctx context.Context, userID string, session chat.Session) error {
	data, err := sanitizeSession(session)
	if err != nil {
		return err
	}

	row := database.SessionRecord{
		UserID:    userID,
		SessionID: session.ID,
		Title:     session.Title,
		Timestamp: session.Timestamp,
		Data:      datatypes.JSON(data),
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "session_id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upserting chat session record: %w", err)
	}

	// async so a subscriber can call back into the code path that triggered
	// the write without deadlocking
	go s.broadcast(context.WithoutCancel(ctx), userID)
	return nil
}

func (s *RecordStore) Delete(ctx context.Context, userID string, sessionID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Delete(&database.SessionRecord{}).Error
	if err != nil {
		return fmt.Errorf("deleting chat session record: %w", err)
	}

	go s.broadcast(context.WithoutCancel(ctx), userID)
	return nil
}

// Subscribe registers a snapshot listener. The current list is delivered
// asynchronously right away, then again after every change to the user's
// collection.
func (s *RecordStore) Subscribe(userID string, fn func([]chat.Session)) func() {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]func([]chat.Session))
	}
	s.subs[userID][id] = fn
	s.mu.Unlock()

	go s.broadcast(context.Background(), userID)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[userID], id)
	}
}

func (s *RecordStore) broadcast(ctx context.Context, userID string) {
	s.mu.Lock()
	fns := make([]func([]chat.Session), 0, len(s.subs[userID]))
	for _, fn := range s.subs[userID] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	if len(fns) == 0 {
		return
	}

	sessions, err := s.Load(ctx, userID)
	if err != nil {
		slog.Error("could not load sessions for change notification", "user_id", userID, "error", err)
		return
	}
	for _, fn := range fns {
		fn(sessions)
	}
}

// sanitizeSession round-trips the session through a generic tree so Absent
// markers are stripped before the write; the record store, like the remote
// document store it stands in for, rejects them. A tree decoded from JSON
// never contains Absent, so the strip only matters for payload trees callers
// assemble by hand.
func sanitizeSession(session chat.Session) ([]byte, error) {
	raw, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encoding chat session: %w", err)
	}

	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("decoding chat session tree: %w", err)
	}

	clean, err := json.Marshal(StripAbsent(tree))
	if err != nil {
		return nil, fmt.Errorf("re-encoding chat session: %w", err)
	}
	return clean, nil
}
