package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrPristineSession = errors.New("session has no messages to save")
)

// Persistence is the adapter the store writes saved sessions through. Both
// backends are idempotent by session id: Save overwrites, Delete of an absent
// id is a no-op.
type Persistence interface {
	Load(ctx context.Context, userID string) ([]Session, error)
	Save(ctx context.Context, userID string, session Session) error
	Delete(ctx context.Context, userID string, sessionID uuid.UUID) error
}

// Store holds one user's active session plus their saved collection. All
// mutation of either goes through the store; the saved collection's source of
// truth is the persistence adapter.
type Store struct {
	mu      sync.Mutex
	userID  string
	adapter Persistence
	active  Session
	saved   []Session
	loaded  bool // initial load completed; gates remote reconciliation
	// activePersisted tracks whether the active session's id has ever been
	// written through the adapter; only such sessions can vanish remotely.
	activePersisted bool
	now             func() time.Time
}

func NewStore(adapter Persistence, userID string) *Store {
	return &Store{
		userID:  userID,
		adapter: adapter,
		active:  NewSession(),
		now:     time.Now,
	}
}

// Init reads the saved collection. A read failure degrades to an empty list
// and is reported so the caller can retry later; the store stays usable
// either way.
func (s *Store) Init(ctx context.Context) error {
	sessions, err := s.adapter.Load(ctx, s.userID)
	if err != nil {
		slog.Error("could not load saved chat sessions", "user_id", s.userID, "error", err)
		sessions = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = sortSessions(sessions)
	s.loaded = true
	return err
}

func (s *Store) Active() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.Clone()
}

func (s *Store) Saved() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, len(s.saved))
	for i, sess := range s.saved {
		out[i] = sess.Clone()
	}
	return out
}

// StartNew replaces the active session with a fresh one. The saved collection
// is untouched; prompting to save an unsaved active session first is the
// caller's concern.
func (s *Store) StartNew() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = NewSession()
	s.activePersisted = false
	return s.active.Clone()
}

// Load makes a copy of the saved session the active one. The copy keeps the
// saved id, so a later save updates rather than duplicates.
func (s *Store) Load(id uuid.UUID) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.saved {
		if sess.ID == id {
			s.active = sess.Clone()
			s.activePersisted = true
			return s.active.Clone(), nil
		}
	}
	return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// SaveCurrent upserts the active session into the saved collection under the
// given title (with fallback) and persists it. A write failure leaves the
// in-memory collection unchanged.
func (s *Store) SaveCurrent(ctx context.Context, title string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active.Pristine() {
		return Session{}, ErrPristineSession
	}

	now := s.now().UTC()
	snapshot := s.active.Snapshot()
	if strings.TrimSpace(title) == "" {
		title = snapshot.FallbackTitle(now)
	}
	snapshot.Title = title
	snapshot.Timestamp = now

	if err := s.adapter.Save(ctx, s.userID, snapshot); err != nil {
		return Session{}, fmt.Errorf("saving chat session: %w", err)
	}

	s.saved = sortSessions(upsert(s.saved, snapshot))
	s.active.Title = title
	s.active.Timestamp = now
	s.activePersisted = true
	return snapshot.Clone(), nil
}

// Rename retitles a saved session in place without touching its messages.
func (s *Store) Rename(ctx context.Context, id uuid.UUID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.saved {
		if sess.ID != id {
			continue
		}
		renamed := sess.Clone()
		renamed.Title = title
		if err := s.adapter.Save(ctx, s.userID, renamed); err != nil {
			return fmt.Errorf("renaming chat session: %w", err)
		}
		s.saved = upsert(s.saved, renamed)
		if s.active.ID == id {
			s.active.Title = title
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// Delete removes a saved session. Deleting the active session's id starts a
// fresh session.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.adapter.Delete(ctx, s.userID, id); err != nil {
		return fmt.Errorf("deleting chat session: %w", err)
	}

	kept := s.saved[:0]
	for _, sess := range s.saved {
		if sess.ID != id {
			kept = append(kept, sess)
		}
	}
	s.saved = kept

	if s.active.ID == id {
		s.active = NewSession()
		s.activePersisted = false
	}
	return nil
}

// ApplySnapshot merges a change notification from the adapter (e.g. a write
// from another device). Until the initial load completes it only replaces the
// saved list, so an in-progress unsaved edit is never clobbered by startup
// snapshots. Afterwards, if the active session's id has vanished remotely,
// the store falls back to the most recent remaining session or a fresh one.
func (s *Store) ApplySnapshot(sessions []Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saved = sortSessions(sessions)
	if !s.loaded {
		return
	}

	for _, sess := range s.saved {
		if sess.ID == s.active.ID {
			return
		}
	}
	if !s.activePersisted {
		// The active session was never saved, so it cannot have been deleted
		// remotely. Leave the in-progress edit alone.
		return
	}
	if len(s.saved) > 0 {
		s.active = s.saved[0].Clone()
		s.activePersisted = true
	} else {
		s.active = NewSession()
		s.activePersisted = false
	}
}

// AppendToActive adds messages to the active conversation in order.
func (s *Store) AppendToActive(msgs ...Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.Messages = append(s.active.Messages, msgs...)
}

// AppendIfIdle appends the messages unless a loading placeholder is already
// present, and returns the conversational history as it stood before the
// append. The check and the append share one critical section, so concurrent
// senders cannot interleave their message pairs.
func (s *Store) AppendIfIdle(msgs ...Message) ([]Turn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.active.Messages {
		if m.IsLoading {
			return nil, false
		}
	}
	history := s.active.History()
	s.active.Messages = append(s.active.Messages, msgs...)
	return history, true
}

// ReplaceInActive swaps the message with the given id for its final form,
// keeping its position.
func (s *Store) ReplaceInActive(id string, msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.active.Messages {
		if m.ID == id {
			msg.ID = id
			s.active.Messages[i] = msg
			return true
		}
	}
	return false
}

// RemoveFromActive drops the message with the given id entirely.
func (s *Store) RemoveFromActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.active.Messages {
		if m.ID == id {
			s.active.Messages = append(s.active.Messages[:i], s.active.Messages[i+1:]...)
			return true
		}
	}
	return false
}

// RequestInFlight reports whether the active session still holds a loading
// placeholder.
func (s *Store) RequestInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.active.Messages {
		if m.IsLoading {
			return true
		}
	}
	return false
}

func upsert(sessions []Session, sess Session) []Session {
	for i, existing := range sessions {
		if existing.ID == sess.ID {
			sessions[i] = sess
			return sessions
		}
	}
	return append(sessions, sess)
}

func sortSessions(sessions []Session) []Session {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})
	return sessions
}
