package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"cyguard-backend/internal/chat"
)

const localKeyPrefix = "cyguard-chat-history-"

// LocalStore persists each user's saved sessions as a single JSON blob under
// a deterministic per-user key in a base directory. Reads load the whole
// blob, saves overwrite it, and the file is removed once the list empties.
type LocalStore struct {
	mu  sync.Mutex
	dir string
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating chat history directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(userID string) string {
	return filepath.Join(s.dir, localKeyPrefix+userID+".json")
}

// Load returns the saved list. Missing or unreadable blobs degrade to an
// empty list; the error is logged, never surfaced as a failure.
func (s *LocalStore) Load(ctx context.Context, userID string) ([]chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(userID), nil
}

func (s *LocalStore) read(userID string) []chat.Session {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("could not read chat history blob", "user_id", userID, "error", err)
		}
		return nil
	}

	var sessions []chat.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		slog.Error("corrupt chat history blob, treating as empty", "user_id", userID, "error", err)
		return nil
	}
	return sessions
}

func (s *LocalStore) write(userID string, sessions []chat.Session) error {
	if len(sessions) == 0 {
		if err := os.Remove(s.path(userID)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing empty chat history blob: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encoding chat history: %w", err)
	}
	if err := os.WriteFile(s.path(userID), data, 0644); err != nil {
		return fmt.Errorf("writing chat history blob: %w", err)
	}
	return nil
}

// Save upserts one session by id and rewrites the blob.
func (s *LocalStore) Save(ctx context.Context, userID string, session chat.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.read(userID)
	replaced := false
	for i, existing := range sessions {
		if existing.ID == session.ID {
			sessions[i] = session
			replaced = true
			break
		}
	}
	if !replaced {
		sessions = append(sessions, session)
	}
	return s.write(userID, sessions)
}

// Delete removes one session by id; a missing id is a no-op.
func (s *LocalStore) Delete(ctx context.Context, userID string, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.read(userID)
	kept := sessions[:0]
	for _, existing := range sessions {
		if existing.ID != sessionID {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(sessions) {
		return nil
	}
	return s.write(userID, kept)
}

// Subscribe watches the user's blob with fsnotify so that writes from another
// process on the same device surface as change notifications. Closing the
// returned func stops the watcher.
func (s *LocalStore) Subscribe(userID string, fn func([]chat.Session)) func() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("could not create chat history watcher", "user_id", userID, "error", err)
		return func() {}
	}

	target := s.path(userID)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
					s.mu.Lock()
					sessions := s.read(userID)
					s.mu.Unlock()
					fn(sessions)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("chat history watcher error", "user_id", userID, "error", err)
			}
		}
	}()

	if err := watcher.Add(s.dir); err != nil {
		slog.Error("could not watch chat history directory", "dir", s.dir, "error", err)
		watcher.Close()
		return func() {}
	}

	return func() { watcher.Close() }
}
