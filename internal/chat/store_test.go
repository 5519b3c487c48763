package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]Session
	loadErr  error
	saveErr  error
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{sessions: make(map[uuid.UUID]Session)}
}

func (f *fakeAdapter) Load(ctx context.Context, userID string) ([]Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]Session, 0, len(f.sessions))
	for _, sess := range f.sessions {
		out = append(out, sess.Clone())
	}
	return out, nil
}

func (f *fakeAdapter) Save(ctx context.Context, userID string, session Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.sessions[session.ID] = session.Clone()
	return nil
}

func (f *fakeAdapter) Delete(ctx context.Context, userID string, sessionID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	return nil
}

func newTestStore(t *testing.T) (*Store, *fakeAdapter) {
	t.Helper()
	adapter := newFakeAdapter()
	store := NewStore(adapter, "user-1")
	store.Init(context.Background())
	return store, adapter
}

func sendMessages(store *Store) {
	store.AppendToActive(
		Message{ID: uuid.NewString(), Sender: SenderUser, Text: "is this link safe?"},
		Message{ID: uuid.NewString(), Sender: SenderAssistant, Text: "It is a phishing attempt."},
	)
}

func TestInitSurvivesLoadFailure(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.loadErr = errors.New("backend down")

	store := NewStore(adapter, "user-1")
	assert.Error(t, store.Init(context.Background()))

	assert.Empty(t, store.Saved())
	assert.True(t, store.Active().Pristine())

	// a later retry picks the collection up
	adapter.loadErr = nil
	require.NoError(t, adapter.Save(context.Background(), "user-1", NewSession()))
	require.NoError(t, store.Init(context.Background()))
	assert.Len(t, store.Saved(), 1)
}

func TestSaveCurrentPristineFails(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.SaveCurrent(context.Background(), "title")
	assert.ErrorIs(t, err, ErrPristineSession)
	assert.Empty(t, store.Saved())
}

func TestSaveCurrentPersistsAndUpserts(t *testing.T) {
	store, adapter := newTestStore(t)
	sendMessages(store)

	saved, err := store.SaveCurrent(context.Background(), "My scam chat")
	require.NoError(t, err)
	assert.Equal(t, "My scam chat", saved.Title)
	assert.Len(t, store.Saved(), 1)
	assert.Contains(t, adapter.sessions, saved.ID)

	// saving again with a new title updates the same session
	store.AppendToActive(Message{ID: uuid.NewString(), Sender: SenderUser, Text: "thanks"})
	again, err := store.SaveCurrent(context.Background(), "Renamed")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)
	assert.Len(t, store.Saved(), 1)
	assert.Len(t, adapter.sessions[saved.ID].Messages, 4)
}

func TestSaveCurrentFallbackTitle(t *testing.T) {
	store, _ := newTestStore(t)
	sendMessages(store)

	saved, err := store.SaveCurrent(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, "is this link safe?", saved.Title)
}

func TestSaveCurrentWriteFailureLeavesMemoryUnchanged(t *testing.T) {
	store, adapter := newTestStore(t)
	sendMessages(store)
	adapter.saveErr = errors.New("disk full")

	_, err := store.SaveCurrent(context.Background(), "title")
	assert.Error(t, err)
	assert.Empty(t, store.Saved())
}

func TestSaveCurrentStripsLoadingPlaceholder(t *testing.T) {
	store, adapter := newTestStore(t)
	sendMessages(store)
	store.AppendToActive(Message{ID: "pending", Sender: SenderAssistant, IsLoading: true})

	saved, err := store.SaveCurrent(context.Background(), "title")
	require.NoError(t, err)

	for _, msg := range adapter.sessions[saved.ID].Messages {
		assert.False(t, msg.IsLoading)
	}
}

func TestLoadCopiesSavedSession(t *testing.T) {
	store, _ := newTestStore(t)
	sendMessages(store)
	saved, err := store.SaveCurrent(context.Background(), "first")
	require.NoError(t, err)

	store.StartNew()
	require.True(t, store.Active().Pristine())

	loaded, err := store.Load(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, loaded.ID)
	assert.Equal(t, saved.ID, store.Active().ID)
}

func TestLoadUnknownSession(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRename(t *testing.T) {
	store, adapter := newTestStore(t)
	sendMessages(store)
	saved, err := store.SaveCurrent(context.Background(), "old")
	require.NoError(t, err)

	require.NoError(t, store.Rename(context.Background(), saved.ID, "new"))
	assert.Equal(t, "new", store.Saved()[0].Title)
	assert.Equal(t, "new", adapter.sessions[saved.ID].Title)
	// the active session carries the same id, so its title follows
	assert.Equal(t, "new", store.Active().Title)

	assert.ErrorIs(t, store.Rename(context.Background(), uuid.New(), "x"), ErrSessionNotFound)
}

func TestDeleteActiveSessionStartsFresh(t *testing.T) {
	store, _ := newTestStore(t)
	sendMessages(store)
	saved, err := store.SaveCurrent(context.Background(), "title")
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), saved.ID))
	assert.Empty(t, store.Saved())
	assert.True(t, store.Active().Pristine())
	assert.NotEqual(t, saved.ID, store.Active().ID)
}

func TestDeleteOtherSessionKeepsActive(t *testing.T) {
	store, _ := newTestStore(t)
	sendMessages(store)
	first, err := store.SaveCurrent(context.Background(), "first")
	require.NoError(t, err)

	store.StartNew()
	sendMessages(store)
	activeID := store.Active().ID

	require.NoError(t, store.Delete(context.Background(), first.ID))
	assert.Equal(t, activeID, store.Active().ID)
	assert.Len(t, store.Active().Messages, 3)
}

func TestSavedSortedByTimestampDesc(t *testing.T) {
	store, _ := newTestStore(t)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(2 * time.Hour), base.Add(time.Hour)}
	store.now = func() time.Time { return times[0] }

	sendMessages(store)
	_, err := store.SaveCurrent(context.Background(), "oldest")
	require.NoError(t, err)

	store.StartNew()
	store.now = func() time.Time { return times[1] }
	sendMessages(store)
	_, err = store.SaveCurrent(context.Background(), "newest")
	require.NoError(t, err)

	store.StartNew()
	store.now = func() time.Time { return times[2] }
	sendMessages(store)
	_, err = store.SaveCurrent(context.Background(), "middle")
	require.NoError(t, err)

	saved := store.Saved()
	require.Len(t, saved, 3)
	assert.Equal(t, "newest", saved[0].Title)
	assert.Equal(t, "middle", saved[1].Title)
	assert.Equal(t, "oldest", saved[2].Title)
}

func TestApplySnapshotReplacesSavedList(t *testing.T) {
	store, _ := newTestStore(t)

	remote := NewSession()
	remote.Title = "from another device"
	store.ApplySnapshot([]Session{remote})

	require.Len(t, store.Saved(), 1)
	assert.Equal(t, "from another device", store.Saved()[0].Title)
}

func TestApplySnapshotKeepsUnsavedActive(t *testing.T) {
	store, _ := newTestStore(t)
	sendMessages(store)
	activeID := store.Active().ID

	store.ApplySnapshot(nil)

	assert.Equal(t, activeID, store.Active().ID)
	assert.Len(t, store.Active().Messages, 3)
}

func TestApplySnapshotReconcilesDeletedActive(t *testing.T) {
	store, _ := newTestStore(t)
	sendMessages(store)
	saved, err := store.SaveCurrent(context.Background(), "title")
	require.NoError(t, err)

	remaining := NewSession()
	remaining.Title = "other"
	store.ApplySnapshot([]Session{remaining})

	assert.NotEqual(t, saved.ID, store.Active().ID)
	assert.Equal(t, remaining.ID, store.Active().ID)

	// now everything vanishes remotely
	store.ApplySnapshot(nil)
	assert.True(t, store.Active().Pristine())
}

func TestReplaceInActiveKeepsPositionAndID(t *testing.T) {
	store, _ := newTestStore(t)
	store.AppendToActive(
		Message{ID: "u1", Sender: SenderUser, Text: "hello"},
		Message{ID: "pending", Sender: SenderAssistant, IsLoading: true},
	)

	ok := store.ReplaceInActive("pending", Message{ID: "ignored", Sender: SenderAssistant, Text: "done"})
	require.True(t, ok)

	active := store.Active()
	require.Len(t, active.Messages, 3)
	assert.Equal(t, "pending", active.Messages[2].ID)
	assert.Equal(t, "done", active.Messages[2].Text)
	assert.False(t, store.RequestInFlight())
}

func TestAppendIfIdle(t *testing.T) {
	store, _ := newTestStore(t)
	store.AppendToActive(
		Message{ID: "u1", Sender: SenderUser, Text: "earlier question"},
		Message{ID: "a1", Sender: SenderAssistant, Text: "earlier answer"},
	)

	history, ok := store.AppendIfIdle(
		Message{ID: "u2", Sender: SenderUser, Text: "new question"},
		Message{ID: "pending", Sender: SenderAssistant, IsLoading: true},
	)
	require.True(t, ok)

	// history is captured before the append and excludes the welcome message
	require.Len(t, history, 2)
	assert.Equal(t, "earlier question", history[0].Content)
	require.Len(t, store.Active().Messages, 5)

	// a second append is refused while the placeholder is pending
	_, ok = store.AppendIfIdle(Message{ID: "u3", Sender: SenderUser, Text: "interloper"})
	assert.False(t, ok)
	require.Len(t, store.Active().Messages, 5)
}

func TestRemoveFromActive(t *testing.T) {
	store, _ := newTestStore(t)
	store.AppendToActive(Message{ID: "pending", Sender: SenderAssistant, IsLoading: true})
	require.True(t, store.RequestInFlight())

	assert.True(t, store.RemoveFromActive("pending"))
	assert.False(t, store.RequestInFlight())
	assert.False(t, store.RemoveFromActive("pending"))
}
