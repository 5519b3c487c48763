package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cyguard-backend/internal/chat"
	"cyguard-backend/internal/database"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func TestRecordStoreRoundtrip(t *testing.T) {
	store := NewRecordStore(testDB(t))
	ctx := context.Background()

	sessions, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, sessions)

	older := testSession("older")
	older.Timestamp = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	newer := testSession("newer")
	newer.Timestamp = time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, "alice", older))
	require.NoError(t, store.Save(ctx, "alice", newer))

	sessions, err = store.Load(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "newer", sessions[0].Title)
	assert.Equal(t, "older", sessions[1].Title)
	require.Len(t, sessions[1].Messages, 2)
	assert.Equal(t, "is this email a scam?", sessions[1].Messages[1].Text)
}

func TestRecordStoreUpsertByID(t *testing.T) {
	store := NewRecordStore(testDB(t))
	ctx := context.Background()

	sess := testSession("original")
	require.NoError(t, store.Save(ctx, "alice", sess))

	sess.Title = "updated"
	require.NoError(t, store.Save(ctx, "alice", sess))

	sessions, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "updated", sessions[0].Title)
}

func TestRecordStoreIsolatesUsers(t *testing.T) {
	store := NewRecordStore(testDB(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", testSession("hers")))
	require.NoError(t, store.Save(ctx, "bob", testSession("his")))

	sessions, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "hers", sessions[0].Title)
}

func TestRecordStoreDelete(t *testing.T) {
	store := NewRecordStore(testDB(t))
	ctx := context.Background()

	sess := testSession("doomed")
	require.NoError(t, store.Save(ctx, "alice", sess))
	require.NoError(t, store.Delete(ctx, "alice", sess.ID))

	sessions, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, sessions)

	// deleting again is a no-op
	require.NoError(t, store.Delete(ctx, "alice", sess.ID))
}

func TestRecordStoreSubscribe(t *testing.T) {
	store := NewRecordStore(testDB(t))
	ctx := context.Background()

	updates := make(chan []chat.Session, 8)
	unsubscribe := store.Subscribe("alice", func(sessions []chat.Session) {
		updates <- sessions
	})

	// initial snapshot arrives without any write
	select {
	case sessions := <-updates:
		assert.Empty(t, sessions)
	case <-time.After(5 * time.Second):
		t.Fatal("no initial snapshot")
	}

	require.NoError(t, store.Save(ctx, "alice", testSession("watched")))
	select {
	case sessions := <-updates:
		require.Len(t, sessions, 1)
		assert.Equal(t, "watched", sessions[0].Title)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification after save")
	}

	unsubscribe()
	require.NoError(t, store.Save(ctx, "alice", testSession("unwatched")))
	select {
	case <-updates:
		t.Fatal("notification delivered after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSanitizeSessionStripsAbsent(t *testing.T) {
	assert.Equal(t,
		map[string]any{"keep": nil, "nested": map[string]any{}},
		StripAbsent(map[string]any{
			"keep":   nil,
			"drop":   Absent,
			"nested": map[string]any{"gone": Absent},
		}))

	assert.Equal(t,
		[]any{"a", float64(1), nil},
		StripAbsent([]any{"a", Absent, float64(1), nil}))

	assert.Equal(t, "scalar", StripAbsent("scalar"))
}
