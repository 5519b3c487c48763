package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyguard-backend/internal/chat"
)

func testSession(title string) chat.Session {
	sess := chat.NewSession()
	sess.Title = title
	sess.Timestamp = time.Now().UTC().Truncate(time.Second)
	sess.Messages = append(sess.Messages, chat.Message{
		ID: "m1", Sender: chat.SenderUser, Text: "is this email a scam?",
	})
	return sess
}

func TestLocalStoreRoundtrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	sessions, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, sessions)

	first := testSession("first")
	second := testSession("second")
	require.NoError(t, store.Save(ctx, "alice", first))
	require.NoError(t, store.Save(ctx, "alice", second))

	sessions, err = store.Load(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	// save with an existing id replaces, not appends
	first.Title = "first renamed"
	require.NoError(t, store.Save(ctx, "alice", first))
	sessions, err = store.Load(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	// users are isolated
	sessions, err = store.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestLocalStoreDeleteRemovesEmptyBlob(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	sess := testSession("only")
	require.NoError(t, store.Save(ctx, "alice", sess))

	blob := filepath.Join(dir, localKeyPrefix+"alice.json")
	_, err = os.Stat(blob)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "alice", sess.ID))
	_, err = os.Stat(blob)
	assert.True(t, os.IsNotExist(err))

	// deleting a missing id is a no-op
	require.NoError(t, store.Delete(ctx, "alice", sess.ID))
}

func TestLocalStoreCorruptBlobDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	blob := filepath.Join(dir, localKeyPrefix+"alice.json")
	require.NoError(t, os.WriteFile(blob, []byte("{not json"), 0644))

	sessions, err := store.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestLocalStoreSubscribe(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	updates := make(chan []chat.Session, 8)
	unsubscribe := store.Subscribe("alice", func(sessions []chat.Session) {
		updates <- sessions
	})
	defer unsubscribe()

	sess := testSession("watched")
	require.NoError(t, store.Save(ctx, "alice", sess))

	select {
	case sessions := <-updates:
		require.Len(t, sessions, 1)
		assert.Equal(t, "watched", sessions[0].Title)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification after save")
	}
}
