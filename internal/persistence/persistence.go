// Package persistence stores a user's saved chat sessions. Two interchangeable
// backends exist: LocalStore keeps the whole list as one JSON blob on disk,
// RecordStore keeps one database row per session and notifies subscribers of
// every change. Both are idempotent by session id.
package persistence

import (
	"context"

	"github.com/google/uuid"

	"cyguard-backend/internal/chat"
)

// Store is the full adapter surface. The chat session store only depends on
// the Load/Save/Delete subset (chat.Persistence); Subscribe is wired
// separately so the local blob backend can serve callers that never watch.
type Store interface {
	Load(ctx context.Context, userID string) ([]chat.Session, error)
	Save(ctx context.Context, userID string, session chat.Session) error
	Delete(ctx context.Context, userID string, sessionID uuid.UUID) error

	// Subscribe registers fn to receive the user's full session list whenever
	// the authoritative copy changes. The returned func unsubscribes.
	Subscribe(userID string, fn func([]chat.Session)) (unsubscribe func())
}
