package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cyguard-backend/internal/chat"

	"github.com/google/uuid"
)

// Images up to this size stay inline in the session document; larger payloads
// move to the object store.
const InlineImageThreshold = 64 << 10

const screenshotRefPrefix = "object://"

// ScreenshotOffloader wraps a persistence adapter so that saved sessions keep
// only a reference for large screenshots. The image bytes live under
// screenshots/{userID}/{sessionID}/{messageID} and are restored on load.
type ScreenshotOffloader struct {
	inner   chat.Persistence
	objects ObjectStore
}

var _ chat.Persistence = (*ScreenshotOffloader)(nil)

func NewScreenshotOffloader(inner chat.Persistence, objects ObjectStore) *ScreenshotOffloader {
	return &ScreenshotOffloader{inner: inner, objects: objects}
}

func screenshotKey(userID string, sessionID uuid.UUID, messageID string) string {
	return fmt.Sprintf("screenshots/%s/%s/%s", userID, sessionID, messageID)
}

func sessionPrefix(userID string, sessionID uuid.UUID) string {
	return fmt.Sprintf("screenshots/%s/%s", userID, sessionID)
}

func (o *ScreenshotOffloader) Save(ctx context.Context, userID string, session chat.Session) error {
	offloaded := session.Clone()
	for i, msg := range offloaded.Messages {
		if msg.Image == "" || strings.HasPrefix(msg.Image, screenshotRefPrefix) {
			continue
		}
		if len(msg.Image) <= InlineImageThreshold {
			continue
		}

		key := screenshotKey(userID, session.ID, msg.ID)
		if err := o.objects.PutObject(ctx, key, strings.NewReader(msg.Image)); err != nil {
			return fmt.Errorf("offload screenshot %s: %w", key, err)
		}
		offloaded.Messages[i].Image = screenshotRefPrefix + key
	}

	return o.inner.Save(ctx, userID, offloaded)
}

func (o *ScreenshotOffloader) Load(ctx context.Context, userID string) ([]chat.Session, error) {
	sessions, err := o.inner.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	for si := range sessions {
		for mi, msg := range sessions[si].Messages {
			key, ok := strings.CutPrefix(msg.Image, screenshotRefPrefix)
			if !ok {
				continue
			}

			image, err := o.fetch(ctx, key)
			if err != nil {
				// the session is still usable without the screenshot
				slog.Error("could not restore offloaded screenshot", "key", key, "error", err)
				sessions[si].Messages[mi].Image = ""
				continue
			}
			sessions[si].Messages[mi].Image = image
		}
	}

	return sessions, nil
}

func (o *ScreenshotOffloader) Delete(ctx context.Context, userID string, sessionID uuid.UUID) error {
	if err := o.objects.DeleteObjects(ctx, sessionPrefix(userID, sessionID)); err != nil {
		return fmt.Errorf("delete session screenshots: %w", err)
	}
	return o.inner.Delete(ctx, userID, sessionID)
}

func (o *ScreenshotOffloader) fetch(ctx context.Context, key string) (string, error) {
	body, err := o.objects.GetObject(ctx, key)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read screenshot object %s: %w", key, err)
	}
	return string(data), nil
}
