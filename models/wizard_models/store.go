package wizard_models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rechargetravels/booking/logger"
)

// Wizard sessions live in Redis so a browser refresh or a second instance of
// the service sees the same state. Sessions expire when abandoned.
const (
	sessionTTL    = time.Hour
	submitLockTTL = 30 * time.Second
)

var ErrSessionNotFound = errors.New("wizard session not found or expired")

func sessionKey(id uuid.UUID) string    { return "wizard:" + id.String() }
func submitLockKey(id uuid.UUID) string { return "wizard:" + id.String() + ":submit" }

// SaveSession writes the wizard state, refreshing its TTL.
func SaveSession(ctx context.Context, rdb *redis.Client, w *Wizard) error {
	payload, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal wizard session: %w", err)
	}
	if err := rdb.Set(ctx, sessionKey(w.ID), payload, sessionTTL).Err(); err != nil {
		logger.ErrorLogger.Errorf("Failed to save wizard session %s: %v", w.ID, err)
		return fmt.Errorf("failed to save wizard session: %w", err)
	}
	return nil
}

// LoadSession reads a wizard session back.
func LoadSession(ctx context.Context, rdb *redis.Client, id uuid.UUID) (*Wizard, error) {
	payload, err := rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		logger.ErrorLogger.Errorf("Failed to load wizard session %s: %v", id, err)
		return nil, fmt.Errorf("failed to load wizard session: %w", err)
	}

	var w Wizard
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wizard session: %w", err)
	}
	return &w, nil
}

// DeleteSession drops a session, e.g. when the wizard modal is closed.
func DeleteSession(ctx context.Context, rdb *redis.Client, id uuid.UUID) error {
	if err := rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete wizard session: %w", err)
	}
	return nil
}

// AcquireSubmitLock takes the per-session in-flight guard. A second submit
// while one is pending gets false instead of a duplicate booking.
func AcquireSubmitLock(ctx context.Context, rdb *redis.Client, id uuid.UUID) (bool, error) {
	ok, err := rdb.SetNX(ctx, submitLockKey(id), "1", submitLockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire submit lock: %w", err)
	}
	return ok, nil
}

// ReleaseSubmitLock frees the in-flight guard once submission settles.
func ReleaseSubmitLock(ctx context.Context, rdb *redis.Client, id uuid.UUID) {
	if err := rdb.Del(ctx, submitLockKey(id)).Err(); err != nil {
		logger.WarnLogger.Warnf("Failed to release submit lock for %s: %v", id, err)
	}
}
