package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if the caller still owns it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SessionLock serializes operations on one session across server instances
type SessionLock interface {
	// Acquire returns a token when the lock was taken, or "" when another holder has it
	Acquire(ctx context.Context, sessionID string, ttl time.Duration) (string, error)
	Release(ctx context.Context, sessionID, token string) error
}

type sessionLock struct {
	client *redis.Client
}

// NewSessionLock creates a Redis-backed session lock
func NewSessionLock(client *redis.Client) SessionLock {
	return &sessionLock{client: client}
}

func (l *sessionLock) key(sessionID string) string {
	return fmt.Sprintf("session:%s:lock", sessionID)
}

func (l *sessionLock) Acquire(ctx context.Context, sessionID string, ttl time.Duration) (string, error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, l.key(sessionID), token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

func (l *sessionLock) Release(ctx context.Context, sessionID, token string) error {
	return releaseScript.Run(ctx, l.client, []string{l.key(sessionID)}, token).Err()
}
