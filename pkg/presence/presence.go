package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// onlineTTL is how long after the last request a user still counts as online.
const onlineTTL = 5 * time.Minute

// Tracker records user activity in Redis so other components can ask whether
// a user is currently online (support replies are skipped for online users).
type Tracker struct {
	client *redis.Client
}

func NewTracker(client *redis.Client) *Tracker {
	return &Tracker{client: client}
}

// NewRedisClient connects to Redis with the given address and password.
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

func key(userID string) string {
	return fmt.Sprintf("presence:%s", userID)
}

// Touch marks the user as online for the TTL window.
func (t *Tracker) Touch(ctx context.Context, userID string) error {
	return t.client.Set(ctx, key(userID), time.Now().Unix(), onlineTTL).Err()
}

// IsOnline reports whether the user has been active within the TTL window.
// Redis errors degrade to "offline" so a cache outage never blocks sending.
func (t *Tracker) IsOnline(ctx context.Context, userID string) bool {
	n, err := t.client.Exists(ctx, key(userID)).Result()
	if err != nil {
		return false
	}
	return n > 0
}
