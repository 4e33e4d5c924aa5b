// Package presence mirrors live-connection state into Redis so the
// HTTP API can answer "is this user online" without reaching into the
// in-process registry. Keys carry a TTL and are refreshed while the
// peer keeps answering pings, so a crashed process does not leave
// users online forever.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "presence:"

type Tracker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTracker(client *redis.Client, ttl time.Duration) *Tracker {
	return &Tracker{client: client, ttl: ttl}
}

func key(identity string) string {
	return fmt.Sprintf("%s%s", keyPrefix, identity)
}

// SetOnline marks the user reachable. Calling it again refreshes the
// TTL.
func (t *Tracker) SetOnline(ctx context.Context, identity string) error {
	return t.client.Set(ctx, key(identity), "1", t.ttl).Err()
}

// SetOffline removes the mark immediately.
func (t *Tracker) SetOffline(ctx context.Context, identity string) error {
	return t.client.Del(ctx, key(identity)).Err()
}

// IsOnline reports whether the user currently holds a live connection
// somewhere.
func (t *Tracker) IsOnline(ctx context.Context, identity string) (bool, error) {
	n, err := t.client.Exists(ctx, key(identity)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
