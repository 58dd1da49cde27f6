package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"time"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

type StatusEntry struct {
	Status       string    `json:"status"`
	CustomerID   string    `json:"customer_id,omitempty"`
	RestaurantID string    `json:"restaurant_id,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StatusCache keeps the latest known status per order for cheap tracking reads.
// Each entry is a hash {v: updated_at in microseconds, data: StatusEntry JSON}.
type StatusCache struct{ RDB redis.Cmdable }

// setIfNewer menulis entry hanya jika versinya tidak lebih tua dari yang ada;
// compare dan write dalam satu script supaya dua writer tidak saling timpa.
var setIfNewer = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'v')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
  return 0
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'data', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

func (c StatusCache) Get(ctx context.Context, orderID string) (StatusEntry, bool, error) {
	s, err := c.RDB.HGet(ctx, fmt.Sprintf(KeyOrderStatus, orderID), "data").Result()
	if errors.Is(err, redis.Nil) {
		return StatusEntry{}, false, nil
	}
	if err != nil {
		return StatusEntry{}, false, err
	}
	var e StatusEntry
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return StatusEntry{}, false, err
	}
	return e, true, nil
}

// Set skips the write when the cached entry is newer, so out-of-order events
// cannot roll a status back.
func (c StatusCache) Set(ctx context.Context, orderID string, e StatusEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return setIfNewer.Run(ctx, c.RDB, []string{fmt.Sprintf(KeyOrderStatus, orderID)},
		e.UpdatedAt.UnixMicro(), string(b), TTLStatusCache.Milliseconds()).Err()
}

// Deduper remembers processed event ids per service.
type Deduper struct {
	RDB     redis.Cmdable
	Service string
}

// FirstSeen atomically marks id as processed and reports whether it was new.
func (d Deduper) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	return d.RDB.SetNX(ctx, fmt.Sprintf(KeyDedup, d.Service, eventID), "1", TTLDedup).Result()
}

// Forget drops the marker so a failed event can be retried.
func (d Deduper) Forget(ctx context.Context, eventID string) error {
	return d.RDB.Del(ctx, fmt.Sprintf(KeyDedup, d.Service, eventID)).Err()
}
