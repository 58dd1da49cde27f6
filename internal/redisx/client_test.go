package redisx

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, StatusCache, Deduper) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := New(mr.Addr())
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, StatusCache{RDB: rdb}, Deduper{RDB: rdb, Service: "tracker"}
}

func TestStatusCache_RoundTrip(t *testing.T) {
	mr, cache, _ := newTestRedis(t)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	want := StatusEntry{Status: "pending", CustomerID: "c-1", RestaurantID: "r-1", UpdatedAt: at}
	require.NoError(t, cache.Set(ctx, "o-1", want))

	got, ok, err := cache.Get(ctx, "o-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, TTLStatusCache, mr.TTL(fmt.Sprintf(KeyOrderStatus, "o-1")))
}

func TestStatusCache_SkipsOlderEntries(t *testing.T) {
	_, cache, _ := newTestRedis(t)
	ctx := context.Background()
	t0 := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status string
		at     time.Time
		want   string
	}{
		{"first write", "accepted", t0.Add(time.Minute), "accepted"},
		{"late pending is ignored", "pending", t0, "accepted"},
		{"newer status wins", "preparing", t0.Add(2 * time.Minute), "preparing"},
		{"same timestamp rewrites", "cancelled", t0.Add(2 * time.Minute), "cancelled"},
		{"microsecond older is ignored", "accepted", t0.Add(2*time.Minute - time.Microsecond), "cancelled"},
	}
	for _, tt := range tests {
		require.NoError(t, cache.Set(ctx, "o-1", StatusEntry{Status: tt.status, UpdatedAt: tt.at}), tt.name)
		got, ok, err := cache.Get(ctx, "o-1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, tt.want, got.Status, tt.name)
	}
}

func TestStatusCache_Expires(t *testing.T) {
	mr, cache, _ := newTestRedis(t)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "o-1", StatusEntry{Status: "pending", UpdatedAt: time.Now()}))

	mr.FastForward(TTLStatusCache + time.Second)
	_, ok, err := cache.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeduper(t *testing.T) {
	mr, _, dedup := newTestRedis(t)
	ctx := context.Background()

	first, err := dedup.FirstSeen(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, first)
	assert.Equal(t, TTLDedup, mr.TTL(fmt.Sprintf(KeyDedup, "tracker", "evt-1")))

	first, err = dedup.FirstSeen(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, first)

	// service lain punya namespace sendiri
	other := Deduper{RDB: dedup.RDB, Service: "audit"}
	first, err = other.FirstSeen(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, first)

	require.NoError(t, dedup.Forget(ctx, "evt-1"))
	first, err = dedup.FirstSeen(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, first)
}
