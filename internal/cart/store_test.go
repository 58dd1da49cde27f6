package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-food-orders/internal/redisx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*miniredis.Miniredis, RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redisx.New(mr.Addr())
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, RedisStore{RDB: rdb}
}

var (
	itemsKey = fmt.Sprintf(redisx.KeyCart, "c1")
	ownerKey = fmt.Sprintf(redisx.KeyCartRestaurant, "c1")
)

func TestRedisStore_AddAndContents(t *testing.T) {
	_, s := newRedisStore(t)
	ctx := context.Background()

	c, err := s.Contents(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, c.Empty())

	require.NoError(t, s.Add(ctx, "c1", "r1", "f1", 2))
	require.NoError(t, s.Add(ctx, "c1", "r1", "f1", 1))
	require.NoError(t, s.Add(ctx, "c1", "r1", "f2", 1))

	c, err = s.Contents(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, Contents{RestaurantID: "r1", Quantities: map[string]int{"f1": 3, "f2": 1}}, c)
}

func TestRedisStore_AddRules(t *testing.T) {
	tests := []struct {
		name       string
		restaurant string
		qty        int
		want       error
	}{
		{"zero quantity", "r1", 0, ErrInvalidQuantity},
		{"negative quantity", "r1", -2, ErrInvalidQuantity},
		{"other restaurant", "r2", 1, ErrMixedRestaurant},
		{"same restaurant", "r1", 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, s := newRedisStore(t)
			ctx := context.Background()
			require.NoError(t, s.Add(ctx, "c1", "r1", "f1", 1))

			err := s.Add(ctx, "c1", tt.restaurant, "f9", tt.qty)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRedisStore_TTLRefreshedOnWrite(t *testing.T) {
	mr, s := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "c1", "r1", "f1", 1))
	assert.Equal(t, redisx.TTLCart, mr.TTL(itemsKey))
	assert.Equal(t, redisx.TTLCart, mr.TTL(ownerKey))

	mr.FastForward(48 * time.Hour)
	assert.Equal(t, redisx.TTLCart-48*time.Hour, mr.TTL(itemsKey))

	require.NoError(t, s.SetQuantity(ctx, "c1", "f1", 4))
	assert.Equal(t, redisx.TTLCart, mr.TTL(itemsKey))
	assert.Equal(t, redisx.TTLCart, mr.TTL(ownerKey))

	mr.FastForward(redisx.TTLCart + time.Second)
	c, err := s.Contents(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, c.Empty())
}

func TestRedisStore_SetQuantity(t *testing.T) {
	_, s := newRedisStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.SetQuantity(ctx, "c1", "f1", 2), ErrItemNotInCart)

	require.NoError(t, s.Add(ctx, "c1", "r1", "f1", 1))
	require.NoError(t, s.Add(ctx, "c1", "r1", "f2", 1))
	require.NoError(t, s.SetQuantity(ctx, "c1", "f1", 5))
	require.NoError(t, s.SetQuantity(ctx, "c1", "f2", 0))

	c, err := s.Contents(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"f1": 5}, c.Quantities)
}

func TestRedisStore_RemovingLastLineDropsOwner(t *testing.T) {
	mr, s := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "c1", "r1", "f1", 1))
	require.NoError(t, s.Add(ctx, "c1", "r1", "f2", 1))

	require.NoError(t, s.Remove(ctx, "c1", "f1"))
	assert.True(t, mr.Exists(ownerKey))

	require.NoError(t, s.Remove(ctx, "c1", "f2"))
	assert.False(t, mr.Exists(ownerKey))
	assert.False(t, mr.Exists(itemsKey))
	assert.ErrorIs(t, s.Remove(ctx, "c1", "f2"), ErrItemNotInCart)

	// cart kosong boleh pindah restaurant
	assert.NoError(t, s.Add(ctx, "c1", "r2", "f7", 1))
}

func TestRedisStore_Clear(t *testing.T) {
	mr, s := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, "c1", "r1", "f1", 1))
	require.NoError(t, s.Clear(ctx, "c1"))
	assert.False(t, mr.Exists(itemsKey))
	assert.False(t, mr.Exists(ownerKey))
	assert.NoError(t, s.Clear(ctx, "c1"))
}
