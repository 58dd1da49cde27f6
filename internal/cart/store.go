package cart

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-food-orders/internal/redisx"
	"github.com/redis/go-redis/v9"
	"strconv"
)

var (
	ErrMixedRestaurant = errors.New("cart already holds items from another restaurant")
	ErrItemNotInCart   = errors.New("item not in cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Contents is the raw cart: food item id -> quantity.
type Contents struct {
	RestaurantID string
	Quantities   map[string]int
}

func (c Contents) Empty() bool { return len(c.Quantities) == 0 }

// RedisStore keeps one hash per customer plus the owning restaurant id.
// Both keys share TTLCart and are refreshed on every write.
type RedisStore struct{ RDB redis.Cmdable }

func (s RedisStore) keys(customerID string) (string, string) {
	return fmt.Sprintf(redisx.KeyCart, customerID), fmt.Sprintf(redisx.KeyCartRestaurant, customerID)
}

func (s RedisStore) Add(ctx context.Context, customerID, restaurantID, itemID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	cur, err := s.Contents(ctx, customerID)
	if err != nil {
		return err
	}
	if !cur.Empty() && cur.RestaurantID != restaurantID {
		return ErrMixedRestaurant
	}

	items, owner := s.keys(customerID)
	_, err = s.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HIncrBy(ctx, items, itemID, int64(qty))
		p.Set(ctx, owner, restaurantID, redisx.TTLCart)
		p.Expire(ctx, items, redisx.TTLCart)
		return nil
	})
	return err
}

// SetQuantity overwrites an existing line; qty <= 0 removes it.
func (s RedisStore) SetQuantity(ctx context.Context, customerID, itemID string, qty int) error {
	if qty <= 0 {
		return s.Remove(ctx, customerID, itemID)
	}
	items, owner := s.keys(customerID)
	ok, err := s.RDB.HExists(ctx, items, itemID).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrItemNotInCart
	}
	_, err = s.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, items, itemID, qty)
		p.Expire(ctx, items, redisx.TTLCart)
		p.Expire(ctx, owner, redisx.TTLCart)
		return nil
	})
	return err
}

func (s RedisStore) Remove(ctx context.Context, customerID, itemID string) error {
	items, owner := s.keys(customerID)
	n, err := s.RDB.HDel(ctx, items, itemID).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotInCart
	}
	left, err := s.RDB.HLen(ctx, items).Result()
	if err != nil {
		return err
	}
	if left == 0 {
		return s.RDB.Del(ctx, owner).Err()
	}
	return nil
}

func (s RedisStore) Contents(ctx context.Context, customerID string) (Contents, error) {
	items, owner := s.keys(customerID)
	raw, err := s.RDB.HGetAll(ctx, items).Result()
	if err != nil {
		return Contents{}, err
	}
	c := Contents{Quantities: make(map[string]int, len(raw))}
	for id, v := range raw {
		q, err := strconv.Atoi(v)
		if err != nil {
			return Contents{}, fmt.Errorf("cart %s item %s: %w", customerID, id, err)
		}
		if q > 0 {
			c.Quantities[id] = q
		}
	}
	if c.Empty() {
		return c, nil
	}
	c.RestaurantID, err = s.RDB.Get(ctx, owner).Result()
	if errors.Is(err, redis.Nil) {
		err = nil
	}
	return c, err
}

func (s RedisStore) Clear(ctx context.Context, customerID string) error {
	items, owner := s.keys(customerID)
	return s.RDB.Del(ctx, items, owner).Err()
}
