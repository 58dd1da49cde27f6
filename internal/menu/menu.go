package menu

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-food-orders/internal/billing"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"strings"
	"time"
)

var ErrNotFound = errors.New("food item not found")

type FoodItem struct {
	ID            string           `json:"id"`
	RestaurantID  string           `json:"restaurant_id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	Available     bool             `json:"available"`
	CreatedAt     time.Time        `json:"created_at"`
}

func (f FoodItem) BillingItem() billing.FoodItem {
	return billing.FoodItem{Price: f.Price, DiscountPrice: f.DiscountPrice}
}

type NewFoodItem struct {
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
}

func (n NewFoodItem) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return billing.ValidationError{Field: "name", Message: "name is required"}
	}
	if len(n.Name) > 120 {
		return billing.ValidationError{Field: "name", Message: "name must be at most 120 characters"}
	}
	if !n.Price.IsPositive() {
		return billing.ValidationError{Field: "price", Message: "price must be positive"}
	}
	if n.DiscountPrice != nil && (n.DiscountPrice.IsNegative() || !n.DiscountPrice.LessThan(n.Price)) {
		return billing.ValidationError{Field: "discount_price", Message: "discount price must be below price"}
	}
	return nil
}

type Repo struct{ DB *pgxpool.Pool }

const columns = `id::text, restaurant_id, name, price::text, discount_price::text, available, created_at`

func (r *Repo) Create(ctx context.Context, restaurantID string, in NewFoodItem) (FoodItem, error) {
	if err := in.Validate(); err != nil {
		return FoodItem{}, err
	}
	var discount *string
	if in.DiscountPrice != nil {
		s := in.DiscountPrice.StringFixed(2)
		discount = &s
	}
	var row itemRow
	err := r.DB.QueryRow(ctx, `
		INSERT INTO food_items(id, restaurant_id, name, price, discount_price, available)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, true)
		RETURNING `+columns,
		uuid.NewString(), restaurantID, strings.TrimSpace(in.Name), in.Price.StringFixed(2), discount,
	).Scan(row.targets()...)
	if err != nil {
		return FoodItem{}, fmt.Errorf("insert food item: %w", err)
	}
	return row.item()
}

func (r *Repo) ListByRestaurant(ctx context.Context, restaurantID string) ([]FoodItem, error) {
	return r.query(ctx, `SELECT `+columns+` FROM food_items WHERE restaurant_id=$1 ORDER BY name, id`, restaurantID)
}

// GetMany returns the found items keyed by id; missing or malformed ids are
// simply absent.
func (r *Repo) GetMany(ctx context.Context, ids []string) (map[string]FoodItem, error) {
	out := make(map[string]FoodItem, len(ids))
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return out, nil
	}
	items, err := r.query(ctx, `SELECT `+columns+` FROM food_items WHERE id = ANY($1::text[]::uuid[])`, valid)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (FoodItem, error) {
	m, err := r.GetMany(ctx, []string{id})
	if err != nil {
		return FoodItem{}, err
	}
	it, ok := m[id]
	if !ok {
		return FoodItem{}, ErrNotFound
	}
	return it, nil
}

func (r *Repo) query(ctx context.Context, sql string, args ...any) ([]FoodItem, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FoodItem
	for rows.Next() {
		var row itemRow
		if err := rows.Scan(row.targets()...); err != nil {
			return nil, err
		}
		it, err := row.item()
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

type itemRow struct {
	it       FoodItem
	price    string
	discount *string
}

func (r *itemRow) targets() []any {
	return []any{&r.it.ID, &r.it.RestaurantID, &r.it.Name, &r.price, &r.discount, &r.it.Available, &r.it.CreatedAt}
}

func (r *itemRow) item() (FoodItem, error) {
	it := r.it
	var err error
	if it.Price, err = decimal.NewFromString(r.price); err != nil {
		return FoodItem{}, fmt.Errorf("food item %s price: %w", it.ID, err)
	}
	if r.discount != nil {
		d, err := decimal.NewFromString(*r.discount)
		if err != nil {
			return FoodItem{}, fmt.Errorf("food item %s discount: %w", it.ID, err)
		}
		it.DiscountPrice = &d
	}
	return it, nil
}
