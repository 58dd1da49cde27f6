package orders

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-food-orders/internal/billing"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"time"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type NewOrder struct {
	ExternalID   string
	CustomerID   string
	RestaurantID string
	Items        []Item
	Bill         billing.Bill
}

type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `id::text, external_id, customer_id, restaurant_id, status,
	total_amount::text, final_amount::text, promo_code, created_at, updated_at`

// CreateOrderTx: idempotent via external_id.
// - jika external_id sudah ada -> return order lama (existed=true).
// Amounts are stored with two decimals; TotalAmount is the bill subtotal and
// FinalAmount the bill total.
func (r *Repo) CreateOrderTx(ctx context.Context, in NewOrder) (o Order, existed bool, err error) {
	o, err = r.getBy(ctx, `external_id=$1`, in.ExternalID)
	if err == nil {
		return o, true, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Order{}, false, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id := uuid.NewString()
	var row orderRow
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(id, external_id, customer_id, restaurant_id, status, total_amount, final_amount, promo_code)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8)
		ON CONFLICT (external_id) DO NOTHING
		RETURNING `+orderColumns,
		id, in.ExternalID, in.CustomerID, in.RestaurantID, string(StatusPending),
		in.Bill.Subtotal.StringFixed(2), in.Bill.Total.StringFixed(2), in.Bill.PromoCode,
	).Scan(row.targets()...)
	if errors.Is(err, pgx.ErrNoRows) {
		// kalah race dengan request kembar
		_ = tx.Rollback(ctx)
		o, err = r.getBy(ctx, `external_id=$1`, in.ExternalID)
		return o, err == nil, err
	}
	if err != nil {
		return Order{}, false, fmt.Errorf("insert order: %w", err)
	}
	if o, err = row.order(); err != nil {
		return Order{}, false, err
	}

	for _, it := range in.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(order_id, food_item_id, food_item_name, qty, unit_price)
			VALUES ($1, $2, $3, $4, $5::numeric)`,
			o.ID, it.FoodItemID, it.FoodItemName, it.Quantity, it.UnitPrice.StringFixed(2),
		); err != nil {
			return Order{}, false, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, false, err
	}
	o.Items = in.Items
	return o, false, nil
}

func (r *Repo) Get(ctx context.Context, orderID string) (Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return Order{}, ErrNotFound
	}
	return r.getBy(ctx, `id=$1`, orderID)
}

func (r *Repo) GetByExternalID(ctx context.Context, externalID string) (Order, error) {
	return r.getBy(ctx, `external_id=$1`, externalID)
}

// ListByRestaurant returns orders created at or after since, oldest first.
func (r *Repo) ListByRestaurant(ctx context.Context, restaurantID string, since time.Time) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE restaurant_id=$1 AND created_at >= $2 ORDER BY created_at, id`, restaurantID, since)
}

func (r *Repo) ListByCustomer(ctx context.Context, customerID string, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE customer_id=$1 ORDER BY created_at DESC, id LIMIT $2`, customerID, limit)
}

// UpdateStatus locks the order row, checks the transition and the owning
// restaurant, then writes the new status. It returns the previous status.
func (r *Repo) UpdateStatus(ctx context.Context, orderID, restaurantID string, to Status) (Order, Status, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return Order{}, "", ErrNotFound
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var row orderRow
	err = tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(row.targets()...)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, "", ErrNotFound
	}
	if err != nil {
		return Order{}, "", err
	}
	o, err := row.order()
	if err != nil {
		return Order{}, "", err
	}
	if o.RestaurantID != restaurantID {
		return Order{}, "", ErrNotFound
	}
	from := o.Status
	if !CanTransition(from, to) {
		return Order{}, "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if err := tx.QueryRow(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1 RETURNING updated_at`,
		orderID, string(to)).Scan(&o.UpdatedAt); err != nil {
		return Order{}, "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, "", err
	}
	o.Status = to
	return o, from, nil
}

func (r *Repo) getBy(ctx context.Context, where string, arg any) (Order, error) {
	out, err := r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where, arg)
	if err != nil {
		return Order{}, err
	}
	if len(out) == 0 {
		return Order{}, ErrNotFound
	}
	return out[0], nil
}

func (r *Repo) list(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	idx := map[string]int{}
	for rows.Next() {
		var row orderRow
		if err := rows.Scan(row.targets()...); err != nil {
			return nil, err
		}
		o, err := row.order()
		if err != nil {
			return nil, err
		}
		idx[o.ID] = len(out)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, o := range out {
		ids = append(ids, o.ID)
	}
	items, err := r.DB.Query(ctx, `SELECT order_id::text, food_item_id, food_item_name, qty, unit_price::text
		FROM order_items WHERE order_id = ANY($1::text[]::uuid[]) ORDER BY id`, ids)
	if err != nil {
		return nil, err
	}
	defer items.Close()
	for items.Next() {
		var (
			orderID, price string
			it             Item
		)
		if err := items.Scan(&orderID, &it.FoodItemID, &it.FoodItemName, &it.Quantity, &price); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("order item price: %w", err)
		}
		i := idx[orderID]
		out[i].Items = append(out[i].Items, it)
	}
	return out, items.Err()
}

// orderRow menampung kolom numeric yang dibaca sebagai text.
type orderRow struct {
	o      Order
	status string
	total  string
	final  *string
}

func (r *orderRow) targets() []any {
	return []any{&r.o.ID, &r.o.ExternalID, &r.o.CustomerID, &r.o.RestaurantID, &r.status,
		&r.total, &r.final, &r.o.PromoCode, &r.o.CreatedAt, &r.o.UpdatedAt}
}

func (r *orderRow) order() (Order, error) {
	o := r.o
	st, err := ParseStatus(r.status)
	if err != nil {
		return Order{}, err
	}
	o.Status = st
	if o.TotalAmount, err = decimal.NewFromString(r.total); err != nil {
		return Order{}, fmt.Errorf("order %s total: %w", o.ID, err)
	}
	if r.final != nil {
		f, err := decimal.NewFromString(*r.final)
		if err != nil {
			return Order{}, fmt.Errorf("order %s final: %w", o.ID, err)
		}
		o.FinalAmount = &f
	}
	return o, nil
}
