// Package restaurants stores the profile a restaurant account fills in when it
// onboards. The id is the restaurant's session subject.
package restaurants

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-food-orders/internal/billing"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"strings"
	"time"
)

var ErrNotFound = errors.New("restaurant not found")

type Restaurant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Open      bool      `json:"open"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is the onboarding/update payload. A nil Open keeps the current flag
// (new restaurants start open).
type Profile struct {
	Name string `json:"name"`
	Open *bool  `json:"open,omitempty"`
}

func (p Profile) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return billing.ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) > 120 {
		return billing.ValidationError{Field: "name", Message: "name must be at most 120 characters"}
	}
	return nil
}

type Repo struct{ DB *pgxpool.Pool }

const columns = `id, name, is_open, created_at, updated_at`

// Upsert onboards the restaurant on first call and updates its profile after.
func (r *Repo) Upsert(ctx context.Context, id string, p Profile) (Restaurant, error) {
	if err := p.Validate(); err != nil {
		return Restaurant{}, err
	}
	var out Restaurant
	err := r.DB.QueryRow(ctx, `
		INSERT INTO restaurants(id, name, is_open)
		VALUES ($1, $2, COALESCE($3::boolean, true))
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    is_open = COALESCE($3::boolean, restaurants.is_open),
		    updated_at = now()
		RETURNING `+columns,
		id, strings.TrimSpace(p.Name), p.Open,
	).Scan(&out.ID, &out.Name, &out.Open, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return Restaurant{}, fmt.Errorf("upsert restaurant: %w", err)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Restaurant, error) {
	var out Restaurant
	err := r.DB.QueryRow(ctx, `SELECT `+columns+` FROM restaurants WHERE id=$1`, id).
		Scan(&out.ID, &out.Name, &out.Open, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Restaurant{}, ErrNotFound
	}
	if err != nil {
		return Restaurant{}, err
	}
	return out, nil
}
