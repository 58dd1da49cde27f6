package cart

import (
	"context"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-food-orders/internal/billing"
	"github.com/ariefcatur/go-food-orders/internal/menu"
	"github.com/ariefcatur/go-food-orders/internal/restaurants"
	"sort"
)

var (
	ErrItemUnavailable = errors.New("food item unavailable")
	// ErrEmptyCart: billing can price an empty cart, but it cannot be quoted
	// for checkout.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrRestaurantClosed covers restaurants that are closed or never onboarded.
	ErrRestaurantClosed = errors.New("restaurant is not accepting orders")
)

type Store interface {
	Add(ctx context.Context, customerID, restaurantID, itemID string, qty int) error
	SetQuantity(ctx context.Context, customerID, itemID string, qty int) error
	Remove(ctx context.Context, customerID, itemID string) error
	Contents(ctx context.Context, customerID string) (Contents, error)
	Clear(ctx context.Context, customerID string) error
}

type Menu interface {
	GetMany(ctx context.Context, ids []string) (map[string]menu.FoodItem, error)
}

type Restaurants interface {
	Get(ctx context.Context, id string) (restaurants.Restaurant, error)
}

type Line struct {
	FoodItem menu.FoodItem `json:"food_item"`
	Quantity int           `json:"quantity"`
}

// Quote is a resolved cart with its bill.
type Quote struct {
	RestaurantID string
	Lines        []Line
	Bill         billing.Bill
}

type Service struct {
	Store       Store
	Menu        Menu
	Restaurants Restaurants
	Promos      billing.PromoCatalog
	Billing     billing.Options
}

func (s *Service) AddItem(ctx context.Context, customerID, itemID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	found, err := s.Menu.GetMany(ctx, []string{itemID})
	if err != nil {
		return err
	}
	it, ok := found[itemID]
	if !ok || !it.Available {
		return fmt.Errorf("%w: %s", ErrItemUnavailable, itemID)
	}
	rest, err := s.Restaurants.Get(ctx, it.RestaurantID)
	if errors.Is(err, restaurants.ErrNotFound) || (err == nil && !rest.Open) {
		return fmt.Errorf("%w: %s", ErrRestaurantClosed, it.RestaurantID)
	}
	if err != nil {
		return err
	}
	return s.Store.Add(ctx, customerID, it.RestaurantID, itemID, qty)
}

func (s *Service) SetQuantity(ctx context.Context, customerID, itemID string, qty int) error {
	return s.Store.SetQuantity(ctx, customerID, itemID, qty)
}

func (s *Service) RemoveItem(ctx context.Context, customerID, itemID string) error {
	return s.Store.Remove(ctx, customerID, itemID)
}

func (s *Service) Clear(ctx context.Context, customerID string) error {
	return s.Store.Clear(ctx, customerID)
}

// Lines resolves the cart against the current menu, sorted by item name.
func (s *Service) Lines(ctx context.Context, customerID string) (string, []Line, error) {
	c, err := s.Store.Contents(ctx, customerID)
	if err != nil {
		return "", nil, err
	}
	if c.Empty() {
		return "", nil, nil
	}

	ids := make([]string, 0, len(c.Quantities))
	for id := range c.Quantities {
		ids = append(ids, id)
	}
	found, err := s.Menu.GetMany(ctx, ids)
	if err != nil {
		return "", nil, err
	}

	lines := make([]Line, 0, len(ids))
	for _, id := range ids {
		it, ok := found[id]
		if !ok || !it.Available {
			return "", nil, fmt.Errorf("%w: %s", ErrItemUnavailable, id)
		}
		if it.RestaurantID != c.RestaurantID {
			return "", nil, fmt.Errorf("%w: item %s", ErrMixedRestaurant, id)
		}
		lines = append(lines, Line{FoodItem: it, Quantity: c.Quantities[id]})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].FoodItem.Name != lines[j].FoodItem.Name {
			return lines[i].FoodItem.Name < lines[j].FoodItem.Name
		}
		return lines[i].FoodItem.ID < lines[j].FoodItem.ID
	})
	return c.RestaurantID, lines, nil
}

// Quote resolves the cart and prices it. An empty promo code means no promo.
func (s *Service) Quote(ctx context.Context, customerID, promoCode string) (Quote, error) {
	promo, err := s.Promos.Lookup(promoCode)
	if err != nil {
		return Quote{}, err
	}
	restaurantID, lines, err := s.Lines(ctx, customerID)
	if err != nil {
		return Quote{}, err
	}
	if len(lines) == 0 {
		return Quote{}, ErrEmptyCart
	}
	bill, err := billing.ComputeBill(BillingLines(lines), s.Billing.WithPromo(promo))
	if err != nil {
		return Quote{}, err
	}
	return Quote{RestaurantID: restaurantID, Lines: lines, Bill: bill}, nil
}

func BillingLines(lines []Line) []billing.CartLine {
	out := make([]billing.CartLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, billing.CartLine{FoodItem: l.FoodItem.BillingItem(), Quantity: l.Quantity})
	}
	return out
}
