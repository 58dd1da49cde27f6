package httpx

import (
	"context"
	"sync"
	"time"

	"github.com/ariefcatur/go-food-orders/internal/billing"
	"github.com/ariefcatur/go-food-orders/internal/cart"
	"github.com/ariefcatur/go-food-orders/internal/menu"
	"github.com/ariefcatur/go-food-orders/internal/orders"
	"github.com/ariefcatur/go-food-orders/internal/redisx"
	"github.com/ariefcatur/go-food-orders/internal/restaurants"
	kafkago "github.com/segmentio/kafka-go"
)

type fakeCart struct {
	quote    cart.Quote
	quoteErr error
	mutErr   error
	cleared  []string
	added    []string
}

func (f *fakeCart) AddItem(_ context.Context, customerID, itemID string, qty int) error {
	if f.mutErr != nil {
		return f.mutErr
	}
	f.added = append(f.added, itemID)
	return nil
}

func (f *fakeCart) SetQuantity(context.Context, string, string, int) error { return f.mutErr }
func (f *fakeCart) RemoveItem(context.Context, string, string) error       { return f.mutErr }

func (f *fakeCart) Clear(_ context.Context, customerID string) error {
	f.cleared = append(f.cleared, customerID)
	return nil
}

func (f *fakeCart) Quote(_ context.Context, _, promo string) (cart.Quote, error) {
	if f.quoteErr != nil {
		return cart.Quote{}, f.quoteErr
	}
	if promo != "" {
		return cart.Quote{}, billing.ErrUnknownPromo
	}
	return f.quote, nil
}

type fakeOrders struct {
	mu        sync.Mutex
	byID      map[string]orders.Order
	byExt     map[string]orders.Order
	created   []orders.NewOrder
	list      []orders.Order
	since     time.Time
	updateErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byID: map[string]orders.Order{}, byExt: map[string]orders.Order{}}
}

func (f *fakeOrders) CreateOrderTx(_ context.Context, in orders.NewOrder) (orders.Order, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.byExt[in.ExternalID]; ok {
		return o, true, nil
	}
	final := in.Bill.Total
	o := orders.Order{
		ID:           "o-" + in.ExternalID,
		ExternalID:   in.ExternalID,
		CustomerID:   in.CustomerID,
		RestaurantID: in.RestaurantID,
		Status:       orders.StatusPending,
		Items:        in.Items,
		TotalAmount:  in.Bill.Subtotal,
		FinalAmount:  &final,
		CreatedAt:    time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}
	f.byID[o.ID] = o
	f.byExt[o.ExternalID] = o
	f.created = append(f.created, in)
	return o, false, nil
}

func (f *fakeOrders) Get(_ context.Context, id string) (orders.Order, error) {
	if o, ok := f.byID[id]; ok {
		return o, nil
	}
	return orders.Order{}, orders.ErrNotFound
}

func (f *fakeOrders) GetByExternalID(_ context.Context, ext string) (orders.Order, error) {
	if o, ok := f.byExt[ext]; ok {
		return o, nil
	}
	return orders.Order{}, orders.ErrNotFound
}

func (f *fakeOrders) ListByCustomer(_ context.Context, customerID string, _ int) ([]orders.Order, error) {
	var out []orders.Order
	for _, o := range f.byID {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListByRestaurant(_ context.Context, _ string, since time.Time) ([]orders.Order, error) {
	f.since = since
	return f.list, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id, restaurantID string, to orders.Status) (orders.Order, orders.Status, error) {
	if f.updateErr != nil {
		return orders.Order{}, "", f.updateErr
	}
	o, ok := f.byID[id]
	if !ok || o.RestaurantID != restaurantID {
		return orders.Order{}, "", orders.ErrNotFound
	}
	from := o.Status
	if !orders.CanTransition(from, to) {
		return orders.Order{}, "", orders.ErrInvalidTransition
	}
	o.Status = to
	o.UpdatedAt = o.UpdatedAt.Add(time.Minute)
	f.byID[id] = o
	return o, from, nil
}

type fakeCache struct{ entries map[string]redisx.StatusEntry }

func (f *fakeCache) Get(_ context.Context, id string) (redisx.StatusEntry, bool, error) {
	e, ok := f.entries[id]
	return e, ok, nil
}

func (f *fakeCache) Set(_ context.Context, id string, e redisx.StatusEntry) error {
	f.entries[id] = e
	return nil
}

type published struct {
	key   string
	value []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, key, value []byte, _ ...kafkago.Header) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{key: string(key), value: value})
	return nil
}

type fakeMenu struct {
	items     []menu.FoodItem
	createErr error
}

func (f *fakeMenu) ListByRestaurant(context.Context, string) ([]menu.FoodItem, error) {
	return f.items, nil
}

func (f *fakeMenu) Get(_ context.Context, id string) (menu.FoodItem, error) {
	for _, it := range f.items {
		if it.ID == id {
			return it, nil
		}
	}
	return menu.FoodItem{}, menu.ErrNotFound
}

func (f *fakeMenu) Create(_ context.Context, restaurantID string, in menu.NewFoodItem) (menu.FoodItem, error) {
	if err := in.Validate(); err != nil {
		return menu.FoodItem{}, err
	}
	if f.createErr != nil {
		return menu.FoodItem{}, f.createErr
	}
	return menu.FoodItem{ID: "f-new", RestaurantID: restaurantID, Name: in.Name, Price: in.Price, Available: true}, nil
}

type fakeRestaurants struct {
	byID map[string]restaurants.Restaurant
}

func (f *fakeRestaurants) Get(_ context.Context, id string) (restaurants.Restaurant, error) {
	r, ok := f.byID[id]
	if !ok {
		return restaurants.Restaurant{}, restaurants.ErrNotFound
	}
	return r, nil
}

func (f *fakeRestaurants) Upsert(_ context.Context, id string, p restaurants.Profile) (restaurants.Restaurant, error) {
	if err := p.Validate(); err != nil {
		return restaurants.Restaurant{}, err
	}
	r, ok := f.byID[id]
	if !ok {
		r = restaurants.Restaurant{ID: id, Open: true, CreatedAt: fixedNow}
	}
	r.Name = p.Name
	if p.Open != nil {
		r.Open = *p.Open
	}
	r.UpdatedAt = fixedNow
	f.byID[id] = r
	return r, nil
}
