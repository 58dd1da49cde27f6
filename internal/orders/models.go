package orders

import (
	"github.com/shopspring/decimal"
	"time"
)

type Item struct {
	FoodItemID   string          `json:"food_item_id,omitempty"`
	FoodItemName string          `json:"food_item_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

type Order struct {
	ID           string           `json:"id"`
	ExternalID   string           `json:"external_id,omitempty"`
	CustomerID   string           `json:"customer_id"`
	RestaurantID string           `json:"restaurant_id"`
	Status       Status           `json:"status"`
	Items        []Item           `json:"items"`
	TotalAmount  decimal.Decimal  `json:"total_amount"`
	FinalAmount  *decimal.Decimal `json:"final_amount,omitempty"` // subtotal setelah diskon, ongkir, pajak
	PromoCode    string           `json:"promo_code,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ChargedAmount is the amount used for every revenue figure: FinalAmount when
// present, otherwise TotalAmount.
func (o Order) ChargedAmount() decimal.Decimal {
	if o.FinalAmount != nil {
		return *o.FinalAmount
	}
	return o.TotalAmount
}
