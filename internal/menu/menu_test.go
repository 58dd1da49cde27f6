package menu

import (
	"errors"
	"testing"

	"github.com/ariefcatur/go-food-orders/internal/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewFoodItem_Validate(t *testing.T) {
	d := func(s string) *decimal.Decimal {
		v := decimal.RequireFromString(s)
		return &v
	}
	tests := []struct {
		name  string
		in    NewFoodItem
		field string
	}{
		{name: "valid", in: NewFoodItem{Name: "Paneer Tikka", Price: *d("240"), DiscountPrice: d("199")}},
		{name: "blank name", in: NewFoodItem{Name: "  ", Price: *d("240")}, field: "name"},
		{name: "zero price", in: NewFoodItem{Name: "Chai"}, field: "price"},
		{name: "discount not below price", in: NewFoodItem{Name: "Chai", Price: *d("20"), DiscountPrice: d("20")}, field: "discount_price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve billing.ValidationError
			assert.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestFoodItem_BillingItem(t *testing.T) {
	disc := decimal.RequireFromString("80")
	f := FoodItem{Price: decimal.RequireFromString("100"), DiscountPrice: &disc}
	assert.Equal(t, "80", f.BillingItem().EffectiveUnitPrice().String())
}
