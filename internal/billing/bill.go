package billing

import (
	"fmt"
	"github.com/shopspring/decimal"
)

var (
	DefaultFreeDeliveryThreshold = decimal.NewFromInt(500)
	DefaultDeliveryFee           = decimal.NewFromInt(50)
	DefaultTaxRate               = decimal.RequireFromString("0.05")

	hundred = decimal.NewFromInt(100)
)

type FoodItem struct {
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
}

// EffectiveUnitPrice: discountPrice kalau ada, selain itu price.
func (f FoodItem) EffectiveUnitPrice() decimal.Decimal {
	if f.DiscountPrice != nil {
		return *f.DiscountPrice
	}
	return f.Price
}

type CartLine struct {
	FoodItem FoodItem `json:"food_item"`
	Quantity int      `json:"quantity"`
}

type Promo struct {
	Code       string          `json:"code"`
	PercentOff decimal.Decimal `json:"percent_off"`
}

type Options struct {
	Promo                 *Promo
	FreeDeliveryThreshold decimal.Decimal
	DeliveryFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

func DefaultOptions() Options {
	return Options{
		FreeDeliveryThreshold: DefaultFreeDeliveryThreshold,
		DeliveryFee:           DefaultDeliveryFee,
		TaxRate:               DefaultTaxRate,
	}
}

// WithPromo returns a copy of o carrying p.
func (o Options) WithPromo(p *Promo) Options {
	o.Promo = p
	return o
}

// Bill keeps full precision. Use View for two-decimal display values.
type Bill struct {
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	DeliveryFee decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
	PromoCode   string
}

type View struct {
	Subtotal    string `json:"subtotal"`
	Discount    string `json:"discount"`
	DeliveryFee string `json:"delivery_fee"`
	Tax         string `json:"tax"`
	Total       string `json:"total"`
	PromoCode   string `json:"promo_code,omitempty"`
}

func (b Bill) View() View {
	return View{
		Subtotal:    b.Subtotal.StringFixed(2),
		Discount:    b.Discount.StringFixed(2),
		DeliveryFee: b.DeliveryFee.StringFixed(2),
		Tax:         b.Tax.StringFixed(2),
		Total:       b.Total.StringFixed(2),
		PromoCode:   b.PromoCode,
	}
}

// ComputeBill runs the steps strictly in order: subtotal, discount, delivery
// fee, taxable base, tax, total. Nothing is rounded here. An empty cart is
// still priced: it owes only the delivery fee.
func ComputeBill(lines []CartLine, opts Options) (Bill, error) {
	if err := validateOptions(opts); err != nil {
		return Bill{}, err
	}

	subtotal := decimal.Zero
	for i, l := range lines {
		if err := validateLine(l, i); err != nil {
			return Bill{}, err
		}
		subtotal = subtotal.Add(l.FoodItem.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	discount := decimal.Zero
	promoCode := ""
	if opts.Promo != nil {
		discount = subtotal.Mul(opts.Promo.PercentOff).Div(hundred)
		promoCode = opts.Promo.Code
	}

	fee := opts.DeliveryFee
	if subtotal.GreaterThan(opts.FreeDeliveryThreshold) {
		fee = decimal.Zero
	}

	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(opts.TaxRate)
	total := subtotal.Sub(discount).Add(fee).Add(tax)

	return Bill{
		Subtotal:    subtotal,
		Discount:    discount,
		DeliveryFee: fee,
		Tax:         tax,
		Total:       total,
		PromoCode:   promoCode,
	}, nil
}

func validateOptions(o Options) error {
	if o.Promo != nil {
		p := o.Promo.PercentOff
		if p.IsNegative() || p.GreaterThan(hundred) {
			return ValidationError{Field: "promo.percent_off", Message: fmt.Sprintf("must be between 0 and 100, got %s", p)}
		}
	}
	if o.FreeDeliveryThreshold.IsNegative() {
		return ValidationError{Field: "free_delivery_threshold", Message: "must not be negative"}
	}
	if o.DeliveryFee.IsNegative() {
		return ValidationError{Field: "delivery_fee", Message: "must not be negative"}
	}
	if o.TaxRate.IsNegative() {
		return ValidationError{Field: "tax_rate", Message: "must not be negative"}
	}
	return nil
}

func validateLine(l CartLine, index int) error {
	if l.Quantity < 1 {
		return ValidationError{
			Field:   fmt.Sprintf("lines[%d].quantity", index),
			Message: fmt.Sprintf("must be at least 1, got %d", l.Quantity),
		}
	}
	if !l.FoodItem.Price.IsPositive() {
		return ValidationError{
			Field:   fmt.Sprintf("lines[%d].food_item.price", index),
			Message: "price is missing or not positive",
		}
	}
	if d := l.FoodItem.DiscountPrice; d != nil {
		if d.IsNegative() || !d.LessThan(l.FoodItem.Price) {
			return ValidationError{
				Field:   fmt.Sprintf("lines[%d].food_item.discount_price", index),
				Message: fmt.Sprintf("must be below price %s, got %s", l.FoodItem.Price, d),
			}
		}
	}
	return nil
}
