package billing

import (
	"errors"
	"fmt"
	"github.com/shopspring/decimal"
	"strings"
)

var ErrUnknownPromo = errors.New("unknown promo code")

// PromoCatalog maps upper-cased codes to percent off.
type PromoCatalog map[string]decimal.Decimal

// ParsePromoCatalog parses "CODE:percent,CODE2:percent".
func ParsePromoCatalog(s string) (PromoCatalog, error) {
	out := PromoCatalog{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, pct, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("promo %q: expected CODE:percent", part)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(pct))
		if err != nil {
			return nil, fmt.Errorf("promo %q: %w", part, err)
		}
		if d.IsNegative() || d.GreaterThan(hundred) {
			return nil, fmt.Errorf("promo %q: percent must be between 0 and 100", part)
		}
		out[strings.ToUpper(strings.TrimSpace(code))] = d
	}
	return out, nil
}

// Lookup returns nil, nil for an empty code.
func (c PromoCatalog) Lookup(code string) (*Promo, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}
	pct, ok := c[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPromo, code)
	}
	return &Promo{Code: code, PercentOff: pct}, nil
}
